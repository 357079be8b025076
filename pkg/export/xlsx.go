package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/zurustar/sts-et/pkg/sheet"
)

// WriteXLSXFile はシートをXLSXワークブックとして書き出す。
// A列がフレーム番号、B列以降が各レイヤーで、1行目はレイヤー名。
// ページの区切り行の下に罫線を引く。
func WriteXLSXFile(path string, s *sheet.Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Sheet1"
	if s.Name != "" {
		if err := f.SetSheetName(sheetName, s.Name); err != nil {
			return fmt.Errorf("failed to rename worksheet: %w", err)
		}
	}
	ws := f.GetSheetName(0)

	if err := f.SetCellValue(ws, "A1", "Frame"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for l := 0; l < s.LayerCount; l++ {
		cell, err := excelize.CoordinatesToCellName(l+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(ws, cell, s.Layers[l].Label); err != nil {
			return fmt.Errorf("failed to write layer label: %w", err)
		}
	}

	pageRuleStyle, err := f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 2},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create border style: %w", err)
	}

	for fr := 0; fr < s.FrameCount; fr++ {
		row := fr + 2
		frameCell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(ws, frameCell, fr+1); err != nil {
			return fmt.Errorf("failed to write frame number: %w", err)
		}
		for l := 0; l < s.LayerCount; l++ {
			v := s.Cell(l, fr)
			if v.IsBlank() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(l+2, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(ws, cell, int(v)); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
		}

		// ページ末尾の行に罫線
		if (fr+1)%s.FramesPerPage == 0 {
			endCell, err := excelize.CoordinatesToCellName(s.LayerCount+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(ws, frameCell, endCell, pageRuleStyle); err != nil {
				return fmt.Errorf("failed to set page rule style: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
