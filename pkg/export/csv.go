// Package export はタイムシートを外部形式に書き出す。
// CSV（読み書き）、XLSXワークブック、After Effectsの
// キーフレームクリップボードに対応する。
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/zurustar/sts-et/pkg/sheet"
)

// ClearMark はCSV上で「セルを空白に戻す」ことを表す印
const ClearMark = "×"

// ExportCSV はシートをCSVとして書き出す。
// 1行目はヘッダー（Frame, レイヤー名...）、以降は1フレーム1行。
// 値は前のフレームから変わったときだけ書き、継続は空欄、
// 空白への変化はClearMarkで表す。ImportCSVで読み戻すと元に戻る。
func ExportCSV(s *sheet.Sheet, w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, s.LayerCount+1)
	header = append(header, "Frame")
	for _, l := range s.Layers {
		header = append(header, l.Label)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	prev := make([]sheet.CellValue, s.LayerCount)
	row := make([]string, s.LayerCount+1)
	for f := 0; f < s.FrameCount; f++ {
		row[0] = strconv.Itoa(f + 1)
		for l := 0; l < s.LayerCount; l++ {
			v := s.Cell(l, f)
			switch {
			case f > 0 && v == prev[l]:
				row[l+1] = ""
			case v.IsBlank():
				if f == 0 {
					row[l+1] = ""
				} else {
					row[l+1] = ClearMark
				}
			default:
				row[l+1] = v.Token()
			}
			prev[l] = v
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", f+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile はシートをCSVファイルに書き出す
func WriteCSVFile(path string, s *sheet.Sheet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	if err := ExportCSV(s, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportCSV はCSVからシートを読み込む。
// 1行目のヘッダーの2列目以降がレイヤー名になり、以降の各行が
// 1フレームになる。空欄は前のフレームの値の継続、ClearMarkは
// 空白への変化、数値以外のゴミも継続として扱う。
func ImportCSV(r io.Reader, name string) (*sheet.Sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv must have a header row and at least one data row")
	}

	header := records[0]
	dataRows := records[1:]
	layerCount := len(header) - 1
	if layerCount < 1 {
		return nil, fmt.Errorf("csv must have at least one layer column")
	}
	if layerCount > sheet.MaxLayerCount {
		return nil, fmt.Errorf("too many layer columns: %d (max %d)", layerCount, sheet.MaxLayerCount)
	}
	if len(dataRows) > sheet.MaxFrameCount {
		return nil, fmt.Errorf("too many rows: %d (max %d)", len(dataRows), sheet.MaxFrameCount)
	}

	frameCount := len(dataRows)
	s, err := sheet.New(sheet.Params{
		Name:          name,
		LayerCount:    layerCount,
		FrameRate:     24,
		FramesPerPage: sheet.DefaultFramesPerPage,
		Seconds:       frameCount / 24,
		ExtraFrames:   frameCount % 24,
	})
	if err != nil {
		return nil, err
	}
	for i := 0; i < layerCount; i++ {
		if label := strings.TrimSpace(header[i+1]); label != "" {
			s.Layers[i].Label = label
		}
	}

	last := make([]sheet.CellValue, layerCount)
	for f, record := range dataRows {
		for l := 0; l < layerCount; l++ {
			token := ""
			if l+1 < len(record) {
				token = strings.TrimSpace(record[l+1])
			}

			v := last[l]
			switch {
			case token == ClearMark:
				v = sheet.Blank
			case token == "":
				// 継続
			default:
				n, convErr := strconv.Atoi(token)
				if convErr != nil || n < 0 {
					// 数値でないものは継続として受け流す
					break
				}
				if n > sheet.MaxCellNumber {
					return nil, fmt.Errorf("row %d layer %d: cell number %d out of range", f+2, l+1, n)
				}
				v = sheet.CellValue(n)
			}

			last[l] = v
			s.SetCell(l, f, v)
		}
	}

	return s, nil
}

// ReadCSVFile はCSVファイルからシートを読み込む。
// 文字コードはUTF-8、GBK、Shift-JISの順に推定する。
func ReadCSVFile(path string) (*sheet.Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv file: %w", err)
	}
	text := decodeWithFallback(data)

	base := path
	if i := strings.LastIndexByte(base, os.PathSeparator); i >= 0 {
		base = base[i+1:]
	}
	name := strings.TrimSuffix(base, ".csv")

	return ImportCSV(strings.NewReader(text), name)
}

// decodeWithFallback は生バイト列をUTF-8、Shift-JIS、GBKの順に
// 試して文字列にする。STSはShift-JIS圏の形式なのでGBKより先に
// 試す。どれでも読めなければUTF-8で不正バイトを置換して返す。
func decodeWithFallback(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	if out, err := japanese.ShiftJIS.NewDecoder().Bytes(data); err == nil && !strings.ContainsRune(string(out), utf8.RuneError) {
		return string(out)
	}
	if out, err := simplifiedchinese.GBK.NewDecoder().Bytes(data); err == nil && !strings.ContainsRune(string(out), utf8.RuneError) {
		return string(out)
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}
