package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestWriteXLSXFile(t *testing.T) {
	s := testSheet(t)
	path := filepath.Join(t.TempDir(), "cut01.xlsx")

	if err := WriteXLSXFile(path, s); err != nil {
		t.Fatalf("WriteXLSXFile failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()

	ws := f.GetSheetName(0)
	if ws != "cut01" {
		t.Errorf("worksheet name = %q, want cut01", ws)
	}

	tests := []struct {
		cell string
		want string
	}{
		{"A1", "Frame"},
		{"B1", "A"},
		{"C1", "セル"},
		{"A2", "1"},
		{"B2", "1"},
		{"C2", ""},  // 空白セルは書かない
		{"C3", "5"}, // フレーム2 レイヤー1
		{"B4", "2"},
		{"A7", "6"},
		{"C7", "1"},
	}
	for _, tt := range tests {
		got, err := f.GetCellValue(ws, tt.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) failed: %v", tt.cell, err)
		}
		if got != tt.want {
			t.Errorf("cell %s = %q, want %q", tt.cell, got, tt.want)
		}
	}
}

func TestWriteXLSXFile_DefaultWorksheetName(t *testing.T) {
	s := testSheet(t)
	s.Name = ""
	path := filepath.Join(t.TempDir(), "out.xlsx")

	if err := WriteXLSXFile(path, s); err != nil {
		t.Fatalf("WriteXLSXFile failed: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()
	if ws := f.GetSheetName(0); ws != "Sheet1" {
		t.Errorf("worksheet name = %q, want Sheet1", ws)
	}
}
