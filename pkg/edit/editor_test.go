package edit

import (
	"errors"
	"testing"

	"github.com/zurustar/sts-et/pkg/sheet"
)

func newTestEditor(t *testing.T, layers, seconds int) *Editor {
	t.Helper()
	s, err := sheet.New(sheet.Params{
		Name: "t", LayerCount: layers, FrameRate: 24, FramesPerPage: 24, Seconds: seconds,
	})
	if err != nil {
		t.Fatalf("sheet.New failed: %v", err)
	}
	return NewEditor(s, 0)
}

// 新規シート(5レイヤー, 24fps, 2秒) -> 48フレーム。
// setCellしてundoすると空白に戻る。
func TestSetCellThenUndo(t *testing.T) {
	e := newTestEditor(t, 5, 2)
	if e.Sheet().FrameCount != 48 {
		t.Fatalf("FrameCount = %d, want 48", e.Sheet().FrameCount)
	}

	if err := e.SetCellToken(2, 10, "3"); err != nil {
		t.Fatalf("SetCellToken failed: %v", err)
	}
	if e.Sheet().Cell(2, 10) != 3 {
		t.Fatalf("Cell(2,10) = %d, want 3", e.Sheet().Cell(2, 10))
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if e.Sheet().Cell(2, 10) != sheet.Blank {
		t.Errorf("Cell(2,10) = %d, want blank after undo", e.Sheet().Cell(2, 10))
	}
}

func TestSetCell_OutOfRange(t *testing.T) {
	e := newTestEditor(t, 2, 1)

	tests := []struct{ layer, frame int }{
		{-1, 0}, {0, -1}, {2, 0}, {0, 24},
	}
	for _, tt := range tests {
		err := e.SetCell(tt.layer, tt.frame, 1)
		var ee *EditError
		if !errors.As(err, &ee) {
			t.Errorf("SetCell(%d, %d): expected EditError, got %v", tt.layer, tt.frame, err)
		}
	}
	if e.History().CanUndo() {
		t.Error("failed edits must not be recorded")
	}
}

func TestSetCellToken_RejectsOversizedValue(t *testing.T) {
	e := newTestEditor(t, 1, 1)
	if err := e.SetCellToken(0, 0, "65536"); err == nil {
		t.Error("expected error for value over 65535")
	}
	if err := e.SetCellToken(0, 0, "xyz"); err == nil {
		t.Error("expected error for non-numeric token")
	}
	if e.Sheet().Cell(0, 0) != sheet.Blank {
		t.Error("rejected edits must not mutate the sheet")
	}
}

func TestFillRegion_Value(t *testing.T) {
	e := newTestEditor(t, 3, 1)
	r := sheet.NewRegion(0, 2, 2, 5)
	if err := e.FillRegion(r, 7); err != nil {
		t.Fatalf("FillRegion failed: %v", err)
	}
	for l := 0; l < 3; l++ {
		for f := 2; f <= 5; f++ {
			if e.Sheet().Cell(l, f) != 7 {
				t.Errorf("Cell(%d,%d) = %d, want 7", l, f, e.Sheet().Cell(l, f))
			}
		}
	}
	// 1回のfillは1つのコマンド
	if e.History().UndoCount() != 1 {
		t.Errorf("UndoCount = %d, want 1", e.History().UndoCount())
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	for l := 0; l < 3; l++ {
		for f := 2; f <= 5; f++ {
			if e.Sheet().Cell(l, f) != sheet.Blank {
				t.Errorf("Cell(%d,%d) not blank after undo", l, f)
			}
		}
	}
}

// 空白で塗ると各セルには1フレーム前の値（塗る前の値）が入る
func TestFillRegion_BlankCopiesFromFrameAbove(t *testing.T) {
	e := newTestEditor(t, 1, 1)
	e.Sheet().SetCell(0, 4, 9)
	e.Sheet().SetCell(0, 5, 2)

	if err := e.FillRegion(sheet.NewRegion(0, 5, 0, 7), sheet.Blank); err != nil {
		t.Fatalf("FillRegion failed: %v", err)
	}
	// frame5 <- 塗る前のframe4, frame6 <- 塗る前のframe5, frame7 <- 塗る前のframe6
	if got := e.Sheet().Cell(0, 5); got != 9 {
		t.Errorf("Cell(0,5) = %d, want 9", got)
	}
	if got := e.Sheet().Cell(0, 6); got != 2 {
		t.Errorf("Cell(0,6) = %d, want 2 (pre-fill value, no cascading)", got)
	}
	if got := e.Sheet().Cell(0, 7); got != sheet.Blank {
		t.Errorf("Cell(0,7) = %d, want blank", got)
	}
}

// 上のフレームも空白なら対象セルは空白のまま
func TestFillRegion_BlankOverBlankStaysBlank(t *testing.T) {
	e := newTestEditor(t, 2, 1)
	if err := e.FillRegion(sheet.NewRegion(0, 3, 1, 6), sheet.Blank); err != nil {
		t.Fatalf("FillRegion failed: %v", err)
	}
	for l := 0; l < 2; l++ {
		for f := 3; f <= 6; f++ {
			if e.Sheet().Cell(l, f) != sheet.Blank {
				t.Errorf("Cell(%d,%d) should stay blank", l, f)
			}
		}
	}
}

// 先頭フレームには前のフレームがないので空白のまま
func TestFillRegion_BlankAtFrameZero(t *testing.T) {
	e := newTestEditor(t, 1, 1)
	if err := e.FillRegion(sheet.NewRegion(0, 0, 0, 2), sheet.Blank); err != nil {
		t.Fatalf("FillRegion failed: %v", err)
	}
	if e.Sheet().Cell(0, 0) != sheet.Blank {
		t.Error("Cell(0,0) should stay blank")
	}
}

func TestDeleteRegion_Clears(t *testing.T) {
	e := newTestEditor(t, 2, 1)
	e.Sheet().SetCell(0, 0, 1)
	e.Sheet().SetCell(0, 1, 2)
	e.Sheet().SetCell(1, 1, 3)

	if err := e.DeleteRegion(sheet.NewRegion(0, 0, 1, 1)); err != nil {
		t.Fatalf("DeleteRegion failed: %v", err)
	}
	for l := 0; l < 2; l++ {
		for f := 0; f < 2; f++ {
			if e.Sheet().Cell(l, f) != sheet.Blank {
				t.Errorf("Cell(%d,%d) should be blank", l, f)
			}
		}
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if e.Sheet().Cell(0, 0) != 1 || e.Sheet().Cell(0, 1) != 2 || e.Sheet().Cell(1, 1) != 3 {
		t.Error("undo should restore deleted values")
	}
}

func TestPasteRegion(t *testing.T) {
	e := newTestEditor(t, 3, 1)
	grid := [][]string{
		{"1", "2"},
		{"", "4"},
		{"5", ""},
	}
	if err := e.PasteRegion(1, 10, grid); err != nil {
		t.Fatalf("PasteRegion failed: %v", err)
	}
	want := map[[2]int]sheet.CellValue{
		{1, 10}: 1, {2, 10}: 2,
		{1, 11}: 0, {2, 11}: 4,
		{1, 12}: 5, {2, 12}: 0,
	}
	for pos, v := range want {
		if got := e.Sheet().Cell(pos[0], pos[1]); got != v {
			t.Errorf("Cell(%d,%d) = %d, want %d", pos[0], pos[1], got, v)
		}
	}
}

// はみ出す貼り付けは拒否せず、シート内に収まる部分だけを書き込む
func TestPasteRegion_ClipsOversizedBlock(t *testing.T) {
	e := newTestEditor(t, 2, 1) // 2レイヤー×24フレーム
	grid := [][]string{
		{"1", "2", "3"},
		{"4", "5", "6"},
	}
	if err := e.PasteRegion(1, 23, grid); err != nil {
		t.Fatalf("PasteRegion failed: %v", err)
	}
	if e.Sheet().Cell(1, 23) != 1 {
		t.Errorf("Cell(1,23) = %d, want 1", e.Sheet().Cell(1, 23))
	}
	// レイヤー2とフレーム24は存在しないので書かれない
	if e.History().UndoCount() != 1 {
		t.Errorf("UndoCount = %d, want 1", e.History().UndoCount())
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if e.Sheet().Cell(1, 23) != sheet.Blank {
		t.Error("undo should restore the clipped paste")
	}
}

func TestPasteRegion_AnchorOutOfRange(t *testing.T) {
	e := newTestEditor(t, 2, 1)
	err := e.PasteRegion(2, 0, [][]string{{"1"}})
	var ee *EditError
	if !errors.As(err, &ee) {
		t.Fatalf("expected EditError, got %v", err)
	}
}

// 検証に失敗した貼り付けはシートを一切変更しない
func TestPasteRegion_AtomicOnBadToken(t *testing.T) {
	e := newTestEditor(t, 1, 1)
	e.Sheet().SetCell(0, 0, 5)

	grid := [][]string{{"1"}, {"99999"}}
	if err := e.PasteRegion(0, 0, grid); err == nil {
		t.Fatal("expected error for oversized token")
	}
	if e.Sheet().Cell(0, 0) != 5 || e.Sheet().Cell(0, 1) != sheet.Blank {
		t.Error("failed paste must leave the sheet untouched")
	}
	if e.History().CanUndo() {
		t.Error("failed paste must not be recorded")
	}
}

// "-"は直前のフレームの値を引き継ぐ（元アプリのクリップボード互換）
func TestPasteRegion_HoldMarker(t *testing.T) {
	e := newTestEditor(t, 1, 1)
	e.Sheet().SetCell(0, 4, 8)

	if err := e.PasteRegion(0, 5, [][]string{{"-"}, {"-"}, {"2"}}); err != nil {
		t.Fatalf("PasteRegion failed: %v", err)
	}
	if e.Sheet().Cell(0, 5) != 8 || e.Sheet().Cell(0, 6) != 8 || e.Sheet().Cell(0, 7) != 2 {
		t.Errorf("cells = %d %d %d, want 8 8 2",
			e.Sheet().Cell(0, 5), e.Sheet().Cell(0, 6), e.Sheet().Cell(0, 7))
	}
}

func TestRepeat(t *testing.T) {
	e := newTestEditor(t, 1, 1)
	e.Sheet().SetCell(0, 0, 1)
	e.Sheet().SetCell(0, 1, 2)

	if err := e.Repeat(0, 0, 1, 2, false); err != nil {
		t.Fatalf("Repeat failed: %v", err)
	}
	wantVals := []sheet.CellValue{1, 2, 1, 2, 1, 2}
	for f, want := range wantVals {
		if got := e.Sheet().Cell(0, f); got != want {
			t.Errorf("Cell(0,%d) = %d, want %d", f, got, want)
		}
	}
	if e.Sheet().Cell(0, 6) != sheet.Blank {
		t.Error("repeat wrote past the requested count")
	}
}

func TestRepeat_UntilEndStopsAtSheetEnd(t *testing.T) {
	e := newTestEditor(t, 1, 1) // 24フレーム
	e.Sheet().SetCell(0, 20, 3)
	e.Sheet().SetCell(0, 21, 4)

	if err := e.Repeat(0, 20, 21, 0, true); err != nil {
		t.Fatalf("Repeat failed: %v", err)
	}
	if e.Sheet().Cell(0, 22) != 3 || e.Sheet().Cell(0, 23) != 4 {
		t.Error("repeat until end should fill the remaining frames")
	}

	// 末尾の選択は繰り返す先がない
	if err := e.Repeat(0, 22, 23, 1, false); err == nil {
		t.Error("expected error when no frames remain")
	}
}

func TestSequenceFill(t *testing.T) {
	e := newTestEditor(t, 1, 1)
	if err := e.SequenceFill(0, 0, 1, 3, 2); err != nil {
		t.Fatalf("SequenceFill failed: %v", err)
	}
	wantVals := []sheet.CellValue{1, 1, 2, 2, 3, 3}
	for f, want := range wantVals {
		if got := e.Sheet().Cell(0, f); got != want {
			t.Errorf("Cell(0,%d) = %d, want %d", f, got, want)
		}
	}

	// 降順も可
	if err := e.SequenceFill(0, 10, 3, 1, 1); err != nil {
		t.Fatalf("SequenceFill failed: %v", err)
	}
	for i, want := range []sheet.CellValue{3, 2, 1} {
		if got := e.Sheet().Cell(0, 10+i); got != want {
			t.Errorf("Cell(0,%d) = %d, want %d", 10+i, got, want)
		}
	}
}

func TestSequenceFill_ClipsAtSheetEnd(t *testing.T) {
	e := newTestEditor(t, 1, 1) // 24フレーム
	if err := e.SequenceFill(0, 22, 1, 5, 2); err != nil {
		t.Fatalf("SequenceFill failed: %v", err)
	}
	if e.Sheet().Cell(0, 22) != 1 || e.Sheet().Cell(0, 23) != 1 {
		t.Error("sequence should start at frame 22")
	}
}

func TestUndoRedo(t *testing.T) {
	e := newTestEditor(t, 1, 1)

	if err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("empty undo = %v, want ErrNothingToUndo", err)
	}
	if err := e.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("empty redo = %v, want ErrNothingToRedo", err)
	}

	e.SetCell(0, 0, 1)
	e.SetCell(0, 0, 2)

	e.Undo()
	if e.Sheet().Cell(0, 0) != 1 {
		t.Errorf("after undo Cell = %d, want 1", e.Sheet().Cell(0, 0))
	}
	e.Redo()
	if e.Sheet().Cell(0, 0) != 2 {
		t.Errorf("after redo Cell = %d, want 2", e.Sheet().Cell(0, 0))
	}

	// 取り消した後に新しい編集をするとredoは消える
	e.Undo()
	e.SetCell(0, 1, 9)
	if err := e.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("redo after new edit = %v, want ErrNothingToRedo", err)
	}
}

// 履歴が上限を超えたら最古のエントリから捨てられる
func TestHistory_EvictsOldestBeyondLimit(t *testing.T) {
	s, _ := sheet.New(sheet.Params{
		Name: "t", LayerCount: 1, FrameRate: 24, FramesPerPage: 24, Seconds: 1,
	})
	e := NewEditor(s, 3)

	for i := 1; i <= 5; i++ {
		if err := e.SetCell(0, 0, sheet.CellValue(i)); err != nil {
			t.Fatalf("SetCell failed: %v", err)
		}
	}
	if e.History().UndoCount() != 3 {
		t.Fatalf("UndoCount = %d, want 3", e.History().UndoCount())
	}

	// 3回は取り消せる: 5 -> 4 -> 3 -> 2
	for i := 0; i < 3; i++ {
		if err := e.Undo(); err != nil {
			t.Fatalf("Undo %d failed: %v", i, err)
		}
	}
	if e.Sheet().Cell(0, 0) != 2 {
		t.Errorf("Cell = %d, want 2 (oldest entries evicted)", e.Sheet().Cell(0, 0))
	}
	if err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("4th undo = %v, want ErrNothingToUndo", err)
	}
}
