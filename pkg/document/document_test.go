package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zurustar/sts-et/pkg/sheet"
)

func newTestDocument(t *testing.T) *Document {
	t.Helper()
	d, err := New(sheet.Params{
		Name: "cut01", LayerCount: 3, FrameRate: 24, FramesPerPage: 144, Seconds: 2,
	}, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return d
}

func TestNewDocument(t *testing.T) {
	d := newTestDocument(t)
	if d.Dirty() {
		t.Error("new document should not be dirty")
	}
	if d.Path() != "" {
		t.Errorf("Path = %q, want empty", d.Path())
	}
	if d.Title() != "cut01" {
		t.Errorf("Title = %q, want cut01", d.Title())
	}
}

func TestEditMarksDirty(t *testing.T) {
	d := newTestDocument(t)
	if err := d.SetCell(0, 0, "1"); err != nil {
		t.Fatalf("SetCell failed: %v", err)
	}
	if !d.Dirty() {
		t.Error("document should be dirty after an edit")
	}
	if d.Title() != "cut01 *" {
		t.Errorf("Title = %q, want cut01 *", d.Title())
	}
}

func TestFailedEditDoesNotMarkDirty(t *testing.T) {
	d := newTestDocument(t)
	if err := d.SetCell(0, 0, "junk"); err == nil {
		t.Fatal("expected error for bad token")
	}
	if d.Dirty() {
		t.Error("failed edit should not mark the document dirty")
	}
}

func TestSaveWithoutPath(t *testing.T) {
	d := newTestDocument(t)
	if err := d.Save(); !errors.Is(err, ErrNoPath) {
		t.Errorf("Save = %v, want ErrNoPath", err)
	}
}

func TestSaveAsAndOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cut01.sts")

	d := newTestDocument(t)
	d.SetCell(1, 5, "12")
	d.RenameLayer(1, "セル")

	if err := d.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	if d.Dirty() {
		t.Error("document should be clean after save")
	}
	if d.Path() != path {
		t.Errorf("Path = %q, want %q", d.Path(), path)
	}

	d2, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !d2.Sheet().Equal(d.Sheet()) {
		t.Error("reopened sheet differs from the saved one")
	}
	if d2.Sheet().Layers[1].Label != "セル" {
		t.Errorf("label = %q, want セル", d2.Sheet().Layers[1].Label)
	}
}

func TestSaveAsFillsEmptyNameFromPath(t *testing.T) {
	dir := t.TempDir()
	d := newTestDocument(t)
	d.Sheet().Name = ""

	path := filepath.Join(dir, "cut07.sts")
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	if d.Sheet().Name != "cut07" {
		t.Errorf("Name = %q, want cut07", d.Sheet().Name)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "none.sts"), 0); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Open(string(os.PathSeparator), 0); err == nil {
		t.Error("expected error for a directory")
	}
}

func TestCopyCutPaste(t *testing.T) {
	d := newTestDocument(t)
	d.SetCell(0, 0, "1")
	d.SetCell(1, 0, "2")
	d.SetCell(1, 1, "4")
	d.SetCell(0, 2, "5")

	r := sheet.NewRegion(0, 0, 1, 2)
	text, err := d.Copy(r)
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if text != "1\t2\n\t4\n5\t" {
		t.Errorf("Copy = %q, want %q", text, "1\t2\n\t4\n5\t")
	}

	if err := d.Paste(0, 10, text); err != nil {
		t.Fatalf("Paste failed: %v", err)
	}
	if d.Sheet().Cell(0, 10) != 1 || d.Sheet().Cell(1, 11) != 4 || d.Sheet().Cell(0, 12) != 5 {
		t.Error("pasted block does not match the copied one")
	}

	cutText, err := d.Cut(r)
	if err != nil {
		t.Fatalf("Cut failed: %v", err)
	}
	if cutText != text {
		t.Errorf("Cut = %q, want %q", cutText, text)
	}
	if d.Sheet().Cell(0, 0) != sheet.Blank || d.Sheet().Cell(1, 1) != sheet.Blank {
		t.Error("Cut should clear the source region")
	}

	// 切り取りは取り消せる
	if !d.Undo() {
		t.Fatal("Undo should succeed after Cut")
	}
	if d.Sheet().Cell(1, 1) != 4 {
		t.Error("undo should restore the cut cells")
	}
}

func TestCopyOutOfRange(t *testing.T) {
	d := newTestDocument(t)
	if _, err := d.Copy(sheet.NewRegion(0, 0, 5, 0)); err == nil {
		t.Error("expected error for out-of-range region")
	}
}

func TestUndoRedoWithoutHistory(t *testing.T) {
	d := newTestDocument(t)
	if d.Undo() {
		t.Error("Undo on empty history should return false")
	}
	if d.Redo() {
		t.Error("Redo on empty history should return false")
	}
}

func TestStructuralEditsClearHistory(t *testing.T) {
	d := newTestDocument(t)
	d.SetCell(0, 0, "1")
	if !d.CanUndo() {
		t.Fatal("expected undoable edit")
	}

	if err := d.InsertLayer(1, "新規"); err != nil {
		t.Fatalf("InsertLayer failed: %v", err)
	}
	if d.CanUndo() {
		t.Error("layer insert should clear the history")
	}
	if d.Sheet().LayerCount != 4 {
		t.Errorf("LayerCount = %d, want 4", d.Sheet().LayerCount)
	}

	d.SetCell(0, 1, "2")
	if _, err := d.Cut(sheet.CellRegion(0, 1)); err != nil {
		t.Fatalf("Cut failed: %v", err)
	}
	if err := d.DeleteLayer(1); err != nil {
		t.Fatalf("DeleteLayer failed: %v", err)
	}
	if d.CanUndo() {
		t.Error("layer delete should clear the history")
	}
}

func TestResize(t *testing.T) {
	d := newTestDocument(t)
	d.SetCell(0, 0, "1")

	if err := d.Resize(2, 24); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if d.Sheet().LayerCount != 2 || d.Sheet().FrameCount != 24 {
		t.Errorf("size = %dx%d, want 2x24", d.Sheet().LayerCount, d.Sheet().FrameCount)
	}
	if d.Sheet().Cell(0, 0) != 1 {
		t.Error("resize should preserve surviving cells")
	}
	if d.CanUndo() {
		t.Error("resize should clear the history")
	}
}
