package edit

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/zurustar/sts-et/pkg/sheet"
)

type randomEdit struct {
	Layer int
	Frame int
	Value uint16
}

// N回編集してN回取り消すと元のシートに完全に戻る
func TestEditorUndoInverseProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("undoing every edit restores the original sheet", prop.ForAll(
		func(edits []randomEdit) bool {
			s, err := sheet.New(sheet.Params{
				Name: "p", LayerCount: 4, FrameRate: 24, FramesPerPage: 24, Seconds: 1,
			})
			if err != nil {
				return false
			}
			original := s.Clone()
			e := NewEditor(s, len(edits)+1)

			applied := 0
			for _, ed := range edits {
				if err := e.SetCell(ed.Layer, ed.Frame, sheet.CellValue(ed.Value)); err != nil {
					return false
				}
				applied++
			}
			for i := 0; i < applied; i++ {
				if err := e.Undo(); err != nil {
					return false
				}
			}
			return e.Sheet().Equal(original)
		},
		gen.SliceOf(gen.Struct(reflect.TypeOf(randomEdit{}), map[string]gopter.Gen{
			"Layer": gen.IntRange(0, 3),
			"Frame": gen.IntRange(0, 23),
			"Value": gen.UInt16(),
		})),
	))

	properties.Property("redo after undo reproduces the edited sheet", prop.ForAll(
		func(edits []randomEdit) bool {
			s, err := sheet.New(sheet.Params{
				Name: "p", LayerCount: 4, FrameRate: 24, FramesPerPage: 24, Seconds: 1,
			})
			if err != nil {
				return false
			}
			e := NewEditor(s, len(edits)+1)
			for _, ed := range edits {
				if err := e.SetCell(ed.Layer, ed.Frame, sheet.CellValue(ed.Value)); err != nil {
					return false
				}
			}
			edited := e.Sheet().Clone()
			for i := 0; i < len(edits); i++ {
				if err := e.Undo(); err != nil {
					return false
				}
			}
			for i := 0; i < len(edits); i++ {
				if err := e.Redo(); err != nil {
					return false
				}
			}
			return e.Sheet().Equal(edited)
		},
		gen.SliceOf(gen.Struct(reflect.TypeOf(randomEdit{}), map[string]gopter.Gen{
			"Layer": gen.IntRange(0, 3),
			"Frame": gen.IntRange(0, 23),
			"Value": gen.UInt16(),
		})),
	))

	properties.TestingRun(t)
}
