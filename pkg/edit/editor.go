// Package edit はシートに対する取り消し可能な編集操作を提供する。
// 各操作は対象セルをすべて検証してから一括で書き込み、
// 1つのCommandとして履歴に記録される。検証に失敗した操作は
// シートを一切変更しない。
package edit

import (
	"strconv"
	"strings"

	"github.com/zurustar/sts-et/pkg/sheet"
)

// Editor は1枚のシートに対する編集エンジン
type Editor struct {
	sheet   *sheet.Sheet
	history *History
}

// NewEditor はシートsの編集エンジンを作成する。
// historyLimitが0以下なら既定の履歴段数を使う。
func NewEditor(s *sheet.Sheet, historyLimit int) *Editor {
	return &Editor{
		sheet:   s,
		history: NewHistory(historyLimit),
	}
}

// Sheet は編集対象のシートを返す
func (e *Editor) Sheet() *sheet.Sheet { return e.sheet }

// History は履歴スタックを返す
func (e *Editor) History() *History { return e.history }

// commit は検証済みの編集を適用してCommandを1つ履歴に積む
func (e *Editor) commit(r sheet.Region, after [][]sheet.CellValue) {
	c := &Command{
		region: r,
		before: snapshotRegion(e.sheet, r),
		after:  after,
	}
	c.applyAfter(e.sheet)
	e.history.Push(c)
}

func (e *Editor) checkRegion(op string, r sheet.Region) error {
	if !e.sheet.InBounds(r.MinLayer, r.MinFrame) {
		return &EditError{Op: op, Layer: r.MinLayer, Frame: r.MinFrame, Reason: "index out of range"}
	}
	if !e.sheet.InBounds(r.MaxLayer, r.MaxFrame) {
		return &EditError{Op: op, Layer: r.MaxLayer, Frame: r.MaxFrame, Reason: "index out of range"}
	}
	return nil
}

// SetCell は1セルを書き換える
func (e *Editor) SetCell(layer, frame int, v sheet.CellValue) error {
	if !e.sheet.InBounds(layer, frame) {
		return &EditError{Op: "set cell", Layer: layer, Frame: frame, Reason: "index out of range"}
	}
	e.commit(sheet.CellRegion(layer, frame), [][]sheet.CellValue{{v}})
	return nil
}

// SetCellToken はトークン文字列で1セルを書き換える。
// 上限を超える番号は切り捨てずに拒否する。
func (e *Editor) SetCellToken(layer, frame int, token string) error {
	v, err := sheet.ParseToken(token)
	if err != nil {
		return &EditError{Op: "set cell", Layer: layer, Frame: frame, Reason: err.Error()}
	}
	return e.SetCell(layer, frame, v)
}

// FillRegion は矩形領域を値vで埋める。
// vが空白のときは「1フレーム前のセルの値を写す」規則を適用する:
// 各対象セルには同じレイヤーの1フレーム前の値（埋める前の値）が
// 入り、前のフレームがなければ空白のまま。置換は確定時に1回だけ
// 行われ、同じ塗りの中で連鎖しない。
func (e *Editor) FillRegion(r sheet.Region, v sheet.CellValue) error {
	if err := e.checkRegion("fill region", r); err != nil {
		return err
	}

	after := make([][]sheet.CellValue, r.LayerSpan())
	for lo := range after {
		after[lo] = make([]sheet.CellValue, r.FrameSpan())
		for fo := range after[lo] {
			if !v.IsBlank() {
				after[lo][fo] = v
				continue
			}
			// 置換はすべて塗る前のシートの値から読む
			after[lo][fo] = e.sheet.Cell(r.MinLayer+lo, r.MinFrame+fo-1)
		}
	}

	e.commit(r, after)
	return nil
}

// DeleteRegion は矩形領域を空白にする
func (e *Editor) DeleteRegion(r sheet.Region) error {
	if err := e.checkRegion("delete region", r); err != nil {
		return err
	}

	after := make([][]sheet.CellValue, r.LayerSpan())
	for lo := range after {
		after[lo] = make([]sheet.CellValue, r.FrameSpan())
	}

	e.commit(r, after)
	return nil
}

// PasteRegion はトークングリッドを(anchorLayer, anchorFrame)を左上に
// して貼り付ける。シートからはみ出す部分は黙って切り捨てる。
// grid[フレームオフセット][レイヤーオフセット]（clipboard.FromTextの形）。
func (e *Editor) PasteRegion(anchorLayer, anchorFrame int, grid [][]string) error {
	if !e.sheet.InBounds(anchorLayer, anchorFrame) {
		return &EditError{Op: "paste", Layer: anchorLayer, Frame: anchorFrame, Reason: "index out of range"}
	}
	if len(grid) == 0 {
		return nil
	}

	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}

	// シート境界で切り詰める
	frameSpan := min(len(grid), e.sheet.FrameCount-anchorFrame)
	layerSpan := min(width, e.sheet.LayerCount-anchorLayer)
	if frameSpan == 0 || layerSpan == 0 || width == 0 {
		return nil
	}

	r := sheet.Region{
		MinLayer: anchorLayer, MinFrame: anchorFrame,
		MaxLayer: anchorLayer + layerSpan - 1, MaxFrame: anchorFrame + frameSpan - 1,
	}

	// 全トークンを検証してからまとめて書く
	after := make([][]sheet.CellValue, layerSpan)
	for lo := range after {
		after[lo] = make([]sheet.CellValue, frameSpan)
	}
	for fo := 0; fo < frameSpan; fo++ {
		for lo := 0; lo < layerSpan; lo++ {
			token := ""
			if lo < len(grid[fo]) {
				token = strings.TrimSpace(grid[fo][lo])
			}
			v, hold, err := parsePasteToken(token)
			if err != nil {
				return &EditError{Op: "paste", Layer: anchorLayer + lo, Frame: anchorFrame + fo, Reason: err.Error()}
			}
			if hold {
				// "-" は直前のフレームの値を引き継ぐ
				if fo > 0 {
					v = after[lo][fo-1]
				} else {
					v = e.sheet.Cell(anchorLayer+lo, anchorFrame-1)
				}
			}
			after[lo][fo] = v
		}
	}

	e.commit(r, after)
	return nil
}

// parsePasteToken はクリップボード由来のトークンを解釈する。
// 数値でないゴミは空白として受け流すが、2バイト幅を超える番号は
// 拒否する（切り捨てない）。
func parsePasteToken(token string) (v sheet.CellValue, hold bool, err error) {
	if token == "" {
		return sheet.Blank, false, nil
	}
	if token == "-" {
		return sheet.Blank, true, nil
	}
	n, convErr := strconv.Atoi(token)
	if convErr != nil || n < 0 {
		return sheet.Blank, false, nil
	}
	if n > sheet.MaxCellNumber {
		return sheet.Blank, false, &sheet.ValidationError{Field: "cell", Value: n, Reason: "cell number out of range 0..65535"}
	}
	return sheet.CellValue(n), false, nil
}

// Repeat は単一レイヤーの[startFrame, endFrame]の並びを、その直後から
// count回（untilEndならシート末尾まで）繰り返し書き込む
func (e *Editor) Repeat(layer, startFrame, endFrame, count int, untilEnd bool) error {
	src := sheet.NewRegion(layer, startFrame, layer, endFrame)
	if err := e.checkRegion("repeat", src); err != nil {
		return err
	}
	if !untilEnd && count < 1 {
		return &EditError{Op: "repeat", Layer: layer, Frame: startFrame, Reason: "repeat count must be at least 1"}
	}

	srcLen := src.FrameSpan()
	insertStart := src.MaxFrame + 1
	available := e.sheet.FrameCount - insertStart
	if available <= 0 {
		return &EditError{Op: "repeat", Layer: layer, Frame: insertStart, Reason: "no frames available to repeat into"}
	}

	writeLen := available
	if !untilEnd {
		writeLen = min(srcLen*count, available)
	}

	after := [][]sheet.CellValue{make([]sheet.CellValue, writeLen)}
	for i := 0; i < writeLen; i++ {
		after[0][i] = e.sheet.Cell(layer, src.MinFrame+i%srcLen)
	}

	e.commit(sheet.Region{
		MinLayer: layer, MinFrame: insertStart,
		MaxLayer: layer, MaxFrame: insertStart + writeLen - 1,
	}, after)
	return nil
}

// SequenceFill はstartValueからendValueまでの番号を各holdFramesコマ
// ずつ並べて書き込む（例: start=1, end=3, hold=2 -> 1 1 2 2 3 3）。
// シート末尾で切り詰める。
func (e *Editor) SequenceFill(layer, startFrame, startValue, endValue, holdFrames int) error {
	if !e.sheet.InBounds(layer, startFrame) {
		return &EditError{Op: "sequence fill", Layer: layer, Frame: startFrame, Reason: "index out of range"}
	}
	if holdFrames < 1 {
		return &EditError{Op: "sequence fill", Layer: layer, Frame: startFrame, Reason: "hold frames must be at least 1"}
	}
	if startValue < 1 || startValue > sheet.MaxCellNumber || endValue < 1 || endValue > sheet.MaxCellNumber {
		return &EditError{Op: "sequence fill", Layer: layer, Frame: startFrame, Reason: "cell number out of range 1..65535"}
	}

	valueCount := endValue - startValue + 1
	step := 1
	if endValue < startValue {
		valueCount = startValue - endValue + 1
		step = -1
	}

	writeLen := min(valueCount*holdFrames, e.sheet.FrameCount-startFrame)
	after := [][]sheet.CellValue{make([]sheet.CellValue, writeLen)}
	for i := 0; i < writeLen; i++ {
		after[0][i] = sheet.CellValue(startValue + step*(i/holdFrames))
	}

	e.commit(sheet.Region{
		MinLayer: layer, MinFrame: startFrame,
		MaxLayer: layer, MaxFrame: startFrame + writeLen - 1,
	}, after)
	return nil
}

// Undo は直近の編集を取り消す。履歴が空ならErrNothingToUndo。
func (e *Editor) Undo() error {
	c := e.history.popUndo()
	if c == nil {
		return ErrNothingToUndo
	}
	c.applyBefore(e.sheet)
	return nil
}

// Redo は直近に取り消した編集をやり直す。なければErrNothingToRedo。
func (e *Editor) Redo() error {
	c := e.history.popRedo()
	if c == nil {
		return ErrNothingToRedo
	}
	c.applyAfter(e.sheet)
	return nil
}
