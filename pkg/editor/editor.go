// Package editor はタイムシートのグリッド編集画面を提供する。
// シートの状態と編集はすべてpkg/documentに委譲し、ここでは
// カーソル・選択範囲・数字入力バッファなどの画面状態だけを持つ。
package editor

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/zurustar/sts-et/pkg/document"
	"github.com/zurustar/sts-et/pkg/logger"
	"github.com/zurustar/sts-et/pkg/sheet"
)

var (
	// 背景色 #202830
	backgroundColor = color.RGBA{0x20, 0x28, 0x30, 0xFF}
	// 罫線色
	gridColor = color.RGBA{0x50, 0x58, 0x60, 0xFF}
	// ページ区切りの罫線色
	pageRuleColor = color.RGBA{0x90, 0x98, 0xA0, 0xFF}
	// テキスト色（白）
	textColor = color.White
	// カーソル枠の色（黄色）
	cursorColor = color.RGBA{0xFF, 0xFF, 0x00, 0xFF}
	// 選択範囲の色
	selectionColor = color.RGBA{0x30, 0x50, 0x80, 0xFF}
	// デフォルトフォント
	defaultFace = text.NewGoXFace(basicfont.Face7x13)
)

// グリッドの寸法（ピクセル）
const (
	screenWidth  = 1024
	screenHeight = 768

	frameColWidth = 48 // フレーム番号の列
	cellWidth     = 64
	cellHeight    = 16
	headerHeight  = 24
	statusHeight  = 20

	// キーリピート
	repeatDelay    = 20 // 最初のリピートまでのフレーム数
	repeatInterval = 3
)

// Game はEbitengineのゲームインターフェースを実装する
type Game struct {
	doc *document.Document

	// カーソルと選択範囲
	cursorLayer int
	cursorFrame int
	selecting   bool
	selLayer    int // 選択の起点
	selFrame    int

	// 表示範囲の先頭
	topFrame  int
	leftLayer int

	input     string // 数字入力バッファ
	clipboard string // アプリ内クリップボード
	status    string // ステータスバーのメッセージ
}

// NewGame Gameを作成
func NewGame(doc *document.Document) *Game {
	return &Game{doc: doc}
}

// Update 入力を処理して画面状態を更新する
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if g.input != "" {
			g.input = ""
			return nil
		}
		return ebiten.Termination
	}

	g.updateCursor()
	g.updateInput()
	if err := g.updateCommands(); err != nil {
		return err
	}
	g.scrollToCursor()
	ebiten.SetWindowTitle("sts-et - " + g.doc.Title())
	return nil
}

// updateCursor は矢印キーによるカーソル移動と範囲選択を処理する
func (g *Game) updateCursor() {
	dl, df := 0, 0
	if repeatingKeyPressed(ebiten.KeyUp) {
		df = -1
	}
	if repeatingKeyPressed(ebiten.KeyDown) {
		df = 1
	}
	if repeatingKeyPressed(ebiten.KeyLeft) {
		dl = -1
	}
	if repeatingKeyPressed(ebiten.KeyRight) {
		dl = 1
	}
	if repeatingKeyPressed(ebiten.KeyPageDown) {
		df = g.doc.Sheet().FramesPerPage
	}
	if repeatingKeyPressed(ebiten.KeyPageUp) {
		df = -g.doc.Sheet().FramesPerPage
	}
	if dl == 0 && df == 0 {
		return
	}

	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	if shift && !g.selecting {
		// 選択の起点を置く
		g.selecting = true
		g.selLayer = g.cursorLayer
		g.selFrame = g.cursorFrame
	}
	if !shift {
		g.selecting = false
	}

	s := g.doc.Sheet()
	if s.FrameCount == 0 {
		return
	}
	g.cursorLayer = clamp(g.cursorLayer+dl, 0, s.LayerCount-1)
	g.cursorFrame = clamp(g.cursorFrame+df, 0, s.FrameCount-1)
}

// updateInput は数字入力バッファを更新する
func (g *Game) updateInput() {
	for _, r := range ebiten.AppendInputChars(nil) {
		if r >= '0' && r <= '9' {
			g.input += string(r)
		}
	}
	if repeatingKeyPressed(ebiten.KeyBackspace) && g.input != "" {
		g.input = g.input[:len(g.input)-1]
	}
}

// updateCommands は編集コマンドのキー操作を処理する
func (g *Game) updateCommands() error {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl)

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		// バッファをカーソル位置に書き込んで1フレーム進む
		if err := g.doc.SetCell(g.cursorLayer, g.cursorFrame, g.input); err != nil {
			g.status = err.Error()
		} else {
			g.status = ""
		}
		g.input = ""
		if g.cursorFrame < g.doc.Sheet().FrameCount-1 {
			g.cursorFrame++
		}

	case inpututil.IsKeyJustPressed(ebiten.KeyDelete):
		if err := g.doc.Delete(g.selection()); err != nil {
			g.status = err.Error()
		}

	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyF):
		// 選択範囲を塗る。バッファが空なら1フレーム前の値を写す。
		v, err := sheet.ParseToken(g.input)
		if err != nil {
			g.status = err.Error()
			break
		}
		if err := g.doc.Fill(g.selection(), v); err != nil {
			g.status = err.Error()
		}
		g.input = ""

	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyZ):
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			g.doc.Redo()
		} else {
			g.doc.Undo()
		}

	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyY):
		g.doc.Redo()

	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyC):
		text, err := g.doc.Copy(g.selection())
		if err != nil {
			g.status = err.Error()
			break
		}
		g.clipboard = text

	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyX):
		text, err := g.doc.Cut(g.selection())
		if err != nil {
			g.status = err.Error()
			break
		}
		g.clipboard = text

	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyV):
		if g.clipboard == "" {
			break
		}
		if err := g.doc.Paste(g.cursorLayer, g.cursorFrame, g.clipboard); err != nil {
			g.status = err.Error()
		}

	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS):
		if err := g.save(); err != nil {
			g.status = err.Error()
			logger.GetLogger().Error("保存に失敗", "error", err)
		}
	}
	return nil
}

func (g *Game) save() error {
	err := g.doc.Save()
	if err == document.ErrNoPath {
		// 保存先が未設定ならシート名から決める
		err = g.doc.SaveAs(g.doc.Sheet().Name + ".sts")
	}
	if err == nil {
		g.status = "saved: " + g.doc.Path()
	}
	return err
}

// selection は現在の選択範囲（なければカーソルセル）を返す
func (g *Game) selection() sheet.Region {
	if g.selecting {
		return sheet.NewRegion(g.selLayer, g.selFrame, g.cursorLayer, g.cursorFrame)
	}
	return sheet.CellRegion(g.cursorLayer, g.cursorFrame)
}

// scrollToCursor はカーソルが画面に収まるように表示範囲を動かす
func (g *Game) scrollToCursor() {
	visRows := (screenHeight - headerHeight - statusHeight) / cellHeight
	visCols := (screenWidth - frameColWidth) / cellWidth

	if g.cursorFrame < g.topFrame {
		g.topFrame = g.cursorFrame
	}
	if g.cursorFrame >= g.topFrame+visRows {
		g.topFrame = g.cursorFrame - visRows + 1
	}
	if g.cursorLayer < g.leftLayer {
		g.leftLayer = g.cursorLayer
	}
	if g.cursorLayer >= g.leftLayer+visCols {
		g.leftLayer = g.cursorLayer - visCols + 1
	}
}

// Draw グリッドを描画する
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	s := g.doc.Sheet()
	visRows := (screenHeight - headerHeight - statusHeight) / cellHeight
	visCols := (screenWidth - frameColWidth) / cellWidth

	// レイヤー名のヘッダー
	for c := 0; c < visCols; c++ {
		l := g.leftLayer + c
		if l >= s.LayerCount {
			break
		}
		x := float64(frameColWidth + c*cellWidth)
		drawText(screen, s.Layers[l].Label, x+4, 4, textColor)
	}

	sel := g.selection()
	for r := 0; r < visRows; r++ {
		f := g.topFrame + r
		if f >= s.FrameCount {
			break
		}
		y := float64(headerHeight + r*cellHeight)

		// フレーム番号（1始まり）
		drawText(screen, strconv.Itoa(f+1), 4, y, textColor)

		for c := 0; c < visCols; c++ {
			l := g.leftLayer + c
			if l >= s.LayerCount {
				break
			}
			x := float64(frameColWidth + c*cellWidth)

			if g.selecting && sel.Contains(l, f) {
				vector.DrawFilledRect(screen, float32(x), float32(y),
					cellWidth, cellHeight, selectionColor, false)
			}
			drawText(screen, s.Cell(l, f).Token(), x+4, y, textColor)
		}

		// 横罫線。ページの区切りは目立つ色にする。
		lineColor := gridColor
		if (f+1)%s.FramesPerPage == 0 {
			lineColor = pageRuleColor
		}
		vector.StrokeLine(screen, 0, float32(y+cellHeight),
			screenWidth, float32(y+cellHeight), 1, lineColor, false)
	}

	// 縦罫線
	for c := 0; c <= visCols; c++ {
		x := float32(frameColWidth + c*cellWidth)
		vector.StrokeLine(screen, x, 0, x, screenHeight-statusHeight, 1, gridColor, false)
	}

	// カーソル枠
	if s.FrameCount > 0 {
		cx := float32(frameColWidth + (g.cursorLayer-g.leftLayer)*cellWidth)
		cy := float32(headerHeight + (g.cursorFrame-g.topFrame)*cellHeight)
		vector.StrokeRect(screen, cx, cy, cellWidth, cellHeight, 2, cursorColor, false)
	}

	g.drawStatus(screen)
}

// drawStatus は画面下部のステータスバーを描画する
func (g *Game) drawStatus(screen *ebiten.Image) {
	y := float64(screenHeight - statusHeight)
	vector.DrawFilledRect(screen, 0, float32(y), screenWidth, statusHeight, gridColor, false)

	s := g.doc.Sheet()
	line := fmt.Sprintf("%s  %s%d", g.doc.Title(),
		sheet.ColumnLabel(g.cursorLayer), g.cursorFrame+1)
	if g.input != "" {
		line += "  input: " + g.input
	}
	if g.status != "" {
		line += "  " + g.status
	}
	page, _ := s.PageOf(g.cursorFrame)
	lastPage, _ := s.PageOf(max(s.FrameCount-1, 0))
	line += fmt.Sprintf("  page %d/%d", page, lastPage)
	drawText(screen, line, 4, y+2, textColor)
}

func drawText(screen *ebiten.Image, str string, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, str, defaultFace, op)
}

// Layout 画面サイズを返す
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// repeatingKeyPressed は押しっぱなしのキーを一定間隔でtrueにする
func repeatingKeyPressed(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	if d == 1 {
		return true
	}
	return d >= repeatDelay && (d-repeatDelay)%repeatInterval == 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Run はエディタのウィンドウを開いて閉じられるまで実行する
func Run(doc *document.Document) error {
	game := NewGame(doc)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("sts-et - " + doc.Title())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("failed to run editor: %w", err)
	}
	return nil
}
