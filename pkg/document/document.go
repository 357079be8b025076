// Package document は開いている1つのタイムシートを管理する。
// ファイル入出力・編集エンジン・クリップボードをまとめ、
// 変更フラグとタイトルをUI向けに提供する。
package document

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/zurustar/sts-et/pkg/clipboard"
	"github.com/zurustar/sts-et/pkg/edit"
	"github.com/zurustar/sts-et/pkg/logger"
	"github.com/zurustar/sts-et/pkg/sheet"
	"github.com/zurustar/sts-et/pkg/sts"
)

// ErrNoPath は保存先が決まっていないときにSaveが返す
var ErrNoPath = errors.New("document has no file path")

// Document は編集中のタイムシート
type Document struct {
	path   string
	editor *edit.Editor
	dirty  bool
}

// New はパラメータから新規シートの文書を作成する
func New(p sheet.Params, historyLimit int) (*Document, error) {
	s, err := sheet.New(p)
	if err != nil {
		return nil, err
	}
	logger.GetLogger().Info("新規シートを作成",
		"name", s.Name, "layers", s.LayerCount, "frames", s.FrameCount)
	return &Document{editor: edit.NewEditor(s, historyLimit)}, nil
}

// FromSheet は既存のシートから文書を作成する。
// CSVやXDTSから取り込んだシートは保存先を持たないので、
// 最初の保存はSaveAsになる。
func FromSheet(s *sheet.Sheet, historyLimit int) *Document {
	return &Document{editor: edit.NewEditor(s, historyLimit)}
}

// Open はSTSファイルを読み込んで文書を作成する
func Open(path string, historyLimit int) (*Document, error) {
	s, err := sts.ReadFile(path)
	if err != nil {
		return nil, err
	}
	logger.GetLogger().Info("シートを読み込み",
		"path", path, "layers", s.LayerCount, "frames", s.FrameCount)
	return &Document{path: path, editor: edit.NewEditor(s, historyLimit)}, nil
}

// Sheet は編集対象のシートを返す
func (d *Document) Sheet() *sheet.Sheet { return d.editor.Sheet() }

// Path は現在の保存先。未保存なら空文字列。
func (d *Document) Path() string { return d.path }

// Dirty は最後の保存以降に変更があるかどうか
func (d *Document) Dirty() bool { return d.dirty }

// Title はウィンドウ表示用のタイトル。未保存の変更があれば*を付ける。
func (d *Document) Title() string {
	name := d.Sheet().Name
	if name == "" {
		name = "untitled"
	}
	if d.dirty {
		return name + " *"
	}
	return name
}

// Save は現在のパスに書き出す。パスが未設定ならErrNoPath。
func (d *Document) Save() error {
	if d.path == "" {
		return ErrNoPath
	}
	return d.SaveAs(d.path)
}

// SaveAs はpathに書き出し、以後の保存先にする
func (d *Document) SaveAs(path string) error {
	s := d.Sheet()
	if s.Name == "" {
		s.Name = fileStem(path)
	}
	if err := sts.WriteFile(path, s); err != nil {
		return err
	}
	d.path = path
	d.dirty = false
	logger.GetLogger().Info("シートを保存", "path", path)
	return nil
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// markDirty は編集が確定したときに呼ぶ
func (d *Document) markDirty(err error) error {
	if err == nil {
		d.dirty = true
	}
	return err
}

// SetCell は1セルをトークン文字列で書き換える
func (d *Document) SetCell(layer, frame int, token string) error {
	return d.markDirty(d.editor.SetCellToken(layer, frame, token))
}

// Fill は矩形領域を値で埋める
func (d *Document) Fill(r sheet.Region, v sheet.CellValue) error {
	return d.markDirty(d.editor.FillRegion(r, v))
}

// Delete は矩形領域を空白にする
func (d *Document) Delete(r sheet.Region) error {
	return d.markDirty(d.editor.DeleteRegion(r))
}

// Repeat は選択範囲の並びを直後から繰り返す
func (d *Document) Repeat(layer, startFrame, endFrame, count int, untilEnd bool) error {
	return d.markDirty(d.editor.Repeat(layer, startFrame, endFrame, count, untilEnd))
}

// SequenceFill は連番を指定コマ数ずつ書き込む
func (d *Document) SequenceFill(layer, startFrame, startValue, endValue, holdFrames int) error {
	return d.markDirty(d.editor.SequenceFill(layer, startFrame, startValue, endValue, holdFrames))
}

// Copy は矩形領域をタブ区切りテキストにして返す
func (d *Document) Copy(r sheet.Region) (string, error) {
	if !r.In(d.Sheet()) {
		return "", &edit.EditError{Op: "copy", Layer: r.MaxLayer, Frame: r.MaxFrame, Reason: "index out of range"}
	}
	return clipboard.ToText(d.Sheet(), r), nil
}

// Cut はCopyしてからDeleteする
func (d *Document) Cut(r sheet.Region) (string, error) {
	text, err := d.Copy(r)
	if err != nil {
		return "", err
	}
	if err := d.Delete(r); err != nil {
		return "", err
	}
	return text, nil
}

// Paste はタブ区切りテキストを(anchorLayer, anchorFrame)を左上に貼り付ける
func (d *Document) Paste(anchorLayer, anchorFrame int, text string) error {
	return d.markDirty(d.editor.PasteRegion(anchorLayer, anchorFrame, clipboard.FromText(text)))
}

// Undo は直近の編集を取り消す。履歴が空でもエラーにはせずfalseを返す。
func (d *Document) Undo() bool {
	if err := d.editor.Undo(); err != nil {
		logger.GetLogger().Debug("取り消す操作がない")
		return false
	}
	d.dirty = true
	return true
}

// Redo は直近に取り消した編集をやり直す。なければfalse。
func (d *Document) Redo() bool {
	if err := d.editor.Redo(); err != nil {
		logger.GetLogger().Debug("やり直す操作がない")
		return false
	}
	d.dirty = true
	return true
}

// CanUndo 取り消せる操作があるかどうか
func (d *Document) CanUndo() bool { return d.editor.History().CanUndo() }

// CanRedo やり直せる操作があるかどうか
func (d *Document) CanRedo() bool { return d.editor.History().CanRedo() }

// InsertLayer はindexの位置に空のレイヤーを挿入する。
// セルの添字が変わるため履歴は消える。
func (d *Document) InsertLayer(index int, label string) error {
	if err := d.Sheet().InsertLayer(index, label); err != nil {
		return err
	}
	d.editor.History().Clear()
	d.dirty = true
	return nil
}

// DeleteLayer はindexのレイヤーを削除する。履歴は消える。
func (d *Document) DeleteLayer(index int) error {
	if _, err := d.Sheet().DeleteLayer(index); err != nil {
		return err
	}
	d.editor.History().Clear()
	d.dirty = true
	return nil
}

// RenameLayer はレイヤー名を変更する
func (d *Document) RenameLayer(index int, label string) error {
	if err := d.Sheet().SetLayerLabel(index, label); err != nil {
		return err
	}
	d.dirty = true
	return nil
}

// Resize はフレーム数とレイヤー数を変更する。履歴は消える。
func (d *Document) Resize(layerCount, frameCount int) error {
	if err := d.Sheet().Resize(layerCount, frameCount); err != nil {
		return err
	}
	d.editor.History().Clear()
	d.dirty = true
	return nil
}
