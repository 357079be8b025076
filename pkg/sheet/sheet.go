// Package sheet は摄影表（タイムシート）のグリッドデータモデルを提供する。
// Sheet はレイヤー×フレームのセル値とシートレベルのメタデータ
// （名前、フレームレート、1ページあたりのフレーム数）を保持する。
package sheet

import (
	"strconv"
	"strings"
)

// モデルの上限値。STSファイルのフィールド幅に対応する。
const (
	MaxLayerCount = 255   // レイヤー数 (1 byte)
	MaxFrameCount = 65535 // フレーム数 (2 bytes)
	MaxCellNumber = 65535 // セル番号 (2 bytes)

	MinFramesPerPage = 12
	MaxFramesPerPage = 288

	DefaultFramesPerPage = 144
)

// FrameRates は対応するフレームレートの一覧
var FrameRates = []int{24, 30}

// CellValue は1セル分の値。0は空白、1〜65535はセル番号を表す。
// ディスク上の2バイト表現と一致するため、コーデックはそのまま書き出せる。
type CellValue uint16

// Blank 空白セル
const Blank CellValue = 0

// IsBlank 空白かどうかを返す
func (c CellValue) IsBlank() bool { return c == Blank }

// Token はセルの編集・クリップボード用トークンを返す。空白は空文字列。
func (c CellValue) Token() string {
	if c == Blank {
		return ""
	}
	return strconv.Itoa(int(c))
}

// ParseToken はトークン文字列をセル値に変換する。
// 空文字列と"0"は空白。番号が上限を超える場合は切り捨てずにエラーを返す。
func ParseToken(s string) (CellValue, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Blank, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Blank, &ValidationError{Field: "cell", Value: 0, Reason: "not a number: " + s}
	}
	if n < 0 || n > MaxCellNumber {
		return Blank, &ValidationError{Field: "cell", Value: n, Reason: "cell number out of range 0..65535"}
	}
	return CellValue(n), nil
}

// Layer はシート内の1トラック。ラベルと全フレーム分のセルを持つ。
type Layer struct {
	Label string
	Cells []CellValue
}

// Sheet は1つのタイムシートドキュメント。
// LayerCount/FrameCountはファイルヘッダーに書かれる値で、
// Validateでスライス長との整合を検査する。
type Sheet struct {
	Name          string
	FrameRate     int // 24 または 30
	FramesPerPage int
	LayerCount    int
	FrameCount    int
	Layers        []Layer
}

// Params は新規シート作成のパラメータ。
// フレーム数は 秒数×フレームレート+端数コマ で決まる。
type Params struct {
	Name          string
	LayerCount    int
	FrameRate     int
	FramesPerPage int
	Seconds       int // 尺（秒）
	ExtraFrames   int // 端数コマ（0 <= ExtraFrames < FrameRate）
}

// New はパラメータを検証して新しい空のシートを作成する
func New(p Params) (*Sheet, error) {
	if p.LayerCount < 1 || p.LayerCount > MaxLayerCount {
		return nil, &ValidationError{Field: "layer_count", Value: p.LayerCount, Reason: "must be 1..255"}
	}
	if !validFrameRate(p.FrameRate) {
		return nil, &ValidationError{Field: "frame_rate", Value: p.FrameRate, Reason: "must be 24 or 30"}
	}
	if p.FramesPerPage < MinFramesPerPage || p.FramesPerPage > MaxFramesPerPage {
		return nil, &ValidationError{Field: "frames_per_page", Value: p.FramesPerPage, Reason: "must be 12..288"}
	}
	if p.Seconds < 0 {
		return nil, &ValidationError{Field: "seconds", Value: p.Seconds, Reason: "must not be negative"}
	}
	if p.ExtraFrames < 0 || p.ExtraFrames >= p.FrameRate {
		return nil, &ValidationError{Field: "extra_frames", Value: p.ExtraFrames, Reason: "must be 0..frame_rate-1"}
	}

	frameCount := p.Seconds*p.FrameRate + p.ExtraFrames
	if frameCount > MaxFrameCount {
		return nil, &ValidationError{Field: "frame_count", Value: frameCount, Reason: "must be 0..65535"}
	}

	layers := make([]Layer, p.LayerCount)
	for i := range layers {
		layers[i] = Layer{
			Label: ColumnLabel(i),
			Cells: make([]CellValue, frameCount),
		}
	}

	return &Sheet{
		Name:          p.Name,
		FrameRate:     p.FrameRate,
		FramesPerPage: p.FramesPerPage,
		LayerCount:    p.LayerCount,
		FrameCount:    frameCount,
		Layers:        layers,
	}, nil
}

// ColumnLabel はレイヤーの既定ラベルを生成する（A, B, ..., Z, AA, AB, ...）
func ColumnLabel(index int) string {
	var b []byte
	n := index
	for {
		b = append([]byte{byte('A' + n%26)}, b...)
		if n < 26 {
			break
		}
		n = n/26 - 1
	}
	return string(b)
}

// Validate はモデルの全不変条件を検査する
func (s *Sheet) Validate() error {
	if s.LayerCount < 1 || s.LayerCount > MaxLayerCount {
		return &ValidationError{Field: "layer_count", Value: s.LayerCount, Reason: "must be 1..255"}
	}
	if s.FrameCount < 0 || s.FrameCount > MaxFrameCount {
		return &ValidationError{Field: "frame_count", Value: s.FrameCount, Reason: "must be 0..65535"}
	}
	if !validFrameRate(s.FrameRate) {
		return &ValidationError{Field: "frame_rate", Value: s.FrameRate, Reason: "must be 24 or 30"}
	}
	if s.FramesPerPage < MinFramesPerPage || s.FramesPerPage > MaxFramesPerPage {
		return &ValidationError{Field: "frames_per_page", Value: s.FramesPerPage, Reason: "must be 12..288"}
	}
	if len(s.Layers) != s.LayerCount {
		return &ValidationError{Field: "layers", Value: len(s.Layers), Reason: "length must equal layer_count"}
	}
	for i := range s.Layers {
		if len(s.Layers[i].Cells) != s.FrameCount {
			return &ValidationError{Field: "cells", Value: len(s.Layers[i].Cells), Reason: "length must equal frame_count"}
		}
	}
	return nil
}

func validFrameRate(rate int) bool {
	for _, r := range FrameRates {
		if r == rate {
			return true
		}
	}
	return false
}

// InBounds は(layer, frame)がシート内を指すかどうかを返す
func (s *Sheet) InBounds(layer, frame int) bool {
	return layer >= 0 && layer < s.LayerCount && frame >= 0 && frame < s.FrameCount
}

// Cell はセル値を返す。範囲外は空白扱い。
func (s *Sheet) Cell(layer, frame int) CellValue {
	if !s.InBounds(layer, frame) {
		return Blank
	}
	return s.Layers[layer].Cells[frame]
}

// SetCell はセル値を設定する。範囲外は何もしない。
// 範囲検査付きの編集は edit パッケージが行う。
func (s *Sheet) SetCell(layer, frame int, v CellValue) {
	if !s.InBounds(layer, frame) {
		return
	}
	s.Layers[layer].Cells[frame] = v
}

// Resize はシートの寸法を変更する。拡大は末尾に空白を追加し、
// 縮小は末尾から切り詰める。既存のセルの(layer, frame)アドレスは
// 新しい寸法の範囲内であれば変化しない。
func (s *Sheet) Resize(layerCount, frameCount int) error {
	if layerCount < 1 || layerCount > MaxLayerCount {
		return &ValidationError{Field: "layer_count", Value: layerCount, Reason: "must be 1..255"}
	}
	if frameCount < 0 || frameCount > MaxFrameCount {
		return &ValidationError{Field: "frame_count", Value: frameCount, Reason: "must be 0..65535"}
	}

	// フレーム方向
	for i := range s.Layers {
		cells := s.Layers[i].Cells
		if frameCount <= len(cells) {
			s.Layers[i].Cells = cells[:frameCount]
		} else {
			s.Layers[i].Cells = append(cells, make([]CellValue, frameCount-len(cells))...)
		}
	}

	// レイヤー方向
	if layerCount <= len(s.Layers) {
		s.Layers = s.Layers[:layerCount]
	} else {
		for i := len(s.Layers); i < layerCount; i++ {
			s.Layers = append(s.Layers, Layer{
				Label: ColumnLabel(i),
				Cells: make([]CellValue, frameCount),
			})
		}
	}

	s.LayerCount = layerCount
	s.FrameCount = frameCount
	return nil
}

// InsertLayer はindexの位置に空のレイヤーを挿入する
func (s *Sheet) InsertLayer(index int, label string) error {
	if s.LayerCount >= MaxLayerCount {
		return &ValidationError{Field: "layer_count", Value: s.LayerCount + 1, Reason: "must be 1..255"}
	}
	if index < 0 || index > s.LayerCount {
		return &ValidationError{Field: "layer", Value: index, Reason: "insert position out of range"}
	}
	if label == "" {
		label = ColumnLabel(index)
	}
	layer := Layer{Label: label, Cells: make([]CellValue, s.FrameCount)}
	s.Layers = append(s.Layers, Layer{})
	copy(s.Layers[index+1:], s.Layers[index:])
	s.Layers[index] = layer
	s.LayerCount++
	return nil
}

// DeleteLayer はindexの位置のレイヤーを取り除いて返す
func (s *Sheet) DeleteLayer(index int) (Layer, error) {
	if s.LayerCount <= 1 {
		return Layer{}, &ValidationError{Field: "layer_count", Value: 0, Reason: "must be 1..255"}
	}
	if index < 0 || index >= s.LayerCount {
		return Layer{}, &ValidationError{Field: "layer", Value: index, Reason: "delete position out of range"}
	}
	removed := s.Layers[index]
	s.Layers = append(s.Layers[:index], s.Layers[index+1:]...)
	s.LayerCount--
	return removed, nil
}

// SetLayerLabel はレイヤーのラベルを変更する
func (s *Sheet) SetLayerLabel(index int, label string) error {
	if index < 0 || index >= s.LayerCount {
		return &ValidationError{Field: "layer", Value: index, Reason: "layer index out of range"}
	}
	s.Layers[index].Label = label
	return nil
}

// Duration は尺を（秒, 端数コマ）で返す
func (s *Sheet) Duration() (seconds, extraFrames int) {
	if s.FrameRate <= 0 {
		return 0, 0
	}
	return s.FrameCount / s.FrameRate, s.FrameCount % s.FrameRate
}

// PageOf はフレーム番号からページ番号とページ内フレーム番号を返す（1始まり）
func (s *Sheet) PageOf(frame int) (page, frameInPage int) {
	return frame/s.FramesPerPage + 1, frame%s.FramesPerPage + 1
}

// Clone はシートの完全な複製を返す
func (s *Sheet) Clone() *Sheet {
	dup := *s
	dup.Layers = make([]Layer, len(s.Layers))
	for i, l := range s.Layers {
		cells := make([]CellValue, len(l.Cells))
		copy(cells, l.Cells)
		dup.Layers[i] = Layer{Label: l.Label, Cells: cells}
	}
	return &dup
}

// Equal は2枚のシートがフィールド単位で等しいかどうかを返す
func (s *Sheet) Equal(o *Sheet) bool {
	if s.Name != o.Name || s.FrameRate != o.FrameRate ||
		s.FramesPerPage != o.FramesPerPage ||
		s.LayerCount != o.LayerCount || s.FrameCount != o.FrameCount ||
		len(s.Layers) != len(o.Layers) {
		return false
	}
	for i := range s.Layers {
		if s.Layers[i].Label != o.Layers[i].Label {
			return false
		}
		if len(s.Layers[i].Cells) != len(o.Layers[i].Cells) {
			return false
		}
		for f := range s.Layers[i].Cells {
			if s.Layers[i].Cells[f] != o.Layers[i].Cells[f] {
				return false
			}
		}
	}
	return true
}
