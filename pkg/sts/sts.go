// Package sts はSTS（ShiraheiTimeSheet）バイナリ形式のコーデックを提供する。
//
// ファイルレイアウト（リファレンスファイルから逆算、リトルエンディアン）:
//
//	ヘッダー (23 bytes)
//	  [0]      シグネチャ 0x11
//	  [1..17]  固定文字列 "ShiraheiTimeSheet"
//	  [18]     レイヤー数 (u8, 1以上)
//	  [19..20] フレーム数 (u16)
//	  [21]     フレームレートフラグ (0=24fps, 1=30fps、旧ファイルは0)
//	  [22]     予約 (0)
//	セルデータ (レイヤー数×フレーム数×2 bytes、レイヤー優先順、0=空白)
//	レイヤー名 (各レイヤー: u8長 + Shift-JISバイト列)
//	拡張トレーラー (省略可): 1ページあたりのフレーム数 u16、
//	  シート名 (u8長 + Shift-JISバイト列)
//
// 旧来の読み手はレイヤー名の後ろを読まないため、トレーラーの有無は
// 互換性に影響しない。トレーラーのないファイルでは1ページあたりの
// フレーム数は144、シート名は空として読む。
package sts

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zurustar/sts-et/pkg/sheet"
	"github.com/zurustar/sts-et/pkg/sjis"
)

const (
	signatureByte = 0x11
	magic         = "ShiraheiTimeSheet"
	headerSize    = 23

	cellWidth = 2 // セル1個あたりのバイト数

	rateFlag24 = 0
	rateFlag30 = 1
)

// Decode はSTSファイルのバイト列をシートに変換する。
// 不正な入力に対してはpanicせず、常に種別つきのFormatErrorを返す。
func Decode(data []byte) (*sheet.Sheet, error) {
	if len(data) < headerSize {
		return nil, &FormatError{Kind: KindTruncated, Offset: len(data), Detail: "file smaller than header"}
	}

	if data[0] != signatureByte {
		return nil, &FormatError{Kind: KindBadMagic, Offset: 0, Detail: "bad signature byte"}
	}
	if string(data[1:1+len(magic)]) != magic {
		return nil, &FormatError{Kind: KindBadMagic, Offset: 1, Detail: "bad magic string"}
	}

	layerCount := int(data[18])
	frameCount := int(binary.LittleEndian.Uint16(data[19:21]))
	if layerCount < 1 {
		return nil, &FormatError{Kind: KindBadDimension, Offset: 18, Detail: "layer count must be at least 1"}
	}

	frameRate := 0
	switch data[21] {
	case rateFlag24:
		frameRate = 24
	case rateFlag30:
		frameRate = 30
	default:
		return nil, &FormatError{Kind: KindBadDimension, Offset: 21, Detail: "unknown frame rate flag"}
	}

	// セルデータ
	cellsEnd := headerSize + layerCount*frameCount*cellWidth
	if len(data) < cellsEnd {
		return nil, &FormatError{Kind: KindTruncated, Offset: len(data), Detail: "incomplete cell data"}
	}

	layers := make([]sheet.Layer, layerCount)
	for l := 0; l < layerCount; l++ {
		cells := make([]sheet.CellValue, frameCount)
		base := headerSize + l*frameCount*cellWidth
		for f := 0; f < frameCount; f++ {
			cells[f] = sheet.CellValue(binary.LittleEndian.Uint16(data[base+f*cellWidth:]))
		}
		layers[l] = sheet.Layer{Cells: cells}
	}

	// レイヤー名。名前領域が欠けているファイルは既定名で補う。
	pos := cellsEnd
	for l := 0; l < layerCount; l++ {
		if pos >= len(data) {
			layers[l].Label = defaultLabel(l)
			continue
		}
		nameLen := int(data[pos])
		pos++
		if pos+nameLen > len(data) {
			layers[l].Label = defaultLabel(l)
			pos = len(data)
			continue
		}
		layers[l].Label = sjis.Decode(data[pos : pos+nameLen])
		pos += nameLen
	}

	s := &sheet.Sheet{
		FrameRate:     frameRate,
		FramesPerPage: sheet.DefaultFramesPerPage,
		LayerCount:    layerCount,
		FrameCount:    frameCount,
		Layers:        layers,
	}

	readTrailer(data[pos:], s)
	return s, nil
}

// readTrailer は拡張トレーラーを読む。旧形式のファイルには存在しないため、
// 完全に解析できない場合は黙って無視する。
func readTrailer(data []byte, s *sheet.Sheet) {
	if len(data) < 2 {
		return
	}
	fpp := int(binary.LittleEndian.Uint16(data[0:2]))
	if fpp >= sheet.MinFramesPerPage && fpp <= sheet.MaxFramesPerPage {
		s.FramesPerPage = fpp
	}
	data = data[2:]

	if len(data) < 1 {
		return
	}
	nameLen := int(data[0])
	if 1+nameLen > len(data) {
		return
	}
	s.Name = sjis.Decode(data[1 : 1+nameLen])
}

func defaultLabel(index int) string {
	return "Layer" + strconv.Itoa(index+1)
}

// Encode はシートをSTSファイルのバイト列に変換する。
// モデルの不変条件違反かテキストフィールドのShift-JIS変換失敗で
// のみ失敗し、その場合は何も出力しない。
func Encode(s *sheet.Sheet) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, headerSize+s.LayerCount*s.FrameCount*cellWidth)

	// ヘッダー
	buf = append(buf, signatureByte)
	buf = append(buf, magic...)
	buf = append(buf, byte(s.LayerCount))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(s.FrameCount))
	switch s.FrameRate {
	case 24:
		buf = append(buf, rateFlag24)
	case 30:
		buf = append(buf, rateFlag30)
	}
	buf = append(buf, 0x00)

	// セルデータ
	for l := 0; l < s.LayerCount; l++ {
		for f := 0; f < s.FrameCount; f++ {
			buf = binary.LittleEndian.AppendUint16(buf, uint16(s.Layers[l].Cells[f]))
		}
	}

	// レイヤー名
	for l := 0; l < s.LayerCount; l++ {
		encoded, err := sjis.Encode(s.Layers[l].Label)
		if err != nil {
			return nil, &FormatError{Kind: KindEncoding, Detail: "layer label " + strconv.Itoa(l), Err: err}
		}
		if len(encoded) > 255 {
			return nil, &FormatError{Kind: KindBadDimension, Detail: "layer label longer than 255 bytes"}
		}
		buf = append(buf, byte(len(encoded)))
		buf = append(buf, encoded...)
	}

	// 拡張トレーラー
	buf = binary.LittleEndian.AppendUint16(buf, uint16(s.FramesPerPage))
	name, err := sjis.Encode(s.Name)
	if err != nil {
		return nil, &FormatError{Kind: KindEncoding, Detail: "sheet name", Err: err}
	}
	if len(name) > 255 {
		return nil, &FormatError{Kind: KindBadDimension, Detail: "sheet name longer than 255 bytes"}
	}
	buf = append(buf, byte(len(name)))
	buf = append(buf, name...)

	return buf, nil
}

// Read はrから全体を読み込んでデコードする
func Read(r io.Reader) (*sheet.Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &FormatError{Kind: KindTruncated, Detail: "read failed", Err: err}
	}
	return Decode(data)
}

// ReadFile はSTSファイルを読み込む。シート名がファイルに記録されて
// いない場合はファイル名（拡張子なし）を使う。
func ReadFile(path string) (*sheet.Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FormatError{Kind: KindIO, Detail: "read failed", Err: err}
	}
	s, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		base := filepath.Base(path)
		s.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return s, nil
}

// WriteFile はシートをSTSファイルとして保存する。
// エンコードが完了してからファイルに触れるため、部分的なファイルが
// 残ることはない。
func WriteFile(path string, s *sheet.Sheet) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &FormatError{Kind: KindIO, Detail: "write failed", Err: err}
	}
	return nil
}
