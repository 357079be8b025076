// Package tdts はTDTS形式のタイムシートを読み込む。
// XDTSと同じく1行目のヘッダー行に続いてJSON本体が並ぶが、
// ルートはカットごとのtimeSheets配列で、セル列はfieldId 4の
// フィールドに入っている。キーフレームの値は次のキーフレームの
// 直前まで引き伸ばされる。
package tdts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/zurustar/sts-et/pkg/sheet"
)

// cellFieldID はセル列が入っているフィールドの番号
const cellFieldID = 4

const symbolNullCell = "SYMBOL_NULL_CELL"

type root struct {
	TimeSheets []timeSheet `json:"timeSheets"`
}

type timeSheet struct {
	Header     sheetHeader `json:"header"`
	TimeTables []timeTable `json:"timeTables"`
}

type sheetHeader struct {
	Cut string `json:"cut"`
}

type timeTable struct {
	Name     string        `json:"name"`
	Duration int           `json:"duration"`
	Fields   []field       `json:"fields"`
	Headers  []tableHeader `json:"timeTableHeaders"`
}

type field struct {
	FieldID int     `json:"fieldId"`
	Tracks  []track `json:"tracks"`
}

type track struct {
	TrackNo int     `json:"trackNo"`
	Frames  []frame `json:"frames"`
}

type frame struct {
	Frame int         `json:"frame"`
	Data  []frameData `json:"data"`
}

type frameData struct {
	Values []string `json:"values"`
}

type tableHeader struct {
	FieldID int      `json:"fieldId"`
	Names   []string `json:"names"`
}

// Parse はTDTSテキストからシートを読み込む。カット内の
// タイムテーブルごとに1枚のシートになる。
func Parse(content, sourceName string) ([]*sheet.Sheet, error) {
	// 1行目はフォーマット識別子なので読み飛ばす
	_, body, found := strings.Cut(content, "\n")
	if !found {
		return nil, fmt.Errorf("tdts must have a header line and a JSON body")
	}

	var r root
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("failed to parse tdts json: %w", err)
	}

	var sheets []*sheet.Sheet
	for _, ts := range r.TimeSheets {
		for _, tt := range ts.TimeTables {
			if len(tt.Fields) == 0 {
				continue
			}
			s, err := buildSheet(tt, sourceName, ts.Header.Cut)
			if err != nil {
				return nil, err
			}
			if s != nil {
				sheets = append(sheets, s)
			}
		}
	}
	return sheets, nil
}

// ReadFile はTDTSファイルからシートを読み込む
func ReadFile(path string) ([]*sheet.Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tdts file: %w", err)
	}
	return Parse(string(data), filepath.Base(path))
}

func buildSheet(tt timeTable, sourceName, cut string) (*sheet.Sheet, error) {
	// セル列のフィールドだけを使う
	var tracks []track
	for _, f := range tt.Fields {
		if f.FieldID == cellFieldID {
			tracks = f.Tracks
			break
		}
	}
	var names []string
	for _, h := range tt.Headers {
		if h.FieldID == cellFieldID {
			names = h.Names
			break
		}
	}
	if tracks == nil || names == nil {
		return nil, nil
	}

	layerCount := max(len(tracks), len(names))
	if layerCount < 1 || layerCount > sheet.MaxLayerCount {
		return nil, fmt.Errorf("time table %q: layer count %d out of range", tt.Name, layerCount)
	}
	if tt.Duration < 0 || tt.Duration > sheet.MaxFrameCount {
		return nil, fmt.Errorf("time table %q: duration %d out of range", tt.Name, tt.Duration)
	}

	s, err := sheet.New(sheet.Params{
		Name:          sourceName + "->" + cut + "->" + tt.Name,
		LayerCount:    layerCount,
		FrameRate:     24,
		FramesPerPage: sheet.DefaultFramesPerPage,
		Seconds:       tt.Duration / 24,
		ExtraFrames:   tt.Duration % 24,
	})
	if err != nil {
		return nil, err
	}
	for i, name := range names {
		if i < layerCount && name != "" {
			s.Layers[i].Label = name
		}
	}

	for _, tr := range tracks {
		if tr.TrackNo < 0 || tr.TrackNo >= layerCount {
			continue
		}
		applyTrack(s, tr, tt.Duration)
	}
	return s, nil
}

type keyframe struct {
	frame int
	value sheet.CellValue
}

// applyTrack はトラックのキーフレーム列をセルに展開する。
// 各キーフレームの値は次のキーフレームの直前まで続く。
func applyTrack(s *sheet.Sheet, tr track, frameCount int) {
	var keys []keyframe
	for _, fr := range tr.Frames {
		if fr.Frame < 0 || fr.Frame >= frameCount {
			continue
		}
		if len(fr.Data) == 0 || len(fr.Data[0].Values) == 0 {
			continue
		}
		keys = append(keys, keyframe{frame: fr.Frame, value: parseValue(fr.Data[0].Values[0])})
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].frame < keys[j].frame })

	for i, k := range keys {
		end := frameCount
		if i+1 < len(keys) {
			end = keys[i+1].frame
		}
		for f := k.frame; f < end; f++ {
			s.SetCell(tr.TrackNo, f, k.value)
		}
	}
}

// parseValue はTDTSのセル値文字列を解釈する。
// XDTSと違い、数値として読めない値も空白のキーフレームになる
// （前の値を断ち切る）。
func parseValue(v string) sheet.CellValue {
	if v == symbolNullCell {
		return sheet.Blank
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > sheet.MaxCellNumber {
		return sheet.Blank
	}
	return sheet.CellValue(n)
}
