// Package xdts はXDTS形式のタイムシートを読み込む。
// XDTSは1行目のヘッダー行に続いてJSON本体が並ぶテキスト形式で、
// 各トラックはキーフレームの列としてセルを持つ。キーフレームの
// 値は次のキーフレームの直前まで引き伸ばされる。
package xdts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/zurustar/sts-et/pkg/logger"
	"github.com/zurustar/sts-et/pkg/sheet"
)

// セル値の特殊シンボル
const (
	symbolNullCell = "SYMBOL_NULL_CELL"
	symbolTick1    = "SYMBOL_TICK_1"
	symbolTick2    = "SYMBOL_TICK_2"
	symbolHyphen   = "SYMBOL_HYPHEN"
)

var trailingNumber = regexp.MustCompile(`[0-9]+$`)

type root struct {
	TimeTables []timeTable `json:"timeTables"`
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

// Parse はXDTSテキストからシートを読み込む。タイムテーブルごとに
// 1枚のシートになる。sourceNameはシート名の前半に使われる。
func Parse(content, sourceName string) ([]*sheet.Sheet, error) {
	// 1行目はフォーマット識別子なので読み飛ばす
	_, body, found := strings.Cut(content, "\n")
	if !found {
		return nil, fmt.Errorf("xdts must have a header line and a JSON body")
	}

	var r root
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("failed to parse xdts json: %w", err)
	}

	var sheets []*sheet.Sheet
	for _, tt := range r.TimeTables {
		if len(tt.Fields) == 0 {
			continue
		}
		s, err := buildSheet(tt, sourceName)
		if err != nil {
			return nil, err
		}
		if s != nil {
			sheets = append(sheets, s)
		}
	}
	return sheets, nil
}

// ReadFile はXDTSファイルからシートを読み込む
func ReadFile(path string) ([]*sheet.Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read xdts file: %w", err)
	}
	return Parse(string(data), filepath.Base(path))
}

func buildSheet(tt timeTable, sourceName string) (*sheet.Sheet, error) {
	// 最初のフィールドだけを使う
	f := tt.Fields[0]

	var names []string
	for _, h := range tt.Headers {
		if h.FieldID == f.FieldID {
			names = h.Names
			break
		}
	}
	if names == nil {
		return nil, nil
	}

	layerCount := max(len(f.Tracks), len(names))
	if layerCount < 1 || layerCount > sheet.MaxLayerCount {
		return nil, fmt.Errorf("time table %q: layer count %d out of range", tt.Name, layerCount)
	}
	if tt.Duration < 0 || tt.Duration > sheet.MaxFrameCount {
		return nil, fmt.Errorf("time table %q: duration %d out of range", tt.Name, tt.Duration)
	}

	s, err := sheet.New(sheet.Params{
		Name:          sourceName + "->" + tt.Name,
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

	for _, tr := range f.Tracks {
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
		v, ok := parseValue(fr.Data[0].Values[0])
		if !ok {
			continue
		}
		keys = append(keys, keyframe{frame: fr.Frame, value: v})
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

// parseValue はXDTSのセル値文字列を解釈する。
// SYMBOL_NULL_CELLは空白、チェック記号類はキーフレームにならない。
// それ以外は末尾の数字列をセル番号として読む。
func parseValue(v string) (sheet.CellValue, bool) {
	switch v {
	case symbolNullCell:
		return sheet.Blank, true
	case symbolTick1, symbolTick2, symbolHyphen:
		return sheet.Blank, false
	}
	m := trailingNumber.FindString(v)
	if m == "" {
		return sheet.Blank, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n > sheet.MaxCellNumber {
		logger.GetLogger().Debug("セル番号を読み飛ばし", "value", v)
		return sheet.Blank, false
	}
	return sheet.CellValue(n), true
}
