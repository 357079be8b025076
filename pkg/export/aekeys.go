package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zurustar/sts-et/pkg/sheet"
)

// DefaultAEVersion はキーフレームヘッダーに書くAfter Effectsの版
const DefaultAEVersion = "8.0"

// AEKeyframes は1レイヤー分のTime Remapキーフレームテキストを生成する。
// After Effectsのクリップボード形式に合わせて行末はCRLF。
// セル番号nはソースの(n-1)/フレームレート秒に対応し、値が変わる
// フレームだけキーフレームになる。空白セルは0秒として扱う。
func AEKeyframes(s *sheet.Sheet, layer int, version string) (string, error) {
	if layer < 0 || layer >= s.LayerCount {
		return "", fmt.Errorf("layer index %d out of range", layer)
	}
	if version == "" {
		version = DefaultAEVersion
	}

	var b strings.Builder
	b.WriteString("Adobe After Effects ")
	b.WriteString(version)
	b.WriteString(" Keyframe Data\r\n\r\n")
	b.WriteString("\tUnits Per Second\t")
	b.WriteString(strconv.Itoa(s.FrameRate))
	b.WriteString("\r\n\tSource Width\t1000\r\n\tSource Height\t1000\r\n")
	b.WriteString("\tSource Pixel Aspect Ratio\t1\r\n\tComp Pixel Aspect Ratio\t1\r\n\r\n")

	b.WriteString("Layer\r\n")
	b.WriteString("Time Remap\r\n")
	b.WriteString("\tFrame\tseconds\t\r\n")

	prev := sheet.Blank
	lastFrame := 0
	for f := 0; f < s.FrameCount; f++ {
		v := s.Cell(layer, f)
		if v == prev {
			continue
		}
		b.WriteByte('\t')
		b.WriteString(strconv.Itoa(f))
		b.WriteByte('\t')
		if v.IsBlank() {
			b.WriteString("0")
		} else {
			b.WriteString(formatSeconds(float64(int(v)-1) / float64(s.FrameRate)))
			lastFrame = f
		}
		b.WriteString("\t\r\n")
		prev = v
	}

	// 言語非依存のmatch nameでBlinds効果を付ける
	b.WriteString("\r\nEffects\tADBE Blinds\tADBE Blinds-0001\r\n")
	b.WriteString("\tFrame\tpercent\t\r\n")
	b.WriteString("\t0\t0\t\r\n")
	b.WriteByte('\t')
	b.WriteString(strconv.Itoa(lastFrame))
	b.WriteString("\t100\t\r\n")

	b.WriteString("\r\nEnd of Keyframe Data\r\n")
	return b.String(), nil
}

// formatSeconds は秒数をAEが読める形に整形する。
// 小数第7位まで出して末尾の0と小数点を落とす。
func formatSeconds(sec float64) string {
	if sec == 0 {
		return "0"
	}
	t := strconv.FormatFloat(sec, 'f', 7, 64)
	t = strings.TrimRight(t, "0")
	return strings.TrimSuffix(t, ".")
}
