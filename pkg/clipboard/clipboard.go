// Package clipboard はセル矩形領域とTSVテキストの相互変換を提供する。
// Excel互換のタブ区切り・改行区切りのプレーンテキストで、
// 行がフレーム方向、列がレイヤー方向に対応する。
// プラットフォームのクリップボードには触れない純粋な変換のみ。
package clipboard

import (
	"strings"

	"github.com/zurustar/sts-et/pkg/sheet"
)

// ToText は矩形領域をTSV文字列に変換する。
// フレームオフセットごとに1行、レイヤーオフセットごとに1列。
func ToText(s *sheet.Sheet, r sheet.Region) string {
	var b strings.Builder
	for frame := r.MinFrame; frame <= r.MaxFrame; frame++ {
		if frame > r.MinFrame {
			b.WriteByte('\n')
		}
		for layer := r.MinLayer; layer <= r.MaxLayer; layer++ {
			if layer > r.MinLayer {
				b.WriteByte('\t')
			}
			b.WriteString(s.Cell(layer, frame).Token())
		}
	}
	return b.String()
}

// FromText はTSV文字列を矩形のトークングリッドに変換する。
// 行は改行で、列はタブで区切る。短い行は最長の行に合わせて
// 空トークンで埋める。grid[フレームオフセット][レイヤーオフセット]。
func FromText(text string) [][]string {
	// 末尾の改行1つは行として数えない（Excelのコピーは末尾に改行を付ける）
	text = strings.TrimSuffix(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	grid := make([][]string, len(lines))
	width := 0
	for i, line := range lines {
		grid[i] = strings.Split(line, "\t")
		if len(grid[i]) > width {
			width = len(grid[i])
		}
	}
	for i := range grid {
		for len(grid[i]) < width {
			grid[i] = append(grid[i], "")
		}
	}
	return grid
}
