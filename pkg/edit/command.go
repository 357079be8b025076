package edit

import "github.com/zurustar/sts-et/pkg/sheet"

// Command は1回の原子的な編集の記録。対象の矩形領域と、
// その領域の変更前後のスナップショットを持つ。
// 履歴に積まれた後は変更されない。
type Command struct {
	region sheet.Region
	before [][]sheet.CellValue // [レイヤーオフセット][フレームオフセット]
	after  [][]sheet.CellValue
}

// Region は編集対象の領域を返す
func (c *Command) Region() sheet.Region { return c.region }

// snapshotRegion は領域のセル値を写し取る
func snapshotRegion(s *sheet.Sheet, r sheet.Region) [][]sheet.CellValue {
	grid := make([][]sheet.CellValue, r.LayerSpan())
	for lo := range grid {
		grid[lo] = make([]sheet.CellValue, r.FrameSpan())
		for fo := range grid[lo] {
			grid[lo][fo] = s.Cell(r.MinLayer+lo, r.MinFrame+fo)
		}
	}
	return grid
}

func applyGrid(s *sheet.Sheet, r sheet.Region, grid [][]sheet.CellValue) {
	for lo := range grid {
		for fo := range grid[lo] {
			s.SetCell(r.MinLayer+lo, r.MinFrame+fo, grid[lo][fo])
		}
	}
}

// applyBefore は変更前の状態をシートに書き戻す（undo）
func (c *Command) applyBefore(s *sheet.Sheet) { applyGrid(s, c.region, c.before) }

// applyAfter は変更後の状態をシートに書き戻す（redo）
func (c *Command) applyAfter(s *sheet.Sheet) { applyGrid(s, c.region, c.after) }
