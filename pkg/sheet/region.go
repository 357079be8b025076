package sheet

// Region はレイヤー範囲×フレーム範囲の矩形選択。両端を含む。
type Region struct {
	MinLayer, MinFrame int
	MaxLayer, MaxFrame int
}

// NewRegion は2つの角から正規化されたRegionを作成する
func NewRegion(layerA, frameA, layerB, frameB int) Region {
	r := Region{
		MinLayer: layerA, MinFrame: frameA,
		MaxLayer: layerB, MaxFrame: frameB,
	}
	if r.MinLayer > r.MaxLayer {
		r.MinLayer, r.MaxLayer = r.MaxLayer, r.MinLayer
	}
	if r.MinFrame > r.MaxFrame {
		r.MinFrame, r.MaxFrame = r.MaxFrame, r.MinFrame
	}
	return r
}

// CellRegion は1セルだけのRegionを作成する
func CellRegion(layer, frame int) Region {
	return Region{MinLayer: layer, MinFrame: frame, MaxLayer: layer, MaxFrame: frame}
}

// LayerSpan は範囲内のレイヤー数を返す
func (r Region) LayerSpan() int { return r.MaxLayer - r.MinLayer + 1 }

// FrameSpan は範囲内のフレーム数を返す
func (r Region) FrameSpan() int { return r.MaxFrame - r.MinFrame + 1 }

// Contains は(layer, frame)が範囲内かどうかを返す
func (r Region) Contains(layer, frame int) bool {
	return layer >= r.MinLayer && layer <= r.MaxLayer &&
		frame >= r.MinFrame && frame <= r.MaxFrame
}

// In はRegion全体がシートの範囲内に収まるかどうかを返す
func (r Region) In(s *Sheet) bool {
	return s.InBounds(r.MinLayer, r.MinFrame) && s.InBounds(r.MaxLayer, r.MaxFrame)
}
