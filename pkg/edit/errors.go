package edit

import (
	"errors"
	"fmt"
)

// 履歴操作の通知。失敗ではなくno-opを表す。
var (
	// ErrNothingToUndo 取り消す操作がない
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo やり直す操作がない
	ErrNothingToRedo = errors.New("nothing to redo")
)

// EditError は編集操作の失敗（範囲外の添字、上限を超える値）を表す。
// 失敗した操作はシートを一切変更しない。
type EditError struct {
	Op     string // 失敗した操作名
	Layer  int
	Frame  int
	Reason string
}

func (e *EditError) Error() string {
	return fmt.Sprintf("%s at (layer=%d, frame=%d): %s", e.Op, e.Layer, e.Frame, e.Reason)
}
