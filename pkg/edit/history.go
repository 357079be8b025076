package edit

// DefaultHistoryLimit は履歴の既定の最大段数
const DefaultHistoryLimit = 100

// History は上限つきのundo/redoスタック。
// 新しいコマンドを積むとredo側は空になり、上限を超えると
// 最も古いundoエントリから黙って捨てられる。
type History struct {
	limit int
	undo  []*Command
	redo  []*Command
}

// NewHistory は最大段数limitの履歴を作成する。limitが0以下なら既定値。
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Push は新しいコマンドを積み、redoリストを消す
func (h *History) Push(c *Command) {
	if len(h.undo) >= h.limit {
		// 最古のエントリを破棄。履歴はベストエフォート。
		copy(h.undo, h.undo[1:])
		h.undo = h.undo[:len(h.undo)-1]
	}
	h.undo = append(h.undo, c)
	h.redo = h.redo[:0]
}

func (h *History) popUndo() *Command {
	if len(h.undo) == 0 {
		return nil
	}
	c := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, c)
	return c
}

func (h *History) popRedo() *Command {
	if len(h.redo) == 0 {
		return nil
	}
	c := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, c)
	return c
}

// CanUndo 取り消せる操作があるかどうか
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo やり直せる操作があるかどうか
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoCount 積まれているundoエントリ数
func (h *History) UndoCount() int { return len(h.undo) }

// RedoCount 積まれているredoエントリ数
func (h *History) RedoCount() int { return len(h.redo) }

// Clear は履歴を空にする。レイヤーの挿入・削除のような
// 構造変更の後はセルの添字が合わなくなるため呼ばれる。
func (h *History) Clear() {
	h.undo = h.undo[:0]
	h.redo = h.redo[:0]
}
