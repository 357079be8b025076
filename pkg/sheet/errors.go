package sheet

import "fmt"

// ValidationError はシートのパラメータまたは寸法変更が
// モデルの不変条件に違反したことを表す
type ValidationError struct {
	Field  string // 違反したフィールド名
	Value  int    // 実際の値
	Reason string // 違反した境界条件
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s (got %d)", e.Field, e.Reason, e.Value)
}
