package sts

import "fmt"

// FormatKind はFormatErrorの種別
type FormatKind int

const (
	// KindTruncated ファイルが途中で切れている
	KindTruncated FormatKind = iota
	// KindBadMagic シグネチャまたはマジック文字列が不正
	KindBadMagic
	// KindBadDimension 寸法またはフラグが範囲外
	KindBadDimension
	// KindEncoding テキストフィールドのShift-JIS変換に失敗
	KindEncoding
	// KindIO ファイルの読み書きに失敗
	KindIO
)

func (k FormatKind) String() string {
	switch k {
	case KindTruncated:
		return "truncated"
	case KindBadMagic:
		return "bad magic"
	case KindBadDimension:
		return "dimension out of bounds"
	case KindEncoding:
		return "encoding failure"
	case KindIO:
		return "io failure"
	default:
		return "unknown"
	}
}

// FormatError はSTSファイルの読み書きの失敗を表す
type FormatError struct {
	Kind   FormatKind
	Offset int // 問題を検出したバイト位置（書き込み時は0）
	Detail string
	Err    error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("invalid STS data (%s): %s", e.Kind, e.Detail)
	if e.Kind == KindIO {
		msg = "STS file access failed: " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }
