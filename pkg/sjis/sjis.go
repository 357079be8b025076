// Package sjis はSTSファイルのテキストフィールドで使われる
// Shift-JISとUTF-8の相互変換を提供する。
//
// Decodeは全域関数で、変換できないバイト列はU+FFFDに置き換える。
// Encodeは部分関数で、Shift-JISで表現できない文字があれば
// 位置つきのEncodingErrorを返す（部分的な出力は返さない）。
package sjis

import (
	"fmt"

	"golang.org/x/text/encoding/japanese"
)

// EncodingError はShift-JISへ変換できない文字を表す
type EncodingError struct {
	Rune rune // 変換できなかった文字
	Pos  int  // 文字列内の文字位置（rune単位、0始まり）
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("character %q at position %d cannot be encoded as Shift-JIS", e.Rune, e.Pos)
}

// Decode はShift-JISのバイト列をUTF-8文字列に変換する。
// 変換できないバイトはU+FFFDに置き換えられ、失敗しない。
func Decode(data []byte) string {
	decoder := japanese.ShiftJIS.NewDecoder()
	// x/textのDecoderは不正なバイトをU+FFFDに置換するため常に成功する
	s, err := decoder.Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(s)
}

// Encode はUTF-8文字列をShift-JISのバイト列に変換する。
// 変換できない文字があれば最初の1文字を指すEncodingErrorを返す。
func Encode(s string) ([]byte, error) {
	encoder := japanese.ShiftJIS.NewEncoder()
	out, err := encoder.Bytes([]byte(s))
	if err == nil {
		return out, nil
	}

	// 失敗位置を特定するため1文字ずつ試す
	for i, r := range []rune(s) {
		if _, err := encoder.Bytes([]byte(string(r))); err != nil {
			return nil, &EncodingError{Rune: r, Pos: i}
		}
	}
	return nil, fmt.Errorf("failed to encode as Shift-JIS: %w", err)
}

// CanEncode は文字列全体がShift-JISで表現できるかどうかを返す
func CanEncode(s string) bool {
	_, err := Encode(s)
	return err == nil
}
