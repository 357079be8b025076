package sjis

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Shift-JISで表現できる文字だけを使った生成用アルファベット
var sjisAlphabet = []rune("ABCXYZabcxyz0123456789 -+礼アイウエオカキクケコサシスセソ空セル原画動画背景時間漢字ＡＢ１２")

// TestProperty_RoundTrip はラウンドトリップ則
// decode(encode(t)) == t を検証する（tはShift-JIS表現可能な文字のみ）
func TestProperty_RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	runeVals := make([]interface{}, len(sjisAlphabet))
	for i, r := range sjisAlphabet {
		runeVals[i] = r
	}
	genText := gen.SliceOf(gen.OneConstOf(runeVals...))

	properties.Property("decode(encode(t)) == t", prop.ForAll(
		func(rs []rune) bool {
			s := string(rs)
			encoded, err := Encode(s)
			if err != nil {
				return false
			}
			return Decode(encoded) == s
		},
		genText,
	))

	properties.Property("encode never fails for encodable text", prop.ForAll(
		func(rs []rune) bool {
			return CanEncode(string(rs))
		},
		genText,
	))

	properties.TestingRun(t)
}
