package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRangeExpr(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []rune
	}{
		{name: "空", expr: "", want: nil},
		{name: "単一の10進", expr: "65", want: []rune{65}},
		{name: "16進の範囲", expr: "0x41-0x43", want: []rune{0x41, 0x42, 0x43}},
		{name: "逆順の範囲", expr: "0x43 - 0x41", want: []rune{0x41, 0x42, 0x43}},
		{name: "重複と空要素", expr: "65, ,65,66", want: []rune{65, 66}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRangeExpr(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRangeExpr_Invalid(t *testing.T) {
	_, err := ParseRangeExpr("0x20-0x7E,abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Contains(t, err.Error(), "abc")

	_, err = ParseRangeExpr("0x110000")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestCompressRanges(t *testing.T) {
	assert.Nil(t, CompressRanges(nil))
	assert.Equal(t, []string{"32", "48-57", "65-67"},
		CompressRanges([]rune{67, 65, 66, 32, 48, 49, 50, 51, 52, 53, 54, 55, 56, 57}))
	assert.Equal(t, "1-3,5", MapArg([]rune{1, 2, 3, 3, 5}))
}

func TestSanitizeSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: DefaultSymbol},
		{in: "   ", want: DefaultSymbol},
		{in: "my font-12", want: "my_font_12"},
		{in: "12px", want: "_12px"},
		{in: "u8g2_font_ok", want: "u8g2_font_ok"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeSymbol(tt.in), "input %q", tt.in)
	}
}

func TestPresetNames(t *testing.T) {
	names := PresetNames()
	assert.Len(t, names, 8)
	assert.Contains(t, names, "ascii_printable")
	assert.True(t, IsPreset("cn_punct"))
	assert.False(t, IsPreset("emoji"))
}

func TestPresets_Sizes(t *testing.T) {
	assert.Len(t, presets["digits"](), 10)
	assert.Len(t, presets["A_Z"](), 26)
	assert.Len(t, presets["ascii_printable"](), 95)
	assert.Len(t, presets["latin1"](), 96)
	assert.Len(t, presets["cn_punct"](), 24)
}
