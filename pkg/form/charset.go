package form

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// presets はバックエンドと同じ文字集合プリセット
var presets = map[string]func() []rune{
	"space":           func() []rune { return []rune{0x20} },
	"digits":          func() []rune { return runeRange(0x30, 0x39) },
	"A_Z":             func() []rune { return runeRange(0x41, 0x5A) },
	"a_z":             func() []rune { return runeRange(0x61, 0x7A) },
	"ascii_printable": func() []rune { return runeRange(0x20, 0x7E) },
	"latin1":          func() []rune { return runeRange(0xA0, 0xFF) },
	"cjk_basic":       func() []rune { return runeRange(0x4E00, 0x9FA5) },
	"cn_punct": func() []rune {
		return []rune{
			0x3002, 0xFF0C, 0x3001, 0xFF1F, 0xFF01, 0xFF1A, 0xFF1B, 0x201C,
			0x201D, 0x2018, 0x2019, 0x300A, 0x300B, 0x3008, 0x3009, 0x3010,
			0x3011, 0x300E, 0x300F, 0x2026, 0x2014, 0xFF08, 0xFF09, 0x3000,
		}
	},
}

// PresetNames は利用可能なプリセット名をソートして返す
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsPreset はプリセット名が既知かどうかを返す
func IsPreset(name string) bool {
	_, ok := presets[name]
	return ok
}

func runeRange(from, to rune) []rune {
	out := make([]rune, 0, to-from+1)
	for r := from; r <= to; r++ {
		out = append(out, r)
	}
	return out
}

var (
	rangePartPattern  = regexp.MustCompile(`^(0[xX][0-9A-Fa-f]+|\d+)\s*-\s*(0[xX][0-9A-Fa-f]+|\d+)$`)
	singlePartPattern = regexp.MustCompile(`^(0[xX][0-9A-Fa-f]+|\d+)$`)
)

// ParseRangeExpr は "0x20-0x7E,65" 形式の範囲式をコードポイント列に変換する
// 範囲の上下が逆でも入れ替えて扱う。解釈できない要素があればエラーを返す
func ParseRangeExpr(expr string) ([]rune, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	set := make(map[rune]struct{})
	var invalid []string

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if m := rangePartPattern.FindStringSubmatch(part); m != nil {
			a, errA := parseCodepoint(m[1])
			b, errB := parseCodepoint(m[2])
			if errA != nil || errB != nil {
				invalid = append(invalid, part)
				continue
			}
			if a > b {
				a, b = b, a
			}
			for r := a; r <= b; r++ {
				set[r] = struct{}{}
			}
			continue
		}

		if singlePartPattern.MatchString(part) {
			r, err := parseCodepoint(part)
			if err != nil {
				invalid = append(invalid, part)
				continue
			}
			set[r] = struct{}{}
			continue
		}

		invalid = append(invalid, part)
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRange, strings.Join(invalid, ", "))
	}

	return sortedRunes(set), nil
}

func parseCodepoint(s string) (rune, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 0x10FFFF {
		return 0, fmt.Errorf("codepoint out of range: %s", s)
	}
	return rune(v), nil
}

// CompressRanges は連続するコードポイントを "a-b" 形式にまとめる
func CompressRanges(cps []rune) []string {
	if len(cps) == 0 {
		return nil
	}

	set := make(map[rune]struct{}, len(cps))
	for _, r := range cps {
		set[r] = struct{}{}
	}
	xs := sortedRunes(set)

	var res []string
	start, prev := xs[0], xs[0]
	flush := func() {
		if start != prev {
			res = append(res, fmt.Sprintf("%d-%d", start, prev))
		} else {
			res = append(res, fmt.Sprintf("%d", start))
		}
	}
	for _, v := range xs[1:] {
		if v == prev+1 {
			prev = v
			continue
		}
		flush()
		start, prev = v, v
	}
	flush()

	return res
}

// MapArg は bdfconv の -m 引数を組み立てる
func MapArg(cps []rune) string {
	return strings.Join(CompressRanges(cps), ",")
}

var symbolPattern = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// DefaultSymbol はシンボル未指定時の名前
const DefaultSymbol = "u8g2_font_custom"

// SanitizeSymbol はC識別子として使えるシンボル名に整える
func SanitizeSymbol(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultSymbol
	}
	name = symbolPattern.ReplaceAllString(name, "_")
	if name == "" {
		name = DefaultSymbol
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func sortedRunes(set map[rune]struct{}) []rune {
	out := make([]rune, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
