// Package form は POST /api/generate に送る生成オプションを扱う
package form

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrMissingFont はフォントファイルが指定されていない場合のエラー
	ErrMissingFont = errors.New("font file is required")

	// ErrUnsupportedFont は .ttf/.otf 以外のファイルが指定された場合のエラー
	ErrUnsupportedFont = errors.New("only .ttf/.otf fonts are supported")

	// ErrInvalidPixelSize はピクセルサイズが正の整数でない場合のエラー
	ErrInvalidPixelSize = errors.New("pixel size must be a positive integer")

	// ErrUnknownPreset は未知のプリセット名が指定された場合のエラー
	ErrUnknownPreset = errors.New("unknown preset")

	// ErrInvalidRange は範囲式が解釈できない場合のエラー
	ErrInvalidRange = errors.New("invalid range expression")
)

// multipart のフィールド名
const (
	FieldFontFile     = "fontfile"
	FieldPixelSize    = "pixel_size"
	FieldSymbol       = "symbol"
	FieldPresets      = "presets[]"
	FieldIncludeSpace = "include_space"
	FieldCustomChars  = "custom_chars"
	FieldCustomRanges = "custom_ranges"
)

// GenerateRequest はフォント変換ジョブの生成オプション
type GenerateRequest struct {
	FontPath     string
	PixelSize    int
	Symbol       string
	Presets      []string
	IncludeSpace bool
	CustomChars  string
	CustomRanges string
}

// Validate はバックエンドに送る前に入力を検証する
func (r *GenerateRequest) Validate() error {
	if r.FontPath == "" {
		return ErrMissingFont
	}

	ext := strings.ToLower(filepath.Ext(r.FontPath))
	if ext != ".ttf" && ext != ".otf" {
		return fmt.Errorf("%w: %s", ErrUnsupportedFont, filepath.Base(r.FontPath))
	}

	info, err := os.Stat(r.FontPath)
	if err != nil {
		return fmt.Errorf("failed to stat font file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrMissingFont, r.FontPath)
	}

	if r.PixelSize <= 0 {
		return ErrInvalidPixelSize
	}

	for _, p := range r.Presets {
		if !IsPreset(p) {
			return fmt.Errorf("%w: %s", ErrUnknownPreset, p)
		}
	}

	if _, err := ParseRangeExpr(r.CustomRanges); err != nil {
		return err
	}

	return nil
}

// Codepoints はバックエンドが生成する文字集合をローカルで再現する
func (r *GenerateRequest) Codepoints() ([]rune, error) {
	set := make(map[rune]struct{})

	for _, p := range r.Presets {
		gen, ok := presets[p]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, p)
		}
		for _, c := range gen() {
			set[c] = struct{}{}
		}
	}
	if r.IncludeSpace {
		set[0x20] = struct{}{}
	}
	for _, c := range r.CustomChars {
		set[c] = struct{}{}
	}

	ranges, err := ParseRangeExpr(r.CustomRanges)
	if err != nil {
		return nil, err
	}
	for _, c := range ranges {
		set[c] = struct{}{}
	}

	return sortedRunes(set), nil
}

// HeaderName はバックエンドが出力するヘッダファイル名の見込み
func (r *GenerateRequest) HeaderName() string {
	return SanitizeSymbol(r.Symbol) + ".h"
}

// Body はストリーミングされる multipart ボディと Content-Type を返す
// フォントファイルはメモリに載せずにパイプ経由で送る
func (r *GenerateRequest) Body() (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(r.WriteMultipart(mw))
	}()

	return pr, mw.FormDataContentType()
}

// WriteMultipart はフィールドとフォントファイルを書き込み、ライターを閉じる
func (r *GenerateRequest) WriteMultipart(mw *multipart.Writer) error {
	fields := [][2]string{
		{FieldPixelSize, strconv.Itoa(r.PixelSize)},
		{FieldSymbol, r.Symbol},
	}
	for _, p := range r.Presets {
		fields = append(fields, [2]string{FieldPresets, p})
	}
	if r.IncludeSpace {
		fields = append(fields, [2]string{FieldIncludeSpace, "1"})
	}
	if r.CustomChars != "" {
		fields = append(fields, [2]string{FieldCustomChars, r.CustomChars})
	}
	if r.CustomRanges != "" {
		fields = append(fields, [2]string{FieldCustomRanges, r.CustomRanges})
	}

	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("failed to write field %s: %w", f[0], err)
		}
	}

	font, err := os.Open(r.FontPath)
	if err != nil {
		return fmt.Errorf("failed to open font file: %w", err)
	}
	defer font.Close()

	part, err := mw.CreateFormFile(FieldFontFile, filepath.Base(r.FontPath))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, font); err != nil {
		return fmt.Errorf("failed to copy font file: %w", err)
	}

	return mw.Close()
}
