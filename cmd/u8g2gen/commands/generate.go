package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/urfave/cli/v3"

	"github.com/jinford/u8g2gen/internal/platform/config"
	"github.com/jinford/u8g2gen/pkg/form"
)

// GenerateAction はフォントを送信し、変換の完了まで進捗を表示するコマンドのアクション
func GenerateAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	outDir := cmd.String("out")
	noDownload := cmd.Bool("no-download")

	req := requestFromFlags(cmd)

	if cmd.Bool("interactive") {
		if err := promptRequest(req); err != nil {
			return fmt.Errorf("入力の取得に失敗: %w", err)
		}
	}

	if err := req.Validate(); err != nil {
		return fmt.Errorf("入力が不正です: %w", err)
	}

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile, func(cfg *config.Config) {
		if outDir != "" {
			cfg.Download.Dir = outDir
		}
		if noDownload {
			cfg.Download.Auto = false
		}
	})
	if err != nil {
		return err
	}
	defer appCtx.Close()

	appCtx.Logger().Info("フォント変換タスクを送信",
		"font", req.FontPath,
		"pixelSize", req.PixelSize,
		"presets", req.Presets,
	)

	session, err := appCtx.Container.Controller.Submit(ctx, req)
	if err != nil {
		return fmt.Errorf("タスクの送信に失敗: %w", err)
	}

	fmt.Printf("タスクID: %s\n", session.TaskID())

	return waitSession(session)
}

// requestFromFlags はフラグから変換オプションを組み立てる
func requestFromFlags(cmd *cli.Command) *form.GenerateRequest {
	return &form.GenerateRequest{
		FontPath:     cmd.String("font"),
		PixelSize:    cmd.Int("pixel-size"),
		Symbol:       form.SanitizeSymbol(cmd.String("symbol")),
		Presets:      cmd.StringSlice("preset"),
		IncludeSpace: cmd.Bool("include-space"),
		CustomChars:  cmd.String("chars"),
		CustomRanges: cmd.String("ranges"),
	}
}

const presetsDone = "（選択を終了）"

// promptRequest は未指定の項目を対話的に入力させる
func promptRequest(req *form.GenerateRequest) error {
	if req.FontPath == "" {
		promptFont := promptui.Prompt{
			Label: "フォントファイル (.ttf / .otf)",
		}
		fontPath, err := promptFont.Run()
		if err != nil {
			return err
		}
		req.FontPath = strings.TrimSpace(fontPath)
	}

	if req.PixelSize <= 0 {
		promptSize := promptui.Prompt{
			Label:    "ピクセルサイズ",
			Default:  "16",
			Validate: validatePixelSize,
		}
		size, err := promptSize.Run()
		if err != nil {
			return err
		}
		req.PixelSize, _ = strconv.Atoi(strings.TrimSpace(size))
	}

	promptSymbol := promptui.Prompt{
		Label:   "シンボル名",
		Default: req.Symbol,
	}
	symbol, err := promptSymbol.Run()
	if err != nil {
		return err
	}
	req.Symbol = form.SanitizeSymbol(symbol)

	// プリセット（複数選択）
	for {
		items := append([]string{presetsDone}, remainingPresets(req.Presets)...)
		if len(items) == 1 {
			break
		}
		promptPreset := promptui.Select{
			Label: fmt.Sprintf("プリセットを追加 (選択済み: %s)", strings.Join(req.Presets, ", ")),
			Items: items,
		}
		_, preset, err := promptPreset.Run()
		if err != nil {
			return err
		}
		if preset == presetsDone {
			break
		}
		req.Presets = append(req.Presets, preset)
	}

	if req.CustomChars == "" {
		promptChars := promptui.Prompt{
			Label:   "追加する文字 (オプション)",
			Default: "",
		}
		chars, err := promptChars.Run()
		if err != nil {
			return err
		}
		req.CustomChars = chars
	}

	if req.CustomRanges == "" {
		promptRanges := promptui.Prompt{
			Label:   "追加するコードポイント範囲 (例: 0x20-0x7E,65、オプション)",
			Default: "",
			Validate: func(s string) error {
				_, err := form.ParseRangeExpr(s)
				return err
			},
		}
		ranges, err := promptRanges.Run()
		if err != nil {
			return err
		}
		req.CustomRanges = ranges
	}

	return nil
}

func validatePixelSize(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return form.ErrInvalidPixelSize
	}
	return nil
}

// remainingPresets はまだ選択されていないプリセット名を返す
func remainingPresets(selected []string) []string {
	chosen := make(map[string]bool, len(selected))
	for _, p := range selected {
		chosen[p] = true
	}

	var out []string
	for _, name := range form.PresetNames() {
		if !chosen[name] {
			out = append(out, name)
		}
	}
	return out
}
