package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/jinford/u8g2gen/pkg/form"
)

// CharsetAction は生成される文字集合をローカルでプレビューするコマンドのアクション
// サーバには接続しない
func CharsetAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("list") {
		return displayPresets(os.Stdout)
	}

	req := &form.GenerateRequest{
		Symbol:       cmd.String("symbol"),
		Presets:      cmd.StringSlice("preset"),
		IncludeSpace: cmd.Bool("include-space"),
		CustomChars:  cmd.String("chars"),
		CustomRanges: cmd.String("ranges"),
	}

	cps, err := req.Codepoints()
	if err != nil {
		return fmt.Errorf("文字集合の計算に失敗: %w", err)
	}

	displayCharset(os.Stdout, req, cps)

	return nil
}

// displayCharset は文字集合の概要をテーブル形式で表示します
func displayCharset(w io.Writer, req *form.GenerateRequest, cps []rune) {
	presets := "-"
	if len(req.Presets) > 0 {
		presets = strings.Join(req.Presets, ", ")
	}

	table := tablewriter.NewWriter(w)
	table.Header("項目", "値")

	table.Append("シンボル", form.SanitizeSymbol(req.Symbol))
	table.Append("ヘッダファイル", req.HeaderName())
	table.Append("プリセット", presets)
	table.Append("文字数", fmt.Sprintf("%d", len(cps)))
	table.Append("範囲数", fmt.Sprintf("%d", len(form.CompressRanges(cps))))

	table.Render()

	if len(cps) == 0 {
		fmt.Fprintln(w, "\n⚠ 文字集合が空です（サーバ側でエラーになります）")
		return
	}

	fmt.Fprintln(w, "\n=== bdfconv -m ===")
	fmt.Fprintln(w, form.MapArg(cps))
}

// displayPresets は利用可能なプリセットの一覧を表示します
func displayPresets(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header("プリセット", "文字数", "範囲")

	for _, name := range form.PresetNames() {
		req := &form.GenerateRequest{Presets: []string{name}}
		cps, err := req.Codepoints()
		if err != nil {
			return err
		}
		table.Append(name, fmt.Sprintf("%d", len(cps)), form.MapArg(cps))
	}

	table.Render()
	return nil
}
