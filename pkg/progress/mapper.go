// Package progress はタスクのフェーズを進捗率と表示ラベルへ変換する
package progress

import "github.com/jinford/u8g2gen/pkg/models"

// Progress は進捗率（0〜100）と表示ラベルの組
type Progress struct {
	Percent int
	Label   string
}

// 未知のステップはこの行にフォールバックする
var preparing = Progress{Percent: 0, Label: "準備中..."}

var table = map[models.Step]Progress{
	models.StepInit:    {Percent: 10, Label: "タスクを初期化しました..."},
	models.StepOTF2BDF: {Percent: 40, Label: "ステップ 1/2: TTF/OTF を BDF 形式に変換中..."},
	models.StepBDFConv: {Percent: 75, Label: "ステップ 2/2: BDF を U8g2 ヘッダに変換中..."},
	models.StepDone:    {Percent: 100, Label: "処理が完了しました！"},
}

// Map はステップを進捗に変換する。フェーズ間の補間は行わない
// 空文字（未送信）や未知の値は 0% の「準備中」を返す
func Map(step models.Step) Progress {
	if p, ok := table[step]; ok {
		return p
	}
	return preparing
}
