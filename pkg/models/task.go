package models

import "strings"

// TaskStatus はバックエンドが報告するタスクの状態
type TaskStatus string

const (
	TaskStatusPending  TaskStatus = "pending"
	TaskStatusRunning  TaskStatus = "running" // 旧バックエンドは処理中をこの値で返す
	TaskStatusComplete TaskStatus = "complete"
	TaskStatusFailed   TaskStatus = "failed"
)

// IsTerminal は終端状態（complete / failed）かどうかを返す
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusComplete || s == TaskStatusFailed
}

// Step は進捗表示専用の粗いフェーズ
type Step string

const (
	StepNone    Step = ""
	StepInit    Step = "init"
	StepOTF2BDF Step = "otf2bdf"
	StepBDFConv Step = "bdfconv"
	StepDone    Step = "done"
)

// Files は成果物のダウンロードURL
type Files struct {
	Header string `json:"header"`
	BDF    string `json:"bdf"`
	Log    string `json:"log"`
}

// Result は complete 時のみ存在する
type Result struct {
	Files      Files  `json:"files"`
	HeaderName string `json:"header_name,omitempty"`
}

// Task はバックエンド側の変換ジョブ1件の状態
type Task struct {
	Status TaskStatus `json:"status"`
	Step   Step       `json:"step"`
	Log    []string   `json:"log"`
	Result *Result    `json:"result,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// LogText はログ全体を改行区切りで返す
func (t *Task) LogText() string {
	return strings.Join(t.Log, "\n")
}

// GenerateResponse は POST /api/generate のレスポンス
type GenerateResponse struct {
	OK bool `json:"ok"`
	// taskId と task_id の両方の表記を受け付ける
	TaskID      string   `json:"taskId,omitempty"`
	TaskIDSnake string   `json:"task_id,omitempty"`
	Log         []string `json:"log,omitempty"`
}

// ID は採番されたタスクIDを返す（未採番なら空文字）
func (r *GenerateResponse) ID() string {
	if r.TaskID != "" {
		return r.TaskID
	}
	return r.TaskIDSnake
}

// StatusResponse は GET /api/status/{taskId} のレスポンス
type StatusResponse struct {
	OK    bool   `json:"ok"`
	Task  *Task  `json:"task,omitempty"`
	Error string `json:"error,omitempty"`
}

// Deps はバックエンドの外部ツール状況
type Deps struct {
	OTF2BDF     string `json:"otf2bdf"`
	BDFConv     string `json:"bdfconv"`
	MaxUploadMB int    `json:"max_upload_mb"`
}

// DepsResponse は GET /api/deps のレスポンス
type DepsResponse struct {
	OK   bool  `json:"ok"`
	Deps *Deps `json:"deps,omitempty"`
}
