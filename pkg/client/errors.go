package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingTaskID は ok=true なのにタスクIDが返らなかった場合のエラー
	ErrMissingTaskID = errors.New("response has no task id")

	// ErrEmptyTaskID はタスクIDが空の場合のエラー
	ErrEmptyTaskID = errors.New("task id is empty")

	// ErrUnknownArtifact は未知の成果物種別が指定された場合のエラー
	ErrUnknownArtifact = errors.New("unknown artifact kind")
)

// SubmissionError はタスクIDを得る前に失敗した送信エラー
type SubmissionError struct {
	StatusCode int
	Status     string   // HTTPステータステキスト
	Log        []string // サーバが返した診断ログ
	Err        error
}

func (e *SubmissionError) Error() string {
	return "submission failed: " + e.Diagnostic()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Diagnostic は最も有用な診断メッセージを返す
// サーバのログを優先し、なければステータステキスト、最後に通信エラーを使う
func (e *SubmissionError) Diagnostic() string {
	if len(e.Log) > 0 {
		return strings.Join(e.Log, "\n")
	}
	if e.Status != "" {
		return e.Status
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// TransportError はHTTP交換そのものの失敗（通信エラーまたは非2xx）
type TransportError struct {
	Op         string
	StatusCode int
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
