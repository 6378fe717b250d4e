package progress

import (
	"fmt"
	"strings"
	"sync"
)

// Bar は進捗率をテキストのプログレスバーとして描画する
type Bar struct {
	width   int
	mu      sync.Mutex
	lastBar string
}

// NewBar は新しいBarを作成する
func NewBar(width int) *Bar {
	if width <= 0 {
		width = 30
	}
	return &Bar{width: width}
}

// Render は進捗をバー文字列に変換する
func (b *Bar) Render(p Progress) string {
	percent := p.Percent
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filledWidth := b.width * percent / 100

	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < b.width; i++ {
		if i < filledWidth {
			sb.WriteString("=")
		} else if i == filledWidth {
			sb.WriteString(">")
		} else {
			sb.WriteString(" ")
		}
	}
	sb.WriteString(fmt.Sprintf("] %3d%% %s", percent, p.Label))

	return sb.String()
}

// Update はバーを描画し、前回と同じなら空文字と false を返す
func (b *Bar) Update(p Progress) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bar := b.Render(p)

	// 同じバーを繰り返し表示しない
	if bar == b.lastBar {
		return "", false
	}
	b.lastBar = bar
	return bar, true
}

// Reset は前回描画したバーを忘れる
func (b *Bar) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastBar = ""
}
