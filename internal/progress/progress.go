package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const refreshInterval = 100 * time.Millisecond

// Bar reports how many directories of the examples tree have been enhanced.
// It is safe for concurrent use.
type Bar struct {
	mu         sync.Mutex
	total      int64
	current    int64
	width      int
	writer     io.Writer
	lastDir    string
	lastUpdate time.Time
	enabled    bool
}

// New returns a bar writing to w. Nothing is drawn when w is nil.
func New(total int64, w io.Writer) *Bar {
	return &Bar{
		total:   total,
		width:   40,
		writer:  w,
		enabled: w != nil,
	}
}

// ForStdout draws on stdout only when stdout is a terminal.
func ForStdout(total int64) *Bar {
	if !isTerminal() {
		return New(total, nil)
	}
	return New(total, os.Stdout)
}

func isTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// DirectoryDone records one finished directory. Its signature matches
// metadata.Options.OnDirectory.
func (b *Bar) DirectoryDone(dir string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current++
	b.lastDir = filepath.Base(dir)
	if !b.enabled {
		return
	}

	now := time.Now()
	if now.Sub(b.lastUpdate) > refreshInterval || b.current == b.total {
		b.lastUpdate = now
		b.render()
	}
}

func (b *Bar) Current() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// render must be called with mu held.
func (b *Bar) render() {
	if b.total <= 0 {
		return
	}

	current := min(b.current, b.total)
	filled := int(int64(b.width) * current / b.total)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", b.width-filled)

	fmt.Fprintf(b.writer, "\r\033[K[%s] %3d%% (%d/%d dirs) %s",
		bar, current*100/b.total, current, b.total, b.lastDir)
}

func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled {
		return
	}
	b.current = b.total
	b.lastDir = ""
	b.render()
	fmt.Fprintln(b.writer)
}
