package procmonitor

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Stream string

const (
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
)

// Line is one line of output captured from a supervised process.
type Line struct {
	Timestamp time.Time `json:"timestamp"`
	Stream    Stream    `json:"stream"`
	Text      string    `json:"text"`
}

type Stats struct {
	TotalStdout int64  `json:"total_stdout"`
	TotalStderr int64  `json:"total_stderr"`
	RecentLines []Line `json:"recent_lines"`
}

// Monitor keeps the last N lines in a ring buffer. Safe for concurrent use.
type Monitor struct {
	linesMu sync.Mutex
	lines   []Line
	idx     int
	count   int

	totalStdout int64
	totalStderr int64
}

func New(size int) *Monitor {
	if size <= 0 {
		size = 200
	}
	return &Monitor{lines: make([]Line, size)}
}

func (m *Monitor) Record(stream Stream, text string) {
	l := Line{Timestamp: time.Now().UTC(), Stream: stream, Text: strings.TrimRight(text, "\r\n")}

	if stream == StreamStderr {
		atomic.AddInt64(&m.totalStderr, 1)
	} else {
		atomic.AddInt64(&m.totalStdout, 1)
	}

	m.linesMu.Lock()
	m.lines[m.idx] = l
	m.idx = (m.idx + 1) % len(m.lines)
	if m.count < len(m.lines) {
		m.count++
	}
	m.linesMu.Unlock()
}

// Recent returns up to n of the newest lines, oldest first. n <= 0 means all buffered lines.
func (m *Monitor) Recent(n int) []Line {
	m.linesMu.Lock()
	defer m.linesMu.Unlock()

	if n <= 0 || n > m.count {
		n = m.count
	}
	res := make([]Line, 0, n)
	start := (m.idx - n) % len(m.lines)
	if start < 0 {
		start += len(m.lines)
	}
	for i := 0; i < n; i++ {
		res = append(res, m.lines[(start+i)%len(m.lines)])
	}
	return res
}

// Totals returns the per-stream line counters without copying the buffer.
func (m *Monitor) Totals() (stdout, stderr int64) {
	return atomic.LoadInt64(&m.totalStdout), atomic.LoadInt64(&m.totalStderr)
}

func (m *Monitor) GetStats() Stats {
	return Stats{
		TotalStdout: atomic.LoadInt64(&m.totalStdout),
		TotalStderr: atomic.LoadInt64(&m.totalStderr),
		RecentLines: m.Recent(0),
	}
}
