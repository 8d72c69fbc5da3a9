package diagnostics

import "time"

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes raised by the fader.
const (
	DriverFallback = "DRIVER.FALLBACK"
	ButtonMissing  = "INPUT.MISSING"
	PaletteAdvance = "PALETTE.ADVANCE"
	OutputFailed   = "OUTPUT.FAILED"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
	Time           time.Time      `json:"time"`
}

// Sink receives diagnostics. A nil Sink drops them.
type Sink interface {
	Push(d Diagnostic)
}

// Publish stamps d and hands it to s.
func Publish(s Sink, d Diagnostic) {
	if s == nil {
		return
	}
	if d.Time.IsZero() {
		d.Time = time.Now()
	}
	s.Push(d)
}

// Backlog keeps the most recent diagnostics, oldest first.
type Backlog struct {
	max   int
	items []Diagnostic
}

func NewBacklog(size int) *Backlog {
	return &Backlog{max: size}
}

func (b *Backlog) Add(d Diagnostic) {
	b.items = append(b.items, d)
	if over := len(b.items) - b.max; over > 0 {
		b.items = append([]Diagnostic(nil), b.items[over:]...)
	}
}

func (b *Backlog) Items() []Diagnostic {
	return append([]Diagnostic(nil), b.items...)
}
