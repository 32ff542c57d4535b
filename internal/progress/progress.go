// Package progress renders the sweep's progress bar and end-of-run summary.
package progress

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/sells-group/ramen-cli/internal/sink"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Width(18)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B7280")).
			Padding(0, 2)
)

// Bar draws a single-line progress bar over the place loop. A disabled Bar
// counts but draws nothing.
type Bar struct {
	mu      sync.Mutex
	w       io.Writer
	model   progress.Model
	total   int
	done    int
	enabled bool
}

// NewBar creates a Bar for total places writing to w.
func NewBar(w io.Writer, total int, enabled bool) *Bar {
	return &Bar{
		w:       w,
		model:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		total:   total,
		enabled: enabled && w != nil,
	}
}

// Percent returns the completed fraction in [0, 1].
func (b *Bar) Percent() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.percent()
}

func (b *Bar) percent() float64 {
	if b.total <= 0 {
		return 1
	}
	p := float64(b.done) / float64(b.total)
	if p > 1 {
		p = 1
	}
	return p
}

// Advance marks one more place as handled and redraws with label.
func (b *Bar) Advance(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.done++
	if !b.enabled {
		return
	}
	fmt.Fprintf(b.w, "\r%s %d/%d %s\x1b[K", b.model.ViewAs(b.percent()), b.done, b.total, label)
}

// Finish ends the bar's line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.enabled {
		fmt.Fprintln(b.w)
	}
}

// RenderSummary formats a finished run for the terminal.
func RenderSummary(s sink.Summary) string {
	var lines []string
	stat := func(label string, value any) {
		lines = append(lines, labelStyle.Render(label)+valueStyle.Render(fmt.Sprint(value)))
	}

	stat("Places", s.Places)
	stat("Searched", s.Searched)
	stat("Skipped", s.Skipped)
	for _, k := range sortedKeys(s.Strategies) {
		stat("  "+k, s.Strategies[k])
	}
	stat("Rows", s.Rows)
	stat("Duplicates", s.Duplicates)
	stat("Text searches", s.TextSearchCalls)
	stat("Details lookups", s.DetailsCalls)
	stat("Estimated cost", fmt.Sprintf("$%.2f", s.EstimatedCost))
	if !s.StartedAt.IsZero() && !s.FinishedAt.IsZero() {
		stat("Duration", s.Duration().Round(time.Second))
	}
	if s.CapReached {
		lines = append(lines, warnStyle.Render("Result cap reached; remaining places were not visited"))
	}
	for _, out := range s.Outputs {
		stat("Wrote", out)
	}

	return titleStyle.Render("Sweep complete") + "\n" + boxStyle.Render(strings.Join(lines, "\n"))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
