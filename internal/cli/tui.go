package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/timeslice/pkg/pipeline"
	"github.com/matzehuels/timeslice/pkg/stats"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PeriodModel - Interactive period browser
// =============================================================================

// periodLoadedMsg carries the aggregate of one period back to the model.
type periodLoadedMsg struct {
	seq    int
	period stats.Period
	record stats.Record
	cached bool
	err    error
}

// PeriodModel is the bubbletea model for stepping through periods.
type PeriodModel struct {
	Period  stats.Period
	Record  stats.Record
	Cached  bool
	Loading bool
	Err     error

	ctx    context.Context
	runner *pipeline.Runner
	now    func() time.Time
	seq    int
}

// newPeriodModel creates a browser starting at p.
func newPeriodModel(ctx context.Context, r *pipeline.Runner, p stats.Period, now func() time.Time) PeriodModel {
	return PeriodModel{
		Period:  p,
		Loading: true,
		ctx:     ctx,
		runner:  r,
		now:     now,
	}
}

func (m PeriodModel) Init() tea.Cmd {
	return m.load()
}

// load fetches the aggregate of the current period. Results of earlier
// loads are dropped by sequence number.
func (m PeriodModel) load() tea.Cmd {
	ctx, r, p, seq := m.ctx, m.runner, m.Period, m.seq
	return func() tea.Msg {
		rec, hit, err := r.AggregateWithCacheInfo(ctx, p, false)
		return periodLoadedMsg{seq: seq, period: p, record: rec, cached: hit, err: err}
	}
}

// moveTo switches to p and schedules its load.
func (m PeriodModel) moveTo(p stats.Period) (tea.Model, tea.Cmd) {
	m.Period = p
	m.Loading = true
	m.Err = nil
	m.seq++
	return m, m.load()
}

func (m PeriodModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case periodLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.Loading = false
		m.Record, m.Cached, m.Err = msg.record, msg.cached, msg.err
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			return m.moveTo(m.Period.Prev())
		case "right", "l":
			return m.moveTo(m.Period.Next())
		case "t":
			return m.moveTo(stats.NewPeriod(m.Period.Mode, m.now()))
		case "d":
			return m.moveTo(stats.NewPeriod(stats.ModeDay, m.Period.Anchor))
		case "w":
			return m.moveTo(stats.NewPeriod(stats.ModeWeek, m.Period.Anchor))
		case "m":
			return m.moveTo(stats.NewPeriod(stats.ModeMonth, m.Period.Anchor))
		case "y":
			return m.moveTo(stats.NewPeriod(stats.ModeYear, m.Period.Anchor))
		}
	}
	return m, nil
}

func (m PeriodModel) View() string {
	var b strings.Builder

	b.WriteString(m.modeTabs())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ period  d/w/m/y mode  t today  q quit"))
	b.WriteString("\n\n")
	b.WriteString(periodHeading(m.Period))
	b.WriteString("\n")

	switch {
	case m.Loading:
		b.WriteString(listDimStyle.Render("loading..."))
	case m.Err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + m.Err.Error())
	case m.Record.Len() == 0:
		b.WriteString(listDimStyle.Render("No data for this period"))
	default:
		b.WriteString(recordTable(m.Record))
		b.WriteString("\n")
		status := iconFresh
		if m.Cached {
			status = iconCached
		}
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s · %d days · %s",
			formatMinutes(m.Record.Total()), m.Period.Len(), status)))
	}
	b.WriteString("\n")

	return b.String()
}

func (m PeriodModel) modeTabs() string {
	tabs := make([]string, len(stats.Modes))
	for i, mode := range stats.Modes {
		if mode == m.Period.Mode {
			tabs[i] = listSelectedStyle.Render("[" + string(mode) + "]")
		} else {
			tabs[i] = listNormalStyle.Render(" " + string(mode) + " ")
		}
	}
	return strings.Join(tabs, " ")
}
