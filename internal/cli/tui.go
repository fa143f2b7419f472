package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	lcio "github.com/ruliana/link-community/pkg/io"
	"github.com/ruliana/link-community/pkg/slink"
)

// Progress view styles
var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
	tuiDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

const barWidth = 40

// =============================================================================
// ProgressModel - Live clustering progress
// =============================================================================

type progressMsg slink.Progress

type progressDoneMsg struct{ err error }

// ProgressModel is the bubbletea model showing a running clustering.
type ProgressModel struct {
	Title    string
	Progress slink.Progress
	Done     bool
	Aborted  bool
	Err      error
}

// NewProgressModel creates a progress model with the given title.
func NewProgressModel(title string) ProgressModel {
	return ProgressModel{Title: title}
}

func (m ProgressModel) Init() tea.Cmd {
	return nil
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Aborted = true
			return m, tea.Quit
		}
	case progressMsg:
		m.Progress = slink.Progress(msg)
	case progressDoneMsg:
		m.Done = true
		m.Err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")

	frac := m.Progress.Fraction()
	if m.Progress.Total == 0 && !m.Done {
		frac = 0
	}
	full := int(frac * barWidth)
	b.WriteString(barFullStyle.Render(strings.Repeat("█", full)))
	b.WriteString(barEmptyStyle.Render(strings.Repeat("░", barWidth-full)))
	b.WriteString(fmt.Sprintf(" %3.0f%%\n", frac*100))

	b.WriteString(tuiDimStyle.Render(fmt.Sprintf("%d/%d edges · %s elapsed · eta %s",
		m.Progress.Done, m.Progress.Total,
		m.Progress.Elapsed.Round(time.Second), m.Progress.ETA().Round(time.Second))))
	b.WriteString("\n")
	if !m.Done {
		b.WriteString(tuiDimStyle.Render("q to abort"))
		b.WriteString("\n")
	}
	return b.String()
}

// runWithProgressView runs fn while a ProgressModel shows the progress it
// reports. Aborting the view cancels the context passed to fn.
func runWithProgressView(ctx context.Context, title string, fn func(ctx context.Context, report func(slink.Progress)) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewProgressModel(title), tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	errCh := make(chan error, 1)
	go func() {
		err := fn(ctx, func(pr slink.Progress) { p.Send(progressMsg(pr)) })
		errCh <- err
		p.Send(progressDoneMsg{err: err})
	}()

	final, runErr := p.Run()
	if m, ok := final.(ProgressModel); ok && m.Aborted {
		cancel()
		<-errCh
		return context.Canceled
	}
	if runErr != nil {
		cancel()
		if err := <-errCh; err != nil {
			return err
		}
		return runErr
	}
	return <-errCh
}

// =============================================================================
// Tables
// =============================================================================

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// levelsTable renders a merge histogram, highest level first.
func levelsTable(levels []lcio.LevelCount, precision int) string {
	t := newTable("Level", "Merges")
	for _, l := range levels {
		t.Row(formatLevel(l.Level, precision), fmt.Sprint(l.Merges))
	}
	return t.Render()
}

// groupsTable renders the communities of a cut, largest first. At most
// limit members are listed per group; zero lists them all.
func groupsTable[T any](groups lcio.Groups[T], limit int) string {
	t := newTable("ID", "Size", "Members")
	for _, g := range groups.Groups {
		members := g.Members
		more := ""
		if limit > 0 && len(members) > limit {
			more = fmt.Sprintf(" … +%d", len(members)-limit)
			members = members[:limit]
		}
		names := make([]string, len(members))
		for i, m := range members {
			names[i] = fmt.Sprint(m)
		}
		t.Row(fmt.Sprint(g.ID), fmt.Sprint(g.Size), strings.Join(names, " ")+more)
	}
	return t.Render()
}
