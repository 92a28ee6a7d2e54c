package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ringcheck/ringcheck/internal/api"
	"github.com/ringcheck/ringcheck/internal/tui"
)

// dayRanges are the date filters offered by the spam view. 0 means all time.
var dayRanges = []int{0, 7, 30, 90}

// SubmitSpamMsg is sent when the user files a spam report.
type SubmitSpamMsg struct {
	Report api.SpamReport
}

// SpamFilterMsg is sent when the user changes the spam list filter.
type SpamFilterMsg struct {
	Filter api.SpamFilter
}

// SpamModel is the view model for spam reporting and statistics.
type SpamModel struct {
	loader
	stats     []api.SpamStat
	total     int
	filter    api.SpamFilter
	form      Form
	reporting bool
	saving    bool
	result    string
	width     int
}

// NewSpamModel creates the spam view with the given filter.
func NewSpamModel(width int, filter api.SpamFilter) SpamModel {
	form := NewForm(width, "Phone number", "Description (optional)")
	form.Placeholder(0, "+1 555 123 4567")
	form.Placeholder(1, "e.g. fake bank calls")
	return SpamModel{loader: newLoader(), form: form, filter: filter, width: width}
}

// StartLoading shows the spinner until SetStats is called.
func (m *SpamModel) StartLoading() tea.Cmd {
	return m.start()
}

// SetStats replaces the list. total counts every match, including those
// beyond the page.
func (m *SpamModel) SetStats(stats []api.SpamStat, total int, err error) {
	m.finish(err)
	if err == nil {
		m.stats = stats
		m.total = total
	}
}

// Reporting reports whether the report form is open.
func (m SpamModel) Reporting() bool {
	return m.reporting
}

// SetReported records the outcome of a report.
func (m *SpamModel) SetReported(err error) {
	m.saving = false
	m.result = flash("Spam report submitted! Thank you for protecting the community.", err)
	if err == nil {
		m.form.Reset()
		m.reporting = false
	}
}

// Update handles messages for the spam view.
func (m SpamModel) Update(msg tea.Msg) (SpamModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.form.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		if !m.reporting {
			return m.updateList(msg)
		}
		if key.Matches(msg, tui.DefaultKeyMap.Escape) {
			m.reporting = false
			m.form.Reset()
			return m, nil
		}
		if m.saving {
			return m, nil
		}
		var (
			cmd       tea.Cmd
			submitted bool
		)
		m.form, cmd, submitted = m.form.Update(msg)
		if !submitted {
			return m, cmd
		}
		m.saving = true
		r := api.SpamReport{PhoneNumber: m.form.Value(0), Description: m.form.Value(1)}
		return m, func() tea.Msg { return SubmitSpamMsg{Report: r} }
	}

	cmd := m.update(msg)
	if m.reporting {
		var formCmd tea.Cmd
		m.form, formCmd, _ = m.form.Update(msg)
		cmd = tea.Batch(cmd, formCmd)
	}
	return m, cmd
}

func (m SpamModel) updateList(msg tea.KeyMsg) (SpamModel, tea.Cmd) {
	switch {
	case key.Matches(msg, tui.DefaultKeyMap.NewItem):
		m.reporting = true
		m.result = ""
		return m, textinput.Blink
	case key.Matches(msg, tui.DefaultKeyMap.Filter):
		m.filter.Days = nextDayRange(m.filter.Days)
	case msg.String() == "+":
		m.filter.MinReports++
	case msg.String() == "-":
		if m.filter.MinReports == 0 {
			return m, nil
		}
		m.filter.MinReports--
	default:
		return m, nil
	}
	f := m.filter
	return m, func() tea.Msg { return SpamFilterMsg{Filter: f} }
}

func nextDayRange(current int) int {
	for i, d := range dayRanges {
		if d == current {
			return dayRanges[(i+1)%len(dayRanges)]
		}
	}
	return dayRanges[0]
}

// View renders the spam view.
func (m SpamModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("\U0001F6AB Spam Numbers"))
	b.WriteString("  ")
	b.WriteString(tui.DimStyle.Render(RenderSpamFilter(m.filter)))
	b.WriteString("\n")
	if s, ok := m.loader.view("spam reports"); ok {
		b.WriteString(s)
		b.WriteString("\n")
	} else {
		b.WriteString(RenderSpamList(m.stats, m.total))
	}
	b.WriteString("\n")

	if m.reporting {
		b.WriteString(tui.TitleStyle.Render("Report Spam"))
		b.WriteString("\n")
		b.WriteString(m.form.View())
		if m.saving {
			b.WriteString(tui.DimStyle.Render("Submitting..."))
			b.WriteString("\n")
		}
	}
	if m.result != "" {
		b.WriteString(m.result)
		b.WriteString("\n")
	}

	hint := "Ctrl+A: Report number   Ctrl+F: Date range   +/-: Min reports   Ctrl+R: Reload"
	if m.reporting {
		hint = "Enter: Next/Submit   Esc: Cancel"
	}
	b.WriteString(tui.DimStyle.Render(hint))
	return b.String()
}

// RenderSpamFilter describes the active filter.
func RenderSpamFilter(f api.SpamFilter) string {
	parts := []string{"all time"}
	if f.Days > 0 {
		parts[0] = fmt.Sprintf("last %d days", f.Days)
	}
	if f.MinReports > 0 {
		parts = append(parts, fmt.Sprintf("at least %d reports", f.MinReports))
	}
	if f.PhoneNumber != "" {
		parts = append(parts, f.PhoneNumber)
	}
	return strings.Join(parts, " · ")
}

// RenderSpamList renders one page of spam statistics. total is the number
// of matches before truncation.
func RenderSpamList(stats []api.SpamStat, total int) string {
	if len(stats) == 0 {
		return "  \U0001F4CA No spam reports found\n" +
			tui.DimStyle.Render("  Try adjusting the filters or be the first to report a spam number!") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %s spam number(s) found with current filters\n", tui.TitleStyle.Render(fmt.Sprint(total)))
	for i, s := range stats {
		fmt.Fprintf(&b, "  #%d \U0001F4F1 %s  %s\n     \U0001F465 Reported by %d user(s)\n",
			i+1, s.PhoneNumber, tui.ErrorStyle.Render(fmt.Sprintf("\U0001F6AB %d reports", s.SpamCount)), s.UniqueReporters)
		if s.LatestDescription != nil && *s.LatestDescription != "" {
			fmt.Fprintf(&b, "     \U0001F4AC %q\n", *s.LatestDescription)
		}
	}
	if total > len(stats) {
		b.WriteString(tui.DimStyle.Render(fmt.Sprintf("  Showing top %d of %d results", len(stats), total)))
		b.WriteString("\n")
	}
	return b.String()
}
