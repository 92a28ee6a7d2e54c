package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ringcheck/ringcheck/internal/api"
	"github.com/ringcheck/ringcheck/internal/tui"
)

const trendBarWidth = 24

// DashboardModel is the view model for the statistics dashboard.
type DashboardModel struct {
	loader
	data  *api.Dashboard
	width int
}

// NewDashboardModel creates an empty dashboard.
func NewDashboardModel(width int) DashboardModel {
	return DashboardModel{loader: newLoader(), width: width}
}

// StartLoading shows the spinner until SetData is called.
func (m *DashboardModel) StartLoading() tea.Cmd {
	return m.start()
}

// SetData replaces the dashboard contents.
func (m *DashboardModel) SetData(d *api.Dashboard, err error) {
	m.finish(err)
	if err == nil {
		m.data = d
	}
}

// Update handles messages for the dashboard view.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		return m, nil
	}
	return m, m.update(msg)
}

// View renders the dashboard view.
func (m DashboardModel) View() string {
	if s, ok := m.loader.view("dashboard"); ok {
		return s
	}
	if m.data == nil {
		return ""
	}
	return RenderDashboard(m.data)
}

// RenderDashboard renders dashboard data.
func RenderDashboard(d *api.Dashboard) string {
	var b strings.Builder

	if d.User.Name != "" {
		b.WriteString(tui.TitleStyle.Render("Welcome back, " + d.User.Name))
		b.WriteString("\n\n")
	}

	b.WriteString(renderStats(d))
	b.WriteString("\n\n")

	b.WriteString(tui.TitleStyle.Render("Recent Interactions"))
	b.WriteString("\n")
	b.WriteString(RenderRecentEntries(d.RecentInteractions))
	b.WriteString("\n")

	if len(d.TopContacts) > 0 {
		b.WriteString(tui.TitleStyle.Render("Top Contacts"))
		b.WriteString("\n")
		for i, c := range d.TopContacts {
			fmt.Fprintf(&b, "  #%d %s  %s  %s\n", i+1, c.Name, tui.DimStyle.Render(c.Phone),
				tui.DimStyle.Render(fmt.Sprintf("\U0001F4AC %d", c.Count)))
		}
		b.WriteString("\n")
	}

	if len(d.ActivityTrend) > 0 {
		b.WriteString(tui.TitleStyle.Render("Activity"))
		b.WriteString("\n")
		b.WriteString(RenderTrend(d.ActivityTrend))
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderStats(d *api.Dashboard) string {
	cards := []struct {
		icon  string
		value int
		label string
	}{
		{"\U0001F4CA", d.TotalInteractions, "Total Interactions"},
		{"\U0001F4DE", d.InteractionStats.Calls, "Calls Made"},
		{"\U0001F4AC", d.InteractionStats.Messages, "Messages Sent"},
		{"\U0001F6AB", d.InteractionStats.SpamReports, "Spam Reports"},
		{"⚠️", d.SpamStats.Received, "Times Reported"},
		{"✅", d.SpamStats.Reported, "Reports Made"},
	}

	cell := lipgloss.NewStyle().Width(26)
	var rows []string
	for i := 0; i < len(cards); i += 3 {
		var cols []string
		for _, c := range cards[i:min(i+3, len(cards))] {
			cols = append(cols, cell.Render(fmt.Sprintf("%s %s %s", c.icon, tui.TitleStyle.Render(fmt.Sprint(c.value)), c.label)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	}
	return strings.Join(rows, "\n")
}

// RenderRecentEntries renders the dashboard's recent interaction lines.
func RenderRecentEntries(entries []api.RecentEntry) string {
	if len(entries) == 0 {
		return "  \U0001F4ED No interactions yet\n" +
			tui.DimStyle.Render("  Start by adding contacts or reporting spam!") + "\n"
	}

	var b strings.Builder
	for _, e := range entries {
		dir := "\U0001F4E5 From"
		if e.Direction == "outgoing" {
			dir = "\U0001F4E4 To"
		}
		fmt.Fprintf(&b, "  %s %-12s %s: %s  %s\n",
			InteractionIcon(e.Type), InteractionLabel(e.Type), dir, e.With,
			tui.DimStyle.Render("\U0001F552 "+e.Date))
	}
	return b.String()
}

// RenderTrend draws one bar per day scaled to the busiest day.
func RenderTrend(points []api.TrendPoint) string {
	peak := 0
	for _, p := range points {
		peak = max(peak, p.Count)
	}

	var b strings.Builder
	for _, p := range points {
		bar := 0
		if peak > 0 {
			bar = p.Count * trendBarWidth / peak
		}
		if p.Count > 0 && bar == 0 {
			bar = 1
		}
		fmt.Fprintf(&b, "  %-3s %s %d\n", p.Day, tui.SuccessStyle.Render(strings.Repeat("█", bar)), p.Count)
	}
	return b.String()
}
