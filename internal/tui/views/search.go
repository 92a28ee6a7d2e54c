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

// SubmitSearchMsg is sent when the user runs a search or changes page.
type SubmitSearchMsg struct {
	Query string
	Page  int
}

// SearchModel is the view model for number and name lookup.
type SearchModel struct {
	loader
	input    textinput.Model
	recent   *api.InteractionPage
	query    string
	page     int
	results  *api.SearchPage
	searchLd loader
	width    int
}

// NewSearchModel creates the search view.
func NewSearchModel(width int) SearchModel {
	ti := textinput.New()
	ti.Placeholder = "Name or phone number"
	ti.CharLimit = 128
	ti.Width = inputWidth(width)
	ti.Focus()

	return SearchModel{
		loader:   newLoader(),
		searchLd: newLoader(),
		input:    ti,
		width:    width,
	}
}

// StartLoading shows the spinner for the recent-activity panel.
func (m *SearchModel) StartLoading() tea.Cmd {
	return m.start()
}

// SetRecent replaces the recent-activity panel.
func (m *SearchModel) SetRecent(p *api.InteractionPage, err error) {
	m.finish(err)
	if err == nil {
		m.recent = p
	}
}

// StartSearch shows the spinner for a query.
func (m *SearchModel) StartSearch(query string, page int) tea.Cmd {
	m.query = query
	m.page = page
	return m.searchLd.start()
}

// SetResults shows the outcome of a query.
func (m *SearchModel) SetResults(p *api.SearchPage, err error) {
	m.searchLd.finish(err)
	if err == nil {
		m.results = p
	}
}

// Update handles messages for the search view.
func (m SearchModel) Update(msg tea.Msg) (SearchModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = inputWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.Enter):
			q := strings.TrimSpace(m.input.Value())
			return m, func() tea.Msg { return SubmitSearchMsg{Query: q, Page: 1} }
		case key.Matches(msg, tui.DefaultKeyMap.NextPage):
			if m.results != nil && m.results.Next != nil {
				q, page := m.query, m.page+1
				return m, func() tea.Msg { return SubmitSearchMsg{Query: q, Page: page} }
			}
			return m, nil
		case key.Matches(msg, tui.DefaultKeyMap.PrevPage):
			if m.page > 1 {
				q, page := m.query, m.page-1
				return m, func() tea.Msg { return SubmitSearchMsg{Query: q, Page: page} }
			}
			return m, nil
		}
	}

	cmds := []tea.Cmd{m.update(msg), m.searchLd.update(msg)}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the search view.
func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("\U0001F50D Search"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if s, ok := m.searchLd.view("results"); ok {
		b.WriteString(s)
		b.WriteString("\n")
	} else if m.results != nil {
		b.WriteString(RenderSearchResults(m.query, m.page, m.results))
		b.WriteString("\n")
	}

	b.WriteString(tui.TitleStyle.Render("Recent Activity"))
	b.WriteString("\n")
	if s, ok := m.loader.view("recent activity"); ok {
		b.WriteString(s)
	} else if m.recent != nil {
		b.WriteString(RenderInteractions(m.recent.Results))
	}

	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("Enter: Search   Ctrl+N/Ctrl+P: Page"))
	return b.String()
}

// RenderSearchResults renders one page of search results.
func RenderSearchResults(query string, page int, p *api.SearchPage) string {
	if len(p.Results) == 0 {
		return fmt.Sprintf("\U0001F50D No results found for %q\n", query) +
			tui.DimStyle.Render("Try a different spelling, the full number with country code, or a partial name.") + "\n"
	}

	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render("\U0001F3AF Search Results"))
	b.WriteString("  ")
	b.WriteString(tui.DimStyle.Render(fmt.Sprintf("Found %d result(s) for %q", p.Count, query)))
	b.WriteString("\n")

	offset := 0
	if page > 1 && len(p.Results) > 0 {
		offset = (page - 1) * len(p.Results)
		if p.Next == nil {
			// last page may be short; number from the end
			offset = p.Count - len(p.Results)
		}
	}
	for i, r := range p.Results {
		badge := tui.BadgeContact
		if r.IsRegistered {
			badge = tui.BadgeRegistered
		}
		fmt.Fprintf(&b, "%3d. %s\n     \U0001F4F1 %s  %s  %s\n", offset+i+1, r.Name, r.PhoneNumber, badge, SpamBadge(r.SpamLikelihood))
	}

	var nav []string
	if p.Previous != nil {
		nav = append(nav, "← previous page")
	}
	if p.Next != nil {
		nav = append(nav, "next page →")
	}
	if len(nav) > 0 {
		b.WriteString(tui.DimStyle.Render(fmt.Sprintf("page %d · %s", max(page, 1), strings.Join(nav, " · "))))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderInteractions renders recorded interactions.
func RenderInteractions(items []api.Interaction) string {
	if len(items) == 0 {
		return "  \U0001F4ED No interactions yet\n"
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "  %s %-12s %s  %s\n", InteractionIcon(it.InteractionType), InteractionLabel(it.InteractionType),
			it.ReceiverPhone, tui.DimStyle.Render(it.CreatedAt))
	}
	return b.String()
}
