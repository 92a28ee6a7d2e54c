package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ringcheck/ringcheck/internal/api"
	"github.com/ringcheck/ringcheck/internal/controller"
	"github.com/ringcheck/ringcheck/internal/tui"
)

// LoadViewCmd fetches the data for the activation identified by ticket.
// Views that need no data produce no command.
func LoadViewCmd(ctrl *controller.Controller, ticket controller.Ticket) tea.Cmd {
	if !ticket.NeedsLoad() {
		return nil
	}
	return func() tea.Msg {
		data, err := ctrl.Load(context.Background(), ticket)
		return tui.ViewLoadedMsg{Ticket: ticket, Data: data, Err: err}
	}
}

// SearchCmd runs a search on behalf of the search view's activation.
func SearchCmd(ctrl *controller.Controller, ticket controller.Ticket, query string, page int) tea.Cmd {
	return func() tea.Msg {
		res, err := ctrl.Search(context.Background(), ticket, query, page)
		return tui.SearchResultMsg{Ticket: ticket, Query: query, Page: page, Result: res, Err: err}
	}
}

// AddContactCmd saves a contact submitted from the activation ticket.
func AddContactCmd(ctrl *controller.Controller, ticket controller.Ticket, c api.NewContact) tea.Cmd {
	return func() tea.Msg {
		contact, err := ctrl.API().AddContact(context.Background(), c)
		return tui.ContactAddedMsg{Ticket: ticket, Contact: contact, Err: err}
	}
}

// ReportSpamCmd submits a spam report from the activation ticket.
func ReportSpamCmd(ctrl *controller.Controller, ticket controller.Ticket, r api.SpamReport) tea.Cmd {
	return func() tea.Msg {
		rec, err := ctrl.API().ReportSpam(context.Background(), r)
		return tui.SpamReportedMsg{Ticket: ticket, Record: rec, Err: err}
	}
}
