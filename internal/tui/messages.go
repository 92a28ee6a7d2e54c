package tui

import (
	"github.com/ringcheck/ringcheck/internal/api"
	"github.com/ringcheck/ringcheck/internal/controller"
	"github.com/ringcheck/ringcheck/internal/session"
)

// ============================================================================
// Session Messages
// ============================================================================

// StartedMsg carries the initial view after the stored session was restored.
type StartedMsg struct {
	Ticket controller.Ticket
	Err    error
}

// AuthDoneMsg signals that a login or signup attempt finished.
type AuthDoneMsg struct {
	Session *session.Session
	Err     error
}

// LogoutDoneMsg signals that logout finished.
type LogoutDoneMsg struct {
	Err error
}

// ============================================================================
// View Data Messages
// ============================================================================

// ViewLoadedMsg carries the data fetched for one activation.
// Ticket identifies the activation so late results can be dropped.
type ViewLoadedMsg struct {
	Ticket controller.Ticket
	Data   *controller.ViewData
	Err    error
}

// SearchResultMsg carries one page of search results.
type SearchResultMsg struct {
	Ticket controller.Ticket
	Query  string
	Page   int
	Result *api.SearchPage
	Err    error
}

// ============================================================================
// Action Messages
// ============================================================================

// ContactAddedMsg signals that a contact was saved.
// Ticket is the activation the form was submitted from.
type ContactAddedMsg struct {
	Ticket  controller.Ticket
	Contact *api.Contact
	Err     error
}

// SpamReportedMsg signals that a spam report was submitted.
type SpamReportedMsg struct {
	Ticket controller.Ticket
	Record *api.ScamRecord
	Err    error
}

// ============================================================================
// Utility Messages
// ============================================================================

// CtrlCResetMsg clears the pending Ctrl+C confirmation.
type CtrlCResetMsg struct{}
