// Package commands provides Bubble Tea commands for TUI operations.
package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ringcheck/ringcheck/internal/controller"
	"github.com/ringcheck/ringcheck/internal/tui"
)

// StartCmd restores the stored session and activates the initial view.
func StartCmd(ctrl *controller.Controller) tea.Cmd {
	return func() tea.Msg {
		ticket, err := ctrl.Start()
		return tui.StartedMsg{Ticket: ticket, Err: err}
	}
}

// LoginCmd signs in.
func LoginCmd(ctrl *controller.Controller, phone, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := ctrl.Login(context.Background(), phone, password)
		return tui.AuthDoneMsg{Session: sess, Err: err}
	}
}

// SignupCmd creates an account and signs in.
func SignupCmd(ctrl *controller.Controller, p controller.Profile, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := ctrl.Signup(context.Background(), p, password)
		return tui.AuthDoneMsg{Session: sess, Err: err}
	}
}

// LogoutCmd signs out.
func LogoutCmd(ctrl *controller.Controller) tea.Cmd {
	return func() tea.Msg {
		return tui.LogoutDoneMsg{Err: ctrl.Logout()}
	}
}
