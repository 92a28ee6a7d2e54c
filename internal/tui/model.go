package tui

import (
	"github.com/ringcheck/ringcheck/internal/config"
	"github.com/ringcheck/ringcheck/internal/controller"
)

// Model holds the state shared by every view of the TUI.
// The controller owns the session and the active view; Model only keeps
// what the terminal needs on top of that.
type Model struct {
	Cfg  *config.Config
	Ctrl *controller.Controller

	Err error

	// Terminal dimensions
	Width  int
	Height int

	// Ctrl+C confirmation state
	CtrlCPending bool
}

// NewModel creates a new Model with the given configuration and controller.
func NewModel(cfg *config.Config, ctrl *controller.Controller) *Model {
	return &Model{
		Cfg:  cfg,
		Ctrl: ctrl,

		// Default dimensions (will be updated on WindowSizeMsg)
		Width:  80,
		Height: 24,
	}
}
