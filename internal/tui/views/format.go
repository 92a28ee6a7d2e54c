package views

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ringcheck/ringcheck/internal/api"
	"github.com/ringcheck/ringcheck/internal/tui"
)

var interactionKinds = map[string]struct {
	icon  string
	label string
}{
	api.InteractionCall:       {"\U0001F4DE", "Call"},
	api.InteractionMessage:    {"\U0001F4AC", "Message"},
	api.InteractionSpamReport: {"\U0001F6AB", "Spam Report"},
}

// InteractionIcon returns the icon for an interaction type.
func InteractionIcon(t string) string {
	if k, ok := interactionKinds[t]; ok {
		return k.icon
	}
	return "\U0001F4F1"
}

// InteractionLabel returns the display name for an interaction type.
// Unknown types are shown as-is.
func InteractionLabel(t string) string {
	if k, ok := interactionKinds[t]; ok {
		return k.label
	}
	return t
}

// SpamBadge describes how often a number was reported.
func SpamBadge(reports int) string {
	if reports <= 0 {
		return tui.BadgeNoSpam
	}
	return tui.ErrorStyle.Render(fmt.Sprintf("\U0001F6AB %d spam report(s)", reports))
}

// DescribeError turns an error into the text shown to the user.
func DescribeError(err error) string {
	var (
		verr     *api.ValidationError
		rejected *api.AuthRejected
		remote   *api.RemoteError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Error()
	case errors.As(err, &rejected):
		return rejected.Message
	case errors.Is(err, api.ErrAuthExpired):
		return "Your session expired. Please log in again."
	case api.IsNetwork(err):
		return "Could not reach the server. Check your connection and try again."
	case errors.As(err, &remote):
		return remote.Error()
	}
	return err.Error()
}

// loader tracks the load state shared by the data views.
type loader struct {
	loading bool
	err     error
	spinner spinner.Model
}

func newLoader() loader {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = tui.TitleStyle
	return loader{spinner: sp}
}

func (l *loader) start() tea.Cmd {
	l.loading = true
	l.err = nil
	return l.spinner.Tick
}

func (l *loader) finish(err error) {
	l.loading = false
	l.err = err
}

func (l *loader) update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); !ok || !l.loading {
		return nil
	}
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// view returns the spinner or the error line, and false when neither applies.
func (l loader) view(what string) (string, bool) {
	switch {
	case l.loading:
		return l.spinner.View() + " Loading " + what + "...", true
	case l.err != nil:
		return tui.ErrorStyle.Render("❌ Failed to load: " + DescribeError(l.err)), true
	}
	return "", false
}

// flash renders the outcome of a form submission.
func flash(success string, err error) string {
	if err != nil {
		return tui.ErrorStyle.Render("✗ " + DescribeError(err))
	}
	if success == "" {
		return ""
	}
	return tui.SuccessStyle.Render("✓ " + success)
}
