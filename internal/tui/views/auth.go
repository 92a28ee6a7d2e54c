package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ringcheck/ringcheck/internal/controller"
	"github.com/ringcheck/ringcheck/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// SubmitLoginMsg is sent when the user submits the login form.
type SubmitLoginMsg struct {
	Phone    string
	Password string
}

// SubmitSignupMsg is sent when the user submits the signup form.
type SubmitSignupMsg struct {
	Profile  controller.Profile
	Password string
}

// ============================================================================
// AuthModel
// ============================================================================

// AuthMode selects the login or the signup form.
type AuthMode int

const (
	ModeLogin AuthMode = iota
	ModeSignup
)

// Signup form field indexes.
const (
	signupFirstName = iota
	signupLastName
	signupPhone
	signupEmail
	signupPassword
)

// AuthModel is the view model for the sign-in screen.
type AuthModel struct {
	mode    AuthMode
	login   Form
	signup  Form
	busy    bool
	err     error
	notice  string
	spinner spinner.Model
	width   int
}

// NewAuthModel creates the sign-in screen in login mode.
func NewAuthModel(width int) AuthModel {
	login := NewForm(width, "Phone number", "Password")
	login.Placeholder(0, "+1 555 123 4567")
	login.Secret(1)

	signup := NewForm(width, "First name", "Last name", "Phone number", "Email (optional)", "Password")
	signup.Placeholder(signupPhone, "+1 555 123 4567")
	signup.Secret(signupPassword)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return AuthModel{
		login:   login,
		signup:  signup,
		spinner: sp,
		width:   width,
	}
}

// Init returns the initial command for the auth view.
func (m AuthModel) Init() tea.Cmd {
	return textinput.Blink
}

// Mode returns the active form.
func (m AuthModel) Mode() AuthMode {
	return m.mode
}

// Busy reports whether a submission is in flight.
func (m AuthModel) Busy() bool {
	return m.busy
}

// SetResult records the outcome of a submission. A nil error clears the
// forms so no credentials linger after sign-in.
func (m *AuthModel) SetResult(err error) {
	m.busy = false
	m.err = err
	if err == nil {
		m.notice = ""
		m.login.Reset()
		m.signup.Reset()
	}
}

// SetNotice shows a message above the form, e.g. after the session expired.
func (m *AuthModel) SetNotice(notice string) {
	m.notice = notice
}

// Update handles messages for the auth view.
func (m AuthModel) Update(msg tea.Msg) (AuthModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.login.SetWidth(msg.Width)
		m.signup.SetWidth(msg.Width)
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		if key.Matches(msg, tui.DefaultKeyMap.ToggleMode) {
			if m.mode == ModeLogin {
				m.mode = ModeSignup
			} else {
				m.mode = ModeLogin
			}
			m.err = nil
			return m, textinput.Blink
		}
	}

	var (
		cmd       tea.Cmd
		submitted bool
	)
	if m.mode == ModeLogin {
		m.login, cmd, submitted = m.login.Update(msg)
	} else {
		m.signup, cmd, submitted = m.signup.Update(msg)
	}
	if !submitted {
		return m, cmd
	}

	m.busy = true
	m.err = nil
	submit := m.submitMsg()
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg { return submit })
}

func (m AuthModel) submitMsg() tea.Msg {
	if m.mode == ModeLogin {
		return SubmitLoginMsg{Phone: m.login.Value(0), Password: m.login.Value(1)}
	}
	return SubmitSignupMsg{
		Profile: controller.Profile{
			FirstName:   m.signup.Value(signupFirstName),
			LastName:    m.signup.Value(signupLastName),
			PhoneNumber: m.signup.Value(signupPhone),
			Email:       m.signup.Value(signupEmail),
		},
		Password: m.signup.Value(signupPassword),
	}
}

// View renders the auth view.
func (m AuthModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("\U0001F4F1 ringcheck"))
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("Identify callers. Block spam."))
	b.WriteString("\n\n")

	if m.notice != "" {
		b.WriteString(tui.WarningStyle.Render(m.notice))
		b.WriteString("\n\n")
	}

	if m.mode == ModeLogin {
		b.WriteString(tui.TitleStyle.Render("Log in"))
		b.WriteString("\n\n")
		b.WriteString(m.login.View())
	} else {
		b.WriteString(tui.TitleStyle.Render("Create account"))
		b.WriteString("\n\n")
		b.WriteString(m.signup.View())
	}
	b.WriteString("\n")

	switch {
	case m.busy && m.mode == ModeLogin:
		b.WriteString(m.spinner.View() + " Signing in...")
	case m.busy:
		b.WriteString(m.spinner.View() + " Creating account...")
	case m.err != nil:
		b.WriteString(tui.ErrorStyle.Render(DescribeError(m.err)))
	}
	b.WriteString("\n\n")

	other := "Ctrl+T: Create an account"
	if m.mode == ModeSignup {
		other = "Ctrl+T: Back to login"
	}
	b.WriteString(tui.DimStyle.Render("Enter: Next/Submit   Tab: Next field   " + other + "   Ctrl+C: Exit"))

	return tui.BoxStyle.Width(max(m.width-4, 40)).Render(b.String())
}
