// Package app provides the main TUI application that wires all views together.
package app

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ringcheck/ringcheck/internal/api"
	"github.com/ringcheck/ringcheck/internal/config"
	"github.com/ringcheck/ringcheck/internal/controller"
	"github.com/ringcheck/ringcheck/internal/tui"
	"github.com/ringcheck/ringcheck/internal/tui/commands"
	"github.com/ringcheck/ringcheck/internal/tui/views"
)

const expiredNotice = "Your session expired. Please log in again."

// App is the main TUI application that wires all views together.
// The controller decides which view is active; App only renders it.
type App struct {
	model   *tui.Model
	started bool

	// View models
	authView      views.AuthModel
	dashboardView views.DashboardModel
	searchView    views.SearchModel
	contactsView  views.ContactsModel
	spamView      views.SpamModel
}

// New creates a new App driven by ctrl.
func New(cfg *config.Config, ctrl *controller.Controller) *App {
	model := tui.NewModel(cfg, ctrl)

	return &App{
		model:         model,
		authView:      views.NewAuthModel(model.Width),
		dashboardView: views.NewDashboardModel(model.Width),
		searchView:    views.NewSearchModel(model.Width),
		contactsView:  views.NewContactsModel(model.Width),
		spamView:      views.NewSpamModel(model.Width, ctrl.SpamFilter()),
	}
}

// Init restores the session and activates the initial view.
func (a *App) Init() tea.Cmd {
	return tea.Batch(commands.StartCmd(a.model.Ctrl), textinput.Blink)
}

func (a *App) ctrl() *controller.Controller {
	return a.model.Ctrl
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		a.authView, _ = a.authView.Update(msg)
		a.dashboardView, _ = a.dashboardView.Update(msg)
		a.searchView, _ = a.searchView.Update(msg)
		a.contactsView, _ = a.contactsView.Update(msg)
		a.spamView, _ = a.spamView.Update(msg)
		return a, nil

	case tea.KeyMsg:
		if cmd, handled := a.handleKey(msg); handled {
			return a, cmd
		}

	case tui.CtrlCResetMsg:
		a.model.CtrlCPending = false
		return a, nil

	case tui.StartedMsg:
		a.started = true
		if msg.Err != nil {
			// the controller stays anonymous on the sign-in form
			a.authView.SetResult(msg.Err)
			return a, nil
		}
		return a, a.activated(msg.Ticket)

	case tui.AuthDoneMsg:
		a.authView.SetResult(msg.Err)
		if msg.Err != nil {
			return a, nil
		}
		return a, a.activated(a.ctrl().Current())

	case tui.LogoutDoneMsg:
		a.model.Err = msg.Err
		return a, a.activated(a.ctrl().Current())

	case tui.ViewLoadedMsg:
		return a, a.handleLoaded(msg)

	case tui.SearchResultMsg:
		if a.dropped(msg.Ticket, msg.Err) {
			return a, nil
		}
		a.searchView.SetResults(msg.Result, msg.Err)
		return a, nil

	case tui.ContactAddedMsg:
		if a.expired(msg.Err) {
			return a, nil
		}
		a.contactsView.SetAdded(msg.Err)
		return a, a.reloadIfCurrent(msg.Ticket, msg.Err)

	case tui.SpamReportedMsg:
		if a.expired(msg.Err) {
			return a, nil
		}
		a.spamView.SetReported(msg.Err)
		return a, a.reloadIfCurrent(msg.Ticket, msg.Err)

	case views.SubmitLoginMsg:
		return a, commands.LoginCmd(a.ctrl(), msg.Phone, msg.Password)

	case views.SubmitSignupMsg:
		return a, commands.SignupCmd(a.ctrl(), msg.Profile, msg.Password)

	case views.SubmitSearchMsg:
		if msg.Query == "" {
			a.searchView.SetResults(nil, &api.ValidationError{Reason: "Please enter a name or phone number to search"})
			return a, nil
		}
		ticket := a.ctrl().Current()
		return a, tea.Batch(
			a.searchView.StartSearch(msg.Query, msg.Page),
			commands.SearchCmd(a.ctrl(), ticket, msg.Query, msg.Page),
		)

	case views.SubmitContactMsg:
		return a, commands.AddContactCmd(a.ctrl(), a.ctrl().Current(), msg.Contact)

	case views.SubmitSpamMsg:
		return a, commands.ReportSpamCmd(a.ctrl(), a.ctrl().Current(), msg.Report)

	case views.SpamFilterMsg:
		a.ctrl().SetSpamFilter(msg.Filter)
		return a, a.reload()
	}

	return a, a.updateActive(msg)
}

// handleKey processes global keys. handled is false when the key belongs
// to the active view.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	km := tui.DefaultKeyMap

	if key.Matches(msg, km.CtrlC) {
		if a.model.CtrlCPending {
			return tea.Quit, true
		}
		a.model.CtrlCPending = true
		return tea.Tick(time.Second, func(time.Time) tea.Msg {
			return tui.CtrlCResetMsg{}
		}), true
	}

	// the sign-in form owns every other key
	if a.ctrl().ActiveView() == controller.ViewAuth {
		return nil, false
	}

	switch {
	case key.Matches(msg, km.NextTab):
		return a.cycleTab(1), true
	case key.Matches(msg, km.PrevTab):
		return a.cycleTab(-1), true
	case key.Matches(msg, km.Refresh):
		return a.reload(), true
	case key.Matches(msg, km.Logout):
		return commands.LogoutCmd(a.ctrl()), true
	}
	return nil, false
}

// cycleTab moves to the next or previous navigation view.
func (a *App) cycleTab(delta int) tea.Cmd {
	nav := controller.NavViews()
	idx := 0
	for i, v := range nav {
		if v == a.ctrl().ActiveView() {
			idx = i
		}
	}
	next := nav[(idx+delta+len(nav))%len(nav)]

	ticket, changed := a.ctrl().Navigate(next)
	if !changed {
		return nil
	}
	return a.activated(ticket)
}

// reload re-activates the active view so its data is fetched again.
func (a *App) reload() tea.Cmd {
	return a.activated(a.ctrl().Refresh())
}

// reloadIfCurrent refreshes the view an action was submitted from, unless
// the action failed or the user has moved on since.
func (a *App) reloadIfCurrent(ticket controller.Ticket, err error) tea.Cmd {
	if err != nil || !a.ctrl().IsCurrent(ticket) {
		return nil
	}
	return a.reload()
}

// activated prepares the view named by ticket and starts its one load.
func (a *App) activated(ticket controller.Ticket) tea.Cmd {
	var spin tea.Cmd
	switch ticket.View {
	case controller.ViewDashboard:
		spin = a.dashboardView.StartLoading()
	case controller.ViewSearch:
		spin = a.searchView.StartLoading()
	case controller.ViewContacts:
		spin = a.contactsView.StartLoading()
	case controller.ViewSpam:
		spin = a.spamView.StartLoading()
	default:
		return a.authView.Init()
	}
	return tea.Batch(spin, commands.LoadViewCmd(a.ctrl(), ticket))
}

func (a *App) handleLoaded(msg tui.ViewLoadedMsg) tea.Cmd {
	if a.dropped(msg.Ticket, msg.Err) {
		return nil
	}

	data := msg.Data
	if data == nil {
		data = &controller.ViewData{}
	}
	switch msg.Ticket.View {
	case controller.ViewDashboard:
		a.dashboardView.SetData(data.Dashboard, msg.Err)
	case controller.ViewSearch:
		a.searchView.SetRecent(data.Recent, msg.Err)
	case controller.ViewContacts:
		a.contactsView.SetContacts(data.Contacts, msg.Err)
	case controller.ViewSpam:
		a.spamView.SetStats(data.Spam, data.SpamTotal, msg.Err)
	}
	return nil
}

// dropped reports whether a result must not be rendered: its view was
// left, or the session expired while it was in flight.
func (a *App) dropped(ticket controller.Ticket, err error) bool {
	if a.expired(err) {
		return true
	}
	return errors.Is(err, controller.ErrStaleView) || !a.ctrl().IsCurrent(ticket)
}

// expired shows the expiry notice on the sign-in form. The controller has
// already logged out and switched to the auth view.
func (a *App) expired(err error) bool {
	if !errors.Is(err, api.ErrAuthExpired) {
		return false
	}
	a.authView.SetNotice(expiredNotice)
	return true
}

func (a *App) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.ctrl().ActiveView() {
	case controller.ViewAuth:
		a.authView, cmd = a.authView.Update(msg)
	case controller.ViewDashboard:
		a.dashboardView, cmd = a.dashboardView.Update(msg)
	case controller.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case controller.ViewContacts:
		a.contactsView, cmd = a.contactsView.Update(msg)
	case controller.ViewSpam:
		a.spamView, cmd = a.spamView.Update(msg)
	}
	return cmd
}

// View renders the current application state.
func (a *App) View() string {
	if !a.started {
		return tui.DimStyle.Render("Starting...")
	}

	active := a.ctrl().ActiveView()
	var content string
	switch active {
	case controller.ViewAuth:
		return a.centerContent(a.authView.View())
	case controller.ViewDashboard:
		content = a.dashboardView.View()
	case controller.ViewSearch:
		content = a.searchView.View()
	case controller.ViewContacts:
		content = a.contactsView.View()
	case controller.ViewSpam:
		content = a.spamView.View()
	}

	var b strings.Builder
	b.WriteString(RenderTabBar(active))
	b.WriteString("\n\n")
	b.WriteString(content)
	b.WriteString("\n\n")
	if a.model.Err != nil {
		b.WriteString(tui.ErrorStyle.Render(views.DescribeError(a.model.Err)))
		b.WriteString("\n")
	}
	b.WriteString(a.renderStatusBar())
	return b.String()
}

// centerContent centers content in the terminal window.
func (a *App) centerContent(content string) string {
	return lipgloss.Place(a.model.Width, a.model.Height, lipgloss.Center, lipgloss.Center, content)
}

func (a *App) renderStatusBar() string {
	user := ""
	if s := a.ctrl().Session(); s != nil {
		user = s.User.DisplayName() + " (" + s.User.PhoneNumber + ")"
	}
	hints := "Tab: Switch view   Ctrl+R: Reload   Ctrl+L: Log out   Ctrl+C: Exit"
	if a.model.CtrlCPending {
		hints = "Press Ctrl+C again to exit"
	}
	return tui.StatusBarStyle.Width(max(a.model.Width, 40)).Render(user + "   " + hints)
}

// RenderTabBar renders the navigation bar with active highlighted.
func RenderTabBar(active controller.View) string {
	var rendered []string
	for _, v := range controller.NavViews() {
		if v == active {
			rendered = append(rendered, tui.ActiveTabStyle.Render(v.Label()))
		} else {
			rendered = append(rendered, tui.InactiveTabStyle.Render(v.Label()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
