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

// SubmitContactMsg is sent when the user saves a new contact.
type SubmitContactMsg struct {
	Contact api.NewContact
}

// ContactsModel is the view model for the contact list.
type ContactsModel struct {
	loader
	contacts []api.TopContact
	form     Form
	adding   bool
	saving   bool
	result   string
	width    int
}

// NewContactsModel creates the contacts view.
func NewContactsModel(width int) ContactsModel {
	form := NewForm(width, "First name", "Last name", "Phone number")
	form.Placeholder(2, "+1 555 123 4567")
	return ContactsModel{loader: newLoader(), form: form, width: width}
}

// StartLoading shows the spinner until SetContacts is called.
func (m *ContactsModel) StartLoading() tea.Cmd {
	return m.start()
}

// SetContacts replaces the list.
func (m *ContactsModel) SetContacts(list []api.TopContact, err error) {
	m.finish(err)
	if err == nil {
		m.contacts = list
	}
}

// Adding reports whether the add form is open.
func (m ContactsModel) Adding() bool {
	return m.adding
}

// SetAdded records the outcome of saving a contact.
func (m *ContactsModel) SetAdded(err error) {
	m.saving = false
	m.result = flash("Contact added successfully!", err)
	if err == nil {
		m.form.Reset()
		m.adding = false
	}
}

// Update handles messages for the contacts view.
func (m ContactsModel) Update(msg tea.Msg) (ContactsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.form.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.NewItem) && !m.adding:
			m.adding = true
			m.result = ""
			return m, textinput.Blink
		case key.Matches(msg, tui.DefaultKeyMap.Escape) && m.adding:
			m.adding = false
			m.form.Reset()
			return m, nil
		}
		if !m.adding || m.saving {
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
		c := api.NewContact{FirstName: m.form.Value(0), LastName: m.form.Value(1), PhoneNumber: m.form.Value(2)}
		return m, func() tea.Msg { return SubmitContactMsg{Contact: c} }
	}

	cmd := m.update(msg)
	if m.adding {
		var formCmd tea.Cmd
		m.form, formCmd, _ = m.form.Update(msg)
		cmd = tea.Batch(cmd, formCmd)
	}
	return m, cmd
}

// View renders the contacts view.
func (m ContactsModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("\U0001F465 Top Contacts"))
	b.WriteString("\n")
	if s, ok := m.loader.view("contacts"); ok {
		b.WriteString(s)
		b.WriteString("\n")
	} else {
		b.WriteString(RenderContacts(m.contacts))
	}
	b.WriteString("\n")

	if m.adding {
		b.WriteString(tui.TitleStyle.Render("Add Contact"))
		b.WriteString("\n")
		b.WriteString(m.form.View())
		if m.saving {
			b.WriteString(tui.DimStyle.Render("Saving..."))
			b.WriteString("\n")
		}
	}
	if m.result != "" {
		b.WriteString(m.result)
		b.WriteString("\n")
	}

	hint := "Ctrl+A: Add contact   Ctrl+R: Reload"
	if m.adding {
		hint = "Enter: Next/Save   Esc: Cancel"
	}
	b.WriteString(tui.DimStyle.Render(hint))
	return b.String()
}

// RenderContacts renders contacts ranked by interaction count.
func RenderContacts(list []api.TopContact) string {
	if len(list) == 0 {
		return "  \U0001F465 No interactions yet\n" +
			tui.DimStyle.Render("  Add contacts and start interacting to see your top contacts here") + "\n"
	}

	var b strings.Builder
	for i, c := range list {
		name := c.ContactName
		if name == "" {
			name = c.ContactPhone
		}
		user := ""
		if c.IsRegistered {
			user = "  " + tui.SuccessStyle.Render("✓ User")
		}
		fmt.Fprintf(&b, "  #%d %s\n     \U0001F4F1 %s  \U0001F4AC %d interactions%s\n",
			i+1, name, c.ContactPhone, c.InteractionCount, user)
	}
	return b.String()
}
