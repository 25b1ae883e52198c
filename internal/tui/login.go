package tui

import (
	"context"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veterimap/veterimap/internal/session"
	"github.com/veterimap/veterimap/pkg/client"
	"github.com/veterimap/veterimap/pkg/domain"
)

const (
	loginEmail = iota
	loginPassword
)

type loginDoneMsg struct {
	target string
	err    error
}

type loginPage struct {
	deps       deps
	form       form
	submitting bool
	notice     string
	statusMsg  string
}

func newLoginPage(d deps, p params) loginPage {
	m := loginPage{
		deps: d,
		form: newForm(
			formField{label: "email", placeholder: "you@example.com"},
			formField{label: "password", secret: true},
		),
	}
	if email := p["email"]; email != "" {
		m.form = m.form.set(loginEmail, email)
		m.form.focus = loginPassword
	}
	if p["verified"] != "" {
		m.notice = "account verified, log in to finish your profile"
	}
	return m
}

func (m loginPage) Init() tea.Cmd { return nil }

func (m loginPage) editing() bool { return true }

func (m loginPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.statusMsg = loginErrorText(msg.err)
			return m, nil
		}
		return m, navigate(msg.target)

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		if msg.String() == "esc" {
			return m, back()
		}
		if msg.String() == "ctrl+r" {
			return m, navigate("/register")
		}
		m.statusMsg = ""
		var submitted bool
		m.form, submitted = m.form.update(msg)
		if submitted {
			return m.submit()
		}
	}
	return m, nil
}

func (m loginPage) submit() (page, tea.Cmd) {
	req := client.LoginRequest{
		Email:    m.form.value(loginEmail),
		Password: m.form.fields[loginPassword].value,
	}
	if err := validate.Struct(req); err != nil {
		m.statusMsg = validationMessage(err)
		return m, nil
	}
	m.submitting = true
	d := m.deps
	return m, func() tea.Msg {
		ctx := context.Background()
		tok, err := d.client.Login(ctx, req)
		if err != nil {
			return loginDoneMsg{err: err}
		}
		id, err := d.session.Login(ctx, tok)
		if err != nil {
			return loginDoneMsg{err: err}
		}
		return loginDoneMsg{target: postLoginTarget(ctx, d.client, id)}
	}
}

// postLoginTarget sends professionals without a public profile and owners
// without pets to their setup forms, everyone else to their back office.
func postLoginTarget(ctx context.Context, c *client.Client, id *session.Identity) string {
	switch id.Role {
	case domain.RoleProfessional:
		p, err := c.GetProfessionalProfile(ctx)
		if err != nil || p == nil || p.Name == "" {
			return "/vet/profile"
		}
		return "/vet"
	case domain.RolePetOwner:
		pets, err := c.ListMyPets(ctx)
		if err != nil || len(pets) == 0 {
			return "/owner/profile"
		}
		return "/owner"
	default:
		return "/map"
	}
}

func loginErrorText(err error) string {
	if client.IsStatus(err, http.StatusUnauthorized) {
		return "wrong email or password, or the account is not verified yet"
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 && strings.HasPrefix(msg, "client.") {
		msg = msg[i+2:]
	}
	return msg
}

func (m loginPage) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("Welcome back") + "\n")
	b.WriteString(" " + dimStyle.Render("Log in to your Veterimap account") + "\n\n")
	if m.notice != "" {
		b.WriteString(" " + successStyle.Render(m.notice) + "\n\n")
	}
	b.WriteString(m.form.view(!m.submitting))
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("logging in..."))
	case m.statusMsg != "":
		b.WriteString(" " + errorStyle.Render(m.statusMsg))
	}
	b.WriteString("\n\n " + dimStyle.Render("No account yet? ") + helpEntry("ctrl+r", "register"))
	return b.String()
}

func (m loginPage) help() string {
	return helpBar("tab", "next", "enter", "log in", "ctrl+r", "register", "esc", "back")
}
