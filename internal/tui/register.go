package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veterimap/veterimap/pkg/client"
	"github.com/veterimap/veterimap/pkg/domain"
)

const (
	regName = iota
	regEmail
	regPassword
	regRole
	regPlan
)

// Plans a professional can sign up with.
const (
	planEssential = "ESSENTIAL"
	planPremium   = "PREMIUM"
)

type registeredMsg struct {
	err error
}

type registerPage struct {
	deps       deps
	form       form
	submitting bool
	statusMsg  string
}

func newRegisterPage(d deps) registerPage {
	return registerPage{
		deps: d,
		form: newForm(
			formField{label: "name", placeholder: "Full name or clinic"},
			formField{label: "email", placeholder: "you@example.com"},
			formField{label: "password", secret: true, placeholder: "6+ characters"},
			formField{label: "account", options: []string{string(domain.RolePetOwner), string(domain.RoleProfessional)}},
			formField{label: "plan", options: []string{planEssential, planPremium}},
		),
	}
}

func (m registerPage) Init() tea.Cmd { return nil }

func (m registerPage) editing() bool { return true }

func (m registerPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case registeredMsg:
		m.submitting = false
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
			return m, nil
		}
		return m, navigate("/verify")

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		if msg.String() == "esc" {
			return m, back()
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

func (m registerPage) professional() bool {
	return m.form.value(regRole) == string(domain.RoleProfessional)
}

func (m registerPage) submit() (page, tea.Cmd) {
	req := client.RegisterRequest{
		Name:     m.form.value(regName),
		Email:    m.form.value(regEmail),
		Password: m.form.fields[regPassword].value,
		Role:     domain.Role(m.form.value(regRole)),
	}
	if m.professional() {
		req.SelectedPlan = m.form.value(regPlan)
		req.HasTrial = req.SelectedPlan == planPremium
	}
	if err := validate.Struct(req); err != nil {
		m.statusMsg = validationMessage(err)
		return m, nil
	}
	m.submitting = true
	d := m.deps
	return m, func() tea.Msg {
		if err := d.client.Register(context.Background(), req); err != nil {
			return registeredMsg{err: err}
		}
		return registeredMsg{err: d.session.SetPending(req.Email, req.Role)}
	}
}

func (m registerPage) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("Create your account") + "\n")
	b.WriteString(" " + dimStyle.Render("We will email you a 6-digit code to verify it.") + "\n\n")
	b.WriteString(m.form.view(!m.submitting))
	if m.professional() {
		b.WriteString(" " + metaStyle.Render("PREMIUM includes a 2 month trial") + "\n")
	} else {
		b.WriteString(" " + metaStyle.Render("plans only apply to professionals") + "\n")
	}
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("creating account..."))
	case m.statusMsg != "":
		b.WriteString(" " + errorStyle.Render(m.statusMsg))
	}
	return b.String()
}

func (m registerPage) help() string {
	return helpBar("tab", "next", "←/→", "choose", "enter", "submit", "esc", "back")
}

type verifiedMsg struct {
	err error
}

// verifyPage confirms the account started on the register page.
type verifyPage struct {
	deps       deps
	email      string
	role       domain.Role
	code       string
	submitting bool
	statusMsg  string
}

func newVerifyPage(d deps) verifyPage {
	email, role := d.session.Pending()
	return verifyPage{deps: d, email: email, role: role}
}

func (m verifyPage) Init() tea.Cmd { return nil }

func (m verifyPage) editing() bool { return m.email != "" }

func (m verifyPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case verifiedMsg:
		m.submitting = false
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
			return m, nil
		}
		m.deps.session.ClearPending()
		return m, navigate(withQuery("/login", "email", m.email, "verified", "1"))

	case tea.KeyMsg:
		if m.email == "" {
			if msg.String() == "r" {
				return m, navigate("/register")
			}
			return m, nil
		}
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			m.deps.session.ClearPending()
			return m, navigate("/register")
		case "enter":
			return m.submit()
		default:
			k := msg.String()
			if k == "backspace" || (len(k) == 1 && k[0] >= '0' && k[0] <= '9' && len(m.code) < 6) {
				m.code = editRune(m.code, k)
			}
			m.statusMsg = ""
		}
	}
	return m, nil
}

func (m verifyPage) submit() (page, tea.Cmd) {
	if len(m.code) < 6 {
		m.statusMsg = "enter the full 6-digit code"
		return m, nil
	}
	m.submitting = true
	c, email, code := m.deps.client, m.email, m.code
	return m, func() tea.Msg {
		return verifiedMsg{err: c.Verify(context.Background(), email, code)}
	}
}

func (m verifyPage) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("Verify your account") + "\n")
	if m.email == "" {
		b.WriteString(" " + dimStyle.Render("There is no registration waiting for a code.") + "\n\n")
		b.WriteString(" " + helpEntry("r", "create an account"))
		return b.String()
	}
	b.WriteString(" " + dimStyle.Render("We sent a code to ") + normalStyle.Render(m.email) + " " + RoleBadge(m.role) + "\n\n")

	digits := m.code + strings.Repeat("_", 6-len(m.code))
	b.WriteString("   " + inputPromptStyle.Render(strings.Join(strings.Split(digits, ""), " ")) + "\n\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("verifying..."))
	case m.statusMsg != "":
		b.WriteString(" " + errorStyle.Render(m.statusMsg))
	}
	return b.String()
}

func (m verifyPage) help() string {
	if m.email == "" {
		return helpBar("r", "register")
	}
	return helpBar("0-9", "code", "enter", "verify", "esc", "cancel registration")
}
