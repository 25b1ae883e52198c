package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veterimap/veterimap/pkg/domain"
)

const (
	searchCity = iota
	searchType
	searchSpecialty
)

const anyType = "ANY"

// landingPage is the public entry point: a city search plus links to the
// account flows.
type landingPage struct {
	deps      deps
	form      form
	searching bool
	statusMsg string
}

func newLandingPage(d deps) landingPage {
	return landingPage{
		deps: d,
		form: newForm(
			formField{label: "city", placeholder: "Madrid"},
			formField{label: "type", options: []string{anyType, domain.EntityIndividual, domain.EntityClinic}},
			formField{label: "specialty", placeholder: "only for individual vets"},
		),
	}
}

func (m landingPage) Init() tea.Cmd { return nil }

func (m landingPage) editing() bool { return m.searching }

func (m landingPage) Update(msg tea.Msg) (page, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.searching {
		if key.String() == "esc" {
			m.searching = false
			return m, nil
		}
		var submitted bool
		m.form, submitted = m.form.update(key)
		if submitted {
			return m.submit()
		}
		return m, nil
	}

	m.statusMsg = ""
	switch key.String() {
	case "/", "enter", "s":
		m.searching = true
	case "l":
		return m, navigate("/login")
	case "r":
		return m, navigate("/register")
	case "p":
		return m, navigate("/plans")
	case "d":
		if id := m.deps.session.Identity(); id != nil {
			return m, navigate(homeFor(id.Role))
		}
		m.statusMsg = "log in to open your dashboard"
	}
	return m, nil
}

func (m landingPage) submit() (page, tea.Cmd) {
	city := m.form.value(searchCity)
	if city == "" {
		m.statusMsg = "city is required"
		return m, nil
	}
	typ := m.form.value(searchType)
	if typ == anyType {
		typ = ""
	}
	specialty := ""
	if typ == domain.EntityIndividual {
		specialty = m.form.value(searchSpecialty)
	}
	m.searching = false
	return m, navigate(withQuery("/map", "city", city, "type", typ, "specialty", specialty))
}

func (m landingPage) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("Find a vet near you") + "\n")
	b.WriteString(" " + dimStyle.Render("Individual vets and clinics, with their prices and opening hours.") + "\n\n")
	b.WriteString(m.form.view(m.searching))
	b.WriteString("\n")
	if m.statusMsg != "" {
		b.WriteString(" " + errorStyle.Render(m.statusMsg) + "\n")
	}

	b.WriteString("\n " + sectionHeaderStyle.Render("── ACCOUNT ──") + "\n")
	if id := m.deps.session.Identity(); id != nil {
		b.WriteString(" " + normalStyle.Render("Logged in as "+orDash(id.Email)) + " " + RoleBadge(id.Role) + "\n")
		b.WriteString(" " + helpEntry("d", "dashboard") + "\n")
	} else {
		b.WriteString(" " + helpEntry("l", "log in") + "  " + helpEntry("r", "create account") + "\n")
	}
	b.WriteString(" " + helpEntry("p", "plans for professionals") + "\n")
	return b.String()
}

func (m landingPage) help() string {
	if m.searching {
		return helpBar("tab", "next", "←/→", "type", "enter", "search", "esc", "done")
	}
	return helpBar("/", "search", "l", "login", "r", "register", "p", "plans")
}
