package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veterimap/veterimap/pkg/client"
	"github.com/veterimap/veterimap/pkg/domain"
)

type petsMsg struct {
	pets []domain.Pet
	err  error
}

func loadPetsCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		pets, err := c.ListMyPets(context.Background())
		return petsMsg{pets: pets, err: err}
	}
}

// ownerHomePage is the pet owner's dashboard.
type ownerHomePage struct {
	deps       deps
	account    *client.AccountProfile
	pets       []domain.Pet
	petsLoaded bool
	apps       []domain.Appointment
	appsLoaded bool
	inbox      notificationsPanel
	err        string
}

func newOwnerHomePage(d deps) ownerHomePage {
	return ownerHomePage{deps: d}
}

func (m ownerHomePage) Init() tea.Cmd {
	c := m.deps.client
	return tea.Batch(loadAccountCmd(c), loadPetsCmd(c), loadAppointmentsCmd(c, zeroDay), loadNotificationsCmd(c))
}

func (m ownerHomePage) editing() bool { return false }

func (m ownerHomePage) Update(msg tea.Msg) (page, tea.Cmd) {
	var cmd tea.Cmd
	var handled bool
	if m.inbox, cmd, handled = m.inbox.update(msg); handled {
		return m, cmd
	}

	switch msg := msg.(type) {
	case accountMsg:
		if msg.err != nil {
			m.err, cmd = apiError(msg.err)
			return m, cmd
		}
		m.account = msg.account
		return m, nil

	case petsMsg:
		m.petsLoaded = true
		if msg.err != nil {
			m.err, cmd = apiError(msg.err)
			return m, cmd
		}
		m.pets = msg.pets
		return m, nil

	case appointmentsMsg:
		m.appsLoaded = true
		if msg.err != nil {
			m.err, cmd = apiError(msg.err)
			return m, cmd
		}
		m.apps = msg.apps
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "p":
			return m, navigate("/owner/profile")
		case "e":
			return m, navigate("/owner/pets")
		case "a":
			return m, navigate("/owner/appointments")
		case "s", "/":
			return m, navigate("/")
		case "m":
			if m.inbox.unread() > 0 && !m.inbox.marking {
				m.inbox.marking = true
				return m, markReadCmd(m.deps.client)
			}
		case "r":
			m.err = ""
			return m, m.Init()
		}
	}
	return m, nil
}

func (m ownerHomePage) View() string {
	var b strings.Builder
	name := ""
	if m.account != nil {
		name = m.account.User.Name
	}
	if name == "" {
		if id := m.deps.session.Identity(); id != nil {
			name = id.Name
		}
	}
	greeting := "Hello"
	if name != "" {
		greeting += ", " + name
	}
	b.WriteString("\n " + titleStyle.Render(greeting) + "\n")
	if m.account != nil && !m.account.User.OwnerProfileComplete() {
		b.WriteString(" " + goldStyle.Render("Complete your profile to book appointments.") + " " + helpEntry("p", "profile") + "\n")
	}
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render(m.err) + "\n")
	}

	b.WriteString("\n " + sectionHeaderStyle.Render("── PETS ──") + "\n")
	switch {
	case !m.petsLoaded:
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
	case len(m.pets) == 0:
		b.WriteString(" " + dimStyle.Render("no pets yet") + " " + helpEntry("p", "add one") + "\n")
	default:
		labels := make([]string, len(m.pets))
		for i, p := range m.pets {
			labels[i] = petLabel(p)
		}
		b.WriteString(" " + normalStyle.Render(strings.Join(labels, ", ")) + "\n")
	}

	b.WriteString("\n " + sectionHeaderStyle.Render("── NEXT APPOINTMENTS ──") + "\n")
	upcoming := domain.Upcoming(m.apps, m.deps.now())
	switch {
	case !m.appsLoaded:
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
	case len(upcoming) == 0:
		b.WriteString(" " + dimStyle.Render("nothing booked") + " " + helpEntry("s", "find a vet") + "\n")
	}
	for i, a := range upcoming {
		if i == 3 {
			b.WriteString(" " + metaStyle.Render(fmt.Sprintf("+%d more", len(upcoming)-3)) + "\n")
			break
		}
		b.WriteString(" " + appointmentLine(a, a.PetName, a.ProfessionalName) + "\n")
	}

	b.WriteString("\n" + m.inbox.view(5))
	return b.String()
}

func (m ownerHomePage) help() string {
	return helpBar("s", "search", "a", "appointments", "e", "pets", "p", "profile", "m", "mark read", "r", "reload")
}

// ownerPetsPage lists the owner's pets.
type ownerPetsPage struct {
	deps   deps
	pets   []domain.Pet
	loaded bool
	cursor int
	err    string
}

func newOwnerPetsPage(d deps) ownerPetsPage {
	return ownerPetsPage{deps: d}
}

func (m ownerPetsPage) Init() tea.Cmd { return loadPetsCmd(m.deps.client) }

func (m ownerPetsPage) editing() bool { return false }

func (m ownerPetsPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case petsMsg:
		m.loaded = true
		if msg.err != nil {
			var cmd tea.Cmd
			m.err, cmd = apiError(msg.err)
			return m, cmd
		}
		m.pets = msg.pets
		return m, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "enter":
			if m.cursor < len(m.pets) {
				return m, navigate("/history/" + m.pets[m.cursor].ID.String())
			}
		case "a":
			return m, navigate(withQuery("/owner/profile", "focus", "pet"))
		default:
			m.cursor = moveCursor(m.cursor, len(m.pets), key)
		}
	}
	return m, nil
}

func (m ownerPetsPage) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("My pets") + "\n\n")
	switch {
	case m.err != "":
		b.WriteString(" " + errorStyle.Render(m.err))
		return b.String()
	case !m.loaded:
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	case len(m.pets) == 0:
		b.WriteString(" " + dimStyle.Render("No pets yet.") + " " + helpEntry("a", "add one"))
		return b.String()
	}
	for i, p := range m.pets {
		prefix := "  "
		style := normalStyle
		if i == m.cursor {
			prefix = accentStyle.Render("> ")
			style = selectedStyle
		}
		fmt.Fprintf(&b, "%s%s %s\n", prefix, style.Render(fmt.Sprintf("%-24s", truncStr(petLabel(p), 24))),
			metaStyle.Render(petFacts(p, m.deps.now())))
	}
	return b.String()
}

func (m ownerPetsPage) help() string {
	return helpBar("j/k", "nav", "enter", "history", "a", "add pet", "esc", "back")
}

type ownerCancelMsg struct {
	err error
}

// ownerAppointmentsPage lists the owner's bookings, soonest first.
type ownerAppointmentsPage struct {
	deps      deps
	apps      []domain.Appointment
	loaded    bool
	cursor    int
	busy      bool
	err       string
	statusMsg string
}

func newOwnerAppointmentsPage(d deps) ownerAppointmentsPage {
	return ownerAppointmentsPage{deps: d}
}

func (m ownerAppointmentsPage) Init() tea.Cmd {
	return loadAppointmentsCmd(m.deps.client, zeroDay)
}

func (m ownerAppointmentsPage) editing() bool { return false }

func (m ownerAppointmentsPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case appointmentsMsg:
		m.loaded = true
		if msg.err != nil {
			var cmd tea.Cmd
			m.err, cmd = apiError(msg.err)
			return m, cmd
		}
		m.apps = sortForOwner(msg.apps, m.deps.now())
		return m, nil

	case ownerCancelMsg:
		m.busy = false
		if msg.err != nil {
			var cmd tea.Cmd
			m.statusMsg, cmd = apiError(msg.err)
			return m, cmd
		}
		m.statusMsg = "appointment cancelled"
		return m, m.Init()

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch key := msg.String(); key {
		case "x":
			if m.cursor >= len(m.apps) || !m.apps[m.cursor].Open() {
				return m, nil
			}
			m.busy = true
			c, id := m.deps.client, m.apps[m.cursor].ID
			return m, func() tea.Msg {
				return ownerCancelMsg{err: c.UpdateAppointmentStatus(context.Background(), id, domain.AppointmentCancelled)}
			}
		case "enter":
			if m.cursor < len(m.apps) {
				return m, navigate("/vets/" + m.apps[m.cursor].ProfessionalID.String())
			}
		case "b":
			if m.cursor < len(m.apps) {
				return m, navigate("/book/" + m.apps[m.cursor].ProfessionalID.String())
			}
		default:
			m.cursor = moveCursor(m.cursor, len(m.apps), key)
		}
	}
	return m, nil
}

// sortForOwner puts upcoming open appointments first in date order, then
// the rest newest first.
func sortForOwner(apps []domain.Appointment, now time.Time) []domain.Appointment {
	upcoming := domain.Upcoming(apps, now)
	var past []domain.Appointment
	for _, a := range apps {
		if !(a.Open() && !a.AppointmentDate.Before(now)) {
			past = append(past, a)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].AppointmentDate.Before(upcoming[j].AppointmentDate)
	})
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].AppointmentDate.After(past[j].AppointmentDate)
	})
	return append(upcoming, past...)
}

func (m ownerAppointmentsPage) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("My appointments") + "\n\n")
	switch {
	case m.err != "":
		b.WriteString(" " + errorStyle.Render(m.err))
		return b.String()
	case !m.loaded:
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	case len(m.apps) == 0:
		b.WriteString(" " + dimStyle.Render("No appointments yet.") + " " + helpEntry("esc", "back to search"))
		return b.String()
	}
	for i, a := range m.apps {
		prefix := "  "
		if i == m.cursor {
			prefix = accentStyle.Render("> ")
		}
		b.WriteString(prefix + appointmentLine(a, a.PetName, a.ProfessionalName) + "\n")
		if i == m.cursor && a.Notes != "" {
			b.WriteString("    " + dimStyle.Render(truncStr(a.Notes, 70)) + "\n")
		}
	}
	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString(" " + dimStyle.Render("cancelling..."))
	case m.statusMsg != "":
		b.WriteString(" " + metaStyle.Render(m.statusMsg))
	}
	return b.String()
}

func (m ownerAppointmentsPage) help() string {
	return helpBar("j/k", "nav", "x", "cancel", "enter", "vet", "b", "book again", "esc", "back")
}
