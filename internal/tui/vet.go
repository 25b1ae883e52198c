package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veterimap/veterimap/pkg/client"
	"github.com/veterimap/veterimap/pkg/domain"
)

type accountMsg struct {
	account *client.AccountProfile
	err     error
}

type appointmentsMsg struct {
	apps []domain.Appointment
	err  error
}

// zeroDay asks for appointments on every day.
var zeroDay time.Time

func loadAccountCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		a, err := c.GetAccountProfile(context.Background())
		return accountMsg{account: a, err: err}
	}
}

func loadAppointmentsCmd(c *client.Client, day time.Time) tea.Cmd {
	return func() tea.Msg {
		apps, err := c.ListMyAppointments(context.Background(), day)
		return appointmentsMsg{apps: apps, err: err}
	}
}

// vetHomePage is the professional back office.
type vetHomePage struct {
	deps    deps
	account *client.AccountProfile
	apps    []domain.Appointment
	loaded  bool
	inbox   notificationsPanel
	err     string
}

func newVetHomePage(d deps) vetHomePage {
	return vetHomePage{deps: d}
}

func (m vetHomePage) Init() tea.Cmd {
	c := m.deps.client
	return tea.Batch(loadAccountCmd(c), loadAppointmentsCmd(c, zeroDay), loadNotificationsCmd(c))
}

func (m vetHomePage) editing() bool { return false }

func (m vetHomePage) Update(msg tea.Msg) (page, tea.Cmd) {
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

	case appointmentsMsg:
		m.loaded = true
		if msg.err != nil {
			m.err, cmd = apiError(msg.err)
			return m, cmd
		}
		m.apps = msg.apps
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "a":
			return m, navigate("/vet/agenda")
		case "c":
			return m, navigate("/vet/clients")
		case "p":
			return m, navigate("/vet/profile")
		case "u":
			return m, navigate("/plans")
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

func (m vetHomePage) View() string {
	var b strings.Builder
	id := m.deps.session.Identity()
	name := "your practice"
	if m.account != nil && m.account.Professional != nil && m.account.Professional.Name != "" {
		name = m.account.Professional.Name
	} else if id != nil && id.Name != "" {
		name = id.Name
	}
	b.WriteString("\n " + titleStyle.Render(name) + "\n")

	if m.account != nil {
		b.WriteString(" " + subscriptionLine(m.account, m.deps.now()) + "\n")
	}
	if id != nil && !id.HasProfile {
		b.WriteString(" " + goldStyle.Render("Your public profile is incomplete.") + " " + helpEntry("p", "complete it") + "\n")
	}
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render(m.err) + "\n")
	}

	b.WriteString("\n " + sectionHeaderStyle.Render("── UPCOMING ──") + "\n")
	upcoming := domain.Upcoming(m.apps, m.deps.now())
	switch {
	case !m.loaded:
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
	case len(upcoming) == 0:
		b.WriteString(" " + dimStyle.Render("no upcoming appointments") + "\n")
	}
	pending := 0
	for i, a := range upcoming {
		if a.Status == domain.AppointmentPending {
			pending++
		}
		if i < 5 {
			b.WriteString(" " + appointmentLine(a, a.PetName, a.OwnerName) + "\n")
		}
	}
	if pending > 0 {
		b.WriteString(" " + goldStyle.Render(fmt.Sprintf("%d waiting for confirmation", pending)) + " " + helpEntry("a", "agenda") + "\n")
	}

	b.WriteString("\n" + m.inbox.view(5))
	return b.String()
}

func (m vetHomePage) help() string {
	return helpBar("a", "agenda", "c", "clients", "p", "profile", "u", "plans", "m", "mark read", "r", "reload")
}

// subscriptionLine summarizes the plan and access level of an account.
func subscriptionLine(a *client.AccountProfile, now time.Time) string {
	status := a.SubscriptionStatus
	if status == "" && a.Professional != nil {
		status = a.Professional.SubscriptionStatus
	}
	parts := []string{accentStyle.Render("plan " + strings.ToLower(orDash(status)))}
	parts = append(parts, metaStyle.Render(fmt.Sprintf("access level %d", a.AccessLevel)))
	if a.TrialEndsAt != nil && a.TrialEndsAt.After(now) {
		days := int(a.TrialEndsAt.Sub(now).Hours() / 24)
		parts = append(parts, goldStyle.Render(fmt.Sprintf("trial ends in %d days", days)))
	}
	return strings.Join(parts, metaStyle.Render(" · "))
}

// appointmentLine renders one appointment row.
func appointmentLine(a domain.Appointment, who ...string) string {
	names := nonEmpty(who...)
	status := StatusStyle(a.Status).Render(fmt.Sprintf("%-11s", strings.ToLower(string(a.Status))))
	return fmt.Sprintf("%s %s %s", metaStyle.Render(formatAppointment(a.AppointmentDate)), status,
		normalStyle.Render(strings.Join(names, " · ")))
}

type clientsMsg struct {
	owners []domain.User
	err    error
}

type ownerPetsMsg struct {
	ownerID string
	pets    []domain.Pet
	err     error
}

// vetClientsPage lists the owners who booked with the professional and
// drills into their pets.
type vetClientsPage struct {
	deps    deps
	owners  []domain.User
	loaded  bool
	cursor  int
	owner   *domain.User
	pets    []domain.Pet
	petsOK  bool
	petCur  int
	err     string
	petsErr string
}

func newVetClientsPage(d deps) vetClientsPage {
	return vetClientsPage{deps: d}
}

func (m vetClientsPage) Init() tea.Cmd {
	c := m.deps.client
	return func() tea.Msg {
		owners, err := c.ListMyClients(context.Background())
		return clientsMsg{owners: owners, err: err}
	}
}

func (m vetClientsPage) editing() bool { return false }

func (m vetClientsPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case clientsMsg:
		m.loaded = true
		if msg.err != nil {
			var cmd tea.Cmd
			m.err, cmd = apiError(msg.err)
			return m, cmd
		}
		m.owners = msg.owners
		return m, nil

	case ownerPetsMsg:
		if m.owner == nil || m.owner.ID.String() != msg.ownerID {
			return m, nil
		}
		m.petsOK = true
		if msg.err != nil {
			var cmd tea.Cmd
			m.petsErr, cmd = apiError(msg.err)
			return m, cmd
		}
		m.pets = msg.pets
		return m, nil

	case tea.KeyMsg:
		if m.owner != nil {
			return m.updatePets(msg)
		}
		switch msg.String() {
		case "enter", "l", "right":
			if m.cursor < len(m.owners) {
				owner := m.owners[m.cursor]
				m.owner = &owner
				m.pets, m.petsOK, m.petCur, m.petsErr = nil, false, 0, ""
				c, id := m.deps.client, owner.ID.String()
				return m, func() tea.Msg {
					pets, err := c.ListOwnerPets(context.Background(), id)
					return ownerPetsMsg{ownerID: id, pets: pets, err: err}
				}
			}
		default:
			m.cursor = moveCursor(m.cursor, len(m.owners), msg.String())
		}
	}
	return m, nil
}

func (m vetClientsPage) updatePets(msg tea.KeyMsg) (page, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.owner = nil
	case "enter", "l", "right":
		if m.petCur < len(m.pets) {
			return m, navigate("/history/" + m.pets[m.petCur].ID.String())
		}
	default:
		m.petCur = moveCursor(m.petCur, len(m.pets), msg.String())
	}
	return m, nil
}

func (m vetClientsPage) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("Clients") + "\n\n")
	switch {
	case m.err != "":
		b.WriteString(" " + errorStyle.Render(m.err))
		return b.String()
	case !m.loaded:
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	case len(m.owners) == 0:
		b.WriteString(" " + dimStyle.Render("No clients yet. They appear after their first booking."))
		return b.String()
	}

	for i, o := range m.owners {
		prefix := "  "
		style := normalStyle
		if i == m.cursor {
			prefix = accentStyle.Render("> ")
			style = selectedStyle
		}
		fmt.Fprintf(&b, "%s%s %s\n", prefix, style.Render(fmt.Sprintf("%-24s", truncStr(orDash(o.Name), 24))),
			dimStyle.Render(strings.TrimSpace(o.Email+"  "+o.Phone)))

		if m.owner == nil || m.owner.ID != o.ID {
			continue
		}
		switch {
		case m.petsErr != "":
			b.WriteString("     " + errorStyle.Render(m.petsErr) + "\n")
		case !m.petsOK:
			b.WriteString("     " + dimStyle.Render("loading pets...") + "\n")
		case len(m.pets) == 0:
			b.WriteString("     " + dimStyle.Render("no pets registered") + "\n")
		}
		for j, p := range m.pets {
			pp := "     "
			ps := dimStyle
			if j == m.petCur {
				pp = "   " + accentStyle.Render("› ")
				ps = selectedStyle
			}
			fmt.Fprintf(&b, "%s%s %s\n", pp, ps.Render(petLabel(p)), metaStyle.Render(orDash(p.Breed)))
		}
	}
	return b.String()
}

func (m vetClientsPage) help() string {
	if m.owner != nil {
		return helpBar("j/k", "pets", "enter", "history", "h", "clients")
	}
	return helpBar("j/k", "nav", "enter", "pets")
}
