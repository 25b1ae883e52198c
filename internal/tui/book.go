package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/veterimap/veterimap/pkg/client"
	"github.com/veterimap/veterimap/pkg/domain"
)

const (
	bookPet = iota
	bookDate
	bookTime
	bookNotes
)

const bookLayout = "2006-01-02 15:04"

type bookPetsMsg struct {
	pets []domain.Pet
	err  error
}

type bookedMsg struct {
	app *domain.Appointment
	err error
}

// bookPage books an appointment with a professional for one of the owner's pets.
type bookPage struct {
	deps       deps
	id         string
	detail     *domain.ProfileDetail
	pets       []domain.Pet
	petsLoaded bool
	form       form
	submitting bool
	err        string
	statusMsg  string
}

func newBookPage(d deps, id string) bookPage {
	return bookPage{deps: d, id: id, form: bookForm(nil, d.now())}
}

func bookForm(pets []domain.Pet, now time.Time) form {
	labels := make([]string, len(pets))
	for i, p := range pets {
		labels[i] = petLabel(p)
	}
	if len(labels) == 0 {
		labels = []string{"-"}
	}
	tomorrow := now.AddDate(0, 0, 1)
	return newForm(
		formField{label: "pet", options: labels},
		formField{label: "date", value: tomorrow.Format("2006-01-02"), placeholder: "YYYY-MM-DD"},
		formField{label: "time", value: "10:00", placeholder: "HH:MM"},
		formField{label: "notes", placeholder: "reason for the visit"},
	)
}

func petLabel(p domain.Pet) string {
	if p.Species == "" {
		return p.Name
	}
	return p.Name + " (" + strings.ToLower(p.Species) + ")"
}

func (m bookPage) Init() tea.Cmd {
	c, id := m.deps.client, m.id
	return tea.Batch(
		func() tea.Msg {
			d, err := c.GetProfileDetail(context.Background(), id)
			return vetDetailMsg{detail: d, err: err}
		},
		func() tea.Msg {
			pets, err := c.ListMyPets(context.Background())
			return bookPetsMsg{pets: pets, err: err}
		},
	)
}

func (m bookPage) editing() bool { return len(m.pets) > 0 }

func (m bookPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case vetDetailMsg:
		if msg.err != nil {
			var cmd tea.Cmd
			m.err, cmd = apiError(msg.err)
			return m, cmd
		}
		m.detail = msg.detail
		return m, nil

	case bookPetsMsg:
		m.petsLoaded = true
		if msg.err != nil {
			var cmd tea.Cmd
			m.err, cmd = apiError(msg.err)
			return m, cmd
		}
		m.pets = msg.pets
		m.form = bookForm(m.pets, m.deps.now())
		return m, nil

	case bookedMsg:
		m.submitting = false
		if msg.err != nil {
			var cmd tea.Cmd
			m.statusMsg, cmd = apiError(msg.err)
			return m, cmd
		}
		return m, navigate("/owner/appointments")

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		if len(m.pets) == 0 {
			if msg.String() == "a" {
				return m, navigate(withQuery("/owner/profile", "focus", "pet"))
			}
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

func (m bookPage) submit() (page, tea.Cmd) {
	profID, err := uuid.Parse(m.id)
	if err != nil {
		m.statusMsg = "unknown professional"
		return m, nil
	}
	petIdx := -1
	for i, p := range m.pets {
		if petLabel(p) == m.form.value(bookPet) {
			petIdx = i
			break
		}
	}
	if petIdx < 0 {
		m.statusMsg = "choose a pet"
		return m, nil
	}
	when, err := time.ParseInLocation(bookLayout, m.form.value(bookDate)+" "+m.form.value(bookTime), time.Local)
	if err != nil {
		m.statusMsg = "date must be YYYY-MM-DD and time HH:MM"
		return m, nil
	}
	if !when.After(m.deps.now()) {
		m.statusMsg = "pick a time in the future"
		return m, nil
	}

	req := client.CreateAppointmentRequest{
		ProfessionalID:  profID,
		PetID:           m.pets[petIdx].ID,
		AppointmentDate: when,
		Notes:           m.form.value(bookNotes),
	}
	if err := validate.Struct(req); err != nil {
		m.statusMsg = validationMessage(err)
		return m, nil
	}
	m.submitting = true
	c := m.deps.client
	return m, func() tea.Msg {
		app, err := c.CreateAppointment(context.Background(), req)
		return bookedMsg{app: app, err: err}
	}
}

func (m bookPage) View() string {
	var b strings.Builder
	name := "professional"
	if m.detail != nil {
		name = m.detail.Name
	}
	b.WriteString("\n " + titleStyle.Render("Book with "+name) + "\n")
	if m.detail != nil {
		if addr, ok := m.detail.ProfileData.MainAddress(); ok {
			b.WriteString(" " + dimStyle.Render(addr.FullAddress+", "+addr.City) + "\n")
		}
	}
	b.WriteString("\n")

	switch {
	case m.err != "":
		b.WriteString(" " + errorStyle.Render("booking error: "+m.err))
		return b.String()
	case !m.petsLoaded:
		b.WriteString(" " + dimStyle.Render("loading your pets..."))
		return b.String()
	case len(m.pets) == 0:
		b.WriteString(" " + normalStyle.Render("Add a pet before booking.") + "\n\n")
		b.WriteString(" " + helpEntry("a", "add a pet"))
		return b.String()
	}

	b.WriteString(m.form.view(!m.submitting))
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("booking..."))
	case m.statusMsg != "":
		b.WriteString(" " + errorStyle.Render(m.statusMsg))
	default:
		b.WriteString(" " + metaStyle.Render(fmt.Sprintf("times are local (%s)", time.Local.String())))
	}
	return b.String()
}

func (m bookPage) help() string {
	if len(m.pets) == 0 {
		return helpBar("a", "add pet")
	}
	return helpBar("tab", "next", "←/→", "pet", "enter", "book", "esc", "back")
}
