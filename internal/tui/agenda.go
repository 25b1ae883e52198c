package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veterimap/veterimap/pkg/domain"
)

type agendaMsg struct {
	day  time.Time
	apps []domain.Appointment
	err  error
}

type agendaActionMsg struct {
	verb string
	err  error
}

const (
	rescheduleDate = iota
	rescheduleTime
	rescheduleNotes
)

// agendaPage shows one day of the professional's appointments.
type agendaPage struct {
	deps      deps
	day       time.Time
	apps      []domain.Appointment
	loaded    bool
	cursor    int
	resched   *form
	busy      bool
	err       string
	statusMsg string
}

func newAgendaPage(d deps) agendaPage {
	return agendaPage{deps: d, day: startOfDay(d.now())}
}

func startOfDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}

func (m agendaPage) Init() tea.Cmd {
	c, day := m.deps.client, m.day
	return func() tea.Msg {
		apps, err := c.ListMyAppointments(context.Background(), day)
		return agendaMsg{day: day, apps: apps, err: err}
	}
}

func (m agendaPage) editing() bool { return m.resched != nil }

func (m agendaPage) selected() (domain.Appointment, bool) {
	if m.cursor < len(m.apps) {
		return m.apps[m.cursor], true
	}
	return domain.Appointment{}, false
}

func (m agendaPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case agendaMsg:
		if !msg.day.Equal(m.day) {
			return m, nil
		}
		m.loaded = true
		if msg.err != nil {
			var cmd tea.Cmd
			m.err, cmd = apiError(msg.err)
			return m, cmd
		}
		m.err = ""
		m.apps = msg.apps
		sort.SliceStable(m.apps, func(i, j int) bool {
			return m.apps[i].AppointmentDate.Before(m.apps[j].AppointmentDate)
		})
		if m.cursor >= len(m.apps) {
			m.cursor = max(len(m.apps)-1, 0)
		}
		return m, nil

	case agendaActionMsg:
		m.busy = false
		if msg.err != nil {
			var cmd tea.Cmd
			m.statusMsg, cmd = apiError(msg.err)
			return m, cmd
		}
		m.statusMsg = "appointment " + msg.verb
		return m, m.Init()

	case tea.KeyMsg:
		if m.resched != nil {
			return m.updateReschedule(msg)
		}
		if m.busy {
			return m, nil
		}
		switch key := msg.String(); key {
		case "h", "left":
			return m.moveDay(-1)
		case "l", "right":
			return m.moveDay(1)
		case "t":
			m.day = startOfDay(m.deps.now())
			m.loaded, m.apps, m.cursor = false, nil, 0
			return m, m.Init()
		case "c":
			return m.setStatus(domain.AppointmentConfirmed, "confirmed")
		case "x":
			return m.setStatus(domain.AppointmentCancelled, "cancelled")
		case "d":
			return m.setStatus(domain.AppointmentCompleted, "completed")
		case "n":
			return m.setStatus(domain.AppointmentNoShow, "marked as no-show")
		case "r":
			a, ok := m.selected()
			if !ok || !a.Open() {
				return m, nil
			}
			local := a.AppointmentDate.Local()
			f := newForm(
				formField{label: "date", value: local.Format("2006-01-02"), placeholder: "YYYY-MM-DD"},
				formField{label: "time", value: local.Format("15:04"), placeholder: "HH:MM"},
				formField{label: "notes", value: a.Notes, placeholder: "message for the owner"},
			)
			m.resched = &f
			m.statusMsg = ""
		case "enter":
			if a, ok := m.selected(); ok {
				return m, navigate("/history/" + a.PetID.String())
			}
		default:
			m.cursor = moveCursor(m.cursor, len(m.apps), key)
		}
	}
	return m, nil
}

func (m agendaPage) moveDay(delta int) (page, tea.Cmd) {
	m.day = m.day.AddDate(0, 0, delta)
	m.loaded, m.apps, m.cursor, m.statusMsg = false, nil, 0, ""
	return m, m.Init()
}

func (m agendaPage) setStatus(status domain.AppointmentStatus, verb string) (page, tea.Cmd) {
	a, ok := m.selected()
	if !ok || a.Status == status {
		return m, nil
	}
	if !a.Open() {
		m.statusMsg = "appointment is already " + strings.ToLower(string(a.Status))
		return m, nil
	}
	m.busy = true
	c, id := m.deps.client, a.ID
	return m, func() tea.Msg {
		return agendaActionMsg{verb: verb, err: c.UpdateAppointmentStatus(context.Background(), id, status)}
	}
}

func (m agendaPage) updateReschedule(msg tea.KeyMsg) (page, tea.Cmd) {
	if msg.String() == "esc" {
		m.resched = nil
		return m, nil
	}
	f, submitted := m.resched.update(msg)
	m.resched = &f
	if !submitted {
		return m, nil
	}

	when, err := time.ParseInLocation(bookLayout, f.value(rescheduleDate)+" "+f.value(rescheduleTime), time.Local)
	if err != nil {
		m.statusMsg = "date must be YYYY-MM-DD and time HH:MM"
		return m, nil
	}
	if !when.After(m.deps.now()) {
		m.statusMsg = "pick a time in the future"
		return m, nil
	}
	a, ok := m.selected()
	if !ok {
		m.resched = nil
		return m, nil
	}
	m.resched = nil
	m.busy = true
	c, id, notes := m.deps.client, a.ID, f.value(rescheduleNotes)
	return m, func() tea.Msg {
		return agendaActionMsg{verb: "rescheduled", err: c.RescheduleAppointment(context.Background(), id, when, notes)}
	}
}

func (m agendaPage) View() string {
	var b strings.Builder
	label := m.day.Format("Monday 2 January 2006")
	if m.day.Equal(startOfDay(m.deps.now())) {
		label += "  " + accentStyle.Render("today")
	}
	b.WriteString("\n " + titleStyle.Render("Agenda") + "  " + normalStyle.Render("‹ "+label+" ›") + "\n\n")

	switch {
	case m.err != "":
		b.WriteString(" " + errorStyle.Render(m.err))
		return b.String()
	case !m.loaded:
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	case len(m.apps) == 0:
		b.WriteString(" " + dimStyle.Render("nothing booked for this day") + "\n")
	}

	for i, a := range m.apps {
		prefix := "  "
		if i == m.cursor {
			prefix = accentStyle.Render("> ")
		}
		hour := a.AppointmentDate.Local().Format("15:04")
		status := StatusStyle(a.Status).Render(fmt.Sprintf("%-11s", strings.ToLower(string(a.Status))))
		who := strings.Join(nonEmpty(a.PetName, a.OwnerName), " · ")
		style := normalStyle
		if i == m.cursor {
			style = selectedStyle
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", prefix, metaStyle.Render(hour), status, style.Render(who))
		if i == m.cursor && a.Notes != "" {
			b.WriteString("        " + dimStyle.Render(truncStr(a.Notes, 70)) + "\n")
		}
	}

	if m.resched != nil {
		b.WriteString("\n " + sectionHeaderStyle.Render("── RESCHEDULE ──") + "\n")
		b.WriteString(m.resched.view(true))
	}
	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString(" " + dimStyle.Render("saving..."))
	case m.statusMsg != "":
		b.WriteString(" " + metaStyle.Render(m.statusMsg))
	}
	return b.String()
}

func (m agendaPage) help() string {
	if m.resched != nil {
		return helpBar("tab", "next", "enter", "save", "esc", "cancel")
	}
	return helpBar("←/→", "day", "t", "today", "c", "confirm", "x", "cancel", "d", "done", "n", "no-show", "r", "reschedule", "enter", "history")
}

func nonEmpty(ss ...string) []string {
	var out []string
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
