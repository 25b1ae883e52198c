package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/veterimap/veterimap/pkg/client"
	"github.com/veterimap/veterimap/pkg/domain"
)

const (
	entryDiagnosis = iota
	entryTreatment
	entryNotes
)

type petMsg struct {
	pet *domain.Pet
	err error
}

type historyMsg struct {
	entries []domain.MedicalHistory
	err     error
}

type entrySavedMsg struct {
	err error
}

// historyPage shows a pet's medical record. Professionals can append to it.
type historyPage struct {
	deps       deps
	petID      string
	pet        *domain.Pet
	entries    []domain.MedicalHistory
	loaded     bool
	cursor     int
	entry      *form
	submitting bool
	err        string
	statusMsg  string
}

func newHistoryPage(d deps, petID string) historyPage {
	return historyPage{deps: d, petID: petID}
}

func (m historyPage) Init() tea.Cmd {
	c, id := m.deps.client, m.petID
	return tea.Batch(
		func() tea.Msg {
			p, err := c.GetPet(context.Background(), id)
			return petMsg{pet: p, err: err}
		},
		loadHistoryCmd(c, id),
	)
}

func loadHistoryCmd(c *client.Client, petID string) tea.Cmd {
	return func() tea.Msg {
		hs, err := c.GetPetHistory(context.Background(), petID)
		return historyMsg{entries: hs, err: err}
	}
}

func (m historyPage) editing() bool { return m.entry != nil }

func (m historyPage) canWrite() bool {
	return m.deps.session.Identity().HasRole(domain.RoleProfessional)
}

func (m historyPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case petMsg:
		if msg.err != nil {
			var cmd tea.Cmd
			m.err, cmd = apiError(msg.err)
			return m, cmd
		}
		m.pet = msg.pet
		return m, nil

	case historyMsg:
		m.loaded = true
		if msg.err != nil {
			var cmd tea.Cmd
			m.err, cmd = apiError(msg.err)
			return m, cmd
		}
		m.entries = msg.entries
		sort.SliceStable(m.entries, func(i, j int) bool {
			return m.entries[i].CreatedAt.After(m.entries[j].CreatedAt)
		})
		return m, nil

	case entrySavedMsg:
		m.submitting = false
		if msg.err != nil {
			var cmd tea.Cmd
			m.statusMsg, cmd = apiError(msg.err)
			return m, cmd
		}
		m.entry = nil
		m.statusMsg = "entry added"
		return m, loadHistoryCmd(m.deps.client, m.petID)

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		if m.entry != nil {
			return m.updateEntry(msg)
		}
		switch key := msg.String(); key {
		case "n":
			if m.canWrite() {
				f := newForm(
					formField{label: "diagnosis", placeholder: "what you found"},
					formField{label: "treatment", placeholder: "what was prescribed"},
					formField{label: "internal notes", placeholder: "only visible to you"},
				)
				m.entry = &f
				m.statusMsg = ""
			}
		case "r":
			m.loaded = false
			return m, loadHistoryCmd(m.deps.client, m.petID)
		default:
			m.cursor = moveCursor(m.cursor, len(m.entries), key)
		}
	}
	return m, nil
}

func (m historyPage) updateEntry(msg tea.KeyMsg) (page, tea.Cmd) {
	if msg.String() == "esc" {
		m.entry = nil
		return m, nil
	}
	f, submitted := m.entry.update(msg)
	m.entry = &f
	if !submitted {
		return m, nil
	}
	petID, err := uuid.Parse(m.petID)
	if err != nil {
		m.statusMsg = "unknown pet"
		return m, nil
	}
	req := client.CreateMedicalHistoryRequest{
		PetID:         petID,
		Diagnosis:     f.value(entryDiagnosis),
		Treatment:     f.value(entryTreatment),
		InternalNotes: f.value(entryNotes),
	}
	if err := validate.Struct(req); err != nil {
		m.statusMsg = validationMessage(err)
		return m, nil
	}
	m.submitting = true
	c := m.deps.client
	return m, func() tea.Msg {
		_, err := c.CreateMedicalHistory(context.Background(), req)
		return entrySavedMsg{err: err}
	}
}

func (m historyPage) View() string {
	var b strings.Builder
	title := "Medical history"
	if m.pet != nil {
		title += " · " + m.pet.Name
	}
	b.WriteString("\n " + titleStyle.Render(title) + "\n")
	if m.pet != nil {
		b.WriteString(" " + dimStyle.Render(petFacts(*m.pet, m.deps.now())) + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.err != "":
		b.WriteString(" " + errorStyle.Render(m.err))
		return b.String()
	case !m.loaded:
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	case len(m.entries) == 0:
		b.WriteString(" " + dimStyle.Render("no entries yet") + "\n")
	}

	for i, e := range m.entries {
		prefix := "  "
		style := normalStyle
		if i == m.cursor {
			prefix = accentStyle.Render("> ")
			style = selectedStyle
		}
		fmt.Fprintf(&b, "%s%s %s\n", prefix, metaStyle.Render(e.CreatedAt.Local().Format("2006-01-02")), style.Render(e.Diagnosis))
		if i == m.cursor {
			b.WriteString("    " + dimStyle.Render("treatment: ") + normalStyle.Render(e.Treatment) + "\n")
			if e.InternalNotes != "" {
				b.WriteString("    " + dimStyle.Render("notes: ") + normalStyle.Render(e.InternalNotes) + "\n")
			}
		}
	}

	if m.entry != nil {
		b.WriteString("\n " + sectionHeaderStyle.Render("── NEW ENTRY ──") + "\n")
		b.WriteString(m.entry.view(!m.submitting))
	}
	if m.statusMsg != "" {
		b.WriteString("\n " + metaStyle.Render(m.statusMsg))
	}
	return b.String()
}

// petFacts is the one-line summary under the pet's name.
func petFacts(p domain.Pet, now time.Time) string {
	facts := nonEmpty(strings.ToLower(p.Species), p.Breed, strings.ToLower(p.Gender))
	if p.BirthDate != nil {
		years := now.Year() - p.BirthDate.Year()
		if now.YearDay() < p.BirthDate.YearDay() {
			years--
		}
		facts = append(facts, fmt.Sprintf("%d years", max(years, 0)))
	}
	if p.Weight > 0 {
		facts = append(facts, fmt.Sprintf("%.1f kg", p.Weight))
	}
	return strings.Join(facts, " · ")
}

func (m historyPage) help() string {
	if m.entry != nil {
		return helpBar("tab", "next", "enter", "save", "esc", "cancel")
	}
	if m.canWrite() {
		return helpBar("j/k", "nav", "n", "new entry", "r", "reload", "esc", "back")
	}
	return helpBar("j/k", "nav", "r", "reload", "esc", "back")
}
