package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/veterimap/veterimap/pkg/client"
	"github.com/veterimap/veterimap/pkg/domain"
)

type mapResultsMsg struct {
	results []domain.ProfileSummary
	err     error
}

// mapPage lists the professionals matching a city search.
type mapPage struct {
	deps    deps
	query   client.MapQuery
	results []domain.ProfileSummary
	cursor  int
	loading bool
	err     string
	height  int
}

func newMapPage(d deps, p params) mapPage {
	return mapPage{
		deps:    d,
		query:   client.MapQuery{City: p["city"], EntityType: p["type"], Specialty: p["specialty"]},
		loading: true,
	}
}

func (m mapPage) Init() tea.Cmd {
	c, q := m.deps.client, m.query
	return func() tea.Msg {
		res, err := c.SearchMap(context.Background(), q)
		return mapResultsMsg{results: res, err: err}
	}
}

func (m mapPage) editing() bool { return false }

func (m mapPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case mapResultsMsg:
		m.loading = false
		if msg.err != nil {
			var cmd tea.Cmd
			m.err, cmd = apiError(msg.err)
			return m, cmd
		}
		m.results = msg.results
		sort.SliceStable(m.results, func(i, j int) bool {
			return m.results[i].Rating > m.results[j].Rating
		})
		m.cursor = 0
		return m, nil

	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if sel, ok := m.selected(); ok {
				return m, navigate("/vets/" + sel.ID)
			}
		case "b":
			if sel, ok := m.selected(); ok {
				return m, navigate("/book/" + sel.ID)
			}
		case "/":
			return m, navigate("/")
		case "r":
			m.loading = true
			m.err = ""
			return m, m.Init()
		default:
			m.cursor = moveCursor(m.cursor, len(m.results), msg.String())
		}
	}
	return m, nil
}

func (m mapPage) selected() (domain.ProfileSummary, bool) {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return domain.ProfileSummary{}, false
	}
	return m.results[m.cursor], true
}

func (m mapPage) View() string {
	var b strings.Builder
	title := "Professionals in " + orDash(m.query.City)
	if m.query.EntityType != "" {
		title += " · " + strings.ToLower(m.query.EntityType)
	}
	if m.query.Specialty != "" {
		title += " · " + m.query.Specialty
	}
	b.WriteString("\n " + titleStyle.Render(title) + "\n\n")

	switch {
	case m.loading:
		b.WriteString(" " + dimStyle.Render("searching..."))
		return b.String()
	case m.err != "":
		b.WriteString(" " + errorStyle.Render("search error: "+m.err))
		return b.String()
	case len(m.results) == 0:
		b.WriteString(" " + dimStyle.Render("No professionals found. Try another city."))
		return b.String()
	}

	located := 0
	for i, r := range m.results {
		if r.Located() {
			located++
		}
		raw := fmt.Sprintf("%-32s", truncStr(r.Name, 32))
		name := normalStyle.Render(raw)
		prefix := "  "
		if i == m.cursor {
			name = selectedStyle.Render(raw)
			prefix = accentStyle.Render("> ")
		}
		kind := metaStyle.Render(fmt.Sprintf("%-10s", strings.ToLower(r.EntityType)))
		line := prefix + name + " " + kind + " " + ratingStars(r.Rating) + " " +
			metaStyle.Render(fmt.Sprintf("(%d)", r.ReviewCount))
		b.WriteString(line + "\n")
		addr := r.FullAddress
		if addr == "" {
			addr = r.City
		}
		b.WriteString("    " + dimStyle.Render(truncStr(addr, 60)) + "\n")
	}
	fmt.Fprintf(&b, "\n %s\n", metaStyle.Render(fmt.Sprintf("%d results · %d on the map", len(m.results), located)))
	return b.String()
}

func (m mapPage) help() string {
	return helpBar("j/k", "nav", "enter", "details", "b", "book", "/", "new search", "r", "reload")
}

type vetDetailMsg struct {
	detail *domain.ProfileDetail
	err    error
}

type copiedMsg struct {
	what string
	err  error
}

// vetDetailPage shows a professional's public profile.
type vetDetailPage struct {
	deps      deps
	id        string
	detail    *domain.ProfileDetail
	err       string
	statusMsg string
	width     int
	copy      func(string) error
}

func newVetDetailPage(d deps, id string) vetDetailPage {
	return vetDetailPage{deps: d, id: id, copy: clipboard.WriteAll}
}

func (m vetDetailPage) Init() tea.Cmd {
	c, id := m.deps.client, m.id
	return func() tea.Msg {
		d, err := c.GetProfileDetail(context.Background(), id)
		return vetDetailMsg{detail: d, err: err}
	}
}

func (m vetDetailPage) editing() bool { return false }

func (m vetDetailPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case vetDetailMsg:
		if msg.err != nil {
			var cmd tea.Cmd
			m.err, cmd = apiError(msg.err)
			return m, cmd
		}
		m.detail = msg.detail
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.statusMsg = "copy failed: " + msg.err.Error()
		} else {
			m.statusMsg = msg.what + " copied"
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "b":
			if m.detail != nil {
				return m, navigate("/book/" + m.id)
			}
		case "c":
			if m.detail != nil && m.detail.ProfileData.Contact.Phone != "" {
				phone, cp := m.detail.ProfileData.Contact.Phone, m.copy
				return m, func() tea.Msg { return copiedMsg{what: "phone", err: cp(phone)} }
			}
		}
	}
	return m, nil
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (m vetDetailPage) View() string {
	if m.err != "" {
		return "\n " + errorStyle.Render("profile error: "+m.err)
	}
	if m.detail == nil {
		return "\n " + dimStyle.Render("loading...")
	}
	d := m.detail
	pd := d.ProfileData

	var sb strings.Builder
	sb.WriteString(selectedStyle.Render(d.Name) + "  " + metaStyle.Render(strings.ToLower(d.EntityType)) + "\n")
	sb.WriteString(ratingStars(d.Rating) + " " + metaStyle.Render(fmt.Sprintf("%.1f (%d reviews)", d.Rating, d.ReviewCount)) + "\n")
	if addr, ok := pd.MainAddress(); ok {
		sb.WriteString(normalStyle.Render(addr.FullAddress) + " " + dimStyle.Render(addr.City) + "\n")
	}
	if pd.Contact.Phone != "" || pd.Contact.Email != "" {
		sb.WriteString(dimStyle.Render(strings.TrimSpace(pd.Contact.Phone+"  "+pd.Contact.Email)) + "\n")
	}
	if pd.Bio != "" {
		sb.WriteString("\n" + normalStyle.Render(pd.Bio) + "\n")
	}
	if len(pd.Specialties) > 0 {
		sb.WriteString("\n" + sectionHeaderStyle.Render("── SPECIALTIES ──") + "\n")
		sb.WriteString(accentStyle.Render(strings.Join(pd.Specialties, " · ")) + "\n")
	}
	if len(pd.WorkingHours) > 0 {
		sb.WriteString("\n" + sectionHeaderStyle.Render("── HOURS ──") + "\n")
		for _, day := range weekdays {
			wd, ok := pd.WorkingHours[day]
			if !ok {
				continue
			}
			hours := dimStyle.Render("closed")
			if wd.Active {
				hours = normalStyle.Render(wd.Start + " - " + wd.End)
			}
			fmt.Fprintf(&sb, "%s %s\n", metaStyle.Render(fmt.Sprintf("%-10s", day)), hours)
		}
	}
	if len(pd.Pricing.Rates) > 0 {
		sb.WriteString("\n" + sectionHeaderStyle.Render("── PRICES ──") + "\n")
		for _, s := range pd.Pricing.Rates {
			fmt.Fprintf(&sb, "%s %s\n", normalStyle.Render(fmt.Sprintf("%-24s", truncStr(s.Name, 24))), goldStyle.Render(s.Price))
		}
	}
	if m.statusMsg != "" {
		sb.WriteString("\n" + dimStyle.Render(m.statusMsg))
	}
	return "\n" + card(strings.TrimRight(sb.String(), "\n"), m.width)
}

func (m vetDetailPage) help() string {
	return helpBar("b", "book", "c", "copy phone")
}
