package tui

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veterimap/veterimap/pkg/client"
	"github.com/veterimap/veterimap/pkg/domain"
)

const (
	vpName = iota
	vpType
	vpLicense
	vpBio
	vpPhone
	vpEmail
	vpCity
	vpAddress
	vpPostal
	vpSpecialties
	vpHours
	vpRates
)

var hoursPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d-([01]\d|2[0-3]):[0-5]\d$`)

var workweek = weekdays[:5]

type ownProfileMsg struct {
	profile *domain.ProfessionalEntity
	err     error
}

type profileSavedMsg struct {
	err error
}

// vetProfilePage edits the professional's public profile.
type vetProfilePage struct {
	deps       deps
	base       domain.ProfessionalEntity
	loaded     bool
	form       form
	submitting bool
	err        string
	statusMsg  string
}

func newVetProfilePage(d deps) vetProfilePage {
	return vetProfilePage{deps: d, form: profileForm(domain.ProfessionalEntity{})}
}

func profileForm(p domain.ProfessionalEntity) form {
	pd := p.ProfileData
	addr, _ := pd.MainAddress()
	hours := ""
	if wd, ok := pd.WorkingHours["monday"]; ok && wd.Active {
		hours = wd.Start + "-" + wd.End
	}
	entity := p.EntityType
	if entity == "" {
		entity = domain.EntityIndividual
	}
	return newForm(
		formField{label: "name", value: p.Name, placeholder: "public name"},
		formField{label: "type", value: entity, options: []string{domain.EntityIndividual, domain.EntityClinic}},
		formField{label: "license", value: pd.LicenseNumber, placeholder: "college number"},
		formField{label: "bio", value: pd.Bio, placeholder: "a few words for owners"},
		formField{label: "phone", value: pd.Contact.Phone},
		formField{label: "email", value: pd.Contact.Email},
		formField{label: "city", value: addr.City},
		formField{label: "address", value: addr.FullAddress},
		formField{label: "postal code", value: addr.PostalCode},
		formField{label: "specialties", value: strings.Join(pd.Specialties, ", "), placeholder: "dogs, cats, exotics"},
		formField{label: "mon-fri hours", value: hours, placeholder: "09:00-18:00"},
		formField{label: "rates", value: formatRates(pd.Pricing.Rates), placeholder: "consultation:35; vaccine:25"},
	)
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseRates reads "name:price; name:price".
func parseRates(s string) ([]domain.Service, error) {
	var out []domain.Service
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, price, ok := strings.Cut(part, ":")
		name, price = strings.TrimSpace(name), strings.TrimSpace(price)
		if !ok || name == "" || price == "" {
			return nil, fmt.Errorf("rate %q must look like name:price", part)
		}
		out = append(out, domain.Service{Name: name, Price: price})
	}
	return out, nil
}

func formatRates(rates []domain.Service) string {
	parts := make([]string, len(rates))
	for i, r := range rates {
		parts[i] = r.Name + ":" + r.Price
	}
	return strings.Join(parts, "; ")
}

// applyHours sets the same window on every working day and closes the
// weekend. An empty window leaves the existing hours untouched.
func applyHours(existing map[string]domain.WorkingDay, window string) (map[string]domain.WorkingDay, error) {
	if window == "" {
		return existing, nil
	}
	if !hoursPattern.MatchString(window) {
		return nil, errors.New("hours must look like 09:00-18:00")
	}
	start, end, _ := strings.Cut(window, "-")
	if end <= start {
		return nil, errors.New("closing time must be after opening time")
	}
	out := make(map[string]domain.WorkingDay, len(weekdays))
	for _, day := range weekdays {
		out[day] = domain.WorkingDay{Active: false, Start: start, End: end}
	}
	for _, day := range workweek {
		out[day] = domain.WorkingDay{Active: true, Start: start, End: end}
	}
	return out, nil
}

func (m vetProfilePage) Init() tea.Cmd {
	c := m.deps.client
	return func() tea.Msg {
		p, err := c.GetProfessionalProfile(context.Background())
		return ownProfileMsg{profile: p, err: err}
	}
}

func (m vetProfilePage) editing() bool { return m.loaded }

func (m vetProfilePage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case ownProfileMsg:
		m.loaded = true
		switch {
		case client.IsStatus(msg.err, 404):
			// No profile yet: start blank.
		case msg.err != nil:
			var cmd tea.Cmd
			m.err, cmd = apiError(msg.err)
			return m, cmd
		default:
			m.base = *msg.profile
			m.form = profileForm(m.base)
		}
		return m, nil

	case profileSavedMsg:
		m.submitting = false
		if msg.err != nil {
			var cmd tea.Cmd
			m.statusMsg, cmd = apiError(msg.err)
			return m, cmd
		}
		return m, navigate("/vet")

	case tea.KeyMsg:
		if !m.loaded || m.submitting {
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

func (m vetProfilePage) submit() (page, tea.Cmd) {
	p, err := m.entity()
	if err != nil {
		m.statusMsg = err.Error()
		return m, nil
	}
	m.submitting = true
	c, s := m.deps.client, m.deps.session
	return m, func() tea.Msg {
		ctx := context.Background()
		if err := c.SaveProfessionalProfile(ctx, p); err != nil {
			return profileSavedMsg{err: err}
		}
		s.Refresh(ctx)
		return profileSavedMsg{}
	}
}

// entity builds the profile to save from the form, keeping fields the form
// does not show.
func (m vetProfilePage) entity() (domain.ProfessionalEntity, error) {
	f := m.form
	p := m.base
	p.Name = f.value(vpName)
	p.EntityType = f.value(vpType)
	if p.Name == "" {
		return p, errors.New("name is required")
	}
	if f.value(vpCity) == "" || f.value(vpAddress) == "" {
		return p, errors.New("city and address are required to appear on the map")
	}

	pd := p.ProfileData
	pd.LicenseNumber = f.value(vpLicense)
	pd.Bio = f.value(vpBio)
	pd.Contact = domain.Contact{Phone: f.value(vpPhone), Email: f.value(vpEmail)}
	if pd.Contact.Email != "" {
		if err := validate.Var(pd.Contact.Email, "email"); err != nil {
			return p, errors.New("contact email is invalid")
		}
	}
	pd.Specialties = splitList(f.value(vpSpecialties))

	rates, err := parseRates(f.value(vpRates))
	if err != nil {
		return p, err
	}
	pd.Pricing.Rates = rates

	hours, err := applyHours(pd.WorkingHours, f.value(vpHours))
	if err != nil {
		return p, err
	}
	pd.WorkingHours = hours

	primary := -1
	for i, a := range pd.Addresses {
		if a.IsMain {
			primary = i
			break
		}
	}
	if primary < 0 && len(pd.Addresses) > 0 {
		primary = 0
	}
	addr := domain.Address{}
	addrs := []domain.Address{{}}
	for i, a := range pd.Addresses {
		if i == primary {
			addr = a
			continue
		}
		addrs = append(addrs, a)
	}
	addr.IsMain = true
	addr.City = f.value(vpCity)
	addr.FullAddress = f.value(vpAddress)
	addr.PostalCode = f.value(vpPostal)
	addrs[0] = addr
	pd.Addresses = addrs

	p.ProfileData = pd
	return p, nil
}

func (m vetProfilePage) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("Public profile") + "\n\n")
	switch {
	case m.err != "":
		b.WriteString(" " + errorStyle.Render(m.err))
		return b.String()
	case !m.loaded:
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	b.WriteString(m.form.view(!m.submitting))
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("saving..."))
	case m.statusMsg != "":
		b.WriteString(" " + errorStyle.Render(m.statusMsg))
	}
	return b.String()
}

func (m vetProfilePage) help() string {
	return helpBar("tab", "next", "←/→", "type", "ctrl+s", "save", "esc", "back")
}
