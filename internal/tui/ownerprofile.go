package tui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veterimap/veterimap/pkg/client"
)

const (
	opName = iota
	opPhone
	opCity
	opAddress
	opPostal
	opPetName
	opPetSpecies
	opPetBreed
	opPetGender
	opPetWeight
)

var (
	speciesOptions = []string{"Dog", "Cat", "Bird", "Rabbit", "Other"}
	genderOptions  = []string{"-", "Male", "Female"}
)

type ownerSavedMsg struct {
	err error
}

// ownerProfilePage edits the owner's contact details and optionally
// registers a new pet in the same step.
type ownerProfilePage struct {
	deps       deps
	loaded     bool
	form       form
	submitting bool
	err        string
	statusMsg  string
	petFirst   bool
}

func newOwnerProfilePage(d deps, p params) ownerProfilePage {
	return ownerProfilePage{deps: d, form: ownerForm(client.UpdateOwnerProfileRequest{}), petFirst: p["focus"] == "pet"}
}

func ownerForm(o client.UpdateOwnerProfileRequest) form {
	return newForm(
		formField{label: "name", value: o.Name},
		formField{label: "phone", value: o.Phone},
		formField{label: "city", value: o.City},
		formField{label: "address", value: o.Address},
		formField{label: "postal code", value: o.PostalCode},
		formField{label: "pet name", placeholder: "leave empty to skip"},
		formField{label: "species", options: speciesOptions},
		formField{label: "breed"},
		formField{label: "gender", options: genderOptions},
		formField{label: "weight (kg)", placeholder: "4.5"},
	)
}

func (m ownerProfilePage) Init() tea.Cmd { return loadAccountCmd(m.deps.client) }

func (m ownerProfilePage) editing() bool { return m.loaded }

func (m ownerProfilePage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case accountMsg:
		m.loaded = true
		if msg.err != nil {
			var cmd tea.Cmd
			m.err, cmd = apiError(msg.err)
			return m, cmd
		}
		u := msg.account.User
		m.form = ownerForm(client.UpdateOwnerProfileRequest{
			Name: u.Name, Phone: u.Phone, City: u.City, Address: u.Address, PostalCode: u.PostalCode,
		})
		if m.petFirst && u.OwnerProfileComplete() {
			m.form.focus = opPetName
		}
		return m, nil

	case ownerSavedMsg:
		m.submitting = false
		if msg.err != nil {
			var cmd tea.Cmd
			m.statusMsg, cmd = apiError(msg.err)
			return m, cmd
		}
		return m, navigate("/owner")

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

func (m ownerProfilePage) submit() (page, tea.Cmd) {
	f := m.form
	owner := client.UpdateOwnerProfileRequest{
		Name:       f.value(opName),
		Phone:      f.value(opPhone),
		City:       f.value(opCity),
		Address:    f.value(opAddress),
		PostalCode: f.value(opPostal),
	}
	if err := validate.Struct(owner); err != nil {
		m.statusMsg = validationMessage(err)
		return m, nil
	}

	var pet *client.CreatePetRequest
	if name := f.value(opPetName); name != "" {
		pet = &client.CreatePetRequest{
			Name:    name,
			Species: f.value(opPetSpecies),
			Breed:   f.value(opPetBreed),
		}
		if g := f.value(opPetGender); g != "-" {
			pet.Gender = g
		}
		if w := strings.ReplaceAll(f.value(opPetWeight), ",", "."); w != "" {
			kg, err := strconv.ParseFloat(w, 64)
			if err != nil {
				m.statusMsg = "weight must be a number"
				return m, nil
			}
			pet.Weight = kg
		}
		if err := validate.Struct(pet); err != nil {
			m.statusMsg = validationMessage(err)
			return m, nil
		}
	}

	m.submitting = true
	c, s := m.deps.client, m.deps.session
	return m, func() tea.Msg {
		ctx := context.Background()
		if err := c.UpdateOwnerProfile(ctx, owner); err != nil {
			return ownerSavedMsg{err: err}
		}
		if pet != nil {
			if _, err := c.AddPet(ctx, *pet); err != nil {
				return ownerSavedMsg{err: err}
			}
		}
		s.Refresh(ctx)
		return ownerSavedMsg{}
	}
}

func (m ownerProfilePage) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("My profile") + "\n\n")
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
	default:
		b.WriteString(" " + metaStyle.Render("name and city are required to book"))
	}
	return b.String()
}

func (m ownerProfilePage) help() string {
	return helpBar("tab", "next", "←/→", "choose", "ctrl+s", "save", "esc", "back")
}
