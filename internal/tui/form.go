package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validationMessage turns a validator error into a one-line message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// formField is one input of a form. Fields with options are cycled with
// left/right instead of typed into.
type formField struct {
	label       string
	value       string
	placeholder string
	secret      bool
	options     []string
}

// form is the shared inline form used by every page that collects input.
type form struct {
	fields []formField
	focus  int
}

func newForm(fields ...formField) form {
	for i := range fields {
		if len(fields[i].options) > 0 && fields[i].value == "" {
			fields[i].value = fields[i].options[0]
		}
	}
	return form{fields: fields}
}

func (f form) value(i int) string {
	return strings.TrimSpace(f.fields[i].value)
}

func (f form) set(i int, v string) form {
	f.fields = append([]formField(nil), f.fields...)
	f.fields[i].value = v
	return f
}

// update applies a key to the form and reports whether the user submitted it.
func (f form) update(msg tea.KeyMsg) (form, bool) {
	n := len(f.fields)
	if n == 0 {
		return f, false
	}
	// Copy so value receivers don't share the backing array.
	f.fields = append([]formField(nil), f.fields...)
	field := &f.fields[f.focus]

	if msg.Type == tea.KeyRunes && (msg.Paste || len(msg.Runes) > 1) {
		if len(field.options) == 0 {
			field.value = insertText(field.value, string(msg.Runes))
		}
		return f, false
	}

	switch key := msg.String(); key {
	case "ctrl+s":
		return f, true
	case "enter":
		if f.focus == n-1 {
			return f, true
		}
		f.focus++
	case "tab", "down":
		f.focus = (f.focus + 1) % n
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + n) % n
	case "left", "right":
		if len(field.options) > 0 {
			field.value = cycle(field.options, field.value, key == "right")
		}
	default:
		if len(field.options) == 0 {
			field.value = editRune(field.value, key)
		}
	}
	return f, false
}

func cycle(options []string, current string, forward bool) string {
	idx := 0
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(options)
	} else {
		idx = (idx - 1 + len(options)) % len(options)
	}
	return options[idx]
}

func (f form) view(focused bool) string {
	var b strings.Builder
	for i, field := range f.fields {
		cursor := " "
		style := metaStyle
		active := focused && i == f.focus
		if active {
			cursor = ">"
			style = selectedStyle
		}

		value := field.value
		if field.secret {
			value = strings.Repeat("•", len([]rune(value)))
		}
		switch {
		case len(field.options) > 0:
			value = accentStyle.Render(value) + metaStyle.Render("  (←/→)")
		case value == "" && !active:
			value = inputPlaceholderStyle.Render(field.placeholder)
		case active:
			value += accentStyle.Render("█")
		}
		fmt.Fprintf(&b, "%s %s %s\n", cursor, style.Render(fmt.Sprintf("%-14s", field.label)), value)
	}
	return b.String()
}
