package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/veterimap/veterimap/pkg/domain"
)

// Shimmer animation for the VETERIMAP logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "VETERIMAP" as a wave of teal light.
// Deep teal (#0e4a4c) -> brand teal (#1cabb0) -> mint (#7ee8e0).
func renderShimmerLogo(frame int) string {
	const text = "VETERIMAP"
	n := len(text)
	t := float64(frame)

	var out string
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)
		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)
		b = b*0.75 + math.Sin(t*0.035)*0.12 + 0.18
		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(14 + b*(126-14))
		g := clampByte(74 + b*(232-74))
		bl := clampByte(76 + b*(224-76))
		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		out += lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(string(text[i]))
		if i < n-1 {
			out += " "
		}
	}
	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1cabb0"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1cabb0")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	goldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	borderColor  = lipgloss.Color("#1e2a2e")
	surfaceColor = lipgloss.Color("#11181a")

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#1cabb0")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#11181a")).
			Background(lipgloss.Color("#f0944a")).
			Bold(true)

	statusColors = map[domain.AppointmentStatus]lipgloss.Color{
		domain.AppointmentPending:     lipgloss.Color("#f0944a"),
		domain.AppointmentConfirmed:   lipgloss.Color("#4ade80"),
		domain.AppointmentRescheduled: lipgloss.Color("#60a0e0"),
		domain.AppointmentCompleted:   lipgloss.Color("#8890a0"),
		domain.AppointmentCancelled:   lipgloss.Color("#b45555"),
		domain.AppointmentNoShow:      lipgloss.Color("#b45555"),
	}

	roleColors = map[domain.Role]lipgloss.Color{
		domain.RolePetOwner:     lipgloss.Color("#d4a844"),
		domain.RoleProfessional: lipgloss.Color("#1cabb0"),
		domain.RoleAdmin:        lipgloss.Color("#c084e0"),
	}
)

// StatusStyle returns a bold style colored for an appointment status.
func StatusStyle(s domain.AppointmentStatus) lipgloss.Style {
	if c, ok := statusColors[s]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// RoleBadge returns a short colored badge for a role, e.g. "[professional]".
func RoleBadge(r domain.Role) string {
	if r == "" {
		return ""
	}
	c, ok := roleColors[r]
	if !ok {
		c = lipgloss.Color("#8890a0")
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render("[" + r.Label() + "]")
}

// ratingStars renders a 0-5 rating as filled and empty stars.
func ratingStars(rating float64) string {
	n := int(math.Round(rating))
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return goldStyle.Render(strings.Repeat("★", n)) + metaStyle.Render(strings.Repeat("☆", 5-n))
}

// card wraps body in the rounded surface box used for detail views.
func card(body string, width int) string {
	w := min(60, width-4)
	if w < 30 {
		w = 30
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Background(surfaceColor).
		Padding(1, 2).
		Width(w).
		Render(body)
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins key/label pairs into a help line.
func helpBar(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpEntry(pairs[i], pairs[i+1]))
	}
	return " " + strings.Join(parts, "  ")
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	path  string
}

var helpItems = []helpItem{
	{"Find a vet", "search by city", "/"},
	{"Plans", "ESSENTIAL and PREMIUM", "/plans"},
	{"Log in", "use your account", "/login"},
	{"Create account", "owners and professionals", "/register"},
}

// helpView renders the interactive help overlay with a cursor.
func helpView(cursor int) string {
	title := titleStyle.Render("V E T E R I M A P")
	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Vets, clinics and your pets' history in one place.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	selStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1cabb0"))

	commands := []struct{ cmd, desc string }{
		{"veterimap", "Open the app"},
		{"veterimap login", "Log in from the shell"},
		{"veterimap logout", "Clear your session"},
		{"veterimap whoami", "Show the current session"},
		{"veterimap --version", "Show version"},
	}
	keys := []struct{ key, desc string }{
		{"esc", "Back"},
		{"ctrl+x", "Log out"},
		{"?", "This help"},
		{"q / ctrl+c", "Quit"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n\n", title, quote)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", k.key)), descStyle.Render(k.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Go to (enter)"))
	for i, item := range helpItems {
		label := cmdStyle.Render(fmt.Sprintf("%-20s", item.label))
		prefix := "    "
		if i == cursor {
			label = selStyle.Render(fmt.Sprintf("%-20s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, descStyle.Render(item.desc))
	}
	return b.String()
}
