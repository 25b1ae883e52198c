package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var greetings = [...]string{
	"Every pet deserves a vet who answers the phone.",
	"Vaccines, check-ups, that limp that won't go away. Someone near you can help.",
	"The waiting room is shorter when you book ahead.",
	"Your cat will pretend it doesn't need a check-up. It does.",
	"Clinics and independent vets, side by side, sorted by what their clients say.",
	"A medical history in one place beats a shoebox of receipts.",
	"Professionals: your agenda fills itself when owners can find you.",
	"Dogs don't read reviews. Their owners do.",
}

func printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#2dd4bf")).
		Bold(true).
		Render("V E T E R I M A P")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Find, book and follow up with veterinary professionals.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"veterimap", "Open the app (search, or your back office when logged in)"},
		{"veterimap login", "Log in with email and password"},
		{"veterimap logout", "Clear the stored session"},
		{"veterimap whoami", "Show the logged-in account"},
		{"veterimap --version", "Show version"},
		{"veterimap help", "You are here"},
	}

	fmt.Printf("\n  %s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}
	env := descStyle.Render("Environment: VETERIMAP_API_URL, VETERIMAP_TOKEN, VETERIMAP_DATA_DIR, LOG_LEVEL")
	fmt.Printf("\n  %s\n\n", env)
}

// printGreeting is shown to visitors without a session.
func printGreeting(w io.Writer) {
	msg := greetings[rand.IntN(len(greetings))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#2dd4bf")).
		Bold(true).
		Render("VETERIMAP")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("Not logged in. To enter: veterimap login")

	fmt.Fprintf(w, "\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}
