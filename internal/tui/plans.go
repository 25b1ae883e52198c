package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/veterimap/veterimap/internal/browser"
)

type plan struct {
	name     string
	tag      string
	price    string
	period   string
	trial    string
	features [][2]string
}

var plans = []plan{
	{
		name: "ESSENTIAL", tag: "FREE", price: "0€", period: "forever",
		features: [][2]string{
			{"Map listing", "standard"},
			{"Verified badge", "after review"},
			{"Booking", "manual, contact only"},
			{"Clinical history", "limited read"},
			{"Support", "community / email"},
		},
	},
	{
		name: "PREMIUM", tag: "RECOMMENDED", price: "70€", period: "/ month + VAT",
		trial: "2 month trial included",
		features: [][2]string{
			{"Map listing", "featured"},
			{"Verified badge", "fast track"},
			{"Booking", "online 24/7"},
			{"Reminders", "automatic email"},
			{"Clinical history", "full, shared"},
			{"Support", "WhatsApp premium"},
		},
	},
}

type paymentActionMsg struct {
	status string
	err    error
}

// plansPage lists the subscriptions. When reached from a payment-required
// response it also offers the payment link.
type plansPage struct {
	deps       deps
	paymentURL string
	reason     string
	statusMsg  string
	open       func(string) error
	copy       func(string) error
}

func newPlansPage(d deps, p params) plansPage {
	return plansPage{
		deps:       d,
		paymentURL: p["payment_url"],
		reason:     p["reason"],
		open:       browser.Open,
		copy:       clipboard.WriteAll,
	}
}

func (m plansPage) Init() tea.Cmd { return nil }

func (m plansPage) editing() bool { return false }

func (m plansPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case paymentActionMsg:
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
		} else {
			m.statusMsg = msg.status
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "o":
			if m.paymentURL != "" {
				url, open := m.paymentURL, m.open
				return m, func() tea.Msg {
					if err := open(url); err != nil {
						return paymentActionMsg{err: fmt.Errorf("could not open browser, copy the link with c: %w", err)}
					}
					return paymentActionMsg{status: "opened in your browser"}
				}
			}
		case "c":
			if m.paymentURL != "" {
				url, cp := m.paymentURL, m.copy
				return m, func() tea.Msg {
					if err := cp(url); err != nil {
						return paymentActionMsg{err: fmt.Errorf("copy failed: %w", err)}
					}
					return paymentActionMsg{status: "link copied"}
				}
			}
		case "r":
			if m.deps.session.Identity() == nil {
				return m, navigate("/register")
			}
		}
	}
	return m, nil
}

func (m plansPage) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("Plans for professionals") + "\n")
	b.WriteString(" " + dimStyle.Render("No lock-in. Change or cancel any time.") + "\n")

	if m.paymentURL != "" || m.reason != "" {
		var pay strings.Builder
		pay.WriteString(goldStyle.Render("Payment required") + "\n")
		if m.reason != "" {
			pay.WriteString(normalStyle.Render(m.reason) + "\n")
		}
		if m.paymentURL != "" {
			pay.WriteString("\n" + accentStyle.Render(m.paymentURL) + "\n\n")
			pay.WriteString(helpEntry("o", "open") + "  " + helpEntry("c", "copy link"))
		}
		b.WriteString("\n" + card(pay.String(), 64) + "\n")
	}

	for _, p := range plans {
		b.WriteString("\n " + selectedStyle.Render("Plan "+p.name) + "  " + badgeStyle.Render(" "+p.tag+" ") + "\n")
		b.WriteString(" " + titleStyle.Render(p.price) + " " + metaStyle.Render(p.period) + "\n")
		if p.trial != "" {
			b.WriteString(" " + successStyle.Render(p.trial) + "\n")
		}
		for _, f := range p.features {
			fmt.Fprintf(&b, "   %s %s\n", normalStyle.Render(fmt.Sprintf("%-18s", f[0])), dimStyle.Render(f[1]))
		}
	}
	if m.statusMsg != "" {
		b.WriteString("\n " + dimStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

func (m plansPage) help() string {
	pairs := []string{}
	if m.paymentURL != "" {
		pairs = append(pairs, "o", "open link", "c", "copy link")
	}
	if m.deps.session.Identity() == nil {
		pairs = append(pairs, "r", "register")
	}
	return helpBar(pairs...)
}
