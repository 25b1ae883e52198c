package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veterimap/veterimap/pkg/client"
	"github.com/veterimap/veterimap/pkg/domain"
)

type notificationsMsg struct {
	items []domain.Notification
	err   error
}

type markedReadMsg struct {
	err error
}

// notificationsPanel is the inbox shown on both back offices.
type notificationsPanel struct {
	items   []domain.Notification
	loaded  bool
	err     string
	marking bool
}

func loadNotificationsCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		ns, err := c.ListNotifications(context.Background())
		return notificationsMsg{items: ns, err: err}
	}
}

func markReadCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		return markedReadMsg{err: c.MarkNotificationsRead(context.Background())}
	}
}

// update handles the panel's messages. handled is false for anything else.
func (p notificationsPanel) update(msg tea.Msg) (notificationsPanel, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case notificationsMsg:
		p.loaded = true
		if msg.err != nil {
			p.err = msg.err.Error()
			return p, nil, true
		}
		p.err = ""
		p.items = msg.items
		unread := domain.UnreadCount(p.items)
		return p, func() tea.Msg { return unreadChangedMsg{unread: unread} }, true

	case markedReadMsg:
		p.marking = false
		if msg.err != nil {
			p.err = msg.err.Error()
			return p, nil, true
		}
		items := make([]domain.Notification, len(p.items))
		for i, n := range p.items {
			n.IsRead = true
			items[i] = n
		}
		p.items = items
		return p, func() tea.Msg { return unreadChangedMsg{unread: 0} }, true
	}
	return p, nil, false
}

func (p notificationsPanel) unread() int {
	return domain.UnreadCount(p.items)
}

func (p notificationsPanel) view(limit int) string {
	var b strings.Builder
	header := "── NOTIFICATIONS ──"
	if n := p.unread(); n > 0 {
		header = fmt.Sprintf("── NOTIFICATIONS (%d new) ──", n)
	}
	b.WriteString(" " + sectionHeaderStyle.Render(header) + "\n")
	switch {
	case p.err != "":
		b.WriteString(" " + errorStyle.Render(p.err) + "\n")
	case !p.loaded:
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
	case len(p.items) == 0:
		b.WriteString(" " + dimStyle.Render("nothing new") + "\n")
	}
	for i, n := range p.items {
		if i >= limit {
			fmt.Fprintf(&b, " %s\n", metaStyle.Render(fmt.Sprintf("+%d more", len(p.items)-limit)))
			break
		}
		dot := metaStyle.Render("○")
		title := dimStyle.Render(n.Title)
		if !n.IsRead {
			dot = accentStyle.Render("●")
			title = selectedStyle.Render(n.Title)
		}
		fmt.Fprintf(&b, " %s %s %s\n", dot, title, metaStyle.Render(formatTime(n.CreatedAt)))
		if n.Message != "" {
			b.WriteString("   " + dimStyle.Render(truncStr(n.Message, 70)) + "\n")
		}
	}
	return b.String()
}
