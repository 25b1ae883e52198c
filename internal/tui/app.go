package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/veterimap/veterimap/internal/guard"
	"github.com/veterimap/veterimap/internal/session"
	"github.com/veterimap/veterimap/pkg/client"
	"github.com/veterimap/veterimap/pkg/domain"
)

// maxRedirects bounds guard redirect chains.
const maxRedirects = 5

// deps are the shared services handed to every page.
type deps struct {
	client  *client.Client
	session *session.Store
	logger  *zap.Logger
	now     func() time.Time
}

// sessionResolvedMsg is sent once the stored session has been restored and refined.
type sessionResolvedMsg struct{}

// notificationsLoadedMsg carries the header's unread count.
type notificationsLoadedMsg struct {
	userID string
	unread int
	err    error
}

// unreadChangedMsg lets pages update the header after marking notifications read.
type unreadChangedMsg struct {
	unread int
}

// Options configures the App.
type Options struct {
	Version string
	// StartPath is the first route. Empty starts at "/" and moves to the
	// role's back office once the session resolves.
	StartPath string
	Logger    *zap.Logger
}

// App is the root Bubbletea model.
type App struct {
	deps    deps
	guard   guard.Guard
	version string

	path     string
	route    route
	params   params
	page     page
	history  []string
	autoHome bool

	notifiedFor string
	unread      int

	helpOpen   bool
	helpCursor int
	width      int
	height     int
	frame      int
}

// NewApp creates a new TUI application.
func NewApp(c *client.Client, s *session.Store, opts Options) App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	a := App{
		deps:     deps{client: c, session: s, logger: logger, now: time.Now},
		guard:    guard.Default(),
		version:  opts.Version,
		autoHome: opts.StartPath == "",
	}
	start := opts.StartPath
	if start == "" {
		start = "/"
	}
	a.setRoute(start)
	return a
}

func (a App) Init() tea.Cmd {
	s := a.deps.session
	return tea.Batch(shimmerTickCmd(), func() tea.Msg {
		s.Init(context.Background())
		return sessionResolvedMsg{}
	})
}

func (a App) loadNotifications(userID string) tea.Cmd {
	c := a.deps.client
	return func() tea.Msg {
		ns, err := c.ListNotifications(context.Background())
		if err != nil {
			return notificationsLoadedMsg{userID: userID, err: err}
		}
		return notificationsLoadedMsg{userID: userID, unread: domain.UnreadCount(ns)}
	}
}

// setRoute points the app at target without running the guard. Unknown
// targets fall back to "/".
func (a *App) setRoute(target string) {
	r, p, ok := matchRoute(target)
	if !ok {
		target = "/"
		r, p, _ = matchRoute(target)
	}
	a.path, a.route, a.params = target, r, p
	a.page = nil
}

// reconcile runs the guard for the current route, following redirects and
// building the page once it may render.
func (a App) reconcile() (App, tea.Cmd) {
	s := a.deps.session
	id := s.Identity()

	var cmds []tea.Cmd
	switch {
	case id == nil:
		a.notifiedFor, a.unread = "", 0
	case id.UserID != a.notifiedFor && a.deps.client != nil:
		a.notifiedFor = id.UserID
		cmds = append(cmds, a.loadNotifications(id.UserID))
	}

	for hops := 0; hops < maxRedirects; hops++ {
		d := a.guard.Check(id, s.Loading(), a.route.req)
		switch d.Outcome {
		case guard.Redirect:
			a.deps.logger.Debug("guard redirect", zap.String("from", a.path), zap.String("to", d.Target))
			a.setRoute(d.Target)
			continue
		case guard.Render:
			if a.page == nil {
				a.page = a.route.build(a.deps, a.params)
				if w, h := a.width, a.height; w > 0 {
					a.page, _ = a.page.Update(tea.WindowSizeMsg{Width: w, Height: h - chromeLines})
				}
				cmds = append(cmds, a.page.Init())
			}
		}
		break
	}
	return a, tea.Batch(cmds...)
}

func (a App) goTo(target string) (App, tea.Cmd) {
	if target != a.path {
		a.history = append(a.history, a.path)
	}
	a.setRoute(target)
	return a.reconcile()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.update(msg)
	next, guardCmd := next.reconcile()
	return next, tea.Batch(cmd, guardCmd)
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.page != nil {
			a.page, _ = a.page.Update(tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - chromeLines})
		}
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case sessionResolvedMsg:
		if id := a.deps.session.Identity(); id != nil && a.autoHome && a.path == "/" {
			a.autoHome = false
			a.setRoute(homeFor(id.Role))
		}
		return a, nil

	case notificationsLoadedMsg:
		if msg.err == nil && msg.userID == a.notifiedFor {
			a.unread = msg.unread
		}
		return a, nil

	case unreadChangedMsg:
		a.unread = msg.unread
		return a, nil

	case navigateMsg:
		return a.goTo(msg.path)

	case backMsg:
		return a.back()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.helpOpen {
			switch msg.String() {
			case "?", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			case "j", "down", "k", "up":
				a.helpCursor = moveCursor(a.helpCursor, len(helpItems), msg.String())
			case "enter":
				a.helpOpen = false
				return a.goTo(helpItems[a.helpCursor].path)
			}
			return a, nil
		}

		editing := a.page != nil && a.page.editing()
		if msg.String() == "ctrl+x" {
			a.deps.session.Logout()
			a.history = nil
			return a.goTo("/")
		}
		if !editing {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "?":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "esc":
				return a.back()
			}
		}
	}

	if a.page == nil {
		return a, nil
	}
	var cmd tea.Cmd
	a.page, cmd = a.page.Update(msg)
	return a, cmd
}

func (a App) back() (App, tea.Cmd) {
	if len(a.history) == 0 {
		if a.path == "/" {
			return a, nil
		}
		a.setRoute("/")
		return a.reconcile()
	}
	prev := a.history[len(a.history)-1]
	a.history = a.history[:len(a.history)-1]
	a.setRoute(prev)
	return a.reconcile()
}

// chromeLines is header(2) + path(1) + help(1).
const chromeLines = 4

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	logoPad := max((a.width-lipgloss.Width(logo))/2, 0)
	header := strings.Repeat(" ", logoPad) + logo + "\n" + a.statusLine()

	crumb := " " + accentStyle.Render(a.path)

	var body, help string
	d := a.guard.Check(a.deps.session.Identity(), a.deps.session.Loading(), a.route.req)
	switch {
	case a.helpOpen:
		body = helpView(a.helpCursor)
		help = helpBar("j/k", "nav", "enter", "go", "esc", "close")
	case d.Outcome == guard.Placeholder || a.page == nil:
		body = "\n " + dimStyle.Render("loading session...")
		help = helpBar("ctrl+c", "quit")
	default:
		body = a.page.View()
		help = a.page.help()
		if !a.page.editing() {
			help += "  " + helpEntry("esc", "back") + "  " + helpEntry("?", "help") + "  " + helpEntry("q", "quit")
		}
	}

	body = strings.TrimRight(truncateToHeight(body, a.height-chromeLines), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n%s", header, crumb, body, help)
}

// statusLine shows who is logged in and the unread notification count.
func (a App) statusLine() string {
	var parts []string
	id := a.deps.session.Identity()
	switch {
	case a.deps.session.Loading():
		parts = append(parts, dimStyle.Render("checking session..."))
	case id == nil:
		parts = append(parts, dimStyle.Render("not logged in"))
	default:
		who := id.Name
		if who == "" {
			who = id.Email
		}
		if who == "" {
			who = truncStr(id.UserID, 8)
		}
		parts = append(parts, normalStyle.Render(who)+" "+RoleBadge(id.Role))
		if id.AccessLevel > 0 {
			parts = append(parts, metaStyle.Render(fmt.Sprintf("level %d", id.AccessLevel)))
		}
		if a.unread > 0 {
			parts = append(parts, badgeStyle.Render(fmt.Sprintf(" %d new ", a.unread)))
		}
	}
	if a.version != "" {
		parts = append(parts, metaStyle.Render(a.version))
	}
	line := strings.Join(parts, metaStyle.Render(" · "))
	pad := max((a.width-lipgloss.Width(line))/2, 0)
	return strings.Repeat(" ", pad) + line
}
