package tui

import (
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veterimap/veterimap/internal/guard"
	"github.com/veterimap/veterimap/pkg/client"
	"github.com/veterimap/veterimap/pkg/domain"
)

// page is a screen reachable through the router.
type page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (page, tea.Cmd)
	View() string
	help() string
	// editing reports whether the page is capturing printable keys.
	editing() bool
}

// params holds path parameters and query values of the current route.
type params map[string]string

type route struct {
	pattern string
	req     *guard.Requirement
	build   func(d deps, p params) page
}

var (
	vetOnly   = guard.Authenticated(domain.RoleProfessional)
	ownerOnly = guard.Authenticated(domain.RolePetOwner)
	clinical  = guard.Authenticated(domain.RoleProfessional, domain.RolePetOwner)
)

// agendaMinLevel is the access level the online agenda is sold at.
const agendaMinLevel = 2

var routes = []route{
	{"/", guard.Public, func(d deps, _ params) page { return newLandingPage(d) }},
	{"/login", guard.Public, func(d deps, p params) page { return newLoginPage(d, p) }},
	{"/register", guard.Public, func(d deps, _ params) page { return newRegisterPage(d) }},
	{"/verify", guard.Public, func(d deps, _ params) page { return newVerifyPage(d) }},
	{"/plans", guard.Public, func(d deps, p params) page { return newPlansPage(d, p) }},
	{"/map", guard.Public, func(d deps, p params) page { return newMapPage(d, p) }},
	{"/vets/:id", guard.Public, func(d deps, p params) page { return newVetDetailPage(d, p["id"]) }},

	{"/vet", vetOnly, func(d deps, _ params) page { return newVetHomePage(d) }},
	{"/vet/clients", vetOnly, func(d deps, _ params) page { return newVetClientsPage(d) }},
	{"/vet/agenda", vetOnly.WithMinLevel(agendaMinLevel), func(d deps, _ params) page { return newAgendaPage(d) }},
	{"/vet/profile", vetOnly, func(d deps, _ params) page { return newVetProfilePage(d) }},
	{"/history/:petId", clinical, func(d deps, p params) page { return newHistoryPage(d, p["petId"]) }},

	{"/owner", ownerOnly, func(d deps, _ params) page { return newOwnerHomePage(d) }},
	{"/owner/profile", ownerOnly, func(d deps, p params) page { return newOwnerProfilePage(d, p) }},
	{"/owner/pets", ownerOnly, func(d deps, _ params) page { return newOwnerPetsPage(d) }},
	{"/owner/appointments", ownerOnly, func(d deps, _ params) page { return newOwnerAppointmentsPage(d) }},
	{"/book/:id", ownerOnly, func(d deps, p params) page { return newBookPage(d, p["id"]) }},
}

// matchRoute finds the route for target, which may carry a query string.
func matchRoute(target string) (route, params, bool) {
	u, err := url.Parse(target)
	if err != nil {
		return route{}, nil, false
	}
	path := "/" + strings.Trim(u.Path, "/")
	for _, r := range routes {
		p, ok := matchPattern(r.pattern, path)
		if !ok {
			continue
		}
		for k, v := range u.Query() {
			if _, taken := p[k]; !taken && len(v) > 0 {
				p[k] = v[0]
			}
		}
		return r, p, true
	}
	return route{}, nil, false
}

func matchPattern(pattern, path string) (params, bool) {
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return nil, false
	}
	p := params{}
	for i := range want {
		if strings.HasPrefix(want[i], ":") {
			if got[i] == "" {
				return nil, false
			}
			p[want[i][1:]] = got[i]
			continue
		}
		if want[i] != got[i] {
			return nil, false
		}
	}
	return p, true
}

// navigateMsg asks the app to move to path.
type navigateMsg struct {
	path string
}

// backMsg asks the app to return to the previous route.
type backMsg struct{}

func navigate(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

func back() tea.Cmd {
	return func() tea.Msg { return backMsg{} }
}

// withQuery appends values to path as a query string.
func withQuery(path string, kv ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			q.Set(kv[i], kv[i+1])
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// homeFor is where an identity lands when it opens the app.
func homeFor(role domain.Role) string {
	switch role {
	case domain.RoleProfessional:
		return "/vet"
	case domain.RolePetOwner:
		return "/owner"
	default:
		return "/"
	}
}

// apiError turns err into a line for the page. A payment-required error also
// yields a command that moves to the plans page with the payment link.
func apiError(err error) (string, tea.Cmd) {
	if pr, ok := client.AsPaymentRequired(err); ok {
		return pr.Error(), navigate(withQuery("/plans", "payment_url", pr.PaymentURL, "reason", pr.Message))
	}
	return err.Error(), nil
}

// moveCursor applies j/k style navigation to a list cursor.
func moveCursor(cursor, n int, key string) int {
	switch key {
	case "j", "down":
		if cursor < n-1 {
			cursor++
		}
	case "k", "up":
		if cursor > 0 {
			cursor--
		}
	case "g", "home":
		cursor = 0
	case "G", "end":
		if n > 0 {
			cursor = n - 1
		}
	}
	return cursor
}
