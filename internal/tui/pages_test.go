package tui

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/veterimap/veterimap/internal/session"
	"github.com/veterimap/veterimap/pkg/client"
	"github.com/veterimap/veterimap/pkg/domain"
)

// apiServer serves canned JSON keyed by "METHOD /path" and returns a client for it.
func apiServer(t *testing.T, routes map[string]http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return client.New(srv.URL, client.StaticToken("test-token"))
}

func jsonReply(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v) //nolint:errcheck
	}
}

// press feeds keys to p and returns the page and the last non-nil command.
func press(p page, keys ...string) (page, tea.Cmd) {
	var last tea.Cmd
	for _, k := range keys {
		var cmd tea.Cmd
		p, cmd = p.Update(key(k))
		if cmd != nil {
			last = cmd
		}
	}
	return p, last
}

func typeInto(p page, s string) page {
	for _, r := range s {
		p, _ = p.Update(key(string(r)))
	}
	return p
}

func TestLandingSearch(t *testing.T) {
	tests := []struct {
		name      string
		typeMoves int
		wantType  string
		wantSpec  string
	}{
		{"any type", 0, "", ""},
		{"individual keeps specialty", 1, domain.EntityIndividual, "dogs"},
		{"clinic drops specialty", 2, domain.EntityClinic, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p page = newLandingPage(testDeps(t, ""))
			p, _ = press(p, "/")
			if !p.editing() {
				t.Fatal("/ should start the search form")
			}
			p = typeInto(p, "Madrid")
			p, _ = press(p, "tab")
			for i := 0; i < tt.typeMoves; i++ {
				p, _ = press(p, "right")
			}
			p, _ = press(p, "tab")
			p = typeInto(p, "dogs")
			_, cmd := press(p, "enter")

			_, params, ok := matchRoute(navigatesTo(t, cmd))
			if !ok {
				t.Fatal("search target did not match a route")
			}
			if params["city"] != "Madrid" {
				t.Errorf("city = %q, want %q", params["city"], "Madrid")
			}
			if params["type"] != tt.wantType {
				t.Errorf("type = %q, want %q", params["type"], tt.wantType)
			}
			if params["specialty"] != tt.wantSpec {
				t.Errorf("specialty = %q, want %q", params["specialty"], tt.wantSpec)
			}
		})
	}
}

func TestLandingSearchNeedsCity(t *testing.T) {
	var p page = newLandingPage(testDeps(t, ""))
	p, _ = press(p, "/", "enter", "enter")
	p, cmd := press(p, "enter")
	if cmd != nil {
		t.Error("empty city should not navigate")
	}
	if lp := p.(landingPage); lp.statusMsg != "city is required" {
		t.Errorf("statusMsg = %q, want %q", lp.statusMsg, "city is required")
	}
}

func TestLandingDashboardKey(t *testing.T) {
	var p page = newLandingPage(testDeps(t, ""))
	p, cmd := press(p, "d")
	if cmd != nil {
		t.Error("anonymous visitors have no dashboard")
	}
	if !strings.Contains(p.View(), "log in") {
		t.Error("should hint to log in")
	}

	var vet page = newLandingPage(testDeps(t, testToken(t, domain.RoleProfessional, 1)))
	_, cmd = press(vet, "d")
	if got := navigatesTo(t, cmd); got != "/vet" {
		t.Errorf("dashboard = %q, want %q", got, "/vet")
	}
}

func TestLoginValidation(t *testing.T) {
	var p page = newLoginPage(testDeps(t, ""), params{})
	p, cmd := press(p, "enter", "enter")
	if cmd != nil {
		t.Error("invalid form should not submit")
	}
	if got := p.(loginPage).statusMsg; got != "email is required" {
		t.Errorf("statusMsg = %q, want %q", got, "email is required")
	}
}

func TestLoginPrefilledAfterVerify(t *testing.T) {
	p := newLoginPage(testDeps(t, ""), params{"email": "ana@example.com", "verified": "1"})
	if got := p.form.value(loginEmail); got != "ana@example.com" {
		t.Errorf("email = %q, want prefilled", got)
	}
	if p.form.focus != loginPassword {
		t.Errorf("focus = %d, want password field", p.form.focus)
	}
	if !strings.Contains(p.View(), "account verified") {
		t.Error("View() should show the verified notice")
	}
}

func TestLoginFlow(t *testing.T) {
	tok := testToken(t, domain.RolePetOwner, 0)
	c := apiServer(t, map[string]http.HandlerFunc{
		"POST /api/auth/login": func(w http.ResponseWriter, r *http.Request) {
			var req client.LoginRequest
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			if req.Password != "secret1" {
				w.WriteHeader(http.StatusUnauthorized)
				io.WriteString(w, `{"error":"invalid credentials"}`) //nolint:errcheck
				return
			}
			jsonReply(map[string]string{"token": tok})(w, r)
		},
		"GET /api/users/me/pets": jsonReply([]domain.Pet{}),
	})
	d := testDeps(t, "")
	d.client = c

	var p page = newLoginPage(d, params{})
	p = typeInto(p, "ana@example.com")
	p, _ = press(p, "tab")
	p = typeInto(p, "secret1")
	p, cmd := press(p, "enter")
	if cmd == nil {
		t.Fatal("expected a login command")
	}
	done, ok := cmd().(loginDoneMsg)
	if !ok {
		t.Fatalf("expected loginDoneMsg, got %T", cmd())
	}
	if done.err != nil {
		t.Fatalf("login error: %v", done.err)
	}
	// An owner without pets is sent to the profile form first.
	if done.target != "/owner/profile" {
		t.Errorf("target = %q, want %q", done.target, "/owner/profile")
	}
	if id := d.session.Identity(); id == nil || id.Role != domain.RolePetOwner {
		t.Errorf("identity = %+v, want a pet owner", id)
	}
	_, cmd = p.Update(done)
	if got := navigatesTo(t, cmd); got != "/owner/profile" {
		t.Errorf("navigate = %q, want %q", got, "/owner/profile")
	}
}

func TestLoginErrorText(t *testing.T) {
	got := loginErrorText(&client.HTTPError{StatusCode: 401, Message: "invalid credentials"})
	if !strings.Contains(got, "wrong email or password") {
		t.Errorf("401 text = %q", got)
	}
	got = loginErrorText(errors.New("client.Login: no token in response"))
	if got != "no token in response" {
		t.Errorf("text = %q, want %q", got, "no token in response")
	}
}

func TestPostLoginTarget(t *testing.T) {
	c := apiServer(t, map[string]http.HandlerFunc{
		"GET /api/users/me/professional-profile": jsonReply(domain.ProfessionalEntity{Name: "Clínica Sol"}),
		"GET /api/users/me/pets":                 jsonReply([]domain.Pet{{Name: "Luna"}}),
	})
	empty := apiServer(t, map[string]http.HandlerFunc{})

	tests := []struct {
		name string
		c    *client.Client
		role domain.Role
		want string
	}{
		{"professional with profile", c, domain.RoleProfessional, "/vet"},
		{"professional without profile", empty, domain.RoleProfessional, "/vet/profile"},
		{"owner with pets", c, domain.RolePetOwner, "/owner"},
		{"owner without pets", empty, domain.RolePetOwner, "/owner/profile"},
		{"admin", c, domain.RoleAdmin, "/map"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := postLoginTarget(t.Context(), tt.c, &session.Identity{Role: tt.role})
			if got != tt.want {
				t.Errorf("postLoginTarget = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegisterStoresPendingAndVerifyFinishes(t *testing.T) {
	var registered client.RegisterRequest
	c := apiServer(t, map[string]http.HandlerFunc{
		"POST /api/auth/register": func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&registered) //nolint:errcheck
			w.WriteHeader(http.StatusCreated)
		},
		"POST /api/auth/verify": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
			if body["code"] != "123456" {
				w.WriteHeader(http.StatusBadRequest)
				io.WriteString(w, `{"error":"invalid code"}`) //nolint:errcheck
				return
			}
			w.WriteHeader(http.StatusOK)
		},
	})
	d := testDeps(t, "")
	d.client = c

	var p page = newRegisterPage(d)
	p = typeInto(p, "Clínica Sol")
	p, _ = press(p, "tab")
	p = typeInto(p, "sol@example.com")
	p, _ = press(p, "tab")
	p = typeInto(p, "secret1")
	p, _ = press(p, "tab", "right", "tab", "right")
	p, cmd := press(p, "enter")
	if cmd == nil {
		t.Fatalf("expected register command, status = %q", p.(registerPage).statusMsg)
	}
	p, cmd = p.Update(cmd())
	if got := navigatesTo(t, cmd); got != "/verify" {
		t.Fatalf("navigate = %q, want /verify", got)
	}
	if registered.Role != domain.RoleProfessional || registered.SelectedPlan != planPremium || !registered.HasTrial {
		t.Errorf("register request = %+v, want professional on PREMIUM with trial", registered)
	}
	email, role := d.session.Pending()
	if email != "sol@example.com" || role != domain.RoleProfessional {
		t.Errorf("pending = %q/%q", email, role)
	}

	var v page = newVerifyPage(d)
	if !v.editing() {
		t.Fatal("verify page should capture digits")
	}
	v = typeInto(v, "12a3456789")
	if got := v.(verifyPage).code; got != "123456" {
		t.Errorf("code = %q, want %q (digits only, max 6)", got, "123456")
	}
	v, cmd = press(v, "enter")
	v, cmd = v.Update(cmd())
	target := navigatesTo(t, cmd)
	if !strings.HasPrefix(target, "/login?") || !strings.Contains(target, "verified=1") {
		t.Errorf("navigate = %q, want login with verified flag", target)
	}
	if email, _ := d.session.Pending(); email != "" {
		t.Errorf("pending email = %q, want cleared", email)
	}
}

func TestRegisterAndVerifyErrorsStayOnPage(t *testing.T) {
	err := &client.HTTPError{StatusCode: http.StatusConflict, Message: "email already registered"}

	var reg page = newRegisterPage(testDeps(t, ""))
	reg, cmd := reg.Update(registeredMsg{err: err})
	if cmd != nil {
		t.Error("a failed registration should not navigate")
	}
	if got := reg.(registerPage).statusMsg; got != err.Error() {
		t.Errorf("statusMsg = %q, want %q", got, err.Error())
	}

	var ver page = newVerifyPage(testDeps(t, ""))
	ver, cmd = ver.Update(verifiedMsg{err: err})
	if cmd != nil {
		t.Error("a failed verification should not navigate")
	}
	if got := ver.(verifyPage).statusMsg; got != err.Error() {
		t.Errorf("statusMsg = %q, want %q", got, err.Error())
	}
}

func TestVerifyWithoutPending(t *testing.T) {
	var p page = newVerifyPage(testDeps(t, ""))
	if p.editing() {
		t.Error("nothing to type without a pending registration")
	}
	_, cmd := press(p, "r")
	if got := navigatesTo(t, cmd); got != "/register" {
		t.Errorf("navigate = %q, want /register", got)
	}
}

func TestPlansPaymentActions(t *testing.T) {
	var opened, copied string
	p := newPlansPage(testDeps(t, ""), params{"payment_url": "https://pay.example.com/x", "reason": "trial ended"})
	p.open = func(u string) error { opened = u; return nil }
	p.copy = func(u string) error { copied = u; return errors.New("no clipboard") }

	var pg page = p
	pg, cmd := press(pg, "o")
	pg, _ = pg.Update(cmd())
	if opened != "https://pay.example.com/x" {
		t.Errorf("opened = %q", opened)
	}
	if got := pg.(plansPage).statusMsg; got != "opened in your browser" {
		t.Errorf("statusMsg = %q", got)
	}

	pg, cmd = press(pg, "c")
	pg, _ = pg.Update(cmd())
	if copied != "https://pay.example.com/x" {
		t.Errorf("copied = %q", copied)
	}
	if got := pg.(plansPage).statusMsg; !strings.Contains(got, "copy failed") {
		t.Errorf("statusMsg = %q, want copy failure", got)
	}
	view := pg.View()
	for _, want := range []string{"trial ended", "pay.example.com", "PREMIUM"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestMapResultsSortedAndNavigable(t *testing.T) {
	var p page = newMapPage(testDeps(t, ""), params{"city": "Madrid"})
	p, _ = p.Update(mapResultsMsg{results: []domain.ProfileSummary{
		{ID: "a", Name: "Low", Rating: 3.1},
		{ID: "b", Name: "High", Rating: 4.9},
	}})
	_, cmd := press(p, "enter")
	if got := navigatesTo(t, cmd); got != "/vets/b" {
		t.Errorf("enter = %q, want the best rated first", got)
	}
	_, cmd = press(p, "j", "b")
	if got := navigatesTo(t, cmd); got != "/book/a" {
		t.Errorf("b = %q, want /book/a", got)
	}
}

func TestMapPaymentRequired(t *testing.T) {
	var p page = newMapPage(testDeps(t, ""), params{"city": "Madrid"})
	_, cmd := p.Update(mapResultsMsg{err: &client.PaymentRequiredError{PaymentURL: "https://pay"}})
	if got := navigatesTo(t, cmd); !strings.HasPrefix(got, "/plans?") {
		t.Errorf("navigate = %q, want plans", got)
	}
}

func TestVetDetailCopyPhone(t *testing.T) {
	var copied string
	p := newVetDetailPage(testDeps(t, ""), "v1")
	p.copy = func(s string) error { copied = s; return nil }
	var pg page = p
	pg, _ = pg.Update(vetDetailMsg{detail: &domain.ProfileDetail{ProfessionalEntity: domain.ProfessionalEntity{
		Name: "Clínica Sol",
		ProfileData: domain.ProfileData{
			Contact:      domain.Contact{Phone: "+34 600 000 000"},
			WorkingHours: map[string]domain.WorkingDay{"monday": {Active: true, Start: "09:00", End: "18:00"}},
			Pricing:      domain.Pricing{Rates: []domain.Service{{Name: "consultation", Price: "35"}}},
		},
	}}})
	pg, cmd := press(pg, "c")
	pg, _ = pg.Update(cmd())
	if copied != "+34 600 000 000" {
		t.Errorf("copied = %q", copied)
	}
	view := pg.View()
	for _, want := range []string{"Clínica Sol", "phone copied", "09:00", "consultation"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	_, cmd = press(pg, "b")
	if got := navigatesTo(t, cmd); got != "/book/v1" {
		t.Errorf("b = %q, want /book/v1", got)
	}
}

func TestBookWithoutPets(t *testing.T) {
	var p page = newBookPage(testDeps(t, testToken(t, domain.RolePetOwner, 0)), uuid.NewString())
	p, _ = p.Update(bookPetsMsg{})
	if p.editing() {
		t.Error("no form without pets")
	}
	_, cmd := press(p, "a")
	if got := navigatesTo(t, cmd); !strings.HasPrefix(got, "/owner/profile") {
		t.Errorf("a = %q, want the profile form", got)
	}
}

func TestBookValidation(t *testing.T) {
	d := testDeps(t, testToken(t, domain.RolePetOwner, 0))
	pet := domain.Pet{ID: uuid.New(), Name: "Luna", Species: "Dog"}

	tests := []struct {
		name string
		date string
		time string
		want string
	}{
		{"bad date", "tomorrow", "10:00", "date must be YYYY-MM-DD and time HH:MM"},
		{"past", "2026-05-01", "10:00", "pick a time in the future"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newBookPage(d, uuid.NewString())
			pg, _ := p.Update(bookPetsMsg{pets: []domain.Pet{pet}})
			bp := pg.(bookPage)
			bp.form = bp.form.set(bookDate, tt.date).set(bookTime, tt.time)
			pg, cmd := bp.Update(key("ctrl+s"))
			if cmd != nil {
				t.Error("invalid booking should not be sent")
			}
			if got := pg.(bookPage).statusMsg; got != tt.want {
				t.Errorf("statusMsg = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("unknown professional", func(t *testing.T) {
		pg, _ := newBookPage(d, "not-a-uuid").Update(bookPetsMsg{pets: []domain.Pet{pet}})
		pg, _ = pg.Update(key("ctrl+s"))
		if got := pg.(bookPage).statusMsg; got != "unknown professional" {
			t.Errorf("statusMsg = %q", got)
		}
	})
}

func TestBookSubmits(t *testing.T) {
	profID := uuid.New()
	pet := domain.Pet{ID: uuid.New(), Name: "Luna", Species: "Dog"}
	var got client.CreateAppointmentRequest
	c := apiServer(t, map[string]http.HandlerFunc{
		"POST /api/users/me/appointments": func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
			jsonReply(domain.Appointment{ID: uuid.New(), Status: domain.AppointmentPending})(w, r)
		},
	})
	d := testDeps(t, testToken(t, domain.RolePetOwner, 0))
	d.client = c

	pg, _ := newBookPage(d, profID.String()).Update(bookPetsMsg{pets: []domain.Pet{pet}})
	pg, cmd := pg.Update(key("ctrl+s"))
	if cmd == nil {
		t.Fatalf("expected booking command, status = %q", pg.(bookPage).statusMsg)
	}
	_, cmd = pg.Update(cmd())
	if nav := navigatesTo(t, cmd); nav != "/owner/appointments" {
		t.Errorf("navigate = %q, want /owner/appointments", nav)
	}
	if got.ProfessionalID != profID || got.PetID != pet.ID {
		t.Errorf("request = %+v", got)
	}
	want := time.Date(2026, 6, 2, 10, 0, 0, 0, time.Local)
	if !got.AppointmentDate.Equal(want) {
		t.Errorf("date = %v, want %v (tomorrow 10:00 local)", got.AppointmentDate, want)
	}
}
