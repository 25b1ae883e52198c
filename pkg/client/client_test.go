package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/veterimap/veterimap/pkg/domain"
)

func TestGetMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/me" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"}) //nolint:errcheck
			return
		}
		level := 2
		json.NewEncoder(w).Encode(MeResponse{ //nolint:errcheck
			User:        domain.User{Email: "vet@example.com", Role: domain.RoleProfessional},
			HasProfile:  true,
			AccessLevel: &level,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("test-token"))
	me, err := c.GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe() error: %v", err)
	}
	if me.User.Role != domain.RoleProfessional {
		t.Errorf("Role = %q, want %q", me.User.Role, domain.RoleProfessional)
	}
	if !me.HasProfile {
		t.Error("HasProfile = false, want true")
	}
	if me.AccessLevel == nil || *me.AccessLevel != 2 {
		t.Errorf("AccessLevel = %v, want 2", me.AccessLevel)
	}
}

func TestGetMe_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"}) //nolint:errcheck
	}))
	defer srv.Close()

	var called int
	var rejected string
	c := New(srv.URL, StaticToken("bad-token"), WithUnauthorizedHandler(func(token string) {
		called++
		rejected = token
	}))
	_, err := c.GetMe(context.Background())
	if err == nil {
		t.Fatal("expected error for unauthorized request")
	}
	if got := err.Error(); !strings.Contains(got, "HTTP 401") {
		t.Errorf("error = %q, want it to contain 'HTTP 401'", got)
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Error("IsStatus(err, 401) = false, want true")
	}
	if called != 1 {
		t.Errorf("unauthorized handler called %d times, want 1", called)
	}
	if rejected != "bad-token" {
		t.Errorf("handler token = %q, want bad-token", rejected)
	}
}

func TestNoTokenSendsNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		json.NewEncoder(w).Encode([]domain.Pet{}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	if _, err := c.ListMyPets(context.Background()); err != nil {
		t.Fatalf("ListMyPets() error: %v", err)
	}
}

func TestPaymentRequired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		io.WriteString(w, `{"error":"plan expired","payment_url":"https://pay.example.com/checkout/abc"}`) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	_, err := c.CreateAppointment(context.Background(), CreateAppointmentRequest{
		ProfessionalID:  uuid.New(),
		PetID:           uuid.New(),
		AppointmentDate: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	if err == nil {
		t.Fatal("expected error for 402")
	}
	pr, ok := AsPaymentRequired(err)
	if !ok {
		t.Fatalf("AsPaymentRequired(%v) = false, want true", err)
	}
	if pr.PaymentURL != "https://pay.example.com/checkout/abc" {
		t.Errorf("PaymentURL = %q, want checkout url", pr.PaymentURL)
	}
	if pr.Message != "plan expired" {
		t.Errorf("Message = %q, want %q", pr.Message, "plan expired")
	}
	if !IsStatus(err, http.StatusPaymentRequired) {
		t.Error("IsStatus(err, 402) = false, want true")
	}
}

func TestPaymentRequired_PlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		io.WriteString(w, "subscription required") //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	err := c.Do(context.Background(), Request{Path: "medical-histories"}, nil)
	pr, ok := AsPaymentRequired(err)
	if !ok {
		t.Fatalf("AsPaymentRequired(%v) = false, want true", err)
	}
	if pr.PaymentURL != "" {
		t.Errorf("PaymentURL = %q, want empty", pr.PaymentURL)
	}
	if pr.Message != "subscription required" {
		t.Errorf("Message = %q, want %q", pr.Message, "subscription required")
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"json error field", http.StatusBadRequest, `{"error":"email already registered"}`, "email already registered"},
		{"plain text", http.StatusConflict, "duplicate\n", "duplicate"},
		{"empty body", http.StatusNotFound, "", "Not Found"},
		{"json without error", http.StatusBadRequest, `{"detail":"x"}`, `{"detail":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body) //nolint:errcheck
			}))
			defer srv.Close()

			c := New(srv.URL, nil)
			err := c.Do(context.Background(), Request{Path: "/auth/register", Method: http.MethodPost}, nil)
			var he *HTTPError
			if !errors.As(err, &he) {
				t.Fatalf("error = %v, want *HTTPError", err)
			}
			if he.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", he.StatusCode, tt.status)
			}
			if he.Message != tt.want {
				t.Errorf("Message = %q, want %q", he.Message, tt.want)
			}
		})
	}
}

func TestEmptyBodyDecodesToEmptyObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	var out map[string]any
	if err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "notifications/read"}, &out); err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Errorf("out = %v, want empty map", out)
	}

	var raw json.RawMessage
	if err := c.Do(context.Background(), Request{Path: "notifications/read"}, &raw); err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if string(raw) != "{}" {
		t.Errorf("raw = %q, want {}", raw)
	}

	var anyOut any
	if err := c.Do(context.Background(), Request{Path: "notifications/read"}, &anyOut); err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if m, ok := anyOut.(map[string]any); !ok || len(m) != 0 {
		t.Errorf("any out = %#v, want empty map", anyOut)
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := c.Do(context.Background(), Request{Path: "notifications/read"}, &resp); err != nil {
		t.Fatalf("Do() into struct error: %v", err)
	}

	var list []string
	if err := c.Do(context.Background(), Request{Path: "notifications/read"}, &list); err != nil {
		t.Fatalf("Do() into slice error: %v", err)
	}
	if list != nil {
		t.Errorf("list = %v, want nil", list)
	}
}

func TestPathResolution(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		io.WriteString(w, "[]") //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL+"/", nil)
	for _, p := range []string{"users/me/pets", "/users/me/pets"} {
		var out []domain.Pet
		if err := c.Do(context.Background(), Request{Path: p}, &out); err != nil {
			t.Fatalf("Do(%q) error: %v", p, err)
		}
	}
	if len(paths) != 2 || paths[0] != paths[1] || paths[0] != "/api/users/me/pets" {
		t.Errorf("paths = %v, want both /api/users/me/pets", paths)
	}
	if got, want := c.URL("users/me/pets"), srv.URL+"/api/users/me/pets"; got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}

func TestEnvelopeUnwrap(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bare array", `[{"id":1}]`, `[{"id":1}]`},
		{"data envelope", `{"data":[{"id":1}]}`, `[{"id":1}]`},
		{"envelope with meta", `{"data":{"id":1},"message":"ok"}`, `{"id":1}`},
		{"payload with data field", `{"data":"x","name":"y"}`, `{"data":"x","name":"y"}`},
		{"not json", `hello`, `hello`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(unwrapEnvelope([]byte(tt.body))); got != tt.want {
				t.Errorf("unwrapEnvelope(%s) = %s, want %s", tt.body, got, tt.want)
			}
		})
	}
}

func TestEnvelopedList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"data":[{"id":"`+uuid.Nil.String()+`","title":"New booking","is_read":false}]}`) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	ns, err := c.ListNotifications(context.Background())
	if err != nil {
		t.Fatalf("ListNotifications() error: %v", err)
	}
	if len(ns) != 1 || ns[0].Title != "New booking" {
		t.Errorf("notifications = %+v, want one titled New booking", ns)
	}
}

func TestHeaderOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "text/plain" {
			t.Errorf("Content-Type = %q, want text/plain", got)
		}
		if got := r.Header.Get("X-Trace"); got != "abc" {
			t.Errorf("X-Trace = %q, want abc", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	h := http.Header{}
	h.Set("Content-Type", "text/plain")
	h.Set("X-Trace", "abc")
	if err := c.Do(context.Background(), Request{Path: "me", Header: h}, nil); err != nil {
		t.Fatalf("Do() error: %v", err)
	}
}

func TestHeaderOverrideWithBody(t *testing.T) {
	tests := []struct {
		name string
		body any
		want string
	}{
		{"map is encoded", map[string]string{"a": "b"}, `{"a":"b"}`},
		{"string is sent as is", "plain note", "plain note"},
		{"bytes are sent as is", []byte("raw"), "raw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotType, gotBody string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotType = r.Header.Get("Content-Type")
				b, _ := io.ReadAll(r.Body)
				gotBody = string(b)
				w.WriteHeader(http.StatusNoContent)
			}))
			defer srv.Close()

			c := New(srv.URL, StaticToken("tok"))
			h := http.Header{}
			h.Set("Content-Type", "text/plain")
			req := Request{Method: http.MethodPost, Path: "notes", Header: h, Body: tt.body}
			if err := c.Do(context.Background(), req, nil); err != nil {
				t.Fatalf("Do() error: %v", err)
			}
			if gotType != "text/plain" {
				t.Errorf("Content-Type = %q, want text/plain", gotType)
			}
			if gotBody != tt.want {
				t.Errorf("body = %q, want %q", gotBody, tt.want)
			}
		})
	}
}

func TestCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "{}") //nolint:errcheck
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.URL, StaticToken("tok"))
	if _, err := c.GetMe(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("GetMe() error = %v, want context.Canceled", err)
	}
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			http.NotFound(w, r)
			return
		}
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":"invalid credentials"}`) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "jwt-" + req.Email}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	tok, err := c.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "secret"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if tok != "jwt-a@b.c" {
		t.Errorf("token = %q, want %q", tok, "jwt-a@b.c")
	}

	_, err = c.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "wrong"})
	var he *HTTPError
	if !errors.As(err, &he) || he.Message != "invalid credentials" {
		t.Errorf("Login() error = %v, want invalid credentials", err)
	}
}

func TestSearchMap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("city") != "Madrid" || q.Get("type") != domain.EntityIndividual || q.Get("specialty") != "exotics" {
			t.Errorf("query = %v", q)
		}
		io.WriteString(w, `{"results":[{"id":"p1","name":"Dr. Ruiz","lat":40.4,"lng":-3.7}]}`) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	res, err := c.SearchMap(context.Background(), MapQuery{City: "Madrid", EntityType: domain.EntityIndividual, Specialty: "exotics"})
	if err != nil {
		t.Fatalf("SearchMap() error: %v", err)
	}
	if len(res) != 1 || !res[0].Located() {
		t.Errorf("results = %+v, want one located result", res)
	}
}

func TestUpdateAppointmentStatus(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/users/me/appointments/status" {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		if body["appointment_id"] != id.String() || body["status"] != string(domain.AppointmentConfirmed) {
			t.Errorf("body = %v", body)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	if err := c.UpdateAppointmentStatus(context.Background(), id, domain.AppointmentConfirmed); err != nil {
		t.Fatalf("UpdateAppointmentStatus() error: %v", err)
	}
}

func TestListMyAppointments_DateFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("date"); got != "2026-05-04" {
			t.Errorf("date = %q, want 2026-05-04", got)
		}
		io.WriteString(w, "[]") //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	if _, err := c.ListMyAppointments(context.Background(), time.Date(2026, 5, 4, 15, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("ListMyAppointments() error: %v", err)
	}
}

type countingTransport struct {
	calls int
	next  http.RoundTripper
}

func (t *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	t.calls++
	return t.next.RoundTrip(r)
}

func TestWithHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	rt := &countingTransport{next: http.DefaultTransport}
	c := New(srv.URL, nil, WithHTTPClient(&http.Client{Transport: rt}))
	if err := c.MarkNotificationsRead(context.Background()); err != nil {
		t.Fatalf("MarkNotificationsRead: %v", err)
	}
	if rt.calls != 1 {
		t.Errorf("transport calls = %d, want 1", rt.calls)
	}
}
