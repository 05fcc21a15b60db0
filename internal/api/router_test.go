package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/slconcert/theatre-system/internal/api/handler"
	"github.com/slconcert/theatre-system/internal/core/service"
	"github.com/slconcert/theatre-system/internal/infrastructure/db/memory"
)

const testSecret = "test-secret"

type testServer struct {
	t *testing.T
	e *echo.Echo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()
	log := zerolog.Nop()
	e := NewRouter(Dependencies{
		Auth:      service.NewAuthService(store, testSecret, time.Hour, log),
		Plays:     service.NewPlayService(store, nil, log),
		Actors:    service.NewActorService(store, log),
		Directors: service.NewDirectorService(store, log),
		Showtimes: service.NewShowtimeService(store, nil, log),
		Customers: service.NewCustomerService(store, nil, log),
		Tickets:   service.NewTicketService(store, nil, nil, log),
		Health:    map[string]handler.Pinger{"memory": store},
		JWTSecret: testSecret,
		Log:       log,
	})
	return &testServer{t: t, e: e}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// expect asserts the status and decodes the body into out when non-nil.
func (s *testServer) expect(rec *httptest.ResponseRecorder, code int, out any) {
	s.t.Helper()
	if rec.Code != code {
		s.t.Fatalf("expected %d, got %d: %s", code, rec.Code, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			s.t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
		}
	}
}

// login registers a user with role and returns its id and access token.
func (s *testServer) login(username, role string) (string, string) {
	s.t.Helper()
	var user struct {
		ID string `json:"id"`
	}
	body := `{"username":"` + username + `","password":"secret1","email":"` + username + `@example.com","role":"` + role + `"}`
	s.expect(s.do(http.MethodPost, "/register", "", body), http.StatusCreated, &user)

	form := url.Values{"username": {username}, "password": {"secret1"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	s.expect(rec, http.StatusOK, &tok)
	return user.ID, tok.AccessToken
}

type idDoc struct {
	ID string `json:"id"`
}

func TestRouter_BookingLifecycle(t *testing.T) {
	s := newTestServer(t)
	_, adminTok := s.login("root", "admin")
	_, staffTok := s.login("usher", "staff")
	aliceID, aliceTok := s.login("alice", "")

	var play idDoc
	s.expect(s.do(http.MethodPost, "/plays", aliceTok, `{"title":"Hamlet"}`), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodPost, "/plays", adminTok, `{"title":"Hamlet","duration_minutes":180}`), http.StatusCreated, &play)

	var show idDoc
	s.expect(s.do(http.MethodPost, "/showtimes", adminTok,
		`{"play_id":"`+play.ID+`","date_time":"2030-01-01T19:00:00Z","venue":"Main Hall","available_seats":1,"price":25}`),
		http.StatusCreated, &show)

	var cust struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
	}
	s.expect(s.do(http.MethodPost, "/customers", aliceTok, `{"name":"Alice","email":"alice@example.com"}`), http.StatusCreated, &cust)
	if cust.UserID != aliceID {
		t.Fatalf("profile should belong to the caller, got user_id %q", cust.UserID)
	}

	var ticket struct {
		ID     string  `json:"id"`
		Price  float64 `json:"price"`
		IsUsed bool    `json:"is_used"`
	}
	s.expect(s.do(http.MethodPost, "/tickets", aliceTok,
		`{"showtime_id":"`+show.ID+`","customer_id":"`+cust.ID+`","seat_number":"A1"}`),
		http.StatusCreated, &ticket)
	if ticket.Price != 25 {
		t.Fatalf("price should default to the showtime price, got %v", ticket.Price)
	}

	var seats struct {
		AvailableSeats int `json:"available_seats"`
	}
	s.expect(s.do(http.MethodGet, "/showtimes/"+show.ID+"/available_seats", aliceTok, ""), http.StatusOK, &seats)
	if seats.AvailableSeats != 0 {
		t.Fatalf("expected 0 seats left, got %d", seats.AvailableSeats)
	}

	s.expect(s.do(http.MethodPost, "/tickets", aliceTok,
		`{"showtime_id":"`+show.ID+`","customer_id":"`+cust.ID+`","seat_number":"A2"}`),
		http.StatusConflict, nil)

	var mine []idDoc
	s.expect(s.do(http.MethodGet, "/tickets/my-tickets", aliceTok, ""), http.StatusOK, &mine)
	if len(mine) != 1 || mine[0].ID != ticket.ID {
		t.Fatalf("unexpected my-tickets: %+v", mine)
	}

	s.expect(s.do(http.MethodPut, "/tickets/"+ticket.ID+"/mark-used", aliceTok, ""), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodPut, "/tickets/"+ticket.ID+"/mark-used", staffTok, ""), http.StatusOK, &ticket)
	if !ticket.IsUsed {
		t.Fatalf("ticket should be used")
	}
	s.expect(s.do(http.MethodPut, "/tickets/"+ticket.ID+"/mark-used", staffTok, ""), http.StatusConflict, nil)

	s.expect(s.do(http.MethodDelete, "/tickets/"+ticket.ID, aliceTok, ""), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodDelete, "/tickets/"+ticket.ID, adminTok, ""), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodGet, "/showtimes/"+show.ID+"/available_seats", aliceTok, ""), http.StatusOK, &seats)
	if seats.AvailableSeats != 1 {
		t.Fatalf("seat should be released, got %d", seats.AvailableSeats)
	}
}

func TestRouter_CustomerProfileOwnership(t *testing.T) {
	s := newTestServer(t)
	_, adminTok := s.login("root", "admin")
	bobID, bobTok := s.login("bob", "")
	_, carolTok := s.login("carol", "")

	s.expect(s.do(http.MethodPost, "/customers", carolTok, `{"user_id":"`+bobID+`","name":"Bob","email":"bob@example.com"}`), http.StatusForbidden, nil)

	var cust idDoc
	s.expect(s.do(http.MethodPost, "/customers", adminTok, `{"user_id":"`+bobID+`","name":"Bob","email":"bob@example.com"}`), http.StatusCreated, &cust)
	s.expect(s.do(http.MethodPost, "/customers", bobTok, `{"name":"Bob again","email":"bob@example.com"}`), http.StatusConflict, nil)

	s.expect(s.do(http.MethodGet, "/customers/me", bobTok, ""), http.StatusOK, nil)
	s.expect(s.do(http.MethodGet, "/customers/"+cust.ID, carolTok, ""), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodGet, "/customers/me", carolTok, ""), http.StatusNotFound, nil)
	s.expect(s.do(http.MethodGet, "/customers", bobTok, ""), http.StatusForbidden, nil)
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	s := newTestServer(t)
	_, tok := s.login("alice", "")

	rec := s.do(http.MethodGet, "/plays", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get(echo.HeaderWWWAuthenticate) != "Bearer" {
		t.Fatalf("missing WWW-Authenticate header")
	}

	var body map[string]string
	s.expect(s.do(http.MethodGet, "/plays/missing", tok, ""), http.StatusNotFound, &body)
	if !strings.Contains(body["error"], "missing") {
		t.Fatalf("error should name the id: %q", body["error"])
	}

	s.expect(s.do(http.MethodGet, "/showtimes/search?min_price=cheap", tok, ""), http.StatusBadRequest, nil)
	s.expect(s.do(http.MethodGet, "/plays?limit=many", tok, ""), http.StatusBadRequest, nil)
}

func TestRouter_ShowtimeSeatAdjustments(t *testing.T) {
	s := newTestServer(t)
	_, adminTok := s.login("root", "admin")

	var play, show idDoc
	s.expect(s.do(http.MethodPost, "/plays", adminTok, `{"title":"Godot"}`), http.StatusCreated, &play)
	s.expect(s.do(http.MethodPost, "/showtimes", adminTok,
		`{"play_id":"`+play.ID+`","date_time":"2030-05-01T20:00:00Z","venue":"Studio","available_seats":3,"price":10}`),
		http.StatusCreated, &show)

	var st struct {
		AvailableSeats int `json:"available_seats"`
	}
	s.expect(s.do(http.MethodPut, "/showtimes/"+show.ID+"/update_seats?seats_change=-2", adminTok, ""), http.StatusOK, &st)
	if st.AvailableSeats != 1 {
		t.Fatalf("expected 1 seat, got %d", st.AvailableSeats)
	}
	s.expect(s.do(http.MethodPut, "/showtimes/"+show.ID+"/update_seats?seats_change=-5", adminTok, ""), http.StatusBadRequest, nil)
	s.expect(s.do(http.MethodPut, "/showtimes/"+show.ID+"/update_seats", adminTok, ""), http.StatusBadRequest, nil)
	s.expect(s.do(http.MethodPost, "/showtimes", adminTok,
		`{"play_id":"`+play.ID+`","date_time":"2030-05-01T20:00:00Z","venue":"Studio","available_seats":-1}`),
		http.StatusUnprocessableEntity, nil)

	var upcoming []idDoc
	s.expect(s.do(http.MethodGet, "/showtimes/upcoming?limit=5", adminTok, ""), http.StatusOK, &upcoming)
	if len(upcoming) != 1 || upcoming[0].ID != show.ID {
		t.Fatalf("unexpected upcoming: %+v", upcoming)
	}
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	s.expect(s.do(http.MethodGet, "/health", "", ""), http.StatusOK, nil)

	var ready struct {
		Status       string                       `json:"status"`
		Dependencies map[string]map[string]string `json:"dependencies"`
	}
	s.expect(s.do(http.MethodGet, "/health/ready", "", ""), http.StatusOK, &ready)
	if ready.Status != "ok" || ready.Dependencies["memory"]["status"] != "ok" {
		t.Fatalf("unexpected readiness: %+v", ready)
	}
}
