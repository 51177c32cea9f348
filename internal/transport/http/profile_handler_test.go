package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/kidsevents/marketplace_backend/internal/domain"
	"github.com/kidsevents/marketplace_backend/internal/logging"
	"github.com/kidsevents/marketplace_backend/internal/util"
)

const testAdminKey = "kids-events-admin-key"

type stubCatalog struct {
	mu          sync.Mutex
	items       []domain.ProfileListItem
	err         error
	forced      []bool
	requestIDs  []string
	invalidated int
}

func (s *stubCatalog) PublicProfiles(ctx context.Context, forceRefresh bool) ([]domain.ProfileListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced = append(s.forced, forceRefresh)
	s.requestIDs = append(s.requestIDs, logging.RequestID(ctx))
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func (s *stubCatalog) Invalidate() {
	s.mu.Lock()
	s.invalidated++
	s.mu.Unlock()
}

type profileRouter struct {
	e       *echo.Echo
	catalog *stubCatalog
	tokens  *util.JWTManager
}

func newProfileRouter(t *testing.T, limiter *rate.Limiter) *profileRouter {
	t.Helper()
	key, err := util.DeriveAPIKey(testAdminKey)
	if err != nil {
		t.Fatalf("DeriveAPIKey returned error: %v", err)
	}
	tokens := util.NewJWTManager("handler-test-secret", time.Hour)
	catalog := &stubCatalog{items: []domain.ProfileListItem{{
		ID:       uuid.New(),
		Name:     "Clown Bob",
		Slug:     "clown-bob",
		Category: "animator",
		Rating:   4.8,
		Tags:     []string{},
		Photos:   []string{},
	}}}

	e := NewRouter([]string{"*"})
	RegisterProfiles(e, catalog, limiter, AdminCredentials{Tokens: tokens, APIKey: key})
	return &profileRouter{e: e, catalog: catalog, tokens: tokens}
}

func (r *profileRouter) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.e.ServeHTTP(rec, req)
	return rec
}

func TestListPublicProfiles(t *testing.T) {
	r := newProfileRouter(t, nil)

	rec := r.do(httptest.NewRequest(http.MethodGet, "/api/profiles/public", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != publicProfilesCacheControl {
		t.Fatalf("unexpected Cache-Control %q", got)
	}

	var body struct {
		Profiles []domain.ProfileListItem `json:"profiles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Profiles) != 1 || body.Profiles[0].Slug != "clown-bob" {
		t.Fatalf("unexpected profiles %+v", body.Profiles)
	}
	if len(r.catalog.forced) != 1 || r.catalog.forced[0] {
		t.Fatalf("expected a single non-forced call, got %v", r.catalog.forced)
	}

	requestID := rec.Header().Get(echo.HeaderXRequestID)
	if requestID == "" {
		t.Fatalf("expected a request id header")
	}
	if r.catalog.requestIDs[0] != requestID {
		t.Fatalf("expected request id %q on the context, got %q", requestID, r.catalog.requestIDs[0])
	}
}

func TestListPublicProfilesRefreshFlag(t *testing.T) {
	cases := map[string]bool{
		"":         false,
		"1":        true,
		"true":     true,
		"TRUE":     true,
		"0":        false,
		"false":    false,
		"nonsense": false,
	}
	for raw, want := range cases {
		r := newProfileRouter(t, nil)
		target := "/api/profiles/public"
		if raw != "" {
			target += "?refresh=" + raw
		}
		rec := r.do(httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("refresh=%q: expected 200, got %d", raw, rec.Code)
		}
		if got := r.catalog.forced[0]; got != want {
			t.Fatalf("refresh=%q: expected force %v, got %v", raw, want, got)
		}
	}
}

func TestListPublicProfilesThrottlesForcedRefresh(t *testing.T) {
	r := newProfileRouter(t, rate.NewLimiter(rate.Every(time.Hour), 1))

	for i := 0; i < 3; i++ {
		rec := r.do(httptest.NewRequest(http.MethodGet, "/api/profiles/public?refresh=1", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	want := []bool{true, false, false}
	for i, got := range r.catalog.forced {
		if got != want[i] {
			t.Fatalf("expected forced calls %v, got %v", want, r.catalog.forced)
		}
	}
}

func TestListPublicProfilesFailure(t *testing.T) {
	r := newProfileRouter(t, nil)
	r.catalog.err = errors.New("public profiles unavailable: db down")

	rec := r.do(httptest.NewRequest(http.MethodGet, "/api/profiles/public", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "unable to load profiles" {
		t.Fatalf("unexpected error body %v", body)
	}
	if rec.Header().Get("Cache-Control") == publicProfilesCacheControl {
		t.Fatalf("error responses must not be cacheable")
	}
}

func TestInvalidateProfileCache(t *testing.T) {
	r := newProfileRouter(t, nil)
	adminToken, _, err := r.tokens.Generate("ops@kids.events", util.RoleAdmin)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	editorToken, _, err := r.tokens.Generate("editor@kids.events", "editor")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	cases := []struct {
		name   string
		header string
		value  string
		status int
	}{
		{name: "no credentials", status: http.StatusUnauthorized},
		{name: "wrong key", header: headerAdminKey, value: "not-the-admin-key-at-all", status: http.StatusUnauthorized},
		{name: "malformed auth", header: echo.HeaderAuthorization, value: "Token abc", status: http.StatusUnauthorized},
		{name: "garbage token", header: echo.HeaderAuthorization, value: "Bearer abc.def.ghi", status: http.StatusUnauthorized},
		{name: "non admin token", header: echo.HeaderAuthorization, value: "Bearer " + editorToken, status: http.StatusForbidden},
		{name: "api key", header: headerAdminKey, value: testAdminKey, status: http.StatusNoContent},
		{name: "admin token", header: echo.HeaderAuthorization, value: "Bearer " + adminToken, status: http.StatusNoContent},
	}

	expected := 0
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/profiles/cache/invalidate", nil)
		if tc.header != "" {
			req.Header.Set(tc.header, tc.value)
		}
		rec := r.do(req)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.status, rec.Code, rec.Body.String())
		}
		if tc.status == http.StatusNoContent {
			expected++
		}
		if r.catalog.invalidated != expected {
			t.Fatalf("%s: expected %d invalidations, got %d", tc.name, expected, r.catalog.invalidated)
		}
	}
}

func TestHealth(t *testing.T) {
	r := newProfileRouter(t, nil)
	rec := r.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
