package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestSupabase(t *testing.T, h http.HandlerFunc) *SupabaseClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewSupabaseClient(SupabaseConfig{
		URL:             srv.URL + "/",
		ServiceKey:      "service-key",
		RetryMax:        0,
		BreakerFailures: 3,
		BreakerTimeout:  time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewSupabaseClientRequiresURLAndKey(t *testing.T) {
	if _, err := NewSupabaseClient(SupabaseConfig{URL: "", ServiceKey: "k"}); !errors.Is(err, ErrBadInput) {
		t.Fatalf("missing url = %v", err)
	}
	if _, err := NewSupabaseClient(SupabaseConfig{URL: "https://x.supabase.co", ServiceKey: " "}); !errors.Is(err, ErrBadInput) {
		t.Fatalf("missing key = %v", err)
	}
}

func TestSupabaseMovieListParsesRows(t *testing.T) {
	c := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/movies" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("apikey") != "service-key" || r.Header.Get("Authorization") != "Bearer service-key" {
			t.Errorf("missing auth headers")
		}
		if got := r.URL.Query().Get("order"); got != "created_at.desc" {
			t.Errorf("order = %q", got)
		}
		io.WriteString(w, `[
			{"id":"1","title":"Alien","rating":8.5,"genres":["Horror","Sci-Fi"],"year":1979,"staff_pick":true,
			 "where_to_watch":{"hulu":"https://hulu.example/alien","max":null},"streaming_services":["hulu","max"],
			 "created_at":"2024-05-01T10:00:00Z"},
			{"id":"2","title":"Old Row","rating":null,"genres":null,"release_year":1968,"is_staff_pick":true},
			{"id":"3","title":"Both","staff_pick":false,"is_staff_pick":true}
		]`)
	})

	movies, err := NewSupabaseMovieService(c).List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(movies) != 3 {
		t.Fatalf("got %d movies", len(movies))
	}

	alien := movies[0]
	if alien.Rating == nil || *alien.Rating != 8.5 || !alien.StaffPick || alien.Year == nil || *alien.Year != 1979 {
		t.Errorf("alien parsed wrong: %+v", alien)
	}
	if u := alien.WhereToWatch["hulu"]; u == nil || *u != "https://hulu.example/alien" {
		t.Errorf("where_to_watch hulu = %v", u)
	}
	if u, ok := alien.WhereToWatch["max"]; !ok || u != nil {
		t.Errorf("where_to_watch max should be a nil entry")
	}
	if alien.CreatedAt.IsZero() {
		t.Error("created_at not parsed")
	}

	old := movies[1]
	if old.Rating != nil {
		t.Error("null rating should stay nil")
	}
	if old.Genres == nil || len(old.Genres) != 0 {
		t.Error("null genres should be an empty list")
	}
	if !old.StaffPick || old.Year == nil || *old.Year != 1968 {
		t.Errorf("legacy columns not read: %+v", old)
	}

	if movies[2].StaffPick {
		t.Error("staff_pick should win over is_staff_pick")
	}
}

func TestSupabaseMovieGetAndSetNotFound(t *testing.T) {
	c := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})
	svc := NewSupabaseMovieService(c)

	if _, err := svc.GetByID(context.Background(), "nope"); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("GetByID = %v", err)
	}
	if err := svc.SetStaffPick(context.Background(), "nope", true); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("SetStaffPick = %v", err)
	}
}

func TestSupabaseSetStaffPickSendsCanonicalColumn(t *testing.T) {
	c := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.URL.Query().Get("id"); got != "eq.m1" {
			t.Errorf("id filter = %q", got)
		}
		if r.Header.Get("Prefer") != "return=representation" {
			t.Error("missing Prefer header")
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"staff_pick":true`) || strings.Contains(string(body), "is_staff_pick") {
			t.Errorf("body = %s", body)
		}
		io.WriteString(w, `[{"id":"m1","title":"X","staff_pick":true}]`)
	})

	if err := NewSupabaseMovieService(c).SetStaffPick(context.Background(), "m1", true); err != nil {
		t.Fatal(err)
	}
}

func TestSupabaseErrorMessagePassthrough(t *testing.T) {
	c := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"code":"XX000","message":"relation exploded"}`)
	})

	_, err := NewSupabaseMovieService(c).List(context.Background())
	var se *SupabaseError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SupabaseError", err)
	}
	if se.Status != http.StatusInternalServerError || se.Message != "relation exploded" || se.Code != "XX000" {
		t.Errorf("unexpected error fields: %+v", se)
	}
}

func TestSupabaseBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	c := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	svc := NewSupabaseMovieService(c)

	for i := 0; i < 3; i++ {
		_, _ = svc.List(context.Background())
	}
	_, err := svc.List(context.Background())
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("err = %v, want ErrBackendUnavailable", err)
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3", calls.Load())
	}
}

func TestSupabaseClientErrorsDoNotTripBreaker(t *testing.T) {
	c := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"message":"bad filter"}`)
	})
	svc := NewSupabaseMovieService(c)

	for i := 0; i < 5; i++ {
		_, err := svc.List(context.Background())
		if errors.Is(err, ErrBackendUnavailable) {
			t.Fatalf("breaker opened on 4xx at call %d", i)
		}
	}
}

func TestSupabaseProfileGetOrCreateConflict(t *testing.T) {
	var gets atomic.Int32
	c := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if gets.Add(1) == 1 {
				io.WriteString(w, `[]`)
				return
			}
			io.WriteString(w, `[{"id":"u1","email":"u1@example.com","full_name":"Uma","onboarding_completed":true,
				"streaming_services":["netflix"],"favorite_genres":["drama"],"is_admin":true}]`)
		case http.MethodPost:
			w.WriteHeader(http.StatusConflict)
			io.WriteString(w, `{"code":"23505","message":"duplicate key"}`)
		}
	})

	prof, err := NewSupabaseProfileService(c).GetOrCreate(context.Background(), "u1", "u1@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if prof.DisplayName != "Uma" || !prof.IsAdmin || !prof.OnboardingCompleted {
		t.Errorf("profile = %+v", prof)
	}
}

func TestSupabaseProfileCompleteOnboarding(t *testing.T) {
	c := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"onboarding_completed":true`) {
			t.Errorf("body = %s", body)
		}
		io.WriteString(w, `[{"id":"u1","onboarding_completed":true,"streaming_services":["hulu"],"favorite_genres":["comedy"]}]`)
	})

	prof, err := NewSupabaseProfileService(c).CompleteOnboarding(context.Background(), "u1", []string{"hulu"}, []string{"comedy"})
	if err != nil {
		t.Fatal(err)
	}
	if !prof.OnboardingCompleted || prof.StreamingServices[0] != "hulu" {
		t.Errorf("profile = %+v", prof)
	}
}

func TestSupabaseProfileGetOrCreateBackfillsEmail(t *testing.T) {
	var patched atomic.Int32
	c := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, `[{"id":"u1","email":"","onboarding_completed":false}]`)
		case http.MethodPatch:
			patched.Add(1)
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), `"email":"u1@example.com"`) {
				t.Errorf("body = %s", body)
			}
			io.WriteString(w, `[{"id":"u1","email":"u1@example.com","onboarding_completed":false}]`)
		default:
			t.Errorf("unexpected %s", r.Method)
		}
	})
	svc := NewSupabaseProfileService(c)

	prof, err := svc.GetOrCreate(context.Background(), "u1", "u1@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if prof.Email != "u1@example.com" || patched.Load() != 1 {
		t.Fatalf("email = %q, patches = %d", prof.Email, patched.Load())
	}

	if _, err := svc.GetOrCreate(context.Background(), "u1", ""); err != nil {
		t.Fatal(err)
	}
	if patched.Load() != 1 {
		t.Errorf("empty email should not patch")
	}
}

func TestSupabaseProfileBackfillFailureKeepsStoredProfile(t *testing.T) {
	c := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			w.WriteHeader(http.StatusForbidden)
			io.WriteString(w, `{"message":"permission denied"}`)
			return
		}
		io.WriteString(w, `[{"id":"u1","email":""}]`)
	})

	prof, err := NewSupabaseProfileService(c).GetOrCreate(context.Background(), "u1", "u1@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if prof.Email != "" {
		t.Errorf("email = %q, want the stored empty value", prof.Email)
	}
}
