package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAdminConfig(t *testing.T) {
	h := newTestHub(t, fastConfig())
	router := Routes(h, "")

	req := httptest.NewRequest(http.MethodPost, "/admin/config",
		strings.NewReader(`{"scoreToWin":3,"countdownIntervalMs":250,"fieldWidth":800,"projectileSize":6}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST = %d %s", rec.Code, rec.Body)
	}
	if c := h.Config(); c.ScoreToWin != 3 || c.CountdownInterval != 250*time.Millisecond || c.TickRate != 200 ||
		c.FieldWidth != 800 || c.ProjectileSize != 6 || c.FieldHeight != 600 {
		t.Fatalf("config = %+v", c)
	}

	for _, body := range []string{`{"tickRate":0}`, `{"tickRate":2000000000}`, `{"fieldWidth":10}`} {
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/config", strings.NewReader(body)))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("POST %s = %d, want 422", body, rec.Code)
		}
	}
	if c := h.Config(); c.TickRate != 200 || c.FieldWidth != 800 {
		t.Fatal("invalid patch applied")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/config", nil))
	var got Config
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ScoreToWin != 3 {
		t.Fatalf("GET scoreToWin = %d", got.ScoreToWin)
	}
}

func TestAdminSessionsAndMetrics(t *testing.T) {
	h := newTestHub(t, fastConfig())
	router := Routes(h, "")
	a, b, c := newFakeConn("A"), newFakeConn("B"), newFakeConn("C")
	h.OnConnect(a)
	h.OnConnect(b)
	h.OnConnect(c)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	var list []SessionInfo
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Left != "A" || list[0].Right != "B" {
		t.Fatalf("sessions = %+v", list)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+list[0].ID, nil))
	var one SessionInfo
	if err := json.NewDecoder(rec.Body).Decode(&one); err != nil {
		t.Fatal(err)
	}
	if one.ID != list[0].ID || one.Left != "A" {
		t.Fatalf("session = %+v", one)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	var m struct {
		Server   map[string]int64          `json:"server"`
		Waiting  int                       `json:"waiting"`
		Queue    []string                  `json:"queue"`
		Live     int                       `json:"live"`
		Sessions map[string]map[string]any `json:"sessions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	if m.Waiting != 1 || len(m.Queue) != 1 || m.Queue[0] != "C" || m.Live != 1 || m.Server["sessions_created"] != 1 || len(m.Sessions) != 1 {
		t.Fatalf("metrics = %+v", m)
	}
}
