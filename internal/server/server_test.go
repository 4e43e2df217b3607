package server

import (
	"PortalServer/internal/config"
	"PortalServer/internal/entities"
	"PortalServer/internal/events"
	"PortalServer/internal/seed"
	"PortalServer/internal/server/handlers"
	"PortalServer/internal/server/middleware"
	"PortalServer/internal/store"
	"PortalServer/internal/transcribe"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type fakeTranscriber struct {
	text string
	err  error
}

func (f fakeTranscriber) Transcribe(ctx context.Context, clip transcribe.Clip) (string, error) {
	return f.text, f.err
}

type testEnv struct {
	t      *testing.T
	router http.Handler
	store  *store.Store
}

func newTestEnv(t *testing.T, tr transcribe.Transcriber) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.Local) }
	s, a, err := seed.Bootstrap("test-secret", time.Hour, now)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	b := events.NewBroadcaster(events.DefaultClientBuffer)
	n := events.NewNotifier(s, b, events.NewLogPublisher(slog.New(slog.NewTextHandler(io.Discard, nil))))
	h := handlers.New(s, a, transcribe.NewSessions(tr, now), n, b, handlers.Options{})

	cfg := &config.Config{
		Env:  config.EnvDevelopment,
		HTTP: config.HTTPConfig{AllowOrigins: []string{"http://localhost:3000"}},
	}
	return &testEnv{t: t, router: New(cfg, a, h).Handler(), store: s}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			e.t.Fatal(err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(user string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/login", "", map[string]string{"username": user, "password": user})
	if w.Code != http.StatusOK {
		e.t.Fatalf("login %s: status %d: %s", user, w.Code, w.Body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(e.t, w, &resp)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

type page[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
}

func TestLoginRedirectsHome(t *testing.T) {
	e := newTestEnv(t, nil)

	w := e.do(http.MethodGet, "/", "", nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("guest: status %d, location %q", w.Code, w.Header().Get("Location"))
	}

	w = e.do(http.MethodPost, "/api/login", "", map[string]string{"username": "admin", "password": "admin"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d: %s", w.Code, w.Body)
	}
	var resp struct {
		User     entities.User `json:"user"`
		Redirect string        `json:"redirect"`
	}
	decode(t, w, &resp)
	if resp.User.Role != entities.RoleAdmin || resp.Redirect != "/admin" {
		t.Errorf("login response = %+v", resp)
	}

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("no session cookie set")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(session)
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin" {
		t.Errorf("admin: status %d, location %q", w.Code, w.Header().Get("Location"))
	}

	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(session)
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin" {
		t.Errorf("login page while signed in: status %d, location %q", w.Code, w.Header().Get("Location"))
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	e := newTestEnv(t, nil)

	w := e.do(http.MethodPost, "/api/login", "", map[string]string{"username": "admin", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var resp map[string]string
	decode(t, w, &resp)
	if resp["error"] != "Invalid username or password" {
		t.Errorf("error = %q", resp["error"])
	}

	w = e.do(http.MethodPost, "/api/login", "", map[string]string{"username": "admin"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing password: status = %d, want 400", w.Code)
	}
}

func TestRoleGuards(t *testing.T) {
	e := newTestEnv(t, nil)
	patient := e.login("patient")
	admin := e.login("admin")

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"guest on admin api", "/api/patients", "", http.StatusUnauthorized},
		{"patient on admin api", "/api/patients", patient, http.StatusForbidden},
		{"admin on patient api", "/api/patient/dashboard", admin, http.StatusForbidden},
		{"patient dashboard", "/api/patient/dashboard", patient, http.StatusOK},
		{"admin dashboard", "/api/admin/dashboard", admin, http.StatusOK},
		{"shared", "/api/protocols", patient, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := e.do(http.MethodGet, tt.path, tt.token, nil); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestListPatientsFiltersAndPaginates(t *testing.T) {
	e := newTestEnv(t, nil)
	admin := e.login("admin")

	w := e.do(http.MethodGet, "/api/patients?status=Active", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var active page[entities.Patient]
	decode(t, w, &active)
	if active.Total != 3 {
		t.Fatalf("total = %d, want 3", active.Total)
	}
	for _, p := range active.Items {
		if p.Status != entities.PatientActive {
			t.Errorf("patient %s has status %s", p.ID, p.Status)
		}
	}

	w = e.do(http.MethodGet, "/api/patients?status=active", admin, nil)
	var lower page[entities.Patient]
	decode(t, w, &lower)
	if lower.Total != 0 {
		t.Errorf("lowercase status matched %d patients, want 0", lower.Total)
	}

	w = e.do(http.MethodGet, "/api/patients?page=1&page_size=2", admin, nil)
	var first page[entities.Patient]
	decode(t, w, &first)
	if len(first.Items) != 2 || !first.HasNext || first.Total != 5 {
		t.Errorf("first page = %d items, has_next %v, total %d", len(first.Items), first.HasNext, first.Total)
	}

	w = e.do(http.MethodGet, "/api/patients?page=922337203685477582", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("huge page: status = %d, want 200", w.Code)
	}
	var past page[entities.Patient]
	decode(t, w, &past)
	if len(past.Items) != 0 || past.HasNext {
		t.Errorf("huge page = %d items, has_next %v", len(past.Items), past.HasNext)
	}

	if w := e.do(http.MethodGet, "/api/patients?page=x", admin, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad page: status = %d, want 400", w.Code)
	}
}

func TestApproveRemovesFromPending(t *testing.T) {
	e := newTestEnv(t, nil)
	admin := e.login("admin")

	w := e.do(http.MethodPost, "/api/protocol-requests/req-001/approve", admin, map[string]string{"note": "Start next week"})
	if w.Code != http.StatusOK {
		t.Fatalf("approve: status %d: %s", w.Code, w.Body)
	}
	var r entities.ProtocolRequest
	decode(t, w, &r)
	if r.Status != entities.RequestApproved || r.ReviewNote != "Start next week" {
		t.Errorf("request = %+v", r)
	}

	w = e.do(http.MethodGet, "/api/protocol-requests?status=pending", admin, nil)
	var pending page[entities.ProtocolRequest]
	decode(t, w, &pending)
	for _, p := range pending.Items {
		if p.ID == "req-001" {
			t.Error("approved request still pending")
		}
	}
	if pending.Total != 1 {
		t.Errorf("pending total = %d, want 1", pending.Total)
	}

	if w := e.do(http.MethodPost, "/api/protocol-requests/req-001/reject", admin, nil); w.Code != http.StatusConflict {
		t.Errorf("second decision: status = %d, want 409", w.Code)
	}
	if w := e.do(http.MethodGet, "/api/protocol-requests?status=maybe", admin, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad status filter: status = %d, want 400", w.Code)
	}

	p, err := e.store.Patients.Get("p-001")
	if err != nil {
		t.Fatal(err)
	}
	if !p.HasProtocol("pr-rapa") {
		t.Errorf("patient protocols = %v, want pr-rapa enrolled", p.ProtocolIDs)
	}
	if n := e.store.Notifications.UnreadCount("p-001"); n != 2 {
		t.Errorf("patient unread = %d, want 2", n)
	}
}

func TestPatientRequestsProtocol(t *testing.T) {
	e := newTestEnv(t, nil)
	patient := e.login("patient")

	body := map[string]string{"protocol_id": "pr-vitd", "reason": "Low in winter"}
	if w := e.do(http.MethodPost, "/api/patient/protocol-requests", patient, body); w.Code != http.StatusCreated {
		t.Fatalf("request: status %d: %s", w.Code, w.Body)
	}
	if w := e.do(http.MethodPost, "/api/patient/protocol-requests", patient, body); w.Code != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want 409", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/patient/protocol-requests", patient, map[string]string{"protocol_id": "nope"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown protocol: status = %d, want 404", w.Code)
	}
	if got := len(e.store.ProtocolRequests.Pending()); got != 3 {
		t.Errorf("pending = %d, want 3", got)
	}
}

func TestToggleDataSource(t *testing.T) {
	e := newTestEnv(t, nil)
	patient := e.login("patient")

	w := e.do(http.MethodPost, "/api/patient/data-sources/ds-003/toggle", patient, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: status %d: %s", w.Code, w.Body)
	}
	var d entities.DataSource
	decode(t, w, &d)
	if !d.Connected || d.LastSync != entities.LastSyncJustNow {
		t.Errorf("after connect = %+v", d)
	}

	w = e.do(http.MethodPost, "/api/patient/data-sources/ds-003/toggle", patient, nil)
	decode(t, w, &d)
	if d.Connected || d.LastSync != entities.LastSyncDisconnected {
		t.Errorf("after disconnect = %+v", d)
	}

	if w := e.do(http.MethodPost, "/api/patient/data-sources/ds-004/toggle", patient, nil); w.Code != http.StatusNotFound {
		t.Errorf("other patient's source: status = %d, want 404", w.Code)
	}
}

func postClip(e *testEnv, token string, data []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "clip.webm")
	if err != nil {
		e.t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/patient/voice/clip", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestVoiceCheckIn(t *testing.T) {
	e := newTestEnv(t, fakeTranscriber{text: "Slept well and energy is up."})
	patient := e.login("patient")
	before := len(e.store.CheckIns.ForPatient("p-001"))

	if w := postClip(e, patient, []byte("audio")); w.Code != http.StatusNotFound {
		t.Errorf("clip without session: status = %d, want 404", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/patient/voice/start", patient, nil); w.Code != http.StatusOK {
		t.Fatalf("start: status %d", w.Code)
	}

	w := postClip(e, patient, []byte("audio"))
	if w.Code != http.StatusOK {
		t.Fatalf("clip: status %d: %s", w.Code, w.Body)
	}
	var sess transcribe.Session
	decode(t, w, &sess)
	if sess.Transcript != "Slept well and energy is up." || sess.Clips != 1 {
		t.Errorf("session = %+v", sess)
	}

	if w := e.do(http.MethodPost, "/api/patient/voice/stop", patient, nil); w.Code != http.StatusOK {
		t.Fatalf("stop: status %d", w.Code)
	}
	w = e.do(http.MethodPost, "/api/patient/voice/submit", patient, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: status %d: %s", w.Code, w.Body)
	}
	var c entities.CheckIn
	decode(t, w, &c)
	if c.Type != entities.CheckInVoice || c.Transcript != sess.Transcript || c.Status != entities.CheckInPending {
		t.Errorf("check-in = %+v", c)
	}
	if got := len(e.store.CheckIns.ForPatient("p-001")); got != before+1 {
		t.Errorf("check-ins = %d, want %d", got, before+1)
	}
	if w := e.do(http.MethodGet, "/api/patient/voice", patient, nil); w.Code != http.StatusNotFound {
		t.Errorf("session after submit: status = %d, want 404", w.Code)
	}
}

func TestPatientDashboardShowsNewestCheckIns(t *testing.T) {
	e := newTestEnv(t, nil)
	patient := e.login("patient")

	for i := 1; i <= 6; i++ {
		w := e.do(http.MethodPost, "/api/patient/checkins", patient, map[string]string{
			"summary": fmt.Sprintf("update %d", i),
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("check-in %d: status %d: %s", i, w.Code, w.Body)
		}
	}

	w := e.do(http.MethodGet, "/api/patient/dashboard", patient, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: status %d", w.Code)
	}
	var d struct {
		Recent []entities.CheckIn `json:"recent_checkins"`
	}
	decode(t, w, &d)
	if len(d.Recent) != 5 {
		t.Fatalf("recent = %d, want 5", len(d.Recent))
	}
	for i, c := range d.Recent {
		if !strings.HasPrefix(c.Summary, "update ") {
			t.Errorf("recent[%d] = %q, want one of the new check-ins", i, c.Summary)
		}
		if i > 0 && c.Timestamp.After(d.Recent[i-1].Timestamp) {
			t.Errorf("recent[%d] is newer than recent[%d]", i, i-1)
		}
	}
}

func TestVoiceClipTranscriptionFailure(t *testing.T) {
	e := newTestEnv(t, fakeTranscriber{err: errors.New("upstream returned 500")})
	patient := e.login("patient")

	e.do(http.MethodPost, "/api/patient/voice/start", patient, nil)
	w := postClip(e, patient, []byte("audio"))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502: %s", w.Code, w.Body)
	}
	var resp struct {
		Error   string             `json:"error"`
		Session transcribe.Session `json:"session"`
	}
	decode(t, w, &resp)
	if !resp.Session.Error || resp.Session.Recording || !strings.Contains(resp.Error, "upstream returned 500") {
		t.Errorf("response = %+v", resp)
	}

	if w := postClip(e, patient, []byte("audio")); w.Code != http.StatusConflict {
		t.Errorf("clip after failure: status = %d, want 409", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/patient/voice/submit", patient, nil); w.Code != http.StatusBadRequest {
		t.Errorf("submit empty transcript: status = %d, want 400", w.Code)
	}
}

func TestAppointmentLifecycle(t *testing.T) {
	e := newTestEnv(t, nil)
	patient := e.login("patient")
	admin := e.login("admin")

	w := e.do(http.MethodPost, "/api/appointments", patient, map[string]string{
		"provider": "Dr. Sarah Chen", "date": "2026-10-25", "time": "10:00", "type": "Follow-up",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", w.Code, w.Body)
	}
	var a entities.Appointment
	decode(t, w, &a)
	if a.PatientID != "p-001" || a.Status != entities.AppointmentScheduled {
		t.Errorf("appointment = %+v", a)
	}

	bad := map[string]string{"provider": "Dr. Chen", "date": "25/10/2026", "time": "10:00"}
	if w := e.do(http.MethodPost, "/api/appointments", patient, bad); w.Code != http.StatusBadRequest {
		t.Errorf("bad date: status = %d, want 400", w.Code)
	}

	if w := e.do(http.MethodPost, "/api/appointments/"+a.ID+"/complete", patient, nil); w.Code != http.StatusForbidden {
		t.Errorf("patient complete: status = %d, want 403", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/appointments/"+a.ID+"/complete", admin, nil); w.Code != http.StatusOK {
		t.Errorf("admin complete: status = %d", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/appointments/"+a.ID+"/cancel", patient, nil); w.Code != http.StatusConflict {
		t.Errorf("cancel completed: status = %d, want 409", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/appointments/apt-003/cancel", patient, nil); w.Code != http.StatusNotFound {
		t.Errorf("cancel other patient's: status = %d, want 404", w.Code)
	}

	w = e.do(http.MethodPost, "/api/appointments/apt-002/reschedule", patient, map[string]string{"date": "2026-10-30", "time": "08:30"})
	if w.Code != http.StatusOK {
		t.Fatalf("reschedule: status %d: %s", w.Code, w.Body)
	}
	decode(t, w, &a)
	if a.Date != "2026-10-30" || a.Time != "08:30" {
		t.Errorf("rescheduled = %+v", a)
	}

	w = e.do(http.MethodGet, "/api/appointments", patient, nil)
	var mine page[entities.Appointment]
	decode(t, w, &mine)
	for _, apt := range mine.Items {
		if apt.PatientID != "p-001" {
			t.Errorf("patient sees appointment %s of %s", apt.ID, apt.PatientID)
		}
	}
}

func TestNotifications(t *testing.T) {
	e := newTestEnv(t, nil)
	patient := e.login("patient")

	w := e.do(http.MethodGet, "/api/notifications?unread=true", patient, nil)
	var unread page[entities.Notification]
	decode(t, w, &unread)
	if unread.Total != 1 || unread.Items[0].ID != "n-001" {
		t.Fatalf("unread = %+v", unread)
	}

	if w := e.do(http.MethodPost, "/api/notifications/n-003/read", patient, nil); w.Code != http.StatusNotFound {
		t.Errorf("read admin's notification: status = %d, want 404", w.Code)
	}

	w = e.do(http.MethodPost, "/api/notifications/read-all", patient, nil)
	var resp map[string]int
	decode(t, w, &resp)
	if resp["updated"] != 1 {
		t.Errorf("updated = %d, want 1", resp["updated"])
	}

	if w := e.do(http.MethodDelete, "/api/notifications/n-001", patient, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d", w.Code)
	}
	if got := len(e.store.Notifications.ForRecipient("p-001", false)); got != 1 {
		t.Errorf("remaining = %d, want 1", got)
	}
}

func TestMedicationStatus(t *testing.T) {
	e := newTestEnv(t, nil)
	patient := e.login("patient")

	w := e.do(http.MethodPatch, "/api/patient/medications/med-003", patient, map[string]string{"status": "active"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch: status %d: %s", w.Code, w.Body)
	}
	if w := e.do(http.MethodPatch, "/api/patient/medications/med-003", patient, map[string]string{"status": "stopped"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad status: status = %d, want 400", w.Code)
	}
	if w := e.do(http.MethodPatch, "/api/patient/medications/med-004", patient, map[string]string{"status": "paused"}); w.Code != http.StatusNotFound {
		t.Errorf("other patient's medication: status = %d, want 404", w.Code)
	}

	w = e.do(http.MethodGet, "/api/patient/medications?status=active", patient, nil)
	var active page[entities.Medication]
	decode(t, w, &active)
	if active.Total != 3 {
		t.Errorf("active = %d, want 3", active.Total)
	}
}

func TestExportPatients(t *testing.T) {
	e := newTestEnv(t, nil)
	admin := e.login("admin")

	w := e.do(http.MethodGet, "/api/export/patients.xlsx", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("empty body")
	}
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t, nil)
	w := e.do(http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]any
	decode(t, w, &resp)
	if resp["status"] != "ok" || resp["patients"] != float64(5) {
		t.Errorf("resp = %v", resp)
	}
}
