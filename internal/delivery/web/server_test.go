package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/trivia-quiz/internal/infra/opentdb"
	"github.com/aliskhannn/trivia-quiz/internal/service"
)

const oneQuestion = `{"response_code":0,"results":[{"question":"Who wrote &quot;Jaws&quot;?","correct_answer":"Peter Benchley","incorrect_answers":["Stephen King","Michael Crichton","Dean Koontz"]}]}`

type testEnv struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
	calls   *atomic.Int32
}

func newTestEnv(t *testing.T, status int, body string) *testEnv {
	t.Helper()

	calls := &atomic.Int32{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(upstream.Close)

	client := opentdb.NewClient(upstream.URL, opentdb.Params{Amount: 1, Category: 11, Difficulty: "hard", Type: "multiple"}, time.Second)
	loader := service.NewQuestionLoader(client, nil, nil)
	manager := service.NewSessionManager(loader, service.RealScheduler, 20*time.Millisecond, nil, nil)
	t.Cleanup(manager.Close)

	srv := NewServer(Config{SessionTTL: time.Minute}, manager, nil)
	return &testEnv{t: t, handler: srv.Handler(), calls: calls}
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			e.cookie = c
		}
	}
	return rec
}

func (e *testEnv) state() stateResponse {
	e.t.Helper()
	rec := e.do(http.MethodGet, "/api/state", nil)
	if rec.Code != http.StatusOK {
		e.t.Fatalf("state: status %d", rec.Code)
	}
	var st stateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		e.t.Fatalf("decode state: %v", err)
	}
	return st
}

func (e *testEnv) waitFor(cond func(stateResponse) bool) stateResponse {
	e.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st := e.state(); cond(st) {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	e.t.Fatalf("condition not reached, last state %+v", e.state())
	return stateResponse{}
}

func phaseIs(p string) func(stateResponse) bool {
	return func(st stateResponse) bool { return string(st.Phase) == p }
}

func TestWebQuizFlow(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, oneQuestion)

	st := env.waitFor(phaseIs("in_progress"))
	if st.Question == nil || st.Question.Text != `Who wrote "Jaws"?` {
		t.Fatalf("unexpected question: %+v", st.Question)
	}
	if st.Counter != "Question 1/1" {
		t.Fatalf("counter = %q", st.Counter)
	}
	if st.CorrectAnswer != "" {
		t.Fatalf("correct answer leaked before answering")
	}

	rec := env.do(http.MethodPost, "/api/answer", answerRequest{Answer: "Peter Benchley"})
	if rec.Code != http.StatusOK {
		t.Fatalf("answer: status %d body %s", rec.Code, rec.Body)
	}
	var answered stateResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &answered)
	if answered.Score != 1 || answered.Correct == nil || !*answered.Correct || answered.Feedback != "Correct!" {
		t.Fatalf("unexpected answer response: %+v", answered)
	}

	rec = env.do(http.MethodPost, "/api/answer", answerRequest{Answer: "Stephen King"})
	if rec.Code != http.StatusConflict && rec.Code != http.StatusOK {
		t.Fatalf("second answer: status %d", rec.Code)
	}

	done := env.waitFor(phaseIs("completed"))
	if done.Score != 1 || done.Summary != "Your score: 1 / 1" {
		t.Fatalf("unexpected summary: %+v", done)
	}

	if env.calls.Load() != 1 {
		t.Fatalf("expected one upstream fetch, got %d", env.calls.Load())
	}
}

func TestWebLoadFailureIsRendered(t *testing.T) {
	env := newTestEnv(t, http.StatusInternalServerError, "boom")

	st := env.waitFor(phaseIs("load_failed"))
	if !strings.Contains(st.Error, "failed to fetch questions") {
		t.Fatalf("error not surfaced: %q", st.Error)
	}

	page := env.do(http.MethodGet, "/", nil)
	if page.Code != http.StatusOK || !strings.Contains(page.Body.String(), "Could not load questions") {
		t.Fatalf("page does not render the load error: %d", page.Code)
	}

	rec := env.do(http.MethodPost, "/api/answer", answerRequest{Answer: "x"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("answer on failed load: status %d", rec.Code)
	}
}

func TestWebRestartFetchesAgain(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, oneQuestion)
	env.waitFor(phaseIs("in_progress"))

	_ = env.do(http.MethodPost, "/api/answer", answerRequest{Answer: "Dean Koontz"})
	done := env.waitFor(phaseIs("completed"))
	if done.Score != 0 {
		t.Fatalf("score = %d, want 0", done.Score)
	}

	rec := env.do(http.MethodPost, "/api/restart", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("restart: status %d", rec.Code)
	}

	st := env.waitFor(phaseIs("in_progress"))
	if st.Epoch != 1 || st.Score != 0 || st.Index != 0 {
		t.Fatalf("restart did not reinitialise: %+v", st)
	}
	if env.calls.Load() != 2 {
		t.Fatalf("expected exactly one extra fetch, got %d total", env.calls.Load())
	}
}

func TestWebRestartOnUnknownSessionFetchesOnce(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, oneQuestion)
	// The cookie outlived its session, e.g. after an idle sweep.
	env.cookie = &http.Cookie{Name: cookieName, Value: uuid.NewString()}

	rec := env.do(http.MethodPost, "/api/restart", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("restart: status %d", rec.Code)
	}

	st := env.waitFor(phaseIs("in_progress"))
	if st.Epoch != 0 {
		t.Fatalf("epoch = %d, want 0 for a fresh session", st.Epoch)
	}
	if got := env.calls.Load(); got != 1 {
		t.Fatalf("restart issued %d fetches, want exactly 1", got)
	}
}

func TestWebRejectsBadAnswerBody(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, oneQuestion)

	req := httptest.NewRequest(http.MethodPost, "/api/answer", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}

	env.waitFor(phaseIs("in_progress"))
	rec = env.do(http.MethodPost, "/api/answer", answerRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty answer: status %d, want 400", rec.Code)
	}
}

func TestWebSessionsAreIsolatedByCookie(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, oneQuestion)
	env.waitFor(phaseIs("in_progress"))
	_ = env.do(http.MethodPost, "/api/answer", answerRequest{Answer: "Peter Benchley"})

	other := &testEnv{t: t, handler: env.handler, calls: env.calls}
	st := other.waitFor(phaseIs("in_progress"))
	if st.Score != 0 || st.Selected != "" {
		t.Fatalf("new cookie should get a fresh session: %+v", st)
	}
	if other.cookie == nil || other.cookie.Value == env.cookie.Value {
		t.Fatalf("expected a distinct session cookie")
	}
}

func TestHealthAndResults(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, oneQuestion)
	env.state()

	rec := env.do(http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"sessions":1`) {
		t.Fatalf("healthz: %d %s", rec.Code, rec.Body)
	}

	rec = env.do(http.MethodGet, "/api/results", nil)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("results with history disabled: %d %s", rec.Code, rec.Body)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	manager := service.NewSessionManager(service.NewQuestionLoader(nil, nil, nil), nil, time.Second, nil, nil)
	srv := NewServer(Config{Addr: "127.0.0.1:0"}, manager, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("server did not stop")
	}
}
