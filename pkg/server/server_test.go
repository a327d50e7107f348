package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zen-systems/acemock/pkg/adapter"
	"github.com/zen-systems/acemock/pkg/assistant"
	"github.com/zen-systems/acemock/pkg/config"
	"github.com/zen-systems/acemock/pkg/engine"
	"github.com/zen-systems/acemock/pkg/scoring"
	"github.com/zen-systems/acemock/pkg/store"
)

func newStore(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "acemock.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func offlineEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.New(config.Unconfigured{}, "", 0, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func mockEngine(t *testing.T, responses map[string]string) *engine.Engine {
	t.Helper()
	mock := adapter.NewMockAdapterWithResponses(responses, "")
	e, err := engine.New(config.Configured{Provider: "mock"}, "mock-1", time.Second, nil, engine.WithAdapter(mock))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func do(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	out := map[string]any{}
	if len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
	}
	return resp.StatusCode, out
}

type failingStore struct {
	*store.DB
}

func (failingStore) SaveAnswer(context.Context, *store.UserAnswer) error {
	return errors.New("disk full")
}

func (failingStore) CreateInterview(context.Context, *store.Interview) error {
	return errors.New("disk full")
}

type panickingEngine struct {
	Engine
}

func (panickingEngine) Chat(context.Context, engine.ChatRequest) assistant.Reply {
	panic("boom")
}

func (panickingEngine) EvaluateAnswer(context.Context, engine.EvaluationRequest) scoring.Result {
	panic("boom")
}

func TestSubmitAnswerMissingFields(t *testing.T) {
	s := New(Config{Engine: offlineEngine(t), Store: newStore(t)})

	for _, body := range []string{
		`{"mockIDRef":"m1","question":"Q"}`,
		`{"mockIDRef":"m1","userAns":"A"}`,
		`not json`,
		``,
	} {
		status, out := do(t, s, http.MethodPost, "/api/submit-answer", body)
		if status != http.StatusBadRequest {
			t.Fatalf("%q: status = %d", body, status)
		}
		if out["success"] != false || out["error"] != "Missing required fields" {
			t.Fatalf("%q: unexpected body %v", body, out)
		}
	}
}

func TestSubmitAnswerWithoutCredentials(t *testing.T) {
	db := newStore(t)
	s := New(Config{Engine: offlineEngine(t), Store: db})

	status, out := do(t, s, http.MethodPost, "/api/submit-answer",
		`{"mockIDRef":"m1","question":"What is Go?","correctAns":"A compiled language","userAns":"Go is a compiled language","userEmail":"dev@example.com"}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %v", status, out)
	}

	want := scoring.Evaluate("Go is a compiled language", "A compiled language")
	if out["success"] != true || out["rating"] != float64(want.Rating) || out["feedback"] != want.Feedback {
		t.Fatalf("unexpected body %v, want %+v", out, want)
	}

	answers, err := db.ListAnswers(context.Background(), "m1")
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if len(answers) != 1 || answers[0].Source != string(scoring.SourceHeuristic) || answers[0].UserEmail != "dev@example.com" {
		t.Fatalf("unexpected stored answers %+v", answers)
	}
}

func TestSubmitAnswerToleratesMistypedOptionalFields(t *testing.T) {
	db := newStore(t)
	s := New(Config{Engine: offlineEngine(t), Store: db})

	status, out := do(t, s, http.MethodPost, "/api/submit-answer",
		`{"mockIDRef":"m1","question":"Q","userAns":"answer 42","correctAns":42,"userEmail":{"x":1}}`)
	if status != http.StatusOK || out["success"] != true {
		t.Fatalf("status %d, body %v", status, out)
	}

	answers, err := db.ListAnswers(context.Background(), "m1")
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if len(answers) != 1 || answers[0].CorrectAns != "42" || answers[0].UserEmail != "" {
		t.Fatalf("unexpected stored answers %+v", answers)
	}
}

func TestSubmitAnswerNullRequiredFieldIsMissing(t *testing.T) {
	s := New(Config{Engine: offlineEngine(t), Store: newStore(t)})

	status, out := do(t, s, http.MethodPost, "/api/submit-answer", `{"mockIDRef":"m1","question":"Q","userAns":null}`)
	if status != http.StatusBadRequest || out["error"] != "Missing required fields" {
		t.Fatalf("status %d, body %v", status, out)
	}
}

func TestEngineLogsCarryRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := New(Config{Engine: offlineEngine(t), Store: newStore(t), Logger: zap.New(core)})

	req := httptest.NewRequest(http.MethodPost, "/api/submit-answer", strings.NewReader(`{"mockIDRef":"m1","question":"Q","userAns":"A"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()

	entries := logs.FilterMessage("no model credentials, using heuristic evaluator").All()
	if len(entries) != 1 || entries[0].ContextMap()["request_id"] != "req-42" {
		t.Fatalf("engine log missing request id: %v", logs.All())
	}
}

func TestSubmitAnswerUsesModel(t *testing.T) {
	e := mockEngine(t, map[string]string{"User answer": `{"rating": 5, "feedback": "Excellent."}`})
	s := New(Config{Engine: e, Store: newStore(t)})

	status, out := do(t, s, http.MethodPost, "/api/submit-answer", `{"mockIDRef":"m1","question":"Q","userAns":"A"}`)
	if status != http.StatusOK || out["rating"] != float64(5) || out["feedback"] != "Excellent." {
		t.Fatalf("status %d, body %v", status, out)
	}
}

func TestSubmitAnswerStoreFailure(t *testing.T) {
	s := New(Config{Engine: offlineEngine(t), Store: failingStore{newStore(t)}})

	status, out := do(t, s, http.MethodPost, "/api/submit-answer", `{"mockIDRef":"m1","question":"Q","userAns":"short"}`)
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d", status)
	}
	if out["success"] != false || out["error"] != "Failed to save answer to DB" {
		t.Fatalf("unexpected body %v", out)
	}
	if out["rating"] != float64(1) || out["feedback"] == nil {
		t.Fatalf("computed result missing: %v", out)
	}
}

func TestSubmitAnswerPanicIsServerError(t *testing.T) {
	s := New(Config{Engine: panickingEngine{}, Store: newStore(t)})

	status, out := do(t, s, http.MethodPost, "/api/submit-answer", `{"mockIDRef":"m1","question":"Q","userAns":"A"}`)
	if status != http.StatusInternalServerError || out["error"] != "Server error" {
		t.Fatalf("status %d, body %v", status, out)
	}
}

func TestChat(t *testing.T) {
	s := New(Config{Engine: offlineEngine(t), Store: newStore(t)})

	status, out := do(t, s, http.MethodPost, "/api/ai-chat", `{"message":"Go to dashboard"}`)
	if status != http.StatusOK || out["reply"] != "Opening the dashboard." {
		t.Fatalf("status %d, body %v", status, out)
	}
	action, ok := out["action"].(map[string]any)
	if !ok || action["type"] != "navigate" || action["url"] != "/dashboard" {
		t.Fatalf("unexpected action %v", out["action"])
	}

	status, out = do(t, s, http.MethodPost, "/api/ai-chat", `{"message":"tell me a joke","routes":"not a list"}`)
	if status != http.StatusOK || out["action"] != nil {
		t.Fatalf("status %d, body %v", status, out)
	}
}

func TestChatEmptyMessage(t *testing.T) {
	s := New(Config{Engine: offlineEngine(t), Store: newStore(t)})

	for _, body := range []string{`{}`, `{"message":""}`, `{{{`} {
		status, out := do(t, s, http.MethodPost, "/api/ai-chat", body)
		if status != http.StatusBadRequest || out["reply"] != "Message is empty" {
			t.Fatalf("%q: status %d, body %v", body, status, out)
		}
	}
}

func TestChatToleratesMistypedOptionalFields(t *testing.T) {
	s := New(Config{Engine: offlineEngine(t), Store: newStore(t)})

	status, out := do(t, s, http.MethodPost, "/api/ai-chat", `{"message":"go to dashboard","currentUrl":5,"routes":{"url":"/x"}}`)
	if status != http.StatusOK || out["reply"] != "Opening the dashboard." {
		t.Fatalf("status %d, body %v", status, out)
	}
}

func TestChatNonTextMessagePromptsForInput(t *testing.T) {
	s := New(Config{Engine: offlineEngine(t), Store: newStore(t)})

	for _, body := range []string{`{"message":5}`, `{"message":true}`, `{"message":{"text":"hi"}}`} {
		status, out := do(t, s, http.MethodPost, "/api/ai-chat", body)
		if status != http.StatusOK || out["reply"] != assistant.Respond("").Reply {
			t.Fatalf("%q: status %d, body %v", body, status, out)
		}
	}

	for _, body := range []string{`{"message":0}`, `{"message":false}`, `{"message":null}`, `[1,2]`} {
		status, out := do(t, s, http.MethodPost, "/api/ai-chat", body)
		if status != http.StatusBadRequest || out["reply"] != "Message is empty" {
			t.Fatalf("%q: status %d, body %v", body, status, out)
		}
	}
}

func TestChatPanicFallsBackToRules(t *testing.T) {
	s := New(Config{Engine: panickingEngine{}, Store: newStore(t)})

	status, out := do(t, s, http.MethodPost, "/api/ai-chat", `{"message":"hello"}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.HasPrefix(out["reply"].(string), "Hello!") {
		t.Fatalf("unexpected reply %v", out)
	}
}

func TestChatUnavailableWhenRulesFail(t *testing.T) {
	responder := &assistant.Responder{Now: func() time.Time { panic("clock") }}
	s := New(Config{Engine: panickingEngine{}, Store: newStore(t), Responder: responder})

	status, out := do(t, s, http.MethodPost, "/api/ai-chat", `{"message":"what time is it"}`)
	if status != http.StatusInternalServerError || out["reply"] != msgAIUnavailable {
		t.Fatalf("status %d, body %v", status, out)
	}
}

func TestInterviewLifecycle(t *testing.T) {
	db := newStore(t)
	e := mockEngine(t, map[string]string{
		"interview questions": `[{"question":"What is a slice?","answer":"A view over an array."}]`,
	})
	s := New(Config{Engine: e, Store: db})

	status, out := do(t, s, http.MethodPost, "/api/interviews",
		`{"jobPosition":"Go Developer","jobDesc":"APIs","jobExperience":"2","createdBy":"dev@example.com"}`)
	if status != http.StatusCreated {
		t.Fatalf("status %d, body %v", status, out)
	}
	mockID, _ := out["mockId"].(string)
	if len(mockID) != 36 {
		t.Fatalf("unexpected mockId %q", mockID)
	}

	status, out = do(t, s, http.MethodGet, "/api/interviews/"+mockID, "")
	if status != http.StatusOK || out["jobPosition"] != "Go Developer" {
		t.Fatalf("status %d, body %v", status, out)
	}
	questions, _ := out["questions"].([]any)
	if len(questions) != 1 {
		t.Fatalf("unexpected questions %v", out["questions"])
	}

	status, _ = do(t, s, http.MethodGet, "/api/interviews/missing", "")
	if status != http.StatusNotFound {
		t.Fatalf("status = %d", status)
	}

	list, err := db.ListInterviews(context.Background(), "dev@example.com")
	if err != nil || len(list) != 1 {
		t.Fatalf("list interviews: %v %v", list, err)
	}

	for _, rating := range []string{"4", "5", "bad"} {
		if err := db.SaveAnswer(context.Background(), &store.UserAnswer{MockIDRef: mockID, Question: "Q", Rating: rating}); err != nil {
			t.Fatalf("save answer: %v", err)
		}
	}
	status, out = do(t, s, http.MethodGet, "/api/interviews/"+mockID+"/feedback", "")
	if status != http.StatusOK || out["averageRating"] != 4.5 || out["summary"] != "4.5/5" {
		t.Fatalf("status %d, body %v", status, out)
	}
}

func TestListInterviews(t *testing.T) {
	db := newStore(t)
	s := New(Config{Engine: offlineEngine(t), Store: db})

	if err := db.CreateInterview(context.Background(), &store.Interview{MockID: "a", CreatedBy: "me"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/interviews?createdBy=me", nil)
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var list []store.Interview
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || len(list) != 1 || list[0].MockID != "a" {
		t.Fatalf("status %d, list %+v", resp.StatusCode, list)
	}

	status, _ := do(t, s, http.MethodGet, "/api/interviews", "")
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d", status)
	}
}

func TestCreateInterviewErrors(t *testing.T) {
	body := `{"jobPosition":"Go Developer","jobDesc":"APIs","jobExperience":"2","createdBy":"dev@example.com"}`

	s := New(Config{Engine: offlineEngine(t), Store: newStore(t)})
	if status, _ := do(t, s, http.MethodPost, "/api/interviews", body); status != http.StatusServiceUnavailable {
		t.Fatalf("offline: status = %d", status)
	}
	if status, _ := do(t, s, http.MethodPost, "/api/interviews", `{"jobPosition":"x"}`); status != http.StatusBadRequest {
		t.Fatalf("missing fields: status = %d", status)
	}
	mistyped := `{"jobPosition":"Go Developer","jobDesc":"APIs","jobExperience":2,"createdBy":"dev@example.com","count":"many"}`
	if status, _ := do(t, s, http.MethodPost, "/api/interviews", mistyped); status != http.StatusServiceUnavailable {
		t.Fatalf("mistyped optional fields: status = %d", status)
	}

	s = New(Config{Engine: mockEngine(t, map[string]string{"interview questions": "sorry"}), Store: newStore(t)})
	if status, _ := do(t, s, http.MethodPost, "/api/interviews", body); status != http.StatusBadGateway {
		t.Fatalf("bad output: status = %d", status)
	}

	good := mockEngine(t, map[string]string{"interview questions": `[{"question":"Q","answer":"A"}]`})
	s = New(Config{Engine: good, Store: failingStore{newStore(t)}})
	if status, _ := do(t, s, http.MethodPost, "/api/interviews", body); status != http.StatusInternalServerError {
		t.Fatalf("store failure: status = %d", status)
	}
}

func TestHealth(t *testing.T) {
	s := New(Config{Engine: offlineEngine(t), Store: newStore(t)})

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(data) != "OK" {
		t.Fatalf("status %d, body %q", resp.StatusCode, data)
	}
}
