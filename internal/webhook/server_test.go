package webhook_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"courtq/internal/access"
	"courtq/internal/config"
	"courtq/internal/dispatch"
	"courtq/internal/engine"
	"courtq/internal/line"
	"courtq/internal/logging"
	"courtq/internal/queue"
	"courtq/internal/testsupport"
	"courtq/internal/webhook"
)

type reply struct {
	token  string
	text   string
	courts []queue.Resource
}

type fakeLine struct {
	mu      sync.Mutex
	names   map[string]string
	replies []reply
}

func (f *fakeLine) Profile(_ context.Context, _, userID string) string {
	if name, ok := f.names[userID]; ok {
		return name
	}
	return line.PlaceholderName
}

func (f *fakeLine) Reply(_ context.Context, token, text string, courts []queue.Resource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, reply{token: token, text: text, courts: courts})
	return nil
}

type fakeNotifier struct {
	promotions []dispatch.Promotion
}

func (f *fakeNotifier) NotifyHead(_ context.Context, p dispatch.Promotion) error {
	f.promotions = append(f.promotions, p)
	return nil
}

type harness struct {
	cfg      *config.Config
	store    *queue.Store
	line     *fakeLine
	notifier *fakeNotifier
	server   *webhook.Server
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	eng := engine.New(store, queue.DefaultResources, logging.NewNop())
	d := dispatch.New(eng, access.NewGate(store), access.NewSessions(store), logging.NewNop())
	h := &harness{
		cfg:      cfg,
		store:    store,
		line:     &fakeLine{names: map[string]string{"U1": "Alice", "U2": "Bob"}},
		notifier: &fakeNotifier{},
	}
	h.server = webhook.New(cfg, webhook.Deps{
		Dispatcher: d,
		Line:       h.line,
		Notifier:   h.notifier,
		Rosters:    eng,
	}, logging.NewNop())
	return h
}

func textEvent(token, user, text string) string {
	return fmt.Sprintf(`{"type":"message","replyToken":%q,"source":{"type":"group","groupId":"G1","userId":%q},"message":{"id":"1","type":"text","text":%q}}`, token, user, text)
}

func (h *harness) post(t *testing.T, events ...string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"destination":"Ubot","events":[` + strings.Join(events, ",") + `]}`
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set(line.SignatureHeader, line.Sign(h.cfg.Line.ChannelSecret, []byte(body)))
	w := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(w, req)
	return w
}

func TestCallbackRejectsBadSignature(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(`{"events":[]}`))
	req.Header.Set(line.SignatureHeader, "bogus")
	w := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(h.line.replies) != 0 {
		t.Fatalf("expected no replies, got %d", len(h.line.replies))
	}
}

func TestCallbackRepliesPerEventAndNotifiesHead(t *testing.T) {
	h := newHarness(t)
	testsupport.MustEnableScope(t, h.store, "G1")

	w := h.post(t,
		textEvent("r1", "U1", "A+1"),
		textEvent("r2", "U2", "a +1"),
		`{"type":"message","replyToken":"r3","source":{"type":"group","groupId":"G1","userId":"U1"},"message":{"id":"2","type":"sticker"}}`,
		textEvent("r4", "U1", "A Next"),
	)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(h.line.replies) != 3 {
		t.Fatalf("expected 3 replies, got %+v", h.line.replies)
	}
	if !strings.Contains(h.line.replies[0].text, "Alice enrolled on court A") {
		t.Fatalf("unexpected first reply %q", h.line.replies[0].text)
	}
	if h.line.replies[2].token != "r4" || h.line.replies[2].text != "🤖\nPlease Bob take court A" {
		t.Fatalf("unexpected promote reply %+v", h.line.replies[2])
	}
	if len(h.line.replies[0].courts) != len(queue.DefaultResources) {
		t.Fatalf("expected quick replies for every court, got %v", h.line.replies[0].courts)
	}
	if len(h.notifier.promotions) != 1 || h.notifier.promotions[0].Head.ActorID != "U2" {
		t.Fatalf("unexpected promotions %+v", h.notifier.promotions)
	}
}

func TestCallbackUnregisteredScopeIsSilent(t *testing.T) {
	h := newHarness(t)
	w := h.post(t, textEvent("r1", "U1", "start"), textEvent("r2", "U1", "show group id"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(h.line.replies) != 1 || h.line.replies[0].text != "🤖Group ID: G1" {
		t.Fatalf("unexpected replies %+v", h.line.replies)
	}
}

func TestCallbackFollowUsesProfileWithoutQuickReplies(t *testing.T) {
	h := newHarness(t)
	w := h.post(t, `{"type":"follow","replyToken":"f1","source":{"type":"user","userId":"U2"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(h.line.replies) != 1 {
		t.Fatalf("expected greeting, got %+v", h.line.replies)
	}
	if !strings.HasPrefix(h.line.replies[0].text, "Hi! Bob") {
		t.Fatalf("unexpected greeting %q", h.line.replies[0].text)
	}
	if h.line.replies[0].courts != nil {
		t.Fatalf("greeting should not carry quick replies")
	}
}

type failingDispatcher struct{ calls int }

func (f *failingDispatcher) Dispatch(context.Context, dispatch.Event) (*dispatch.Response, error) {
	f.calls++
	if f.calls == 1 {
		return nil, errors.New("database is locked")
	}
	return &dispatch.Response{Text: "ok"}, nil
}

func TestCallbackIsolatesEventFailures(t *testing.T) {
	h := newHarness(t)
	fd := &failingDispatcher{}
	eng := engine.New(h.store, queue.DefaultResources, logging.NewNop())
	server := webhook.New(h.cfg, webhook.Deps{Dispatcher: fd, Line: h.line, Rosters: eng}, logging.NewNop())
	h.server = server

	w := h.post(t, textEvent("r1", "U1", "A+1"), textEvent("r2", "U2", "A+1"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 despite failure, got %d", w.Code)
	}
	if len(h.line.replies) != 1 || h.line.replies[0].token != "r2" {
		t.Fatalf("expected only second event to reply, got %+v", h.line.replies)
	}
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	w := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestCourtsAPI(t *testing.T) {
	h := newHarness(t, testsupport.WithAPIToken("secret-token"))
	ctx := context.Background()
	for _, actor := range []string{"U1", "U2"} {
		if _, err := h.store.Append(ctx, "B", actor, "name-"+actor); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	unauth := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(unauth, httptest.NewRequest(http.MethodGet, "/api/v1/courts", nil))
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", unauth.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/courts", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp webhook.CourtsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Courts) != 4 {
		t.Fatalf("expected 4 courts, got %d", len(resp.Courts))
	}
	b := resp.Courts[1]
	if b.Court != "B" || b.Head == nil || b.Head.ActorID != "U1" || len(b.Waiting) != 1 || b.Waiting[0].ActorID != "U2" {
		t.Fatalf("unexpected court B view %+v", b)
	}
	if resp.Courts[0].Head != nil || len(resp.Courts[0].Waiting) != 0 {
		t.Fatalf("expected empty court A, got %+v", resp.Courts[0])
	}

	single := httptest.NewRequest(http.MethodGet, "/api/v1/courts/z", nil)
	single.Header.Set("Authorization", "Bearer secret-token")
	w = httptest.NewRecorder()
	h.server.Handler().ServeHTTP(w, single)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown court, got %d", w.Code)
	}
}
