package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dream_weaver/internal/ai"
	"dream_weaver/internal/directory"
	"dream_weaver/internal/discovery"
	"dream_weaver/internal/follow"
	"dream_weaver/internal/locale"
	"dream_weaver/internal/location"
	"dream_weaver/internal/metrics"
	"dream_weaver/internal/models"
	"dream_weaver/internal/storage"
)

type fakeAssistant struct {
	mu       sync.Mutex
	err      error
	keywords string
}

func (f *fakeAssistant) Interpret(_ context.Context, text, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "interpreted: " + text, nil
}

func (f *fakeAssistant) ContinueStory(context.Context, string) (ai.StorySpark, error) {
	if f.err != nil {
		return ai.StorySpark{}, f.err
	}
	return ai.StorySpark{Text: "1. one\n2. two", Suggestions: []string{"one", "two"}}, nil
}

func (f *fakeAssistant) Visualize(_ context.Context, keywords string) (string, error) {
	f.mu.Lock()
	f.keywords = keywords
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "data:image/png;base64,aGVsbG8=", nil
}

type scriptedProvider struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (p *scriptedProvider) Locate(context.Context, location.Request) (models.Location, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer func() { p.calls++ }()
	if p.calls < len(p.errs) && p.errs[p.calls] != nil {
		return models.Location{}, p.errs[p.calls]
	}
	return models.Location{Latitude: 34.0522, Longitude: -118.2437}, nil
}

type fixture struct {
	server    *httptest.Server
	assistant *fakeAssistant
	provider  *scriptedProvider
	metrics   *metrics.Collector
}

func newFixture(t *testing.T, sessionOpts ...discovery.ManagerOption) *fixture {
	t.Helper()
	ctx := context.Background()

	snaps, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = snaps.Close() })

	journal := storage.NewJournalStorage(snaps, nil)
	journal.Load(ctx)
	follows := follow.NewStore(snaps, nil)
	follows.Load(ctx)
	bundle, err := locale.NewBundle(snaps, nil, "en")
	require.NoError(t, err)

	f := &fixture{
		assistant: &fakeAssistant{},
		provider:  &scriptedProvider{},
		metrics:   metrics.NewCollector("test"),
	}

	router := NewRouter(Deps{
		Journal:    journal,
		Follows:    follows,
		Bundle:     bundle,
		Assistant:  f.assistant,
		Sessions:   discovery.NewSessionManager(nil, append([]discovery.ManagerOption{discovery.WithLocationObserver(f.metrics.ObserveLocation)}, sessionOpts...)...),
		Discoverer: discovery.NewDiscoverer(directory.All(), follows),
		Keywords:   discovery.NewKeywordCache(),
		Provider:   f.provider,
		Metrics:    f.metrics,
	})
	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (f *fixture) createEntry(t *testing.T, title, content string, tags []string) string {
	t.Helper()
	status, body := f.do(t, http.MethodPost, "/entries", map[string]any{
		"title": title, "content": content, "mood": "Calm", "tags": tags,
	})
	require.Equal(t, http.StatusCreated, status, body)
	return body["id"].(string)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	status, body := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}

func TestEntries_CRUD(t *testing.T) {
	f := newFixture(t)

	id := f.createEntry(t, "Ocean Door", "A door stood in the sea.", []string{"ocean"})

	status, body := f.do(t, http.MethodGet, "/entries", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["data"], 1)

	status, body = f.do(t, http.MethodGet, "/entries/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ocean Door", body["title"])
	created := body["timestamp"]

	status, body = f.do(t, http.MethodPut, "/entries/"+id, map[string]any{
		"title": "Ocean Gate", "content": "The door became a gate.", "mood": "Inspired",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Ocean Gate", body["title"])
	assert.Equal(t, created, body["timestamp"])

	status, _ = f.do(t, http.MethodDelete, "/entries/"+id, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = f.do(t, http.MethodGet, "/entries/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["error"])
	assert.Equal(t, "Not found.", body["message"])
}

func TestEntries_Invalid(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/entries", map[string]any{"title": "  ", "content": "x", "mood": "Calm"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["error"])

	status, body = f.do(t, http.MethodPost, "/entries", "not an object")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "BAD_REQUEST", body["error"])
}

func TestAITools(t *testing.T) {
	f := newFixture(t)
	id := f.createEntry(t, "Lanterns", "Lanterns floated upward.", []string{"light", "sky"})

	status, body := f.do(t, http.MethodPost, "/entries/"+id+"/interpret", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "interpreted: Lanterns floated upward.", body["result"])

	status, body = f.do(t, http.MethodPost, "/entries/"+id+"/story-spark", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"one", "two"}, body["suggestions"])

	status, body = f.do(t, http.MethodPost, "/entries/"+id+"/visualize", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", body["imageUrl"])
	assert.Equal(t, "light, sky", f.assistant.keywords)

	status, _ = f.do(t, http.MethodPost, "/entries/missing/interpret", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAITools_Failures(t *testing.T) {
	tests := []struct {
		reason ai.Reason
		status int
		msg    string
	}{
		{ai.ReasonPaidAPIKeyRequired, http.StatusPaymentRequired, "This feature requires a paid API key."},
		{ai.ReasonNoAPIKey, http.StatusServiceUnavailable, "An API key is required to use this AI tool."},
		{ai.ReasonNoImageData, http.StatusBadGateway, "The AI did not return an image."},
		{ai.ReasonProvideTextOrImage, http.StatusBadRequest, "Please provide dream text or an image."},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			f := newFixture(t)
			id := f.createEntry(t, "Fog", "Only fog.", nil)
			f.assistant.err = &ai.Error{Reason: tt.reason}

			status, body := f.do(t, http.MethodPost, "/entries/"+id+"/visualize", nil)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, string(tt.reason), body["error"])
			assert.Equal(t, tt.msg, body["message"])
		})
	}
}

func TestDiscovery_ClientCoordinates(t *testing.T) {
	f := newFixture(t)
	f.createEntry(t, "Coral dreams", "I swam among coral", nil)

	status, body := f.do(t, http.MethodPost, "/discovery/sessions", map[string]any{
		"latitude": 34.0522, "longitude": -118.2437,
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "location_resolved", body["state"])
	assert.Equal(t, false, body["retry"])
	require.Len(t, body["candidates"], 6)
	assert.Equal(t, 0, f.provider.calls)

	id := body["id"].(string)
	status, body = f.do(t, http.MethodGet, "/discovery/sessions/"+id+"?q=starlight", nil)
	require.Equal(t, http.StatusOK, status)
	candidates := body["candidates"].([]any)
	require.Len(t, candidates, 1)
	c := candidates[0].(map[string]any)
	assert.Equal(t, "user2", c["user"].(map[string]any)["id"])
	assert.Equal(t, true, c["hasSharedInterest"])
	assert.Equal(t, []any{"coral"}, c["sharedInterests"])

	status, body = f.do(t, http.MethodGet, "/discovery/sessions/"+id+"?q=nobody", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["candidates"])
	assert.Equal(t, "No dreamers found nearby.", body["message"])

	status, _ = f.do(t, http.MethodDelete, "/discovery/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = f.do(t, http.MethodGet, "/discovery/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDiscovery_IdleSessionExpires(t *testing.T) {
	f := newFixture(t, discovery.WithIdleTTL(20*time.Millisecond))

	status, body := f.do(t, http.MethodPost, "/discovery/sessions", map[string]any{
		"latitude": 34.0522, "longitude": -118.2437,
	})
	require.Equal(t, http.StatusCreated, status, body)
	id := body["id"].(string)

	time.Sleep(50 * time.Millisecond)

	status, body = f.do(t, http.MethodGet, "/discovery/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["error"])
}

func TestDiscovery_FailureAndRetry(t *testing.T) {
	f := newFixture(t)
	f.provider.errs = []error{&location.Error{Kind: location.KindTimeout, Err: errors.New("slow")}}

	status, body := f.do(t, http.MethodPost, "/discovery/sessions", nil)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "location_failed", body["state"])
	assert.Equal(t, "timeout", body["failure"])
	assert.Equal(t, true, body["retry"])
	assert.Equal(t, "Locating you took too long.", body["message"])
	assert.Empty(t, body["candidates"])

	id := body["id"].(string)
	status, body = f.do(t, http.MethodPost, "/discovery/sessions/"+id+"/retry", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "location_resolved", body["state"])
	assert.Len(t, body["candidates"], 6)

	status, body = f.do(t, http.MethodPost, "/discovery/sessions/"+id+"/retry", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["error"])
}

func TestDiscovery_InvalidCoordinates(t *testing.T) {
	f := newFixture(t)

	status, _ := f.do(t, http.MethodPost, "/discovery/sessions", map[string]any{"latitude": 120.0, "longitude": 0.0})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, http.MethodPost, "/discovery/sessions", map[string]any{"latitude": 10.0})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestFollows(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/follows", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])
	assert.Equal(t, "You are not following anyone yet.", body["message"])

	status, body = f.do(t, http.MethodPost, "/follows/user4/toggle", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["isFollowing"])

	status, body = f.do(t, http.MethodGet, "/follows", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["data"], 1)

	status, body = f.do(t, http.MethodGet, "/directory/user4", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["isFollowing"])
	assert.Equal(t, "NightWhisper", body["user"].(map[string]any)["username"])

	status, body = f.do(t, http.MethodPost, "/follows/user4/toggle", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["isFollowing"])

	status, _ = f.do(t, http.MethodPost, "/follows/ghost/toggle", nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = f.do(t, http.MethodGet, "/directory/ghost", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLocaleAndPrompts(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/locale", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "en", body["locale"])

	status, body = f.do(t, http.MethodPut, "/locale", map[string]string{"locale": "es"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "es", body["locale"])

	status, body = f.do(t, http.MethodGet, "/entries/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No encontrado.", body["message"])

	status, _ = f.do(t, http.MethodPut, "/locale", map[string]string{"locale": "xx"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = f.do(t, http.MethodGet, "/prompts/random", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, []any{"text", "image"}, body["type"])
	assert.NotEmpty(t, body["text"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/health", nil)
	f.do(t, http.MethodPost, "/follows/user1/toggle", nil)

	resp, err := http.Get(f.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(raw)
	assert.Contains(t, text, `test_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, text, `test_follow_toggles_total{state="followed"} 1`)
}
