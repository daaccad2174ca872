package store

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/outfit-advisor/internal/supabase"
)

type reply struct {
	status int
	body   string
}

type call struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   string
}

// fakeBackend answers "METHOD /path" with canned replies. Several replies for
// the same route are served in order, the last one repeating.
type fakeBackend struct {
	mu       sync.Mutex
	replies  map[string][]reply
	fallback *reply
	calls    []call
}

func newFakeBackend(t *testing.T) (*fakeBackend, *Store) {
	t.Helper()

	fb := &fakeBackend{replies: map[string][]reply{}}
	srv := httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(srv.Close)

	client := supabase.New(zap.NewNop(), srv.URL, "anon-key")
	return fb, New(client, zap.NewNop())
}

func (fb *fakeBackend) on(method, path string, status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	key := method + " " + path
	fb.replies[key] = append(fb.replies[key], reply{status: status, body: body})
}

// otherwise answers every route without canned replies.
func (fb *fakeBackend) otherwise(status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.fallback = &reply{status: status, body: body}
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)

	fb.mu.Lock()
	fb.calls = append(fb.calls, call{
		method: r.Method,
		path:   r.URL.Path,
		query:  r.URL.Query(),
		header: r.Header.Clone(),
		body:   string(data),
	})
	key := r.Method + " " + r.URL.Path
	queue := fb.replies[key]
	var rep reply
	switch len(queue) {
	case 0:
		rep = reply{status: http.StatusNotFound, body: `{"message":"no route"}`}
		if fb.fallback != nil {
			rep = *fb.fallback
		}
	case 1:
		rep = queue[0]
	default:
		rep = queue[0]
		fb.replies[key] = queue[1:]
	}
	fb.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	_, _ = io.WriteString(w, rep.body)
}

func (fb *fakeBackend) recorded() []call {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]call(nil), fb.calls...)
}

func (fb *fakeBackend) last(t *testing.T) call {
	t.Helper()
	calls := fb.recorded()
	if len(calls) == 0 {
		t.Fatal("expected at least one request")
	}
	return calls[len(calls)-1]
}

func userContext() context.Context {
	return supabase.WithAccessToken(context.Background(), "user-token")
}
