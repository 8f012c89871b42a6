package inspect

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/navgraph/pkg/executor"
	"github.com/matzehuels/navgraph/pkg/graph"
	"github.com/matzehuels/navgraph/pkg/host"
	"github.com/matzehuels/navgraph/pkg/journal"
	"github.com/matzehuels/navgraph/pkg/navigator"
	"github.com/matzehuels/navgraph/pkg/observability"
	"github.com/matzehuels/navgraph/pkg/screen"
)

type fixture struct {
	nav      *navigator.Navigator
	journal  *journal.Memory
	counters *observability.Counters
	server   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	sim, root := host.NewSimulator(&host.Screen{Name: "home", Regions: []int{1}})
	mem := journal.NewMemory(0)
	counters := &observability.Counters{}
	nav, err := navigator.New(root, "home", sim, executor.Inline{},
		navigator.WithJournal(mem),
		navigator.WithSession("inspect"),
		navigator.WithHooks(counters),
		navigator.WithExecutorOptions(executor.WithHooks(counters)),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = nav.Close(ctx) })

	steps := []struct {
		origin screen.ID
		id     screen.ID
		t      screen.Transition
	}{
		{"home", "settings", screen.Stack()},
		{"home", "banner", screen.Containment(1)},
		{"settings", "login", screen.Modal(true)},
	}
	for _, s := range steps {
		h := sim.Track(&host.Screen{Name: string(s.id)})
		if err := nav.Push(ctx, s.origin, h, s.id, s.t); err != nil {
			t.Fatalf("Push %s: %v", s.id, err)
		}
	}
	if err := nav.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	srv := httptest.NewServer(New(nav, WithJournal(mem), WithCounters(counters)).Handler())
	t.Cleanup(srv.Close)
	return &fixture{nav: nav, journal: mem, counters: counters, server: srv}
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return resp, body
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp, body := f.get(t, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got map[string]string
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got["status"] != "ok" || got["session"] != "inspect" {
		t.Errorf("body = %v", got)
	}
}

func TestGraph(t *testing.T) {
	f := newFixture(t)
	resp, body := f.get(t, "/graph")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	g, err := graph.UnmarshalGraph(body)
	if err != nil {
		t.Fatalf("UnmarshalGraph: %v", err)
	}
	if g.Root != "home" || len(g.Nodes) != 4 || len(g.Edges) != 3 {
		t.Errorf("graph = root %q, %d nodes, %d edges", g.Root, len(g.Nodes), len(g.Edges))
	}
}

func TestNode(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		path      string
		status    int
		edges     int
		ancestors []string
	}{
		{"root", "/graph/nodes/home", http.StatusOK, 2, []string{}},
		{"modal", "/graph/nodes/login", http.StatusOK, 0, []string{"settings", "home"}},
		{"unknown", "/graph/nodes/nope", http.StatusNotFound, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.get(t, tt.path)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.status != http.StatusOK {
				var e errorResponse
				if err := json.Unmarshal(body, &e); err != nil {
					t.Fatal(err)
				}
				if e.Code != "NOT_FOUND" {
					t.Errorf("code = %q, want NOT_FOUND", e.Code)
				}
				return
			}
			var got nodeResponse
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatal(err)
			}
			if len(got.Edges) != tt.edges {
				t.Errorf("edges = %d, want %d", len(got.Edges), tt.edges)
			}
			if strings.Join(got.Ancestors, ",") != strings.Join(tt.ancestors, ",") {
				t.Errorf("ancestors = %v, want %v", got.Ancestors, tt.ancestors)
			}
		})
	}
}

func TestDOT(t *testing.T) {
	f := newFixture(t)
	resp, body := f.get(t, "/graph.dot")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	dot := string(body)
	if !strings.HasPrefix(dot, "digraph navigation") {
		t.Errorf("unexpected DOT:\n%s", dot)
	}
	if !strings.Contains(dot, "lightblue") {
		t.Error("visible path should be highlighted")
	}
}

func TestSVG(t *testing.T) {
	f := newFixture(t)
	resp, body := f.get(t, "/graph.svg")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(string(body), "<svg") {
		t.Error("body is not SVG")
	}
}

func TestJournal(t *testing.T) {
	f := newFixture(t)
	_ = f.journal.Append(context.Background(), journal.Entry{Session: "other", Seq: 1, Op: journal.OpPresent})

	tests := []struct {
		path string
		want int
	}{
		{"/journal", 3},
		{"/journal?all=1", 4},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, body := f.get(t, tt.path)
			var entries []journal.Entry
			if err := json.Unmarshal(body, &entries); err != nil {
				t.Fatal(err)
			}
			if len(entries) != tt.want {
				t.Errorf("entries = %d, want %d", len(entries), tt.want)
			}
		})
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	_, body := f.get(t, "/stats")
	var got statsResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Executor.Submitted != 3 || got.Executor.Completed != 3 || got.Executor.Pending != 0 {
		t.Errorf("executor = %+v", got.Executor)
	}
	if got.Hooks == nil || got.Hooks.Pushes != 3 || got.Hooks.JobsStarted != 3 {
		t.Errorf("hooks = %+v", got.Hooks)
	}
}

func TestStatsWithoutCounters(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(New(f.nav).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var got statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Hooks != nil {
		t.Errorf("hooks = %+v, want omitted", got.Hooks)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- New(f.nav).ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("ListenAndServe = %v, want nil", err)
	}
}
