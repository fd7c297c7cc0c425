package config

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jpalmerr/waitfor"
)

func TestBuildPollers_AppliesGlobalsAndOverrides(t *testing.T) {
	data := []byte(`
interval: 100ms
max_trials: 7
conditions:
  - name: default settings
    check: file:/tmp/ready
  - name: overridden
    check: file:/tmp/ready
    interval: 20ms
    max_trials: 3
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	pollers, err := BuildPollers(cfg)
	if err != nil {
		t.Fatalf("BuildPollers() error = %v", err)
	}
	if len(pollers) != 2 {
		t.Fatalf("len(pollers) = %d, want 2", len(pollers))
	}

	if got := pollers[0].Poller.Interval(); got != 100*time.Millisecond {
		t.Errorf("pollers[0].Interval() = %v, want 100ms (global)", got)
	}
	if got := pollers[0].Poller.MaxTrials(); got != 7 {
		t.Errorf("pollers[0].MaxTrials() = %d, want 7 (global)", got)
	}
	if got := pollers[1].Poller.Interval(); got != 20*time.Millisecond {
		t.Errorf("pollers[1].Interval() = %v, want 20ms (override)", got)
	}
	if got := pollers[1].Poller.MaxTrials(); got != 3 {
		t.Errorf("pollers[1].MaxTrials() = %d, want 3 (override)", got)
	}

	if pollers[0].Name != "default settings" || pollers[1].Name != "overridden" {
		t.Errorf("names = %q, %q", pollers[0].Name, pollers[1].Name)
	}
}

// A file condition built from config resolves once the file exists.
func TestBuildPollers_FileConditionRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marker")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Parse([]byte(`
interval: 10ms
conditions:
  - name: marker
    check: file:` + path + `
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	pollers, err := BuildPollers(cfg)
	if err != nil {
		t.Fatalf("BuildPollers() error = %v", err)
	}

	settled := make(chan waitfor.State, 1)
	pollers[0].Poller.
		Always(func(p *waitfor.Poller, ok bool) { settled <- p.State() }).
		Start()

	select {
	case state := <-settled:
		if state != waitfor.StateResolved {
			t.Errorf("state = %q, want %q", state, waitfor.StateResolved)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for poller to settle")
	}
}

// An http condition built from config carries status, method and headers.
func TestBuildPollers_HTTPConditionRuns(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Token")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	cfg, err := Parse([]byte(`
interval: 10ms
max_trials: 5
conditions:
  - name: api
    check:
      type: http
      url: ` + server.URL + `
      status: 204
    headers:
      X-Token: secret
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	pollers, err := BuildPollers(cfg)
	if err != nil {
		t.Fatalf("BuildPollers() error = %v", err)
	}

	settled := make(chan waitfor.State, 1)
	pollers[0].Poller.
		Always(func(p *waitfor.Poller, ok bool) { settled <- p.State() }).
		Start()

	select {
	case state := <-settled:
		if state != waitfor.StateResolved {
			t.Errorf("state = %q, want %q", state, waitfor.StateResolved)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for poller to settle")
	}

	if gotHeader != "secret" {
		t.Errorf("X-Token = %q, want %q", gotHeader, "secret")
	}
}

// A node condition built from config counts selector matches in the fetched
// document.
func TestBuildPollers_NodeConditionRuns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="app"><p class="ready"></p></div></body></html>`))
	}))
	defer server.Close()

	cfg, err := Parse([]byte(`
interval: 10ms
max_trials: 5
conditions:
  - name: app rendered
    check:
      type: node
      source: ` + server.URL + `
      selector: "#app .ready"
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	pollers, err := BuildPollers(cfg)
	if err != nil {
		t.Fatalf("BuildPollers() error = %v", err)
	}

	settled := make(chan waitfor.State, 1)
	pollers[0].Poller.
		Always(func(p *waitfor.Poller, ok bool) { settled <- p.State() }).
		Start()

	select {
	case state := <-settled:
		if state != waitfor.StateResolved {
			t.Errorf("state = %q, want %q", state, waitfor.StateResolved)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for poller to settle")
	}
}

func TestBuildCondition_UnknownTypeGuard(t *testing.T) {
	_, err := buildCondition(ConditionConfig{
		Name:  "bad",
		Check: CheckConfig{Type: "redis"},
	})
	if err == nil {
		t.Error("buildCondition() error = nil, want unknown-type error")
	}
}
