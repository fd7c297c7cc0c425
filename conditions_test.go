package waitfor

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileCondition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "marker")

	cond := FileCondition(path)
	if cond() {
		t.Error("condition true before file exists")
	}

	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if !cond() {
		t.Error("condition false after file created")
	}
}

func TestHTTPCondition_StatusMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if !HTTPCondition(server.URL, http.StatusNoContent)() {
		t.Error("condition false for matching status")
	}
	if HTTPCondition(server.URL, http.StatusOK)() {
		t.Error("condition true for mismatched status")
	}
}

// A wantStatus of zero accepts any 2xx response.
func TestHTTPCondition_AnySuccess(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{"200", http.StatusOK, true},
		{"204", http.StatusNoContent, true},
		{"404", http.StatusNotFound, false},
		{"503", http.StatusServiceUnavailable, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			if got := HTTPCondition(server.URL, 0)(); got != tt.want {
				t.Errorf("condition = %v, want %v", got, tt.want)
			}
		})
	}
}

// Transport failures are falsy trials, not errors.
func TestHTTPCondition_UnreachableIsFalsy(t *testing.T) {
	cond := HTTPProbe{URL: "http://localhost:1", Timeout: 500 * time.Millisecond}.Condition()
	if cond() {
		t.Error("condition true for unreachable target")
	}
}

func TestHTTPProbe_MethodAndHeaders(t *testing.T) {
	var gotMethod, gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cond := HTTPProbe{
		URL:     server.URL,
		Method:  http.MethodHead,
		Headers: map[string]string{"Authorization": "Bearer token"},
	}.Condition()

	if !cond() {
		t.Fatal("condition false for healthy target")
	}
	if gotMethod != http.MethodHead {
		t.Errorf("method = %q, want HEAD", gotMethod)
	}
	if gotHeader != "Bearer token" {
		t.Errorf("Authorization = %q, want %q", gotHeader, "Bearer token")
	}
}

func TestNodeCondition_NilQuery(t *testing.T) {
	if NodeCondition(nil, "#app") != nil {
		t.Error("NodeCondition(nil, ...) should be nil so Start never schedules")
	}
}

func TestNodeCondition_CountToTruthiness(t *testing.T) {
	counts := map[string]int{"#a": 0, "#b": 1, "#c": 5}
	query := QueryFunc(func(selector string) int { return counts[selector] })

	if NodeCondition(query, "#a")() {
		t.Error("zero matches should be falsy")
	}
	if !NodeCondition(query, "#b")() {
		t.Error("one match should be truthy")
	}
	if !NodeCondition(query, "#c")() {
		t.Error("several matches should be truthy")
	}
}

func TestAllOf(t *testing.T) {
	yes := Condition(func() bool { return true })
	no := Condition(func() bool { return false })

	tests := []struct {
		name  string
		conds []Condition
		want  bool
	}{
		{"empty", nil, true},
		{"all true", []Condition{yes, yes}, true},
		{"one false", []Condition{yes, no}, false},
		{"nil skipped", []Condition{nil, yes}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllOf(tt.conds...)(); got != tt.want {
				t.Errorf("AllOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllOf_ShortCircuits(t *testing.T) {
	var evaluated bool
	AllOf(
		func() bool { return false },
		func() bool { evaluated = true; return true },
	)()
	if evaluated {
		t.Error("AllOf should stop at the first false condition")
	}
}

func TestAnyOf(t *testing.T) {
	yes := Condition(func() bool { return true })
	no := Condition(func() bool { return false })

	tests := []struct {
		name  string
		conds []Condition
		want  bool
	}{
		{"empty", nil, false},
		{"all false", []Condition{no, no}, false},
		{"one true", []Condition{no, yes}, true},
		{"nil skipped", []Condition{nil, no}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnyOf(tt.conds...)(); got != tt.want {
				t.Errorf("AnyOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnyOf_ShortCircuits(t *testing.T) {
	var evaluated bool
	AnyOf(
		func() bool { return true },
		func() bool { evaluated = true; return false },
	)()
	if evaluated {
		t.Error("AnyOf should stop at the first true condition")
	}
}
