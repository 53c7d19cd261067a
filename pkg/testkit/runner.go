package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

// ─── Public API ───────────────────────────────────────────────────────────────

// Run executes the scenario or flow in scenarioPath against handler. vars
// seeds the flow variables; it is copied, never modified.
//
// Lifecycle per step:
//  1. Expand {{vars}} in the URL, headers and request body.
//  2. Fire the request against handler using httptest.
//  3. Assert status code.
//  4. Assert the response body contains the expected JSON.
//  5. Capture response values into the flow variables.
func Run(t *testing.T, handler http.Handler, scenarioPath string, vars Vars) {
	t.Helper()

	flow, err := LoadFlow(scenarioPath)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", scenarioPath, err)
	}

	name := strings.TrimSuffix(filepath.Base(scenarioPath), ".json")
	t.Run(name, func(t *testing.T) {
		RunFlow(t, handler, flow, vars)
	})
}

// RunDir runs every scenario file in dir as a t.Run subtest. Each file gets
// its own copy of vars.
func RunDir(t *testing.T, handler http.Handler, dir string, vars Vars) {
	t.Helper()

	files, err := ScenarioFiles(dir)
	if err != nil {
		t.Fatalf("%v", err)
	}
	for _, path := range files {
		Run(t, handler, path, vars)
	}
}

// RunFlow runs steps in order. A failing step stops the flow, since later
// steps usually depend on what it would have captured.
func RunFlow(t *testing.T, handler http.Handler, steps []*Scenario, vars Vars) Vars {
	t.Helper()

	state := Vars{}
	for k, v := range vars {
		state[k] = v
	}
	for _, s := range steps {
		ok := t.Run(s.Name, func(t *testing.T) {
			runScenario(t, handler, s, state)
		})
		if !ok {
			break
		}
	}
	return state
}

// ─── Internal execution ───────────────────────────────────────────────────────

func runScenario(t *testing.T, handler http.Handler, s *Scenario, vars Vars) {
	t.Helper()

	// ── 1. Build request ──────────────────────────────────────────────────

	raw, err := s.requestBody()
	if err != nil {
		t.Fatalf("[%s] read request body: %v", s.Name, err)
	}
	var reqBody io.Reader
	if len(raw) > 0 {
		reqBody = strings.NewReader(vars.Expand(string(raw)))
	}

	method := strings.ToUpper(s.RequestMethod)
	req := httptest.NewRequest(method, vars.Expand(s.RequestURL), reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, vars.Expand(v))
	}

	// ── 2. Fire the request ───────────────────────────────────────────────

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// ── 3. Assert status code ─────────────────────────────────────────────

	if !AssertStatusCode(t, s, rec.Code) {
		t.Logf("[%s] body: %s", s.Name, rec.Body.String())
	}

	// ── 4. Assert response body ───────────────────────────────────────────

	expected, err := s.expectedBody()
	if err != nil {
		t.Errorf("[%s] read expected body: %v", s.Name, err)
	} else if len(expected) > 0 {
		AssertJSONBody(t, s, []byte(vars.Expand(string(expected))), rec.Body.Bytes())
	}

	// ── 5. Capture ────────────────────────────────────────────────────────

	if len(s.Capture) == 0 {
		return
	}
	var body interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("[%s] capture from non-JSON body: %v", s.Name, err)
	}
	for name, path := range s.Capture {
		val, ok := Lookup(body, path)
		if !ok {
			t.Fatalf("[%s] capture %q: path %q not in response %s", s.Name, name, path, rec.Body.String())
		}
		vars[name] = scalar(val)
	}
}

func scalar(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	default:
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(x)
		return strings.TrimSpace(buf.String())
	}
}

// ─── Debug helpers ────────────────────────────────────────────────────────────

// DumpScenario prints a human-readable summary of the scenario to w.
// Useful during test development to inspect what was loaded.
func DumpScenario(w io.Writer, s *Scenario) {
	fmt.Fprintf(w, "Scenario: %s\n", s.Name)
	fmt.Fprintf(w, "  %s %s → %d\n", s.RequestMethod, s.RequestURL, s.ExpectedCode)
	fmt.Fprintf(w, "  requestFile:  %s\n", s.RequestFileName)
	fmt.Fprintf(w, "  responseFile: %s\n", s.ResponseFileName)
	for name, path := range s.Capture {
		fmt.Fprintf(w, "  capture: %s ← %s\n", name, path)
	}
}
