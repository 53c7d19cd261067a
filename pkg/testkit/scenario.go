// Package testkit provides a JSON-scenario-driven REST API testing framework.
//
// Each scenario is a JSON document that describes:
//   - The HTTP request to fire (method, URL, body, headers)
//   - Expected HTTP status code
//   - Expected response body (optional, matched as a subset)
//   - Values to capture from the response for later steps
//
// A file holds either one scenario object or an array of them. An array is a
// flow: its steps run in order and share variables, so a login step can
// capture a token that later steps send as {{token}}.
//
//	testdata/
//	  catalog_flow.json          ← flow (array of steps)
//	  create_product_req.json    ← request body referenced by a step
//	  create_product_res.json    ← expected response referenced by a step
//
// Example _test.go:
//
//	func TestAPI(t *testing.T) {
//	    k, _ := kernel.NewHTTPKernel(kernel.Deps{Store: repositories.NewMemoryStore()})
//	    testkit.RunDir(t, k.Handler(), "testdata", nil)
//	}
package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ─── Schema ───────────────────────────────────────────────────────────────────

// Scenario describes a single REST API test step.
type Scenario struct {
	// Meta
	Name        string `json:"name"`
	Description string `json:"description"`

	// Request
	RequestMethod   string            `json:"requestMethod"`   // GET, POST, PUT, PATCH, DELETE
	RequestURL      string            `json:"requestUrl"`      // e.g. /api/products/{{productId}}
	RequestFileName string            `json:"requestFileName"` // JSON request body file (relative to scenario dir)
	RequestBody     json.RawMessage   `json:"requestBody"`     // inline body, used when no file is named
	Headers         map[string]string `json:"headers"`         // extra request headers

	// Response assertions
	ExpectedCode     int             `json:"expectedCode"`     // expected HTTP status code
	ResponseFileName string          `json:"responseFileName"` // expected response JSON file
	ResponseBody     json.RawMessage `json:"responseBody"`     // inline expected response

	// Capture maps a variable name to a dotted path in the response body
	// ("token", "products.0._id"). Captured values are visible to every later
	// step of the same flow.
	Capture map[string]string `json:"capture"`

	// resolved at load time, not in JSON
	dir string // directory of the scenario file
}

// Vars are the flow variables substituted into {{name}} placeholders.
type Vars map[string]string

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Expand replaces every {{name}} in s with its value. Unknown names are left
// in place so the failing request shows what was missing.
func (v Vars) Expand(s string) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if val, ok := v[name]; ok {
			return val
		}
		return m
	})
}

// ─── Loading ──────────────────────────────────────────────────────────────────

// LoadScenario reads and validates a single scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	flow, err := LoadFlow(path)
	if err != nil {
		return nil, err
	}
	if len(flow) != 1 {
		return nil, fmt.Errorf("testkit: %q holds %d scenarios, want 1", path, len(flow))
	}
	return flow[0], nil
}

// LoadFlow reads a file holding one scenario or an array of them.
func LoadFlow(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var flow []*Scenario
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &flow)
	} else {
		var s Scenario
		err = json.Unmarshal(trimmed, &s)
		flow = []*Scenario{&s}
	}
	if err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	dir := filepath.Dir(abs)
	for i, s := range flow {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: invalid scenario %q[%d]: %w", abs, i, err)
		}
		s.dir = dir
	}
	return flow, nil
}

// validate performs basic sanity checks on the loaded scenario.
func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	return nil
}

// RequestBodyPath returns the absolute path to the request body file,
// resolved relative to the scenario file's directory.
// Returns "" when RequestFileName is not set.
func (s *Scenario) RequestBodyPath() string {
	return s.resolve(s.RequestFileName)
}

// ResponseBodyPath returns the absolute path to the expected response file.
// Returns "" when ResponseFileName is not set.
func (s *Scenario) ResponseBodyPath() string {
	return s.resolve(s.ResponseFileName)
}

func (s *Scenario) resolve(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// requestBody returns the raw request body, from file or inline.
func (s *Scenario) requestBody() ([]byte, error) {
	if p := s.RequestBodyPath(); p != "" {
		return os.ReadFile(p)
	}
	return s.RequestBody, nil
}

// expectedBody returns the expected response, from file or inline.
func (s *Scenario) expectedBody() ([]byte, error) {
	if p := s.ResponseBodyPath(); p != "" {
		return os.ReadFile(p)
	}
	return s.ResponseBody, nil
}

// ScenarioFiles lists the scenario files in dir: every *.json file except
// request and response bodies, which by convention end in _req.json and
// _res.json.
func ScenarioFiles(dir string) ([]string, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, path := range entries {
		if strings.HasSuffix(path, "_req.json") || strings.HasSuffix(path, "_res.json") {
			continue
		}
		files = append(files, path)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("testkit: no scenario files found in %q", dir)
	}
	sort.Strings(files)
	return files, nil
}
