package testkit_test

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

// testHandler is a tiny http.Handler that powers the testkit self-tests.
var testHandler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/login":
		var in struct{ Email string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "tok-" + in.Email,
			"user":  map[string]string{"email": in.Email, "id": "42"},
		})
	case "/whoami":
		_ = json.NewEncoder(w).Encode(map[string]string{"authorization": r.Header.Get("Authorization")})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	}
})

func TestRunDir(t *testing.T) {
	testkit.RunDir(t, testHandler, "testdata", testkit.Vars{"email": "ann@example.com"})
}

func TestRunFlowReturnsCapturedVars(t *testing.T) {
	flow, err := testkit.LoadFlow("testdata/echo_flow.json")
	require.NoError(t, err)
	require.Len(t, flow, 2)

	vars := testkit.RunFlow(t, testHandler, flow, testkit.Vars{"email": "bob@example.com"})
	assert.Equal(t, "tok-bob@example.com", vars["token"])
}

func TestLoadScenarioSingleObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "health.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"health","requestUrl":"/healthz","expectedCode":200}`), 0o644))

	s, err := testkit.LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "GET", s.RequestMethod, "method defaults to GET")

	_, err = testkit.LoadScenario("testdata/echo_flow.json")
	assert.Error(t, err, "a flow is not a single scenario")
}

func TestLoadScenarioValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"no url","expectedCode":200}`), 0o644))

	_, err := testkit.LoadScenario(path)
	assert.ErrorContains(t, err, "requestUrl is required")
}

func TestScenarioFilesSkipsBodies(t *testing.T) {
	files, err := testkit.ScenarioFiles("testdata")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "echo_flow.json", filepath.Base(files[0]))
}

func TestVarsExpand(t *testing.T) {
	v := testkit.Vars{"id": "abc"}
	assert.Equal(t, "/api/products/abc", v.Expand("/api/products/{{id}}"))
	assert.Equal(t, "/api/products/abc", v.Expand("/api/products/{{ id }}"))
	assert.Equal(t, "{{missing}}", v.Expand("{{missing}}"))
}

func TestDiffJSONSubset(t *testing.T) {
	var expected, actual interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"*","tags":["a"],"price":10}`), &expected))
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"x1","tags":["a"],"price":10,"extra":true}`), &actual))
	assert.Empty(t, testkit.DiffJSON("", expected, actual))

	require.NoError(t, json.Unmarshal([]byte(`{"tags":["a","b"],"price":11}`), &actual))
	diffs := testkit.DiffJSON("", expected, actual)
	assert.Len(t, diffs, 3, "missing _id, array length, price")
}

func TestLookup(t *testing.T) {
	var body interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"products":[{"_id":"p1"}],"total":1}`), &body))

	v, ok := testkit.Lookup(body, "products.0._id")
	assert.True(t, ok)
	assert.Equal(t, "p1", v)

	_, ok = testkit.Lookup(body, "products.1._id")
	assert.False(t, ok)
	_, ok = testkit.Lookup(body, "total.value")
	assert.False(t, ok)
}
