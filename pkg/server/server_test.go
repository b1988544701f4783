package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/schemafaker/pkg/generator"
	"github.com/getmockd/schemafaker/pkg/logging"
	"github.com/getmockd/schemafaker/pkg/schema"
)

const serverSchema = `
schemas:
  Address:
    city: {type: str, min_length: 2, max_length: 30}
    zip: {type: str, min_length: 5, max_length: 5}
  User:
    id: {type: int, ge: 1}
    name: {type: str, max_length: 40}
    email: EmailStr
    age: {type: "int | None", ge: 0, le: 120}
    active: {type: bool, default: true}
    score: {type: float, ge: 0, le: 100}
    joined: date
    address: Address
    tags: {type: "list[str]", max_length: 3}
  Token:
    uuid: uuid
    label: str
`

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.Parse([]byte(serverSchema))
	require.NoError(t, err)
	return reg
}

func setupServerTest(t *testing.T, mutate ...func(*Config)) (*Server, *httptest.Server) {
	t.Helper()
	cfg := DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	srv, err := New(testRegistry(t), []string{"User", "Token"}, cfg,
		WithGeneratorOptions(generator.WithSeed(7)))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })
	return srv, ts
}

func doJSON(t *testing.T, method, target string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, target, rd)
	require.NoError(t, err)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeList(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var items []map[string]any
	require.NoError(t, json.Unmarshal(data, &items))
	return items
}

func decodeObject(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func maxID(items []map[string]any) int {
	best := 0
	for _, it := range items {
		if id := int(it["id"].(float64)); id > best {
			best = id
		}
	}
	return best
}

func newUser(name string) map[string]any {
	return map[string]any{
		"name":    name,
		"email":   "zed@example.com",
		"score":   12.5,
		"joined":  "2024-02-29",
		"address": map[string]any{"city": "Zzyzx", "zip": "92309"},
		"tags":    []string{"new"},
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	tests := []struct {
		name    string
		reg     *schema.Registry
		schemas []string
		mutate  func(*Config)
	}{
		{name: "nil registry", reg: nil, schemas: []string{"User"}},
		{name: "no schemas", reg: reg},
		{name: "unknown schema", reg: reg, schemas: []string{"Nope"}},
		{name: "zero count", reg: reg, schemas: []string{"User"}, mutate: func(c *Config) { c.Count = 0 }},
		{name: "bad port", reg: reg, schemas: []string{"User"}, mutate: func(c *Config) { c.Port = 70000 }},
		{name: "duplicate resource", reg: reg, schemas: []string{"User", "User"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			_, err := New(tt.reg, tt.schemas, cfg)
			assert.Error(t, err)
		})
	}
}

func TestList(t *testing.T) {
	t.Parallel()
	_, ts := setupServerTest(t)

	t.Run("returns all seed items", func(t *testing.T) {
		resp, data := doJSON(t, http.MethodGet, ts.URL+"/users", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "10", resp.Header.Get(HeaderTotalCount))
		assert.Len(t, decodeList(t, data), DefaultCount)
	})

	t.Run("pages with limit and offset", func(t *testing.T) {
		resp, data := doJSON(t, http.MethodGet, ts.URL+"/users?limit=3&offset=8", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "10", resp.Header.Get(HeaderTotalCount))
		assert.Len(t, decodeList(t, data), 2)
	})

	t.Run("rejects malformed query", func(t *testing.T) {
		resp, data := doJSON(t, http.MethodGet, ts.URL+"/users?order=sideways", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid query", decodeObject(t, data)["error"])
	})

	t.Run("unknown resource", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+"/widgets", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestList_Filters(t *testing.T) {
	t.Parallel()
	_, ts := setupServerTest(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/users", newUser("Zed Zulu"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	tests := []struct {
		name  string
		query url.Values
	}{
		{"field", url.Values{"name": {"Zed Zulu"}}},
		{"nested path", url.Values{"address.city": {"Zzyzx"}}},
		{"where expression", url.Values{"where": {`name == "Zed Zulu" && score > 12`}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := doJSON(t, http.MethodGet, ts.URL+"/users?"+tt.query.Encode(), nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			items := decodeList(t, data)
			require.Len(t, items, 1)
			assert.Equal(t, "Zed Zulu", items[0]["name"])
		})
	}

	t.Run("bad where expression", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+"/users?"+url.Values{"where": {"name =="}}.Encode(), nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGet(t *testing.T) {
	t.Parallel()
	_, ts := setupServerTest(t)

	_, data := doJSON(t, http.MethodGet, ts.URL+"/users", nil)
	first := decodeList(t, data)[0]
	key := strconv.Itoa(int(first["id"].(float64)))

	resp, data := doJSON(t, http.MethodGet, ts.URL+"/users/"+key, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, first, decodeObject(t, data))

	resp, data = doJSON(t, http.MethodGet, ts.URL+"/users/999999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeObject(t, data)
	assert.Equal(t, "users", body["resource"])
	assert.Equal(t, "999999", body["key"])
}

func TestGet_UUIDKey(t *testing.T) {
	t.Parallel()
	_, ts := setupServerTest(t)

	_, data := doJSON(t, http.MethodGet, ts.URL+"/tokens", nil)
	tokens := decodeList(t, data)
	require.NotEmpty(t, tokens)
	key := tokens[3]["uuid"].(string)

	resp, data := doJSON(t, http.MethodGet, ts.URL+"/tokens/"+key, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, tokens[3], decodeObject(t, data))
}

func TestCreate(t *testing.T) {
	t.Parallel()
	_, ts := setupServerTest(t)

	_, data := doJSON(t, http.MethodGet, ts.URL+"/users", nil)
	next := maxID(decodeList(t, data)) + 1

	resp, data := doJSON(t, http.MethodPost, ts.URL+"/users", newUser("Zed"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeObject(t, data)
	assert.Equal(t, float64(next), created["id"])
	assert.Equal(t, "Zed", created["name"])
	assert.Equal(t, "2024-02-29", created["joined"])
	assert.Equal(t, map[string]any{"city": "Zzyzx", "zip": "92309"}, created["address"])
	assert.Contains(t, created, "active", "fields missing from the body come from a generated template")
	assert.Contains(t, created, "age")

	location := resp.Header.Get("Location")
	assert.Equal(t, "/users/"+strconv.Itoa(next), location)
	resp, data = doJSON(t, http.MethodGet, ts.URL+location, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created, decodeObject(t, data))

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/users", nil)
	assert.Equal(t, "11", resp.Header.Get(HeaderTotalCount))
}

func TestCreate_ExplicitIDAndConflict(t *testing.T) {
	t.Parallel()
	_, ts := setupServerTest(t)

	body := newUser("Yara")
	body["id"] = 5000
	resp, data := doJSON(t, http.MethodPost, ts.URL+"/users", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(5000), decodeObject(t, data)["id"])

	resp, data = doJSON(t, http.MethodPost, ts.URL+"/users", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "5000", decodeObject(t, data)["key"])
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()
	_, ts := setupServerTest(t)

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"out of range", map[string]any{"age": 500}, "age"},
		{"wrong type", map[string]any{"name": 42}, "name"},
		{"bad email", map[string]any{"email": "not-an-email"}, "email"},
		{"bad date", map[string]any{"joined": "yesterday"}, "joined"},
		{"too many items", map[string]any{"tags": []string{"a", "b", "c", "d"}}, "tags"},
		{"nested field", map[string]any{"address": map[string]any{"city": "Q", "zip": "12345"}}, "address.city"},
		{"nested required", map[string]any{"address": map[string]any{"city": "Berlin"}}, "address"},
		{"not an object", `[1, 2]`, ""},
		{"malformed", `{"name":`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := doJSON(t, http.MethodPost, ts.URL+"/users", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			var body struct {
				Error  string `json:"error"`
				Fields []struct {
					Field   string `json:"field"`
					Message string `json:"message"`
				} `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(data, &body))
			assert.Equal(t, "invalid request", body.Error)
			require.NotEmpty(t, body.Fields)
			fields := make([]string, len(body.Fields))
			for i, f := range body.Fields {
				fields[i] = f.Field
			}
			assert.Contains(t, fields, tt.field)
		})
	}

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/users", nil)
	assert.Equal(t, "10", resp.Header.Get(HeaderTotalCount), "rejected bodies create nothing")
}

func TestCreate_PayloadTooLarge(t *testing.T) {
	t.Parallel()
	_, ts := setupServerTest(t, func(c *Config) { c.MaxBodySize = 64 })

	resp, data := doJSON(t, http.MethodPost, ts.URL+"/users", map[string]any{"name": strings.Repeat("x", 200)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "payload too large", decodeObject(t, data)["error"])
}

func TestCreate_FreshSessionsAreReproducible(t *testing.T) {
	t.Parallel()
	fresh := func(c *Config) { c.FreshCreateSessions = true }
	_, a := setupServerTest(t, fresh)
	_, b := setupServerTest(t, fresh)

	for i := 0; i < 3; i++ {
		_, da := doJSON(t, http.MethodPost, a.URL+"/users", map[string]any{"name": "Same"})
		_, db := doJSON(t, http.MethodPost, b.URL+"/users", map[string]any{"name": "Same"})
		assert.Equal(t, decodeObject(t, da), decodeObject(t, db))
	}
}

func TestReplace(t *testing.T) {
	t.Parallel()
	_, ts := setupServerTest(t)

	_, data := doJSON(t, http.MethodGet, ts.URL+"/users", nil)
	id := decodeList(t, data)[0]["id"].(float64)
	target := ts.URL + "/users/" + strconv.Itoa(int(id))

	t.Run("keeps the key and fills omitted fields", func(t *testing.T) {
		body := newUser("Replaced")
		body["id"] = 424242
		resp, data := doJSON(t, http.MethodPut, target, body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decodeObject(t, data)
		assert.Equal(t, id, got["id"])
		assert.Equal(t, "Replaced", got["name"])
		assert.Nil(t, got["age"], "omitted optional fields become null")
		assert.Equal(t, true, got["active"], "omitted defaulted fields take the default")
	})

	t.Run("requires non-optional fields", func(t *testing.T) {
		body := newUser("Partial")
		delete(body, "email")
		resp, data := doJSON(t, http.MethodPut, target, body)
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, string(data), "email")
	})

	t.Run("unknown key", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPut, ts.URL+"/users/999999", newUser("Nobody"))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestReplace_RoundTripsGeneratedItems(t *testing.T) {
	t.Parallel()
	_, ts := setupServerTest(t)

	_, data := doJSON(t, http.MethodGet, ts.URL+"/users", nil)
	for i, item := range decodeList(t, data) {
		target := ts.URL + "/users/" + strconv.Itoa(int(item["id"].(float64)))
		resp, body := doJSON(t, http.MethodPut, target, item)
		require.Equal(t, http.StatusOK, resp.StatusCode, "item %d: %s", i, body)
		assert.Equal(t, item, decodeObject(t, body))
	}
}

func TestPatch(t *testing.T) {
	t.Parallel()
	_, ts := setupServerTest(t)

	_, data := doJSON(t, http.MethodGet, ts.URL+"/users", nil)
	before := decodeList(t, data)[1]
	target := ts.URL + "/users/" + strconv.Itoa(int(before["id"].(float64)))

	resp, data := doJSON(t, http.MethodPatch, target, map[string]any{"name": "Patched", "id": 77777, "age": nil})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	after := decodeObject(t, data)

	assert.Equal(t, "Patched", after["name"])
	assert.Nil(t, after["age"])
	assert.Equal(t, before["id"], after["id"], "the key cannot be patched")
	assert.Equal(t, before["email"], after["email"])
	assert.Equal(t, before["address"], after["address"])

	resp, _ = doJSON(t, http.MethodPatch, target, map[string]any{"score": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	_, ts := setupServerTest(t)

	_, data := doJSON(t, http.MethodGet, ts.URL+"/tokens", nil)
	key := decodeList(t, data)[0]["uuid"].(string)

	resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/tokens/"+key, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/tokens/"+key, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/tokens/"+key, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReset(t *testing.T) {
	t.Parallel()
	_, ts := setupServerTest(t)

	_, seed := doJSON(t, http.MethodGet, ts.URL+"/users", nil)
	first := decodeList(t, seed)[0]
	resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/users/"+strconv.Itoa(int(first["id"].(float64))), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/users", newUser("Extra"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, data := doJSON(t, http.MethodPost, ts.URL+"/_reset?resource=users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"reset": []any{"users"}}, decodeObject(t, data))

	_, after := doJSON(t, http.MethodGet, ts.URL+"/users", nil)
	assert.JSONEq(t, string(seed), string(after))

	resp, data = doJSON(t, http.MethodPost, ts.URL+"/_reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"reset": []any{"users", "tokens"}}, decodeObject(t, data))

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/_reset?resource=widgets", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	srv, ts := setupServerTest(t, func(c *Config) { c.Count = 4 })

	doJSON(t, http.MethodGet, ts.URL+"/users", nil)
	doJSON(t, http.MethodGet, ts.URL+"/users/999999", nil)

	resp, data := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(data, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, srv.Seed(), health.Seed)
	assert.Equal(t, map[string]int{"users": 4, "tokens": 4}, health.Resources)
	assert.Equal(t, 8, health.TotalItems)
	assert.Equal(t, int64(1), health.Metrics.ListCount)
	assert.Equal(t, int64(1), health.Metrics.ErrorCount)
}

func TestOpenAPIDocument(t *testing.T) {
	t.Parallel()
	_, ts := setupServerTest(t)

	resp, data := doJSON(t, http.MethodGet, ts.URL+"/openapi.json", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := openapi3.NewLoader().LoadFromData(data)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	for _, path := range []string{"/users", "/users/{key}", "/tokens", "/tokens/{key}", "/healthz", "/_reset"} {
		assert.NotNil(t, doc.Paths.Value(path), path)
	}
	for _, name := range []string{"User", "Address", "Token", errorComponent} {
		assert.Contains(t, doc.Components.Schemas, name)
	}

	user := doc.Components.Schemas["User"].Value
	assert.ElementsMatch(t, []string{"id", "name", "email", "score", "joined", "address", "tags"}, user.Required)
	assert.True(t, user.Properties["age"].Value.Nullable)
	assert.Equal(t, "email", user.Properties["email"].Value.Format)
	assert.Equal(t, "#/components/schemas/Address", user.Properties["address"].Ref)
	require.NotNil(t, user.Properties["score"].Value.Max)
	assert.InDelta(t, 100.0, *user.Properties["score"].Value.Max, 1e-9)
}

func TestLoggingMiddleware(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelInfo, Format: logging.FormatJSON, Output: &buf})
	srv, err := New(testRegistry(t), []string{"Token"}, DefaultConfig(), WithLogger(log))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tokens/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/tokens/missing", entry["path"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
}

func TestStartStop(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Port = 0
	cfg.MaxConnections = 2
	srv, err := New(testRegistry(t), []string{"User"}, cfg, WithGeneratorOptions(generator.WithSeed(1)))
	require.NoError(t, err)

	require.NoError(t, srv.Start())
	base := "http://" + srv.Addr()
	resp, _ := doJSON(t, http.MethodGet, base+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Positive(t, srv.Uptime())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))

	client := &http.Client{Timeout: time.Second}
	_, err = client.Get(base + "/healthz")
	assert.Error(t, err)
}

func TestRun_StopsWithContext(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Port = 0
	srv, err := New(testRegistry(t), []string{"Token"}, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
