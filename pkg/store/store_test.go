package store

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/schemafaker/pkg/generator"
	"github.com/getmockd/schemafaker/pkg/schema"
)

const usersSchema = `
schemas:
  Address:
    city: str
  User:
    id: int
    name: str
    age: int | None
    active: bool
    score: float
    address: Address
  Token:
    uuid: uuid
    label: str
  Point:
    x: int
`

func plan(t *testing.T, name string) *generator.Plan {
	t.Helper()
	reg, err := schema.Parse([]byte(usersSchema))
	require.NoError(t, err)
	s, err := generator.NewSession(reg, generator.WithSeed(1))
	require.NoError(t, err)
	p, err := s.Plan(name)
	require.NoError(t, err)
	return p
}

var userOrder = []string{"id", "name", "age", "active", "score", "address"}

func user(id int64, name string, age any, active bool, score float64, city string) *generator.Instance {
	return generator.FromMap(map[string]any{
		"id": id, "name": name, "age": age, "active": active, "score": score,
		"address": map[string]any{"city": city},
	}, userOrder)
}

func setupStoreTest(t *testing.T) (*Store, *Collection, *MetricsObserver) {
	t.Helper()
	st := New()
	obs := NewMetricsObserver()
	st.SetObserver(obs)

	col, err := st.Register(Config{
		Plan: plan(t, "User"),
		Seed: []*generator.Instance{
			user(1, "Alice", int64(30), true, 1.5, "Berlin"),
			user(2, "Bob", nil, false, 2.25, "Paris"),
			user(5, "Carol", int64(41), true, 0.1, "Berlin"),
		},
	})
	require.NoError(t, err)
	return st, col, obs
}

func names(t *testing.T, items []*generator.Instance) []string {
	t.Helper()
	out := make([]string, len(items))
	for i, in := range items {
		v, _ := in.Get("name")
		out[i], _ = v.(string)
	}
	return out
}

func TestResourceName(t *testing.T) {
	assert.Equal(t, "users", ResourceName("User"))
	assert.Equal(t, "address", ResourceName("Address"))
	assert.Equal(t, "orderitems", ResourceName("OrderItem"))
}

func TestStore_Register(t *testing.T) {
	st, col, _ := setupStoreTest(t)
	assert.Equal(t, "users", col.Name())
	assert.Equal(t, "User", col.Schema())
	assert.Equal(t, IDField, col.KeyField())
	assert.Equal(t, userOrder, col.FieldOrder())
	assert.Equal(t, 3, col.Len())
	assert.Equal(t, []string{"users"}, st.Names())

	_, err := st.Register(Config{Plan: plan(t, "User")})
	assert.Error(t, err, "duplicate resource")

	_, err = st.Register(Config{})
	assert.Error(t, err)

	got, err := st.Collection("users")
	require.NoError(t, err)
	assert.Same(t, col, got)

	_, err = st.Collection("nope")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestCollection_Get(t *testing.T) {
	_, col, obs := setupStoreTest(t)

	tests := []struct {
		key  string
		want string
	}{
		{"5", "Carol"},
		{"1", "Alice"},
		{"0", "Alice"}, // no id 0: falls back to index
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			in, err := col.Get(tt.key)
			require.NoError(t, err)
			v, _ := in.Get("name")
			assert.Equal(t, tt.want, v)
		})
	}

	_, err := col.Get("99")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "99", nf.Key)

	snap := obs.Snapshot()
	assert.Equal(t, int64(3), snap.ReadCount)
	assert.Equal(t, int64(1), snap.ErrorCount)
}

func TestCollection_GetReturnsCopy(t *testing.T) {
	_, col, _ := setupStoreTest(t)
	in, err := col.Get("1")
	require.NoError(t, err)
	in.Set("name", "Mallory")

	again, err := col.Get("1")
	require.NoError(t, err)
	v, _ := again.Get("name")
	assert.Equal(t, "Alice", v)
}

func TestCollection_Create(t *testing.T) {
	_, col, obs := setupStoreTest(t)

	in := user(0, "Dave", nil, false, 0, "Rome")
	in.Set("id", nil)
	created, err := col.Create(in, true)
	require.NoError(t, err)
	id, _ := created.Get("id")
	assert.Equal(t, int64(6), id, "max id + 1")
	assert.Equal(t, int64(7), col.NextID())

	_, err = col.Create(user(2, "Eve", nil, false, 0, "Oslo"), true)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "2", conflict.Key)

	created, err = col.Create(user(40, "Frank", nil, false, 0, "Kyiv"), true)
	require.NoError(t, err)
	id, _ = created.Get("id")
	assert.Equal(t, int64(40), id)
	assert.Equal(t, 5, col.Len())
	assert.Equal(t, int64(2), obs.Snapshot().CreateCount)
}

func TestCollection_NextIDEmpty(t *testing.T) {
	st := New()
	col, err := st.Register(Config{Plan: plan(t, "User")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), col.NextID())
}

func TestCollection_ReplaceKeepsKey(t *testing.T) {
	_, col, _ := setupStoreTest(t)

	updated, err := col.Replace("2", user(77, "Robert", int64(50), true, 9, "Lyon"))
	require.NoError(t, err)
	id, _ := updated.Get("id")
	assert.Equal(t, int64(2), id)

	got, err := col.Get("2")
	require.NoError(t, err)
	assert.Equal(t, "Robert", mustGet(t, got, "name"))

	_, err = col.Replace("77", user(77, "x", nil, false, 0, ""))
	assert.Error(t, err)
}

func TestCollection_Patch(t *testing.T) {
	_, col, obs := setupStoreTest(t)

	patch := generator.NewInstance(2)
	patch.Set("age", int64(31))
	patch.Set("id", int64(100))
	updated, err := col.Patch("1", patch)
	require.NoError(t, err)
	assert.Equal(t, int64(31), mustGet(t, updated, "age"))
	assert.Equal(t, int64(1), mustGet(t, updated, "id"), "key field cannot be patched")
	assert.Equal(t, "Alice", mustGet(t, updated, "name"))
	assert.Equal(t, userOrder, updated.Keys())
	assert.Equal(t, int64(1), obs.Snapshot().UpdateCount)
}

func TestCollection_DeleteAndReset(t *testing.T) {
	st, col, obs := setupStoreTest(t)

	require.NoError(t, col.Delete("5"))
	assert.Equal(t, 2, col.Len())
	_, err := col.Get("5")
	assert.Error(t, err)
	assert.Error(t, col.Delete("5"))

	names, err := st.Reset("")
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, names)
	assert.Equal(t, 3, col.Len())
	_, err = col.Get("5")
	assert.NoError(t, err)

	_, err = st.Reset("missing")
	assert.Error(t, err)

	snap := obs.Snapshot()
	assert.Equal(t, int64(1), snap.DeleteCount)
	assert.Equal(t, int64(1), snap.ResetCount)
	assert.Equal(t, 3, st.TotalItems())
}

func TestCollection_UUIDKey(t *testing.T) {
	st := New()
	u1 := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	tok := generator.NewInstance(2)
	tok.Set("uuid", u1)
	tok.Set("label", "first")
	col, err := st.Register(Config{Plan: plan(t, "Token"), Seed: []*generator.Instance{tok}})
	require.NoError(t, err)
	assert.Equal(t, UUIDField, col.KeyField())
	assert.Equal(t, "tokens", col.Name())

	in, err := col.Get(u1.String())
	require.NoError(t, err)
	assert.Equal(t, "first", mustGet(t, in, "label"))

	_, err = col.Create(tok, true)
	assert.Error(t, err)
}

func TestCollection_IndexOnly(t *testing.T) {
	st := New()
	p1 := generator.NewInstance(1)
	p1.Set("x", int64(10))
	p2 := generator.NewInstance(1)
	p2.Set("x", int64(20))
	col, err := st.Register(Config{Plan: plan(t, "Point"), Seed: []*generator.Instance{p1, p2}})
	require.NoError(t, err)
	assert.Empty(t, col.KeyField())

	in, err := col.Get("1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), mustGet(t, in, "x"))

	_, err = col.Get("2")
	assert.Error(t, err)
	_, err = col.Get("-1")
	assert.Error(t, err)

	// Creating without a key field never conflicts.
	_, err = col.Create(p1, true)
	assert.NoError(t, err)
}

func TestObserverFanOut(t *testing.T) {
	st, col, _ := setupStoreTest(t)
	a, b := NewMetricsObserver(), NewMetricsObserver()
	st.SetObserver(MultiObserver{a, b})

	_, _, err := col.List(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.Snapshot().ListCount)
	assert.Equal(t, int64(1), b.Snapshot().ListCount)
	assert.Equal(t, int64(1), a.Snapshot().TotalOperations())

	st.SetObserver(nil)
	_, _, err = col.List(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.Snapshot().ListCount)
}

func TestToErrorResponse(t *testing.T) {
	tests := []struct {
		err    error
		status int
		title  string
	}{
		{&NotFoundError{Resource: "users", Key: "9"}, 404, "resource not found"},
		{&ConflictError{Resource: "users", Key: "1"}, 409, "resource already exists"},
		{&ValidationError{Resource: "User", Fields: []FieldError{{Field: "age", Message: "expected integer"}}}, 422, "invalid request"},
		{&QueryError{Param: "limit", Message: "bad"}, 400, "invalid query"},
		{&PayloadTooLargeError{MaxSize: 10}, 413, "payload too large"},
		{assert.AnError, 500, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			resp := ToErrorResponse(tt.err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.title, resp.Error)
		})
	}
	assert.Equal(t, "validation failed: age: expected integer",
		(&ValidationError{Fields: []FieldError{{Field: "age", Message: "expected integer"}}}).Error())
}

func TestCompareValues(t *testing.T) {
	now := time.Now()
	assert.Equal(t, -1, compareValues(nil, int64(1)))
	assert.Equal(t, 1, compareValues(int64(3), 2.5))
	assert.Equal(t, 0, compareValues(int64(2), 2.0))
	assert.Equal(t, -1, compareValues("a", "b"))
	assert.Equal(t, -1, compareValues(false, true))
	assert.Equal(t, -1, compareValues(now, now.Add(time.Second)))
}

func mustGet(t *testing.T, in *generator.Instance, key string) any {
	t.Helper()
	v, ok := in.Get(key)
	require.True(t, ok, "missing %s", key)
	return v
}

func query(t *testing.T, col *Collection, raw string) *Query {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	q, err := col.ParseQuery(values)
	require.NoError(t, err)
	return q
}
