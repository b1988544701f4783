package generator

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleInstance() *Instance {
	addr := NewInstance(2)
	addr.Set("zip", "12345")
	addr.Set("city", "Springfield")

	in := NewInstance(6)
	in.Set("id", int64(7))
	in.Set("name", "Ada")
	in.Set("created", time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
	in.Set("day", Date{Year: 2024, Month: time.March, Day: 1})
	in.Set("ref", uuid.MustParse("6ba7b810-9dad-41d1-80b4-00c04fd430c8"))
	in.Set("address", addr)
	in.Set("tags", []any{"a", addr.Clone()})
	in.Set("nothing", nil)
	return in
}

func TestInstance_SetGetDelete(t *testing.T) {
	in := NewInstance(0)
	in.Set("b", 1)
	in.Set("a", 2)
	in.Set("b", 3)
	assert.Equal(t, []string{"b", "a"}, in.Keys())
	v, ok := in.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	in.Delete("b")
	in.Delete("missing")
	assert.Equal(t, []string{"a"}, in.Keys())
	assert.Equal(t, 1, in.Len())
	_, ok = in.Get("b")
	assert.False(t, ok)
}

func TestInstance_CloneIsDeep(t *testing.T) {
	in := sampleInstance()
	cp := in.Clone()
	require.Equal(t, in, cp)

	addr, _ := cp.Get("address")
	addr.(*Instance).Set("zip", "99999")
	orig, _ := in.Get("address")
	zip, _ := orig.(*Instance).Get("zip")
	assert.Equal(t, "12345", zip)
}

func TestInstance_MarshalJSONKeepsOrder(t *testing.T) {
	b, err := json.Marshal(sampleInstance())
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":7,"name":"Ada","created":"2024-05-06T07:08:09Z","day":"2024-03-01",`+
			`"ref":"6ba7b810-9dad-41d1-80b4-00c04fd430c8","address":{"zip":"12345","city":"Springfield"},`+
			`"tags":["a",{"zip":"12345","city":"Springfield"}],"nothing":null}`,
		string(b))
}

func TestInstance_MarshalYAMLKeepsOrder(t *testing.T) {
	b, err := yaml.Marshal(sampleInstance())
	require.NoError(t, err)

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal(b, &doc))
	root := doc.Content[0]
	var keys []string
	values := map[string]*yaml.Node{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		keys = append(keys, root.Content[i].Value)
		values[root.Content[i].Value] = root.Content[i+1]
	}
	assert.Equal(t, []string{"id", "name", "created", "day", "ref", "address", "tags", "nothing"}, keys)
	assert.Equal(t, "2024-05-06T07:08:09Z", values["created"].Value)
	assert.Equal(t, "2024-03-01", values["day"].Value)
	assert.Equal(t, "6ba7b810-9dad-41d1-80b4-00c04fd430c8", values["ref"].Value)
	assert.Equal(t, "zip", values["address"].Content[0].Value)
	assert.Equal(t, yaml.SequenceNode, values["tags"].Kind)
}

func TestInstance_ToMapAndFromMap(t *testing.T) {
	m := sampleInstance().ToMap()
	assert.Equal(t, "2024-05-06T07:08:09Z", m["created"])
	assert.Equal(t, "2024-03-01", m["day"])
	assert.Equal(t, "6ba7b810-9dad-41d1-80b4-00c04fd430c8", m["ref"])
	assert.Equal(t, map[string]any{"zip": "12345", "city": "Springfield"}, m["address"])

	back := FromMap(m, []string{"name", "id"})
	assert.Equal(t, []string{"name", "id", "address", "created", "day", "nothing", "ref", "tags"}, back.Keys())
	addr, _ := back.Get("address")
	assert.IsType(t, &Instance{}, addr)
}

func TestTemporalText(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalText([]byte("2020-02-29")))
	assert.Equal(t, Date{Year: 2020, Month: time.February, Day: 29}, d)
	assert.Error(t, d.UnmarshalText([]byte("2020-13-01")))

	var tod TimeOfDay
	require.NoError(t, tod.UnmarshalText([]byte("23:59:01")))
	assert.Equal(t, "23:59:01", tod.String())
}
