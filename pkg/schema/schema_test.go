package schema

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Registry
// ============================================================================

func TestRegistry_DuplicateNames(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddSchema(NewSchema("User")))

	err := reg.AddEnum(&Enum{Name: "User", Members: []EnumMember{{Name: "a", Value: "a"}}})
	assert.ErrorIs(t, err, ErrDuplicateName)

	err = reg.AddAlias("User", "str")
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestRegistry_EmptyEnum(t *testing.T) {
	err := NewRegistry().AddEnum(&Enum{Name: "Empty"})
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestSchema_DuplicateField(t *testing.T) {
	s := NewSchema("User")
	require.NoError(t, s.AddField(&Field{Name: "id", Type: "int"}))
	assert.ErrorIs(t, s.AddField(&Field{Name: "id", Type: "str"}), ErrDuplicateName)
	assert.Equal(t, []string{"id"}, s.FieldNames())
}

func TestRegistry_Select(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Select("")
	assert.ErrorIs(t, err, ErrNoSchemas)

	require.NoError(t, reg.AddSchema(NewSchema("A")))
	require.NoError(t, reg.AddSchema(NewSchema("B")))

	s, err := reg.Select("")
	require.NoError(t, err)
	assert.Equal(t, "A", s.Name)

	reg.Root = "B"
	s, err = reg.Select("")
	require.NoError(t, err)
	assert.Equal(t, "B", s.Name)

	_, err = reg.Select("C")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestRegistry_Merge(t *testing.T) {
	a := NewRegistry()
	require.NoError(t, a.AddSchema(NewSchema("A")))
	b := NewRegistry()
	b.Root = "B"
	require.NoError(t, b.AddSchema(NewSchema("B")))
	require.NoError(t, b.AddAlias("Email", "EmailStr"))

	require.NoError(t, a.Merge(b))
	assert.Equal(t, "B", a.Root)
	assert.Len(t, a.Schemas(), 2)
	expr, ok := a.Alias("Email")
	assert.True(t, ok)
	assert.Equal(t, "EmailStr", expr)

	assert.ErrorIs(t, a.Merge(b), ErrDuplicateName)
}

func TestSplitRef(t *testing.T) {
	tests := []struct {
		ref, path, model string
	}{
		{"user.yaml", "user.yaml", ""},
		{"user.yaml:User", "user.yaml", "User"},
		{"dir/models.json:Order", "dir/models.json", "Order"},
		{`C:\schemas\user.yaml`, `C:\schemas\user.yaml`, ""},
		{"schemas/**/*.yaml:Item", "schemas/**/*.yaml", "Item"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			path, model := SplitRef(tt.ref)
			assert.Equal(t, tt.path, path)
			assert.Equal(t, tt.model, model)
		})
	}
}

// ============================================================================
// Native documents
// ============================================================================

func TestLoadFile_Native(t *testing.T) {
	reg, err := LoadFile(context.Background(), "testdata/shop.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Order", reg.Root)

	order, ok := reg.Schema("Order")
	require.True(t, ok)
	assert.Equal(t, "A customer order", order.Description)
	assert.Equal(t,
		[]string{"id", "customer_email", "status", "priority", "total", "tags", "note", "shipping"},
		order.FieldNames())

	id, _ := order.Field("id")
	assert.Equal(t, "int", id.Type)
	assert.Equal(t, map[string]any{"ge": 1}, id.Constraints)

	total, _ := order.Field("total")
	assert.Equal(t, 0.05, total.Constraints["multiple_of"])

	tags, _ := order.Field("tags")
	assert.Equal(t, "list[str]", tags.Type)
	assert.Equal(t, 3, tags.Constraints["max_length"])
	assert.Equal(t, map[string]any{"max_length": 12}, tags.Items)

	note, _ := order.Field("note")
	assert.Equal(t, []any{"leave at door", "ring twice"}, note.Examples)

	prio, _ := order.Field("priority")
	assert.True(t, prio.HasDefault)
	assert.Equal(t, "LOW", prio.Default)

	status, ok := reg.Enum("Status")
	require.True(t, ok)
	assert.Equal(t, []any{"pending", "paid", "shipped"}, status.Values())

	priority, _ := reg.Enum("Priority")
	assert.Equal(t, []EnumMember{{Name: "LOW", Value: 1}, {Name: "HIGH", Value: 3}}, priority.Members)

	contact, ok := reg.Alias("Contact")
	assert.True(t, ok)
	assert.Equal(t, "EmailStr | None", contact)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"not a mapping", "- a\n- b\n", ErrInvalidSchema},
		{"unknown key", "schemas: {A: {x: int}}\nextra: 1\n", ErrInvalidSchema},
		{"no schemas", "enums: {E: [a]}\n", ErrNoSchemas},
		{"missing type", "schemas: {A: {x: {ge: 1}}}\n", ErrInvalidSchema},
		{"bad root", "root: Z\nschemas: {A: {x: int}}\n", ErrModelNotFound},
		{"syntax", "schemas: [\n", ErrInvalidSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_JSON(t *testing.T) {
	doc := `{"schemas": {"Point": {"x": {"type": "float", "ge": -1, "le": 1}, "y": "float"}}}`
	reg, err := Parse([]byte(doc))
	require.NoError(t, err)
	p, err := reg.Select("")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, p.FieldNames())
}

func TestLoadFile_Errors(t *testing.T) {
	ctx := context.Background()
	_, err := LoadFile(ctx, "testdata/missing.yaml")
	assert.ErrorIs(t, err, ErrFileNotFound)

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0644))
	_, err = LoadFile(ctx, empty)
	assert.ErrorIs(t, err, ErrEmptyFile)

	txt := filepath.Join(dir, "schema.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0644))
	_, err = LoadFile(ctx, txt)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoad_GlobAndDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("schemas: {A: {x: int}}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.yml"), []byte("schemas: {B: {y: str}}\n"), 0644))

	ctx := context.Background()
	reg, err := LoadPath(ctx, dir)
	require.NoError(t, err)
	assert.Len(t, reg.Schemas(), 2)

	reg, s, err := Load(ctx, filepath.Join(dir, "**", "*.yml")+":B")
	require.NoError(t, err)
	assert.Equal(t, "B", s.Name)
	assert.Len(t, reg.Schemas(), 1)

	_, err = LoadGlob(ctx, filepath.Join(dir, "*.json"))
	assert.ErrorIs(t, err, ErrNoMatchingFile)
}

// ============================================================================
// OpenAPI
// ============================================================================

func TestLoadFile_OpenAPI(t *testing.T) {
	reg, err := LoadFile(context.Background(), "testdata/petstore.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Pet", reg.Root)
	pet, ok := reg.Schema("Pet")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name", "kind", "born", "weight", "tags", "owner"}, pet.FieldNames())

	types := make(map[string]string)
	for _, f := range pet.Fields {
		types[f.Name] = f.Type
	}
	assert.Equal(t, "int", types["id"])
	assert.Equal(t, "str", types["name"])
	assert.Equal(t, "Kind", types["kind"])
	assert.Equal(t, "date | None", types["born"])
	assert.Equal(t, "float | None", types["weight"])
	assert.Equal(t, "list[str] | None", types["tags"])
	assert.Equal(t, "PetOwner | None", types["owner"])

	id, _ := pet.Field("id")
	assert.Equal(t, map[string]any{"ge": 1.0}, id.Constraints)
	name, _ := pet.Field("name")
	assert.Equal(t, []any{"Rex"}, name.Examples)
	assert.Equal(t, 20, name.Constraints["max_length"])
	weight, _ := pet.Field("weight")
	assert.Equal(t, 0.0, weight.Constraints["gt"])
	tags, _ := pet.Field("tags")
	assert.Equal(t, 4, tags.Constraints["max_length"])
	assert.Equal(t, map[string]any{"max_length": 10}, tags.Items)

	owner, ok := reg.Schema("PetOwner")
	require.True(t, ok)
	email, _ := owner.Field("email")
	assert.Equal(t, "EmailStr | None", email.Type)

	kind, ok := reg.Enum("Kind")
	require.True(t, ok)
	assert.Equal(t, []any{"dog", "cat", "bird"}, kind.Values())
}

// ============================================================================
// GraphQL
// ============================================================================

func TestLoadFile_GraphQL(t *testing.T) {
	reg, err := LoadFile(context.Background(), "testdata/library.graphql")
	require.NoError(t, err)

	_, hasQuery := reg.Schema("Query")
	assert.False(t, hasQuery)

	names := make([]string, 0)
	for _, s := range reg.Schemas() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Author", "Book"}, names)

	book, _ := reg.Schema("Book")
	assert.Equal(t, []string{"title", "pages", "genre", "authors", "published"}, book.FieldNames())

	title, _ := book.Field("title")
	assert.Equal(t, "str", title.Type)
	assert.Equal(t, map[string]any{"minLength": int64(3), "maxLength": int64(40)}, title.Constraints)

	pages, _ := book.Field("pages")
	assert.Equal(t, []any{int64(320)}, pages.Examples)

	authors, _ := book.Field("authors")
	assert.Equal(t, "list[Author]", authors.Type)
	assert.Equal(t, map[string]any{"minLength": int64(1)}, authors.Items)

	published, _ := book.Field("published")
	assert.Equal(t, "datetime | None", published.Type)

	author, _ := reg.Schema("Author")
	website, _ := author.Field("website")
	assert.Equal(t, "HttpUrl | None", website.Type)
	id, _ := author.Field("id")
	assert.Equal(t, "uuid", id.Type)

	genre, ok := reg.Enum("Genre")
	require.True(t, ok)
	assert.Equal(t, []any{"FICTION", "HISTORY"}, genre.Values())

	union, ok := reg.Alias("SearchResult")
	assert.True(t, ok)
	assert.Equal(t, "Union[Book, Author]", union)
}

func TestParseGraphQL_Invalid(t *testing.T) {
	_, err := ParseGraphQL("bad.graphql", []byte("type Book { title: Missing }"))
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

// ============================================================================
// Protocol Buffers
// ============================================================================

func TestLoadFile_Proto(t *testing.T) {
	reg, err := LoadFile(context.Background(), "testdata/inventory.proto")
	require.NoError(t, err)

	assert.Equal(t, "Item", reg.Root)
	item, ok := reg.Schema("Item")
	require.True(t, ok)

	want := map[string]string{
		"sku":        "str",
		"quantity":   "int",
		"price":      "float",
		"category":   "Category",
		"labels":     "list[str]",
		"stock":      "dict[str, int]",
		"updated_at": "datetime | None",
		"dimensions": "Item.Dimensions | None",
		"note":       "str | None",
	}
	for _, f := range item.Fields {
		assert.Equal(t, want[f.Name], f.Type, f.Name)
	}
	assert.Len(t, item.Fields, len(want))

	_, ok = reg.Schema("Item.Dimensions")
	assert.True(t, ok)
	cat, ok := reg.Enum("Category")
	require.True(t, ok)
	assert.Equal(t, []any{"CATEGORY_UNSPECIFIED", "CATEGORY_TOOLS"}, cat.Values())
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatGraphQL, DetectFormat("a.gql", nil))
	assert.Equal(t, FormatProto, DetectFormat("a.proto", nil))
	assert.Equal(t, FormatOpenAPI, DetectFormat("a.json", []byte(`{"openapi": "3.0.0"}`)))
	assert.Equal(t, FormatNative, DetectFormat("a.yml", []byte("schemas: {}")))
	assert.Equal(t, Format(""), DetectFormat("a.txt", nil))
}
