package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/schemafaker/pkg/schema"
)

func TestResolve(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, reg.AddSchema(schema.NewSchema("Address")))
	require.NoError(t, reg.AddEnum(&schema.Enum{Name: "Color", Members: []schema.EnumMember{{Name: "red", Value: "red"}}}))
	require.NoError(t, reg.AddAlias("Contact", "EmailStr | None"))
	require.NoError(t, reg.AddAlias("Ids", "list[UUID]"))

	tests := []struct {
		expr string
		want string
	}{
		{"int", "Scalar(int)"},
		{"float", "Scalar(float)"},
		{"Decimal", "Scalar(float)"},
		{"str", "Scalar(str)"},
		{"bool", "Scalar(bool)"},
		{"Any", "Scalar(any)"},
		{"EmailStr", "Scalar(str:email)"},
		{"HttpUrl", "Scalar(str:url)"},
		{"datetime", "Temporal(datetime)"},
		{"datetime.date", "Temporal(date)"},
		{"time", "Temporal(time)"},
		{"uuid", "Identifier"},
		{"Optional[int]", "Optional(Scalar(int))"},
		{"int | None", "Optional(Scalar(int))"},
		{"None | int", "Optional(Scalar(int))"},
		{"Union[int, None]", "Optional(Scalar(int))"},
		{"Optional[Optional[int]]", "Optional(Scalar(int))"},
		{"int | str", "Union(Scalar(int), Scalar(str))"},
		{"int | str | None", "Optional(Union(Scalar(int), Scalar(str)))"},
		{"Union[int, Union[str, bool]]", "Union(Scalar(int), Scalar(str), Scalar(bool))"},
		{"list[int]", "Sequence(Scalar(int))"},
		{"typing.List[str]", "Sequence(Scalar(str))"},
		{"set[str]", "Sequence(Scalar(str))"},
		{"tuple[int, ...]", "Sequence(Scalar(int))"},
		{"list", "Sequence(Scalar(any))"},
		{"dict[str, int]", "Mapping(Scalar(int))"},
		{"Dict[str, list[Address]]", "Mapping(Sequence(Schema(Address)))"},
		{"dict", "Mapping(Scalar(any))"},
		{"dict[int, str]", "Unsupported(dict[int, str])"},
		{"tuple[int, str]", "Unsupported(tuple[int, str])"},
		{"Literal['a', 'b']", `Literal("a", "b")`},
		{"Literal[1, True]", "Literal(1, true)"},
		{"Address", "Schema(Address)"},
		{"Color", "Enum(Color)"},
		{"Contact", "Optional(Scalar(str:email))"},
		{"Ids | None", "Optional(Sequence(Identifier))"},
		{"FrozenWidget", "Unsupported(FrozenWidget)"},
		{"int[str]", "Unsupported(int[str])"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Resolve(tt.expr, reg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, reg.AddAlias("A", "list[B]"))
	require.NoError(t, reg.AddAlias("B", "A | None"))

	_, err := Resolve("A", reg)
	assert.ErrorIs(t, err, errAliasCycle)

	_, err = Resolve("list[int", reg)
	assert.Error(t, err)
}

func TestType_IsString(t *testing.T) {
	email, err := Resolve("EmailStr", nil)
	require.NoError(t, err)
	assert.True(t, email.IsString())

	opt, err := Resolve("str | None", nil)
	require.NoError(t, err)
	assert.False(t, opt.IsString())
	assert.True(t, opt.Elem.IsString())
}
