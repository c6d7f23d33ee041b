package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustValue(t *testing.T, src string) Value {
	t.Helper()
	var v Value
	require.NoError(t, json.Unmarshal([]byte(src), &v))
	return v
}

func TestValueString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"absent", Value{}, "undefined"},
		{"null", mustValue(t, `null`), "null"},
		{"string", mustValue(t, `"Rue A"`), "Rue A"},
		{"integer", mustValue(t, `3`), "3"},
		{"float", mustValue(t, `1.5`), "1.5"},
		{"integral float", mustValue(t, `2.0`), "2"},
		{"large", Number(1e21), "1e+21"},
		{"tiny", Number(1e-7), "1e-7"},
		{"bool", mustValue(t, `true`), "true"},
		{"array", mustValue(t, `[1,"a",null]`), "1,a,"},
		{"object", mustValue(t, `{"id":1}`), "[object Object]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.v.String())
		})
	}
}

func TestValueNullInsideStruct(t *testing.T) {
	t.Parallel()

	var a Article
	require.NoError(t, json.Unmarshal([]byte(`{"title":"T","rueId":null}`), &a))

	require.Equal(t, KindNull, a.RueID.Kind())
	require.Equal(t, KindAbsent, a.Period.Kind())
	require.True(t, a.RueID.IsNil())
	require.True(t, a.Period.IsNil())
}

func TestValueTruthy(t *testing.T) {
	t.Parallel()

	require.False(t, Value{}.Truthy())
	require.False(t, Null().Truthy())
	require.False(t, String("").Truthy())
	require.False(t, Int(0).Truthy())
	require.False(t, Bool(false).Truthy())

	require.True(t, String("0").Truthy())
	require.True(t, Int(-1).Truthy())
	require.True(t, mustValue(t, `[]`).Truthy())
	require.True(t, mustValue(t, `{}`).Truthy())
}

func TestValueOr(t *testing.T) {
	t.Parallel()

	require.Equal(t, "x", Value{}.Or(String("x")).String())
	require.Equal(t, "x", Null().Or(String("x")).String())
	// empty string is not nullish
	require.Equal(t, "", String("").Or(String("x")).String())
	require.Equal(t, "0", Int(0).Or(String("x")).String())
}

func TestValueIndex(t *testing.T) {
	t.Parallel()

	cases := []struct {
		v    Value
		n    int
		want int
		ok   bool
	}{
		{Int(0), 3, 0, true},
		{String("2"), 3, 2, true},
		{Int(3), 3, 0, false},
		{Number(1.5), 3, 0, false},
		{Int(-1), 3, 0, false},
		{String("02"), 3, 0, false},
		{String("+1"), 3, 0, false},
		{String("Renaissance"), 3, 0, false},
		{Bool(true), 3, 0, false},
	}
	for _, tc := range cases {
		got, ok := tc.v.Index(tc.n)
		require.Equal(t, tc.ok, ok, "value %s", tc.v)
		require.Equal(t, tc.want, got, "value %s", tc.v)
	}
}

func TestValueDigitsAndPosition(t *testing.T) {
	t.Parallel()

	require.True(t, Int(5).Digits())
	require.True(t, String("05").Digits())
	require.False(t, String("").Digits())
	require.False(t, String("5a").Digits())
	require.False(t, String("-5").Digits())

	i, ok := String("05").Position()
	require.True(t, ok)
	require.Equal(t, 5, i)

	_, ok = Number(2.5).Position()
	require.False(t, ok)

	_, ok = String("99999999999999999999").Position()
	require.False(t, ok)
}

func TestValueMarshalKeepsShape(t *testing.T) {
	t.Parallel()

	a := Article{Title: String("T"), RueID: Int(0), Period: mustValue(t, `{"id":"p"}`)}
	data, err := json.Marshal(a)
	require.NoError(t, err)
	require.JSONEq(t, `{"title":"T","file":null,"image":null,"video":null,"rueId":0,"periode":{"id":"p"},"famille":null,"theme":null}`, string(data))
}
