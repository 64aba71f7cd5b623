package model_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/okian/taskrank/internal/domain/model"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, raw string) model.Value {
	t.Helper()
	var v model.Value
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestValue_Int(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{`7`, 7, true},
		{`7.9`, 7, true},
		{`-2.5`, -2, true},
		{`1e3`, 1000, true},
		{`"12"`, 12, true},
		{`" 4 "`, 4, true},
		{`"4.5"`, 0, false},
		{`"x"`, 0, false},
		{`true`, 1, true},
		{`false`, 0, true},
		{`null`, 0, false},
		{`[1]`, 0, false},
		{`{}`, 0, false},
		{`1e300`, math.MaxInt, true},
		{`"99999999999999999999999"`, math.MaxInt, true},
		{`"-99999999999999999999999"`, math.MinInt, true},
	}
	for _, tc := range cases {
		got, ok := value(t, tc.raw).Int()
		require.Equal(t, tc.ok, ok, tc.raw)
		require.Equal(t, tc.want, got, tc.raw)
	}

	_, ok := model.Value{}.Int()
	require.False(t, ok)
}

func TestValue_Float(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{`2.5`, 2.5, true},
		{`"0.25"`, 0.25, true},
		{`true`, 1, true},
		{`"NaN"`, 0, false},
		{`"Inf"`, 0, false},
		{`"abc"`, 0, false},
		{`null`, 0, false},
		{`[]`, 0, false},
	}
	for _, tc := range cases {
		got, ok := value(t, tc.raw).Float()
		require.Equal(t, tc.ok, ok, tc.raw)
		require.Equal(t, tc.want, got, tc.raw)
	}
}

func TestValue_Truthy(t *testing.T) {
	for _, raw := range []string{`null`, `false`, `0`, `0.0`, `""`, `[]`, `{}`, ` [ ] `} {
		require.False(t, value(t, raw).Truthy(), raw)
	}
	for _, raw := range []string{`true`, `1`, `-1`, `"0"`, `" "`, `[0]`, `{"a":1}`} {
		require.True(t, value(t, raw).Truthy(), raw)
	}
	require.False(t, model.Value{}.Truthy())
}

func TestValue_TextAndTexts(t *testing.T) {
	require.Equal(t, "abc", value(t, `"abc"`).Text())
	require.Equal(t, "42", value(t, `42`).Text())
	require.Equal(t, "", value(t, `null`).Text())
	require.Equal(t, "", value(t, `0`).Text())
	require.Equal(t, "", model.Value{}.Text())

	require.Equal(t, []string{"a", "1", "2.5"}, value(t, `["a", 1, 2.5, null, {"x":1}, true]`).Texts())
	require.Nil(t, value(t, `"a,b"`).Texts())
	require.Empty(t, value(t, `[]`).Texts())
}

func TestValue_Presence(t *testing.T) {
	var absent model.Value
	require.False(t, absent.Present())
	require.Nil(t, absent.Raw())

	null := value(t, `null`)
	require.True(t, null.Present())
	require.True(t, null.IsNull())

	b, err := json.Marshal(absent)
	require.NoError(t, err)
	require.Equal(t, "null", string(b))

	require.Equal(t, `[1,2]`, string(model.ValueOf([]int{1, 2}).Raw()))
}
