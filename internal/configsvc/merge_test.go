package configsvc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnion(t *testing.T) {
	cases := []struct {
		cur, in, want string
	}{
		{`["a","b"]`, `["b","c"]`, `["a","b","c"]`},
		{`null`, `["a","a"]`, `["a"]`},
		{`"a"`, `["b"]`, `["a","b"]`},
		{`[1, 2]`, `[2.0, 3]`, `[1,2,3]`},
		{`[{"k":1}]`, `[{ "k" : 1 }]`, `[{"k":1}]`},
		{`[9007199254740993]`, `[1, 9007199254740992]`, `[9007199254740993,1,9007199254740992]`},
		{`[0.5]`, `[0.50, 5e-1, 1.25]`, `[0.5,1.25]`},
		{`[12345678901234567890]`, `[1.2345678901234567890e19]`, `[12345678901234567890]`},
	}
	for _, tc := range cases {
		got, err := Union(json.RawMessage(tc.cur), json.RawMessage(tc.in))
		require.NoError(t, err, tc.cur)
		assert.Equal(t, tc.want, string(got), tc.cur)
	}

	_, err := Union(json.RawMessage(`{"a":1}`), json.RawMessage(`["b"]`))
	assert.Error(t, err)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains(json.RawMessage(`["editor","author"]`), "editor"))
	assert.False(t, Contains(json.RawMessage(`["editor-in-chief"]`), "editor"))
	assert.True(t, Contains(json.RawMessage(`"chief editor"`), "editor"))
	assert.True(t, Contains(json.RawMessage(`{"editor": 1}`), "editor"))
	assert.False(t, Contains(json.RawMessage(`42`), "editor"))
	assert.False(t, Contains(json.RawMessage(`not json`), "editor"))
}
