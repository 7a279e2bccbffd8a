package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare", input: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", input: "```json\n{\"a\":{\"b\":2}}\n```", want: `{"a":{"b":2}}`},
		{name: "prose around", input: `Here you go: {"a":1} enjoy!`, want: `{"a":1}`},
		{name: "no object", input: "sorry, I can't", wantErr: true},
		{name: "reversed braces", input: "} {", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSON_RejectsTrailingData(t *testing.T) {
	var v map[string]interface{}
	assert.Error(t, ParseJSON(`{"a":1} {"b":2}`, &v))
	assert.NoError(t, ParseJSON(`{"a":1}  `, &v))
}

func TestParseJSON_UsesNumber(t *testing.T) {
	var v map[string]interface{}
	require.NoError(t, ParseJSON(`{"followers":12345678901234567}`, &v))
	assert.Equal(t, "12345678901234567", v["followers"].(interface{ String() string }).String())
}

func TestHashString(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashString(""))
	assert.NotEqual(t, HashString("a b"), HashString("a  b"))
}
