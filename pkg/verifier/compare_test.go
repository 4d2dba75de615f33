package verifier

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/getmockd/provider/pkg/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rules(t *testing.T, raw string) contract.MatchingRules {
	t.Helper()
	var r contract.MatchingRules
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return r
}

func TestCompareBody(t *testing.T) {
	t.Parallel()

	eachLike := `{
		"$.body.animals": {"min": 3, "match": "type"},
		"$.body.animals[*].name": {"match": "type"},
		"$.body.animals[*].image": {"match": "type"},
		"$.body.valid_date": {"match": "type"}
	}`
	expected := `{"test":"NO","valid_date":"2017-02-01T20:23+1100","animals":[{"name":"Doggy","image":"dog"}]}`

	tests := []struct {
		name     string
		expected string
		actual   string
		rules    string
		paths    []string
	}{
		{
			name:     "each like with extra keys",
			expected: expected,
			actual:   `{"test":"NO","valid_date":"2020-01-01T00:00:00Z","extra":true,"animals":[{"name":"Buddy","image":"dog"},{"name":"Cathy","image":"cat"},{"name":"Birdy","image":"bird"}]}`,
			rules:    eachLike,
		},
		{
			name:     "too few elements",
			expected: expected,
			actual:   `{"test":"NO","valid_date":"x","animals":[{"name":"Buddy","image":"dog"}]}`,
			rules:    eachLike,
			paths:    []string{"$.animals"},
		},
		{
			name:     "element of wrong type",
			expected: expected,
			actual:   `{"test":"NO","valid_date":"x","animals":[{"name":"a","image":"b"},{"name":1,"image":"b"},{"name":"c","image":"d"}]}`,
			rules:    eachLike,
			paths:    []string{"$.animals[1].name"},
		},
		{
			name:     "literal without a rule",
			expected: expected,
			actual:   `{"test":"YES","valid_date":"x","animals":[{"name":"a","image":"b"},{"name":"b","image":"b"},{"name":"c","image":"d"}]}`,
			rules:    eachLike,
			paths:    []string{"$.test"},
		},
		{
			name:     "missing key",
			expected: `{"count":1000}`,
			actual:   `{"animals":[]}`,
			paths:    []string{"$.count"},
		},
		{
			name:     "strict array length",
			expected: `{"animals":[]}`,
			actual:   `{"animals":[{"name":"a","image":"b"}]}`,
			paths:    []string{"$.animals"},
		},
		{
			name:     "string literal body",
			expected: `"valid_date is required"`,
			actual:   `"valid_date is required"`,
		},
		{
			name:     "string literal differs",
			expected: `"valid_date is required"`,
			actual:   `"'x' is not a date"`,
			paths:    []string{"$"},
		},
		{
			name:     "type rule cascades from the root",
			expected: `{"count":1,"test":"NO"}`,
			actual:   `{"count":1000,"test":"MAYBE"}`,
			rules:    `{"$.body":{"match":"type"}}`,
		},
		{
			name:     "v3 regex rule",
			expected: `{"animals":[{"image":"dog"}]}`,
			actual:   `{"animals":[{"image":"dog"},{"image":"fish"}]}`,
			rules:    `{"body":{"$.animals":{"matchers":[{"match":"type"}]},"$.animals[*].image":{"matchers":[{"match":"regex","regex":"^(dog|cat)$"}]}}}`,
			paths:    []string{"$.animals[1].image"},
		},
		{
			name:     "not json",
			expected: `{"a":1}`,
			actual:   `<html>`,
			paths:    []string{"$"},
		},
		{
			name:     "empty body when one is expected",
			expected: `"valid_date is required"`,
			actual:   ``,
			paths:    []string{"$"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var r contract.MatchingRules
			if tt.rules != "" {
				r = rules(t, tt.rules)
			}

			got := compareBody(json.RawMessage(tt.expected), []byte(tt.actual), r)

			paths := make([]string, 0, len(got))
			for _, m := range got {
				assert.Equal(t, KindBody, m.Kind)
				paths = append(paths, m.Path)
			}
			if len(tt.paths) == 0 {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.paths, paths)
			}
		})
	}
}

func TestCompareHeaders(t *testing.T) {
	t.Parallel()

	actual := http.Header{}
	actual.Set("Content-Type", "application/json; charset=utf-8")
	actual.Set("X-Request-ID", "abc")

	assert.Empty(t, compareHeaders(contract.Headers{"Content-Type": "application/json"}, actual))
	assert.Empty(t, compareHeaders(contract.Headers{"x-request-id": "abc"}, actual))

	got := compareHeaders(contract.Headers{
		"Content-Type": "application/json; charset=latin1",
		"Vary":         "Accept",
		"X-Request-ID": "xyz",
	}, actual)
	require.Len(t, got, 3)
	assert.Equal(t, "Content-Type", got[0].Path)
	assert.Equal(t, "Vary", got[1].Path)
	assert.Equal(t, "header is missing", got[1].Message)
	assert.Equal(t, "X-Request-ID", got[2].Path)
}
