package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pactsDir = "../../examples/pacts"

func TestLoad_V2(t *testing.T) {
	t.Parallel()

	p, err := Load(filepath.Join(pactsDir, "our_consumer-count_provider.json"))
	require.NoError(t, err)

	assert.Equal(t, "our_consumer -> our_provider", p.Name())
	require.Len(t, p.Interactions, 4)
	assert.Equal(t, []string{"data count is > 0", "data count is == 0"}, p.States())

	first := p.Interactions[0]
	assert.Equal(t, []string{"data count is > 0"}, first.States())
	assert.Equal(t, "2017-02-01T20:23+1100", first.Request.Query["valid_date"][0])
	assert.Equal(t, "valid_date=2017-02-01T20%3A23%2B1100", first.Request.Query.Encode())
	assert.Equal(t, "application/json", first.Response.Headers["Content-Type"])
	assert.Equal(t, []Matcher{{Match: MatchType}}, first.Response.MatchingRules["$.valid_date"])
	assert.Equal(t, []Matcher{{Match: MatchInteger}}, first.Response.MatchingRules["$.count"])

	noData := p.Interactions[1]
	assert.False(t, noData.Response.HasBody())

	missing := p.Interactions[2]
	assert.Empty(t, missing.Request.Query)
	assert.JSONEq(t, `"valid_date is required"`, string(missing.Response.Body))
}

func TestLoad_V3(t *testing.T) {
	t.Parallel()

	p, err := Load(filepath.Join(pactsDir, "our_consumer-animals_provider.json"))
	require.NoError(t, err)

	first := p.Interactions[0]
	assert.Equal(t, []string{"animals count is > 0"}, first.States())
	assert.Equal(t, []string{"2017-02-01T20:23+1100"}, first.Request.Query["valid_date"])
	assert.Equal(t, "application/json", first.Request.Headers["Accept"])

	rules := first.Response.MatchingRules
	require.Len(t, rules["$.animals"], 1)
	assert.Equal(t, MatchType, rules["$.animals"][0].Match)
	require.NotNil(t, rules["$.animals"][0].Min)
	assert.Equal(t, 1, *rules["$.animals"][0].Min)
	assert.Equal(t, MatchRegex, rules["$.animals[*].image"][0].Match)
	assert.Equal(t, MatchTimestamp, rules["$.valid_date"][0].Match)
}

func TestParse_SchemaErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		problem string
	}{
		{
			name:    "missing provider",
			doc:     `{"consumer":{"name":"c"},"interactions":[]}`,
			problem: "provider",
		},
		{
			name:    "status out of range",
			doc:     `{"consumer":{"name":"c"},"provider":{"name":"p"},"interactions":[{"description":"d","request":{"method":"GET","path":"/x"},"response":{"status":700}}]}`,
			problem: "/interactions/0/response/status",
		},
		{
			name:    "relative path",
			doc:     `{"consumer":{"name":"c"},"provider":{"name":"p"},"interactions":[{"description":"d","request":{"method":"GET","path":"x"},"response":{"status":200}}]}`,
			problem: "/interactions/0/request/path",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.doc), "test.json")
			require.ErrorIs(t, err, ErrInvalidPact)

			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, "test.json", schemaErr.Source)
			assert.Contains(t, schemaErr.Error(), tt.problem)
		})
	}
}

func TestParse_NotJSON(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{`), "")
	assert.ErrorIs(t, err, ErrInvalidPact)
}

func TestParse_HeaderLists(t *testing.T) {
	t.Parallel()

	doc := `{"consumer":{"name":"c"},"provider":{"name":"p"},"interactions":[{
		"description":"d",
		"request":{"method":"GET","path":"/x","query":{"a":"1","b":["2","3"]}},
		"response":{"status":200,"headers":{"Vary":["Accept","Origin"]}}
	}]}`
	p, err := Parse([]byte(doc), "inline")
	require.NoError(t, err)

	i := p.Interactions[0]
	assert.Equal(t, "a=1&b=2&b=3", i.Request.Query.Encode())
	assert.Equal(t, "Accept, Origin", i.Response.Headers["Vary"])
}

func TestLoadGlob(t *testing.T) {
	t.Parallel()

	pacts, err := LoadGlob(filepath.Join(pactsDir, "**", "*.json"))
	require.NoError(t, err)
	require.Len(t, pacts, 2)
	assert.Contains(t, pacts[0].Source, "animals")
	assert.Contains(t, pacts[1].Source, "count")

	_, err = LoadGlob(filepath.Join(t.TempDir(), "*.json"))
	assert.ErrorContains(t, err, "no pact files match")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMatcher_CheckValue(t *testing.T) {
	t.Parallel()

	three := 3
	tests := []struct {
		name     string
		m        Matcher
		expected any
		actual   any
		ok       bool
	}{
		{"type string", Matcher{Match: MatchType}, "a", "b", true},
		{"type mismatch", Matcher{Match: MatchType}, "a", 1.0, false},
		{"array min ok", Matcher{Match: MatchType, Min: &three}, []any{}, []any{1.0, 2.0, 3.0}, true},
		{"array min short", Matcher{Match: MatchType, Min: &three}, []any{}, []any{1.0}, false},
		{"array max", Matcher{Match: MatchType, Max: &three}, []any{}, []any{1.0, 2.0, 3.0, 4.0}, false},
		{"regex", Matcher{Match: MatchRegex, Regex: "^d.g$"}, "dog", "dig", true},
		{"regex miss", Matcher{Match: MatchRegex, Regex: "^d.g$"}, "dog", "cat", false},
		{"integer", Matcher{Match: MatchInteger}, 1.0, 1000.0, true},
		{"integer fraction", Matcher{Match: MatchInteger}, 1.0, 1.5, false},
		{"number", Matcher{Match: MatchNumber}, 1.0, "1", false},
		{"include", Matcher{Match: MatchInclude, Value: "date"}, "", "'x' is not a date", true},
		{"null", Matcher{Match: MatchNull}, nil, nil, true},
		{"timestamp", Matcher{Match: MatchTimestamp}, "", "2017-02-01T20:23:25+11:00", true},
		{"unsupported", Matcher{Match: "semver"}, "", "1.0.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.m.CheckValue(tt.expected, tt.actual)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestMatcher_Cascade(t *testing.T) {
	t.Parallel()

	one := 1
	m, ok := Matcher{Match: MatchType, Min: &one}.Cascade()
	assert.True(t, ok)
	assert.Nil(t, m.Min)

	_, ok = Matcher{Match: MatchRegex, Regex: "x"}.Cascade()
	assert.False(t, ok)
}
