package contract

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Matcher kinds understood by the verifier.
const (
	MatchType      = "type"
	MatchRegex     = "regex"
	MatchEquality  = "equality"
	MatchInclude   = "include"
	MatchInteger   = "integer"
	MatchDecimal   = "decimal"
	MatchNumber    = "number"
	MatchNull      = "null"
	MatchTimestamp = "timestamp"
	MatchDate      = "date"
	MatchTime      = "time"
)

// Matcher is a single matching rule. Min and Max only apply to arrays under
// a type matcher.
type Matcher struct {
	Match string `json:"match"`
	Min   *int   `json:"min,omitempty"`
	Max   *int   `json:"max,omitempty"`
	Regex string `json:"regex,omitempty"`
	Value any    `json:"value,omitempty"`
}

// Cascade returns the matcher as inherited by child elements: array bounds
// are dropped and only type-like matchers are passed down.
func (m Matcher) Cascade() (Matcher, bool) {
	if m.Match != MatchType {
		return Matcher{}, false
	}
	return Matcher{Match: MatchType}, true
}

// MatchingRules maps a JSONPath rooted at the response body ("$", "$.animals",
// "$.animals[*].name") to the matchers that apply there.
type MatchingRules map[string][]Matcher

// UnmarshalJSON reads both the v2 flat layout and the v3 nested layout.
// Rules for anything other than the body are dropped.
func (r *MatchingRules) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("matchingRules must be an object: %w", err)
	}

	out := make(MatchingRules)
	if body, ok := raw["body"]; ok {
		var v3 map[string]struct {
			Matchers []Matcher `json:"matchers"`
		}
		if err := json.Unmarshal(body, &v3); err != nil {
			return fmt.Errorf("matchingRules.body: %w", err)
		}
		for path, entry := range v3 {
			for _, m := range entry.Matchers {
				out.add(path, m)
			}
		}
	}

	for key, value := range raw {
		path, ok := bodyPath(key)
		if !ok {
			continue
		}
		var m Matcher
		if err := json.Unmarshal(value, &m); err != nil {
			return fmt.Errorf("matchingRules[%q]: %w", key, err)
		}
		out.add(path, m)
	}

	*r = out
	return nil
}

func (r MatchingRules) add(path string, m Matcher) {
	if m.Match == "" {
		switch {
		case m.Regex != "":
			m.Match = MatchRegex
		default:
			m.Match = MatchType
		}
	}
	r[path] = append(r[path], m)
}

// bodyPath converts a v2 key such as "$.body.animals[*].name" to "$.animals[*].name".
func bodyPath(key string) (string, bool) {
	const prefix = "$.body"
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	rest := key[len(prefix):]
	if rest != "" && rest[0] != '.' && rest[0] != '[' {
		return "", false
	}
	return "$" + rest, true
}

// Kind names the JSON type of a decoded value.
func Kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// CheckValue applies the matcher to a single value without descending into
// it. For type matchers only the JSON kind of expected and actual is compared;
// array bounds are checked here too.
func (m Matcher) CheckValue(expected, actual any) error {
	switch m.Match {
	case MatchType:
		if Kind(expected) != Kind(actual) {
			return fmt.Errorf("expected a %s but got a %s", Kind(expected), Kind(actual))
		}
		if list, ok := actual.([]any); ok {
			if m.Min != nil && len(list) < *m.Min {
				return fmt.Errorf("expected at least %d elements but got %d", *m.Min, len(list))
			}
			if m.Max != nil && len(list) > *m.Max {
				return fmt.Errorf("expected at most %d elements but got %d", *m.Max, len(list))
			}
		}
		return nil
	case MatchRegex:
		re, err := regexp.Compile(m.Regex)
		if err != nil {
			return fmt.Errorf("invalid regex %q: %w", m.Regex, err)
		}
		s, ok := scalarString(actual)
		if !ok || !re.MatchString(s) {
			return fmt.Errorf("expected %v to match %q", actual, m.Regex)
		}
		return nil
	case MatchInclude:
		s, _ := actual.(string)
		want := fmt.Sprint(m.Value)
		if !strings.Contains(s, want) {
			return fmt.Errorf("expected %v to include %q", actual, want)
		}
		return nil
	case MatchInteger:
		f, ok := actual.(float64)
		if !ok || f != math.Trunc(f) {
			return fmt.Errorf("expected an integer but got %v", actual)
		}
		return nil
	case MatchDecimal, MatchNumber:
		if _, ok := actual.(float64); !ok {
			return fmt.Errorf("expected a number but got %v", actual)
		}
		return nil
	case MatchNull:
		if actual != nil {
			return fmt.Errorf("expected null but got %v", actual)
		}
		return nil
	case MatchTimestamp, MatchDate, MatchTime:
		if s, ok := actual.(string); !ok || s == "" {
			return fmt.Errorf("expected a %s string but got %v", m.Match, actual)
		}
		return nil
	case MatchEquality:
		// Equality is resolved by the caller's structural comparison.
		return nil
	default:
		return fmt.Errorf("unsupported matcher %q", m.Match)
	}
}

// Structural reports whether the matcher still requires the caller to compare
// expected and actual element by element.
func (m Matcher) Structural() bool {
	return m.Match == MatchEquality
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64, bool:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}
