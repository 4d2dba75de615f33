package verifier

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/getmockd/provider/pkg/contract"
)

// compareHeaders checks that every expected header is present with the
// expected value. Content-Type compares media types and any parameters the
// consumer listed.
func compareHeaders(expected contract.Headers, actual http.Header) []Mismatch {
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Mismatch
	for _, name := range names {
		want := expected[name]
		values := actual.Values(name)
		if len(values) == 0 {
			out = append(out, Mismatch{Kind: KindHeader, Path: name, Expected: want, Message: "header is missing"})
			continue
		}
		got := strings.Join(values, ", ")
		if strings.EqualFold(name, "Content-Type") {
			if !sameContentType(want, got) {
				out = append(out, Mismatch{Kind: KindHeader, Path: name, Expected: want, Actual: got, Message: "content type differs"})
			}
			continue
		}
		if strings.TrimSpace(want) != strings.TrimSpace(got) {
			out = append(out, Mismatch{Kind: KindHeader, Path: name, Expected: want, Actual: got, Message: "header value differs"})
		}
	}
	return out
}

func sameContentType(want, got string) bool {
	wantType, wantParams, err := mime.ParseMediaType(want)
	if err != nil {
		return strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(got))
	}
	gotType, gotParams, err := mime.ParseMediaType(got)
	if err != nil || wantType != gotType {
		return false
	}
	for k, v := range wantParams {
		if !strings.EqualFold(gotParams[k], v) {
			return false
		}
	}
	return true
}

// compareBody decodes both bodies and compares them under rules.
func compareBody(expectedRaw json.RawMessage, actualRaw []byte, rules contract.MatchingRules) []Mismatch {
	var expected any
	if err := json.Unmarshal(expectedRaw, &expected); err != nil {
		return []Mismatch{{Kind: KindBody, Message: "expected body is not JSON: " + err.Error()}}
	}
	if len(strings.TrimSpace(string(actualRaw))) == 0 {
		if expected == nil {
			return nil
		}
		return []Mismatch{{Kind: KindBody, Path: "$", Expected: render(expected), Message: "expected a body but got none"}}
	}
	var actual any
	if err := json.Unmarshal(actualRaw, &actual); err != nil {
		return []Mismatch{{Kind: KindBody, Path: "$", Actual: string(actualRaw), Message: "body is not JSON"}}
	}

	c := newBodyComparer(rules, actual)
	c.compare(jp.R(), expected, actual, nil)
	return c.mismatches
}

type bodyComparer struct {
	// rules maps concrete locations in the actual body to their matchers.
	rules      map[string][]contract.Matcher
	mismatches []Mismatch
}

// newBodyComparer resolves every rule path against the actual body so
// wildcard rules such as $.animals[*].name attach to each concrete element.
func newBodyComparer(rules contract.MatchingRules, actual any) *bodyComparer {
	c := &bodyComparer{rules: make(map[string][]contract.Matcher)}
	for path, matchers := range rules {
		if path == "$" {
			c.rules["$"] = append(c.rules["$"], matchers...)
			continue
		}
		expr, err := jp.ParseString(path)
		if err != nil {
			c.fail(path, nil, nil, fmt.Sprintf("invalid matching rule path: %v", err))
			continue
		}
		for _, loc := range expr.Locate(actual, 0) {
			key := loc.String()
			c.rules[key] = append(c.rules[key], matchers...)
		}
	}
	return c
}

func (c *bodyComparer) fail(path string, expected, actual any, msg string) {
	c.mismatches = append(c.mismatches, Mismatch{
		Kind:     KindBody,
		Path:     path,
		Expected: render(expected),
		Actual:   render(actual),
		Message:  msg,
	})
}

func (c *bodyComparer) compare(path jp.Expr, expected, actual any, inherited []contract.Matcher) {
	key := path.String()
	matchers := c.rules[key]
	if len(matchers) == 0 {
		matchers = inherited
	}
	if len(matchers) == 0 {
		c.compareStrict(path, expected, actual)
		return
	}

	structural := false
	typed := false
	var cascade []contract.Matcher
	for _, m := range matchers {
		if err := m.CheckValue(expected, actual); err != nil {
			c.fail(key, expected, actual, err.Error())
			return
		}
		if m.Structural() {
			structural = true
		}
		if cm, ok := m.Cascade(); ok {
			typed = true
			cascade = append(cascade, cm)
		}
	}
	if structural {
		c.compareStrict(path, expected, actual)
		return
	}
	if !typed {
		return
	}

	switch e := expected.(type) {
	case map[string]any:
		if a, ok := actual.(map[string]any); ok {
			c.compareObject(path, e, a, cascade)
		}
	case []any:
		a, ok := actual.([]any)
		if !ok || len(e) == 0 {
			return
		}
		// Every actual element is checked against the first expected one.
		for i, item := range a {
			c.compare(index(path, i), e[0], item, cascade)
		}
	}
}

func (c *bodyComparer) compareStrict(path jp.Expr, expected, actual any) {
	key := path.String()
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			c.fail(key, expected, actual, fmt.Sprintf("expected an object but got a %s", contract.Kind(actual)))
			return
		}
		c.compareObject(path, e, a, nil)
	case []any:
		a, ok := actual.([]any)
		if !ok {
			c.fail(key, expected, actual, fmt.Sprintf("expected an array but got a %s", contract.Kind(actual)))
			return
		}
		if len(a) != len(e) {
			c.fail(key, expected, actual, fmt.Sprintf("expected %d elements but got %d", len(e), len(a)))
			return
		}
		for i := range e {
			c.compare(index(path, i), e[i], a[i], nil)
		}
	default:
		if !reflect.DeepEqual(expected, actual) {
			c.fail(key, expected, actual, "value differs")
		}
	}
}

// compareObject checks expected keys only; extra actual keys are allowed.
func (c *bodyComparer) compareObject(path jp.Expr, expected, actual map[string]any, inherited []contract.Matcher) {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		childPath := child(path, k)
		av, ok := actual[k]
		if !ok {
			c.fail(childPath.String(), expected[k], nil, "key is missing")
			continue
		}
		c.compare(childPath, expected[k], av, inherited)
	}
}

// child and index copy the path so sibling paths never share a backing array.
func child(path jp.Expr, key string) jp.Expr {
	p := make(jp.Expr, len(path), len(path)+1)
	copy(p, path)
	return p.C(key)
}

func index(path jp.Expr, i int) jp.Expr {
	p := make(jp.Expr, len(path), len(path)+1)
	copy(p, path)
	return p.N(i)
}

func render(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
