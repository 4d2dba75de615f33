package contract

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Pact is a contract between one consumer and one provider.
type Pact struct {
	Consumer     Pacticipant    `json:"consumer"`
	Provider     Pacticipant    `json:"provider"`
	Interactions []Interaction  `json:"interactions"`
	Metadata     map[string]any `json:"metadata,omitempty"`

	// Source is the file the pact was loaded from, if any.
	Source string `json:"-"`
}

// Pacticipant names a party to the contract.
type Pacticipant struct {
	Name string `json:"name"`
}

// Interaction is one recorded request and the response the consumer expects.
type Interaction struct {
	Description    string          `json:"description"`
	ProviderState  string          `json:"providerState,omitempty"`
	ProviderStates []ProviderState `json:"providerStates,omitempty"`
	Request        Request         `json:"request"`
	Response       Response        `json:"response"`
}

// ProviderState is a v3 provider state entry.
type ProviderState struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

// States returns the provider states the interaction requires, in order.
func (i *Interaction) States() []string {
	var names []string
	if i.ProviderState != "" {
		names = append(names, i.ProviderState)
	}
	for _, ps := range i.ProviderStates {
		if ps.Name != "" {
			names = append(names, ps.Name)
		}
	}
	return names
}

// Request is the recorded request.
type Request struct {
	Method  string          `json:"method"`
	Path    string          `json:"path"`
	Query   Query           `json:"query,omitempty"`
	Headers Headers         `json:"headers,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
}

// Response is the response the consumer expects.
type Response struct {
	Status        int             `json:"status"`
	Headers       Headers         `json:"headers,omitempty"`
	Body          json.RawMessage `json:"body,omitempty"`
	MatchingRules MatchingRules   `json:"matchingRules,omitempty"`
}

// HasBody reports whether the consumer recorded an expectation for the body.
func (r *Response) HasBody() bool {
	return len(r.Body) > 0
}

// Query holds request query parameters.
type Query url.Values

// UnmarshalJSON accepts a raw query string or a map of string or string list values.
func (q *Query) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return fmt.Errorf("invalid query string %q: %w", raw, err)
		}
		*q = Query(values)
		return nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("query must be a string or an object: %w", err)
	}
	values := make(url.Values, len(m))
	for key, v := range m {
		list, err := stringOrList(v)
		if err != nil {
			return fmt.Errorf("query parameter %q: %w", key, err)
		}
		values[key] = list
	}
	*q = Query(values)
	return nil
}

// Encode renders the query in URL form, sorted by key.
func (q Query) Encode() string {
	return url.Values(q).Encode()
}

// Headers maps header names to values. Multi-valued headers are joined with ", ".
type Headers map[string]string

// UnmarshalJSON accepts string or string list values.
func (h *Headers) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("headers must be an object: %w", err)
	}
	out := make(Headers, len(m))
	for name, v := range m {
		list, err := stringOrList(v)
		if err != nil {
			return fmt.Errorf("header %q: %w", name, err)
		}
		out[name] = strings.Join(list, ", ")
	}
	*h = out
	return nil
}

func stringOrList(data json.RawMessage) ([]string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return []string{s}, nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("want a string or a list of strings")
	}
	return list, nil
}

// States returns every distinct provider state declared in the pact, in the
// order first seen.
func (p *Pact) States() []string {
	seen := make(map[string]bool)
	var names []string
	for i := range p.Interactions {
		for _, name := range p.Interactions[i].States() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// Name identifies the pact in reports, e.g. "our_consumer -> our_provider".
func (p *Pact) Name() string {
	return p.Consumer.Name + " -> " + p.Provider.Name
}
