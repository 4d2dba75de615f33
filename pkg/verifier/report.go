package verifier

import "fmt"

// Mismatch kinds.
const (
	KindState   = "state"
	KindRequest = "request"
	KindStatus  = "status"
	KindHeader  = "header"
	KindBody    = "body"
	KindOpenAPI = "openapi"
)

// Mismatch is one difference between the expected and the actual response.
type Mismatch struct {
	Kind     string `json:"kind"`
	Path     string `json:"path,omitempty"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Message  string `json:"message"`
}

func (m Mismatch) String() string {
	if m.Path != "" {
		return fmt.Sprintf("%s %s: %s", m.Kind, m.Path, m.Message)
	}
	return fmt.Sprintf("%s: %s", m.Kind, m.Message)
}

// Result is the outcome of replaying one interaction.
type Result struct {
	Description string     `json:"description"`
	States      []string   `json:"states,omitempty"`
	Status      int        `json:"status,omitempty"`
	Mismatches  []Mismatch `json:"mismatches,omitempty"`
}

// Passed reports whether the interaction matched.
func (r *Result) Passed() bool {
	return len(r.Mismatches) == 0
}

// Report collects the results for one pact.
type Report struct {
	Pact    string   `json:"pact"`
	Source  string   `json:"source,omitempty"`
	Results []Result `json:"results"`
}

// Failed returns the number of interactions with at least one mismatch.
func (r *Report) Failed() int {
	n := 0
	for i := range r.Results {
		if !r.Results[i].Passed() {
			n++
		}
	}
	return n
}

// Passed reports whether every interaction matched.
func (r *Report) Passed() bool {
	return r.Failed() == 0
}
