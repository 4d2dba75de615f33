package states

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/getmockd/provider/pkg/httputil"
)

// DefaultStateChangePath is where external verifiers post state changes.
const DefaultStateChangePath = "/_pact/provider_states"

// Actions a state change request may carry.
const (
	ActionSetup    = "setup"
	ActionTeardown = "teardown"
)

// maxStateChangeBody bounds the state change request body.
const maxStateChangeBody = 64 << 10

// StateChange is the body external verifiers send before an interaction.
// Older verifiers send "states", newer ones a single "state" with an action.
type StateChange struct {
	Consumer string         `json:"consumer,omitempty"`
	State    string         `json:"state,omitempty"`
	States   []string       `json:"states,omitempty"`
	Action   string         `json:"action,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
}

// Names returns every state named by the request, single state first.
func (c *StateChange) Names() []string {
	var names []string
	if c.State != "" {
		names = append(names, c.State)
	}
	for _, s := range c.States {
		if s != "" && s != c.State {
			names = append(names, s)
		}
	}
	return names
}

// StateChangeHandler serves state change requests against d. Teardown calls
// reset, which may be nil.
func StateChangeHandler(d *Dispatcher, reset func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var change StateChange
		dec := json.NewDecoder(io.LimitReader(r.Body, maxStateChangeBody))
		if err := dec.Decode(&change); err != nil && !errors.Is(err, io.EOF) {
			httputil.WriteBadRequest(w, "invalid_body", "state change body must be a JSON object: "+err.Error())
			return
		}

		switch change.Action {
		case "", ActionSetup:
			for _, name := range change.Names() {
				if err := d.Setup(name); err != nil {
					var unknown *UnknownStateError
					if errors.As(err, &unknown) {
						httputil.WriteBadRequest(w, "unknown_state", err.Error())
						return
					}
					httputil.WriteInternalError(w, "setup_failed", err.Error())
					return
				}
			}
		case ActionTeardown:
			if reset != nil {
				reset()
			}
		default:
			httputil.WriteBadRequest(w, "invalid_action", "action must be \"setup\" or \"teardown\", got "+change.Action)
			return
		}

		httputil.WriteOK(w, map[string]any{})
	})
}
