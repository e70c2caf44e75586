package httputil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the wrapper the backends put around payloads.
// Spring services answer {success, message, data}; Flask services answer
// {status, data, total}. Bare payloads are also accepted.
type Envelope struct {
	Success *bool           `json:"success,omitempty"`
	Status  string          `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Total   *int            `json:"total,omitempty"`
}

// Failed reports whether the envelope explicitly signals failure.
func (e *Envelope) Failed() bool {
	if e == nil {
		return false
	}
	if e.Success != nil && !*e.Success {
		return true
	}
	return strings.EqualFold(e.Status, "error")
}

// DecodeData decodes body into out, unwrapping a data envelope when present.
// The envelope (possibly empty) is returned so callers can read Total or Message.
func DecodeData(body []byte, out any) (*Envelope, error) {
	env := &Envelope{}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return env, nil
	}

	payload := trimmed
	if trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err == nil {
			// Not every object is an envelope; ignore shape mismatches here
			_ = json.Unmarshal(trimmed, env)
			if data, ok := fields["data"]; ok {
				payload = data
			}
		}
	}

	if out == nil {
		return env, nil
	}
	if string(bytes.TrimSpace(payload)) == "null" {
		return env, nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return env, fmt.Errorf("invalid JSON: %w", err)
	}
	return env, nil
}

// errorBody covers the error shapes the backends return: Spring {message},
// Flask {error} and RFC 7807 problem details {title, detail}.
type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Detail  string          `json:"detail"`
	Title   string          `json:"title"`
}

// ErrorMessage extracts the backend-provided message from an error body.
// Returns empty string when the body carries none.
func ErrorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}

	var eb errorBody
	if err := json.Unmarshal(trimmed, &eb); err != nil {
		return ""
	}

	if eb.Message != "" {
		return eb.Message
	}
	if len(eb.Error) > 0 {
		var s string
		if err := json.Unmarshal(eb.Error, &s); err == nil && s != "" {
			return s
		}
	}
	if eb.Detail != "" {
		return eb.Detail
	}
	return eb.Title
}
