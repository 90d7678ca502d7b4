package bfhl

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Response is what the remote endpoint answered. Its shape is not enforced:
// each known field is nil when the body did not carry it. A present JSON null
// is kept as the literal null.
type Response struct {
	Numbers         json.RawMessage
	Alphabets       json.RawMessage
	HighestAlphabet json.RawMessage

	// Raw is the complete body as received.
	Raw json.RawMessage
}

// ParseResponse parses a response body. Any well-formed JSON value is
// accepted; only an object can carry the known fields.
func ParseResponse(body []byte) (*Response, error) {
	if !json.Valid(body) {
		return nil, fmt.Errorf("response body is not JSON")
	}

	resp := &Response{Raw: json.RawMessage(bytes.Clone(body))}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(body, &object); err != nil {
		// Not an object, so there is nothing to pick from.
		return resp, nil
	}

	resp.Numbers = object[FieldNumbers]
	resp.Alphabets = object[FieldAlphabets]
	resp.HighestAlphabet = object[FieldHighestAlphabet]
	return resp, nil
}

// Falsy returns true if the body is null, false, zero or an empty string.
// Such a response is stored but there is nothing to show for it.
func (r *Response) Falsy() bool {
	var v any
	if err := json.Unmarshal(r.Raw, &v); err != nil {
		return true
	}
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case string:
		return v == ""
	default:
		return false
	}
}

// Field returns the value of the field with the given JSON name, or nil if the
// response did not carry it.
func (r *Response) Field(name string) json.RawMessage {
	switch name {
	case FieldNumbers:
		return r.Numbers
	case FieldAlphabets:
		return r.Alphabets
	case FieldHighestAlphabet:
		return r.HighestAlphabet
	default:
		return nil
	}
}

// MarshalJSON implements [json.Marshaler]. It returns the body as received.
func (r *Response) MarshalJSON() ([]byte, error) {
	if r.Raw == nil {
		return []byte("null"), nil
	}
	return r.Raw, nil
}
