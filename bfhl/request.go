// Package bfhl contains the data model of the BFHL processor: the request the
// user submits, the response the remote endpoint returns, and the filtered view
// derived from the two.
package bfhl

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// GenericErrorMessage is the only failure message ever shown to the user.
const GenericErrorMessage = "Invalid JSON format or server error."

// ParseError is returned when the input text is not well-formed JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ShapeError is returned when the input is valid JSON but lacks an array-valued
// "data" member.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "invalid request shape: " + e.Reason
}

// Request is a validated submission. It is always a JSON object with an array
// in its "data" member. Other members are kept and sent along untouched.
type Request struct {
	// Data holds the elements of the "data" array in order.
	Data []json.RawMessage

	raw json.RawMessage
}

var _ json.Marshaler = (*Request)(nil)

// ParseRequest parses and validates the raw text typed by the user.
func ParseRequest(raw string) (*Request, error) {
	b := []byte(raw)
	if !json.Valid(b) {
		var v any
		err := json.Unmarshal(b, &v)
		return nil, &ParseError{Err: err}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, b); err != nil {
		return nil, &ParseError{Err: err}
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(compact.Bytes(), &object); err != nil || object == nil {
		return nil, &ShapeError{Reason: "expected a JSON object"}
	}

	data, ok := object["data"]
	if !ok {
		return nil, &ShapeError{Reason: `missing "data"`}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil || elems == nil {
		return nil, &ShapeError{Reason: `expected an array in "data"`}
	}

	return &Request{
		Data: elems,
		raw:  json.RawMessage(compact.Bytes()),
	}, nil
}

// NewRequest creates a request whose body is {"data": data}.
func NewRequest(data ...json.RawMessage) *Request {
	if data == nil {
		data = []json.RawMessage{}
	}
	raw, err := json.Marshal(map[string]any{"data": data})
	if err != nil {
		panic(fmt.Sprintf("bfhl: cannot marshal request: %v", err))
	}
	return &Request{Data: data, raw: raw}
}

// MarshalJSON implements [json.Marshaler]. It returns the parsed input object
// verbatim, compacted.
func (r *Request) MarshalJSON() ([]byte, error) {
	return r.raw, nil
}

// UnmarshalJSON implements [json.Unmarshaler]. It applies the same validation
// as [ParseRequest].
func (r *Request) UnmarshalJSON(b []byte) error {
	parsed, err := ParseRequest(string(b))
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}
