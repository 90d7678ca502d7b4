package bfhl

import (
	"bytes"
	"encoding/json"
)

// ViewField is one field of a [View].
type ViewField struct {
	Name  string
	Value json.RawMessage
}

// View is the part of a response visible under a selection. Fields are in
// label display order.
type View struct {
	Fields []ViewField
}

var _ json.Marshaler = (*View)(nil)

// Project derives the view of resp under sel. It returns nil if resp is nil or
// [Response.Falsy], in which case nothing should be rendered. Fields that are
// selected but absent from the response are left out.
func Project(resp *Response, sel Selection) *View {
	if resp == nil || resp.Falsy() {
		return nil
	}

	view := &View{Fields: make([]ViewField, 0, sel.Len())}
	for _, label := range sel.Labels() {
		value := resp.Field(label.Field())
		if value == nil {
			continue
		}
		view.Fields = append(view.Fields, ViewField{
			Name:  label.Field(),
			Value: value,
		})
	}

	return view
}

// Get returns the value of the named field, or nil if the view does not
// include it.
func (v *View) Get(name string) json.RawMessage {
	for _, field := range v.Fields {
		if field.Name == name {
			return field.Value
		}
	}
	return nil
}

// MarshalJSON implements [json.Marshaler]. Fields are written in order.
func (v *View) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range v.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if err := json.Compact(&buf, field.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Indent renders the view as JSON indented by two spaces.
func (v *View) Indent() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", "  "); err != nil {
		return string(b)
	}
	return buf.String()
}
