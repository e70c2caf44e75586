package httputil

// OptionalString tracks presence and value for JSON PATCH semantics (RFC 7396).
// This enables proper tri-state handling that Go's *string cannot express:
//   - Present=false: field absent from the body (don't change)
//   - Present=true, Value=nil: field is JSON null (clear/set to NULL)
//   - Present=true, Value=&"": field is empty string
//   - Present=true, Value=&"text": field has value
type OptionalString struct {
	Present bool
	Value   *string
}

// SetString marks the field present with value s.
func SetString(s string) OptionalString {
	return OptionalString{Present: true, Value: &s}
}

// AppendTo writes the field into a PATCH body map when it is present.
func (o OptionalString) AppendTo(body map[string]any, key string) {
	if !o.Present {
		return
	}
	if o.Value == nil {
		body[key] = nil
		return
	}
	body[key] = *o.Value
}

// OptionalInt64 is the numeric counterpart of OptionalString, used for
// foreign keys such as a document's folder: absent = keep, null = detach.
type OptionalInt64 struct {
	Present bool
	Value   *int64
}

// SetInt64 marks the field present with value v.
func SetInt64(v int64) OptionalInt64 {
	return OptionalInt64{Present: true, Value: &v}
}

// Null marks the field present and null.
func Null() OptionalInt64 {
	return OptionalInt64{Present: true}
}

// AppendTo writes the field into a PATCH body map when it is present.
func (o OptionalInt64) AppendTo(body map[string]any, key string) {
	if !o.Present {
		return
	}
	if o.Value == nil {
		body[key] = nil
		return
	}
	body[key] = *o.Value
}
