package svchttp

import "encoding/json"

// ResultKey wraps bodies that do not decode to a JSON object.
const ResultKey = "result"

// Response is a normalized response body.
type Response map[string]any

// Result returns the wrapped value and whether the body was wrapped.
func (r Response) Result() (any, bool) {
	if len(r) != 1 {
		return nil, false
	}
	v, ok := r[ResultKey]
	return v, ok
}

// normalize turns a body into a Response. JSON objects are returned as
// decoded, JSON arrays are wrapped decoded, an empty body wraps nil and
// anything else wraps the raw text.
func normalize(body []byte) Response {
	if len(body) == 0 {
		return Response{ResultKey: nil}
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		switch v := decoded.(type) {
		case map[string]any:
			return Response(v)
		case []any:
			return Response{ResultKey: v}
		}
	}
	return Response{ResultKey: string(body)}
}
