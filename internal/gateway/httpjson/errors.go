package httpjson

import (
	"fmt"

	"github.com/tidwall/gjson"
)

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "upstream http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("upstream http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("upstream http error: status=%d body=%s", e.StatusCode, e.Body)
}

// Message pulls a human-readable detail out of a JSON error body, if any.
func (e *HTTPError) Message() string {
	if e == nil || !gjson.Valid(e.Body) {
		return ""
	}
	doc := gjson.Parse(e.Body)
	for _, p := range []string{"error.message", "error.code", "message"} {
		if v := doc.Get(p); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}
