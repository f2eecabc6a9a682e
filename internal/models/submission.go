package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	appErr "github.com/formrelay/relay/pkg/errors"
)

// DefaultFieldValue replaces any field the form left out.
const DefaultFieldValue = "not specified"

// Submission is the name/message pair received from the front-end form.
// It lives only for the request that carried it.
type Submission struct {
	Name    string `json:"name" example:"Alice"`
	Message string `json:"message" example:"Hello"`
}

// ParseSubmission decodes a request body into a Submission. The body must be a
// JSON object; name and message are optional and defaulted independently.
// A string keeps its value verbatim, any other JSON value keeps its JSON text.
func ParseSubmission(body []byte) (Submission, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Submission{}, appErr.Wrap(err, appErr.CodeInvalid, "Invalid JSON")
	}
	if fields == nil {
		// a literal null decodes without error
		return Submission{}, appErr.New(appErr.CodeInvalid, "Invalid JSON")
	}
	return Submission{
		Name:    optionalField(fields, "name"),
		Message: optionalField(fields, "message"),
	}, nil
}

func optionalField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok || bytes.Equal(raw, []byte("null")) {
		return DefaultFieldValue
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, raw); err != nil {
		return string(raw)
	}
	return compacted.String()
}

// Notification renders the text sent to the recipient. The title is bold in
// Telegram's HTML parse mode.
func (s Submission) Notification() string {
	return fmt.Sprintf("<b>New submission</b>\nName: %s\nMessage: %s", s.Name, s.Message)
}
