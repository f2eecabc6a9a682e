package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErr "github.com/formrelay/relay/pkg/errors"
)

func TestParseSubmission(t *testing.T) {
	cases := []struct {
		name string
		body string
		want Submission
	}{
		{"both fields", `{"name":"Alice","message":"Hello"}`, Submission{Name: "Alice", Message: "Hello"}},
		{"missing name", `{"message":"Hello"}`, Submission{Name: DefaultFieldValue, Message: "Hello"}},
		{"missing message", `{"name":"Alice"}`, Submission{Name: "Alice", Message: DefaultFieldValue}},
		{"empty object", `{}`, Submission{Name: DefaultFieldValue, Message: DefaultFieldValue}},
		{"null field", `{"name":null,"message":"hi"}`, Submission{Name: DefaultFieldValue, Message: "hi"}},
		{"empty string kept", `{"name":"","message":"hi"}`, Submission{Name: "", Message: "hi"}},
		{"number field", `{"name":42,"message":true}`, Submission{Name: "42", Message: "true"}},
		{"object field", `{"name":{ "first" : "A" },"message":"x"}`, Submission{Name: `{"first":"A"}`, Message: "x"}},
		{"extra fields ignored", `{"name":"A","message":"B","email":"a@b.c"}`, Submission{Name: "A", Message: "B"}},
		{"unicode", `{"name":"Алиса","message":"Привет"}`, Submission{Name: "Алиса", Message: "Привет"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSubmission([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseSubmissionRejectsMalformed(t *testing.T) {
	for _, body := range []string{
		"not json",
		"",
		`{"name":"Alice"`,
		`["name","Alice"]`,
		`"just a string"`,
		`null`,
		`{"name":"A"} trailing`,
	} {
		t.Run(body, func(t *testing.T) {
			_, err := ParseSubmission([]byte(body))
			require.Error(t, err)
			assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
		})
	}
}

func TestNotification(t *testing.T) {
	text := Submission{Name: "Alice", Message: "Hello"}.Notification()
	assert.True(t, strings.HasPrefix(text, "<b>New submission</b>"))
	assert.Contains(t, text, "Name: Alice")
	assert.Contains(t, text, "Message: Hello")
}
