package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstObject(t *testing.T) {
	cases := []struct {
		name, in, want string
		ok             bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, true},
		{"prose around", "Here you go:\n{\"a\":{\"b\":2}}\nThanks", `{"a":{"b":2}}`, true},
		{"first of two", `{"a":1} {"b":2}`, `{"a":1}`, true},
		{"braces in strings", `{"s":"}{\"}"}`, `{"s":"}{\"}"}`, true},
		{"fenced", "```json\n{\"x\":[1,2]}\n```", `{"x":[1,2]}`, true},
		{"none", "no json here", "", false},
		{"unclosed outer", `{"a":{"b":1}`, `{"b":1}`, true},
		{"stray brace in prose", "Format {like this\n{\"overallStatus\":\"PASS\"}", `{"overallStatus":"PASS"}`, true},
		{"stray quote after brace", `Use {"x or {"ok":true}`, `{"ok":true}`, true},
		{"never closes", `{"a": [1, 2`, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FirstObject(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
