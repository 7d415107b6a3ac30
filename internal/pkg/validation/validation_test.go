package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type contact struct {
	Email string `json:"email" validate:"required,email"`
}

type signup struct {
	Name    string   `json:"name" validate:"required,min=3,max=10"`
	Plan    string   `json:"plan" validate:"oneof=free paid"`
	Contact *contact `json:"contact" validate:"required"`
}

type untagged struct {
	Title string `validate:"required"`
}

func TestMessage(t *testing.T) {
	v := New()
	valid := signup{Name: "Loja", Plan: "free", Contact: &contact{Email: "a@example.com"}}

	tests := []struct {
		name   string
		mutate func(s *signup)
		want   string
	}{
		{"required", func(s *signup) { s.Name = "" }, "name is required"},
		{"min", func(s *signup) { s.Name = "ab" }, "name must be at least 3 characters"},
		{"max", func(s *signup) { s.Name = "abcdefghijk" }, "name must be at most 10 characters"},
		{"oneof", func(s *signup) { s.Plan = "gold" }, "plan must be one of free paid"},
		{"nested required", func(s *signup) { s.Contact = nil }, "contact is required"},
		{"nested email", func(s *signup) { s.Contact = &contact{Email: "nope"} }, "contact.email must be a valid email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			c := *valid.Contact
			s.Contact = &c
			tt.mutate(&s)
			assert.Equal(t, tt.want, Message(v.Struct(s)))
		})
	}
}

func TestMessage_GoFieldNames(t *testing.T) {
	err := validator.New().Struct(untagged{})
	assert.Equal(t, "title is required", Message(err))
}

func TestMessage_Fallbacks(t *testing.T) {
	assert.Equal(t, "invalid request", Message(errors.New("boom")))
	assert.Equal(t, "value is required", Message(New().Var("", "required")))
}
