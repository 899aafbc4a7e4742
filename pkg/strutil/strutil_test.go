package strutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimStrings(t *testing.T) {
	name := "  Jane Doe  "
	email := "\tjane@example.com\n"
	empty := "   "

	TrimStrings(&name, &email, &empty)

	assert.Equal(t, "Jane Doe", name)
	assert.Equal(t, "jane@example.com", email)
	assert.Empty(t, empty)
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "first_name", ToSnakeCase("FirstName"))
	assert.Equal(t, "signer_email", ToSnakeCase("SignerEmail"))
	assert.Equal(t, "ssn", ToSnakeCase("SSN"))
}

func TestDigitsAndDot(t *testing.T) {
	assert.Equal(t, "4500.00", DigitsAndDot("$4,500.00"))
	assert.Empty(t, DigitsAndDot("n/a"))
}
