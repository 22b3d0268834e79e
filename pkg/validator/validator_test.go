package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type registrationPayload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,phone10"`
}

func TestValidateStructPhone10(t *testing.T) {
	cases := []struct {
		name  string
		phone string
		ok    bool
	}{
		{"plain ten digits", "5551234567", true},
		{"formatted", "(555) 123-4567", true},
		{"nine digits", "555123456", false},
		{"eleven digits", "15551234567", false},
		{"letters only", "call-me-maybe", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(&registrationPayload{
				Name:  "Ana",
				Email: "ana@example.com",
				Phone: tc.phone,
			})
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)

			failures, ok := err.(ValidationErrors)
			require.True(t, ok)
			require.Equal(t, "phone", failures[0].Field)
		})
	}
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	err := ValidateStruct(&registrationPayload{Phone: "5551234567"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Equal(t, "name", failures[0].Field)
}

func TestNormalizePhone(t *testing.T) {
	require.Equal(t, "5551234567", NormalizePhone("+1 (555) 123-4567")[1:])
	require.Equal(t, "", NormalizePhone("no digits"))
}
