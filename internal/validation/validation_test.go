package validation

import (
	"strings"
	"testing"

	"propmatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Title  string  `json:"title" validate:"notblank,max=20"`
	Price  float64 `json:"price" validate:"gt=0"`
	Level  string  `json:"interest_level" validate:"omitempty,interest_level"`
	Role   string  `json:"preferred_role" validate:"omitempty,investor_role"`
	Signup string  `json:"role" validate:"omitempty,user_role"`
}

func TestStruct(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      sampleInput
		wantMsg string
	}{
		{"Valid", sampleInput{Title: "Loft", Price: 1, Level: "ready_to_invest", Role: "co_investor", Signup: "builder"}, ""},
		{"Blank Title", sampleInput{Title: "   ", Price: 1}, "title is required"},
		{"Long Title", sampleInput{Title: strings.Repeat("x", 21), Price: 1}, "title must be at most 20 characters"},
		{"Zero Price", sampleInput{Title: "Loft"}, "price must be greater than 0"},
		{"Bad Level", sampleInput{Title: "Loft", Price: 1, Level: "meh"}, `interest_level has an unsupported value "meh"`},
		{"Bad Role", sampleInput{Title: "Loft", Price: 1, Role: "boss"}, `preferred_role has an unsupported value "boss"`},
		{"Bad Account Role", sampleInput{Title: "Loft", Price: 1, Signup: "root"}, `role has an unsupported value "root"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, models.HasCode(err, models.CodeValidation))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "maple2024", false},
		{"Exactly Max Length", "a" + strings.Repeat("b", 126) + "1", false},
		{"Too Short", "abc123", true},
		{"Too Long", "a" + strings.Repeat("b", 127) + "1", true},
		{"No Digit", "onlyletters", true},
		{"No Letter", "1234567890", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "builder@example.com", false},
		{"Too Long", strings.Repeat("a", 64) + "@" + strings.Repeat("b", 186) + ".com", true},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"Multiple At Symbols", "user@@example.com", true},
		{"Display Name", "Jo <jo@example.com>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
