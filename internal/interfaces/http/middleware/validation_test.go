package middleware

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Quantity int64  `json:"quantity" validate:"gt=0"`
	Type     string `json:"type" validate:"oneof=inward outward"`
}

func TestFormatValidationErrors(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())

	err := v.Struct(sampleRequest{Email: "not-an-email", Type: "sideways"})
	require.Error(t, err)

	resp := FormatValidationErrors(err, "req-123")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 4)

	messages := make(map[string]string, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", messages["Name"])
	assert.Equal(t, "Invalid email format", messages["Email"])
	assert.Equal(t, "Must be greater than 0", messages["Quantity"])
	assert.Equal(t, "Must be one of: inward outward", messages["Type"])
}

func TestFormatValidationErrors_NonValidationError(t *testing.T) {
	resp := FormatValidationErrors(errors.New("unexpected EOF"), "")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Empty(t, resp.Error.Details)
}
