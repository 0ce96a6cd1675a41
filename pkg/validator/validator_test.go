package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customerForm struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}

func TestValidate_Success(t *testing.T) {
	form := customerForm{
		Name:    "Budi Santoso",
		Email:   "budi@example.com",
		Phone:   "+62811111111",
		Address: "Jl. Merdeka 1, Jakarta",
	}
	assert.NoError(t, Validate(form))
}

func TestValidate_MissingFields(t *testing.T) {
	form := customerForm{Email: "not-an-email"}

	err := Validate(form)
	require.Error(t, err)

	valErr, ok := err.(*ValidationError)
	require.True(t, ok)

	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["Name"])
	assert.Equal(t, "must be a valid email address", fields["Email"])
	assert.Equal(t, "is required", fields["Phone"])
	assert.Equal(t, "is required", fields["Address"])
	assert.Contains(t, err.Error(), "field 'Name' is required")
}

func TestValidate_BoundedLength(t *testing.T) {
	type item struct {
		Name string `validate:"required,max=50"`
	}

	err := Validate(item{Name: strings.Repeat("x", 51)})
	require.Error(t, err)
	valErr := err.(*ValidationError)
	assert.Equal(t, "must be at most 50 characters", valErr.Fields()["Name"])
}

func TestDecodeAndValidate(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(
		`{"name":"Budi","email":"budi@example.com","phone":"0812","address":"Jakarta"}`,
	))

	var form customerForm
	require.NoError(t, DecodeAndValidate(r, &form))
	assert.Equal(t, "Budi", form.Name)
}

func TestDecodeAndValidate_BadJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{`))

	var form customerForm
	err := DecodeAndValidate(r, &form)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
