package validator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewLike struct {
	Title  string  `json:"title" validate:"required,max=5"`
	Email  string  `json:"email" validate:"omitempty,email"`
	Rating float64 `json:"rating" validate:"gte=1,lte=5"`
	Gender string  `json:"gender" validate:"omitempty,oneof=male female"`
	Hidden string  `json:"-" validate:"omitempty,uuid"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(reviewLike{Title: "good", Rating: 5}))
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	fields := fieldsOf(t, Validate(reviewLike{Rating: 3}))
	assert.Equal(t, "is required", fields["title"])
}

func TestValidate_NumericBounds(t *testing.T) {
	fields := fieldsOf(t, Validate(reviewLike{Title: "x", Rating: 0.5}))
	assert.Equal(t, "must be greater than or equal to 1", fields["rating"])

	fields = fieldsOf(t, Validate(reviewLike{Title: "x", Rating: 5.5}))
	assert.Equal(t, "must be less than or equal to 5", fields["rating"])
}

func TestValidate_StringMessages(t *testing.T) {
	fields := fieldsOf(t, Validate(reviewLike{Title: "toolong", Email: "nope", Rating: 2, Gender: "other"}))
	assert.Equal(t, "must be at most 5 characters", fields["title"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Contains(t, fields["gender"], "one of")
}

func TestValidate_IgnoredJSONFieldUsesGoName(t *testing.T) {
	fields := fieldsOf(t, Validate(reviewLike{Title: "x", Rating: 2, Hidden: "not-a-uuid"}))
	assert.Equal(t, "must be a valid UUID", fields["Hidden"])
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(reviewLike{Rating: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'title' is required")
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"title":"nice","rating":4.5}`))
	var dst reviewLike
	require.NoError(t, DecodeAndValidate(req, &dst))
	assert.Equal(t, 4.5, dst.Rating)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{invalid"))
	err := DecodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
