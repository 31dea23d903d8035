package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kodecocodes/iTDD-DogPatchServer/pkg/errors"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/logger"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, Response{Data: map[string]string{"key": "value"}})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotNil(t, decodeResponse(t, rec).Data)
}

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dogs/abc", nil)

	WriteError(rec, req, apperrors.NotFound("dog", "abc"), logger.Discard())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "abc")
}

func TestWriteError_WrappedConflict(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users", nil)

	err := fmt.Errorf("update user: %w", apperrors.Conflict("Email is already registered"))
	WriteError(rec, req, err, logger.Discard())

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email is already registered", decodeResponse(t, rec).Error.Message)
}

func TestWriteError_Persistence(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/x/reviews", nil)

	WriteError(rec, req, apperrors.Persistence("record review", errors.New("deadlock")), logger.Discard())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "PERSISTENCE_ERROR", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "deadlock")
}

func TestWriteError_UnknownErrorIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")

	WriteError(rec, req.WithContext(ctx), errors.New("boom"), logger.Discard())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.Equal(t, "corr-1", resp.Error.RequestID)
}

type sample struct {
	Name string `json:"name" validate:"required"`
}

func TestDecodeJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Lulu"}`))
	var dst sample
	require.NoError(t, DecodeJSON(rec, req, &dst))
	assert.Equal(t, "Lulu", dst.Name)
}

func TestDecodeJSON_MalformedIsInvalidInput(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	var dst sample
	err := DecodeJSON(rec, req, &dst)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDecodeJSON_ValidationErrorRendersFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	var dst sample
	err := DecodeJSON(rec, req, &dst)
	require.Error(t, err)

	out := httptest.NewRecorder()
	WriteError(out, req, err, logger.Discard())
	assert.Equal(t, http.StatusBadRequest, out.Code)
	resp := decodeResponse(t, out)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "is required", resp.Error.Fields["name"])
}

func TestParseUUID(t *testing.T) {
	rec := httptest.NewRecorder()
	_, ok := ParseUUID(rec, "not-a-uuid")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	id, ok := ParseUUID(httptest.NewRecorder(), "3e590d1b-73b5-45a6-9806-4d52a70dec22")
	assert.True(t, ok)
	assert.Equal(t, "3e590d1b-73b5-45a6-9806-4d52a70dec22", id.String())
}
