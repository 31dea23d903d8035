package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticValidator(valid string) TokenValidator {
	return func(_ context.Context, token string) (*Claims, error) {
		if token != valid {
			return nil, errors.New("bad token")
		}
		return &Claims{UserID: "3e590d1b-73b5-45a6-9806-4d52a70dec22", TokenID: "tok-1"}, nil
	}
}

func TestAuthenticate(t *testing.T) {
	var seen string
	h := Authenticate(staticValidator("good"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
		c, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, "tok-1", c.TokenID)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer good", http.StatusNoContent},
		{"lowercase scheme", "bearer good", http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"basic scheme", "Basic dmlja2k6cHc=", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodPost, "/api/v1/dogs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Empty(t, seen)
				var body map[string]map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, "UNAUTHORIZED", body["error"]["code"])
			} else {
				assert.Equal(t, "3e590d1b-73b5-45a6-9806-4d52a70dec22", seen)
			}
		})
	}
}

func TestUserIDFromContext_Empty(t *testing.T) {
	assert.Empty(t, UserIDFromContext(context.Background()))
	ctx := WithClaims(context.Background(), &Claims{UserID: "u-1"})
	assert.Equal(t, "u-1", UserIDFromContext(ctx))
}
