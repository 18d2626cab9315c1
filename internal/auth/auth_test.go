package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"missing", "", "", ErrMissingAPIKey},
		{"bearer", "Bearer secret", "secret", nil},
		{"lowercase scheme", "bearer secret", "secret", nil},
		{"basic", "Basic abc", "", ErrMalformedHeader},
		{"no token", "Bearer ", "", ErrMalformedHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := ExtractAPIKey(r)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_OpenWithoutKey(t *testing.T) {
	a := New("")
	require.IsType(t, OpenAuthorizer{}, a)
	actor, err := a.Authorize(context.Background(), "", OpManageCatalog)
	require.NoError(t, err)
	assert.Equal(t, "local", actor.KeyType)
}

func TestStaticKeyAuthorizer(t *testing.T) {
	a := New("s3cret")
	_, err := a.Authorize(context.Background(), "", OpManageCatalog)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	_, err = a.Authorize(context.Background(), "wrong", OpManageCatalog)
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
	actor, err := a.Authorize(context.Background(), "s3cret", OpManageCatalog)
	require.NoError(t, err)
	assert.True(t, actor.Can(OpManageVariants))
}

func TestRequire(t *testing.T) {
	var seen *ActorInfo
	next := func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ActorFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
	h := Require(New("s3cret"), OpManageReference, next)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/dialects", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/dialects", nil)
	r.Header.Set("Authorization", "Bearer nope")
	h(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)

	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/api/dialects", nil)
	r.Header.Set("Authorization", "Bearer s3cret")
	h(rec, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "admin", seen.ActorID)
}

func TestRequire_OpenIgnoresHeader(t *testing.T) {
	h := Require(New(""), OpManageCatalog, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/badges", nil)
	r.Header.Set("Authorization", "garbage")
	h(rec, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
