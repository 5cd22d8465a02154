package httputil

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectError bool
	}{
		{name: "valid JSON", body: `{"name": "test"}`},
		{name: "invalid JSON", body: `{invalid}`, expectError: true},
		{name: "empty body", body: ``, expectError: true},
		{name: "trailing document", body: `{"name": "test"} {"name": "again"}`, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(tt.body))
			var dest map[string]string

			err := ParseJSON(req, &dest)

			if tt.expectError {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrBadRequest))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "test", dest["name"])
			}
		})
	}
}

func TestParseJSONOrError(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(`nope`))
	var dest map[string]string

	ok := ParseJSONOrError(w, req, &dest)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParsePathParams(t *testing.T) {
	tests := []struct {
		name      string
		vars      map[string]string
		wantID    int64
		wantIDErr bool
	}{
		{name: "valid id", vars: map[string]string{"id": "42"}, wantID: 42},
		{name: "missing", vars: map[string]string{}, wantIDErr: true},
		{name: "not a number", vars: map[string]string{"id": "abc"}, wantIDErr: true},
		{name: "zero", vars: map[string]string{"id": "0"}, wantIDErr: true},
		{name: "negative", vars: map[string]string{"id": "-3"}, wantIDErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/test", nil), tt.vars)

			id, err := ParsePathInt64(req, "id")
			if tt.wantIDErr {
				assert.ErrorIs(t, err, ErrBadRequest)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestParsePathStringOrError(t *testing.T) {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/test", nil), map[string]string{"nip": "198001012000011001"})
	w := httptest.NewRecorder()

	nip, ok := ParsePathStringOrError(w, req, "nip")
	assert.True(t, ok)
	assert.Equal(t, "198001012000011001", nip)

	_, ok = ParsePathStringOrError(w, req, "missing")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseQueryString(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test?status=Pending", nil)
	assert.Equal(t, "Pending", ParseQueryString(req, "status", ""))
	assert.Equal(t, "x", ParseQueryString(req, "other", "x"))
}
