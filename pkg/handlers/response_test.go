package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, ErrorResponse(w, http.StatusBadRequest, "missing_key", "Query parameter 'key' is required"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body errorBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "missing_key", body.Error)
	assert.Equal(t, "Query parameter 'key' is required", body.Message)
}

func TestWriteJSON(t *testing.T) {
	t.Run("200 keeps implicit status", func(t *testing.T) {
		w := httptest.NewRecorder()

		require.NoError(t, WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("non-200 writes header", func(t *testing.T) {
		w := httptest.NewRecorder()

		require.NoError(t, WriteJSON(w, http.StatusCreated, map[string]int{"count": 1}))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"count":1}`, w.Body.String())
	})
}
