package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pawpoll/internal/apperror"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New("test-key", srv.URL)
}

func TestAutocomplete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/places:autocomplete", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bark cafe", body["input"])

		_, _ = w.Write([]byte(`{"suggestions":[
			{"placePrediction":{"placeId":"P1","text":{"text":"Bark Cafe, 1 Main St"},
			 "structuredFormat":{"mainText":{"text":"Bark Cafe"},"secondaryText":{"text":"1 Main St"}}}},
			{"queryPrediction":{"text":{"text":"bark cafe near me"}}}
		]}`))
	})

	got, err := c.Autocomplete(context.Background(), "  bark cafe ")

	require.NoError(t, err)
	require.Len(t, got, 1, "query predictions are dropped")
	assert.Equal(t, "P1", got[0].PlaceID)
	assert.Equal(t, "Bark Cafe", got[0].MainText)
	assert.Equal(t, "1 Main St", got[0].SecondaryText)
}

func TestAutocomplete_EmptyInput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})

	_, err := c.Autocomplete(context.Background(), "   ")

	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/places/P1", r.URL.Path)
		assert.Equal(t, "id,displayName,formattedAddress", r.Header.Get("X-Goog-FieldMask"))
		_, _ = w.Write([]byte(`{"id":"P1","displayName":{"text":"Bark Cafe","languageCode":"en"},"formattedAddress":"1 Main St"}`))
	})

	place, err := c.Details(context.Background(), "P1")

	require.NoError(t, err)
	assert.Equal(t, "P1", place.ID)
	assert.Equal(t, "Bark Cafe", place.DisplayName)
	assert.Equal(t, "1 Main St", place.FormattedAddress)
}

func TestDetails_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"unknown place", http.StatusNotFound, `{"error":{"code":404}}`, apperror.ErrNotFound},
		{"quota exceeded", http.StatusTooManyRequests, `{"error":{"code":429}}`, apperror.ErrUpstream},
		{"server error", http.StatusInternalServerError, `oops`, apperror.ErrUpstream},
		{"bad json", http.StatusOK, `{not json`, apperror.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Details(context.Background(), "P1")

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_MissingAPIKey(t *testing.T) {
	c := New("", "http://127.0.0.1:1")

	_, err := c.Details(context.Background(), "P1")

	assert.ErrorIs(t, err, apperror.ErrUpstream)
}
