package kit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	decode := func(body string) (payload, error) {
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := DecodeJSON(httptest.NewRecorder(), req, &p)
		return p, err
	}

	p, err := decode(`{"name":"Chair"}`)
	require.NoError(t, err)
	assert.Equal(t, "Chair", p.Name)

	_, err = decode(`{"name":"Chair","extra":1}`)
	assert.Error(t, err)

	_, err = decode(`{"name":"Chair"}{"name":"Desk"}`)
	assert.Error(t, err)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNotFound, "not found", map[string]any{"id": "x"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not found", body.Error)
}

func TestMetricsAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {})

	cases := []struct {
		token, header string
		want          int
	}{
		{"", "Bearer ", http.StatusForbidden},
		{"s3cret", "", http.StatusForbidden},
		{"s3cret", "Bearer wrong", http.StatusForbidden},
		{"s3cret", "Basic s3cret", http.StatusForbidden},
		{"s3cret", "Bearer s3cret", http.StatusOK},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		MetricsAuth(tc.token)(ok).ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, "token=%q header=%q", tc.token, tc.header)
	}
}
