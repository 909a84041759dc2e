package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(Config{BaseURL: url, Model: "mymodel", TimeoutSec: 5})
}

func TestComplete_ReturnsResponseField(t *testing.T) {
	var gotBody generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{"response": "[]", "done": true})
	}))
	defer server.Close()

	got := newTestClient(server.URL).Complete(context.Background(), "extract seizures")

	assert.Equal(t, "[]", got)
	assert.Equal(t, "mymodel", gotBody.Model)
	assert.Equal(t, "extract seizures", gotBody.Prompt)
	assert.False(t, gotBody.Stream)
}

func TestComplete_Non2xxStatusYieldsEmptyString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	assert.Equal(t, "", newTestClient(server.URL).Complete(context.Background(), "prompt"))
}

func TestComplete_NonJSONBodyYieldsEmptyString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer server.Close()

	assert.Equal(t, "", newTestClient(server.URL).Complete(context.Background(), "prompt"))
}

func TestComplete_ConnectionErrorYieldsEmptyString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	assert.Equal(t, "", newTestClient(server.URL).Complete(context.Background(), "prompt"))
}
