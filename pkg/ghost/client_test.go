package ghost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSendsPayloadAndDecodesReply(t *testing.T) {
	var received CreateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, CreatePath, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"ghostId":"g-42","initialPassword":"pw"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/", Token: "secret"})
	out, err := client.Create(context.Background(), CreateRequest{
		Name:        "Ghost Miner",
		Username:    "ghost42",
		Email:       "ghost42@example.com",
		Permissions: []string{"view_dashboard"},
	})
	require.NoError(t, err)
	assert.Equal(t, "g-42", out.GhostID)
	assert.Equal(t, "pw", out.InitialPassword)
	assert.Equal(t, "ghost42", received.Username)
	assert.Equal(t, []string{"view_dashboard"}, received.Permissions)
}

func TestCreateReportsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"error":"username taken"}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Create(context.Background(), CreateRequest{Username: "taken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username taken")
}

func TestCreateReportsUnsuccessfulOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Create(context.Background(), CreateRequest{Username: "ghost"})
	assert.Error(t, err)
}

func TestCreateRequiresUsername(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://127.0.0.1:1"}).Create(context.Background(), CreateRequest{})
	assert.Error(t, err)
}
