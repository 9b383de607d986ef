package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func fakeGoogle(t *testing.T, verified bool) *Google {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"access_token": "at", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(GoogleProfile{Email: "g@example.com", EmailVerified: verified, Name: "Gee"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	g := NewGoogle("id", "secret", "http://app.test/auth/google/callback")
	g.Config.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	g.UserInfoURL = srv.URL + "/userinfo"
	return g
}

func TestNewGoogleUnconfigured(t *testing.T) {
	assert.Nil(t, NewGoogle("", "secret", ""))
	assert.Nil(t, NewGoogle("id", "", ""))
}

func TestGoogleAuthCodeURL(t *testing.T) {
	g := NewGoogle("id", "secret", "http://app.test/auth/google/callback")
	u, err := url.Parse(g.AuthCodeURL("state-1"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "id", q.Get("client_id"))
	assert.Equal(t, "http://app.test/auth/google/callback", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "email")
}

func TestGoogleExchange(t *testing.T) {
	g := fakeGoogle(t, true)

	profile, err := g.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "g@example.com", profile.Email)
	assert.Equal(t, "Gee", profile.Name)

	_, err = g.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestGoogleExchangeUnverified(t *testing.T) {
	g := fakeGoogle(t, false)
	_, err := g.Exchange(context.Background(), "good-code")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestNewStateUnique(t *testing.T) {
	assert.NotEqual(t, NewState(), NewState())
}
