package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

func newJWKSServer(t *testing.T, fetches *atomic.Int64) *httptest.Server {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	key, err := jwk.FromRaw(priv.Public())
	if err != nil {
		t.Fatalf("failed to build jwk: %v", err)
	}
	if err := key.Set(jwk.KeyIDKey, "test-key"); err != nil {
		t.Fatalf("failed to set kid: %v", err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(key); err != nil {
		t.Fatalf("failed to add key: %v", err)
	}
	body, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("failed to marshal set: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestJWKSManager(t *testing.T) {
	t.Parallel()

	t.Run("fetches and caches a key set", func(t *testing.T) {
		t.Parallel()
		var fetches atomic.Int64
		srv := newJWKSServer(t, &fetches)
		m := NewJWKSManager()

		keys, err := m.GetJWKS(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if keys.Len() != 1 {
			t.Errorf("key set has %d keys, want 1", keys.Len())
		}
		if _, ok := keys.LookupKeyID("test-key"); !ok {
			t.Error("expected key id test-key in set")
		}

		if _, err := m.GetJWKS(context.Background(), srv.URL); err != nil {
			t.Fatalf("unexpected error on second call: %v", err)
		}
		if got := fetches.Load(); got != 1 {
			t.Errorf("endpoint was fetched %d times, want 1", got)
		}
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		t.Parallel()
		m := NewJWKSManager()
		if _, err := m.GetJWKS(context.Background(), "http://127.0.0.1:1/jwks"); err == nil {
			t.Error("expected error for unreachable endpoint")
		}
	})
}
