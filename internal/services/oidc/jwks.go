package oidc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// jwksRefreshInterval is the floor for how often a key set may be refetched
const jwksRefreshInterval = 1 * time.Hour

// JWKSManager hands out verification key sets. Fetching, caching, and
// background refresh are delegated to jwk.Cache; the manager only tracks
// which URLs have been registered with it.
type JWKSManager struct {
	cache      *jwk.Cache
	mu         sync.Mutex
	registered map[string]struct{}
}

// NewJWKSManager creates a manager whose cache refreshes in the background
// for the life of the process
func NewJWKSManager() *JWKSManager {
	return &JWKSManager{
		cache:      jwk.NewCache(context.Background()),
		registered: make(map[string]struct{}),
	}
}

// GetJWKS returns the key set for a JWKS URL, fetching it on first use
func (m *JWKSManager) GetJWKS(ctx context.Context, jwksURL string) (jwk.Set, error) {
	m.mu.Lock()
	if _, ok := m.registered[jwksURL]; !ok {
		if err := m.cache.Register(jwksURL, jwk.WithMinRefreshInterval(jwksRefreshInterval)); err != nil {
			m.mu.Unlock()
			return nil, fmt.Errorf("failed to register JWKS URL: %w", err)
		}
		m.registered[jwksURL] = struct{}{}
	}
	m.mu.Unlock()

	keys, err := m.cache.Get(ctx, jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	return keys, nil
}
