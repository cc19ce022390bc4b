package oauth2

import (
	"strings"
	"sync"
)

// TokenCache keeps the last token obtained per token endpoint, client,
// user and scope set. It is safe for concurrent use.
type TokenCache struct {
	mu     sync.RWMutex
	tokens map[string]*Token
}

func NewTokenCache() *TokenCache {
	return &TokenCache{tokens: make(map[string]*Token)}
}

// Lookup returns the cached token for cfg unless it is missing or expired.
func (c *TokenCache) Lookup(cfg *Config) *Token {
	c.mu.RLock()
	token := c.tokens[cacheKey(cfg)]
	c.mu.RUnlock()

	if token == nil || token.IsExpired() {
		return nil
	}
	return token
}

func (c *TokenCache) Store(cfg *Config, token *Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[cacheKey(cfg)] = token
}

func cacheKey(cfg *Config) string {
	return strings.Join([]string{cfg.TokenURL, cfg.ClientID, cfg.Username, strings.Join(cfg.Scopes, ",")}, "\x00")
}
