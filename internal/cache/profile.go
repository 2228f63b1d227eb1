// Package cache stores query results keyed by statement, parameters and
// connection identity, and replays them through the driver.Result API.
package cache

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cybertec-postgresql/dbal/internal/params"
	"github.com/cybertec-postgresql/dbal/pkg/types"
)

// QueryCacheProfile describes how one query result is cached. A zero
// Lifetime never expires; an empty CacheKey is derived from the query; a nil
// Cache falls back to the connection's result cache.
type QueryCacheProfile struct {
	Lifetime time.Duration
	CacheKey string
	Cache    Cache
}

// NewQueryCacheProfile creates a profile.
func NewQueryCacheProfile(lifetime time.Duration, cacheKey string, cache Cache) QueryCacheProfile {
	return QueryCacheProfile{Lifetime: lifetime, CacheKey: cacheKey, Cache: cache}
}

func (p QueryCacheProfile) WithLifetime(lifetime time.Duration) QueryCacheProfile {
	p.Lifetime = lifetime
	return p
}

func (p QueryCacheProfile) WithCacheKey(key string) QueryCacheProfile {
	p.CacheKey = key
	return p
}

func (p QueryCacheProfile) WithCache(cache Cache) QueryCacheProfile {
	p.Cache = cache
	return p
}

// GenerateCacheKeys returns the key the result is stored under and the real
// key identifying this exact query inside that entry. Several real keys can
// share one cache key when CacheKey is set explicitly.
func (p QueryCacheProfile) GenerateCacheKeys(sql string, values params.Params, typs params.Types, conn types.Params) (cacheKey, realKey string, err error) {
	paramsJSON, err := json.Marshal(paramValues(values))
	if err != nil {
		return "", "", fmt.Errorf("failed to encode query parameters: %w", err)
	}
	typesJSON, err := json.Marshal(typeValues(typs))
	if err != nil {
		return "", "", fmt.Errorf("failed to encode parameter types: %w", err)
	}
	connJSON, err := json.Marshal(conn)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode connection parameters: %w", err)
	}
	connHash := sha256.Sum256(connJSON)

	realKey = "query=" + sql +
		"&params=" + string(paramsJSON) +
		"&types=" + string(typesJSON) +
		"&connectionParams=" + hex.EncodeToString(connHash[:])

	if p.CacheKey != "" {
		return p.CacheKey, realKey, nil
	}
	sum := sha1.Sum([]byte(realKey))
	return hex.EncodeToString(sum[:]), realKey, nil
}

func paramValues(p params.Params) any {
	if p.IsNamed() {
		return p.Named
	}
	if p.Positional == nil {
		return []any{}
	}
	return p.Positional
}

func typeValues(t params.Types) any {
	if t.Named != nil {
		return t.Named
	}
	if t.Positional == nil {
		return []params.ParameterType{}
	}
	return t.Positional
}
