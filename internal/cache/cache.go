// Package cache provides read-through caching for hot entity lookups.
// Repositories populate it on reads and invalidate on writes; keys carry the
// tenant id so entries never leak across tenants.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Cache interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) (any, bool)

	// Set stores a value under key for the given TTL. A zero TTL uses the
	// cache default.
	Set(ctx context.Context, key string, value any, ttl time.Duration)

	// Delete removes a single key.
	Delete(ctx context.Context, key string)

	// DeleteByPrefix removes every key under the given prefix. Used to
	// invalidate derived lookups (e.g. all pincode resolutions for a tenant)
	// when a write changes what they would resolve to.
	DeleteByPrefix(ctx context.Context, prefix string)
}

// Key prefixes per entity type. The version segment allows shape changes to
// cached values without serving stale structs after a deploy.
const (
	PrefixProduct       = "product:v1"
	PrefixPriceBook     = "pricebook:v1"
	PrefixGeoZone       = "geozone:v1"
	PrefixUserSegment   = "usersegment:v1"
	PrefixAttributeType = "attributetype:v1"
)

// GenerateKey joins a prefix and its qualifiers into a colon-separated key.
// Callers pass the tenant id as the first qualifier so DeleteByPrefix on
// GenerateKey(prefix, tenantID) scopes invalidation to one tenant.
func GenerateKey(prefix string, qualifiers ...any) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, q := range qualifiers {
		b.WriteByte(':')
		fmt.Fprintf(&b, "%v", q)
	}
	return b.String()
}
