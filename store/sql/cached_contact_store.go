package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const contactLinkCacheKeyPrefix = "go-responder::contact_link::v1"

// ContactResolver is the read/write surface of the contact link store.
type ContactResolver interface {
	ResolveContactID(ctx context.Context, email string) (string, error)
	SaveLink(ctx context.Context, email, contactID, intent string) error
}

// CachedContactStore layers a read-through cache over contact link
// resolution. Writes go through the underlying store and invalidate the
// cached entry.
type CachedContactStore struct {
	base  ContactResolver
	cache repositorycache.CacheService
}

func NewCachedContactStore(
	base ContactResolver,
	cacheService repositorycache.CacheService,
) (*CachedContactStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base contact link store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: contact cache service is required")
	}
	return &CachedContactStore{base: base, cache: cacheService}, nil
}

// ContactLinkCacheKey returns the deterministic cache key contract for
// contact link reads: go-responder::contact_link::v1::<email> with the
// email lowercased, trimmed, then URL-path escaped.
func ContactLinkCacheKey(email string) (string, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return "", fmt.Errorf("sqlstore: email is required")
	}
	return strings.Join([]string{contactLinkCacheKeyPrefix, url.PathEscape(normalized)}, "::"), nil
}

func (s *CachedContactStore) ResolveContactID(ctx context.Context, email string) (string, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return "", fmt.Errorf("sqlstore: cached contact store is not configured")
	}
	cacheKey, err := ContactLinkCacheKey(email)
	if err != nil {
		return "", err
	}
	contactID, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (string, error) {
		return s.base.ResolveContactID(ctx, email)
	})
	if err != nil {
		return "", err
	}
	return contactID, nil
}

func (s *CachedContactStore) SaveLink(ctx context.Context, email, contactID, intent string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached contact store is not configured")
	}
	if err := s.base.SaveLink(ctx, email, contactID, intent); err != nil {
		return err
	}
	cacheKey, err := ContactLinkCacheKey(email)
	if err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return fmt.Errorf("sqlstore: invalidate contact link cache: %w", err)
	}
	return nil
}
