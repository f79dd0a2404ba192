package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-responder/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ContactLinkStore remembers which CRM contact a sender email resolved to,
// so repeat lookups skip the upstream round trip.
type ContactLinkStore struct {
	db   *bun.DB
	repo repository.Repository[*contactLinkRecord]
}

func NewContactLinkStore(db *bun.DB) (*ContactLinkStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*contactLinkRecord](db, contactLinkHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid contact link repository wiring: %w", err)
		}
	}
	return &ContactLinkStore{
		db:   db,
		repo: repo,
	}, nil
}

func (s *ContactLinkStore) SaveLink(ctx context.Context, email, contactID, intent string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: contact link store is not configured")
	}
	email = normalizeEmail(email)
	contactID = strings.TrimSpace(contactID)
	if email == "" || contactID == "" {
		return fmt.Errorf("sqlstore: email and contact id are required")
	}
	now := time.Now().UTC()
	record := &contactLinkRecord{
		ID:        uuid.NewString(),
		Email:     email,
		ContactID: contactID,
		Intent:    strings.TrimSpace(intent),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if !isUniqueViolation(err) {
			return fmt.Errorf("sqlstore: save contact link: %w", err)
		}
		_, updateErr := s.db.NewUpdate().
			Model((*contactLinkRecord)(nil)).
			Set("contact_id = ?", contactID).
			Set("intent = ?", strings.TrimSpace(intent)).
			Set("updated_at = ?", now).
			Where("email = ?", email).
			Exec(ctx)
		if updateErr != nil {
			return fmt.Errorf("sqlstore: update contact link: %w", updateErr)
		}
	}
	return nil
}

// ResolveContactID returns sql.ErrNoRows wrapped when no link exists yet.
func (s *ContactLinkStore) ResolveContactID(ctx context.Context, email string) (string, error) {
	if s == nil || s.db == nil {
		return "", fmt.Errorf("sqlstore: contact link store is not configured")
	}
	email = normalizeEmail(email)
	if email == "" {
		return "", fmt.Errorf("sqlstore: email is required")
	}
	record := &contactLinkRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("sqlstore: no contact link for %s: %w", email, err)
		}
		return "", fmt.Errorf("sqlstore: resolve contact link: %w", err)
	}
	return strings.TrimSpace(record.ContactID), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LinkedContactClient decorates an upstream contact client so every
// successful upsert also records the email-to-contact link locally. Link
// persistence is advisory: a failed save never fails the upsert.
type LinkedContactClient struct {
	base   core.ContactClient
	links  *ContactLinkStore
	logger core.Logger
}

func NewLinkedContactClient(
	base core.ContactClient,
	links *ContactLinkStore,
	logger core.Logger,
) (*LinkedContactClient, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base contact client is required")
	}
	if links == nil {
		return nil, fmt.Errorf("sqlstore: contact link store is required")
	}
	return &LinkedContactClient{base: base, links: links, logger: logger}, nil
}

func (c *LinkedContactClient) UpsertContactByEmail(
	ctx context.Context,
	email string,
	properties map[string]string,
) (string, error) {
	if c == nil || c.base == nil {
		return "", fmt.Errorf("sqlstore: linked contact client is not configured")
	}
	contactID, err := c.base.UpsertContactByEmail(ctx, email, properties)
	if err != nil {
		return "", err
	}
	if c.links != nil {
		intent := ""
		if properties != nil {
			intent = properties["auto_responder_intent"]
		}
		if saveErr := c.links.SaveLink(ctx, email, contactID, intent); saveErr != nil && c.logger != nil {
			c.logger.Error("contact link save failed",
				"email", normalizeEmail(email),
				"contact_id", contactID,
				"error", saveErr,
			)
		}
	}
	return contactID, nil
}
