// Package registry manages the durable participant records.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/dependencies/clock"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/dependencies/random"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/moderation"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage"
)

const (
	// IDLength is the length of generated participant ids
	IDLength = 16
	// IDAlphabet is the characters used in generated ids
	IDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	// MinReasonRunes is the minimum length of a sanitized report reason
	MinReasonRunes = 3
)

// Controller manages participant records and category declarations
type Controller struct {
	storage storage.Store
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new registry controller
func NewController(
	storage storage.Store,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Resolve upserts a participant by front-door identity. The external id
// is already verified upstream; here it is just the lookup key. Profile
// fields are refreshed on every contact.
func (c *Controller) Resolve(ctx context.Context, externalID string, profile model.Profile) (*model.Participant, error) {
	now := c.clock.Now()

	existing, err := c.storage.GetParticipantByExternalID(ctx, externalID)
	if err != nil && !errors.Is(err, model.ErrParticipantNotFound) {
		return nil, err
	}

	if existing != nil {
		existing.Profile = profile
		existing.UpdatedAt = now
		if err := c.storage.SaveParticipant(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	p := &model.Participant{
		ID:         model.ParticipantID(c.random.String(IDLength, IDAlphabet)),
		ExternalID: externalID,
		Profile:    profile,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := c.storage.SaveParticipant(ctx, p); err != nil {
		return nil, err
	}

	c.logger.Info("participant created",
		slog.String("participant_id", string(p.ID)))
	return p, nil
}

// Get retrieves a participant by id
func (c *Controller) Get(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	return c.storage.GetParticipant(ctx, id)
}

// SetCategory declares or changes the participant's category. Changing
// the value is forbidden while the participant holds an active
// participation; re-declaring the same value is always allowed.
func (c *Controller) SetCategory(ctx context.Context, id model.ParticipantID, category model.Category) (*model.Participant, error) {
	if !category.Valid() {
		return nil, model.ErrInvalidCategory
	}

	p, err := c.storage.GetParticipant(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Category == category {
		return p, nil
	}

	_, active, err := c.storage.ActiveSessionFor(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, model.ErrCategoryLocked
	}

	p.Category = category
	p.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveParticipant(ctx, p); err != nil {
		return nil, err
	}

	c.logger.Info("category declared",
		slog.String("participant_id", string(id)),
		slog.String("category", string(category)))
	return p, nil
}

// FileReport records an abuse report against another participant.
// Reports are stored as-is for offline review, regardless of whether
// the two share a session.
func (c *Controller) FileReport(ctx context.Context, reporterID, reportedID model.ParticipantID, reason, contentRef string) error {
	reason = moderation.Sanitize(reason)
	if utf8.RuneCountInString(reason) < MinReasonRunes {
		return model.ErrReasonTooShort
	}

	if _, err := c.storage.GetParticipant(ctx, reportedID); err != nil {
		return err
	}

	if err := c.storage.SaveReport(ctx, &model.AbuseReport{
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     reason,
		ContentRef: contentRef,
		CreatedAt:  c.clock.Now(),
	}); err != nil {
		return err
	}

	c.logger.Warn("abuse report filed",
		slog.String("reporter_id", string(reporterID)),
		slog.String("reported_id", string(reportedID)))
	return nil
}
