// Package view projects durable session state into client snapshots.
package view

import (
	"context"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage"
)

// Builder assembles snapshots from stored facts. Which slices are
// populated depends on the session phase; the countdown is injected by
// the caller since timers are not durable state.
type Builder struct {
	storage storage.Store
}

// NewBuilder creates a new snapshot builder
func NewBuilder(storage storage.Store) *Builder {
	return &Builder{storage: storage}
}

// BuildSnapshot loads the session and projects it for clients
func (b *Builder) BuildSnapshot(ctx context.Context, sessionID model.SessionID) (*model.Snapshot, error) {
	sess, err := b.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	snapshot := &model.Snapshot{
		SessionID:  sess.ID,
		Phase:      sess.Phase,
		TotalItems: sess.TotalItems,
		Males:      []model.SnapshotPlayer{},
		Females:    []model.SnapshotPlayer{},
	}

	participations, err := b.storage.GetParticipations(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, part := range participations {
		p, err := b.storage.GetParticipant(ctx, part.ParticipantID)
		if err != nil {
			return nil, err
		}
		player := model.SnapshotPlayer{
			ID:          p.ID,
			DisplayName: p.Profile.DisplayName,
			Username:    p.Profile.Username,
			PhotoURL:    p.Profile.PhotoURL,
			Category:    p.Category,
		}
		if p.Category == model.CategoryMale {
			snapshot.Males = append(snapshot.Males, player)
		} else {
			snapshot.Females = append(snapshot.Females, player)
		}
	}

	if sess.Phase == model.PhaseCollecting || sess.Phase == model.PhaseDeciding {
		prompts, err := b.storage.GetPrompts(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		for _, p := range prompts {
			snapshot.Prompts = append(snapshot.Prompts, model.SnapshotPrompt{
				ID:       p.ID,
				AuthorID: p.AuthorID,
				Text:     p.Text,
				Ordinal:  p.Ordinal,
			})
		}

		responses, err := b.storage.GetResponses(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		for _, r := range responses {
			snapshot.Responses = append(snapshot.Responses, model.SnapshotResponse{
				PromptID:    r.PromptID,
				ResponderID: r.ResponderID,
				Text:        r.Text,
			})
		}
	}

	if sess.Phase == model.PhaseDeciding || sess.Phase == model.PhaseResults {
		choices, err := b.storage.GetFinalChoices(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		for _, c := range choices {
			snapshot.FinalChoices = append(snapshot.FinalChoices, model.SnapshotChoice{
				VoterID:  c.VoterID,
				TargetID: c.TargetID,
			})
		}
	}

	return snapshot, nil
}
