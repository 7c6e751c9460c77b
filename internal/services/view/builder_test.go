package view

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage/memory"
)

type BuilderSuite struct {
	suite.Suite
	storage *memory.Storage
	builder *Builder
	ctx     context.Context
}

func TestBuilderSuite(t *testing.T) {
	suite.Run(t, new(BuilderSuite))
}

func (s *BuilderSuite) SetupTest() {
	s.storage = memory.New()
	s.builder = NewBuilder(s.storage)
	s.ctx = context.Background()
}

func (s *BuilderSuite) seedSession(phase model.Phase) {
	now := time.Now().UTC()
	s.Require().NoError(s.storage.SaveSession(s.ctx, &model.Session{
		ID: "session-1", Phase: phase, TotalItems: 2,
		CreatedAt: now, PhaseChangedAt: now, UpdatedAt: now,
	}))

	participants := []*model.Participant{
		{ID: "m1", Profile: model.Profile{DisplayName: "Max"}, Category: model.CategoryMale},
		{ID: "f1", Profile: model.Profile{DisplayName: "Fay"}, Category: model.CategoryFemale},
	}
	for i, p := range participants {
		s.Require().NoError(s.storage.SaveParticipant(s.ctx, p))
		s.Require().NoError(s.storage.AddParticipation(s.ctx, &model.Participation{
			SessionID: "session-1", ParticipantID: p.ID,
			JoinedAt: now.Add(time.Duration(i) * time.Second),
		}))
	}

	s.Require().NoError(s.storage.SavePrompt(s.ctx, &model.Prompt{
		ID: "prompt-1", SessionID: "session-1", AuthorID: "m1",
		Text: "Cats or dogs?", Ordinal: 1, CreatedAt: now,
	}))
	s.Require().NoError(s.storage.UpsertResponse(s.ctx, &model.Response{
		SessionID: "session-1", PromptID: "prompt-1", ResponderID: "f1",
		Text: "Dogs", UpdatedAt: now,
	}))
	s.Require().NoError(s.storage.UpsertFinalChoice(s.ctx, &model.FinalChoice{
		SessionID: "session-1", VoterID: "m1", TargetID: "f1", UpdatedAt: now,
	}))
}

func (s *BuilderSuite) TestSessionNotFound() {
	_, err := s.builder.BuildSnapshot(s.ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *BuilderSuite) TestLobbyShowsRostersOnly() {
	s.seedSession(model.PhaseLobby)

	snapshot, err := s.builder.BuildSnapshot(s.ctx, "session-1")
	s.Require().NoError(err)

	s.Equal(model.PhaseLobby, snapshot.Phase)
	s.Len(snapshot.Males, 1)
	s.Len(snapshot.Females, 1)
	s.Equal("Max", snapshot.Males[0].DisplayName)
	s.Empty(snapshot.Prompts)
	s.Empty(snapshot.Responses)
	s.Empty(snapshot.FinalChoices)
}

func (s *BuilderSuite) TestCollectingShowsPromptsAndResponses() {
	s.seedSession(model.PhaseCollecting)

	snapshot, err := s.builder.BuildSnapshot(s.ctx, "session-1")
	s.Require().NoError(err)

	s.Require().Len(snapshot.Prompts, 1)
	s.Equal("Cats or dogs?", snapshot.Prompts[0].Text)
	s.Require().Len(snapshot.Responses, 1)
	s.Equal("Dogs", snapshot.Responses[0].Text)
	s.Empty(snapshot.FinalChoices)
}

func (s *BuilderSuite) TestDecidingShowsChoicesToo() {
	s.seedSession(model.PhaseDeciding)

	snapshot, err := s.builder.BuildSnapshot(s.ctx, "session-1")
	s.Require().NoError(err)

	s.Len(snapshot.Prompts, 1)
	s.Len(snapshot.Responses, 1)
	s.Require().Len(snapshot.FinalChoices, 1)
	s.Equal(model.ParticipantID("f1"), snapshot.FinalChoices[0].TargetID)
}

func (s *BuilderSuite) TestResultsHidesPromptsKeepsChoices() {
	s.seedSession(model.PhaseResults)

	snapshot, err := s.builder.BuildSnapshot(s.ctx, "session-1")
	s.Require().NoError(err)

	s.Empty(snapshot.Prompts)
	s.Empty(snapshot.Responses)
	s.Len(snapshot.FinalChoices, 1)
}
