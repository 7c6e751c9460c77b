package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.SessionTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Participant tests

func (s *StorageSuite) TestSaveAndGetParticipant() {
	p := &model.Participant{
		ID:         "participant-1",
		ExternalID: "tg:1001",
		Profile:    model.Profile{DisplayName: "Alice", Username: "alice"},
		Category:   model.CategoryFemale,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	err := s.storage.SaveParticipant(s.ctx, p)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetParticipant(s.ctx, "participant-1")
	s.Require().NoError(err)
	s.Equal(p.ID, retrieved.ID)
	s.Equal(p.Profile.DisplayName, retrieved.Profile.DisplayName)
	s.Equal(model.CategoryFemale, retrieved.Category)
}

func (s *StorageSuite) TestGetParticipantNotFound() {
	_, err := s.storage.GetParticipant(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *StorageSuite) TestGetParticipantByExternalID() {
	p := &model.Participant{ID: "participant-1", ExternalID: "tg:1001"}
	_ = s.storage.SaveParticipant(s.ctx, p)

	retrieved, err := s.storage.GetParticipantByExternalID(s.ctx, "tg:1001")
	s.Require().NoError(err)
	s.Equal(model.ParticipantID("participant-1"), retrieved.ID)
}

func (s *StorageSuite) TestGetParticipantByExternalIDNotFound() {
	_, err := s.storage.GetParticipantByExternalID(s.ctx, "tg:missing")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	started := time.Now().UTC()
	sess := &model.Session{
		ID:             "session-1",
		Phase:          model.PhaseCollecting,
		TotalItems:     4,
		CreatedAt:      time.Now().UTC(),
		StartedAt:      &started,
		PhaseChangedAt: time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	err := s.storage.SaveSession(s.ctx, sess)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSession(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Equal(sess.ID, retrieved.ID)
	s.Equal(model.PhaseCollecting, retrieved.Phase)
	s.Equal(4, retrieved.TotalItems)
	s.Require().NotNil(retrieved.StartedAt)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestListOpenSessionsOldestFirst() {
	base := time.Now().UTC()
	_ = s.storage.SaveSession(s.ctx, &model.Session{
		ID: "session-b", Phase: model.PhaseLobby, CreatedAt: base.Add(time.Minute),
	})
	_ = s.storage.SaveSession(s.ctx, &model.Session{
		ID: "session-a", Phase: model.PhaseLobby, CreatedAt: base,
	})

	open, err := s.storage.ListOpenSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(open, 2)
	s.Equal(model.SessionID("session-a"), open[0].ID)
	s.Equal(model.SessionID("session-b"), open[1].ID)
}

func (s *StorageSuite) TestSessionPhaseUpdateMovesOutOfOpenList() {
	sess := &model.Session{ID: "session-1", Phase: model.PhaseLobby, CreatedAt: time.Now().UTC()}
	_ = s.storage.SaveSession(s.ctx, sess)

	sess.Phase = model.PhaseRoster
	_ = s.storage.SaveSession(s.ctx, sess)

	open, err := s.storage.ListOpenSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(open)

	active, err := s.storage.ListActiveSessions(s.ctx)
	s.Require().NoError(err)
	s.Len(active, 1)
}

func (s *StorageSuite) TestTerminalSessionLeavesActiveList() {
	sess := &model.Session{ID: "session-1", Phase: model.PhaseDeciding, CreatedAt: time.Now().UTC()}
	_ = s.storage.SaveSession(s.ctx, sess)

	sess.Phase = model.PhaseResults
	_ = s.storage.SaveSession(s.ctx, sess)

	active, err := s.storage.ListActiveSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(active)
}

// Participation tests

func (s *StorageSuite) TestAddAndGetParticipations() {
	base := time.Now().UTC()
	_ = s.storage.AddParticipation(s.ctx, &model.Participation{
		SessionID: "session-1", ParticipantID: "p1", JoinedAt: base,
	})
	_ = s.storage.AddParticipation(s.ctx, &model.Participation{
		SessionID: "session-1", ParticipantID: "p2", JoinedAt: base.Add(time.Second),
	})

	parts, err := s.storage.GetParticipations(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Require().Len(parts, 2)
	s.Equal(model.ParticipantID("p1"), parts[0].ParticipantID)
	s.Equal(model.ParticipantID("p2"), parts[1].ParticipantID)
}

func (s *StorageSuite) TestActiveSessionFor() {
	_ = s.storage.SaveSession(s.ctx, &model.Session{
		ID: "session-1", Phase: model.PhaseCollecting, CreatedAt: time.Now().UTC(),
	})
	_ = s.storage.AddParticipation(s.ctx, &model.Participation{
		SessionID: "session-1", ParticipantID: "p1", JoinedAt: time.Now().UTC(),
	})

	sessionID, ok, err := s.storage.ActiveSessionFor(s.ctx, "p1")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(model.SessionID("session-1"), sessionID)
}

func (s *StorageSuite) TestActiveSessionForIgnoresTerminal() {
	_ = s.storage.SaveSession(s.ctx, &model.Session{
		ID: "session-1", Phase: model.PhaseClosed, CreatedAt: time.Now().UTC(),
	})
	_ = s.storage.AddParticipation(s.ctx, &model.Participation{
		SessionID: "session-1", ParticipantID: "p1", JoinedAt: time.Now().UTC(),
	})

	_, ok, err := s.storage.ActiveSessionFor(s.ctx, "p1")
	s.Require().NoError(err)
	s.False(ok)
}

// Prompt tests

func (s *StorageSuite) TestSaveAndGetPrompt() {
	p := &model.Prompt{
		ID:        "prompt-1",
		SessionID: "session-1",
		AuthorID:  "p1",
		Text:      "Mountains or sea?",
		Ordinal:   1,
		CreatedAt: time.Now().UTC(),
	}

	err := s.storage.SavePrompt(s.ctx, p)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPrompt(s.ctx, "prompt-1")
	s.Require().NoError(err)
	s.Equal(p.Text, retrieved.Text)
	s.Equal(1, retrieved.Ordinal)
}

func (s *StorageSuite) TestGetPromptNotFound() {
	_, err := s.storage.GetPrompt(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPromptNotFound)
}

func (s *StorageSuite) TestGetPromptsOrderedByOrdinal() {
	_ = s.storage.SavePrompt(s.ctx, &model.Prompt{
		ID: "prompt-b", SessionID: "session-1", Ordinal: 2, CreatedAt: time.Now().UTC(),
	})
	_ = s.storage.SavePrompt(s.ctx, &model.Prompt{
		ID: "prompt-a", SessionID: "session-1", Ordinal: 1, CreatedAt: time.Now().UTC(),
	})

	prompts, err := s.storage.GetPrompts(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Require().Len(prompts, 2)
	s.Equal(model.PromptID("prompt-a"), prompts[0].ID)
	s.Equal(model.PromptID("prompt-b"), prompts[1].ID)
}

// Response tests

func (s *StorageSuite) TestUpsertResponseOverwrites() {
	r := &model.Response{
		SessionID:   "session-1",
		PromptID:    "prompt-1",
		ResponderID: "p2",
		Text:        "first answer",
		UpdatedAt:   time.Now().UTC(),
	}
	_ = s.storage.UpsertResponse(s.ctx, r)

	r.Text = "revised answer"
	err := s.storage.UpsertResponse(s.ctx, r)
	s.Require().NoError(err)

	responses, err := s.storage.GetResponses(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Require().Len(responses, 1)
	s.Equal("revised answer", responses[0].Text)
}

// Final choice tests

func (s *StorageSuite) TestUpsertFinalChoiceOverwrites() {
	c := &model.FinalChoice{
		SessionID: "session-1",
		VoterID:   "p1",
		TargetID:  "p2",
		UpdatedAt: time.Now().UTC(),
	}
	_ = s.storage.UpsertFinalChoice(s.ctx, c)

	c.TargetID = ""
	err := s.storage.UpsertFinalChoice(s.ctx, c)
	s.Require().NoError(err)

	choices, err := s.storage.GetFinalChoices(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Require().Len(choices, 1)
	s.False(choices[0].Chose())
}

// Match tests

func (s *StorageSuite) TestSaveAndGetMatches() {
	matches := []model.Match{
		model.NewMatch("session-1", "p2", "p1", time.Now().UTC()),
	}

	err := s.storage.SaveMatches(s.ctx, "session-1", matches)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetMatches(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Require().Len(retrieved, 1)
	s.Equal(model.ParticipantID("p1"), retrieved[0].FirstID)
	s.Equal(model.ParticipantID("p2"), retrieved[0].SecondID)
}

func (s *StorageSuite) TestGetMatchesNoneComputed() {
	retrieved, err := s.storage.GetMatches(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Empty(retrieved)
}

// Report tests

func (s *StorageSuite) TestSaveReport() {
	err := s.storage.SaveReport(s.ctx, &model.AbuseReport{
		ReporterID: "p1",
		ReportedID: "p2",
		Reason:     "spam in answers",
		CreatedAt:  time.Now().UTC(),
	})
	s.Require().NoError(err)
}
