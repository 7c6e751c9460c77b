package matchmaker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/config"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/dependencies/mocks"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/matching"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/session"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/services/view"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage/memory"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/testutil"
)

type MatchmakerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	events     *testutil.RecordingBroadcaster
	sessions   *session.Controller
	controller *Controller
	ctx        context.Context
}

func TestMatchmakerSuite(t *testing.T) {
	suite.Run(t, new(MatchmakerSuite))
}

func (s *MatchmakerSuite) SetupTest() {
	s.setupWithConfig(config.Config{
		LobbyDeadlineSec:      90,
		CollectingDeadlineSec: 60,
		DecidingDeadlineSec:   30,
		MinPerCategory:        2,
		MaxPerCategory:        3,
		AutoStartOnMin:        true,
	})
}

func (s *MatchmakerSuite) setupWithConfig(cfg config.Config) {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.events = testutil.NewRecordingBroadcaster()

	s.sessions = session.NewController(
		s.storage,
		matching.NewService(),
		view.NewBuilder(s.storage),
		s.events,
		s.clock,
		cfg,
		testutil.NopLogger(),
	)
	s.controller = NewController(s.storage, s.sessions, s.clock, s.random, cfg, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *MatchmakerSuite) TearDownTest() {
	s.sessions.Shutdown()
}

func (s *MatchmakerSuite) seedParticipant(id model.ParticipantID, category model.Category) {
	now := s.clock.Now()
	s.Require().NoError(s.storage.SaveParticipant(s.ctx, &model.Participant{
		ID: id, Category: category,
		Profile:   model.Profile{DisplayName: string(id)},
		CreatedAt: now, UpdatedAt: now,
	}))
}

func (s *MatchmakerSuite) join(id model.ParticipantID) model.SessionID {
	sessionID, _, err := s.controller.Join(s.ctx, id, "Mountains or sea?")
	s.Require().NoError(err)
	return sessionID
}

// Validation

func (s *MatchmakerSuite) TestJoinUnknownParticipant() {
	_, _, err := s.controller.Join(s.ctx, "ghost", "Mountains or sea?")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *MatchmakerSuite) TestJoinWithoutCategory() {
	s.seedParticipant("p1", "")
	_, _, err := s.controller.Join(s.ctx, "p1", "Mountains or sea?")
	s.ErrorIs(err, model.ErrCategoryRequired)
}

func (s *MatchmakerSuite) TestJoinPromptTooShortAfterTrim() {
	s.seedParticipant("p1", model.CategoryMale)
	_, _, err := s.controller.Join(s.ctx, "p1", "  hi  ")
	s.ErrorIs(err, model.ErrPromptTooShort)

	// No session was created as a side effect
	open, err := s.storage.ListOpenSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(open)
}

func (s *MatchmakerSuite) TestJoinPromptBlockedContent() {
	s.seedParticipant("p1", model.CategoryMale)
	_, _, err := s.controller.Join(s.ctx, "p1", "what the fuck is this")
	s.ErrorIs(err, model.ErrPromptRejected)
}

func (s *MatchmakerSuite) TestJoinTwiceRejected() {
	s.seedParticipant("m1", model.CategoryMale)
	s.random.QueueString("sess1", "prompt1")

	s.join("m1")

	_, _, err := s.controller.Join(s.ctx, "m1", "Another question?")
	s.ErrorIs(err, model.ErrAlreadyInSession)
}

// Placement

func (s *MatchmakerSuite) TestJoinCreatesSessionWhenNoneOpen() {
	s.seedParticipant("m1", model.CategoryMale)
	s.random.QueueString("sess1", "prompt1")

	sessionID, snapshot, err := s.controller.Join(s.ctx, "m1", "Mountains or sea?")
	s.Require().NoError(err)
	s.Equal(model.SessionID("sess1"), sessionID)
	s.Equal(model.PhaseLobby, snapshot.Phase)
	s.Require().Len(snapshot.Males, 1)

	// The lobby deadline is armed for the new session
	s.Require().NotNil(snapshot.SecondsRemaining)
	s.InDelta(90, *snapshot.SecondsRemaining, 1)
}

func (s *MatchmakerSuite) TestJoinAttachesToOldestOpenSession() {
	s.seedParticipant("m1", model.CategoryMale)
	s.seedParticipant("m2", model.CategoryMale)
	s.random.QueueString("sessA", "p1")

	first := s.join("m1")

	s.clock.Advance(time.Minute)
	s.random.QueueString("p2")

	second := s.join("m2")
	s.Equal(first, second)
}

func (s *MatchmakerSuite) TestJoinSkipsFullCategory() {
	for _, id := range []model.ParticipantID{"m1", "m2", "m3", "m4"} {
		s.seedParticipant(id, model.CategoryMale)
	}
	s.random.QueueString("sessA", "p1", "p2", "p3")

	first := s.join("m1")
	s.Equal(first, s.join("m2"))
	s.Equal(first, s.join("m3"))

	// Three males fill the category; the fourth opens a new session
	s.random.QueueString("sessB", "p4")
	second := s.join("m4")
	s.NotEqual(first, second)
}

func (s *MatchmakerSuite) TestJoinFillsOppositeCategoryOfFullSession() {
	for _, id := range []model.ParticipantID{"m1", "m2", "m3"} {
		s.seedParticipant(id, model.CategoryMale)
	}
	s.seedParticipant("f1", model.CategoryFemale)
	s.random.QueueString("sessA", "p1", "p2", "p3", "p4")

	first := s.join("m1")
	s.join("m2")
	s.join("m3")

	s.Equal(first, s.join("f1"))
}

func (s *MatchmakerSuite) TestPromptOrdinalsCountPerCategory() {
	s.seedParticipant("m1", model.CategoryMale)
	s.seedParticipant("m2", model.CategoryMale)
	s.seedParticipant("f1", model.CategoryFemale)
	s.random.QueueString("sessA", "pm1", "pm2", "pf1")

	sessionID := s.join("m1")
	s.join("m2")
	s.join("f1")

	prompts, err := s.storage.GetPrompts(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Require().Len(prompts, 3)

	byID := map[model.PromptID]int{}
	for _, p := range prompts {
		byID[p.ID] = p.Ordinal
	}
	s.Equal(1, byID["pm1"])
	s.Equal(2, byID["pm2"])
	s.Equal(1, byID["pf1"])
}

// Auto-start

func (s *MatchmakerSuite) TestAutoStartAtMinimum() {
	s.seedParticipant("m1", model.CategoryMale)
	s.seedParticipant("m2", model.CategoryMale)
	s.seedParticipant("f1", model.CategoryFemale)
	s.seedParticipant("f2", model.CategoryFemale)
	s.random.QueueString("sessA", "p1", "p2", "p3", "p4")

	s.join("m1")
	s.join("m2")
	sessionID := s.join("f1")

	sess, err := s.storage.GetSession(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Equal(model.PhaseLobby, sess.Phase)

	_, snapshot, err := s.controller.Join(s.ctx, "f2", "Mountains or sea?")
	s.Require().NoError(err)
	s.Equal(model.PhaseRoster, snapshot.Phase)
	s.Equal(4, snapshot.TotalItems)
}

func (s *MatchmakerSuite) TestUnevenCategoriesStartAtSharedMinimum() {
	for _, id := range []model.ParticipantID{"f1", "f2", "f3"} {
		s.seedParticipant(id, model.CategoryFemale)
	}
	s.seedParticipant("m1", model.CategoryMale)
	s.seedParticipant("m2", model.CategoryMale)
	s.random.QueueString("sessA", "p1", "p2", "p3", "p4", "p5")

	s.join("f1")
	s.join("f2")
	sessionID := s.join("f3")
	s.join("m1")

	sess, err := s.storage.GetSession(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Equal(model.PhaseLobby, sess.Phase)

	// The second male brings both categories to the minimum
	_, snapshot, err := s.controller.Join(s.ctx, "m2", "Mountains or sea?")
	s.Require().NoError(err)
	s.Equal(model.PhaseRoster, snapshot.Phase)
	s.Equal(5, snapshot.TotalItems)
}

func (s *MatchmakerSuite) TestNoAutoStartWhenDisabled() {
	s.setupWithConfig(config.Config{
		LobbyDeadlineSec:      90,
		CollectingDeadlineSec: 60,
		DecidingDeadlineSec:   30,
		MinPerCategory:        2,
		MaxPerCategory:        2,
		AutoStartOnMin:        false,
	})
	s.seedParticipant("m1", model.CategoryMale)
	s.seedParticipant("m2", model.CategoryMale)
	s.seedParticipant("f1", model.CategoryFemale)
	s.seedParticipant("f2", model.CategoryFemale)
	s.random.QueueString("sessA", "p1", "p2", "p3", "p4")

	s.join("m1")
	s.join("f1")

	sessionID := s.join("m2")
	sess, err := s.storage.GetSession(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Equal(model.PhaseLobby, sess.Phase)

	// Capacity still forces the start even with auto-start off
	_, snapshot, err := s.controller.Join(s.ctx, "f2", "Mountains or sea?")
	s.Require().NoError(err)
	s.Equal(model.PhaseRoster, snapshot.Phase)
}

func (s *MatchmakerSuite) TestStartedSessionNoLongerAcceptsJoins() {
	s.seedParticipant("m1", model.CategoryMale)
	s.seedParticipant("m2", model.CategoryMale)
	s.seedParticipant("m3", model.CategoryMale)
	s.seedParticipant("f1", model.CategoryFemale)
	s.seedParticipant("f2", model.CategoryFemale)
	s.random.QueueString("sessA", "p1", "p2", "p3", "p4")

	started := s.join("m1")
	s.join("m2")
	s.join("f1")
	s.join("f2") // auto-start at 2+2

	s.random.QueueString("sessB", "p5")
	fresh := s.join("m3")
	s.NotEqual(started, fresh)
}
