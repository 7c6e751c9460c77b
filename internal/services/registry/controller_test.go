package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/dependencies/mocks"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage/memory"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.controller = NewController(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *RegistrySuite) TestResolveCreatesParticipant() {
	s.random.QueueString("participant1id")

	p, err := s.controller.Resolve(s.ctx, "tg:1001", model.Profile{DisplayName: "Alice"})
	s.Require().NoError(err)
	s.Equal(model.ParticipantID("participant1id"), p.ID)
	s.Equal("tg:1001", p.ExternalID)
	s.Equal("Alice", p.Profile.DisplayName)
	s.False(p.HasCategory())
}

func (s *RegistrySuite) TestResolveUpsertsProfile() {
	s.random.QueueString("participant1id")
	_, err := s.controller.Resolve(s.ctx, "tg:1001", model.Profile{DisplayName: "Alice"})
	s.Require().NoError(err)

	p, err := s.controller.Resolve(s.ctx, "tg:1001", model.Profile{DisplayName: "Alicia"})
	s.Require().NoError(err)
	s.Equal(model.ParticipantID("participant1id"), p.ID)
	s.Equal("Alicia", p.Profile.DisplayName)
}

func (s *RegistrySuite) TestResolveKeepsCategory() {
	s.random.QueueString("participant1id")
	p, err := s.controller.Resolve(s.ctx, "tg:1001", model.Profile{DisplayName: "Alice"})
	s.Require().NoError(err)

	_, err = s.controller.SetCategory(s.ctx, p.ID, model.CategoryFemale)
	s.Require().NoError(err)

	p, err = s.controller.Resolve(s.ctx, "tg:1001", model.Profile{DisplayName: "Alice"})
	s.Require().NoError(err)
	s.Equal(model.CategoryFemale, p.Category)
}

func (s *RegistrySuite) TestGetNotFound() {
	_, err := s.controller.Get(s.ctx, "missing")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *RegistrySuite) TestSetCategoryInvalid() {
	_, err := s.controller.SetCategory(s.ctx, "p1", "other")
	s.ErrorIs(err, model.ErrInvalidCategory)
}

func (s *RegistrySuite) TestSetCategory() {
	s.random.QueueString("participant1id")
	p, err := s.controller.Resolve(s.ctx, "tg:1001", model.Profile{})
	s.Require().NoError(err)

	updated, err := s.controller.SetCategory(s.ctx, p.ID, model.CategoryMale)
	s.Require().NoError(err)
	s.Equal(model.CategoryMale, updated.Category)
}

func (s *RegistrySuite) TestFileReport() {
	s.random.QueueString("reporter1", "reported1")
	reporter, err := s.controller.Resolve(s.ctx, "tg:1001", model.Profile{DisplayName: "Alice"})
	s.Require().NoError(err)
	reported, err := s.controller.Resolve(s.ctx, "tg:1002", model.Profile{DisplayName: "Bob"})
	s.Require().NoError(err)

	err = s.controller.FileReport(s.ctx, reporter.ID, reported.ID, "  offensive answer  ", "prompt:abc")
	s.Require().NoError(err)

	reports := s.storage.Reports()
	s.Require().Len(reports, 1)
	s.Equal(reporter.ID, reports[0].ReporterID)
	s.Equal(reported.ID, reports[0].ReportedID)
	s.Equal("offensive answer", reports[0].Reason)
	s.Equal("prompt:abc", reports[0].ContentRef)
	s.Equal(s.clock.Now(), reports[0].CreatedAt)
}

func (s *RegistrySuite) TestFileReportReasonTooShort() {
	s.random.QueueString("reporter1", "reported1")
	reporter, err := s.controller.Resolve(s.ctx, "tg:1001", model.Profile{})
	s.Require().NoError(err)
	reported, err := s.controller.Resolve(s.ctx, "tg:1002", model.Profile{})
	s.Require().NoError(err)

	err = s.controller.FileReport(s.ctx, reporter.ID, reported.ID, " a ", "")
	s.ErrorIs(err, model.ErrReasonTooShort)
	s.Empty(s.storage.Reports())
}

func (s *RegistrySuite) TestFileReportUnknownTarget() {
	s.random.QueueString("reporter1")
	reporter, err := s.controller.Resolve(s.ctx, "tg:1001", model.Profile{})
	s.Require().NoError(err)

	err = s.controller.FileReport(s.ctx, reporter.ID, "ghost", "spam messages", "")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *RegistrySuite) TestSetCategoryLockedDuringActiveSession() {
	s.random.QueueString("participant1id")
	p, err := s.controller.Resolve(s.ctx, "tg:1001", model.Profile{})
	s.Require().NoError(err)
	_, err = s.controller.SetCategory(s.ctx, p.ID, model.CategoryMale)
	s.Require().NoError(err)

	now := s.clock.Now()
	s.Require().NoError(s.storage.SaveSession(s.ctx, &model.Session{
		ID: "session-1", Phase: model.PhaseCollecting,
		CreatedAt: now, PhaseChangedAt: now, UpdatedAt: now,
	}))
	s.Require().NoError(s.storage.AddParticipation(s.ctx, &model.Participation{
		SessionID: "session-1", ParticipantID: p.ID, JoinedAt: now,
	}))

	_, err = s.controller.SetCategory(s.ctx, p.ID, model.CategoryFemale)
	s.ErrorIs(err, model.ErrCategoryLocked)
}

func (s *RegistrySuite) TestSetCategorySameValueDuringActiveSession() {
	s.random.QueueString("participant1id")
	p, err := s.controller.Resolve(s.ctx, "tg:1001", model.Profile{})
	s.Require().NoError(err)
	_, err = s.controller.SetCategory(s.ctx, p.ID, model.CategoryMale)
	s.Require().NoError(err)

	now := s.clock.Now()
	s.Require().NoError(s.storage.SaveSession(s.ctx, &model.Session{
		ID: "session-1", Phase: model.PhaseCollecting,
		CreatedAt: now, PhaseChangedAt: now, UpdatedAt: now,
	}))
	s.Require().NoError(s.storage.AddParticipation(s.ctx, &model.Participation{
		SessionID: "session-1", ParticipantID: p.ID, JoinedAt: now,
	}))

	updated, err := s.controller.SetCategory(s.ctx, p.ID, model.CategoryMale)
	s.Require().NoError(err)
	s.Equal(model.CategoryMale, updated.Category)
}
