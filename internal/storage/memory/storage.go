package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	participants  map[model.ParticipantID]*model.Participant
	externalIndex map[string]model.ParticipantID
	sessions      map[model.SessionID]*model.Session

	// participations keyed by session; sessionsByMember is the reverse index
	participations   map[model.SessionID][]*model.Participation
	sessionsByMember map[model.ParticipantID][]model.SessionID

	prompts       map[model.PromptID]*model.Prompt
	promptsBySess map[model.SessionID][]model.PromptID

	responses map[responseKey]*model.Response
	choices   map[choiceKey]*model.FinalChoice
	matches   map[model.SessionID][]model.Match
	reports   []*model.AbuseReport
}

type responseKey struct {
	promptID    model.PromptID
	responderID model.ParticipantID
}

type choiceKey struct {
	sessionID model.SessionID
	voterID   model.ParticipantID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		participants:     make(map[model.ParticipantID]*model.Participant),
		externalIndex:    make(map[string]model.ParticipantID),
		sessions:         make(map[model.SessionID]*model.Session),
		participations:   make(map[model.SessionID][]*model.Participation),
		sessionsByMember: make(map[model.ParticipantID][]model.SessionID),
		prompts:          make(map[model.PromptID]*model.Prompt),
		promptsBySess:    make(map[model.SessionID][]model.PromptID),
		responses:        make(map[responseKey]*model.Response),
		choices:          make(map[choiceKey]*model.FinalChoice),
		matches:          make(map[model.SessionID][]model.Match),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Participant operations

func (s *Storage) SaveParticipant(ctx context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.participants[p.ID] = &cp
	if p.ExternalID != "" {
		s.externalIndex[p.ExternalID] = p.ID
	}
	return nil
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Storage) GetParticipantByExternalID(ctx context.Context, externalID string) (*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.externalIndex[externalID]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	p, ok := s.participants[id]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	cp := *p
	return &cp, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *Storage) ListOpenSessions(ctx context.Context) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listByPhase(func(sess *model.Session) bool {
		return sess.Phase == model.PhaseLobby
	}), nil
}

func (s *Storage) ListActiveSessions(ctx context.Context) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listByPhase(func(sess *model.Session) bool {
		return !sess.Phase.Terminal()
	}), nil
}

// listByPhase must be called with the lock held
func (s *Storage) listByPhase(keep func(*model.Session) bool) []*model.Session {
	var result []*model.Session
	for _, sess := range s.sessions {
		if keep(sess) {
			cp := *sess
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Participation operations

func (s *Storage) AddParticipation(ctx context.Context, p *model.Participation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.participations[p.SessionID] = append(s.participations[p.SessionID], &cp)
	s.sessionsByMember[p.ParticipantID] = append(s.sessionsByMember[p.ParticipantID], p.SessionID)
	return nil
}

func (s *Storage) GetParticipations(ctx context.Context, sessionID model.SessionID) ([]*model.Participation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.participations[sessionID]
	result := make([]*model.Participation, len(list))
	for i, p := range list {
		cp := *p
		result[i] = &cp
	}
	return result, nil
}

func (s *Storage) ActiveSessionFor(ctx context.Context, id model.ParticipantID) (model.SessionID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sessionID := range s.sessionsByMember[id] {
		sess, ok := s.sessions[sessionID]
		if ok && !sess.Phase.Terminal() {
			return sessionID, true, nil
		}
	}
	return "", false, nil
}

// Prompt operations

func (s *Storage) SavePrompt(ctx context.Context, p *model.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	if _, exists := s.prompts[p.ID]; !exists {
		s.promptsBySess[p.SessionID] = append(s.promptsBySess[p.SessionID], p.ID)
	}
	s.prompts[p.ID] = &cp
	return nil
}

func (s *Storage) GetPrompt(ctx context.Context, id model.PromptID) (*model.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prompts[id]
	if !ok {
		return nil, model.ErrPromptNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Storage) GetPrompts(ctx context.Context, sessionID model.SessionID) ([]*model.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.promptsBySess[sessionID]
	result := make([]*model.Prompt, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.prompts[id]; ok {
			cp := *p
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Ordinal != result[j].Ordinal {
			return result[i].Ordinal < result[j].Ordinal
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Response operations

func (s *Storage) UpsertResponse(ctx context.Context, r *model.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.responses[responseKey{promptID: r.PromptID, responderID: r.ResponderID}] = &cp
	return nil
}

func (s *Storage) GetResponses(ctx context.Context, sessionID model.SessionID) ([]*model.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.Response
	for _, r := range s.responses {
		if r.SessionID == sessionID {
			cp := *r
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PromptID != result[j].PromptID {
			return result[i].PromptID < result[j].PromptID
		}
		return result[i].ResponderID < result[j].ResponderID
	})
	return result, nil
}

// Final choice operations

func (s *Storage) UpsertFinalChoice(ctx context.Context, c *model.FinalChoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.choices[choiceKey{sessionID: c.SessionID, voterID: c.VoterID}] = &cp
	return nil
}

func (s *Storage) GetFinalChoices(ctx context.Context, sessionID model.SessionID) ([]*model.FinalChoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.FinalChoice
	for key, c := range s.choices {
		if key.sessionID == sessionID {
			cp := *c
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].VoterID < result[j].VoterID
	})
	return result, nil
}

// Match operations

func (s *Storage) SaveMatches(ctx context.Context, sessionID model.SessionID, matches []model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]model.Match, len(matches))
	copy(cp, matches)
	s.matches[sessionID] = cp
	return nil
}

func (s *Storage) GetMatches(ctx context.Context, sessionID model.SessionID) ([]model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.matches[sessionID]
	result := make([]model.Match, len(list))
	copy(result, list)
	return result, nil
}

// Report operations

func (s *Storage) SaveReport(ctx context.Context, r *model.AbuseReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.reports = append(s.reports, &cp)
	return nil
}

// Reports returns a copy of all stored abuse reports
func (s *Storage) Reports() []*model.AbuseReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.AbuseReport, 0, len(s.reports))
	for _, r := range s.reports {
		cp := *r
		result = append(result, &cp)
	}
	return result
}
