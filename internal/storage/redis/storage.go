package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Participant operations

func (s *Storage) SaveParticipant(ctx context.Context, p *model.Participant) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	// Pipeline for atomic save + external-id index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, participantKey(p.ID), data, 0)
	if p.ExternalID != "" {
		pipe.Set(ctx, externalIndexKey(p.ExternalID), string(p.ID), 0)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	data, err := s.client.Get(ctx, participantKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrParticipantNotFound
		}
		return nil, err
	}

	var p model.Participant
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) GetParticipantByExternalID(ctx context.Context, externalID string) (*model.Participant, error) {
	idStr, err := s.client.Get(ctx, externalIndexKey(externalID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrParticipantNotFound
		}
		return nil, err
	}

	return s.GetParticipant(ctx, model.ParticipantID(idStr))
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, sess *model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	member := string(sess.ID)
	score := float64(sess.CreatedAt.UnixNano())

	// Keep the phase-scoped indexes in sync with the stored phase
	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionKey(sess.ID), data, s.cfg.SessionTTL)
	if sess.Phase == model.PhaseLobby {
		pipe.ZAdd(ctx, lobbySessionsKey(), redis.Z{Score: score, Member: member})
	} else {
		pipe.ZRem(ctx, lobbySessionsKey(), member)
	}
	if sess.Phase.Terminal() {
		pipe.ZRem(ctx, activeSessionsKey(), member)
	} else {
		pipe.ZAdd(ctx, activeSessionsKey(), redis.Z{Score: score, Member: member})
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Storage) ListOpenSessions(ctx context.Context) ([]*model.Session, error) {
	return s.listIndexed(ctx, lobbySessionsKey())
}

func (s *Storage) ListActiveSessions(ctx context.Context) ([]*model.Session, error) {
	return s.listIndexed(ctx, activeSessionsKey())
}

// listIndexed loads the sessions referenced by a creation-ordered ZSET,
// dropping entries whose session key has expired
func (s *Storage) listIndexed(ctx context.Context, indexKey string) ([]*model.Session, error) {
	ids, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(model.SessionID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.Session, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Session expired out from under the index
		}
		var sess model.Session
		if err := json.Unmarshal([]byte(val.(string)), &sess); err != nil {
			continue // Skip invalid data
		}
		sessions = append(sessions, &sess)
	}

	return sessions, nil
}

// Participation operations

func (s *Storage) AddParticipation(ctx context.Context, p *model.Participation) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	pKey := participationsKey(p.SessionID)
	mKey := memberSessionsKey(p.ParticipantID)

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, pKey, string(p.ParticipantID), data)
	pipe.Expire(ctx, pKey, s.cfg.SessionTTL)
	pipe.SAdd(ctx, mKey, string(p.SessionID))
	pipe.Expire(ctx, mKey, s.cfg.SessionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetParticipations(ctx context.Context, sessionID model.SessionID) ([]*model.Participation, error) {
	values, err := s.client.HVals(ctx, participationsKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}

	result := make([]*model.Participation, 0, len(values))
	for _, val := range values {
		var p model.Participation
		if err := json.Unmarshal([]byte(val), &p); err != nil {
			continue
		}
		result = append(result, &p)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].JoinedAt.Equal(result[j].JoinedAt) {
			return result[i].JoinedAt.Before(result[j].JoinedAt)
		}
		return result[i].ParticipantID < result[j].ParticipantID
	})
	return result, nil
}

func (s *Storage) ActiveSessionFor(ctx context.Context, id model.ParticipantID) (model.SessionID, bool, error) {
	sessionIDs, err := s.client.SMembers(ctx, memberSessionsKey(id)).Result()
	if err != nil {
		return "", false, err
	}

	for _, sid := range sessionIDs {
		sess, err := s.GetSession(ctx, model.SessionID(sid))
		if errors.Is(err, model.ErrSessionNotFound) {
			continue // Expired
		}
		if err != nil {
			return "", false, err
		}
		if !sess.Phase.Terminal() {
			return sess.ID, true, nil
		}
	}
	return "", false, nil
}

// Prompt operations

func (s *Storage) SavePrompt(ctx context.Context, p *model.Prompt) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	indexKey := sessionPromptsKey(p.SessionID)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, promptKey(p.ID), data, s.cfg.SessionTTL)
	pipe.SAdd(ctx, indexKey, string(p.ID))
	pipe.Expire(ctx, indexKey, s.cfg.SessionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPrompt(ctx context.Context, id model.PromptID) (*model.Prompt, error) {
	data, err := s.client.Get(ctx, promptKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPromptNotFound
		}
		return nil, err
	}

	var p model.Prompt
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) GetPrompts(ctx context.Context, sessionID model.SessionID) ([]*model.Prompt, error) {
	ids, err := s.client.SMembers(ctx, sessionPromptsKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = promptKey(model.PromptID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	prompts := make([]*model.Prompt, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var p model.Prompt
		if err := json.Unmarshal([]byte(val.(string)), &p); err != nil {
			continue
		}
		prompts = append(prompts, &p)
	}

	sort.Slice(prompts, func(i, j int) bool {
		if prompts[i].Ordinal != prompts[j].Ordinal {
			return prompts[i].Ordinal < prompts[j].Ordinal
		}
		return prompts[i].CreatedAt.Before(prompts[j].CreatedAt)
	})
	return prompts, nil
}

// Response operations

func (s *Storage) UpsertResponse(ctx context.Context, r *model.Response) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	key := responsesKey(r.SessionID)

	// HSET is the upsert: one field per (prompt, responder) pair
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, responseField(r.PromptID, r.ResponderID), data)
	pipe.Expire(ctx, key, s.cfg.SessionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetResponses(ctx context.Context, sessionID model.SessionID) ([]*model.Response, error) {
	values, err := s.client.HVals(ctx, responsesKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}

	result := make([]*model.Response, 0, len(values))
	for _, val := range values {
		var r model.Response
		if err := json.Unmarshal([]byte(val), &r); err != nil {
			continue
		}
		result = append(result, &r)
	}
	return result, nil
}

// Final choice operations

func (s *Storage) UpsertFinalChoice(ctx context.Context, c *model.FinalChoice) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	key := choicesKey(c.SessionID)

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, string(c.VoterID), data)
	pipe.Expire(ctx, key, s.cfg.SessionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetFinalChoices(ctx context.Context, sessionID model.SessionID) ([]*model.FinalChoice, error) {
	values, err := s.client.HVals(ctx, choicesKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}

	result := make([]*model.FinalChoice, 0, len(values))
	for _, val := range values {
		var c model.FinalChoice
		if err := json.Unmarshal([]byte(val), &c); err != nil {
			continue
		}
		result = append(result, &c)
	}
	return result, nil
}

// Match operations

func (s *Storage) SaveMatches(ctx context.Context, sessionID model.SessionID, matches []model.Match) error {
	data, err := json.Marshal(matches)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, matchesKey(sessionID), data, s.cfg.SessionTTL).Err()
}

func (s *Storage) GetMatches(ctx context.Context, sessionID model.SessionID) ([]model.Match, error) {
	data, err := s.client.Get(ctx, matchesKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var matches []model.Match
	if err := json.Unmarshal(data, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// Report operations

func (s *Storage) SaveReport(ctx context.Context, r *model.AbuseReport) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return s.client.RPush(ctx, reportsKey(), data).Err()
}
