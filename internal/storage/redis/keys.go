package redis

import (
	"fmt"

	"github.com/vdovinurij05-glitch/sprosil-uvidel-polyubil/internal/model"
)

// Key prefix for all orchestrator data
const keyPrefix = "svp"

// participantKey returns the Redis key for a Participant
func participantKey(id model.ParticipantID) string {
	return fmt.Sprintf("%s:participant:%s", keyPrefix, id)
}

// externalIndexKey returns the Redis key for the external_id -> participant_id index
func externalIndexKey(externalID string) string {
	return fmt.Sprintf("%s:idx:external:%s", keyPrefix, externalID)
}

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// lobbySessionsKey returns the ZSET of sessions in the lobby phase,
// scored by creation time
func lobbySessionsKey() string {
	return fmt.Sprintf("%s:idx:sessions:lobby", keyPrefix)
}

// activeSessionsKey returns the ZSET of non-terminal sessions,
// scored by creation time
func activeSessionsKey() string {
	return fmt.Sprintf("%s:idx:sessions:active", keyPrefix)
}

// participationsKey returns the HASH of a session's participations,
// keyed by participant id
func participationsKey(sessionID model.SessionID) string {
	return fmt.Sprintf("%s:participations:%s", keyPrefix, sessionID)
}

// memberSessionsKey returns the SET of session ids a participant has joined
func memberSessionsKey(id model.ParticipantID) string {
	return fmt.Sprintf("%s:idx:member_sessions:%s", keyPrefix, id)
}

// promptKey returns the Redis key for a Prompt
func promptKey(id model.PromptID) string {
	return fmt.Sprintf("%s:prompt:%s", keyPrefix, id)
}

// sessionPromptsKey returns the SET of prompt keys for a session
func sessionPromptsKey(sessionID model.SessionID) string {
	return fmt.Sprintf("%s:idx:session_prompts:%s", keyPrefix, sessionID)
}

// responsesKey returns the HASH of a session's responses,
// keyed by "<prompt_id>:<responder_id>"
func responsesKey(sessionID model.SessionID) string {
	return fmt.Sprintf("%s:responses:%s", keyPrefix, sessionID)
}

// responseField is the hash field for one (prompt, responder) response
func responseField(promptID model.PromptID, responderID model.ParticipantID) string {
	return fmt.Sprintf("%s:%s", promptID, responderID)
}

// choicesKey returns the HASH of a session's final choices, keyed by voter id
func choicesKey(sessionID model.SessionID) string {
	return fmt.Sprintf("%s:choices:%s", keyPrefix, sessionID)
}

// matchesKey returns the Redis key for a session's computed matches
func matchesKey(sessionID model.SessionID) string {
	return fmt.Sprintf("%s:matches:%s", keyPrefix, sessionID)
}

// reportsKey returns the LIST of abuse reports
func reportsKey() string {
	return fmt.Sprintf("%s:reports", keyPrefix)
}
