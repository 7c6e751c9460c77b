package model

// Snapshot is the full client-facing projection of current session state.
// Which optional slices are populated depends on the phase.
type Snapshot struct {
	SessionID  SessionID
	Phase      Phase
	TotalItems int
	Males      []SnapshotPlayer
	Females    []SnapshotPlayer

	// Populated during collecting and deciding
	Prompts   []SnapshotPrompt
	Responses []SnapshotResponse

	// Populated during deciding and results
	FinalChoices []SnapshotChoice

	// SecondsRemaining is the countdown for the armed deadline, if any.
	// Cosmetic only; nil when no deadline is armed.
	SecondsRemaining *int
}

// SnapshotPlayer is a participant as shown to clients
type SnapshotPlayer struct {
	ID          ParticipantID
	DisplayName string
	Username    string
	PhotoURL    string
	Category    Category
}

// SnapshotPrompt is a prompt as shown to clients
type SnapshotPrompt struct {
	ID       PromptID
	AuthorID ParticipantID
	Text     string
	Ordinal  int
}

// SnapshotResponse is a recorded answer as shown to clients
type SnapshotResponse struct {
	PromptID    PromptID
	ResponderID ParticipantID
	Text        string
}

// SnapshotChoice is a recorded final choice as shown to clients
type SnapshotChoice struct {
	VoterID  ParticipantID
	TargetID ParticipantID // empty means no choice
}
