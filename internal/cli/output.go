package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Participant:
		o.printParticipant(v)
	case JoinResult:
		o.printJoinResult(v)
	case Snapshot:
		o.printSnapshot(v)
	case MatchList:
		o.printMatchList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Participant response type (matches API)
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Player is a roster entry in a snapshot
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
	Category    string `json:"category"`
}

// Prompt response type
type Prompt struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`
	Text     string `json:"text"`
	Ordinal  int    `json:"ordinal"`
}

// Answer response type
type Answer struct {
	PromptID    string `json:"prompt_id"`
	ResponderID string `json:"responder_id"`
	Text        string `json:"text"`
}

// Choice response type
type Choice struct {
	VoterID  string `json:"voter_id"`
	TargetID string `json:"target_id"`
}

// Snapshot response type
type Snapshot struct {
	SessionID        string   `json:"session_id"`
	Phase            string   `json:"phase"`
	TotalItems       int      `json:"total_items"`
	Males            []Player `json:"males"`
	Females          []Player `json:"females"`
	Prompts          []Prompt `json:"prompts,omitempty"`
	Answers          []Answer `json:"answers,omitempty"`
	Choices          []Choice `json:"choices,omitempty"`
	SecondsRemaining *int     `json:"seconds_remaining,omitempty"`
}

// JoinResult response type
type JoinResult struct {
	SessionID string   `json:"session_id"`
	Snapshot  Snapshot `json:"snapshot"`
}

// Match response type
type Match struct {
	FirstID  string `json:"first_id"`
	SecondID string `json:"second_id"`
}

// MatchList response type
type MatchList struct {
	SessionID string  `json:"session_id"`
	Matches   []Match `json:"matches"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printParticipant(p Participant) {
	fmt.Printf("Participant: %s (%s)\n", p.DisplayName, p.ID)
	if p.Username != "" {
		fmt.Printf("Username: %s\n", p.Username)
	}
	if p.Category != "" {
		fmt.Printf("Category: %s\n", p.Category)
	} else {
		fmt.Println("Category: not declared")
	}
}

func (o *Output) printJoinResult(j JoinResult) {
	fmt.Printf("Joined session: %s\n", j.SessionID)
	o.printSnapshot(j.Snapshot)
}

func (o *Output) printSnapshot(s Snapshot) {
	fmt.Printf("Session: %s\n", s.SessionID)
	fmt.Printf("Phase: %s\n", s.Phase)
	if s.SecondsRemaining != nil {
		fmt.Printf("Time remaining: %ds\n", *s.SecondsRemaining)
	}

	fmt.Printf("Males (%d):\n", len(s.Males))
	for _, p := range s.Males {
		fmt.Printf("  - %s (%s)\n", p.DisplayName, p.ID)
	}
	fmt.Printf("Females (%d):\n", len(s.Females))
	for _, p := range s.Females {
		fmt.Printf("  - %s (%s)\n", p.DisplayName, p.ID)
	}

	if len(s.Prompts) > 0 {
		fmt.Printf("Questions (%d of %d):\n", len(s.Prompts), s.TotalItems)
		for _, p := range s.Prompts {
			fmt.Printf("  %d. %s [%s, by %s]\n", p.Ordinal, p.Text, p.ID, p.AuthorID)
		}
	}

	if len(s.Answers) > 0 {
		fmt.Printf("Answers (%d):\n", len(s.Answers))
		for _, a := range s.Answers {
			fmt.Printf("  - %s -> %s: %s\n", a.ResponderID, a.PromptID, a.Text)
		}
	}

	if len(s.Choices) > 0 {
		fmt.Printf("Choices (%d):\n", len(s.Choices))
		for _, c := range s.Choices {
			target := c.TargetID
			if target == "" {
				target = "(nobody)"
			}
			fmt.Printf("  - %s -> %s\n", c.VoterID, target)
		}
	}
}

func (o *Output) printMatchList(m MatchList) {
	if len(m.Matches) == 0 {
		fmt.Printf("No matches in session %s\n", m.SessionID)
		return
	}
	fmt.Printf("Matches in session %s (%d):\n", m.SessionID, len(m.Matches))
	for _, match := range m.Matches {
		fmt.Printf("  - %s + %s\n", match.FirstID, match.SecondID)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
