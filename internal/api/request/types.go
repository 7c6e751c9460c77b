package request

// ResolveRequest is the request body for resolving a participant identity
type ResolveRequest struct {
	ExternalID  string `json:"external_id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// SetCategoryRequest is the request body for declaring a category
type SetCategoryRequest struct {
	Category string `json:"category"`
}

// JoinRequest is the request body for joining matchmaking
type JoinRequest struct {
	Prompt string `json:"prompt"`
}

// ResponseRequest is the request body for answering a prompt
type ResponseRequest struct {
	PromptID string `json:"prompt_id"`
	Text     string `json:"text"`
}

// ChoiceRequest is the request body for the final choice.
// An empty target id records an explicit "choose nobody".
type ChoiceRequest struct {
	TargetID string `json:"target_id"`
}

// ReportRequest is the request body for filing an abuse report
type ReportRequest struct {
	ReportedID string `json:"reported_id"`
	Reason     string `json:"reason"`
	ContentRef string `json:"content_ref,omitempty"`
}
