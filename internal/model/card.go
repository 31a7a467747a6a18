package model

// Card is a single flashcard. Cards have no identity beyond their content.
type Card struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Tags  []string `json:"tags,omitempty"`
}
