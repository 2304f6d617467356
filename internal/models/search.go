package models

// SearchResult is a sidebar item matched by a search query.
type SearchResult struct {
	Category   string `json:"category"`
	Name       string `json:"name"`
	TemplateID string `json:"templateId"`
}

// StatusMessage is the text shown in the status bar.
type StatusMessage struct {
	Text    string `json:"text"`
	IsError bool   `json:"isError"`
}

// ReadyText is the idle status.
const ReadyText = "Ready"

// Ready returns the idle status message.
func Ready() StatusMessage {
	return StatusMessage{Text: ReadyText}
}
