package model

import (
	"regexp"
	"strings"
)

// linkPattern matches the share links the extraction API can resolve.
var linkPattern = regexp.MustCompile(
	`https?://(?:www\.|vm\.|vt\.|t\.)?tiktok\.com/\S+` +
		`|https?://(?:www\.)?douyin\.com/\S+` +
		`|https?://(?:www\.|m\.)?bilibili\.com/video/\S+` +
		`|https?://b23\.tv/\S+`,
)

// Sender identifies the chat member who posted a link.
type Sender struct {
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName returns "@username" when available, otherwise the full name.
func (s Sender) DisplayName() string {
	if s.Username != "" {
		return "@" + s.Username
	}
	if s.LastName != "" {
		return s.FirstName + " " + s.LastName
	}
	return s.FirstName
}

// InboundMessage is a chat message as seen by link intake.
type InboundMessage struct {
	ChatID    int64
	MessageID int
	Text      string
	Sender    Sender
}

// DetectLink finds the first supported link in text.
// It returns the link and the rest of the text with the link removed and trimmed.
func DetectLink(text string) (link, comment string, ok bool) {
	link = linkPattern.FindString(text)
	if link == "" {
		return "", "", false
	}
	comment = strings.TrimSpace(strings.Replace(text, link, "", 1))
	return link, comment, true
}
