package pipeline

import (
	"errors"
	"strings"
)

// EventMarker is the provider token embedded in the body of media messages.
const EventMarker = "_event_"

// attachmentContent is the fixed text mirrored for inbound media messages.
const attachmentContent = "Archivo adjunto"

// InboundEvent is a message sent by the end user to the bot.
type InboundEvent struct {
	From     string `json:"from"`
	PushName string `json:"pushName"`
	Body     string `json:"body"`
	MediaURL string `json:"url,omitempty"`
}

// Validate rejects events missing the fields the pipeline depends on.
func (e InboundEvent) Validate() error {
	if strings.TrimSpace(e.From) == "" {
		return errors.New("inbound event: from is required")
	}
	if strings.TrimSpace(e.Body) == "" {
		return errors.New("inbound event: body is required")
	}
	return nil
}

// IsMedia reports whether the event carries a downloadable attachment.
func (e InboundEvent) IsMedia() bool {
	return strings.Contains(e.Body, EventMarker) && strings.TrimSpace(e.MediaURL) != ""
}

// OutboundEvent is a reply emitted by the bot towards the end user.
type OutboundEvent struct {
	From    string          `json:"from"`
	Answer  string          `json:"answer"`
	Options OutboundOptions `json:"options"`
}

// OutboundOptions carries the optional media reference of a reply: either a
// remote URL or an already-local file path.
type OutboundOptions struct {
	Media string `json:"media,omitempty"`
}

// Validate rejects events missing the fields the pipeline depends on.
func (e OutboundEvent) Validate() error {
	if strings.TrimSpace(e.From) == "" {
		return errors.New("outbound event: from is required")
	}
	if strings.TrimSpace(e.Answer) == "" {
		return errors.New("outbound event: answer is required")
	}
	return nil
}

// isRemote reports whether a media reference needs downloading.
func isRemote(media string) bool {
	return strings.HasPrefix(media, "http://") || strings.HasPrefix(media, "https://")
}
