package chatwoot

// MessageType marks the direction of a mirrored message.
type MessageType string

const (
	// MessageIncoming marks a message sent by the end user to the bot.
	MessageIncoming MessageType = "incoming"
	// MessageOutgoing marks a message sent by the bot to the end user.
	MessageOutgoing MessageType = "outgoing"
)

// Inbox is a top-level channel grouping under which conversations are filed.
type Inbox struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Contact identifies an end user, keyed by phone number.
type Contact struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// Conversation is a thread of messages between a contact and an inbox.
type Conversation struct {
	ID               int64          `json:"id"`
	InboxID          int64          `json:"inbox_id"`
	ContactID        int64          `json:"contact_id"`
	CustomAttributes map[string]any `json:"custom_attributes,omitempty"`
}

// Message is a single mirrored message record.
type Message struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// CreateContactRequest is the body for creating a contact.
type CreateContactRequest struct {
	InboxID     int64  `json:"inbox_id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// CreateConversationRequest is the body for creating a conversation.
type CreateConversationRequest struct {
	SourceID         string         `json:"source_id"`
	InboxID          int64          `json:"inbox_id"`
	ContactID        int64          `json:"contact_id"`
	CustomAttributes map[string]any `json:"custom_attributes"`
}

// FilterClause is one predicate of a conversation filter query.
type FilterClause struct {
	AttributeKey   string   `json:"attribute_key"`
	FilterOperator string   `json:"filter_operator"`
	Values         []string `json:"values"`
	QueryOperator  string   `json:"query_operator,omitempty"`
}

// CreateMessageRequest describes one message submission. AttachmentPath, when
// set, points at a local file uploaded alongside the content.
type CreateMessageRequest struct {
	Content        string
	MessageType    MessageType
	AttachmentPath string
}
