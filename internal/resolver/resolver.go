// Package resolver maps a phone-identified user onto the Chatwoot
// inbox/contact/conversation triad with idempotent find-or-create steps.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/botmirror/botmirror/internal/chatwoot"
)

// Resolver resolves the inbox, contact, and conversation backing one phone number.
type Resolver struct {
	client    *chatwoot.Client
	inboxName string
	logger    *slog.Logger
}

// Resolution is the fully resolved triad for one event.
type Resolution struct {
	Inbox        chatwoot.Inbox
	Contact      chatwoot.Contact
	Conversation chatwoot.Conversation
}

// New creates a Resolver bound to the deployment's canonical inbox name.
func New(log *slog.Logger, client *chatwoot.Client, inboxName string) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		client:    client,
		inboxName: inboxName,
		logger:    log.With(slog.String("service", "resolver")),
	}
}

// FindOrCreateInbox returns the inbox with the configured name, creating it
// (API channel, no webhook) when absent. The name match is case-sensitive.
func (r *Resolver) FindOrCreateInbox(ctx context.Context) (chatwoot.Inbox, error) {
	inboxes, err := r.client.ListInboxes(ctx)
	if err != nil {
		return chatwoot.Inbox{}, fmt.Errorf("list inboxes: %w", err)
	}
	for _, inbox := range inboxes {
		if inbox.Name == r.inboxName {
			return inbox, nil
		}
	}

	r.logger.Info("creating inbox", slog.String("name", r.inboxName))
	inbox, err := r.client.CreateInbox(ctx, r.inboxName)
	if err != nil {
		return chatwoot.Inbox{}, fmt.Errorf("create inbox: %w", err)
	}
	return inbox, nil
}

// FindOrCreateContact returns the contact for the given phone number,
// creating it under inboxID when absent. The phone is normalized first.
func (r *Resolver) FindOrCreateContact(ctx context.Context, inboxID int64, phone, name string) (chatwoot.Contact, error) {
	phone = chatwoot.NormalizePhone(phone)

	contacts, err := r.client.SearchContacts(ctx, phone)
	if err != nil {
		return chatwoot.Contact{}, fmt.Errorf("search contacts: %w", err)
	}
	if len(contacts) > 0 {
		return contacts[0], nil
	}

	r.logger.Info("creating contact", slog.String("phone", phone))
	contact, err := r.client.CreateContact(ctx, chatwoot.CreateContactRequest{
		InboxID:     inboxID,
		Name:        name,
		PhoneNumber: phone,
	})
	if err != nil {
		return chatwoot.Contact{}, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

// FindOrCreateConversation returns the conversation keyed by (inbox, phone),
// creating it when absent. The phone number is carried as a custom attribute
// so the filter query can find it again.
func (r *Resolver) FindOrCreateConversation(ctx context.Context, inboxID, contactID int64, phone string) (chatwoot.Conversation, error) {
	phone = chatwoot.NormalizePhone(phone)

	conversations, err := r.client.FilterConversations(ctx, []chatwoot.FilterClause{
		{
			AttributeKey:   "phone_number",
			FilterOperator: "equal_to",
			Values:         []string{phone},
			QueryOperator:  "AND",
		},
		{
			AttributeKey:   "inbox_id",
			FilterOperator: "equal_to",
			Values:         []string{strconv.FormatInt(inboxID, 10)},
		},
	})
	if err != nil {
		return chatwoot.Conversation{}, fmt.Errorf("filter conversations: %w", err)
	}
	if len(conversations) > 0 {
		return conversations[0], nil
	}

	r.logger.Info("creating conversation", slog.String("phone", phone), slog.Int64("inbox_id", inboxID))
	conversation, err := r.client.CreateConversation(ctx, chatwoot.CreateConversationRequest{
		SourceID:  phone,
		InboxID:   inboxID,
		ContactID: contactID,
		CustomAttributes: map[string]any{
			"phone_number": phone,
		},
	})
	if err != nil {
		return chatwoot.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conversation, nil
}

// Resolve runs the triad in order: inbox, then contact, then conversation.
// Conversation resolution depends on both prior ids, so the sequence is fixed.
func (r *Resolver) Resolve(ctx context.Context, phone, name string) (Resolution, error) {
	inbox, err := r.FindOrCreateInbox(ctx)
	if err != nil {
		return Resolution{}, err
	}
	contact, err := r.FindOrCreateContact(ctx, inbox.ID, phone, name)
	if err != nil {
		return Resolution{}, err
	}
	conversation, err := r.FindOrCreateConversation(ctx, inbox.ID, contact.ID, phone)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{
		Inbox:        inbox,
		Contact:      contact,
		Conversation: conversation,
	}, nil
}
