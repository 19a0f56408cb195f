// Package pipeline runs the message-sync pipeline: per event, attachment
// relay, resource resolution, and message mirroring, all serialized through
// one queue.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/botmirror/botmirror/internal/chatwoot"
	"github.com/botmirror/botmirror/internal/queue"
	"github.com/botmirror/botmirror/internal/relay"
	"github.com/botmirror/botmirror/internal/resolver"
)

// Config holds the pipeline's media settings.
type Config struct {
	// MediaBaseURL is the public prefix downloaded files are served under.
	MediaBaseURL string
	// DownloadToken is the bearer token sent when pulling provider media.
	DownloadToken string
}

// Pipeline normalizes channel events and enqueues one mirror task per event.
type Pipeline struct {
	queue    *queue.Queue
	resolver *resolver.Resolver
	relay    *relay.Relay
	client   *chatwoot.Client
	cfg      Config
	logger   *slog.Logger
}

// New assembles the pipeline from its collaborators.
func New(log *slog.Logger, q *queue.Queue, res *resolver.Resolver, rel *relay.Relay, client *chatwoot.Client, cfg Config) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		queue:    q,
		resolver: res,
		relay:    rel,
		client:   client,
		cfg:      cfg,
		logger:   log.With(slog.String("service", "pipeline")),
	}
}

// mirrorRequest is the normalized shape every event reduces to.
type mirrorRequest struct {
	Phone          string
	Name           string
	Content        string
	MessageType    chatwoot.MessageType
	AttachmentPath string
}

// HandleInbound validates a user→bot event and enqueues its mirror task.
// The returned error covers validation only; pipeline failures are logged.
func (p *Pipeline) HandleInbound(ev InboundEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	p.queue.Enqueue("inbound", func(ctx context.Context) error {
		req := mirrorRequest{
			Phone:       ev.From,
			Name:        ev.PushName,
			Content:     ev.Body,
			MessageType: chatwoot.MessageIncoming,
		}
		if ev.IsMedia() {
			download, err := p.relay.Fetch(ctx, ev.MediaURL, p.cfg.DownloadToken)
			if err != nil {
				return fmt.Errorf("inbound media: %w", err)
			}
			p.logFileServed(download.FileName)
			req.Content = attachmentContent
			req.AttachmentPath = download.FilePath
		}
		return p.mirror(ctx, req)
	})
	return nil
}

// HandleOutbound validates a bot→user event and enqueues its mirror task.
func (p *Pipeline) HandleOutbound(ev OutboundEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	p.queue.Enqueue("outbound", func(ctx context.Context) error {
		req := mirrorRequest{
			Phone:       ev.From,
			Name:        ev.From,
			Content:     ev.Answer,
			MessageType: chatwoot.MessageOutgoing,
		}
		if media := strings.TrimSpace(ev.Options.Media); media != "" {
			if isRemote(media) {
				download, err := p.relay.Fetch(ctx, media, "")
				if err != nil {
					return fmt.Errorf("outbound media: %w", err)
				}
				p.logFileServed(download.FileName)
				// The downloaded local file takes precedence; the remote
				// reference is not forwarded once the fetch succeeded.
				req.AttachmentPath = download.FilePath
			} else {
				req.AttachmentPath = media
			}
		}
		return p.mirror(ctx, req)
	})
	return nil
}

// mirror resolves the inbox/contact/conversation triad and writes the message.
func (p *Pipeline) mirror(ctx context.Context, req mirrorRequest) error {
	resolution, err := p.resolver.Resolve(ctx, req.Phone, req.Name)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", chatwoot.NormalizePhone(req.Phone), err)
	}

	message, err := p.client.CreateMessage(ctx, resolution.Conversation.ID, chatwoot.CreateMessageRequest{
		Content:        req.Content,
		MessageType:    req.MessageType,
		AttachmentPath: req.AttachmentPath,
	})
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	p.logger.Info("message mirrored",
		slog.Int64("conversation_id", resolution.Conversation.ID),
		slog.Int64("message_id", message.ID),
		slog.String("type", string(req.MessageType)),
	)
	return nil
}

func (p *Pipeline) logFileServed(fileName string) {
	base := strings.TrimRight(p.cfg.MediaBaseURL, "/")
	if base == "" {
		return
	}
	p.logger.Info("attachment available", slog.String("url", base+"/"+fileName))
}
