// Package publish composes messages carrying starter buttons and sends them
// as durable, restart-safe form entry points.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Alijeyrad/formsbot/internal/repo"
	"github.com/Alijeyrad/formsbot/internal/service/messaging"
	"github.com/Alijeyrad/formsbot/internal/service/starter"
)

const instrumentationName = "github.com/Alijeyrad/formsbot/internal/service/publish"

// Sender is the chat surface a builder publishes through.
type Sender interface {
	Send(ctx context.Context, channelID, content string) (messageID string, err error)
	AttachStarters(ctx context.Context, channelID, messageID string, buttons []starter.Button) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Start opens a builder for a message to channelID with one empty button.
	Start(ctx context.Context, channelID, content string) (View, error)
	View(ctx context.Context, builderID string) (View, error)
	EditCurrent(ctx context.Context, builderID, label, icon string) (View, error)
	CycleStyle(ctx context.Context, builderID string) (View, error)
	SelectForm(ctx context.Context, builderID string, formID int) (View, error)
	DeleteCurrent(ctx context.Context, builderID string) (View, error)
	AddNew(ctx context.Context, builderID string) (View, error)
	Prev(ctx context.Context, builderID string) (View, error)
	Next(ctx context.Context, builderID string) (View, error)
	// Publish sends the message, records its buttons and registers them as
	// starters. It returns the new message id.
	Publish(ctx context.Context, builderID string) (string, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type publishService struct {
	db       *repo.Client
	sender   Sender
	starters *starter.Registry

	mu       sync.RWMutex
	builders map[string]*Builder

	publishes metric.Int64Counter
}

func New(db *repo.Client, sender Sender, starters *starter.Registry) Service {
	meter := otel.Meter(instrumentationName)
	counter, _ := meter.Int64Counter(
		"forms_publishes_total",
		metric.WithDescription("Messages published with starter buttons"),
		metric.WithUnit("{message}"),
	)

	return &publishService{
		db:        db,
		sender:    sender,
		starters:  starters,
		builders:  make(map[string]*Builder),
		publishes: counter,
	}
}

func (s *publishService) Start(ctx context.Context, channelID, content string) (View, error) {
	forms, err := s.db.ListForms(ctx)
	if err != nil {
		return View{}, fmt.Errorf("load form catalog: %w", err)
	}
	catalog := make([]FormOption, 0, len(forms))
	for _, f := range forms {
		catalog = append(catalog, FormOption{ID: f.ID, Name: f.Name})
	}

	b := newBuilder(uuid.NewString(), channelID, content, catalog)

	s.mu.Lock()
	s.builders[b.id] = b
	s.mu.Unlock()

	return b.View(), nil
}

func (s *publishService) builder(id string) (*Builder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.builders[id]
	if !ok {
		return nil, ErrBuilderNotFound
	}
	return b, nil
}

// apply runs op on the builder and returns its new view.
func (s *publishService) apply(id string, op func(b *Builder) error) (View, error) {
	b, err := s.builder(id)
	if err != nil {
		return View{}, err
	}
	if err := op(b); err != nil {
		return View{}, err
	}
	return b.View(), nil
}

func (s *publishService) View(_ context.Context, builderID string) (View, error) {
	return s.apply(builderID, func(*Builder) error { return nil })
}

func (s *publishService) EditCurrent(_ context.Context, builderID, label, icon string) (View, error) {
	return s.apply(builderID, func(b *Builder) error { return b.EditCurrent(label, icon) })
}

func (s *publishService) CycleStyle(_ context.Context, builderID string) (View, error) {
	return s.apply(builderID, (*Builder).CycleStyle)
}

func (s *publishService) SelectForm(_ context.Context, builderID string, formID int) (View, error) {
	return s.apply(builderID, func(b *Builder) error { return b.SelectForm(formID) })
}

func (s *publishService) DeleteCurrent(_ context.Context, builderID string) (View, error) {
	return s.apply(builderID, (*Builder).DeleteCurrent)
}

func (s *publishService) AddNew(_ context.Context, builderID string) (View, error) {
	return s.apply(builderID, (*Builder).AddNew)
}

func (s *publishService) Prev(_ context.Context, builderID string) (View, error) {
	return s.apply(builderID, (*Builder).Prev)
}

func (s *publishService) Next(_ context.Context, builderID string) (View, error) {
	return s.apply(builderID, (*Builder).Next)
}

// Publish sends the message, commits the button rows in one transaction and
// then attaches the buttons. No transaction is open while the chat platform
// is called. If recording or attaching fails the rows are removed and the
// sent message is deleted, so a message never outlives its rows.
func (s *publishService) Publish(ctx context.Context, builderID string) (string, error) {
	b, err := s.builder(builderID)
	if err != nil {
		return "", err
	}
	snapshot, err := b.claim()
	if err != nil {
		return "", err
	}

	messageID, err := s.sender.Send(ctx, b.channelID, b.content)
	if err != nil {
		b.reopen()
		if errors.Is(err, messaging.ErrForbidden) || errors.Is(err, messaging.ErrUnknownChannel) {
			return "", fmt.Errorf("%w: %v", ErrNoAccess, err)
		}
		return "", fmt.Errorf("send message: %w", err)
	}

	buttons := make([]starter.Button, len(snapshot))
	rows := make([]*repo.PublishedButton, len(snapshot))
	for i, bs := range snapshot {
		buttons[i] = starter.Button{Label: bs.Label, Emoji: bs.Icon, Style: int(bs.Style), FormID: bs.FormID}
		row := &repo.PublishedButton{
			MessageID: messageID,
			ChannelID: b.channelID,
			Position:  i,
			Label:     bs.Label,
			Style:     int(bs.Style),
			FormID:    bs.FormID,
		}
		if bs.Icon != "" {
			icon := bs.Icon
			row.Emoji = &icon
		}
		rows[i] = row
	}

	err = s.db.WithTx(ctx, func(tx *repo.Client) error {
		return tx.CreatePublishedButtons(ctx, rows)
	})
	if err != nil {
		s.abandon(ctx, b, messageID, false)
		return "", fmt.Errorf("record buttons: %w", err)
	}

	if err := s.sender.AttachStarters(ctx, b.channelID, messageID, buttons); err != nil {
		s.abandon(ctx, b, messageID, true)
		return "", fmt.Errorf("attach buttons: %w", err)
	}

	s.starters.Register(starter.Group{MessageID: messageID, ChannelID: b.channelID, Buttons: buttons})

	s.mu.Lock()
	delete(s.builders, builderID)
	s.mu.Unlock()

	s.publishes.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "sent")))
	slog.InfoContext(ctx, "message published",
		"channel_id", b.channelID, "message_id", messageID, "buttons", len(buttons))
	return messageID, nil
}

// abandon undoes a partially published message and reopens its builder.
func (s *publishService) abandon(ctx context.Context, b *Builder, messageID string, recorded bool) {
	if recorded {
		err := s.db.WithTx(ctx, func(tx *repo.Client) error {
			return tx.DeletePublishedButtons(ctx, messageID)
		})
		if err != nil {
			slog.ErrorContext(ctx, "could not remove buttons of unpublished message",
				"channel_id", b.channelID, "message_id", messageID, "error", err)
		}
	}
	if err := s.sender.DeleteMessage(ctx, b.channelID, messageID); err != nil {
		slog.WarnContext(ctx, "could not delete unpublished message",
			"channel_id", b.channelID, "message_id", messageID, "error", err)
	}
	b.reopen()
	s.publishes.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "failed")))
}
