// Package submission walks a user through a multi-modal form and commits the
// completed response.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Alijeyrad/formsbot/internal/repo"
	"github.com/Alijeyrad/formsbot/pkg/constants"
)

const instrumentationName = "github.com/Alijeyrad/formsbot/internal/service/submission"

// Result describes a committed response.
type Result struct {
	ResponseID   int
	Confirmation string
	Notification *Notification
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Start loads the form and opens a new session for submitter.
	Start(ctx context.Context, formID int, submitter Submitter) (View, error)
	OpenModal(ctx context.Context, sessionID string, index int) (*ModalPage, error)
	SubmitModalPage(ctx context.Context, sessionID string, index int, values []string) (View, error)
	// Finalize commits the response and posts the notification. When only
	// the posting fails it returns the Result together with ErrDeliveryFailed.
	Finalize(ctx context.Context, sessionID string) (*Result, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type submissionService struct {
	db         *repo.Client
	dispatcher Dispatcher
	enricher   Enricher
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	submissions metric.Int64Counter
}

// Option configures the service.
type Option func(*submissionService)

// WithEnricher decorates identity notifications using e.
func WithEnricher(e Enricher) Option {
	return func(s *submissionService) { s.enricher = e }
}

// WithClock replaces time.Now for response timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *submissionService) { s.now = now }
}

func New(db *repo.Client, dispatcher Dispatcher, opts ...Option) Service {
	meter := otel.Meter(instrumentationName)
	counter, _ := meter.Int64Counter(
		"forms_submissions_total",
		metric.WithDescription("Completed form submissions"),
		metric.WithUnit("{submission}"),
	)

	s := &submissionService{
		db:          db,
		dispatcher:  dispatcher,
		now:         time.Now,
		sessions:    make(map[string]*Session),
		submissions: counter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *submissionService) Start(ctx context.Context, formID int, submitter Submitter) (View, error) {
	f, err := s.db.GetForm(ctx, formID)
	if err != nil {
		if repo.IsNotFound(err) {
			return View{}, ErrFormNotFound
		}
		return View{}, fmt.Errorf("load form: %w", err)
	}

	modals, err := s.db.ListModals(ctx, f.ID)
	if err != nil {
		return View{}, fmt.Errorf("load modals: %w", err)
	}
	questions := make([][]*repo.Question, len(modals))
	for i, m := range modals {
		qs, err := s.db.ListQuestions(ctx, m.ID)
		if err != nil {
			return View{}, fmt.Errorf("load questions: %w", err)
		}
		questions[i] = qs
	}

	sess := newSession(uuid.NewString(), f, modals, questions, submitter)

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	slog.DebugContext(ctx, "submission session started",
		"session_id", sess.id, "form_id", f.ID, "user_id", submitter.UserID)
	return sess.View(), nil
}

func (s *submissionService) session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *submissionService) OpenModal(_ context.Context, sessionID string, index int) (*ModalPage, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.OpenModal(index)
}

func (s *submissionService) SubmitModalPage(_ context.Context, sessionID string, index int, values []string) (View, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return View{}, err
	}
	if err := sess.SubmitModalPage(index, values); err != nil {
		return View{}, err
	}
	return sess.View(), nil
}

func (s *submissionService) Finalize(ctx context.Context, sessionID string) (*Result, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	pairs, err := sess.claim()
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	resp := &repo.Response{
		Username:  sess.submitter.Username,
		CreatedAt: at,
		FormID:    sess.form.ID,
	}

	answersFailed := false
	err = s.db.WithTx(ctx, func(tx *repo.Client) error {
		if err := tx.CreateResponse(ctx, resp); err != nil {
			return err
		}
		answers := make([]*repo.Answer, 0, len(pairs))
		for _, p := range pairs {
			answers = append(answers, &repo.Answer{
				ResponseID: resp.ID,
				QuestionID: p.Question.ID,
				Answer:     p.Answer,
			})
		}
		if err := tx.CreateAnswers(ctx, answers); err != nil {
			answersFailed = true
			return err
		}
		return nil
	})
	if err != nil {
		// A removed form or question can never be answered again.
		if repo.IsForeignKeyConstraintError(err) {
			s.drop(sessionID)
			if answersFailed {
				return nil, ErrFormChanged
			}
			return nil, ErrFormNotFound
		}
		sess.release()
		return nil, fmt.Errorf("commit response: %w", err)
	}

	s.drop(sessionID)

	n, identity := buildNotification(sess.form, sess.submitter, pairs, at)
	if identity != "" && s.enricher != nil {
		extra, err := s.enricher.Enrich(ctx, identity)
		if err != nil {
			slog.DebugContext(ctx, "enrichment skipped", "identity", identity, "error", err)
		} else {
			n.Fields = append(n.Fields, extra...)
		}
	}

	res := &Result{ResponseID: resp.ID, Confirmation: constants.DefaultConfirmation, Notification: n}
	if sess.form.Confirmation != nil && *sess.form.Confirmation != "" {
		res.Confirmation = *sess.form.Confirmation
	}

	if err := s.deliver(ctx, n); err != nil {
		slog.WarnContext(ctx, "response notification not delivered",
			"form_id", sess.form.ID, "response_id", resp.ID, "channel_id", n.ChannelID, "error", err)
		s.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "undelivered")))
		return res, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	s.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "delivered")))
	slog.InfoContext(ctx, "response recorded", "form_id", sess.form.ID, "response_id", resp.ID)
	return res, nil
}

func (s *submissionService) drop(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

var errNoChannel = errors.New("form has no channel")

func (s *submissionService) deliver(ctx context.Context, n *Notification) error {
	if n.ChannelID == "" {
		return errNoChannel
	}
	if s.dispatcher == nil {
		return errors.New("no dispatcher configured")
	}
	return s.dispatcher.Dispatch(ctx, n)
}
