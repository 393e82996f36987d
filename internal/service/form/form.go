// Package form implements authoring of forms, their modals and questions.
// Modal and question operations act on the form and modal the calling
// administrator has selected.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alijeyrad/formsbot/internal/repo"
	"github.com/Alijeyrad/formsbot/internal/service/selection"
	"github.com/Alijeyrad/formsbot/pkg/constants"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateFormRequest struct {
	Name         string
	Message      *string
	Confirmation *string
	ChannelID    *string
	Ping         bool
}

// EditFormRequest carries the raw values of the form edit dialog.
type EditFormRequest struct {
	Name         string
	Message      string
	Confirmation string
	Channel      string
}

type AddModalRequest struct {
	Label string
	Title *string
}

type EditModalRequest struct {
	Label string
	Title string
}

type AddQuestionRequest struct {
	Label       string
	Placeholder *string
	Paragraph   bool
	Required    bool
	MinLength   *int
	MaxLength   *int
	Identity    bool
}

type EditQuestionRequest struct {
	Label       string
	Placeholder string
	Paragraph   bool
	Required    bool
	MinLength   *int
	MaxLength   *int
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	CreateForm(ctx context.Context, req CreateFormRequest) (*repo.Form, error)
	GetForm(ctx context.Context, name string) (*repo.Form, error)
	EditForm(ctx context.Context, formID int, req EditFormRequest) (*repo.Form, error)
	SelectForm(ctx context.Context, actorID, name string) (*repo.Form, error)
	RemoveForm(ctx context.Context, name string) error
	ListForms(ctx context.Context) ([]*repo.Form, error)
	FormNames(ctx context.Context, prefix string) ([]string, error)

	AddModal(ctx context.Context, actorID string, req AddModalRequest) (*repo.Modal, error)
	GetModal(ctx context.Context, actorID, label string) (*repo.Modal, error)
	EditModal(ctx context.Context, modalID int, req EditModalRequest) (*repo.Modal, error)
	SelectModal(ctx context.Context, actorID, label string) (*repo.Modal, error)
	RemoveModal(ctx context.Context, actorID, label string) error
	ModalLabels(ctx context.Context, actorID, prefix string) ([]string, error)

	AddQuestion(ctx context.Context, actorID string, req AddQuestionRequest) (*repo.Question, error)
	GetQuestion(ctx context.Context, actorID, label string) (*repo.Question, error)
	EditQuestion(ctx context.Context, questionID int, req EditQuestionRequest) (*repo.Question, error)
	RemoveQuestion(ctx context.Context, actorID, label string) error
	QuestionLabels(ctx context.Context, actorID, prefix string) ([]string, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type formService struct {
	db        *repo.Client
	selection selection.Store
}

func New(db *repo.Client, store selection.Store) Service {
	return &formService{db: db, selection: store}
}

// ---------------------------------------------------------------------------
// Forms
// ---------------------------------------------------------------------------

// CreateForm inserts a new form. A name that is already taken is suffixed
// with " (n)" using the first free n instead of being rejected.
func (s *formService) CreateForm(ctx context.Context, req CreateFormRequest) (*repo.Form, error) {
	if err := checkText("name", req.Name, constants.MaxFormNameLength, true); err != nil {
		return nil, err
	}

	f := &repo.Form{
		Name:         req.Name,
		Message:      req.Message,
		Confirmation: req.Confirmation,
		ChannelID:    req.ChannelID,
		Ping:         req.Ping,
	}

	err := s.db.WithTx(ctx, func(tx *repo.Client) error {
		name := req.Name
		for n := 1; ; n++ {
			taken, err := tx.FormNameExists(ctx, name)
			if err != nil {
				return err
			}
			if !taken {
				break
			}
			name = suffixed(req.Name, n, constants.MaxFormNameLength)
		}
		f.Name = name
		return tx.CreateForm(ctx, f)
	})
	if err != nil {
		if repo.IsUniqueConstraintError(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("create form: %w", err)
	}

	slog.InfoContext(ctx, "form created", "form_id", f.ID, "name", f.Name)
	return f, nil
}

func (s *formService) GetForm(ctx context.Context, name string) (*repo.Form, error) {
	f, err := s.db.GetFormByName(ctx, name)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("get form: %w", err)
	}
	return f, nil
}

func (s *formService) EditForm(ctx context.Context, formID int, req EditFormRequest) (*repo.Form, error) {
	if err := checkText("name", req.Name, constants.MaxFormNameLength, true); err != nil {
		return nil, err
	}
	channel, err := ParseChannelID(req.Channel)
	if err != nil {
		return nil, err
	}

	f, err := s.db.GetForm(ctx, formID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("get form: %w", err)
	}

	if req.Name != f.Name {
		taken, err := s.db.FormNameExists(ctx, req.Name)
		if err != nil {
			return nil, fmt.Errorf("check form name: %w", err)
		}
		if taken {
			return nil, ErrDuplicateName
		}
	}

	f.Name = req.Name
	f.Message = optional(req.Message)
	f.Confirmation = optional(req.Confirmation)
	f.ChannelID = channel

	if err := s.db.UpdateForm(ctx, f); err != nil {
		switch {
		case repo.IsNotFound(err):
			return nil, ErrFormNotFound
		case repo.IsUniqueConstraintError(err):
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("edit form: %w", err)
	}
	return f, nil
}

// SelectForm makes name the actor's current form and clears any modal
// selection, which belonged to the previous form.
func (s *formService) SelectForm(ctx context.Context, actorID, name string) (*repo.Form, error) {
	f, err := s.GetForm(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.selection.Set(ctx, actorID, selection.KindForm, f.ID); err != nil {
		return nil, err
	}
	if err := s.selection.Clear(ctx, actorID, selection.KindModal); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *formService) RemoveForm(ctx context.Context, name string) error {
	f, err := s.GetForm(ctx, name)
	if err != nil {
		return err
	}
	if err := s.db.DeleteForm(ctx, f.ID); err != nil {
		if repo.IsNotFound(err) {
			return ErrFormNotFound
		}
		return fmt.Errorf("remove form: %w", err)
	}
	slog.InfoContext(ctx, "form removed", "form_id", f.ID, "name", f.Name)
	return nil
}

func (s *formService) ListForms(ctx context.Context) ([]*repo.Form, error) {
	forms, err := s.db.ListForms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	return forms, nil
}

func (s *formService) FormNames(ctx context.Context, prefix string) ([]string, error) {
	return s.db.SearchFormNames(ctx, prefix, constants.MaxAutocompleteChoices)
}

// ---------------------------------------------------------------------------
// Modals
// ---------------------------------------------------------------------------

func (s *formService) selectedForm(ctx context.Context, actorID string) (*repo.Form, error) {
	id, ok, err := s.selection.Get(ctx, actorID, selection.KindForm)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoFormSelected
	}
	f, err := s.db.GetForm(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			_ = s.selection.Clear(ctx, actorID, selection.KindForm)
			return nil, ErrNoFormSelected
		}
		return nil, fmt.Errorf("get selected form: %w", err)
	}
	return f, nil
}

func (s *formService) AddModal(ctx context.Context, actorID string, req AddModalRequest) (*repo.Modal, error) {
	if err := checkText("label", req.Label, constants.MaxModalLabelLength, true); err != nil {
		return nil, err
	}
	if req.Title != nil {
		if err := checkText("title", *req.Title, constants.MaxModalTitleLength, false); err != nil {
			return nil, err
		}
	}

	f, err := s.selectedForm(ctx, actorID)
	if err != nil {
		return nil, err
	}

	m := &repo.Modal{FormID: f.ID, Label: req.Label, Title: req.Title}
	if err := s.db.CreateModal(ctx, m); err != nil {
		if repo.IsUniqueConstraintError(err) {
			return nil, ErrDuplicateLabel
		}
		return nil, fmt.Errorf("add modal: %w", err)
	}
	return m, nil
}

func (s *formService) GetModal(ctx context.Context, actorID, label string) (*repo.Modal, error) {
	f, err := s.selectedForm(ctx, actorID)
	if err != nil {
		return nil, err
	}
	m, err := s.db.GetModalByLabel(ctx, f.ID, label)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrModalNotFound
		}
		return nil, fmt.Errorf("get modal: %w", err)
	}
	return m, nil
}

func (s *formService) EditModal(ctx context.Context, modalID int, req EditModalRequest) (*repo.Modal, error) {
	if err := checkText("label", req.Label, constants.MaxModalLabelLength, true); err != nil {
		return nil, err
	}
	if err := checkText("title", req.Title, constants.MaxModalTitleLength, false); err != nil {
		return nil, err
	}

	m, err := s.db.GetModal(ctx, modalID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrModalNotFound
		}
		return nil, fmt.Errorf("get modal: %w", err)
	}

	m.Label = req.Label
	m.Title = optional(req.Title)
	if err := s.db.UpdateModal(ctx, m); err != nil {
		switch {
		case repo.IsNotFound(err):
			return nil, ErrModalNotFound
		case repo.IsUniqueConstraintError(err):
			return nil, ErrDuplicateLabel
		}
		return nil, fmt.Errorf("edit modal: %w", err)
	}
	return m, nil
}

func (s *formService) SelectModal(ctx context.Context, actorID, label string) (*repo.Modal, error) {
	m, err := s.GetModal(ctx, actorID, label)
	if err != nil {
		return nil, err
	}
	if err := s.selection.Set(ctx, actorID, selection.KindModal, m.ID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *formService) RemoveModal(ctx context.Context, actorID, label string) error {
	m, err := s.GetModal(ctx, actorID, label)
	if err != nil {
		return err
	}
	if err := s.db.DeleteModal(ctx, m.ID); err != nil {
		if repo.IsNotFound(err) {
			return ErrModalNotFound
		}
		return fmt.Errorf("remove modal: %w", err)
	}
	return nil
}

func (s *formService) ModalLabels(ctx context.Context, actorID, prefix string) ([]string, error) {
	f, err := s.selectedForm(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.db.SearchModalLabels(ctx, f.ID, prefix, constants.MaxAutocompleteChoices)
}

// ---------------------------------------------------------------------------
// Questions
// ---------------------------------------------------------------------------

func (s *formService) selectedModal(ctx context.Context, actorID string) (*repo.Modal, error) {
	id, ok, err := s.selection.Get(ctx, actorID, selection.KindModal)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoModalSelected
	}
	m, err := s.db.GetModal(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			_ = s.selection.Clear(ctx, actorID, selection.KindModal)
			return nil, ErrNoModalSelected
		}
		return nil, fmt.Errorf("get selected modal: %w", err)
	}
	return m, nil
}

// AddQuestion appends a question to the selected modal. The count check and
// the insert share a transaction holding the modal's row lock, so concurrent
// adds cannot push a modal past the limit.
func (s *formService) AddQuestion(ctx context.Context, actorID string, req AddQuestionRequest) (*repo.Question, error) {
	if err := checkText("label", req.Label, constants.MaxQuestionLabelLength, true); err != nil {
		return nil, err
	}
	if req.Placeholder != nil {
		if err := checkText("placeholder", *req.Placeholder, constants.MaxPlaceholderLength, false); err != nil {
			return nil, err
		}
	}
	if err := validateLengths(req.MinLength, req.MaxLength); err != nil {
		return nil, err
	}

	m, err := s.selectedModal(ctx, actorID)
	if err != nil {
		return nil, err
	}

	q := &repo.Question{
		ModalID:     m.ID,
		Label:       req.Label,
		Placeholder: req.Placeholder,
		Paragraph:   req.Paragraph,
		Required:    req.Required,
		MinLength:   req.MinLength,
		MaxLength:   req.MaxLength,
		Identity:    req.Identity,
	}

	err = s.db.WithTx(ctx, func(tx *repo.Client) error {
		if err := tx.LockModal(ctx, m.ID); err != nil {
			return err
		}
		n, err := tx.CountQuestions(ctx, m.ID)
		if err != nil {
			return err
		}
		if n >= constants.MaxQuestionsPerModal {
			return ErrQuestionLimit
		}
		return tx.CreateQuestion(ctx, q)
	})
	switch {
	case err == nil:
		return q, nil
	case errors.Is(err, ErrQuestionLimit):
		return nil, err
	case repo.IsNotFound(err):
		return nil, ErrNoModalSelected
	case repo.IsUniqueConstraintError(err):
		return nil, ErrDuplicateLabel
	default:
		return nil, fmt.Errorf("add question: %w", err)
	}
}

func (s *formService) GetQuestion(ctx context.Context, actorID, label string) (*repo.Question, error) {
	m, err := s.selectedModal(ctx, actorID)
	if err != nil {
		return nil, err
	}
	q, err := s.db.GetQuestionByLabel(ctx, m.ID, label)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

// EditQuestion rewrites every dialog-editable attribute. The identity flag
// is kept.
func (s *formService) EditQuestion(ctx context.Context, questionID int, req EditQuestionRequest) (*repo.Question, error) {
	if err := checkText("label", req.Label, constants.MaxQuestionLabelLength, true); err != nil {
		return nil, err
	}
	if err := checkText("placeholder", req.Placeholder, constants.MaxPlaceholderLength, false); err != nil {
		return nil, err
	}
	if err := validateLengths(req.MinLength, req.MaxLength); err != nil {
		return nil, err
	}

	q, err := s.db.GetQuestion(ctx, questionID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}

	q.Label = req.Label
	q.Placeholder = optional(req.Placeholder)
	q.Paragraph = req.Paragraph
	q.Required = req.Required
	q.MinLength = req.MinLength
	q.MaxLength = req.MaxLength

	if err := s.db.UpdateQuestion(ctx, q); err != nil {
		switch {
		case repo.IsNotFound(err):
			return nil, ErrQuestionNotFound
		case repo.IsUniqueConstraintError(err):
			return nil, ErrDuplicateLabel
		}
		return nil, fmt.Errorf("edit question: %w", err)
	}
	return q, nil
}

func (s *formService) RemoveQuestion(ctx context.Context, actorID, label string) error {
	q, err := s.GetQuestion(ctx, actorID, label)
	if err != nil {
		return err
	}
	if err := s.db.DeleteQuestion(ctx, q.ID); err != nil {
		if repo.IsNotFound(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("remove question: %w", err)
	}
	return nil
}

func (s *formService) QuestionLabels(ctx context.Context, actorID, prefix string) ([]string, error) {
	m, err := s.selectedModal(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.db.SearchQuestionLabels(ctx, m.ID, prefix, constants.MaxAutocompleteChoices)
}
