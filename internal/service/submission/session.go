package submission

import (
	"fmt"
	"sync"

	"github.com/Alijeyrad/formsbot/internal/repo"
	"github.com/Alijeyrad/formsbot/pkg/constants"
)

// Submitter identifies the user filling in a form.
type Submitter struct {
	UserID      string
	Username    string
	DisplayName string
}

// Pair is one question of a modal together with its current answer. Answer
// is nil while the question is unanswered.
type Pair struct {
	Question *repo.Question
	Answer   *string
}

type page struct {
	modal     *repo.Modal
	pairs     []Pair
	submitted bool
}

// Field is one text input of an opened modal, pre-filled with the current
// answer.
type Field struct {
	QuestionID  int
	Label       string
	Placeholder string
	Paragraph   bool
	Required    bool
	MinLength   int
	MaxLength   int
	Value       string
}

// ModalPage is what OpenModal hands to the input surface.
type ModalPage struct {
	Index  int
	Title  string
	Fields []Field
}

// PageView describes the button of one modal on the session message.
type PageView struct {
	Label     string
	Submitted bool
}

// View is the state of the session message: one button per modal plus the
// terminal send control.
type View struct {
	SessionID string
	Message   string
	Pages     []PageView
	Ready     bool
}

// Session is one user's in-progress submission of a form. It is never
// persisted; only Finalize writes to the store.
type Session struct {
	mu        sync.Mutex
	id        string
	form      *repo.Form
	pages     []*page
	submitter Submitter
	ready     bool
	finalized bool
}

func newSession(id string, form *repo.Form, modals []*repo.Modal, questions [][]*repo.Question, submitter Submitter) *Session {
	s := &Session{id: id, form: form, submitter: submitter}
	for i, m := range modals {
		p := &page{modal: m}
		for _, q := range questions[i] {
			p.pairs = append(p.pairs, Pair{Question: q})
		}
		s.pages = append(s.pages, p)
	}
	s.ready = s.computeReady()
	return s
}

// ID returns the session id embedded in component custom ids.
func (s *Session) ID() string { return s.id }

// OpenModal returns modal index with every field pre-filled.
func (s *Session) OpenModal(index int) (*ModalPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.pages) {
		return nil, ErrModalNotFound
	}
	p := s.pages[index]

	title := s.form.Name
	if p.modal.Title != nil && *p.modal.Title != "" {
		title = *p.modal.Title
	}

	mp := &ModalPage{Index: index, Title: title}
	for _, pair := range p.pairs {
		q := pair.Question
		f := Field{
			QuestionID: q.ID,
			Label:      q.Label,
			Paragraph:  q.Paragraph,
			Required:   q.Required,
			MaxLength:  maxLength(q),
		}
		if q.Placeholder != nil {
			f.Placeholder = *q.Placeholder
		}
		if q.MinLength != nil {
			f.MinLength = *q.MinLength
		}
		if pair.Answer != nil {
			f.Value = *pair.Answer
		}
		mp.Fields = append(mp.Fields, f)
	}
	return mp, nil
}

// SubmitModalPage replaces the answers of modal index with values, one per
// question in order. An empty value leaves the question unanswered.
func (s *Session) SubmitModalPage(index int, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return ErrAlreadySubmitted
	}
	if index < 0 || index >= len(s.pages) {
		return ErrModalNotFound
	}
	p := s.pages[index]
	if len(values) != len(p.pairs) {
		return fmt.Errorf("%w: got %d, want %d", ErrValueCount, len(values), len(p.pairs))
	}

	answers := make([]*string, len(values))
	for i, v := range values {
		q := p.pairs[i].Question
		if n := len([]rune(v)); n > maxLength(q) {
			return fmt.Errorf("%w: %q is limited to %d characters", ErrAnswerTooLong, q.Label, maxLength(q))
		}
		if v != "" {
			answers[i] = &v
		}
	}

	for i := range p.pairs {
		p.pairs[i].Answer = answers[i]
	}
	p.submitted = true
	s.ready = s.computeReady()
	return nil
}

// Ready reports whether the send control is enabled.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// View returns the current state of the session message.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{SessionID: s.id, Ready: s.ready}
	if s.form.Message != nil {
		v.Message = *s.form.Message
	}
	for _, p := range s.pages {
		v.Pages = append(v.Pages, PageView{Label: p.modal.Label, Submitted: p.submitted})
	}
	return v
}

func (s *Session) computeReady() bool {
	for _, p := range s.pages {
		for _, pair := range p.pairs {
			if pair.Answer == nil && pair.Question.Required {
				return false
			}
		}
	}
	return true
}

// claim marks the session finalized and returns a snapshot of every pair in
// form order. release undoes the claim when the commit fails.
func (s *Session) claim() ([]Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return nil, ErrAlreadySubmitted
	}
	if !s.ready {
		return nil, ErrNotReady
	}
	s.finalized = true

	var pairs []Pair
	for _, p := range s.pages {
		pairs = append(pairs, p.pairs...)
	}
	return pairs, nil
}

func (s *Session) release() {
	s.mu.Lock()
	s.finalized = false
	s.mu.Unlock()
}

func maxLength(q *repo.Question) int {
	if q.MaxLength != nil {
		return *q.MaxLength
	}
	return constants.DefaultAnswerMaxLength
}
