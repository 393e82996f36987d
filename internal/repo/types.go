package repo

import (
	"database/sql"
	"time"
)

// Form is a named questionnaire made of one or more modals.
type Form struct {
	ID           int
	Name         string
	Message      *string
	Confirmation *string
	ChannelID    *string
	Ping         bool
}

// Modal is one page of a form.
type Modal struct {
	ID     int
	FormID int
	Label  string
	Title  *string
}

// Question is a single text input on a modal.
type Question struct {
	ID          int
	ModalID     int
	Label       string
	Placeholder *string
	Paragraph   bool
	Required    bool
	MinLength   *int
	MaxLength   *int
	// Identity marks the answer as the submitter's external identity. Only
	// honored on the first question of a form's first modal.
	Identity bool
}

// PublishedButton is one durable starter button attached to a sent message.
type PublishedButton struct {
	ID        int
	MessageID string
	ChannelID string
	Position  int
	Label     string
	Emoji     *string
	Style     int
	FormID    int
}

// Response is one completed submission of a form. FormID is zero once the
// form has been removed.
type Response struct {
	ID        int
	Username  string
	CreatedAt time.Time
	FormID    int
}

// Answer holds the text given to one question; Answer is nil when the
// question was left blank. QuestionID is zero once the question has been
// removed.
type Answer struct {
	ID         int
	ResponseID int
	QuestionID int
	Answer     *string
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func fromNullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int64)
	return &i
}
