package submission

import (
	"context"
	"strings"
	"time"

	"github.com/Alijeyrad/formsbot/internal/repo"
	"github.com/Alijeyrad/formsbot/pkg/constants"
)

// NotificationColor is the embed color of a posted response.
const NotificationColor = 0x859900

// NotificationField is one name/value line of a notification.
type NotificationField struct {
	Name   string
	Value  string
	Inline bool
}

// Notification is a completed response as posted to the form's channel.
type Notification struct {
	ChannelID string
	Mention   bool
	Title     string
	Color     int
	Timestamp time.Time
	Fields    []NotificationField
}

// Dispatcher posts notifications to a channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, n *Notification) error
}

// Enricher decorates a notification with details looked up from the
// submitter's identity answer.
type Enricher interface {
	Enrich(ctx context.Context, identity string) ([]NotificationField, error)
}

// buildNotification renders pairs in form order. When the first pair is an
// answered identity question it moves out of the listing into the title.
// It returns the identity answer, or "" when there is none.
func buildNotification(form *repo.Form, submitter Submitter, pairs []Pair, at time.Time) (*Notification, string) {
	n := &Notification{
		Mention:   form.Ping,
		Title:     form.Name,
		Color:     NotificationColor,
		Timestamp: at,
	}
	if form.ChannelID != nil {
		n.ChannelID = *form.ChannelID
	}

	var identity string
	if len(pairs) > 0 && pairs[0].Question.Identity && pairs[0].Answer != nil {
		identity = *pairs[0].Answer
		n.Title += " - " + identity
		n.Fields = append(n.Fields,
			NotificationField{Name: fieldName(pairs[0].Question.Label), Value: identity},
			NotificationField{Name: "Discord username:", Value: submitter.Username, Inline: true},
		)
		pairs = pairs[1:]
	} else {
		n.Fields = append(n.Fields, NotificationField{Name: "Username:", Value: displayName(submitter), Inline: true})
	}

	for _, p := range pairs {
		value := constants.UnansweredPlaceholder
		if p.Answer != nil {
			value = *p.Answer
		}
		n.Fields = append(n.Fields, NotificationField{Name: fieldName(p.Question.Label), Value: value})
	}
	return n, identity
}

func fieldName(label string) string {
	if strings.HasSuffix(label, "?") {
		return label
	}
	return label + ":"
}

func displayName(s Submitter) string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Username
}
