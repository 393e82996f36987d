// Package starter keeps the routing table of published starter buttons. A
// starter button's custom id is "<message_id>-<position>", so clicks on
// messages sent before a restart still resolve once the table is rebuilt
// from the store.
package starter

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/Alijeyrad/formsbot/internal/repo"
)

// Button is one starter button of a published message.
type Button struct {
	Label  string
	Emoji  string
	Style  int
	FormID int
}

// Group is the set of starter buttons attached to one message.
type Group struct {
	MessageID string
	ChannelID string
	Buttons   []Button
}

// CustomID returns the custom id of the button at position on messageID.
func CustomID(messageID string, position int) string {
	return messageID + "-" + strconv.Itoa(position)
}

// ParseCustomID splits a starter custom id. ok is false for ids of any other
// component.
func ParseCustomID(customID string) (messageID string, position int, ok bool) {
	i := strings.LastIndexByte(customID, '-')
	if i <= 0 {
		return "", 0, false
	}
	messageID = customID[:i]
	if _, err := strconv.ParseUint(messageID, 10, 64); err != nil {
		return "", 0, false
	}
	position, err := strconv.Atoi(customID[i+1:])
	if err != nil || position < 0 {
		return "", 0, false
	}
	return messageID, position, true
}

// Registry maps published messages to their starter buttons. It is safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]Group
}

func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]Group)}
}

// Register installs g, replacing any group already registered for the same
// message.
func (r *Registry) Register(g Group) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[g.MessageID] = g
}

// Resolve returns the button a starter custom id refers to.
func (r *Registry) Resolve(customID string) (Button, bool) {
	messageID, pos, ok := ParseCustomID(customID)
	if !ok {
		return Button{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[messageID]
	if !ok || pos >= len(g.Buttons) {
		return Button{}, false
	}
	return g.Buttons[pos], true
}

// Group returns the group registered for messageID.
func (r *Registry) Group(messageID string) (Group, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[messageID]
	return g, ok
}

// Len returns the number of registered messages.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}

// Groups builds one group per message from published button rows, keeping
// the first-seen order of messages and the row order within each message.
func Groups(rows []*repo.PublishedButton) []Group {
	var (
		groups []Group
		index  = make(map[string]int)
	)
	for _, row := range rows {
		i, ok := index[row.MessageID]
		if !ok {
			i = len(groups)
			index[row.MessageID] = i
			groups = append(groups, Group{MessageID: row.MessageID, ChannelID: row.ChannelID})
		}
		b := Button{Label: row.Label, Style: row.Style, FormID: row.FormID}
		if row.Emoji != nil {
			b.Emoji = *row.Emoji
		}
		groups[i].Buttons = append(groups[i].Buttons, b)
	}
	return groups
}

// Rehydrate registers every published message stored in db. Running it again
// replaces groups rather than duplicating them.
func Rehydrate(ctx context.Context, db *repo.Client, reg *Registry) (int, error) {
	rows, err := db.ListPublishedButtons(ctx)
	if err != nil {
		return 0, fmt.Errorf("rehydrate starters: %w", err)
	}
	groups := Groups(rows)
	for _, g := range groups {
		reg.Register(g)
	}
	slog.InfoContext(ctx, "starter buttons rehydrated", "messages", len(groups), "buttons", len(rows))
	return len(groups), nil
}
