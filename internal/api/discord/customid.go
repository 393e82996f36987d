package discord

import (
	"strconv"
	"strings"
)

// Custom id prefixes of the components this bot renders, other than starter
// buttons which use "<message_id>-<position>".
const (
	prefixSession = "sub"
	prefixBuilder = "pub"
	prefixEdit    = "edit"
)

// Session actions.
const (
	actionPage  = "page"
	actionModal = "modal"
	actionSend  = "send"
)

// Builder actions.
const (
	actionEdit   = "edit"
	actionStyle  = "style"
	actionForm   = "form"
	actionDelete = "delete"
	actionBack   = "back"
	actionAdd    = "add"
	actionNext   = "next"
	actionDialog = "dialog"
)

// Edit dialog kinds.
const (
	editForm     = "form"
	editModal    = "modal"
	editQuestion = "question"
)

// componentID is a parsed custom id of the form prefix:key:action[:index].
type componentID struct {
	Prefix string
	Key    string
	Action string
	Index  int
}

func sessionComponentID(sessionID, action string, index int) string {
	return prefixSession + ":" + sessionID + ":" + action + ":" + strconv.Itoa(index)
}

func sessionSendID(sessionID string) string {
	return prefixSession + ":" + sessionID + ":" + actionSend
}

func builderComponentID(builderID, action string) string {
	return prefixBuilder + ":" + builderID + ":" + action
}

func editDialogID(kind string, id int) string {
	return prefixEdit + ":" + kind + ":" + strconv.Itoa(id)
}

func parseComponentID(s string) (componentID, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return componentID{}, false
	}
	id := componentID{Prefix: parts[0], Key: parts[1], Action: parts[2]}
	switch id.Prefix {
	case prefixSession, prefixBuilder:
	case prefixEdit:
		// edit:<kind>:<id>
		if len(parts) != 3 {
			return componentID{}, false
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return componentID{}, false
		}
		return componentID{Prefix: prefixEdit, Key: parts[1], Index: n}, true
	default:
		return componentID{}, false
	}
	if len(parts) == 4 {
		n, err := strconv.Atoi(parts[3])
		if err != nil || n < 0 {
			return componentID{}, false
		}
		id.Index = n
	}
	return id, true
}
