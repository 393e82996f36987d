package publish

import (
	"strings"
	"sync"

	"github.com/Alijeyrad/formsbot/pkg/constants"
)

// Style is the visual style of a starter button.
type Style int

const (
	StylePrimary Style = iota + 1
	StyleSecondary
	StyleSuccess
	StyleDanger
)

// Next returns the following style, wrapping from danger back to primary.
func (s Style) Next() Style {
	return s%StyleDanger + 1
}

// MaxButtons is how many starter buttons fit on one message.
const MaxButtons = 25

// ButtonSpec is one button being composed. FormID is zero until a form is
// picked.
type ButtonSpec struct {
	Label  string
	Icon   string
	Style  Style
	FormID int
}

// FormOption is an entry of the form catalog a builder offers.
type FormOption struct {
	ID   int
	Name string
}

// View is the state of the builder message.
type View struct {
	BuilderID string
	ChannelID string
	Content   string
	Index     int
	Count     int
	Current   ButtonSpec
	// FormName is the name of the current button's form, or "".
	FormName string
	Catalog  []FormOption
}

// Builder composes the starter buttons of a message before it is sent.
type Builder struct {
	mu        sync.Mutex
	id        string
	channelID string
	content   string
	catalog   []FormOption
	specs     []ButtonSpec
	cursor    int
	closed    bool
}

func newBuilder(id, channelID, content string, catalog []FormOption) *Builder {
	return &Builder{
		id:        id,
		channelID: channelID,
		content:   content,
		catalog:   catalog,
		specs:     []ButtonSpec{{Style: StylePrimary}},
	}
}

// EditCurrent sets the label and icon of the current button. An empty icon
// removes it.
func (b *Builder) EditCurrent(label, icon string) error {
	label = strings.TrimSpace(label)
	icon = strings.TrimSpace(icon)
	switch {
	case label == "":
		return ErrLabelRequired
	case len([]rune(label)) > constants.MaxButtonLabelLength:
		return ErrLabelTooLong
	case len([]rune(icon)) > constants.MaxButtonIconLength:
		return ErrIconTooLong
	}

	return b.update(func() error {
		b.specs[b.cursor].Label = label
		b.specs[b.cursor].Icon = icon
		return nil
	})
}

// CycleStyle advances the current button to the next style.
func (b *Builder) CycleStyle() error {
	return b.update(func() error {
		b.specs[b.cursor].Style = b.specs[b.cursor].Style.Next()
		return nil
	})
}

// SelectForm binds the current button to a form of the catalog.
func (b *Builder) SelectForm(formID int) error {
	return b.update(func() error {
		if b.formName(formID) == "" {
			return ErrUnknownForm
		}
		b.specs[b.cursor].FormID = formID
		return nil
	})
}

// DeleteCurrent removes the current button and moves to the previous one.
func (b *Builder) DeleteCurrent() error {
	return b.update(func() error {
		if len(b.specs) == 1 {
			return ErrLastButton
		}
		b.specs = append(b.specs[:b.cursor], b.specs[b.cursor+1:]...)
		b.cursor = mod(b.cursor-1, len(b.specs))
		return nil
	})
}

// AddNew appends an empty button and moves to it.
func (b *Builder) AddNew() error {
	return b.update(func() error {
		if len(b.specs) >= MaxButtons {
			return ErrButtonLimit
		}
		b.specs = append(b.specs, ButtonSpec{Style: StylePrimary})
		b.cursor = len(b.specs) - 1
		return nil
	})
}

// Prev moves to the previous button, wrapping around.
func (b *Builder) Prev() error {
	return b.update(func() error {
		b.cursor = mod(b.cursor-1, len(b.specs))
		return nil
	})
}

// Next moves to the next button, wrapping around.
func (b *Builder) Next() error {
	return b.update(func() error {
		b.cursor = mod(b.cursor+1, len(b.specs))
		return nil
	})
}

// View returns the current state of the builder.
func (b *Builder) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view()
}

func (b *Builder) view() View {
	cur := b.specs[b.cursor]
	return View{
		BuilderID: b.id,
		ChannelID: b.channelID,
		Content:   b.content,
		Index:     b.cursor,
		Count:     len(b.specs),
		Current:   cur,
		FormName:  b.formName(cur.FormID),
		Catalog:   b.catalog,
	}
}

// claim checks the publish preconditions, closes the builder to further
// edits and returns a copy of the specs. reopen undoes the claim.
func (b *Builder) claim() ([]ButtonSpec, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBuilderNotFound
	}
	seen := make(map[string]struct{}, len(b.specs))
	for _, s := range b.specs {
		if s.Label == "" || s.FormID == 0 {
			return nil, ErrIncomplete
		}
		if _, dup := seen[s.Label]; dup {
			return nil, ErrDuplicateLabels
		}
		seen[s.Label] = struct{}{}
	}
	b.closed = true
	return append([]ButtonSpec(nil), b.specs...), nil
}

func (b *Builder) reopen() {
	b.mu.Lock()
	b.closed = false
	b.mu.Unlock()
}

func (b *Builder) update(fn func() error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBuilderNotFound
	}
	return fn()
}

func (b *Builder) formName(id int) string {
	for _, f := range b.catalog {
		if f.ID == id {
			return f.Name
		}
	}
	return ""
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
