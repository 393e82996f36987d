package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/Alijeyrad/formsbot/internal/service/form"
)

func questionNotFound(label string) string {
	return fmt.Sprintf("Question `%s` not found in the currently selected modal.", label)
}

func (h *Handler) addQuestion(ctx context.Context, i *discordgo.Interaction, opts options) error {
	q, err := h.forms.AddQuestion(ctx, actorID(i), form.AddQuestionRequest{
		Label:       opts.str("label"),
		Placeholder: opts.optionalStr("placeholder"),
		Paragraph:   opts.flag("paragraph", false),
		Required:    opts.flag("required", true),
		MinLength:   opts.integer("min_length"),
		MaxLength:   opts.integer("max_length"),
		Identity:    opts.flag("identity", false),
	})
	if err != nil {
		return err
	}
	return h.respondSuccess(ctx, i, fmt.Sprintf("Question `%s` added.", q.Label))
}

func (h *Handler) editQuestion(ctx context.Context, i *discordgo.Interaction, opts options) error {
	label := opts.str("question")
	q, err := h.forms.GetQuestion(ctx, actorID(i), label)
	if errors.Is(err, form.ErrQuestionNotFound) {
		return h.respondError(ctx, i, questionNotFound(label))
	}
	if err != nil {
		return err
	}
	return h.respondDialog(ctx, i, questionDialog(q))
}

func (h *Handler) removeQuestion(ctx context.Context, i *discordgo.Interaction, opts options) error {
	label := opts.str("question")
	err := h.forms.RemoveQuestion(ctx, actorID(i), label)
	if errors.Is(err, form.ErrQuestionNotFound) {
		return h.respondError(ctx, i, questionNotFound(label))
	}
	if err != nil {
		return err
	}
	return h.respondSuccess(ctx, i, fmt.Sprintf("Question `%s` removed.", label))
}

// submitQuestionDialog saves the question edit dialog. Yes/No fields that
// were neither word are read by their first letter and the reply says how.
func (h *Handler) submitQuestionDialog(ctx context.Context, i *discordgo.Interaction, questionID int, values submittedValues) error {
	minLen, maxLen, err := form.ParseLengthRange(values.get("length"))
	if err != nil {
		return err
	}

	var notes []string
	yesNo := func(field, raw string) bool {
		yes, exact := form.ParseYesNo(raw)
		if !exact {
			notes = append(notes, fmt.Sprintf("%s: `%s` was interpreted as `%s`.", field, raw, form.FormatYesNo(yes)))
		}
		return yes
	}
	paragraph := yesNo("Long Answer Field", values.get("paragraph"))
	required := yesNo("Required", values.get("required"))

	q, err := h.forms.EditQuestion(ctx, questionID, form.EditQuestionRequest{
		Label:       values.get("label"),
		Placeholder: values.get("placeholder"),
		Paragraph:   paragraph,
		Required:    required,
		MinLength:   minLen,
		MaxLength:   maxLen,
	})
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("Question `%s` updated.", q.Label)
	if len(notes) > 0 {
		msg += "\n\n**Note:**\n" + strings.Join(notes, "\n")
	}
	return h.respondSuccess(ctx, i, msg)
}
