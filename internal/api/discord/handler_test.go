package discord

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/formsbot/internal/repo"
	"github.com/Alijeyrad/formsbot/internal/repo/repotest"
	"github.com/Alijeyrad/formsbot/internal/service/form"
	"github.com/Alijeyrad/formsbot/internal/service/messaging"
	"github.com/Alijeyrad/formsbot/internal/service/publish"
	"github.com/Alijeyrad/formsbot/internal/service/selection"
	"github.com/Alijeyrad/formsbot/internal/service/starter"
	"github.com/Alijeyrad/formsbot/internal/service/submission"
	"github.com/Alijeyrad/formsbot/pkg/observability"
)

const admin = "10"

// fakeClient records everything the handler sends back to Discord.
type fakeClient struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	followups []*discordgo.WebhookParams
}

func (f *fakeClient) InteractionRespond(_ *discordgo.Interaction, r *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, r)
	return nil
}

func (f *fakeClient) InteractionResponseEdit(_ *discordgo.Interaction, e *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, e)
	return &discordgo.Message{}, nil
}

func (f *fakeClient) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, p *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, p)
	return &discordgo.Message{}, nil
}

func (f *fakeClient) last(t *testing.T) *discordgo.InteractionResponse {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.responses)
	return f.responses[len(f.responses)-1]
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []*submission.Notification
	err  error
}

func (d *fakeDispatcher) Dispatch(_ context.Context, n *submission.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, n)
	return nil
}

type fakeSender struct {
	mu       sync.Mutex
	attached map[string][]starter.Button
	err      error
}

func (s *fakeSender) Send(context.Context, string, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "8001", nil
}

func (s *fakeSender) AttachStarters(_ context.Context, _, messageID string, buttons []starter.Button) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached[messageID] = buttons
	return nil
}

func (s *fakeSender) DeleteMessage(context.Context, string, string) error { return nil }

type testEnv struct {
	db         *repo.Client
	client     *fakeClient
	dispatcher *fakeDispatcher
	sender     *fakeSender
	starters   *starter.Registry
	handler    *Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		db:         repotest.New(t),
		client:     &fakeClient{},
		dispatcher: &fakeDispatcher{},
		sender:     &fakeSender{attached: map[string][]starter.Button{}},
		starters:   starter.NewRegistry(),
	}
	env.handler = newHandler(
		env.client,
		form.New(env.db, selection.NewMemoryStore()),
		submission.New(env.db, env.dispatcher),
		publish.New(env.db, env.sender, env.starters),
		env.starters,
		observability.NewInteractions(),
	)
	return env
}

func (e *testEnv) handle(i *discordgo.Interaction) {
	e.handler.Handle(context.Background(), i)
}

func member(userID string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: userID, Username: "user" + userID}}
}

func strOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func boolOpt(name string, value bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionBoolean, Value: value}
}

func channelOpt(name, id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionChannel, Value: id}
}

func command(user, name, sub string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:   discordgo.InteractionApplicationCommand,
		Member: member(user),
		Data: discordgo.ApplicationCommandInteractionData{
			Name: name,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Name:    sub,
				Type:    discordgo.ApplicationCommandOptionSubCommand,
				Options: opts,
			}},
		},
	}
}

func autocomplete(user, name, sub, option, typed string) *discordgo.Interaction {
	i := command(user, name, sub, &discordgo.ApplicationCommandInteractionDataOption{
		Name: option, Type: discordgo.ApplicationCommandOptionString, Value: typed, Focused: true,
	})
	i.Type = discordgo.InteractionApplicationCommandAutocomplete
	return i
}

func click(user, customID string, values ...string) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:   discordgo.InteractionMessageComponent,
		Member: member(user),
		Data:   discordgo.MessageComponentInteractionData{CustomID: customID, Values: values},
	}
}

// submit builds a dialog submission with one text input per id/value pair.
func submit(user, customID string, pairs ...string) *discordgo.Interaction {
	var components []discordgo.MessageComponent
	for i := 0; i+1 < len(pairs); i += 2 {
		components = append(components, &discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: pairs[i], Value: pairs[i+1]},
		}})
	}
	return &discordgo.Interaction{
		Type:   discordgo.InteractionModalSubmit,
		Member: member(user),
		Data:   discordgo.ModalSubmitInteractionData{CustomID: customID, Components: components},
	}
}

func embedOf(t *testing.T, r *discordgo.InteractionResponse) *discordgo.MessageEmbed {
	t.Helper()
	require.NotNil(t, r.Data)
	require.Len(t, r.Data.Embeds, 1)
	return r.Data.Embeds[0]
}

func requireSuccess(t *testing.T, r *discordgo.InteractionResponse, contains string) {
	t.Helper()
	e := embedOf(t, r)
	require.Equal(t, "Success", e.Title, e.Description)
	require.Contains(t, e.Description, contains)
	require.Equal(t, discordgo.MessageFlagsEphemeral, r.Data.Flags)
}

func requireError(t *testing.T, r *discordgo.InteractionResponse, want string) {
	t.Helper()
	e := embedOf(t, r)
	require.Equal(t, "Error", e.Title)
	require.Equal(t, want, e.Description)
}

func TestAuthoringCommands(t *testing.T) {
	env := newTestEnv(t)

	env.handle(command(admin, cmdModals, "add", strOpt("label", "About you")))
	requireError(t, env.client.last(t), msgNoFormSelected)

	env.handle(command(admin, cmdForms, "create", strOpt("name", "Application"), channelOpt("channel", "900"), boolOpt("ping", true)))
	requireSuccess(t, env.client.last(t), "Form `Application` created.")

	env.handle(command(admin, cmdForms, "select", strOpt("form", "Nope")))
	requireError(t, env.client.last(t), "Form `Nope` not found.")

	env.handle(command(admin, cmdForms, "select", strOpt("form", "Application")))
	requireSuccess(t, env.client.last(t), "Form `Application` selected.")

	env.handle(command(admin, cmdModals, "add", strOpt("label", "About you")))
	requireSuccess(t, env.client.last(t), "Modal `About you` added.")

	env.handle(command(admin, cmdModals, "select", strOpt("modal", "About you")))
	requireSuccess(t, env.client.last(t), "Modal `About you` selected.")

	env.handle(command(admin, cmdQuestions, "add", strOpt("label", "Name"), boolOpt("identity", true)))
	requireSuccess(t, env.client.last(t), "Question `Name` added.")

	env.handle(autocomplete(admin, cmdQuestions, "edit", "question", "Na"))
	r := env.client.last(t)
	require.Equal(t, discordgo.InteractionApplicationCommandAutocompleteResult, r.Type)
	require.Len(t, r.Data.Choices, 1)
	require.Equal(t, "Name", r.Data.Choices[0].Value)

	env.handle(command(admin, cmdQuestions, "edit", strOpt("question", "Name")))
	r = env.client.last(t)
	require.Equal(t, discordgo.InteractionResponseModal, r.Type)
	id, ok := parseComponentID(r.Data.CustomID)
	require.True(t, ok)
	require.Equal(t, editQuestion, id.Key)

	env.handle(submit(admin, r.Data.CustomID,
		"label", "In-game name",
		"placeholder", "",
		"paragraph", "nah",
		"required", "Yes",
		"length", "3-16",
	))
	r = env.client.last(t)
	requireSuccess(t, r, "Question `In-game name` updated.")
	require.Contains(t, embedOf(t, r).Description, "`nah` was interpreted as `No`")

	q, err := env.db.GetQuestion(context.Background(), id.Index)
	require.NoError(t, err)
	require.True(t, q.Identity)
	require.Equal(t, 16, *q.MaxLength)
}

func TestQuestionDialogRejectsBadLength(t *testing.T) {
	env := newTestEnv(t)
	fx := repotest.Seed(t, env.db)
	q := fx.Questions[0][0]

	env.handle(submit(admin, editDialogID(editQuestion, q.ID),
		"label", "Name", "paragraph", "No", "required", "Yes", "length", "20-10"))
	requireError(t, env.client.last(t), msgInvalidLength)
}

func TestAutocompleteWithoutSelectionReturnsNoChoices(t *testing.T) {
	env := newTestEnv(t)
	env.handle(autocomplete(admin, cmdModals, "edit", "modal", ""))
	r := env.client.last(t)
	require.Equal(t, discordgo.InteractionApplicationCommandAutocompleteResult, r.Type)
	require.Empty(t, r.Data.Choices)
}

func sessionIDOf(t *testing.T, data *discordgo.InteractionResponseData) string {
	t.Helper()
	buttons := buttonsOf(t, data.Components)
	require.NotEmpty(t, buttons)
	id, ok := parseComponentID(buttons[0].CustomID)
	require.True(t, ok)
	return id.Key
}

func TestSubmissionFlow(t *testing.T) {
	env := newTestEnv(t)
	fx := repotest.Seed(t, env.db)
	env.starters.Register(starter.Group{MessageID: "1001", ChannelID: "555", Buttons: []starter.Button{
		{Label: "Apply", Style: 1, FormID: fx.Form.ID},
	}})

	env.handle(click("42", starter.CustomID("1001", 0)))
	r := env.client.last(t)
	require.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, r.Type)
	require.Equal(t, discordgo.MessageFlagsEphemeral, r.Data.Flags)
	sid := sessionIDOf(t, r.Data)

	// Finalizing defers the reply, so a refusal arrives as a follow-up.
	env.handle(click("42", sessionSendID(sid)))
	require.Len(t, env.client.followups, 1)
	require.Equal(t, "Not all required questions answered.", env.client.followups[0].Embeds[0].Description)

	env.handle(click("42", sessionComponentID(sid, actionPage, 0)))
	r = env.client.last(t)
	require.Equal(t, discordgo.InteractionResponseModal, r.Type)
	require.Len(t, r.Data.Components, 2)

	ids := make([]string, len(fx.Questions[0]))
	for i, q := range fx.Questions[0] {
		ids[i] = strconv.Itoa(q.ID)
	}
	env.handle(submit("42", sessionComponentID(sid, actionModal, 0), ids[0], "Alice", ids[1], ""))
	r = env.client.last(t)
	require.Equal(t, discordgo.InteractionResponseUpdateMessage, r.Type)
	buttons := buttonsOf(t, r.Data.Components)
	require.Equal(t, discordgo.SecondaryButton, buttons[0].Style)
	require.True(t, buttons[len(buttons)-1].Disabled)

	env.handle(submit("42", sessionComponentID(sid, actionModal, 1), strconv.Itoa(fx.Questions[1][0].ID), "Because"))
	buttons = buttonsOf(t, env.client.last(t).Data.Components)
	require.False(t, buttons[len(buttons)-1].Disabled)

	env.handle(click("42", sessionSendID(sid)))
	require.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, env.client.last(t).Type)
	require.Len(t, env.client.edits, 1)
	edit := env.client.edits[0]
	require.Equal(t, "Success", (*edit.Embeds)[0].Title)
	require.Equal(t, "Response recorded!", (*edit.Embeds)[0].Description)
	require.Empty(t, *edit.Components)

	require.Len(t, env.dispatcher.sent, 1)
	require.Equal(t, "900", env.dispatcher.sent[0].ChannelID)

	// A second click on the stale message finds no session.
	env.handle(click("42", sessionSendID(sid)))
	require.Len(t, env.client.followups, 2)
	require.Equal(t, msgSessionExpired, env.client.followups[1].Embeds[0].Description)
}

func TestSubmissionDeliveryFailure(t *testing.T) {
	env := newTestEnv(t)
	fx := repotest.Seed(t, env.db)
	env.dispatcher.err = messaging.ErrForbidden

	env.starters.Register(starter.Group{MessageID: "1001", ChannelID: "555", Buttons: []starter.Button{{Label: "Apply", Style: 1, FormID: fx.Form.ID}}})
	env.handle(click("42", "1001-0"))
	sid := sessionIDOf(t, env.client.last(t).Data)

	env.handle(submit("42", sessionComponentID(sid, actionModal, 0),
		strconv.Itoa(fx.Questions[0][0].ID), "Alice", strconv.Itoa(fx.Questions[0][1].ID), "30"))
	env.handle(submit("42", sessionComponentID(sid, actionModal, 1), strconv.Itoa(fx.Questions[1][0].ID), "Because"))
	env.handle(click("42", sessionSendID(sid)))

	require.Len(t, env.client.edits, 1)
	require.Equal(t, msgDeliveryFailed, (*env.client.edits[0].Embeds)[0].Description)

	n, err := env.db.CountResponses(context.Background(), fx.Form.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestUnknownStarterButton(t *testing.T) {
	env := newTestEnv(t)
	env.handle(click("42", "999-0"))
	requireError(t, env.client.last(t), "This form does not exist anymore.")
}

func TestUnknownComponentIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.handle(click("42", "placeholder"))
	requireError(t, env.client.last(t), msgUnexpected)
}

func builderIDOf(t *testing.T, data *discordgo.InteractionResponseData) string {
	t.Helper()
	buttons := buttonsOf(t, data.Components)
	require.NotEmpty(t, buttons)
	id, ok := parseComponentID(buttons[0].CustomID)
	require.True(t, ok)
	require.Equal(t, prefixBuilder, id.Prefix)
	return id.Key
}

func TestPublishFlow(t *testing.T) {
	env := newTestEnv(t)
	fx := repotest.Seed(t, env.db)

	env.handle(command(admin, cmdForms, "send", channelOpt("channel", "555"), strOpt("content", "Apply below")))
	r := env.client.last(t)
	require.Equal(t, "New form message", embedOf(t, r).Title)
	bid := builderIDOf(t, r.Data)

	env.handle(click(admin, builderComponentID(bid, actionSend)))
	require.Len(t, env.client.followups, 1)
	require.Equal(t, "You must set the label and form for each button.", env.client.followups[0].Embeds[0].Description)

	env.handle(click(admin, builderComponentID(bid, actionEdit)))
	r = env.client.last(t)
	require.Equal(t, discordgo.InteractionResponseModal, r.Type)
	require.Equal(t, "Editing Button 1", r.Data.Title)

	env.handle(submit(admin, r.Data.CustomID, "label", "Apply", "emoji", "📝"))
	r = env.client.last(t)
	require.Equal(t, discordgo.InteractionResponseUpdateMessage, r.Type)
	require.Equal(t, "Current Label: Apply\nCurrent Emoji: 📝", embedOf(t, r).Fields[0].Value)

	env.handle(click(admin, builderComponentID(bid, actionForm), strconv.Itoa(fx.Form.ID)))
	r = env.client.last(t)
	menu := r.Data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	require.Equal(t, "Application", menu.Placeholder)

	env.handle(click(admin, builderComponentID(bid, actionStyle)))
	buttons := buttonsOf(t, env.client.last(t).Data.Components)
	require.Equal(t, discordgo.SecondaryButton, buttons[1].Style)

	env.handle(click(admin, builderComponentID(bid, actionSend)))
	last := env.client.edits[len(env.client.edits)-1]
	require.Equal(t, "Message sent to <#555>.", (*last.Embeds)[0].Description)

	require.Len(t, env.sender.attached["8001"], 1)
	b, ok := env.starters.Resolve("8001-0")
	require.True(t, ok)
	require.Equal(t, fx.Form.ID, b.FormID)
	require.Equal(t, 2, b.Style)

	env.handle(click(admin, builderComponentID(bid, actionNext)))
	requireError(t, env.client.last(t), msgBuilderExpired)
}

func TestPublishWithoutAccess(t *testing.T) {
	env := newTestEnv(t)
	fx := repotest.Seed(t, env.db)
	env.sender.err = messaging.ErrForbidden

	env.handle(command(admin, cmdForms, "send", channelOpt("channel", "555"), strOpt("content", "Apply below")))
	bid := builderIDOf(t, env.client.last(t).Data)
	env.handle(submit(admin, builderComponentID(bid, actionDialog), "label", "Apply", "emoji", ""))
	env.handle(click(admin, builderComponentID(bid, actionForm), strconv.Itoa(fx.Form.ID)))
	env.handle(click(admin, builderComponentID(bid, actionSend)))

	require.Len(t, env.client.followups, 1)
	require.Equal(t, "No access to <#555>, message could not be sent.", env.client.followups[0].Embeds[0].Description)
	require.Zero(t, env.starters.Len())

	// The builder stays usable after a failed send.
	env.handle(click(admin, builderComponentID(bid, actionAdd)))
	require.True(t, strings.HasPrefix(embedOf(t, env.client.last(t)).Fields[0].Name, "Button 2/2"))
}

func TestSubmitterDisplayName(t *testing.T) {
	i := &discordgo.Interaction{Member: &discordgo.Member{
		Nick: "Ali",
		User: &discordgo.User{ID: "1", Username: "ali_j", GlobalName: "Alijey"},
	}}
	require.Equal(t, submission.Submitter{UserID: "1", Username: "ali_j", DisplayName: "Ali"}, submitterOf(i))

	i.Member.Nick = ""
	require.Equal(t, "Alijey", submitterOf(i).DisplayName)

	dm := &discordgo.Interaction{User: &discordgo.User{ID: "2", Username: "bob"}}
	require.Equal(t, "bob", submitterOf(dm).DisplayName)
}
