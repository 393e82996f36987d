package submission

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/formsbot/internal/repo"
	"github.com/Alijeyrad/formsbot/internal/repo/repotest"
	"github.com/Alijeyrad/formsbot/pkg/wynncraft"
)

var alice = Submitter{UserID: "42", Username: "alice", DisplayName: "Alice A."}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []*Notification
	err  error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, n *Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, n)
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) now() time.Time { return c.t }

func setup(t *testing.T, opts ...Option) (*repo.Client, *repotest.Fixture, *recordingDispatcher, Service) {
	t.Helper()
	db := repotest.New(t)
	fx := repotest.Seed(t, db)
	d := &recordingDispatcher{}
	return db, fx, d, New(db, d, opts...)
}

func TestReadinessIsIndependentOfPageOrder(t *testing.T) {
	ctx := context.Background()
	_, fx, _, svc := setup(t)

	forward, err := svc.Start(ctx, fx.Form.ID, alice)
	require.NoError(t, err)
	reverse, err := svc.Start(ctx, fx.Form.ID, alice)
	require.NoError(t, err)
	require.False(t, forward.Ready)
	require.NotEqual(t, forward.SessionID, reverse.SessionID)

	v, err := svc.SubmitModalPage(ctx, forward.SessionID, 0, []string{"Alice", ""})
	require.NoError(t, err)
	require.False(t, v.Ready)
	v, err = svc.SubmitModalPage(ctx, forward.SessionID, 1, []string{"Because"})
	require.NoError(t, err)
	require.True(t, v.Ready)

	v, err = svc.SubmitModalPage(ctx, reverse.SessionID, 1, []string{"Because"})
	require.NoError(t, err)
	require.False(t, v.Ready)
	v, err = svc.SubmitModalPage(ctx, reverse.SessionID, 0, []string{"Alice", ""})
	require.NoError(t, err)
	require.True(t, v.Ready)
}

func TestClearingRequiredAnswerDisablesSend(t *testing.T) {
	ctx := context.Background()
	_, fx, _, svc := setup(t)

	v, err := svc.Start(ctx, fx.Form.ID, alice)
	require.NoError(t, err)
	_, err = svc.SubmitModalPage(ctx, v.SessionID, 0, []string{"Alice", "30"})
	require.NoError(t, err)
	v, err = svc.SubmitModalPage(ctx, v.SessionID, 1, []string{"Because"})
	require.NoError(t, err)
	require.True(t, v.Ready)

	v, err = svc.SubmitModalPage(ctx, v.SessionID, 1, []string{""})
	require.NoError(t, err)
	require.False(t, v.Ready)
	require.True(t, v.Pages[1].Submitted)

	_, err = svc.Finalize(ctx, v.SessionID)
	require.ErrorIs(t, err, ErrNotReady)
}

func TestOpenModalPrefillsAnswers(t *testing.T) {
	ctx := context.Background()
	db, fx, _, svc := setup(t)

	title := "Tell us about you"
	fx.Modals[0].Title = &title
	require.NoError(t, db.UpdateModal(ctx, fx.Modals[0]))

	v, err := svc.Start(ctx, fx.Form.ID, alice)
	require.NoError(t, err)
	require.Equal(t, []PageView{{Label: "About you"}, {Label: "Experience"}}, v.Pages)

	page, err := svc.OpenModal(ctx, v.SessionID, 0)
	require.NoError(t, err)
	require.Equal(t, "Tell us about you", page.Title)
	require.Equal(t, "", page.Fields[0].Value)
	require.Equal(t, 1000, page.Fields[0].MaxLength)

	_, err = svc.SubmitModalPage(ctx, v.SessionID, 0, []string{"Alice", "30"})
	require.NoError(t, err)

	page, err = svc.OpenModal(ctx, v.SessionID, 0)
	require.NoError(t, err)
	require.Equal(t, "Alice", page.Fields[0].Value)
	require.Equal(t, "30", page.Fields[1].Value)

	page, err = svc.OpenModal(ctx, v.SessionID, 1)
	require.NoError(t, err)
	require.Equal(t, "Application", page.Title)
	require.True(t, page.Fields[0].Paragraph)

	_, err = svc.OpenModal(ctx, v.SessionID, 2)
	require.ErrorIs(t, err, ErrModalNotFound)
	_, err = svc.OpenModal(ctx, "nope", 0)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmitModalPageValidation(t *testing.T) {
	ctx := context.Background()
	db, fx, _, svc := setup(t)

	q := fx.Questions[0][1]
	q.MaxLength = ptr(3)
	require.NoError(t, db.UpdateQuestion(ctx, q))

	v, err := svc.Start(ctx, fx.Form.ID, alice)
	require.NoError(t, err)

	_, err = svc.SubmitModalPage(ctx, v.SessionID, 0, []string{"Alice"})
	require.ErrorIs(t, err, ErrValueCount)

	_, err = svc.SubmitModalPage(ctx, v.SessionID, 0, []string{"Alice", "1234"})
	require.ErrorIs(t, err, ErrAnswerTooLong)

	page, err := svc.OpenModal(ctx, v.SessionID, 0)
	require.NoError(t, err)
	require.Equal(t, "", page.Fields[0].Value, "rejected page must not change answers")
}

func TestFinalizeCommitsAndNotifies(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	db, fx, d, svc := setup(t, WithClock(fixedClock{at}.now))

	v, err := svc.Start(ctx, fx.Form.ID, alice)
	require.NoError(t, err)
	_, err = svc.SubmitModalPage(ctx, v.SessionID, 0, []string{"Alice", ""})
	require.NoError(t, err)
	_, err = svc.SubmitModalPage(ctx, v.SessionID, 1, []string{"Because"})
	require.NoError(t, err)

	res, err := svc.Finalize(ctx, v.SessionID)
	require.NoError(t, err)
	require.Equal(t, "Response recorded!", res.Confirmation)

	responses, err := db.ListResponses(ctx, fx.Form.ID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	require.Equal(t, "alice", responses[0].Username)
	require.True(t, at.Equal(responses[0].CreatedAt))

	answers, err := db.ListAnswers(ctx, res.ResponseID)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	require.Equal(t, "Alice", *answers[0].Answer)
	require.Nil(t, answers[1].Answer)
	require.Equal(t, "Because", *answers[2].Answer)

	require.Len(t, d.sent, 1)
	n := d.sent[0]
	require.Equal(t, "900", n.ChannelID)
	require.Equal(t, "Application", n.Title)
	require.Equal(t, NotificationColor, n.Color)
	require.False(t, n.Mention)
	require.Equal(t, []NotificationField{
		{Name: "Username:", Value: "Alice A.", Inline: true},
		{Name: "Name:", Value: "Alice"},
		{Name: "Age:", Value: "---"},
		{Name: "Why do you want to join?", Value: "Because"},
	}, n.Fields)

	_, err = svc.Finalize(ctx, v.SessionID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFinalizeTwiceOnSameSession(t *testing.T) {
	db := repotest.New(t)
	fx := repotest.Seed(t, db)
	modals, questions := fx.Modals, fx.Questions

	sess := newSession("s", fx.Form, modals, questions, alice)
	require.NoError(t, sess.SubmitModalPage(0, []string{"A", ""}))
	require.NoError(t, sess.SubmitModalPage(1, []string{"B"}))

	_, err := sess.claim()
	require.NoError(t, err)
	_, err = sess.claim()
	require.ErrorIs(t, err, ErrAlreadySubmitted)
	require.ErrorIs(t, sess.SubmitModalPage(0, []string{"A", ""}), ErrAlreadySubmitted)

	sess.release()
	_, err = sess.claim()
	require.NoError(t, err)
}

func TestFinalizeRollsBackWhenAnswersFail(t *testing.T) {
	ctx := context.Background()
	db, fx, d, svc := setup(t)

	v, err := svc.Start(ctx, fx.Form.ID, alice)
	require.NoError(t, err)
	_, err = svc.SubmitModalPage(ctx, v.SessionID, 0, []string{"Alice", ""})
	require.NoError(t, err)
	_, err = svc.SubmitModalPage(ctx, v.SessionID, 1, []string{"Because"})
	require.NoError(t, err)

	// The session still references the deleted question, so inserting its
	// answer violates the foreign key after the response row was written.
	require.NoError(t, db.DeleteQuestion(ctx, fx.Questions[1][0].ID))

	_, err = svc.Finalize(ctx, v.SessionID)
	require.ErrorIs(t, err, ErrFormChanged)

	n, err := db.CountResponses(ctx, fx.Form.ID)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, d.sent)

	_, err = svc.Finalize(ctx, v.SessionID)
	require.ErrorIs(t, err, ErrSessionNotFound, "a session that cannot be sent is discarded")
}

func TestFinalizeAfterFormRemoved(t *testing.T) {
	ctx := context.Background()
	db, fx, _, svc := setup(t)

	v, err := svc.Start(ctx, fx.Form.ID, alice)
	require.NoError(t, err)
	_, err = svc.SubmitModalPage(ctx, v.SessionID, 0, []string{"Alice", ""})
	require.NoError(t, err)
	_, err = svc.SubmitModalPage(ctx, v.SessionID, 1, []string{"Because"})
	require.NoError(t, err)

	require.NoError(t, db.DeleteForm(ctx, fx.Form.ID))

	_, err = svc.Finalize(ctx, v.SessionID)
	require.ErrorIs(t, err, ErrFormNotFound)
	_, err = svc.OpenModal(ctx, v.SessionID, 0)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRecordedResponsesOutliveAuthoringChanges(t *testing.T) {
	ctx := context.Background()
	db, fx, _, svc := setup(t)

	v, err := svc.Start(ctx, fx.Form.ID, alice)
	require.NoError(t, err)
	_, err = svc.SubmitModalPage(ctx, v.SessionID, 0, []string{"Alice", ""})
	require.NoError(t, err)
	_, err = svc.SubmitModalPage(ctx, v.SessionID, 1, []string{"Because"})
	require.NoError(t, err)
	res, err := svc.Finalize(ctx, v.SessionID)
	require.NoError(t, err)

	removed := fx.Questions[1][0].ID
	require.NoError(t, db.DeleteQuestion(ctx, removed))

	answers, err := db.ListAnswers(ctx, res.ResponseID)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	require.Zero(t, answers[2].QuestionID)
	require.Equal(t, "Because", *answers[2].Answer)

	require.NoError(t, db.DeleteForm(ctx, fx.Form.ID))

	answers, err = db.ListAnswers(ctx, res.ResponseID)
	require.NoError(t, err)
	require.Len(t, answers, 3, "removing the form keeps its responses")
	for _, a := range answers {
		require.Zero(t, a.QuestionID)
	}
	require.Equal(t, "Alice", *answers[0].Answer)
	require.Nil(t, answers[1].Answer)
}

func TestFinalizeDeliveryFailureKeepsResponse(t *testing.T) {
	ctx := context.Background()
	db, fx, d, svc := setup(t)
	d.err = errors.New("missing permissions")

	v, err := svc.Start(ctx, fx.Form.ID, alice)
	require.NoError(t, err)
	_, err = svc.SubmitModalPage(ctx, v.SessionID, 0, []string{"Alice", ""})
	require.NoError(t, err)
	_, err = svc.SubmitModalPage(ctx, v.SessionID, 1, []string{"Because"})
	require.NoError(t, err)

	res, err := svc.Finalize(ctx, v.SessionID)
	require.ErrorIs(t, err, ErrDeliveryFailed)
	require.NotNil(t, res)

	n, err := db.CountResponses(ctx, fx.Form.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestFinalizeWithoutChannelFailsDelivery(t *testing.T) {
	ctx := context.Background()
	db := repotest.New(t)
	f := &repo.Form{Name: "Bare", Confirmation: ptr("Thanks!")}
	require.NoError(t, db.CreateForm(ctx, f))
	d := &recordingDispatcher{}
	svc := New(db, d)

	v, err := svc.Start(ctx, f.ID, alice)
	require.NoError(t, err)
	require.True(t, v.Ready, "a form without questions can be sent right away")

	res, err := svc.Finalize(ctx, v.SessionID)
	require.ErrorIs(t, err, ErrDeliveryFailed)
	require.Equal(t, "Thanks!", res.Confirmation)
	require.Empty(t, d.sent)
}

func TestStartUnknownForm(t *testing.T) {
	_, _, _, svc := setup(t)
	_, err := svc.Start(context.Background(), 424242, alice)
	require.ErrorIs(t, err, ErrFormNotFound)
}

type stubProfiles struct {
	profile *wynncraft.Profile
	err     error
}

func (s stubProfiles) Profile(context.Context, string) (*wynncraft.Profile, error) {
	return s.profile, s.err
}

func identityForm(t *testing.T, db *repo.Client) *repo.Form {
	t.Helper()
	ctx := context.Background()

	channel := "77"
	f := &repo.Form{Name: "Guild application", ChannelID: &channel, Ping: true}
	require.NoError(t, db.CreateForm(ctx, f))
	m := &repo.Modal{FormID: f.ID, Label: "Apply"}
	require.NoError(t, db.CreateModal(ctx, m))
	require.NoError(t, db.CreateQuestion(ctx, &repo.Question{ModalID: m.ID, Label: "Minecraft username", Required: true, Identity: true}))
	require.NoError(t, db.CreateQuestion(ctx, &repo.Question{ModalID: m.ID, Label: "Timezone", Required: false}))
	return f
}

func TestFinalizeIdentityField(t *testing.T) {
	ctx := context.Background()
	db := repotest.New(t)
	f := identityForm(t, db)

	rank := "vipplus"
	profiles := stubProfiles{profile: &wynncraft.Profile{
		Player: wynncraft.Player{
			Username:    "Salted",
			SupportRank: &rank,
			FirstJoin:   "2015-03-01T10:00:00.000Z",
			LastJoin:    "2026-10-01T18:30:00.000Z",
			Playtime:    99.6,
			GlobalData:  wynncraft.GlobalData{Wars: 3, TotalLevel: 500},
		},
		Highest: wynncraft.Character{Type: "MAGE", Level: 106},
	}}
	d := &recordingDispatcher{}
	svc := New(db, d, WithEnricher(NewWynncraftEnricher(profiles)))

	v, err := svc.Start(ctx, f.ID, alice)
	require.NoError(t, err)
	_, err = svc.SubmitModalPage(ctx, v.SessionID, 0, []string{"Salted", ""})
	require.NoError(t, err)
	res, err := svc.Finalize(ctx, v.SessionID)
	require.NoError(t, err)

	answers, err := db.ListAnswers(ctx, res.ResponseID)
	require.NoError(t, err)
	require.Len(t, answers, 2, "the identity answer is stored like any other")

	n := d.sent[0]
	require.True(t, n.Mention)
	require.Equal(t, "Guild application - Salted", n.Title)
	require.Equal(t, NotificationField{Name: "Minecraft username:", Value: "Salted"}, n.Fields[0])
	require.Equal(t, NotificationField{Name: "Discord username:", Value: "alice", Inline: true}, n.Fields[1])
	require.Equal(t, NotificationField{Name: "Timezone:", Value: "---"}, n.Fields[2])

	enriched := n.Fields[3:]
	require.Len(t, enriched, 7)
	require.Contains(t, enriched[0].Value, "Player Stats of \u001b[1;31;48mSalted")
	require.Contains(t, enriched[0].Value, "Current Guild:  \u001b[0;32;48mNone")
	require.Contains(t, enriched[0].Value, "Mage Lv. 106")
	require.Equal(t, "```hs\n500\n```", enriched[1].Value)
	require.Equal(t, "```hs\nVipplus\n```", enriched[3].Value)
	require.Equal(t, "```hs\n2015-03-01\n```", enriched[4].Value)
	require.Equal(t, "```hs\n100 Hours\n```", enriched[6].Value)
}

func TestFinalizeIdentityEnrichmentFailureIsSkipped(t *testing.T) {
	ctx := context.Background()
	db := repotest.New(t)
	f := identityForm(t, db)

	d := &recordingDispatcher{}
	svc := New(db, d, WithEnricher(NewWynncraftEnricher(stubProfiles{err: wynncraft.ErrNotFound})))

	v, err := svc.Start(ctx, f.ID, alice)
	require.NoError(t, err)
	_, err = svc.SubmitModalPage(ctx, v.SessionID, 0, []string{"Ghost", "UTC"})
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, v.SessionID)
	require.NoError(t, err)

	n := d.sent[0]
	require.Len(t, n.Fields, 3)
	for _, field := range n.Fields {
		require.False(t, strings.HasPrefix(field.Value, "```"))
	}
}

func ptr[T any](v T) *T { return &v }
