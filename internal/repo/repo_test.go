package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/formsbot/internal/repo"
	"github.com/Alijeyrad/formsbot/internal/repo/repotest"
)

func ptr[T any](v T) *T { return &v }

func TestFormCRUD(t *testing.T) {
	ctx := context.Background()
	client := repotest.New(t)

	f := &repo.Form{Name: "Staff", Message: ptr("Apply here"), Ping: true}
	require.NoError(t, client.CreateForm(ctx, f))
	require.NotZero(t, f.ID)

	got, err := client.GetFormByName(ctx, "Staff")
	require.NoError(t, err)
	require.Equal(t, f.ID, got.ID)
	require.Equal(t, "Apply here", *got.Message)
	require.Nil(t, got.Confirmation)
	require.True(t, got.Ping)

	got.Confirmation = ptr("Thanks!")
	got.Message = nil
	require.NoError(t, client.UpdateForm(ctx, got))

	got, err = client.GetForm(ctx, f.ID)
	require.NoError(t, err)
	require.Nil(t, got.Message)
	require.Equal(t, "Thanks!", *got.Confirmation)

	exists, err := client.FormNameExists(ctx, "Staff")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, client.DeleteForm(ctx, f.ID))
	_, err = client.GetForm(ctx, f.ID)
	require.True(t, repo.IsNotFound(err))
	require.True(t, repo.IsNotFound(client.DeleteForm(ctx, f.ID)))
}

func TestFormNameUnique(t *testing.T) {
	ctx := context.Background()
	client := repotest.New(t)

	require.NoError(t, client.CreateForm(ctx, &repo.Form{Name: "Dup"}))
	err := client.CreateForm(ctx, &repo.Form{Name: "Dup"})
	require.Error(t, err)
	require.True(t, repo.IsUniqueConstraintError(err))
}

func TestSearchFormNamesIgnoresCase(t *testing.T) {
	ctx := context.Background()
	client := repotest.New(t)

	for _, name := range []string{"Staff application", "staff feedback", "Ban appeal"} {
		require.NoError(t, client.CreateForm(ctx, &repo.Form{Name: name}))
	}

	names, err := client.SearchFormNames(ctx, "STA", 25)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Staff application", "staff feedback"}, names)

	names, err = client.SearchFormNames(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, names, 2)
}

func TestModalAndQuestionLabelsUniquePerParent(t *testing.T) {
	ctx := context.Background()
	client := repotest.New(t)
	fx := repotest.Seed(t, client)

	err := client.CreateModal(ctx, &repo.Modal{FormID: fx.Form.ID, Label: "About you"})
	require.True(t, repo.IsUniqueConstraintError(err))

	other := &repo.Form{Name: "Other"}
	require.NoError(t, client.CreateForm(ctx, other))
	require.NoError(t, client.CreateModal(ctx, &repo.Modal{FormID: other.ID, Label: "About you"}))

	err = client.CreateQuestion(ctx, &repo.Question{ModalID: fx.Modals[0].ID, Label: "Name"})
	require.True(t, repo.IsUniqueConstraintError(err))
}

func TestQuestionsOrderAndCount(t *testing.T) {
	ctx := context.Background()
	client := repotest.New(t)
	fx := repotest.Seed(t, client)

	qs, err := client.ListQuestions(ctx, fx.Modals[0].ID)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	require.Equal(t, "Name", qs[0].Label)
	require.True(t, qs[0].Required)
	require.False(t, qs[1].Required)

	n, err := client.CountQuestions(ctx, fx.Modals[0].ID)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	q := qs[1]
	q.MinLength = ptr(2)
	q.MaxLength = ptr(3)
	q.Placeholder = ptr("e.g. 21")
	require.NoError(t, client.UpdateQuestion(ctx, q))

	got, err := client.GetQuestionByLabel(ctx, fx.Modals[0].ID, "Age")
	require.NoError(t, err)
	require.Equal(t, 2, *got.MinLength)
	require.Equal(t, 3, *got.MaxLength)
	require.Equal(t, "e.g. 21", *got.Placeholder)
}

func TestDeleteFormKeepsResponses(t *testing.T) {
	ctx := context.Background()
	client := repotest.New(t)
	fx := repotest.Seed(t, client)

	r := &repo.Response{Username: "alice", CreatedAt: time.Now().UTC(), FormID: fx.Form.ID}
	require.NoError(t, client.CreateResponse(ctx, r))
	require.NoError(t, client.CreateAnswers(ctx, []*repo.Answer{
		{ResponseID: r.ID, QuestionID: fx.Questions[0][0].ID, Answer: ptr("Alice")},
		{ResponseID: r.ID, QuestionID: fx.Questions[0][1].ID},
	}))

	require.NoError(t, client.DeleteQuestion(ctx, fx.Questions[0][1].ID))
	answers, err := client.ListAnswers(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	require.Equal(t, fx.Questions[0][0].ID, answers[0].QuestionID)
	require.Zero(t, answers[1].QuestionID)

	require.NoError(t, client.DeleteForm(ctx, fx.Form.ID))

	_, err = client.GetModal(ctx, fx.Modals[0].ID)
	require.True(t, repo.IsNotFound(err), "modals go with their form")

	answers, err = client.ListAnswers(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	require.Zero(t, answers[0].QuestionID)
	require.Equal(t, "Alice", *answers[0].Answer)

	n, err := client.CountResponses(ctx, fx.Form.ID)
	require.NoError(t, err)
	require.Zero(t, n, "the response no longer points at the removed form")
}

func TestDeletePublishedButtons(t *testing.T) {
	ctx := context.Background()
	client := repotest.New(t)

	for _, msg := range []string{"100", "200"} {
		require.NoError(t, client.CreatePublishedButtons(ctx, []*repo.PublishedButton{
			{MessageID: msg, ChannelID: "c", Position: 0, Label: "Apply", Style: 1, FormID: 1},
		}))
	}
	require.NoError(t, client.DeletePublishedButtons(ctx, "100"))

	rows, err := client.ListPublishedButtons(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "200", rows[0].MessageID)
}

func TestWithTxRollsBackResponseWhenAnswersFail(t *testing.T) {
	ctx := context.Background()
	client := repotest.New(t)
	fx := repotest.Seed(t, client)

	err := client.WithTx(ctx, func(tx *repo.Client) error {
		r := &repo.Response{Username: "bob", CreatedAt: time.Now().UTC(), FormID: fx.Form.ID}
		if err := tx.CreateResponse(ctx, r); err != nil {
			return err
		}
		return tx.CreateAnswers(ctx, []*repo.Answer{
			{ResponseID: r.ID, QuestionID: fx.Questions[0][0].ID, Answer: ptr("Bob")},
			{ResponseID: r.ID, QuestionID: 999999, Answer: ptr("dangling")},
		})
	})
	require.Error(t, err)
	require.True(t, repo.IsForeignKeyConstraintError(err))

	n, err := client.CountResponses(ctx, fx.Form.ID)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestWithTxCommits(t *testing.T) {
	ctx := context.Background()
	client := repotest.New(t)
	fx := repotest.Seed(t, client)

	var responseID int
	err := client.WithTx(ctx, func(tx *repo.Client) error {
		r := &repo.Response{Username: "carol", CreatedAt: time.Now().UTC(), FormID: fx.Form.ID}
		if err := tx.CreateResponse(ctx, r); err != nil {
			return err
		}
		responseID = r.ID
		return tx.CreateAnswers(ctx, []*repo.Answer{
			{ResponseID: r.ID, QuestionID: fx.Questions[0][0].ID, Answer: ptr("Carol")},
			{ResponseID: r.ID, QuestionID: fx.Questions[0][1].ID},
		})
	})
	require.NoError(t, err)

	answers, err := client.ListAnswers(ctx, responseID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	require.Equal(t, "Carol", *answers[0].Answer)
	require.Nil(t, answers[1].Answer)

	responses, err := client.ListResponses(ctx, fx.Form.ID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	require.Equal(t, "carol", responses[0].Username)
}

func TestWithTxNestedReusesTransaction(t *testing.T) {
	ctx := context.Background()
	client := repotest.New(t)
	sentinel := errors.New("abort")

	err := client.WithTx(ctx, func(tx *repo.Client) error {
		return tx.WithTx(ctx, func(inner *repo.Client) error {
			if err := inner.CreateForm(ctx, &repo.Form{Name: "Nested"}); err != nil {
				return err
			}
			return sentinel
		})
	})
	require.ErrorIs(t, err, sentinel)

	exists, err := client.FormNameExists(ctx, "Nested")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestPublishedButtonsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	client := repotest.New(t)

	batch := func(msg string, labels ...string) []*repo.PublishedButton {
		var out []*repo.PublishedButton
		for i, l := range labels {
			out = append(out, &repo.PublishedButton{
				MessageID: msg, ChannelID: "c", Position: i, Label: l, Style: 1, FormID: 1,
			})
		}
		return out
	}
	require.NoError(t, client.CreatePublishedButtons(ctx, batch("m2", "a", "b")))
	require.NoError(t, client.CreatePublishedButtons(ctx, batch("m1", "c")))

	buttons, err := client.ListPublishedButtons(ctx)
	require.NoError(t, err)
	require.Len(t, buttons, 3)
	require.Equal(t, []string{"m2", "m2", "m1"}, []string{buttons[0].MessageID, buttons[1].MessageID, buttons[2].MessageID})
	require.Nil(t, buttons[0].Emoji)

	err = client.CreatePublishedButtons(ctx, batch("m1", "c"))
	require.True(t, repo.IsUniqueConstraintError(err))
}

func TestLockModal(t *testing.T) {
	ctx := context.Background()
	client := repotest.New(t)
	fx := repotest.Seed(t, client)

	err := client.WithTx(ctx, func(tx *repo.Client) error {
		return tx.LockModal(ctx, fx.Modals[0].ID)
	})
	require.NoError(t, err)

	err = client.WithTx(ctx, func(tx *repo.Client) error {
		return tx.LockModal(ctx, 424242)
	})
	require.True(t, repo.IsNotFound(err))
}

func TestPing(t *testing.T) {
	client := repotest.New(t)
	require.NoError(t, client.Ping(context.Background()))
}
