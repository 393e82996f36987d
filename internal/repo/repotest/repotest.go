// Package repotest opens throwaway SQLite-backed repositories for tests.
package repotest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Alijeyrad/formsbot/internal/repo"
	"github.com/Alijeyrad/formsbot/pkg/database"
)

// New returns a migrated client backed by a SQLite file in t.TempDir.
func New(t testing.TB) *repo.Client {
	t.Helper()

	cfg := database.DefaultConfig()
	cfg.Driver = database.DriverSQLite
	cfg.Path = filepath.Join(t.TempDir(), "forms.db")

	client, err := database.NewEntClientFromConfig(cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := database.MigrateEnt(context.Background(), client, cfg); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return client
}

// Fixture is a form with two modals; the first has a required and an
// optional question, the second a single required question.
type Fixture struct {
	Form      *repo.Form
	Modals    []*repo.Modal
	Questions [][]*repo.Question
}

// Seed creates the Fixture form.
func Seed(t testing.TB, client *repo.Client) *Fixture {
	t.Helper()
	ctx := context.Background()

	channel := "900"
	f := &repo.Form{Name: "Application", ChannelID: &channel}
	mustNil(t, client.CreateForm(ctx, f))

	fx := &Fixture{Form: f}
	for _, label := range []string{"About you", "Experience"} {
		m := &repo.Modal{FormID: f.ID, Label: label}
		mustNil(t, client.CreateModal(ctx, m))
		fx.Modals = append(fx.Modals, m)
	}

	specs := [][]repo.Question{
		{{Label: "Name", Required: true}, {Label: "Age", Required: false}},
		{{Label: "Why do you want to join?", Required: true, Paragraph: true}},
	}
	for i, qs := range specs {
		var created []*repo.Question
		for _, q := range qs {
			q := q
			q.ModalID = fx.Modals[i].ID
			mustNil(t, client.CreateQuestion(ctx, &q))
			created = append(created, &q)
		}
		fx.Questions = append(fx.Questions, created)
	}
	return fx
}

func mustNil(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}
