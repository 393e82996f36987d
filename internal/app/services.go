package app

import (
	"go.uber.org/fx"

	"github.com/Alijeyrad/formsbot/internal/repo"
	"github.com/Alijeyrad/formsbot/internal/service/form"
	"github.com/Alijeyrad/formsbot/internal/service/publish"
	"github.com/Alijeyrad/formsbot/internal/service/selection"
	"github.com/Alijeyrad/formsbot/internal/service/starter"
	"github.com/Alijeyrad/formsbot/internal/service/submission"
	"github.com/Alijeyrad/formsbot/pkg/wynncraft"
)

// ServiceModule provides all application service dependencies. The
// submission.Dispatcher and publish.Sender it consumes come from the chat
// adapter module.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideFormService,
		ProvideSubmissionService,
		ProvidePublishService,
	),
)

func ProvideFormService(db *repo.Client, store selection.Store) form.Service {
	return form.New(db, store)
}

func ProvideSubmissionService(db *repo.Client, dispatcher submission.Dispatcher, wynn *wynncraft.Client) submission.Service {
	var opts []submission.Option
	if wynn != nil {
		opts = append(opts, submission.WithEnricher(submission.NewWynncraftEnricher(wynn)))
	}
	return submission.New(db, dispatcher, opts...)
}

func ProvidePublishService(db *repo.Client, sender publish.Sender, starters *starter.Registry) publish.Service {
	return publish.New(db, sender, starters)
}
