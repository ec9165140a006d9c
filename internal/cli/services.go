package cli

import (
	"log/slog"

	"github.com/shreya0626/secret-santa/internal/app"
	"github.com/shreya0626/secret-santa/internal/config"
	"github.com/shreya0626/secret-santa/internal/domain"
)

type services struct {
	creds    *app.CredentialService
	engine   *app.AssignmentEngine
	workflow *app.Workflow
}

// newServices builds the application layer on top of st.
func newServices(cfg *config.Config, st *stores, roster *domain.Roster, log *slog.Logger, obs app.DrawObserver) (*services, error) {
	seed := cfg.RNGSeed
	if seed == 0 {
		var err error
		if seed, err = app.NewSeed(); err != nil {
			return nil, err
		}
	}

	creds := app.NewCredentialService(st, st.sessions, roster).WithSessionTTL(cfg.SessionTTL)
	engine := app.NewAssignmentEngine(st, roster, app.NewPicker(seed)).
		WithMaxAttempts(cfg.DrawMaxAttempts).
		WithLogger(log).
		WithObserver(obs)
	wf := app.NewWorkflow(creds, app.NewWishlistService(st), engine, app.NewClueService(st), cfg.Cycle()).
		WithLogger(log)

	return &services{creds: creds, engine: engine, workflow: wf}, nil
}
