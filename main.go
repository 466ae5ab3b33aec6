package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rentdash/internal/app"
	"rentdash/internal/session"

	"github.com/rs/zerolog/log"
)

func main() {
	app.SetupEnvironment()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := app.InitializeClient()
	alerter := app.InitializeAlertClient()

	sess := session.New(client, alerter, nil, app.LoadSessionConfig())
	sess.SetScope(app.LoadScope())
	sess.OnRender(func(view session.View) {
		log.Debug().
			Int("accounts", len(view.Accounts)).
			Int("rentals", len(view.Rentals)).
			Int64("api_calls", client.GetAPICallCount()).
			Msg("Rendered dashboard view")
	})

	log.Info().Msg("Starting rentdash monitor. Refreshing immediately and then on the poll interval...")

	if err := sess.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Session terminated")
	}
}
