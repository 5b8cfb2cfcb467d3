//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/Jacobbrewer1/tickets/cmd/bot/config"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/google/wire"
	"github.com/gorilla/mux"
)

func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		provideLoggingConfig,
		logging.CommonLogger,
		provideStoreOptions,
		dataaccess.NewConfigStore,
		newEventNotifier,
		newDiscordSession,
		newAuditQueue,
		provideAuditSink,
		provideEngine,
		provideOpenLimiter,
		mux.NewRouter,
		NewApp,
	)
	return new(App), nil, nil
}
