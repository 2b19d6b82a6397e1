//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"livenotes/internal"
	"livenotes/internal/controllers"
	"livenotes/internal/providers"
	"livenotes/internal/services"
	"livenotes/internal/storage"
	"livenotes/internal/storage/interfaces"
	"livenotes/internal/structures"
	"livenotes/internal/transcript"
)

var coreSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewLogProvider,
	providers.NewMetricsProvider,

	storage.NewZstdCompressor,
	internal.OpenStorage,
	wire.Bind(new(interfaces.Backend), new(*storage.Adapter)),
	services.NewRoomRegistry,
	internal.LoadOptions,
	transcript.NewExporter,
	internal.NewCore,
)

func InitCore(cfg *structures.CliFlags) (*internal.Core, error) {

	wire.Build(coreSet)

	return nil, nil
}

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		coreSet,
		providers.NewInstrumentedCacheProvider,
		wire.Bind(new(controllers.BackendInfo), new(*storage.Adapter)),
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
