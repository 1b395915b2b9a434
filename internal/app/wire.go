//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/eslsoft/vidlingo/internal/adapter/httpapi"
	"github.com/eslsoft/vidlingo/internal/adapter/repository"
	"github.com/eslsoft/vidlingo/internal/infrastructure/config"
	"github.com/eslsoft/vidlingo/internal/infrastructure/database"
	"github.com/eslsoft/vidlingo/internal/infrastructure/server"
	domainrepo "github.com/eslsoft/vidlingo/internal/repository"
	"github.com/eslsoft/vidlingo/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
)

var databaseSet = wire.NewSet(
	database.NewConnection,
	repository.NewDB,
	wire.Bind(new(domainrepo.TxRunner), new(*repository.DB)),
)

var repositorySet = wire.NewSet(
	repository.NewUserProgressRepository,
	repository.NewVocabularyRepository,
	repository.NewCompletionRepository,
	repository.NewVideoProgressRepository,
	repository.NewCatalogRepository,
)

var usecaseSet = wire.NewSet(
	usecase.NewProgressEngine,
)

var httpSet = wire.NewSet(
	httpapi.NewProgressHandler,
	httpapi.NewRouter,
)

var serverSet = wire.NewSet(
	server.NewLogger,
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		httpSet,
		serverSet,
		wire.Struct(new(Container), "Logger", "Server"),
	)
	return nil, nil, nil
}
