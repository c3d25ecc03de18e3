//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/config"
)

// InitializeApp builds the application graph from cfg. The cleanup closes
// databases and clients in reverse order of creation.
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
