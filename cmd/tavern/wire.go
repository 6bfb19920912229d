//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
)

// initializeApp assembles the App from the configuration named by opts.
func initializeApp(ctx context.Context, opts Options) (*App, func(), error) {
	wire.Build(providerSet)
	return nil, nil, nil
}
