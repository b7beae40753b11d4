package refdata

import (
	"context"
	"embed"
	"io/fs"
)

//go:embed sample
var sampleFS embed.FS

// Embedded returns a provider for the small sample dataset compiled into the
// binary. It is the default source when no data directory or database is set.
func Embedded() Provider {
	return ProviderFunc(func(ctx context.Context) (*Dataset, error) {
		sub, err := fs.Sub(sampleFS, "sample")
		if err != nil {
			return nil, err
		}
		return LoadFS(ctx, sub, "embedded:sample")
	})
}
