package provider

import (
	"context"
	"errors"
)

// RatesFetcher retrieves the raw rates payload from a remote pricing service.
type RatesFetcher interface {
	FetchRates(ctx context.Context) ([]byte, error)
}

// ErrMissingCredential is returned when a fetch is attempted without an access key.
var ErrMissingCredential = errors.New("access key is not set")

// ErrTransport wraps network and socket failures when raise-on-failure is enabled.
var ErrTransport = errors.New("rates transport failure")

// EmptyDataset is the placeholder payload returned when a transport failure
// is swallowed; it parses to a dataset without rates.
var EmptyDataset = []byte(`[{}]`)
