package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/pulse/internal/adapters/secrets/file"
	passstore "github.com/bnema/pulse/internal/adapters/secrets/pass"
	"github.com/bnema/pulse/internal/domain"
	"github.com/bnema/pulse/internal/ports"
)

type Backend struct {
	Name  string
	Store ports.SecretStore
}

// Store tries its backends in order. Reads return the first hit, writes stop
// at the first backend that accepts the secret.
type Store struct {
	backends []Backend
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(backends ...Backend) (*Store, error) {
	if len(backends) == 0 {
		return nil, errors.New("secret store chain needs at least one backend")
	}
	for i, backend := range backends {
		if backend.Store == nil {
			return nil, fmt.Errorf("secret backend %d (%s) is nil", i, backend.Name)
		}
	}

	return &Store{backends: backends}, nil
}

// NewPassFirstWithFileFallback prefers pass and falls back to files under
// fileRoot when pass is missing or fails.
func NewPassFirstWithFileFallback(fileRoot string) (*Store, error) {
	return NewStore(
		Backend{Name: "pass", Store: passstore.NewStore(passstore.DefaultPrefix)},
		Backend{Name: "file", Store: filestore.NewStore(fileRoot)},
	)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	notFound := 0

	for _, backend := range s.backends {
		value, err := backend.Store.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if isContextError(err) {
			return "", err
		}
		if errors.Is(err, domain.ErrSecretNotFound) {
			notFound++
		}
		errs = append(errs, fmt.Errorf("%s backend: %w", backend.Name, err))
	}

	if notFound == len(s.backends) {
		return "", fmt.Errorf("secret %q: %w", key, domain.ErrSecretNotFound)
	}

	return "", fmt.Errorf("get secret %q: %w", key, errors.Join(errs...))
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	var errs []error

	for _, backend := range s.backends {
		err := backend.Store.Put(ctx, key, value)
		if err == nil {
			return nil
		}
		if isContextError(err) {
			return err
		}
		errs = append(errs, fmt.Errorf("%s backend: %w", backend.Name, err))
	}

	return fmt.Errorf("put secret %q: %w", key, errors.Join(errs...))
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
