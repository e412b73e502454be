// Package secrets reads values from AWS Secrets Manager and caches them for
// the lifetime of the process.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/dmitrijs2005/projecthub/internal/logging"
)

var ErrEmptySecret = errors.New("secret has no string value")

// API is the part of the Secrets Manager client used here.
type API interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Manager fetches secrets by id. Successful reads are cached; failures are
// not, so a later call may retry.
type Manager struct {
	api    API
	logger logging.Logger

	mu    sync.RWMutex
	cache map[string]string
}

func NewManager(api API, l logging.Logger) *Manager {
	return &Manager{api: api, logger: l.With("module", "secrets"), cache: make(map[string]string)}
}

func (m *Manager) GetSecret(ctx context.Context, id string) (string, error) {
	m.mu.RLock()
	v, ok := m.cache[id]
	m.mu.RUnlock()
	if ok {
		return v, nil
	}

	out, err := m.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(id)})
	if err != nil {
		m.logger.Error(ctx, "error retrieving secret", "secret_id", id, "error", err)
		return "", fmt.Errorf("get secret %s: %w", id, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return "", fmt.Errorf("get secret %s: %w", id, ErrEmptySecret)
	}

	m.mu.Lock()
	m.cache[id] = *out.SecretString
	m.mu.Unlock()

	return *out.SecretString, nil
}

// GetJSONSecret decodes a JSON secret (e.g. RDS credentials) into out.
func (m *Manager) GetJSONSecret(ctx context.Context, id string, out any) error {
	raw, err := m.GetSecret(ctx, id)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode secret %s: %w", id, err)
	}
	return nil
}

// Value is a write-once secret: the first Get loads it, every later Get
// returns the same result without touching the store.
type Value struct {
	load func() (string, error)
}

// NewValue binds id to m. ctx is used for the single load.
func NewValue(ctx context.Context, m *Manager, id string) *Value {
	return &Value{load: sync.OnceValues(func() (string, error) {
		return m.GetSecret(ctx, id)
	})}
}

// StaticValue wraps a known secret, e.g. for local stacks and tests.
func StaticValue(s string) *Value {
	return &Value{load: func() (string, error) { return s, nil }}
}

func (v *Value) Get() (string, error) {
	return v.load()
}
