package secrets

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/dmitrijs2005/projecthub/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	out   *secretsmanager.GetSecretValueOutput
	err   error
	calls atomic.Int32
	ids   []string
	mu    sync.Mutex
}

func (f *fakeAPI) GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.ids = append(f.ids, aws.ToString(in.SecretId))
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func TestGetSecret_CachesSuccess(t *testing.T) {
	api := &fakeAPI{out: &secretsmanager.GetSecretValueOutput{SecretString: aws.String("s3cr3t")}}
	m := NewManager(api, logging.Nop())

	for i := 0; i < 3; i++ {
		v, err := m.GetSecret(context.Background(), "cognito-client-secret")
		require.NoError(t, err)
		assert.Equal(t, "s3cr3t", v)
	}
	assert.Equal(t, int32(1), api.calls.Load())
	assert.Equal(t, []string{"cognito-client-secret"}, api.ids)
}

func TestGetSecret_ErrorNotCached(t *testing.T) {
	api := &fakeAPI{err: errors.New("throttled")}
	m := NewManager(api, logging.Nop())

	_, err := m.GetSecret(context.Background(), "id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")

	api.err = nil
	api.out = &secretsmanager.GetSecretValueOutput{SecretString: aws.String("ok")}
	v, err := m.GetSecret(context.Background(), "id")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(2), api.calls.Load())
}

func TestGetSecret_Empty(t *testing.T) {
	for _, out := range []*secretsmanager.GetSecretValueOutput{{}, {SecretString: aws.String("")}} {
		m := NewManager(&fakeAPI{out: out}, logging.Nop())
		_, err := m.GetSecret(context.Background(), "id")
		assert.ErrorIs(t, err, ErrEmptySecret)
	}
}

func TestGetJSONSecret(t *testing.T) {
	api := &fakeAPI{out: &secretsmanager.GetSecretValueOutput{SecretString: aws.String(`{"username":"app","password":"pw"}`)}}
	m := NewManager(api, logging.Nop())

	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	require.NoError(t, m.GetJSONSecret(context.Background(), "rds", &creds))
	assert.Equal(t, "app", creds.Username)
	assert.Equal(t, "pw", creds.Password)

	bad := NewManager(&fakeAPI{out: &secretsmanager.GetSecretValueOutput{SecretString: aws.String("not-json")}}, logging.Nop())
	assert.Error(t, bad.GetJSONSecret(context.Background(), "rds", &creds))
}

func TestValue_LoadsOnceUnderConcurrency(t *testing.T) {
	api := &fakeAPI{out: &secretsmanager.GetSecretValueOutput{SecretString: aws.String("once")}}
	v := NewValue(context.Background(), NewManager(api, logging.Nop()), "id")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := v.Get()
			assert.NoError(t, err)
			assert.Equal(t, "once", s)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), api.calls.Load())
}

func TestValue_RemembersError(t *testing.T) {
	api := &fakeAPI{err: errors.New("denied")}
	v := NewValue(context.Background(), NewManager(api, logging.Nop()), "id")

	_, err1 := v.Get()
	_, err2 := v.Get()
	assert.Error(t, err1)
	assert.Equal(t, err1, err2)
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestStaticValue(t *testing.T) {
	s, err := StaticValue("fixed").Get()
	require.NoError(t, err)
	assert.Equal(t, "fixed", s)
}
