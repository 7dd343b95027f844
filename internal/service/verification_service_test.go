package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCodeStore struct {
	codes map[string]string
	ttls  map[string]time.Duration
}

func newMemoryCodeStore() *memoryCodeStore {
	return &memoryCodeStore{codes: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCodeStore) Set(ctx context.Context, email, code string, ttl time.Duration) error {
	m.codes[email] = code
	m.ttls[email] = ttl
	return nil
}

func (m *memoryCodeStore) Get(ctx context.Context, email string) (string, error) {
	return m.codes[email], nil
}

func (m *memoryCodeStore) Delete(ctx context.Context, email string) error {
	delete(m.codes, email)
	return nil
}

func TestIssueStoresSixDigitCode(t *testing.T) {
	store := newMemoryCodeStore()
	svc := NewVerificationService(store, 10*time.Minute, nil)

	code, err := svc.Issue(context.Background(), "Ana@Example.com ")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Regexp(t, `^\d{6}$`, code)

	// Keyed by the normalized email.
	assert.Equal(t, code, store.codes["ana@example.com"])
	assert.Equal(t, 10*time.Minute, store.ttls["ana@example.com"])
}

func TestIssueReplacesPendingCode(t *testing.T) {
	store := newMemoryCodeStore()
	svc := NewVerificationService(store, time.Minute, nil)

	first, err := svc.Issue(context.Background(), "ana@example.com")
	require.NoError(t, err)
	second, err := svc.Issue(context.Background(), "ana@example.com")
	require.NoError(t, err)

	ok, err := svc.Validate(context.Background(), "ana@example.com", second)
	require.NoError(t, err)
	assert.True(t, ok)

	if first != second {
		ok, err = svc.Validate(context.Background(), "ana@example.com", first)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestValidateConsumesCodeOnce(t *testing.T) {
	store := newMemoryCodeStore()
	svc := NewVerificationService(store, time.Minute, nil)

	code, err := svc.Issue(context.Background(), "ana@example.com")
	require.NoError(t, err)

	ok, err := svc.Validate(context.Background(), "ana@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok)

	// The matched code is gone; a replay fails.
	ok, err = svc.Validate(context.Background(), "ana@example.com", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateMismatchLeavesCodePending(t *testing.T) {
	store := newMemoryCodeStore()
	svc := NewVerificationService(store, time.Minute, nil)

	code, err := svc.Issue(context.Background(), "ana@example.com")
	require.NoError(t, err)

	ok, err := svc.Validate(context.Background(), "ana@example.com", "000000")
	require.NoError(t, err)
	assert.False(t, ok)

	// A wrong guess does not burn the real code.
	ok, err = svc.Validate(context.Background(), "ana@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateUnknownEmail(t *testing.T) {
	svc := NewVerificationService(newMemoryCodeStore(), time.Minute, nil)
	ok, err := svc.Validate(context.Background(), "ghost@example.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}
