package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/fbes-dev/enrollment-api/pkg/errors"
)

// CodeStore persists verification codes keyed by email. Implementations
// must expire entries after the provided TTL.
type CodeStore interface {
	Set(ctx context.Context, email, code string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

// VerificationService issues and validates emailed verification codes.
type VerificationService struct {
	store  CodeStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewVerificationService constructs a VerificationService.
func NewVerificationService(store CodeStore, ttl time.Duration, logger *zap.Logger) *VerificationService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{store: store, ttl: ttl, logger: logger}
}

// Issue generates a fresh 6-digit code and stores it for the email,
// replacing any code already pending.
func (s *VerificationService) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate verification code")
	}
	if err := s.store.Set(ctx, normalizeEmail(email), code, s.ttl); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store verification code")
	}
	return code, nil
}

// Validate checks the submitted code. A match consumes the stored code;
// a mismatch leaves it in place so one wrong guess does not force the
// user to request a new one. Expired and missing codes look identical
// to the caller.
func (s *VerificationService) Validate(ctx context.Context, email, code string) (bool, error) {
	key := normalizeEmail(email)
	stored, err := s.store.Get(ctx, key)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read verification code")
	}
	if stored == "" || stored != strings.TrimSpace(code) {
		return false, nil
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to consume verification code", zap.Error(err))
	}
	return true, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
