package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fbes-dev/enrollment-api/internal/models"
	appErrors "github.com/fbes-dev/enrollment-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:stats"

type dashboardEnrollmentReader interface {
	CountByStatus(ctx context.Context, status models.EnrollmentStatus) (int, error)
	CountApprovedPerGrade(ctx context.Context) ([]models.GradeCount, error)
	ListRecent(ctx context.Context, limit int) ([]models.Enrollment, error)
}

type dashboardUserReader interface {
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DashboardService aggregates the admin dashboard figures, cached in
// Redis for the configured TTL.
type DashboardService struct {
	enrollments dashboardEnrollmentReader
	users       dashboardUserReader
	cache       statsCache
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(enrollments dashboardEnrollmentReader, users dashboardUserReader, cache statsCache, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		enrollments: enrollments,
		users:       users,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Stats returns the dashboard aggregate, served from cache when fresh.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	if s.cache != nil {
		var cached models.DashboardStats
		err := s.cache.Get(ctx, dashboardCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	stats, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// Invalidate drops the cached aggregate, called after state changes
// that move the numbers.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboardCacheKey); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) build(ctx context.Context) (*models.DashboardStats, error) {
	pending, err := s.enrollments.CountByStatus(ctx, models.EnrollmentStatusPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending enrollments")
	}
	approved, err := s.enrollments.CountByStatus(ctx, models.EnrollmentStatusApproved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count approved enrollments")
	}
	rejected, err := s.enrollments.CountByStatus(ctx, models.EnrollmentStatusRejected)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count rejected enrollments")
	}
	professors, err := s.users.CountByRole(ctx, models.RoleProfessor)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count professors")
	}
	perGrade, err := s.enrollments.CountApprovedPerGrade(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count per grade")
	}
	recent, err := s.enrollments.ListRecent(ctx, 10)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recent enrollments")
	}

	return &models.DashboardStats{
		TotalEnrollments:    pending + approved + rejected,
		PendingEnrollments:  pending,
		ApprovedEnrollments: approved,
		RejectedEnrollments: rejected,
		TotalProfessors:     professors,
		EnrollmentsPerGrade: perGrade,
		RecentEnrollments:   recent,
		GeneratedAt:         time.Now().UTC(),
	}, nil
}
