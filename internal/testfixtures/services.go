package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/talentflow/internal/application"
	"github.com/example/talentflow/internal/persistence"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// JobServiceDeps captures dependencies for constructing a job service.
type JobServiceDeps struct {
	Jobs        persistence.JobRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewJobService builds a job service using the supplied dependencies combined
// with the factory defaults.
func (f *ServiceFactory) NewJobService(deps JobServiceDeps) *application.JobService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewJobService(deps.Jobs, idGen, now, deps.Logger)
}

// CandidateServiceDeps captures dependencies for constructing a candidate service.
type CandidateServiceDeps struct {
	Candidates  persistence.CandidateRepository
	Jobs        persistence.JobRepository
	Notifier    application.MentionNotifier
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewCandidateService builds a candidate service using the supplied dependencies.
func (f *ServiceFactory) NewCandidateService(deps CandidateServiceDeps) *application.CandidateService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewCandidateService(
		deps.Candidates,
		deps.Jobs,
		deps.Notifier,
		idGen,
		now,
		deps.Logger,
	)
}

// AssessmentServiceDeps captures dependencies for constructing an assessment service.
type AssessmentServiceDeps struct {
	Assessments persistence.AssessmentRepository
	Candidates  persistence.CandidateRepository
	Jobs        persistence.JobRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewAssessmentService builds an assessment service using the supplied dependencies.
func (f *ServiceFactory) NewAssessmentService(deps AssessmentServiceDeps) (*application.AssessmentService, error) {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAssessmentService(
		deps.Assessments,
		deps.Candidates,
		deps.Jobs,
		idGen,
		now,
		deps.Logger,
	)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Users       persistence.UserRepository
	SessionTTL  time.Duration
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAuthService(deps.Users, deps.SessionTTL, idGen, now, deps.Logger)
}

// NotificationServiceDeps captures dependencies for constructing a notification service.
type NotificationServiceDeps struct {
	Notifications persistence.NotificationRepository
	Users         persistence.UserRepository
	IDGenerator   func() string
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewNotificationService builds a notification service using the supplied dependencies.
func (f *ServiceFactory) NewNotificationService(deps NotificationServiceDeps) *application.NotificationService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewNotificationService(
		deps.Notifications,
		deps.Users,
		idGen,
		now,
		deps.Logger,
	)
}
