package testfixtures

import (
	"io"
	"log/slog"
	"time"

	"github.com/example/internship-tracker/internal/application"
)

// ServiceFactory assists tests with constructing application services over a
// SQLite harness using a deterministic clock.
type ServiceFactory struct {
	Clock     *Clock
	Checklist application.Checklist
	Logger    *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:  NewClock(time.Time{}),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithChecklist overrides the default document checklist.
func WithChecklist(names ...string) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Checklist.Names = append([]string(nil), names...)
	}
}

// WithLogger overrides the logger handed to every service.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// Services builds every application service over the harness repositories.
func (f *ServiceFactory) Services(h *SQLiteHarness) application.Services {
	return application.NewServices(application.ServiceDeps{
		Interns:      h.Interns,
		Venues:       h.Venues,
		Documents:    h.Documents,
		Observations: h.Observations,
		Meetings:     h.Meetings,
		Criteria:     h.Criteria,
		Grades:       h.Grades,
		Checklist:    f.Checklist,
		Now:          f.Clock.NowFunc(),
		Logger:       f.Logger,
	})
}
