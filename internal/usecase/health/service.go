package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the engine is up but some required index is missing.
	Degraded Status = "degraded"
	// Unhealthy indicates the engine is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	engine   EnginePinger
	mappings MappingFetcher
	required []string
}

// New creates a Service. mappings can be nil when no index is required.
func New(engine EnginePinger, mappings MappingFetcher, required ...string) *Service {
	return &Service{engine: engine, mappings: mappings, required: required}
}

// Check pings the engine, then verifies every required index.
// Index checks are skipped while the engine is down.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 1+len(s.required))

	if err := s.engine.Ping(ctx); err != nil {
		checks["engine"] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks["engine"] = CheckOK

	status := Healthy
	if s.mappings != nil {
		for _, name := range s.required {
			key := "index:" + name
			// A pattern matching nothing answers with an empty mapping set.
			if m, err := s.mappings.GetMapping(ctx, name); err != nil || len(m) == 0 {
				checks[key] = CheckError
				status = Degraded
				continue
			}
			checks[key] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
