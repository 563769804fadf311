// Package services implements the business logic layer of HPIC Pulse. It
// provides a clean separation between HTTP handlers and data access,
// ensuring that business rules are centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Pure computation delegated to internal/analytics
//
// # Available Services
//
// The package provides these core services:
//
//	- DashboardService: runs the load → filter → compute → assemble
//	  pipeline behind the dashboard, timeline, revenue, and export
//	  endpoints
//	- HealthService: provides system health and readiness checks
//	- InfoService: assembles the organization/about payload with dataset
//	  freshness
//
// # Common Service Pattern
//
// Services typically follow this structure:
//
//	type ServiceName struct {
//	    store  SnapshotStore
//	    logger *slog.Logger
//	}
//
//	func NewServiceName(store SnapshotStore, logger *slog.Logger) *ServiceName {
//	    return &ServiceName{store: store, logger: logger}
//	}
//
// # Error Handling
//
// Services propagate the layered errors produced by the dataset loader
// (missing file, malformed input); handlers transform them into RFC 7807
// problem responses. An empty filter result is not an error: the pipeline
// reports it as a no_data view state and the page renders a warning.
package services
