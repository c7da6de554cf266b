// Package app provides application-level wiring and dependency injection
// for the salonhub application following hexagonal architecture.
package app

import (
	"context"
	"database/sql"
	"log/slog"

	"salonhub/internal/api"
	"salonhub/internal/config"
	"salonhub/internal/db/repository"
	"salonhub/internal/domain"
	"salonhub/internal/notify"
	"salonhub/internal/realtime"
	"salonhub/internal/service"
)

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create itself:
// database handles, config, and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// Services groups all service pointers that the API handler and router need.
type Services struct {
	Tenant     *service.TenantService
	Employment *service.EmploymentService
	Capability *service.CapabilityService
	Audit      *service.AuditService
	Resolver   *service.TenantContextResolver
}

// App holds the fully-wired application.
type App struct {
	Services Services
	Handler  *api.Handler
	Hub      *realtime.Hub
	Effects  *service.SideEffectRunner
	Sweeper  *service.CleanupScheduler
}

// New wires all repositories and services from the provided deps.
// It also runs conditional development seeding.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg

	// === Repositories (write-pool) ===
	tenantRepo := repository.NewTenantRepo(deps.WriteDB)
	employmentRepo := repository.NewEmploymentRepo(deps.WriteDB)
	grantRepo := repository.NewGrantRepo(deps.WriteDB)
	auditRepo := repository.NewAuditRepo(deps.WriteDB)

	// === Repositories (read-pool) ===
	readTenantRepo := repository.NewTenantRepo(deps.ReadDB)
	readEmploymentRepo := repository.NewEmploymentRepo(deps.ReadDB)

	// === Side effects: notification dispatch and realtime push ===
	hub := realtime.NewHub(deps.Logger.With("component", "realtime"))
	dispatcher := notify.NewLogDispatcher(deps.Logger.With("component", "notify"))
	effects := service.NewSideEffectRunner(cfg.SideEffectTimeout, deps.Logger.With("component", "side-effects"))

	// === Core services ===
	capabilitySvc := service.NewCapabilityService(
		grantRepo, employmentRepo, tenantRepo, auditRepo,
		dispatcher, hub, effects,
		deps.Logger.With("component", "capability-service"),
	)
	tenantSvc := service.NewTenantService(tenantRepo, auditRepo)
	employmentSvc := service.NewEmploymentService(employmentRepo, tenantRepo, auditRepo)
	auditSvc := service.NewAuditService(auditRepo)

	entityOrder := cfg.EntityOrder
	if len(entityOrder) == 0 {
		entityOrder = domain.DefaultEntityOrder
	}
	resolver := service.NewTenantContextResolver(
		readTenantRepo, readEmploymentRepo, entityOrder,
		deps.Logger.With("component", "tenant-resolver"),
	)

	sweeper := service.NewCleanupScheduler(capabilitySvc, cfg.CleanupSchedule, deps.Logger.With("component", "cleanup"))

	if cfg.SeedDev {
		if err := seedDev(ctx, deps.WriteDB, tenantSvc, employmentSvc, capabilitySvc, deps.Logger); err != nil {
			deps.Logger.Warn("dev seeding failed", "error", err)
		}
	}

	handler := api.NewHandler(tenantSvc, employmentSvc, capabilitySvc, auditSvc, resolver)

	return &App{
		Services: Services{
			Tenant:     tenantSvc,
			Employment: employmentSvc,
			Capability: capabilitySvc,
			Audit:      auditSvc,
			Resolver:   resolver,
		},
		Handler: handler,
		Hub:     hub,
		Effects: effects,
		Sweeper: sweeper,
	}, nil
}
