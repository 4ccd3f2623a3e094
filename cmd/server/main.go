package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	corepersistence "github.com/clarityhq/workplan/modules/core/infrastructure/persistence"
	coreservices "github.com/clarityhq/workplan/modules/core/services"
	logpersistence "github.com/clarityhq/workplan/modules/logging/infrastructure/persistence"
	logservices "github.com/clarityhq/workplan/modules/logging/services"
	orgpersistence "github.com/clarityhq/workplan/modules/org/infrastructure/persistence"
	orgcontrollers "github.com/clarityhq/workplan/modules/org/presentation/controllers"
	orgservices "github.com/clarityhq/workplan/modules/org/services"
	planpersistence "github.com/clarityhq/workplan/modules/planning/infrastructure/persistence"
	plancontrollers "github.com/clarityhq/workplan/modules/planning/presentation/controllers"
	planservices "github.com/clarityhq/workplan/modules/planning/services"

	"github.com/clarityhq/workplan/migrations"
	"github.com/clarityhq/workplan/pkg/configuration"
	"github.com/clarityhq/workplan/pkg/eventbus"
	"github.com/clarityhq/workplan/pkg/logging"
	"github.com/clarityhq/workplan/pkg/metrics"
	"github.com/clarityhq/workplan/pkg/middleware"
)

func main() {
	conf := configuration.Use()
	logger := logging.ConsoleLogger(conf.LogrusLevel())
	if conf.Env == configuration.Production {
		logger = logging.JSONLogger(os.Stderr, conf.LogrusLevel())
	}

	if err := migrate(conf); err != nil {
		logger.WithError(err).Fatal("running migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	if err != nil {
		logger.WithError(err).Fatal("connecting to database")
	}
	defer pool.Close()

	router := buildRouter(conf, logger, pool)

	srv := &http.Server{
		Addr:         conf.ServerAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.WithField("address", conf.ServerAddress).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	logger.Info("server stopped")
}

func migrate(conf *configuration.Configuration) error {
	db, err := sql.Open("pgx", conf.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}

func buildRouter(conf *configuration.Configuration, logger *logrus.Logger, pool *pgxpool.Pool) *mux.Router {
	users := corepersistence.NewUserRepository()
	identity := coreservices.NewIdentityService(users, conf.AdminRoleSet())

	nodes := orgpersistence.NewNodeRepository()
	memberships := orgpersistence.NewMembershipRepository()
	overrides := orgpersistence.NewOverrideRepository()
	delegations := orgpersistence.NewDelegationRepository()

	graph := orgservices.NewOrgGraphService(memberships, nodes)
	resolver := orgservices.NewVisibilityResolver(users, memberships, overrides, delegations, graph, identity)
	gate := orgservices.NewAccessGate(graph, memberships, identity)

	bus := eventbus.NewEventPublisher(logger)
	audit := logservices.NewAuditService(logpersistence.NewAuditLogRepository(), bus, logger)

	tasks := planpersistence.NewTaskRepository()
	progressLog := planpersistence.NewProgressLogRepository()
	projects := planpersistence.NewProjectRepository()
	plans := planpersistence.NewWorkPlanRepository()
	requests := planpersistence.NewChangeRequestRepository()
	assignments := planpersistence.NewAssignmentRepository()

	permissions := planservices.NewEditPermissionService(
		tasks, projects, plans, gate, identity, audit,
		conf.Governance.ImminentDeadlineDays,
	)
	governance := planservices.NewGovernanceService(requests, tasks, graph, gate, identity, audit)
	updates := planservices.NewTaskUpdateService(tasks, progressLog, permissions, governance, audit)
	reassignments := planservices.NewReassignmentService(assignments, tasks, gate, audit)

	r := mux.NewRouter()
	r.Use(
		middleware.RequestLogger(logger),
		middleware.DatabasePool(pool),
		middleware.Actor(),
	)

	orgcontrollers.NewOrgAPIController(resolver, graph).Register(r)
	plancontrollers.NewPlanningAPIController(permissions, updates, governance, reassignments).Register(r)

	if conf.Prometheus.Enabled {
		metrics.NewPrometheusController(conf.Prometheus.Path).Register(r)
	}

	return r
}
