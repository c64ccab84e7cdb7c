package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	complainthandler "lodgeguard/internal/complaint/handler"
	complaintmetrics "lodgeguard/internal/complaint/metrics"
	complaintservice "lodgeguard/internal/complaint/service"
	complaintstore "lodgeguard/internal/complaint/store"
	directoryhandler "lodgeguard/internal/directory/handler"
	directoryservice "lodgeguard/internal/directory/service"
	directorystore "lodgeguard/internal/directory/store"
	governancehandler "lodgeguard/internal/governance/handler"
	governancemetrics "lodgeguard/internal/governance/metrics"
	governanceservice "lodgeguard/internal/governance/service"
	governancestore "lodgeguard/internal/governance/store"
	"lodgeguard/internal/jwttoken"
	occupancyhandler "lodgeguard/internal/occupancy/handler"
	occupancymetrics "lodgeguard/internal/occupancy/metrics"
	occupancyservice "lodgeguard/internal/occupancy/service"
	occupancystore "lodgeguard/internal/occupancy/store"
	"lodgeguard/internal/platform/config"
	"lodgeguard/internal/platform/metrics"
	"lodgeguard/internal/platform/postgres"
	"lodgeguard/internal/platform/redis"
	ratelimitmetrics "lodgeguard/internal/ratelimit/metrics"
	ratelimit "lodgeguard/internal/ratelimit/middleware"
	ratelimitstore "lodgeguard/internal/ratelimit/store"
	httptransport "lodgeguard/internal/transport/http"
	"lodgeguard/pkg/platform/keylock"
)

type directoryStore interface {
	directoryservice.Store
	governanceservice.Directory
}

type complaintStore interface {
	complaintservice.Store
	governanceservice.ComplaintHistory
}

// stores is one backend's full set of stores and unit transactions.
type stores struct {
	kind         string
	directory    directoryStore
	governance   governanceservice.Store
	governanceTx governanceservice.UnitTx
	complaints   complaintStore
	occupancy    occupancyservice.Store
	occupancyTx  occupancyservice.UnitTx
}

type app struct {
	router  http.Handler
	storage string
	limiter string
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func build(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	a := &app{}
	health := map[string]httptransport.HealthCheck{}

	var st stores
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := postgres.Migrate(ctx, db); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		health["postgres"] = db.PingContext
		st = postgresStores(db)
	} else {
		st = memoryStores()
	}
	a.storage = st.kind

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	var primary ratelimit.Limiter = ratelimitstore.NewInMemoryStore()
	limiterOpts := []ratelimit.Option{
		ratelimit.WithDisabled(cfg.DemoMode),
		ratelimit.WithMetrics(ratelimitmetrics.New()),
	}
	a.limiter = "memory"
	if rdb != nil {
		a.closers = append(a.closers, rdb.Close)
		health["redis"] = rdb.Health
		primary = ratelimitstore.NewRedisStore(rdb.Client)
		limiterOpts = append(limiterOpts, ratelimit.WithFallback(ratelimitstore.NewInMemoryStore()))
		a.limiter = "redis"
	}
	limiter := ratelimit.New(primary, cfg.RateLimit.ComplaintLimit, cfg.RateLimit.ComplaintWindow, log, limiterOpts...)

	directory := directoryservice.New(st.directory, directoryservice.WithLogger(log))
	governance := governanceservice.New(st.governance, st.governanceTx, st.complaints, st.directory,
		governanceservice.WithLogger(log),
		governanceservice.WithMetrics(governancemetrics.New()),
		governanceservice.WithOccupancyCounter(st.occupancy),
	)
	occupancy := occupancyservice.New(st.occupancy, st.occupancyTx, governance, st.directory,
		occupancyservice.WithLogger(log),
		occupancyservice.WithMetrics(occupancymetrics.New()),
	)
	complaints := complaintservice.New(st.complaints, governance, st.directory, occupancy,
		complaintservice.WithLogger(log),
		complaintservice.WithMetrics(complaintmetrics.New()),
	)

	a.router = httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Metrics:   metrics.New(),
		Validator: jwttoken.New(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer),
		Health:    health,
		Handlers: []httptransport.Registrar{
			directoryhandler.New(directory, log),
			governancehandler.New(governance, log),
			complainthandler.New(complaints, log, complainthandler.WithSubmitLimit(limiter.PerStudent())),
			occupancyhandler.New(occupancy, log),
		},
	})
	return a, nil
}

// memoryStores shares one keyed locker between the governance and occupancy
// transactions so both serialize on the same unit key.
func memoryStores() stores {
	locker := keylock.New()
	dir := directorystore.NewInMemory()
	gov := governancestore.NewInMemory()
	occ := occupancystore.NewInMemory(occupancystore.NewStorePlacements(gov, dir))
	return stores{
		kind:         "memory",
		directory:    dir,
		governance:   gov,
		governanceTx: governanceservice.NewMemoryTx(gov, locker),
		complaints:   complaintstore.NewInMemory(),
		occupancy:    occ,
		occupancyTx:  occupancyservice.NewMemoryTx(occ, locker),
	}
}

func postgresStores(db *sql.DB) stores {
	gov := governancestore.NewPostgres(db)
	occ := occupancystore.NewPostgres(db)
	return stores{
		kind:         "postgres",
		directory:    directorystore.NewPostgres(db),
		governance:   gov,
		governanceTx: governanceservice.NewPostgresTx(db, gov),
		complaints:   complaintstore.NewPostgres(db),
		occupancy:    occ,
		occupancyTx:  occupancyservice.NewPostgresTx(db, occ),
	}
}
