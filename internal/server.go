package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/2beens/fitsync/internal/activity/api"
	"github.com/2beens/fitsync/internal/activity/cache"
	"github.com/2beens/fitsync/internal/activity/events"
	"github.com/2beens/fitsync/internal/activity/history"
	"github.com/2beens/fitsync/internal/activity/reconcile"
	"github.com/2beens/fitsync/internal/activity/remote"
	"github.com/2beens/fitsync/internal/activity/scheduler"
	"github.com/2beens/fitsync/internal/activity/sensor"
	"github.com/2beens/fitsync/internal/activity/session"
	"github.com/2beens/fitsync/internal/activity/syncer"
	"github.com/2beens/fitsync/internal/auth"
	"github.com/2beens/fitsync/internal/config"
	"github.com/2beens/fitsync/internal/db"
	"github.com/2beens/fitsync/internal/middleware"
	"github.com/2beens/fitsync/internal/misc"
	"github.com/2beens/fitsync/internal/objectives"
	"github.com/2beens/fitsync/internal/telemetry/metrics"
	"github.com/2beens/fitsync/internal/telemetry/tracing"
)

type objectivesLister interface {
	List(ctx context.Context, userID string) ([]objectives.Objective, error)
}

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	verifier    *auth.Verifier

	// activity
	cacheBackend cache.Backend
	store        remote.Store
	objectives   objectivesLister
	publisher    events.Publisher
	feed         *sensor.Broadcaster
	scheduler    *scheduler.Scheduler
	sessions     *session.Manager
	reconciler   *reconcile.Reconciler
	history      *history.Service

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	JWTSecret               string
	RedisPassword           string
	PostgresPassword        string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fitsync-agent")
	if err != nil {
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}

	s := &Server{
		config:       cfg,
		versionInfo:  params.VersionInfo,
		verifier:     auth.NewVerifier(params.JWTSecret, cfg.JWTIssuer),
		otelShutdown: otelShutdown,
	}

	var collectors []prometheus.Collector
	if cfg.RemoteBackend == config.RemoteBackendPostgres {
		s.dbPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBPassword:     params.PostgresPassword,
			TracingEnabled: params.HoneycombTracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := s.dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}
		if err := db.Migrate(ctx, s.dbPool); err != nil {
			return nil, fmt.Errorf("migrate db: %w", err)
		}
		collectors = append(collectors, pgxpoolprometheus.NewCollector(
			s.dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	}

	s.promRegistry = metrics.SetupPrometheus(collectors...)
	s.metricsManager = metrics.NewManager("fitsync", "agent", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0)

	if cfg.RedisEnabled() {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		s.redisClient.AddHook(redisotel.NewTracingHook())

		rdbStatus := s.redisClient.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	}

	if s.cacheBackend, err = newCacheBackend(ctx, cfg, s.redisClient); err != nil {
		return nil, err
	}

	switch cfg.RemoteBackend {
	case config.RemoteBackendPostgres:
		s.store = remote.NewRepo(s.dbPool)
		s.objectives = objectives.NewRepo(s.dbPool)
	default:
		log.Warnln("using in-memory remote store, aggregates are lost on restart")
		s.store = remote.NewMemoryStore()
		s.objectives = objectives.NewTestApi()
	}

	if cfg.KafkaEnabled {
		s.publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaFlushTopic)
	} else {
		s.publisher = events.NopPublisher{}
	}

	activityCache := cache.New(s.cacheBackend, nil)
	executor := syncer.NewExecutor(activityCache, s.store, s.publisher, s.metricsManager, nil)
	s.scheduler = scheduler.New(scheduler.Params{
		Cache:    activityCache,
		Executor: executor,
		Store:    s.store,
		Metrics:  s.metricsManager,
		CacheTTL: cfg.CacheTTL,
		Interval: cfg.SyncInterval,
	})
	s.feed = sensor.NewBroadcaster()
	s.sessions = session.NewManager(
		s.scheduler,
		sensor.NewRecorder(activityCache, s.metricsManager),
		s.feed,
		s.metricsManager,
	)
	s.reconciler = reconcile.NewReconciler(activityCache, s.store, nil)
	s.history = history.NewService(s.store, s.reconciler, cfg.HistoryCacheSizeMB, cfg.HistoryCacheTTL, nil)

	return s, nil
}

func newCacheBackend(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (cache.Backend, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		log.Debugf("activity cache in redis, key: %s", cfg.CacheRedisKey)
		return cache.NewRedisBackend(redisClient, cfg.CacheRedisKey), nil
	case config.CacheBackendMemory:
		log.Warnln("using in-memory activity cache, unflushed activity is lost on restart")
		return cache.NewMemoryBackend(), nil
	default:
		log.Debugf("activity cache in sqlite: %s", cfg.CacheSQLitePath)
		backend, err := cache.NewSQLiteBackend(ctx, cfg.CacheSQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite activity cache: %w", err)
		}
		return backend, nil
	}
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("fitsync-router"))

	var rateLimiter middleware.RequestRateLimiter
	if s.redisClient != nil {
		rateLimiter = redis_rate.NewLimiter(s.redisClient)
	}

	misc.NewHandler(s.versionInfo, s.scheduler, s.sessions).SetupRoutes(r)
	session.NewHandler(s.sessions).SetupRoutes(r)
	sensor.NewHandler(s.sessions, s.feed).SetupRoutes(
		r,
		rateLimiter,
		s.config.ReadingsRateLimitPerMin,
		s.metricsManager,
	)
	api.NewHandler(s.reconciler, s.scheduler, s.history, s.objectives, nil).SetupRoutes(r)
	objectives.NewHandler(s.objectives).SetupRoutes(r)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	identityMiddleware := middleware.NewIdentityMiddlewareHandler(s.verifier)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.CorsAllowedOrigins))
	r.Use(identityMiddleware.Identity())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", otelhttp.NewHandler(
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
		"metrics",
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// GracefulShutdown stops serving and releases all resources. An active session
// is not flushed: the cache is durable and is picked up on the next login.
func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	var err error

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown http server: %w", shutdownErr))
		}
		log.Warnln("server shut down")
	}
	if s.metricsHttpServer != nil {
		if shutdownErr := s.metricsHttpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown metrics http server: %w", shutdownErr))
		}
		log.Warnln("metrics server shut down")
	}

	s.sessions.Close()
	s.feed.Close()

	if closeErr := s.publisher.Close(); closeErr != nil {
		err = multierr.Append(err, fmt.Errorf("close flush publisher: %w", closeErr))
	}
	if closeErr := s.cacheBackend.Close(); closeErr != nil {
		err = multierr.Append(err, fmt.Errorf("close activity cache: %w", closeErr))
	}
	if s.redisClient != nil {
		if closeErr := s.redisClient.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close redis client: %w", closeErr))
		}
	}
	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	return err
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
