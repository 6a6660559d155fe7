// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"edman-service/internal/config"
	"edman-service/internal/db"
	authHandler "edman-service/internal/handlers/auth"
	catalogHandler "edman-service/internal/handlers/catalog"
	commissionHandler "edman-service/internal/handlers/commission"
	dashboardHandler "edman-service/internal/handlers/dashboard"
	leadHandler "edman-service/internal/handlers/lead"
	payoutHandler "edman-service/internal/handlers/payout"
	userHandler "edman-service/internal/handlers/user"
	wsHandler "edman-service/internal/handlers/websocket"
	"edman-service/internal/middleware"
	"edman-service/internal/pkg/jwt"
	"edman-service/internal/pkg/session"
	"edman-service/internal/pkg/validation"
	"edman-service/internal/repository/postgres"
	"edman-service/internal/service/access"
	authUsecase "edman-service/internal/service/auth"
	catalogUsecase "edman-service/internal/service/catalog"
	commissionUsecase "edman-service/internal/service/commission"
	dashboardUsecase "edman-service/internal/service/dashboard"
	leadUsecase "edman-service/internal/service/lead"
	payoutUsecase "edman-service/internal/service/payout"
	scheduleUsecase "edman-service/internal/service/schedule"
	userUsecase "edman-service/internal/service/user"
	"edman-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	httpServer *http.Server
	pool       *pgxpool.Pool
	redis      *redis.Client
	scheduler  *scheduleUsecase.FollowUpScheduler
	stopHub    context.CancelFunc
}

func NewServer() (*Server, error) {
	cfg := config.Load()

	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &Server{cfg: cfg, engine: gin.New(), logger: logger}, nil
}

func (s *Server) Logger() *zap.Logger { return s.logger }

// Start connects the stores, wires every component and serves HTTP until
// Shutdown is called.
func (s *Server) Start() error {
	ctx := context.Background()
	logger := s.logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL, s.cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool
	if err := db.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	logger.Info("postgres connected and migrated")

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Address:  s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	s.redis = redisClient
	logger.Info("redis connected", zap.String("addr", s.cfg.RedisAddr))

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Session Manager & Rate Limiter -----
	sessionManager := session.NewManager(redisClient)
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	userRepo := postgres.NewUserRepository(pool)
	centerRepo := postgres.NewCenterRepository(pool)
	courseRepo := postgres.NewCourseRepository(pool)
	leadRepo := postgres.NewLeadRepository(pool)
	commissionRepo := postgres.NewCommissionRepository(pool)
	payoutRepo := postgres.NewPayoutRepository(pool)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(jwtManager.Verifier, sessionManager, logger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	s.stopHub = stopHub
	go hub.Run(hubCtx)

	// ----- Services (Usecases) -----
	accessService := access.NewService(centerRepo)
	authService := authUsecase.NewAuthService(
		dbWrapper,
		userRepo,
		centerRepo,
		courseRepo,
		jwtManager,
		sessionManager,
		rateLimiter,
		logger,
	)
	userService := userUsecase.NewUserService(dbWrapper, userRepo, centerRepo, authService, logger)
	catalogService := catalogUsecase.NewCatalogService(courseRepo, centerRepo, accessService, logger)
	leadService := leadUsecase.NewLeadService(
		dbWrapper,
		leadRepo,
		courseRepo,
		commissionRepo,
		userRepo,
		accessService,
		hub,
		logger,
	)
	commissionService := commissionUsecase.NewCommissionService(commissionRepo, logger)
	payoutService := payoutUsecase.NewPayoutService(dbWrapper, payoutRepo, commissionRepo, hub, logger)
	dashboardService := dashboardUsecase.NewDashboardService(
		leadRepo,
		commissionRepo,
		payoutRepo,
		userRepo,
		centerRepo,
		courseRepo,
		accessService,
		logger,
	)

	// ----- Seed -----
	seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = authService.EnsureSeedData(seedCtx, s.cfg.SeedPassword)
	cancel()
	if err != nil {
		// Don't fail startup, just log the error
		logger.Error("failed to seed initial data", zap.Error(err))
	}

	// ----- Jobs -----
	s.scheduler = scheduleUsecase.NewFollowUpScheduler(leadRepo, hub, logger)
	if err := s.scheduler.Start(s.cfg.FollowUpCron); err != nil {
		return err
	}

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:       authHandler.NewAuthHandler(authService, s.cfg.CookieSecure, logger),
		UserHandler:       userHandler.NewUserHandler(userService, logger),
		CatalogHandler:    catalogHandler.NewCatalogHandler(catalogService, logger),
		LeadHandler:       leadHandler.NewLeadHandler(leadService, logger),
		CommissionHandler: commissionHandler.NewCommissionHandler(commissionService, logger),
		PayoutHandler:     payoutHandler.NewPayoutHandler(payoutService, logger),
		DashboardHandler:  dashboardHandler.NewDashboardHandler(dashboardService, logger),
		WSHandler:         wsHandler.NewWebSocketHandler(hub, s.cfg.CORSOrigins, logger),
		AuthMiddleware:    middleware.NewAuthMiddleware(authService),
	}

	// ----- Middlewares -----
	if err := validation.Register(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}
	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(s.cfg.CORSOrigins),
	)

	// ----- Router -----
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	s.httpServer = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr), zap.String("env", s.cfg.AppEnv))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains HTTP, stops the jobs and the hub, then closes the stores.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.scheduler != nil {
		s.scheduler.Stop(ctx)
	}
	if s.stopHub != nil {
		s.stopHub()
	}
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil {
			s.logger.Warn("failed to close redis", zap.Error(cerr))
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	_ = s.logger.Sync()
	return err
}
