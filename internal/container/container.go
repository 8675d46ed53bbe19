package container

import (
	"context"
	"fmt"

	"github.com/parkvault/pv-backend/internal/api"
	"github.com/parkvault/pv-backend/internal/audit"
	"github.com/parkvault/pv-backend/internal/auth"
	"github.com/parkvault/pv-backend/internal/bookings"
	"github.com/parkvault/pv-backend/internal/config"
	"github.com/parkvault/pv-backend/internal/database"
	"github.com/parkvault/pv-backend/internal/logging"
	"github.com/parkvault/pv-backend/internal/rbac"
	"github.com/parkvault/pv-backend/internal/spots"
	"github.com/parkvault/pv-backend/internal/users"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	Config         *config.Config
	Database       *database.Database
	RedisClient    *redis.Client
	AuditRecorder  *audit.Recorder
	AuthService    *auth.AuthService
	Authenticator  *auth.Authenticator
	BookingService *bookings.Service
	SpotService    *spots.Service
	UserService    *users.Service
	Server         *api.Server
	Worker         *audit.Worker
}

func New(cfg config.Config) (*Container, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	recorder, err := audit.NewRecorder(&cfg.Redis)
	if err != nil {
		return nil, err
	}

	// Two separate Redis connection pools are used: the asynq audit
	// queue manages its own connection, and this client is used for
	// auth state (login attempts, refresh tokens).
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	jwtService, err := auth.NewJWTService([]byte(cfg.JWT.SigningKey), cfg.JWT.Issuer, cfg.JWT.Expiry)
	if err != nil {
		return nil, err
	}

	authService := auth.NewAuthService(redisClient, jwtService, db.Queries(), cfg.Auth)

	authenticator := auth.NewAuthenticator(jwtService, db.Queries())

	// The role catalog is read once at startup; grants only change via
	// migration.
	catalog, err := loadCatalog(db)
	if err != nil {
		return nil, err
	}
	authorizer := rbac.NewAuthorizer(catalog)

	bookingService := bookings.NewService(db.Queries(), db.Queries(), db.Queries(), authorizer, recorder)
	spotService := spots.NewService(db.Queries(), db.Queries(), authorizer)
	userService := users.NewService(db.Queries(), authorizer, cfg.Auth.BcryptCost)

	worker := audit.NewWorker(&cfg.Redis, db.Queries())

	server := api.NewServer(db, bookingService, spotService, userService, authService)

	logging.Info("Connected to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port)

	return &Container{
		Config:         &cfg,
		Database:       db,
		RedisClient:    redisClient,
		AuditRecorder:  recorder,
		AuthService:    authService,
		Authenticator:  authenticator,
		BookingService: bookingService,
		SpotService:    spotService,
		UserService:    userService,
		Server:         server,
		Worker:         worker,
	}, nil
}

func loadCatalog(db *database.Database) (*rbac.Catalog, error) {
	rows, err := db.Queries().ListRolePermissions(context.Background())
	if err != nil {
		return nil, fmt.Errorf("loading role permissions: %w", err)
	}

	grants := make([]rbac.Grant, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, rbac.Grant{
			Role:       rbac.Role(row.Role),
			Permission: rbac.Permission(row.Permission),
		})
	}

	if len(grants) == 0 {
		logging.Warn("no role permissions in database, using built-in catalog")
		return rbac.DefaultCatalog(), nil
	}
	return rbac.NewCatalog(grants), nil
}

func (c *Container) Cleanup() {
	if c.AuditRecorder != nil {
		c.AuditRecorder.Close()
		logging.Info("Audit recorder closed")
	}
	if c.Worker != nil {
		c.Worker.Close()
		logging.Info("Worker closed")
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
		logging.Info("Redis client closed")
	}
	if c.Database != nil {
		c.Database.Close()
		logging.Info("Database connection closed")
	}
}
