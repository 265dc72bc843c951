// Package app wires repositories, services and side channels from Config.
// Both the HTTP server and the maintenance commands build on it.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"crimewatch/config"
	"crimewatch/internal/cache"
	"crimewatch/internal/database"
	"crimewatch/internal/events"
	"crimewatch/internal/logger"
	"crimewatch/internal/repository"
	"crimewatch/internal/service"
	"crimewatch/internal/ws"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Repositories struct {
	Users         *repository.UserRepository
	Zones         *repository.ZoneRepository
	History       *repository.LocationHistoryRepository
	CrimeReports  *repository.CrimeReportRepository
	Notifications *repository.NotificationRepository
}

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Repos  Repositories

	Zones         *service.ZoneService
	Generator     *service.ZoneGenerator
	Locations     *service.LocationService
	Notifications *service.NotificationService
	Push          *service.PushDispatcher
	Hub           *ws.AlertHub

	redis *redis.Client
	nats  *nats.Conn
	log   *slog.Logger
}

// New opens the database and optional Redis/NATS connections and builds the
// services. Redis and NATS failures are logged and the feature disabled.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.Component("app")
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	a := &App{Config: cfg, DB: db, log: log}
	a.Repos = Repositories{
		Users:         repository.NewUserRepository(db),
		Zones:         repository.NewZoneRepository(db),
		History:       repository.NewLocationHistoryRepository(db),
		CrimeReports:  repository.NewCrimeReportRepository(db),
		Notifications: repository.NewNotificationRepository(db),
	}

	a.redis, err = cache.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, zone cache disabled", "err", err)
		a.redis = nil
	}
	a.nats, err = events.Connect(cfg.NATS)
	if err != nil {
		log.Warn("nats unavailable, events disabled", "err", err)
		a.nats = nil
	}
	pub := eventPublisher(events.NewPublisher(a.nats, cfg.NATS.SubjectPrefix))
	zoneCache := activeZoneCache(cache.NewZoneCache(a.redis, cfg.Redis.ZoneCacheTTL))

	a.Hub = ws.NewAlertHub()
	channels := []service.PushChannel{service.HubChannel{Hub: a.Hub}}
	if fcm := service.NewFCMService(ctx, cfg.Firebase.ServiceAccountPath); fcm != nil {
		log.Info("push notifications enabled")
		channels = append(channels, service.FCMChannel{FCM: fcm, Users: a.Repos.Users})
	} else if cfg.Firebase.ServiceAccountPath != "" {
		log.Warn("push notifications disabled: failed to init (check service account file)")
	} else {
		log.Info("push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	if pub != nil {
		channels = append(channels, service.EventChannel{Events: pub})
	}
	g := cfg.Geofence
	a.Push = service.NewPushDispatcher(g.PushWorkers, g.PushQueueSize, g.PushTimeout, a.Repos.Notifications, channels...)
	a.Push.Start()

	a.Zones = service.NewZoneService(a.Repos.Zones, a.Repos.CrimeReports, zoneCache, pub)
	a.Generator = service.NewZoneGenerator(a.Zones, a.Repos.CrimeReports, service.GeneratorConfig{
		Lookback:            g.AutoGenLookback,
		MinReports:          g.AutoGenMinReports,
		MaxClusters:         g.AutoGenMaxClusters,
		RadiusMeters:        g.AutoGenRadiusMeters,
		DuplicateZoneMeters: g.DuplicateZoneMeters,
	})
	a.Notifications = service.NewNotificationService(a.Repos.Notifications, a.Push)
	a.Locations = service.NewLocationService(
		a.Zones,
		a.Repos.History,
		a.Repos.Users,
		service.NewAlertDeduplicator(a.Repos.History, g.AlertWindow),
		a.Notifications,
		pub,
	)
	a.Locations.SetHistoryLimits(g.HistoryDefaultLimit, g.HistoryMaxLimit)
	return a, nil
}

// eventPublisher and activeZoneCache return an untyped nil interface for a
// disabled backend, so the services fall back to their no-op implementations.
func eventPublisher(p *events.Publisher) service.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

func activeZoneCache(c *cache.ZoneCache) service.ActiveZoneCache {
	if c == nil {
		return nil
	}
	return c
}

// Migrate creates or updates the schema.
func (a *App) Migrate() error {
	return database.AutoMigrate(a.DB)
}

// Close drains queued pushes and closes connections.
func (a *App) Close() {
	a.Push.Close()
	if a.nats != nil {
		if err := a.nats.Drain(); err != nil {
			a.log.Warn("nats drain", "err", err)
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
