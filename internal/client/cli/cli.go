// Package cli содержит команды клиента jobtrail
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/iudanet/jobtrail/internal/client/api"
	"github.com/iudanet/jobtrail/internal/client/config"
	"github.com/iudanet/jobtrail/internal/client/data"
	"github.com/iudanet/jobtrail/internal/client/geocode"
	"github.com/iudanet/jobtrail/internal/client/moderation"
	"github.com/iudanet/jobtrail/internal/client/storage/boltdb"
	"github.com/iudanet/jobtrail/internal/client/sync"
	"github.com/iudanet/jobtrail/internal/logging"
	"github.com/iudanet/jobtrail/internal/models"
)

// LocalUser используется, когда пользователь не настроен
const LocalUser = "local"

// refresher подтягивает серверные строки одной коллекции
type refresher struct {
	refresh    func(ctx context.Context) (int, error)
	collection models.Collection
}

// Cli holds the services shared by all commands. It is populated by open
// before a command runs.
type Cli struct {
	cfg       config.Config
	logger    *slog.Logger
	logCloser io.Closer
	store     *boltdb.Storage
	apiClient *api.Client
	conn      sync.Connectivity

	companies    data.CompanyService
	applications data.ApplicationService
	tracking     data.TrackingService
	privates     data.PrivateCompanyService
	syncService  sync.Service
	refreshers   []refresher
	geocoder     geocode.Geocoder
	moderation   *moderation.Service

	output string // output формат вывода: auto, table, json
	userID string
}

func (c *Cli) open(ctx context.Context, cfg config.Config) error {
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	c.logCloser = closer

	c.userID, err = cfg.UserID()
	if err != nil {
		c.logger.DebugContext(ctx, "User is not configured, using local user", slog.Any("error", err))
		c.userID = LocalUser
	}

	c.store, err = boltdb.New(ctx, cfg.Storage.Path)
	if err != nil {
		_ = closer.Close()
		return fmt.Errorf("failed to open database: %w", err)
	}

	c.apiClient = api.NewClient(cfg.Gateway.URL,
		api.WithAPIKey(cfg.Gateway.APIKey),
		api.WithToken(cfg.Gateway.Token),
		api.WithTimeout(cfg.Gateway.Timeout),
		api.WithLogger(logger),
	)

	if cfg.Sync.Offline {
		c.conn = sync.NewStatic(false)
	} else {
		c.conn = sync.NewMonitor(c.apiClient, cfg.Sync.OnlineCheckInterval, logger)
	}

	companies := sync.NewSynchronizer[*models.Company](
		api.NewTable[*models.Company](c.apiClient, string(models.CollectionCompanies)), c.store, c.conn, logger)
	applications := sync.NewSynchronizer[*models.JobApplication](
		api.NewTable[*models.JobApplication](c.apiClient, string(models.CollectionJobApplications)), c.store, c.conn, logger)
	privates := sync.NewSynchronizer[*models.PrivateCompany](
		api.NewTable[*models.PrivateCompany](c.apiClient, string(models.CollectionPrivateCompanies)), c.store, c.conn, logger)
	tracking := sync.NewSynchronizer[*models.TrackingRecord](
		api.NewTable[*models.TrackingRecord](c.apiClient, string(models.CollectionTracking)), c.store, c.conn, logger)

	c.syncService = sync.NewManager(c.store, c.conn, logger, companies, applications, privates, tracking)

	byUser := func() *api.Query { return api.NewQuery().Eq("user_id", c.userID) }
	c.refreshers = []refresher{
		{collection: companies.Collection(), refresh: func(ctx context.Context) (int, error) { return companies.Refresh(ctx, nil) }},
		{collection: applications.Collection(), refresh: func(ctx context.Context) (int, error) { return applications.Refresh(ctx, byUser()) }},
		{collection: privates.Collection(), refresh: func(ctx context.Context) (int, error) { return privates.Refresh(ctx, byUser()) }},
		{collection: tracking.Collection(), refresh: func(ctx context.Context) (int, error) { return tracking.Refresh(ctx, byUser()) }},
	}

	cache, err := geocode.NewCache(c.store, cfg.Geocode.CacheSize, cfg.Geocode.CacheTTL, logger)
	if err != nil {
		_ = c.close()
		return err
	}
	c.geocoder = geocode.NewClient(cfg.Geocode.URL, geocode.NewLimiter(cfg.Geocode.MinInterval), cache, logger,
		geocode.WithUserAgent(cfg.Geocode.UserAgent))

	var home *data.HomeArea
	if cfg.Home.IsSet() {
		home = &data.HomeArea{
			Center: geocode.Point{Latitude: cfg.Home.Latitude, Longitude: cfg.Home.Longitude},
			Radius: cfg.Home.RadiusMiles,
		}
	}

	c.companies = data.NewCompanyService(companies, c.geocoder, home, c.userID, logger)
	c.applications = data.NewApplicationService(applications, c.userID, logger)
	c.privates = data.NewPrivateCompanyService(privates, c.geocoder, c.userID, logger)
	c.tracking = data.NewTrackingService(tracking, companies, c.userID, logger)

	c.moderation = moderation.NewService(
		api.NewTable[*models.EditSuggestion](c.apiClient, moderation.CollectionSuggestions),
		api.NewTable[*models.Company](c.apiClient, string(models.CollectionCompanies)),
		c.userID, logger)

	return nil
}

func (c *Cli) close() error {
	var errs []error
	if c.store != nil {
		errs = append(errs, c.store.Close())
		c.store = nil
	}
	if c.logCloser != nil {
		errs = append(errs, c.logCloser.Close())
		c.logCloser = nil
	}
	return errors.Join(errs...)
}
