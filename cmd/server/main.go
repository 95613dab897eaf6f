package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"inmobiliaria-backend/internal/admin"
	"inmobiliaria-backend/internal/audit"
	"inmobiliaria-backend/internal/auth"
	"inmobiliaria-backend/internal/catalog"
	"inmobiliaria-backend/internal/config"
	"inmobiliaria-backend/internal/database"
	"inmobiliaria-backend/internal/geo"
	"inmobiliaria-backend/internal/identity"
	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/mapview"
	"inmobiliaria-backend/internal/middleware"
	"inmobiliaria-backend/internal/notify"
	"inmobiliaria-backend/internal/site"
	"inmobiliaria-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config yüklenemedi: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger oluşturulamadı: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	for _, w := range cfg.Warnings() {
		log.Warn(w, nil)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("Sunucu durdu", nil)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Init(cfg, log)
	if err != nil {
		return err
	}

	// Token iptali: Redis varsa paylaşımlı, yoksa süreç içi
	var revoker identity.Revoker = identity.NewMemoryRevoker()
	if cfg.Redis.Enabled {
		rdb := database.NewRedis(cfg.Redis)
		defer rdb.Close()
		if err := rdb.Ping(ctx); err != nil {
			return err
		}
		revoker = identity.NewRedisRevoker(rdb.Client)
		log.Info("Redis bağlantısı başarılı", map[string]interface{}{"address": cfg.Redis.Address})
	}

	repo := store.NewGormRepository(db)
	settings := store.NewSettingsRepository(db)
	inquiries := store.NewInquiryRepository(db)
	users := store.NewAdminUserRepository(db)

	source, cleanup, err := buildCatalog(ctx, cfg, repo, log)
	if err != nil {
		return err
	}
	defer cleanup()

	allow := identity.NewAllowList(cfg.Auth.AllowedEmails)
	provider := buildProvider(cfg, users, allow, revoker)
	cancelAuthLog := provider.OnAuthChange(func(ev identity.Event) {
		fields := map[string]interface{}{"event": string(ev.Type)}
		if ev.User != nil {
			fields["email"] = ev.User.Email
		}
		log.Info("Oturum olayı", fields)
	})
	defer cancelAuthLog()

	notifier, err := buildNotifier(ctx, cfg, log)
	if err != nil {
		return err
	}

	clusterOpts := geo.DefaultClusterOptions()
	clusterOpts.Radius = cfg.Map.ClusterRadius
	clusterOpts.MaxZoom = cfg.Map.MaxZoom
	maps := mapview.NewStore(cfg.Map.SessionTTL, clusterOpts)
	defer maps.Stop()

	auditSvc := audit.NewService(db, repo)
	guard := catalog.NewGuard()

	app := newApp(cfg, log)
	registerRoutes(app, routeDeps{
		log:       log,
		db:        db,
		source:    source,
		repo:      repo,
		settings:  settings,
		inquiries: inquiries,
		users:     users,
		allow:     allow,
		provider:  provider,
		notifier:  notifier,
		maps:      maps,
		audit:     auditSvc,
		guard:     guard,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("Sunucu başlatılıyor", map[string]interface{}{"port": cfg.Server.Port})
		errCh <- app.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("Kapanış sinyali alındı", nil)
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}

func newApp(cfg *config.Config, log logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: cfg.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *fiber.Error
			if errors.As(err, &e) {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.WithError(err).Error("Beklenmeyen hata", map[string]interface{}{
				"method": c.Method(),
				"path":   c.Path(),
			})
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error inesperado del servidor",
			})
		},
	})

	app.Use(recover.New())

	// CORS origins'i virgülle ayrılmış string'den temizle
	corsOrigins := strings.Split(cfg.Server.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	origins := strings.Join(corsOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		// admin_token cookie'si için; "*" ile birlikte kullanılamaz
		AllowCredentials: origins != "*",
	}))
	app.Use(middleware.RequestLogger(log))
	return app
}

// buildCatalog herkese açık sayfaların kataloğunu kurar.
// static: gömülü seed. store: Postgres + ccache (+ memcache).
func buildCatalog(ctx context.Context, cfg *config.Config, repo *store.GormRepository, log logger.Logger) (catalog.Source, func(), error) {
	seed, err := catalog.LoadSeed()
	if err != nil {
		return nil, nil, fmt.Errorf("statik katalog yüklenemedi: %w", err)
	}

	if cfg.Catalog.Source == "static" {
		log.Info("Statik katalog kullanılıyor", map[string]interface{}{"properties": len(seed.Properties)})
		return catalog.NewStaticSource(seed), func() {}, nil
	}

	if cfg.Catalog.SeedStore {
		n, err := store.SeedIfEmpty(ctx, repo, seed.Properties)
		if err != nil {
			return nil, nil, fmt.Errorf("depo seed edilemedi: %w", err)
		}
		if n > 0 {
			log.Info("Depo statik katalogdan dolduruldu", map[string]interface{}{"properties": n})
		}
	}

	opts := catalog.CacheOptions{TTL: cfg.Catalog.TTL, Logger: log}
	if len(cfg.Catalog.MemcacheServers) > 0 {
		opts.Remote = catalog.NewMemcacheStore(cfg.Catalog.MemcacheServers, cfg.Catalog.TTL, log)
	}
	cache := catalog.NewCache(seed, repo.List, opts)
	return cache, cache.Stop, nil
}

func buildProvider(cfg *config.Config, users *store.AdminUserRepository, allow identity.AllowList, revoker identity.Revoker) identity.Provider {
	if cfg.Auth.Provider == "oidc" {
		return identity.NewOIDCProvider(identity.OIDCOptions{
			UserInfoURL: cfg.Auth.OIDC.UserInfoURL,
			Timeout:     cfg.Auth.OIDC.Timeout,
			Allow:       allow,
			Revoker:     revoker,
			RevokeTTL:   cfg.Auth.TokenTTL,
		})
	}
	return identity.NewLocalProvider(users, identity.LocalOptions{
		Secret:  []byte(cfg.Auth.JWTSecret),
		TTL:     cfg.Auth.TokenTTL,
		Allow:   allow,
		Revoker: revoker,
	})
}

func buildNotifier(ctx context.Context, cfg *config.Config, log logger.Logger) (notify.Notifier, error) {
	if !cfg.Notify.Enabled {
		return notify.Noop{}, nil
	}

	var targets []notify.Notifier
	if cfg.Notify.SESRecipient != "" {
		ses, err := notify.NewSESNotifier(ctx, cfg.Notify.AWSRegion, cfg.Notify.SESSender, cfg.Notify.SESRecipient)
		if err != nil {
			return nil, err
		}
		targets = append(targets, ses)
	}
	if cfg.Notify.SNSPhone != "" {
		sns, err := notify.NewSNSNotifier(ctx, cfg.Notify.AWSRegion, cfg.Notify.SNSPhone)
		if err != nil {
			return nil, err
		}
		targets = append(targets, sns)
	}
	log.Info("Bildirimler etkin", map[string]interface{}{"targets": len(targets)})
	return notify.NewMulti(log, targets...), nil
}

type routeDeps struct {
	log       logger.Logger
	db        *gorm.DB
	source    catalog.Source
	repo      *store.GormRepository
	settings  *store.SettingsRepository
	inquiries *store.InquiryRepository
	users     *store.AdminUserRepository
	allow     identity.AllowList
	provider  identity.Provider
	notifier  notify.Notifier
	maps      *mapview.Store
	audit     *audit.Service
	guard     *catalog.Guard
}

func registerRoutes(app *fiber.App, d routeDeps) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		sqlDB, err := d.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "database": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Herkese açık site
	api.Get("/home", site.HomeHandler(d.source, d.settings, d.log))
	api.Get("/properties", site.ListPropertiesHandler(d.source, d.log))
	api.Get("/properties/:id", site.PropertyDetailHandler(d.source, d.settings, d.log))
	api.Get("/map", site.MapHandler(d.source, d.maps, d.log))
	api.Post("/map/select", site.SelectHandler(d.source, d.maps, d.log))
	api.Delete("/map/select", site.ClearSelectionHandler(d.source, d.maps, d.log))
	api.Get("/locations", site.LocationsHandler(d.source, d.log))
	api.Get("/testimonials", site.TestimonialsHandler(d.source, d.log))
	api.Get("/settings", site.SettingsHandler(d.settings, d.log))
	api.Post("/contact", site.ContactHandler(d.inquiries, d.notifier, d.settings, d.log))

	// Public auth
	api.Post("/auth/register", auth.RegisterAdminHandler(d.users, d.allow))
	api.Post("/auth/login", auth.LoginHandler(d.provider, d.log))
	api.Post("/auth/logout", auth.LogoutHandler(d.provider, d.log))
	api.Post("/auth/refresh", auth.RefreshHandler(d.provider, d.log))

	// Protected
	guard := auth.Guard(d.provider, d.log)
	api.Get("/auth/me", guard, auth.MeHandler())

	adminRoutes := api.Group("/admin", guard)

	props := admin.Deps{
		Repo:    d.repo,
		Catalog: d.source,
		Guard:   d.guard,
		Audit:   d.audit,
		Log:     d.log,
	}
	adminRoutes.Get("/dashboard", admin.DashboardHandler(props))

	// İlan yönetimi (export/import :id'den önce)
	adminRoutes.Get("/properties/export", admin.ExportPropertiesHandler(props))
	adminRoutes.Post("/properties/import", admin.ImportPropertiesHandler(props))
	adminRoutes.Get("/properties", admin.ListPropertiesHandler(props))
	adminRoutes.Post("/properties", admin.CreatePropertyHandler(props))
	adminRoutes.Get("/properties/:id", admin.GetPropertyHandler(props))
	adminRoutes.Put("/properties/:id", admin.UpdatePropertyHandler(props))
	adminRoutes.Patch("/properties/:id/sold", admin.ToggleSoldHandler(props))
	adminRoutes.Delete("/properties/:id", admin.DeletePropertyHandler(props))

	adminRoutes.Get("/locations", admin.LocationOptionsHandler(d.source, d.log))
	adminRoutes.Get("/settings", admin.GetSettingsHandler(d.settings, d.log))
	adminRoutes.Put("/settings", admin.UpdateSettingsHandler(d.settings, d.audit, d.log))
	adminRoutes.Get("/inquiries", admin.ListInquiriesHandler(d.inquiries, d.log))

	// Audit log
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler(d.audit))
	adminRoutes.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler(d.audit, d.source, d.guard, d.log))
}
