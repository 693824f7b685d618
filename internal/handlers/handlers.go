package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"hackdir/internal/cache"
	"hackdir/internal/config"
	"hackdir/internal/metrics"
	"hackdir/internal/middleware"
	"hackdir/internal/repository"
	"hackdir/internal/service"
)

// Services are the collaborators the handlers call into.
type Services struct {
	Auth         *service.AuthService
	Sessions     *service.SessionService
	Participants *service.ParticipantService
	Directory    *service.DirectoryService
	Lookup       service.ParticipantLookup
}

// NewServices wires the repositories and services over the given stores.
func NewServices(db repository.DBTX, redisClient *redis.Client, cfg *config.AppConfig, log zerolog.Logger) Services {
	participantRepo := repository.NewParticipantRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	directoryCache := cache.NewDirectoryCache(redisClient)

	sessions := service.NewSessionService(sessionRepo, participantRepo, log)

	return Services{
		Auth:         service.NewAuthService(participantRepo, sessions, cfg.Security.UpgradeLegacyHashes, log),
		Sessions:     sessions,
		Participants: service.NewParticipantService(participantRepo, directoryCache, cfg.Teams, log),
		Directory:    service.NewDirectoryService(participantRepo, directoryCache, cfg.Directory.CacheTTL, log),
		Lookup:       participantRepo,
	}
}

// HealthChecks report backing store reachability.
type HealthChecks struct {
	Database func(ctx context.Context) error
	Cache    func(ctx context.Context) error
}

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	auth         *service.AuthService
	sessions     *service.SessionService
	participants *service.ParticipantService
	directory    *service.DirectoryService
	lookup       service.ParticipantLookup
	health       HealthChecks
	metrics      *metrics.Metrics
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, svc Services, health HealthChecks, m *metrics.Metrics) HandlerSet {
	return HandlerSet{
		log:          log,
		cfg:          cfg,
		auth:         svc.Auth,
		sessions:     svc.Sessions,
		participants: svc.Participants,
		directory:    svc.Directory,
		lookup:       svc.Lookup,
		health:       health,
		metrics:      m,
	}
}

func (h HandlerSet) cookie() middleware.CookieOptions {
	return middleware.CookieOptions{
		Name:   h.cfg.Session.CookieName,
		Secure: h.cfg.SecureCookies(),
	}
}

func (h HandlerSet) gate(mode middleware.GateMode) gin.HandlerFunc {
	return middleware.Gatekeeper(middleware.GateConfig{
		Mode:      mode,
		LoginPath: h.cfg.Session.LoginPath,
		HomePath:  h.cfg.Session.HomePath,
		Cookie:    h.cookie(),
	}, h.sessions, h.metrics, h.log)
}

func (h HandlerSet) attachSession() gin.HandlerFunc {
	return middleware.AttachSession(h.cfg.Session.CookieName, h.sessions, func(err error) {
		if !errorsIsUnauthenticated(err) {
			h.log.Error().Err(err).Msg("resolve current session failed")
		}
	})
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	pages := router.Group("")
	pages.Use(h.gate(middleware.PageMode), h.attachSession())
	{
		pages.GET(h.cfg.Session.LoginPath, h.LoginPage)
		pages.GET("/", h.Directory)
		pages.GET("/p/:id", h.ParticipantDetail)
		pages.GET("/profile", h.ProfilePage)
	}

	api := router.Group("/api")
	api.GET("/healthz", h.Health)

	auth := api.Group("/auth")
	auth.Use(middleware.SameOrigin(), h.attachSession())
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}

	protected := api.Group("")
	protected.Use(h.gate(middleware.APIMode), h.attachSession())
	{
		protected.PUT("/profile", h.UpdateProfile)
		protected.POST("/team", h.ManageTeam)
	}
}
