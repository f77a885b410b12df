package server

import (
	"time"

	"backend-cityguide/internal/auth"
	"backend-cityguide/internal/catalog"
	"backend-cityguide/internal/config"
	"backend-cityguide/internal/interests"
	"backend-cityguide/internal/navigation"
	"backend-cityguide/internal/progress"
	"backend-cityguide/internal/proximity"
	"backend-cityguide/internal/stream"
	"backend-cityguide/internal/visits"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	window := time.Duration(s.Cfg.RevisitHours) * time.Hour

	catalogSvc := catalog.NewService(s.DB)
	visitSvc := visits.NewService(s.DB, window)
	proximitySvc := proximity.NewService(s.DB, window, s.Cfg.SurfaceRadiusM)
	progressSvc := progress.NewService(s.DB, visitSvc, catalogSvc)
	interestSvc := interests.NewService(s.DB)
	navSvc := navigation.NewService(s.DB, catalogSvc, proximitySvc, visitSvc, progressSvc,
		s.Stream, s.Cfg.SurfaceRadiusM, s.Cfg.NearThresholdM)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	catalog.RegisterRoutes(s.App.Group("/pois"), catalogSvc, interestSvc, jwtMiddleware)
	navigation.RegisterRoutes(s.App, navSvc, jwtMiddleware)
	progress.RegisterRoutes(s.App.Group("/stats"), progressSvc, jwtMiddleware)
	interests.RegisterRoutes(s.App.Group("/interests"), interestSvc, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
