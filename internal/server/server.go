package server

import (
	"errors"

	"github.com/mserg12/Major-LocNation/internal/auth"
	"github.com/mserg12/Major-LocNation/internal/chat"
	"github.com/mserg12/Major-LocNation/internal/config"
	"github.com/mserg12/Major-LocNation/internal/listing"
	"github.com/mserg12/Major-LocNation/internal/saved"
	"github.com/mserg12/Major-LocNation/internal/stream"

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
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(cfg),
	})
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

// errorHandler renders handler errors as {"message": ...}. fiber.Error
// values keep their status and message; anything else becomes a 500,
// with the underlying error hidden in production.
func errorHandler(cfg config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := err.Error()

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		} else if cfg.IsProduction() {
			message = "Internal Server Error"
		}
		return c.Status(code).JSON(fiber.Map{"message": message})
	}
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret, s.Cfg.CookieName)
	optionalJwt := auth.OptionalJWTMiddleware(s.Cfg.JWTSecret, s.Cfg.CookieName)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB), s.Cfg.CookieName)
	listing.RegisterRoutes(s.App.Group("/posts"), listing.NewService(s.DB), jwtMiddleware, optionalJwt)
	saved.RegisterRoutes(s.App.Group("/users"), saved.NewService(s.DB), jwtMiddleware)

	chatSvc := chat.NewService(s.DB, s.Stream)
	chat.RegisterRoutes(s.App.Group("/chats"), chatSvc, jwtMiddleware)
	chat.RegisterMessageRoutes(s.App.Group("/messages"), chatSvc, jwtMiddleware)

	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
