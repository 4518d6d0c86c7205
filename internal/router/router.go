package router

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/community/backend/internal/handlers"
	"github.com/anonto42/community/backend/internal/middleware"
	"github.com/anonto42/community/backend/internal/models"
	"github.com/anonto42/community/backend/internal/relations"
	"github.com/anonto42/community/backend/internal/repositories"
	"github.com/anonto42/community/backend/internal/session"
	"github.com/anonto42/community/backend/internal/validators"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/gorm"
)

// Dependencies are the stores and services the routes are built from
type Dependencies struct {
	Users         repositories.UserRepository
	Communities   repositories.CommunityRepository
	Posts         repositories.PostRepository
	Comments      repositories.CommentRepository
	Events        repositories.EventRepository
	Items         repositories.ItemRepository
	Notifications repositories.NotificationRepository
	Sessions      repositories.SessionRepository

	RelationsMode relations.Mode
	SessionSecret string
	SessionTTL    time.Duration
	SecureCookie  bool
	BcryptCost    int

	ChatTokens handlers.ChatTokens
	// Images may be nil, which disables /upload
	Images handlers.ImageStore

	// HealthChecks are run by GET /health
	HealthChecks map[string]handlers.HealthCheck
}

// NewDependencies builds the MongoDB and PostgreSQL backed repositories
func NewDependencies(mongoDB *mongo.Database, pgdb *gorm.DB) Dependencies {
	return Dependencies{
		Users:         repositories.NewMongoUserRepository(mongoDB),
		Communities:   repositories.NewMongoCommunityRepository(mongoDB),
		Posts:         repositories.NewMongoPostRepository(mongoDB),
		Comments:      repositories.NewMongoCommentRepository(mongoDB),
		Events:        repositories.NewMongoEventRepository(mongoDB),
		Items:         repositories.NewMongoItemRepository(mongoDB),
		Notifications: repositories.NewMongoNotificationRepository(mongoDB),
		Sessions:      repositories.NewPostgresSessionRepository(pgdb),
		HealthChecks: map[string]handlers.HealthCheck{
			"mongodb": func(ctx context.Context) error {
				return mongoDB.Client().Ping(ctx, readpref.Primary())
			},
			"postgres": func(ctx context.Context) error {
				sqlDB, err := pgdb.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		},
	}
}

// Migrate prepares both databases: the sessions table and the MongoDB indexes
func Migrate(ctx context.Context, mongoDB *mongo.Database, pgdb *gorm.DB) error {
	if err := pgdb.AutoMigrate(&models.Session{}); err != nil {
		return fmt.Errorf("failed to auto migrate sessions: %w", err)
	}
	log.Info().Msg("PostgreSQL auto-migrations completed.")

	if err := repositories.EnsureIndexes(ctx, mongoDB); err != nil {
		return err
	}
	log.Info().Msg("MongoDB indexes ensured.")
	return nil
}

// SetupRoutes configures all application routes and injects dependencies.
// It returns the session manager so the caller can purge expired sessions.
func SetupRoutes(e *echo.Echo, deps Dependencies) *session.Manager {
	e.Validator = validators.NewValidator()

	e.GET("/health", handlers.NewHealthHandler(deps.HealthChecks).Health)
	e.GET("/", handlers.Root)

	sessions := session.NewManager(deps.Sessions, deps.Users, deps.SessionSecret, deps.SessionTTL,
		session.WithSecureCookie(deps.SecureCookie))
	gate := middleware.NewSessionGate(sessions)

	maintainer := relations.NewMaintainer(deps.RelationsMode)
	graph := relations.NewGraph(deps.Users, deps.Communities, deps.Posts, deps.Events)
	log.Info().Str("mode", string(maintainer.Mode())).Msg("Relationship maintainer configured.")

	api := e.Group("")

	authHandler := handlers.NewAuthHandler(deps.Users, sessions, deps.ChatTokens, deps.BcryptCost)
	authHandler.RegisterAuthRoutes(api, gate)
	log.Info().Msg("Auth routes configured.")

	communityHandler := handlers.NewCommunityHandler(deps.Users, deps.Communities, deps.Posts,
		deps.Events, deps.Items, deps.Comments, maintainer, graph)
	communityHandler.RegisterCommunityRoutes(api, gate)
	log.Info().Msg("Community routes configured.")

	postHandler := handlers.NewPostHandler(deps.Posts, deps.Users, deps.Communities, deps.Comments, maintainer, graph)
	postHandler.RegisterPostRoutes(api, gate)
	log.Info().Msg("Post routes configured.")

	commentHandler := handlers.NewCommentHandler(deps.Comments, deps.Posts, deps.Notifications, maintainer, graph)
	commentHandler.RegisterCommentRoutes(api, gate)
	log.Info().Msg("Comment routes configured.")

	eventHandler := handlers.NewEventHandler(deps.Events, deps.Users, deps.Communities, maintainer, graph)
	eventHandler.RegisterEventRoutes(api, gate)
	log.Info().Msg("Event routes configured.")

	notificationHandler := handlers.NewNotificationHandler(deps.Notifications, deps.Users, deps.Communities, maintainer, graph)
	notificationHandler.RegisterNotificationRoutes(api, gate)
	log.Info().Msg("Notification routes configured.")

	itemHandler := handlers.NewItemHandler(deps.Items, deps.Communities)
	itemHandler.RegisterItemRoutes(api, gate)

	userHandler := handlers.NewUserHandler(deps.Users, deps.Communities)
	userHandler.RegisterProfileRoutes(api, gate)

	uploadHandler := handlers.NewUploadHandler(deps.Images)
	uploadHandler.RegisterUploadRoutes(api, gate)
	log.Info().Msg("Item, profile and upload routes configured.")

	log.Info().Msg("All routes configured.")
	return sessions
}
