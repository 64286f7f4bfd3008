package router

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/lostfound/recovery/backend/internal/handlers"
	"github.com/lostfound/recovery/backend/internal/middleware"
	"github.com/lostfound/recovery/backend/internal/repositories"
	"github.com/lostfound/recovery/backend/internal/services"
	"github.com/lostfound/recovery/backend/pkg/config"
	"github.com/lostfound/recovery/backend/pkg/firebase"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Deps are the connections the routes are built on. Mongo and Firebase are
// optional.
type Deps struct {
	Config   *config.Config
	Logger   *log.Logger
	Postgres *gorm.DB
	Mongo    *mongo.Client
	Firebase *firebase.App
}

// SetupRoutes migrates the schema, builds repositories and services, and
// registers every route
func SetupRoutes(e *echo.Echo, deps Deps) error {
	lg := deps.Logger

	if err := repositories.AutoMigrate(deps.Postgres); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	lg.Info("PostgreSQL auto-migrations completed")

	e.GET("/health", handlers.HealthCheck(deps.Postgres))

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	postRepo := repositories.NewPostgresPostRepository(deps.Postgres)
	conversationRepo := repositories.NewPostgresConversationRepository(deps.Postgres)
	messageRepo := repositories.NewPostgresMessageRepository(deps.Postgres)

	var notifiers services.Notifiers
	var notificationRepo *repositories.MongoMessageNotificationRepository
	if deps.Mongo != nil {
		notificationRepo = repositories.NewMongoMessageNotificationRepository(deps.Mongo.Database(deps.Config.MongoDatabase))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := notificationRepo.EnsureIndexes(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("ensure notification indexes: %w", err)
		}
		notifiers = append(notifiers, services.NewOutboxNotifier(notificationRepo))
		lg.Info("message notification outbox enabled")
	}
	if deps.Firebase != nil {
		notifiers = append(notifiers, firebase.NewPushNotifier(deps.Firebase.MessagingClient))
		lg.Info("FCM push notifications enabled")
	}

	// --- Initialize Services ---
	searchService := services.NewSearchService(postRepo, userRepo)
	conversationService := services.NewConversationService(conversationRepo, postRepo, userRepo, lg)
	var notifier services.MessageNotifier
	if len(notifiers) > 0 {
		notifier = notifiers
	}
	messageService := services.NewMessageService(conversationRepo, messageRepo, postRepo, userRepo, notifier, lg)

	api := e.Group("/api/v1")

	// Post reads are public
	handlers.NewSearchHandler(searchService).RegisterSearchRoutes(api)
	lg.Info("post search routes configured")

	auth, err := authMiddleware(deps, userRepo)
	if err != nil {
		return err
	}
	protected := e.Group("/api/v1", auth)
	lg.Info("authentication middleware applied", "mode", deps.Config.AuthMode)

	handlers.NewConversationHandler(conversationService, messageService).RegisterConversationRoutes(protected)
	lg.Info("conversation routes configured")

	if notificationRepo != nil {
		handlers.NewNotificationHandler(notificationRepo).RegisterNotificationRoutes(protected)
		lg.Info("notification routes configured")
	}

	lg.Info("all routes configured")
	return nil
}

func authMiddleware(deps Deps, users repositories.UserRepository) (echo.MiddlewareFunc, error) {
	switch deps.Config.AuthMode {
	case config.AuthModeFirebase:
		if deps.Firebase == nil {
			return nil, fmt.Errorf("AUTH_MODE=firebase requires FIREBASE_CREDENTIALS_PATH")
		}
		return middleware.FirebaseAuthMiddleware(deps.Firebase.AuthClient, users), nil
	case config.AuthModeJWT:
		return middleware.JWTAuthMiddleware(deps.Config.JWTSecret), nil
	default:
		return nil, fmt.Errorf("unknown AUTH_MODE %q", deps.Config.AuthMode)
	}
}
