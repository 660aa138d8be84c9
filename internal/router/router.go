package router

import (
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"cloud.google.com/go/firestore"

	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/handlers"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/middleware"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/platform"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/realtime"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/repositories"
	appsync "github.com/cochranfilms/CourseCreatorAcademy-sub000/internal/sync"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/pkg/config"
	"github.com/cochranfilms/CourseCreatorAcademy-sub000/pkg/logger"
)

// SetupMiddleware configures global Echo middleware.
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes wires repositories, the sync engine manager, the realtime hub
// and all handlers. It returns the hub and manager so main can shut them
// down. redisClient may be nil for single-instance deployments.
func SetupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	fsClient *firestore.Client,
	authClient *auth.Client,
	redisClient *goredis.Client,
) (*realtime.Hub, *appsync.Manager) {
	log := logger.Get()

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Repositories ---
	threadRepo := repositories.NewFirestoreThreadRepository(fsClient)
	userRepo := repositories.NewFirestoreUserRepository(fsClient)
	notificationRepo := repositories.NewFirestoreNotificationRepository(fsClient)
	postRepo := repositories.NewFirestorePostRepository(fsClient)
	legacyRepo := repositories.NewFirestoreLegacySubscriptionRepository(fsClient)

	// --- Realtime hub and per-user sync engines ---
	hub := realtime.NewHub(redisClient, *log)
	manager := appsync.NewManager(threadRepo, userRepo, notificationRepo, hub, cfg.NotificationFeedSize, *log)
	hub.SetEngineManager(manager)
	go hub.Run()

	receipts := appsync.NewReceiptWriter(threadRepo, cfg.MessagePageSize, *log)
	platformClient := platform.NewClient(cfg.PlatformAPIBaseURL, *log)
	tickets := realtime.NewTicketIssuer(cfg.TicketSecret, time.Duration(cfg.TicketTTLSeconds)*time.Second)

	// --- Protected routes (require a Firebase ID token) ---
	api := e.Group("/api")
	api.Use(middleware.FirebaseAuthMiddleware(authClient))

	messageHandler := handlers.NewMessageHandler(threadRepo, userRepo, receipts, cfg.MessagePageSize, *log)
	messageHandler.RegisterMessageRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, cfg.NotificationFeedSize)
	notificationHandler.RegisterNotificationRoutes(api)

	postHandler := handlers.NewPostHandler(postRepo, userRepo, platformClient, *log)
	postHandler.RegisterPostRoutes(api)

	subscriptionHandler := handlers.NewSubscriptionHandler(legacyRepo, platformClient, *log)
	subscriptionHandler.RegisterSubscriptionRoutes(api)

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterUserRoutes(api)

	realtimeHandler := handlers.NewRealtimeHandler(hub, tickets, *log)
	realtimeHandler.RegisterTicketRoute(api)
	// The WS upgrade authenticates with a ticket, not a header.
	realtimeHandler.RegisterWebSocketRoute(e)

	log.Info().Msg("all routes configured")
	return hub, manager
}
