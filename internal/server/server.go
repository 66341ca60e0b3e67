package server

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"anoa.com/tradesphere/internal/config"
	"anoa.com/tradesphere/internal/middleware"
	"anoa.com/tradesphere/internal/observability"
	"anoa.com/tradesphere/pkg/ratelimiter"
	"anoa.com/tradesphere/pkg/response"
	"anoa.com/tradesphere/pkg/storage"

	attachmentHttp "anoa.com/tradesphere/internal/modules/attachment/delivery/http"
	attachmentRepo "anoa.com/tradesphere/internal/modules/attachment/repository"
	attachmentService "anoa.com/tradesphere/internal/modules/attachment/service"

	categoryHttp "anoa.com/tradesphere/internal/modules/category/delivery/http"
	categoryRepo "anoa.com/tradesphere/internal/modules/category/repository"
	categoryService "anoa.com/tradesphere/internal/modules/category/service"

	favoriteHttp "anoa.com/tradesphere/internal/modules/favorite/delivery/http"
	favoriteRepo "anoa.com/tradesphere/internal/modules/favorite/repository"
	favoriteService "anoa.com/tradesphere/internal/modules/favorite/service"

	listingHttp "anoa.com/tradesphere/internal/modules/listing/delivery/http"
	listingRepo "anoa.com/tradesphere/internal/modules/listing/repository"
	listingService "anoa.com/tradesphere/internal/modules/listing/service"

	messageHttp "anoa.com/tradesphere/internal/modules/message/delivery/http"
	messageRepo "anoa.com/tradesphere/internal/modules/message/repository"
	messageService "anoa.com/tradesphere/internal/modules/message/service"

	searchHttp "anoa.com/tradesphere/internal/modules/search/delivery/http"
	searchService "anoa.com/tradesphere/internal/modules/search/service"

	userHttp "anoa.com/tradesphere/internal/modules/user/delivery/http"
	userRepo "anoa.com/tradesphere/internal/modules/user/repository"
	userService "anoa.com/tradesphere/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	orphanCleanupInterval = 12 * time.Hour
	expiryInterval        = time.Hour
)

// Dependencies are the external clients the server is built on. Redis,
// Meili and Storage may be nil; the features backed by them degrade.
type Dependencies struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Meili   meilisearch.ServiceManager
	Storage storage.ImageStorage
}

type Server struct {
	engine *gin.Engine
	db     *gorm.DB

	categorySvc   categoryService.CategoryService
	listingSvc    listingService.Service
	attachmentSvc attachmentService.AttachmentService
}

func NewServer(cfg *config.Config, deps Dependencies) *Server {
	db := deps.DB
	origins := allowedOrigins(cfg.AllowedOrigins)

	meiliSvc := searchService.NewMeiliSearchService(deps.Meili)
	searchHandler := searchHttp.NewSearchHandler(meiliSvc)

	limiter := ratelimiter.New(deps.Redis)

	userRepo := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(userRepo, meiliSvc, userService.TokenConfig{
		Secret: cfg.JWTSecret,
		TTL:    cfg.JWTTTL,
	})
	authHandler := userHttp.NewAuthHandler(authSvc)
	userSvc := userService.NewUserService(userRepo, meiliSvc)
	userHandler := userHttp.NewUserHandler(userSvc)

	categoryRepo := categoryRepo.NewCategoryRepository(db)
	categorySvc := categoryService.NewCategoryService(categoryRepo, deps.Redis)
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc)

	listingRepo := listingRepo.NewRepository(db)
	listingSvc := listingService.NewService(listingRepo, userRepo, categorySvc, limiter, meiliSvc, listingService.Config{
		CreateCooldown: cfg.RateLimitListing,
	})
	listingHandler := listingHttp.NewListingHandler(listingSvc)

	favoriteRepo := favoriteRepo.NewFavoriteRepository(db)
	favoriteSvc := favoriteService.NewFavoriteService(favoriteRepo, listingRepo)
	favoriteHandler := favoriteHttp.NewFavoriteHandler(favoriteSvc)

	messageRepo := messageRepo.NewMessageRepository(db)
	messageSvc := messageService.NewMessageService(messageRepo, listingRepo, userRepo, deps.Redis)
	messageHandler := messageHttp.NewMessageHandler(messageSvc, deps.Redis, origins)

	attachmentRepo := attachmentRepo.NewAttachmentRepository(db)
	attachmentSvc := attachmentService.NewAttachmentService(attachmentRepo, deps.Storage)
	attachmentHandler := attachmentHttp.NewAttachmentHandler(attachmentSvc)

	router := gin.New()

	setupCORS(router, origins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/metrics", "/healthz"},
	}))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", healthz(db))

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)
	requireAuth := authMiddleware.RequireAuth()
	optionalAuth := authMiddleware.OptionalAuth()
	requireAdmin := authMiddleware.RequireAdmin()

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", requireAuth, authHandler.Me)
	}

	users := api.Group("/users")
	{
		users.GET("/:id", userHandler.GetProfile)
		users.PUT("/profile", requireAuth, userHandler.UpdateProfile)
		users.PUT("/password", requireAuth, userHandler.ChangePassword)
		users.GET("", requireAuth, requireAdmin, userHandler.ListUsers)
		users.DELETE("/:id", requireAuth, requireAdmin, userHandler.DeleteUser)
	}

	listings := api.Group("/listings")
	{
		listings.GET("", optionalAuth, listingHandler.GetListings)
		listings.GET("/featured", listingHandler.GetFeatured)
		listings.GET("/recent", listingHandler.GetRecent)
		listings.GET("/user/me", requireAuth, listingHandler.GetMyListings)
		listings.GET("/user/:userId", optionalAuth, listingHandler.GetUserListings)
		listings.GET("/:idOrSlug", listingHandler.GetListing)
		listings.POST("", requireAuth, listingHandler.CreateListing)
		listings.PUT("/:id", requireAuth, listingHandler.UpdateListing)
		listings.DELETE("/:id", requireAuth, listingHandler.DeleteListing)
		listings.PUT("/:id/sold", requireAuth, listingHandler.MarkSold)
		listings.PUT("/:id/feature", requireAuth, requireAdmin, listingHandler.ToggleFeatured)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", categoryHandler.GetAllCategories)
		categories.GET("/:idOrSlug", categoryHandler.GetCategory)
		categories.POST("", requireAuth, requireAdmin, categoryHandler.CreateCategory)
		categories.POST("/init", requireAuth, requireAdmin, categoryHandler.InitializeCategories)
		categories.PUT("/:id", requireAuth, requireAdmin, categoryHandler.UpdateCategory)
		categories.DELETE("/:id", requireAuth, requireAdmin, categoryHandler.DeleteCategory)
	}

	favorites := api.Group("/favorites")
	favorites.Use(requireAuth)
	{
		favorites.GET("", favoriteHandler.GetFavorites)
		favorites.POST("", favoriteHandler.AddFavorite)
		favorites.DELETE("/:listingId", favoriteHandler.RemoveFavorite)
		favorites.GET("/:listingId/check", favoriteHandler.CheckFavorite)
	}

	messages := api.Group("/messages")
	messages.Use(requireAuth)
	{
		messages.GET("/conversations", messageHandler.GetConversations)
		messages.GET("/conversation/:userId/:listingId", messageHandler.GetOrCreateConversation)
		messages.GET("/conversations/:id/messages", messageHandler.GetMessages)
		messages.POST("", messageHandler.SendMessage)
		messages.PUT("/read/:conversationId", messageHandler.MarkAsRead)
		messages.GET("/unread", messageHandler.UnreadCount)
		messages.GET("/ws", messageHandler.HandleWebSocket)
	}

	uploads := api.Group("/uploads")
	uploads.Use(requireAuth)
	{
		uploads.POST("", middleware.Cooldown(limiter, "upload_images", cfg.RateLimitGlobal), attachmentHandler.UploadImages)
		uploads.DELETE("", attachmentHandler.DeleteImage)
	}

	api.GET("/search/listings", searchHandler.SearchListings)

	return &Server{
		engine:        router,
		db:            db,
		categorySvc:   categorySvc,
		listingSvc:    listingSvc,
		attachmentSvc: attachmentSvc,
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Initialize creates the default category tree if it is missing.
func (s *Server) Initialize(ctx context.Context) (int, error) {
	return s.categorySvc.Initialize(ctx)
}

// StartJobs runs the periodic maintenance jobs until ctx is cancelled.
func (s *Server) StartJobs(ctx context.Context) {
	go runEvery(ctx, "expire_listings", expiryInterval, s.listingSvc.ExpireListings)
	go runEvery(ctx, "orphan_cleanup", orphanCleanupInterval, s.attachmentSvc.CleanupOrphanAttachments)
}

func runEvery(ctx context.Context, job string, interval time.Duration, fn func(context.Context) (int, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := fn(ctx)
			observability.RecordJob(job, n, err)
			if err != nil {
				log.Printf("[%s] failed: %v", job, err)
				continue
			}
			log.Printf("[%s] processed %d items", job, n)
		}
	}
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			log.Printf("[healthz] database unreachable: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "database unreachable"})
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}

func allowedOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return origins
}

func setupCORS(router *gin.Engine, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
