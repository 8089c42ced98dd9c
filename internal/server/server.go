package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/dukerupert/famfeed/internal/auth"
	"github.com/dukerupert/famfeed/internal/database"
	"github.com/dukerupert/famfeed/internal/handler"
	"github.com/dukerupert/famfeed/internal/metrics"
	"github.com/dukerupert/famfeed/internal/middleware"
	"github.com/dukerupert/famfeed/internal/push"
	"github.com/dukerupert/famfeed/internal/service"
	"github.com/dukerupert/famfeed/internal/store"
	"github.com/dukerupert/famfeed/internal/upload"
	ws "github.com/dukerupert/famfeed/internal/websocket"
)

const (
	rateLimiterCleanupInterval = 5 * time.Minute
	rateLimiterMaxIdle         = 15 * time.Minute
)

// Options carries the collaborators built from configuration.
type Options struct {
	Tokens            *auth.TokenManager
	Uploader          *upload.Uploader
	Push              *push.Service // nil disables web push
	ClientURL         string
	AuthRatePerMinute int
	ClientIP          *middleware.ClientIP // nil trusts no forwarding headers
	Development       bool
}

type Server struct {
	db            *database.DB
	hub           *ws.Hub
	authSvc       *service.AuthService
	authH         *handler.AuthHandler
	postH         *handler.PostHandler
	messageH      *handler.MessageHandler
	userH         *handler.UserHandler
	uploadH       *handler.UploadHandler
	notificationH *handler.NotificationHandler
	pushH         *handler.PushHandler
	healthH       *handler.HealthHandler
	uploader      *upload.Uploader
	rateLimiter   *middleware.RateLimiter
	clientIP      *middleware.ClientIP
	notifier      *push.Notifier
	clientURL     string
	logger        *slog.Logger
	cancel        context.CancelFunc
}

func New(db *database.DB, opts Options, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	deps := service.Deps{
		DB:        db,
		Publisher: hub,
		Logger:    logger.With("component", "service"),
	}

	var notifier *push.Notifier
	if opts.Push != nil {
		notifier = push.NewNotifier(opts.Push, store.NewPushStore(db), logger.With("component", "push"))
		deps.Notifier = notifier
	}

	authSvc := service.NewAuthService(deps, opts.Tokens)
	notificationSvc := service.NewNotificationService(deps)
	dev := opts.Development

	return &Server{
		db:            db,
		hub:           hub,
		authSvc:       authSvc,
		authH:         handler.NewAuthHandler(authSvc, logger.With("component", "auth"), dev),
		postH:         handler.NewPostHandler(service.NewPostService(deps), logger.With("component", "post"), dev),
		messageH:      handler.NewMessageHandler(service.NewMessageService(deps), logger.With("component", "message"), dev),
		userH:         handler.NewUserHandler(service.NewUserService(deps), logger.With("component", "user"), dev),
		uploadH:       handler.NewUploadHandler(opts.Uploader, logger.With("component", "upload"), dev),
		notificationH: handler.NewNotificationHandler(notificationSvc, logger.With("component", "notification"), dev),
		pushH:         handler.NewPushHandler(notificationSvc, opts.Push, logger.With("component", "push_handler"), dev),
		healthH:       handler.NewHealthHandler(db),
		uploader:      opts.Uploader,
		rateLimiter:   middleware.NewRateLimiter(opts.AuthRatePerMinute),
		clientIP:      opts.ClientIP,
		notifier:      notifier,
		clientURL:     opts.ClientURL,
		logger:        logger,
	}
}

// Hub returns the real-time fan-out hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// Start launches background work: push delivery and rate limiter cleanup.
func (s *Server) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	if s.notifier != nil {
		s.notifier.Start(ctx)
	}

	go func() {
		ticker := time.NewTicker(rateLimiterCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.rateLimiter.Cleanup(rateLimiterMaxIdle)
			}
		}
	}()
}

// Stop halts background work started by Start.
func (s *Server) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.notifier != nil {
		s.notifier.Stop()
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes (no auth required)
	mux.HandleFunc("GET /api/health", s.healthH.Health)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("POST /api/auth/register", s.rateLimited(s.authH.Register))
	mux.Handle("POST /api/auth/login", s.rateLimited(s.authH.Login))
	mux.Handle("POST /api/auth/join-family", s.rateLimited(s.authH.JoinFamily))
	mux.HandleFunc("GET /api/auth/verify", s.authH.Verify)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	if h, ok := s.uploader.LocalHandler(); ok {
		mux.Handle("GET "+upload.URLPrefix, h)
	}

	// The socket authenticates itself from the token query parameter.
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.authSvc, s.originPatterns()))

	s.registerProtectedRoutes(mux)

	var h http.Handler = mux
	h = middleware.CORS([]string{s.clientURL})(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"), s.clientIP.Resolve)(h)
	return metrics.InstrumentHandler(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	protect := func(pattern string, h http.HandlerFunc) {
		requireAuth := middleware.RequireAuth(s.authSvc, s.logger.With("component", "auth"))
		mux.Handle(pattern, requireAuth(middleware.SocketOrigin(h)))
	}

	// Posts, likes and comments
	protect("GET /api/posts", s.postH.List)
	protect("POST /api/posts", s.postH.Create)
	protect("DELETE /api/posts/{id}", s.postH.Delete)
	protect("POST /api/posts/{id}/like", s.postH.ToggleLike)
	protect("GET /api/posts/{id}/comments", s.postH.ListComments)
	protect("POST /api/posts/{id}/comments", s.postH.AddComment)

	// Direct messages
	protect("GET /api/messages", s.messageH.Conversation)
	protect("POST /api/messages", s.messageH.Send)
	protect("GET /api/messages/unread/{userId}", s.messageH.Unread)
	protect("PUT /api/messages/{id}/read", s.messageH.MarkRead)

	// Users
	protect("GET /api/users/family-members", s.userH.FamilyMembers)
	protect("GET /api/users/profile/{id}", s.userH.Profile)
	protect("PUT /api/users/profile", s.userH.UpdateProfile)

	protect("POST /api/upload/image", s.uploadH.Image)

	// Notifications and web push
	protect("GET /api/notifications", s.notificationH.List)
	protect("PUT /api/notifications/{id}/read", s.notificationH.MarkRead)
	protect("POST /api/push/subscribe", s.pushH.Subscribe)
	protect("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	protect("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
}

func (s *Server) rateLimited(h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.rateLimiter, s.clientIP.Resolve)(h)
}

// originPatterns restricts socket origins to the client's host. Same-host
// requests are always accepted.
func (s *Server) originPatterns() []string {
	u, err := url.Parse(s.clientURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}
