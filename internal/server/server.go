package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lanblog/apiserver/config"
	"github.com/lanblog/apiserver/internal/auth"
	"github.com/lanblog/apiserver/internal/captcha"
	"github.com/lanblog/apiserver/internal/codes"
	"github.com/lanblog/apiserver/internal/db"
	"github.com/lanblog/apiserver/internal/handlers"
	"github.com/lanblog/apiserver/internal/mq"
	"github.com/lanblog/apiserver/internal/services"
	"github.com/lanblog/apiserver/internal/sessions"
	"github.com/lanblog/apiserver/internal/sms"
	"github.com/lanblog/apiserver/internal/storage"
	"github.com/lanblog/apiserver/internal/store"
	"github.com/lanblog/apiserver/internal/verification"
)

// smsDispatchTimeout bounds the broker publish inside a request.
const smsDispatchTimeout = 10 * time.Second

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	closers    []io.Closer
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var closers []io.Closer
	fail := func(err error) (*Server, error) {
		_ = dbConn.Close()
		for _, c := range closers {
			_ = c.Close()
		}
		return nil, err
	}

	if strings.TrimSpace(cfg.Session.Secret) == "" {
		return fail(errors.New("SESSION_SECRET is required"))
	}

	codeStore, err := codes.NewRedisStore(ctx, cfg.Redis)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, codeStore)

	gateway, gatewayCloser, err := buildSmsGateway(cfg, logger)
	if err != nil {
		return fail(err)
	}
	if gatewayCloser != nil {
		closers = append(closers, gatewayCloser)
	}

	media, err := buildStorage(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	if err := media.EnsureBucket(ctx); err != nil {
		return fail(err)
	}

	userRepo := store.NewUserRepository(dbConn)
	categoryRepo := store.NewCategoryRepository(dbConn)
	articleRepo := store.NewArticleRepository(dbConn)
	commentRepo := store.NewCommentRepository(dbConn)

	userService := services.NewUserService(userRepo)
	articleService := services.NewArticleService(articleRepo, categoryRepo)
	commentService := services.NewCommentService(commentRepo, articleRepo)

	workflow := verification.NewWorkflow(codeStore, captcha.NewImageGenerator(), gateway, logger)
	authService := auth.NewService(userRepo, workflow)
	sessionMgr := sessions.NewManager(codeStore)
	codec := sessions.NewTokenCodec(cfg.Session.Secret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		handlers.SessionLoader(sessionMgr, codec),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/verify", func(r chi.Router) {
		handlers.VerificationRouter(r, workflow)
	})
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService, sessionMgr, codec)
	})
	router.Group(func(r chi.Router) {
		handlers.ArticleRouter(r, articleService, commentService, media)
	})
	router.Route("/profile", func(r chi.Router) {
		handlers.ProfileRouter(r, userService, sessionMgr, media)
	})
	router.Route("/media", func(r chi.Router) {
		handlers.MediaRouter(r, media)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		closers:    closers,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	for _, c := range s.closers {
		_ = c.Close()
	}
	return s.httpServer.Close()
}

// buildSmsGateway selects the gateway backend. The queue backend needs
// a broker; the log backend is self-contained.
func buildSmsGateway(cfg config.Config, logger *slog.Logger) (sms.Gateway, io.Closer, error) {
	switch cfg.SMS.Backend {
	case "queue":
		broker, err := buildBroker(cfg)
		if err != nil {
			return nil, nil, err
		}
		return &timeoutGateway{next: sms.NewQueueGateway(broker, cfg.SMS.Channel)}, broker, nil
	case "log", "":
		return sms.NewLogGateway(logger), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown sms backend %q", cfg.SMS.Backend)
	}
}

// buildBroker constructs the configured MQ backend.
func buildBroker(cfg config.Config) (*mq.MQ, error) {
	switch cfg.MQ.Backend {
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(context.Background(), cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQ.Backend)
	}
}

// NewBroker constructs the configured MQ backend for commands that
// consume the dispatch queue.
func NewBroker(cfg config.Config) (*mq.MQ, error) {
	return buildBroker(cfg)
}

func buildStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "minio", "":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// timeoutGateway bounds a send so a slow broker cannot hold the
// request open.
type timeoutGateway struct {
	next sms.Gateway
}

func (g *timeoutGateway) Send(ctx context.Context, phone, code string, validityMinutes int) error {
	ctx, cancel := context.WithTimeout(ctx, smsDispatchTimeout)
	defer cancel()
	return g.next.Send(ctx, phone, code, validityMinutes)
}
