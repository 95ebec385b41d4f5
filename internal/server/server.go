// Package server is the composition root: it opens the store, builds the
// services and handlers, and declares every route with its guard list.
//
// Routes and the guards they run, in order:
//
//	GET  /healthz                         -
//	GET  /static/*                        -
//	GET  /                                -
//	GET  /register, POST /register        -
//	GET  /login, POST /login              -
//	GET  /logout                          -
//	GET  /auth/github/login, /callback    -
//	GET  /blogs                           -
//	GET  /show_blog, POST /show_blog      - (commenting checks the session itself)
//	GET  /contact, POST /contact          -
//	GET  /domain                          Authenticated
//	GET  /domain/blogger/{name}           Authenticated
//	GET  /add_blog, POST /add_blog        Authenticated
//	GET  /edit_blog, POST /edit_blog      Authenticated (author or admin checked by PostService)
//	GET  /delete, POST /delete            Authenticated (author or admin checked by PostService)
//	GET  /user                            Authenticated, Admin
//	POST /user/delete                     Authenticated, Admin, SharedSecret (HTML)
//	GET  /user/data, /user/posts,
//	     /delete/user and post            Authenticated, Admin            (admin key form)
//	POST /user/data, /user/posts,
//	     /delete/user and post            Authenticated, Admin, SharedSecret (JSON)
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/bloghub/internal/auth"
	"github.com/sakif/bloghub/internal/config"
	"github.com/sakif/bloghub/internal/handler"
	"github.com/sakif/bloghub/internal/mail"
	"github.com/sakif/bloghub/internal/middleware"
	sqliteRepo "github.com/sakif/bloghub/internal/repository/sqlite"
	"github.com/sakif/bloghub/internal/service"
	"github.com/sakif/bloghub/web"
)

// Server owns the router and the database connection.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// Option overrides one of the collaborators New builds from the config.
type Option func(*deps)

type deps struct {
	mailer    mail.Mailer
	github    service.GitHubExchanger
	passwords *auth.PasswordHasher
	now       service.Clock
}

// WithMailer replaces the SMTP or logging mailer.
func WithMailer(m mail.Mailer) Option {
	return func(d *deps) { d.mailer = m }
}

// WithGitHub replaces the GitHub OAuth provider.
func WithGitHub(g service.GitHubExchanger) Option {
	return func(d *deps) { d.github = g }
}

// WithPasswordHasher replaces the default bcrypt hasher.
func WithPasswordHasher(p *auth.PasswordHasher) Option {
	return func(d *deps) { d.passwords = p }
}

// WithClock replaces time.Now for post dates.
func WithClock(now service.Clock) Option {
	return func(d *deps) { d.now = now }
}

// New opens the database at cfg.DBPath and wires every route.
func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(s.defaults(opts)); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func (s *Server) defaults(opts []Option) deps {
	d := deps{
		passwords: auth.NewPasswordHasher(),
		now:       time.Now,
	}

	if s.config.SMTP.Enabled() {
		smtp := s.config.SMTP
		d.mailer = mail.NewSMTPMailer(smtp.Host, smtp.Port, smtp.Username, smtp.Password)
	} else {
		s.logger.Warn("SMTP_HOST not set, contact messages are only logged")
		d.mailer = mail.NewLogMailer(s.logger)
	}

	if gh := s.config.GitHub; gh.Enabled() {
		d.github = auth.NewGitHubProvider(gh.ClientID, gh.ClientSecret, gh.CallbackURL)
	}

	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func (s *Server) setupRoutes(d deps) error {
	tokens, err := auth.NewTokenService(s.config.SessionSecret, s.config.SessionTTL)
	if err != nil {
		return err
	}

	templates, err := fs.Sub(web.FS, "templates")
	if err != nil {
		return err
	}
	render, err := handler.NewRenderer(templates, ".", s.logger)
	if err != nil {
		return err
	}
	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return err
	}

	users := s.db.Users()
	posts := s.db.Posts()
	comments := s.db.Comments()

	authSvc := service.NewAuthService(users, d.passwords, tokens, d.github, s.logger)
	postSvc := service.NewPostService(posts, comments, d.now, s.logger)
	userSvc := service.NewUserService(users, posts, s.logger)
	contactSvc := service.NewContactService(d.mailer, s.config.ContactTo, s.logger)

	pageH := handler.NewPageHandler(render)
	authH := handler.NewAuthHandler(authSvc, render, s.config.CookieSecure, s.logger)
	postH := handler.NewPostHandler(postSvc, render)
	adminH := handler.NewAdminHandler(userSvc, render, s.logger)
	contactH := handler.NewContactHandler(contactSvc, render)

	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(s.logger))
	r.Use(auth.Session(tokens, users, s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// Public pages.
	r.Get("/", pageH.Home)
	r.Get("/register", authH.RegisterForm)
	r.Post("/register", authH.Register)
	r.Get("/login", authH.LoginForm)
	r.Post("/login", authH.Login)
	r.Get("/logout", authH.Logout)
	r.Get("/auth/github/login", authH.GitHubLogin)
	r.Get("/auth/github/callback", authH.GitHubCallback)
	r.Get("/blogs", postH.List)
	r.Get("/show_blog", postH.Show)
	r.Post("/show_blog", postH.Comment)
	r.Get("/contact", contactH.Form)
	r.Post("/contact", contactH.Send)

	loggedIn := auth.Require(render.Refuse, auth.Authenticated())
	admin := auth.Require(render.Refuse, auth.Authenticated(), auth.Admin())
	adminKeyed := auth.Require(render.Refuse,
		auth.Authenticated(),
		auth.Admin(),
		auth.SharedSecret(handler.AdminKeyField, s.config.AdminKey),
	)
	adminJSON := auth.Require(adminH.RefuseJSON,
		auth.Authenticated(),
		auth.Admin(),
		auth.SharedSecret(handler.AdminKeyField, s.config.AdminKey),
	)

	r.Group(func(r chi.Router) {
		r.Use(loggedIn)
		r.Get("/domain", pageH.Domain)
		r.Get("/domain/blogger/{name}", postH.Mine)
		r.Get("/add_blog", postH.AddForm)
		r.Post("/add_blog", postH.Add)
		r.Get("/edit_blog", postH.EditForm)
		r.Post("/edit_blog", postH.Edit)
		r.Get("/delete", postH.DeleteForm)
		r.Post("/delete", postH.Delete)
	})

	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/user", adminH.Users)
		r.Get("/user/data", adminH.KeyForm)
		r.Get("/user/posts", adminH.KeyForm)
		r.Get("/delete/user and post", adminH.KeyForm)
	})

	r.With(adminKeyed).Post("/user/delete", adminH.DeleteUser)
	r.With(adminJSON).Post("/user/data", adminH.UserData)
	r.With(adminJSON).Post("/user/posts", adminH.UserPosts)
	r.With(adminJSON).Post("/delete/user and post", adminH.DeleteUserJSON)

	return nil
}

// handleHealth reports whether the database answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, body := http.StatusOK, map[string]string{"status": "ok"}
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		status, body = http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves until SIGINT or SIGTERM, then lets in-flight requests finish
// for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.Bool("github_sign_in", s.config.GitHub.Enabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
