package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"os/user"
	"syscall"

	"github.com/joho/godotenv"

	"arkive/internal/capabilities"
	"arkive/internal/cli"
	"arkive/internal/config"
	"arkive/internal/httputil"
	"arkive/internal/middleware"
	"arkive/internal/repository/rest"
	"arkive/internal/service"
	"arkive/internal/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()

	cfg := config.Load()

	var logFile io.Writer
	if f, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles); err == nil {
		defer f.Close()
		logFile = f
	} else {
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}
	logger := config.NewLogger(cfg, os.Stderr, logFile)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openSessionStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeStore()

	policy, err := session.ParseScopePolicy(cfg.DepartmentScope)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	// Login and logout carry their own credentials, so the auth client has
	// no Auth middleware
	authClient := httputil.NewClient(cfg.APIBaseURL, cfg.Timeout,
		middleware.Chain(nil, middleware.RequestID(), middleware.Logging(logger)))
	mgr := session.NewManager(store, rest.NewAuthRepository(&rest.RepositoryConfig{API: authClient}), policy, logger)
	if err := mgr.Restore(ctx); err != nil {
		logger.Warn("stored session ignored", "error", err)
	}

	authed := middleware.Chain(nil, middleware.RequestID(), middleware.Logging(logger), middleware.Auth(mgr))
	repoConfig := &rest.RepositoryConfig{
		API:     httputil.NewClient(cfg.APIBaseURL, cfg.Timeout, authed),
		Gateway: httputil.NewClient(cfg.GatewayURL, cfg.Timeout, authed),
		Translation: httputil.NewClient(cfg.TranslationURL, cfg.Timeout,
			middleware.Chain(nil, middleware.RequestID(), middleware.Logging(logger))),
	}

	registry, err := capabilities.NewRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load capability registry: %v\n", err)
		return 1
	}

	folders := service.NewFolderService(rest.NewFolderRepository(repoConfig), mgr, registry, logger)
	documents := service.NewDocumentService(rest.NewDocumentRepository(repoConfig), mgr, registry, logger)
	departments := service.NewDepartmentService(rest.NewDepartmentRepository(repoConfig), mgr, logger)
	users := service.NewUserService(rest.NewUserRepository(repoConfig), departments, mgr, cfg.PageSize, logger)
	translation := service.NewTranslationService(rest.NewTranslationRepository(repoConfig), documents, registry, logger)
	preview := service.NewPreviewService(rest.NewStorageRepository(repoConfig), registry, logger)

	// Logging out must leave no data from the previous user behind
	mgr.OnLogout(folders.Reset)
	mgr.OnLogout(documents.Reset)
	mgr.OnLogout(users.Reset)
	mgr.OnLogout(departments.Reset)

	root := cli.NewRootCommand(&cli.App{
		Session:      mgr,
		Folders:      folders,
		Documents:    documents,
		Users:        users,
		Departments:  departments,
		Translation:  translation,
		Preview:      preview,
		Capabilities: registry,
		Logger:       logger,
		In:           os.Stdin,
		Out:          os.Stdout,
		Err:          os.Stderr,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", cli.ErrorMessage(err))
		logger.Debug("command failed", "error", err)
		return 1
	}
	return 0
}

// openSessionStore picks the session backend from config
func openSessionStore(cfg *config.Config) (session.Store, func(), error) {
	switch cfg.SessionBackend {
	case "", "file":
		return session.NewFileStore(cfg.SessionFile()), func() {}, nil
	case "redis":
		store, err := session.NewRedisStore(cfg.RedisURL, accountName())
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown session backend %q (want file or redis)", cfg.SessionBackend)
}

// accountName keys the shared Redis session by local account
func accountName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "default"
}
