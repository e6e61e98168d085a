package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"github.com/nats-io/nats.go"

	"github.com/taskhub/taskhub/internal/app/dashboard"
	"github.com/taskhub/taskhub/internal/app/report"
	"github.com/taskhub/taskhub/internal/app/taskchecklist"
	"github.com/taskhub/taskhub/internal/app/taskcreate"
	"github.com/taskhub/taskhub/internal/app/tasklist"
	"github.com/taskhub/taskhub/internal/app/taskremove"
	"github.com/taskhub/taskhub/internal/app/taskstatus"
	"github.com/taskhub/taskhub/internal/app/taskupdate"
	"github.com/taskhub/taskhub/internal/app/userauth"
	"github.com/taskhub/taskhub/internal/app/userlist"
	"github.com/taskhub/taskhub/internal/auth"
	"github.com/taskhub/taskhub/internal/notify"
	notifynats "github.com/taskhub/taskhub/internal/notify/nats"
	"github.com/taskhub/taskhub/internal/server"
	"github.com/taskhub/taskhub/internal/server/config"
	"github.com/taskhub/taskhub/internal/storage"
	"github.com/taskhub/taskhub/internal/storage/memory"
	"github.com/taskhub/taskhub/internal/storage/sqlite"
)

// ServeCommand runs the HTTP API server.
type ServeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	listenAddr       string
	jwtSecret        string
	adminInviteToken string
	corsOrigins      []string
	natsURL          string
	inMemory         bool
	configPath       string
}

// NewServeCommand returns the serve command.
func NewServeCommand(rootCmd *RootCommand, app *kingpin.Application) *ServeCommand {
	c := &ServeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("serve", "Run the taskhub API server.")
	c.Cmd.Flag("listen", "Address the server listens on.").Default(":8080").StringVar(&c.listenAddr)
	c.Cmd.Flag("jwt-secret", "Secret used to sign identity tokens.").StringVar(&c.jwtSecret)
	c.Cmd.Flag("admin-invite-token", "Token that grants the admin role on registration.").StringVar(&c.adminInviteToken)
	c.Cmd.Flag("cors-origin", "Allowed CORS origin (repeatable).").StringsVar(&c.corsOrigins)
	c.Cmd.Flag("nats-url", "NATS server URL for task events (empty disables publishing).").StringVar(&c.natsURL)
	c.Cmd.Flag("in-memory", "Use the in-memory store instead of SQLite.").BoolVar(&c.inMemory)
	c.Cmd.Flag("config", "Path to a YAML config file (flags win over file values).").StringVar(&c.configPath)

	return c
}

func (c ServeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ServeCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	if err := c.loadConfigFile(ctx); err != nil {
		return err
	}

	if c.jwtSecret == "" {
		return fmt.Errorf("a JWT secret is required (--jwt-secret or config file)")
	}

	// Storage.
	var (
		taskRepo storage.TaskRepository
		userRepo storage.UserRepository
	)
	if c.inMemory {
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create repository: %w", err)
		}
		taskRepo, userRepo = repo, repo
		logger.Warningf("Using in-memory storage, data will be lost on shutdown")
	} else {
		repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: c.rootCmd.DBPath,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("could not create repository: %w", err)
		}
		defer repo.Close()
		taskRepo, userRepo = repo, repo
	}

	// Identity provider.
	authenticator, err := auth.NewAuthenticator(auth.AuthenticatorConfig{Secret: c.jwtSecret})
	if err != nil {
		return fmt.Errorf("could not create authenticator: %w", err)
	}

	// Event publishing.
	notifier := notify.Notifier(notify.Noop)
	if c.natsURL != "" {
		conn, err := nats.Connect(c.natsURL)
		if err != nil {
			return fmt.Errorf("could not connect to NATS: %w", err)
		}
		defer conn.Close()

		notifier, err = notifynats.NewNotifier(notifynats.NotifierConfig{Conn: conn, Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create notifier: %w", err)
		}
	}

	// Application services.
	userAuthSvc, err := userauth.NewService(userauth.ServiceConfig{
		Repository:       userRepo,
		Authenticator:    authenticator,
		AdminInviteToken: c.adminInviteToken,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("could not create user auth service: %w", err)
	}
	userListSvc, err := userlist.NewService(userlist.ServiceConfig{
		UserRepository: userRepo, TaskRepository: taskRepo, Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create user list service: %w", err)
	}
	taskCreateSvc, err := taskcreate.NewService(taskcreate.ServiceConfig{
		Repository: taskRepo, Notifier: notifier, Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create task create service: %w", err)
	}
	taskListSvc, err := tasklist.NewService(tasklist.ServiceConfig{
		Repository: taskRepo, Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create task list service: %w", err)
	}
	taskUpdateSvc, err := taskupdate.NewService(taskupdate.ServiceConfig{
		Repository: taskRepo, Notifier: notifier, Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create task update service: %w", err)
	}
	taskRemoveSvc, err := taskremove.NewService(taskremove.ServiceConfig{
		Repository: taskRepo, Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create task remove service: %w", err)
	}
	taskStatusSvc, err := taskstatus.NewService(taskstatus.ServiceConfig{
		Repository: taskRepo, Notifier: notifier, Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create task status service: %w", err)
	}
	taskChecklistSvc, err := taskchecklist.NewService(taskchecklist.ServiceConfig{
		Repository: taskRepo, Notifier: notifier, Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create task checklist service: %w", err)
	}
	dashboardSvc, err := dashboard.NewService(dashboard.ServiceConfig{
		Repository: taskRepo, Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create dashboard service: %w", err)
	}
	reportSvc, err := report.NewService(report.ServiceConfig{
		TaskRepository: taskRepo, UserRepository: userRepo, Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create report service: %w", err)
	}

	// HTTP server.
	srv, err := server.NewServer(server.ServerConfig{
		ListenAddr:           c.listenAddr,
		Authenticator:        authenticator,
		CORSOrigins:          c.corsOrigins,
		UserAuthService:      userAuthSvc,
		UserListService:      userListSvc,
		TaskCreateService:    taskCreateSvc,
		TaskListService:      taskListSvc,
		TaskUpdateService:    taskUpdateSvc,
		TaskRemoveService:    taskRemoveSvc,
		TaskStatusService:    taskStatusSvc,
		TaskChecklistService: taskChecklistSvc,
		DashboardService:     dashboardSvc,
		ReportService:        reportSvc,
		Logger:               logger,
	})
	if err != nil {
		return fmt.Errorf("could not create server: %w", err)
	}

	return srv.Run(ctx)
}

// loadConfigFile merges the optional YAML config into the command settings.
// Flags that were set explicitly keep their values.
func (c *ServeCommand) loadConfigFile(ctx context.Context) error {
	if c.configPath == "" {
		return nil
	}

	dir, file := filepath.Split(c.configPath)
	if dir == "" {
		dir = "."
	}
	loader := config.NewYAMLLoader(os.DirFS(dir))
	cfg, err := loader.Load(ctx, file)
	if err != nil {
		return fmt.Errorf("could not load config file: %w", err)
	}

	if c.listenAddr == ":8080" && cfg.ListenAddr != "" {
		c.listenAddr = cfg.ListenAddr
	}
	if c.jwtSecret == "" {
		c.jwtSecret = cfg.JWTSecret
	}
	if c.adminInviteToken == "" {
		c.adminInviteToken = cfg.AdminInviteToken
	}
	if len(c.corsOrigins) == 0 {
		c.corsOrigins = cfg.CORSOrigins
	}
	if c.natsURL == "" {
		c.natsURL = cfg.NATSURL
	}
	if !c.inMemory {
		c.inMemory = cfg.InMemory
	}

	return nil
}
