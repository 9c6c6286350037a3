package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizmaster-console/internal/app"
	"quizmaster-console/internal/config"
	"quizmaster-console/internal/infra/httpapi"
	"quizmaster-console/internal/infra/memory"
	redisinfra "quizmaster-console/internal/infra/redis"
	"quizmaster-console/internal/lib/slogcustom"
	"quizmaster-console/internal/session"
)

var (
	configPath string
	verbose    bool
)

const defaultQuizCacheTTL = 5 * time.Minute

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:           "quizmaster",
		Short:         "Terminal console for the quiz platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newRegisterCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newHostCmd())
	cmd.AddCommand(newTakeCmd())
	cmd.AddCommand(newQuizCmd())
	cmd.AddCommand(newConsoleCmd())
	return cmd
}

// console bundles one wired-up instance of every service the commands use.
// Each command invocation builds its own; with Redis configured the session
// survives between invocations, without it the session lives only for the
// process.
type console struct {
	cfg   config.Config
	log   *slog.Logger
	store app.StateStore

	auth      *app.AuthService
	host      *app.HostService
	take      *app.TakeService
	admin     *app.AdminService
	super     *app.SuperadminService
	heartbeat *session.Heartbeat

	in *bufio.Reader
}

func newConsole() (*console, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slogcustom.New(os.Stderr, level))
	slog.SetDefault(log)

	client := httpapi.NewClient(config.Duration(cfg.HTTP.Timeout, httpapi.DefaultTimeout))
	authAPI := httpapi.NewAuthClient(client, cfg.Services.Auth)
	questionAPI := httpapi.NewQuestionClient(client, cfg.Services.Question)
	resultAPI := httpapi.NewResultClient(client, cfg.Services.Result)

	var store app.StateStore
	var cache app.QuizCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = redisinfra.NewStateStore(rdb)
		cache = redisinfra.NewQuizCache(rdb, questionAPI, defaultQuizCacheTTL)
	} else {
		store = memory.NewStateStore()
		cache = memory.NewQuizCache(questionAPI, defaultQuizCacheTTL)
	}

	interval := config.Duration(cfg.Heartbeat.Interval, session.DefaultHeartbeatInterval)

	return &console{
		cfg:       cfg,
		log:       log,
		store:     store,
		auth:      app.NewAuthService(authAPI, store, log),
		host:      app.NewHostService(questionAPI, store, log),
		take:      app.NewTakeService(cache, resultAPI, store, log),
		admin:     app.NewAdminService(questionAPI, resultAPI, cache, store, log),
		super:     app.NewSuperadminService(authAPI, questionAPI, resultAPI, store, log),
		heartbeat: session.NewHeartbeat(authAPI, store, interval, log),
		in:        bufio.NewReader(os.Stdin),
	}, nil
}

// token returns the active bearer token: the QUIZ_TOKEN override if set,
// otherwise the stored session.
func (c *console) token(ctx context.Context) (string, error) {
	if t := os.Getenv("QUIZ_TOKEN"); t != "" {
		return t, nil
	}
	return c.store.Token(ctx)
}

// startHeartbeat runs the presence loop for the lifetime of an interactive
// command, with the offline beacon fired on the way out.
func (c *console) startHeartbeat(ctx context.Context) (stop func()) {
	go c.heartbeat.Run(ctx)
	return func() {
		c.heartbeat.Stop()
		c.heartbeat.NotifyOffline(ctx)
	}
}

// prompt reads one trimmed line after printing a colored label.
func (c *console) prompt(label string) (string, error) {
	fmt.Print(color.CyanString(label))
	line, err := c.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *console) promptRequired(label string) (string, error) {
	for {
		value, err := c.prompt(label)
		if err != nil {
			return "", err
		}
		if value != "" {
			return value, nil
		}
		fmt.Println(color.YellowString("a value is required"))
	}
}

func success(format string, args ...any) {
	fmt.Println(color.GreenString(format, args...))
}

func warn(format string, args ...any) {
	fmt.Println(color.YellowString(format, args...))
}
