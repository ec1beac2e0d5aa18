package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/playerctl/internal/chrome"
	"github.com/sharetube/playerctl/internal/controller"
	"github.com/sharetube/playerctl/internal/player"
	connInmemory "github.com/sharetube/playerctl/internal/repository/connection/inmemory"
	sessionInmemory "github.com/sharetube/playerctl/internal/repository/session/inmemory"
	stateRedis "github.com/sharetube/playerctl/internal/repository/state/redis"
	"github.com/sharetube/playerctl/internal/service/control"
	"github.com/sharetube/playerctl/pkg/ctxlogger"
	"github.com/sharetube/playerctl/pkg/redisclient"
	"gopkg.in/natefinch/lumberjack.v2"
)

type AppConfig struct {
	Secret            string           `json:"-"`
	Host              string           `json:"host"`
	Port              int              `json:"port"`
	LogLevel          string           `json:"log_level"`
	LogPath           string           `json:"log_path"`
	RedisPort         int              `json:"redis_port"`
	RedisHost         string           `json:"redis_host"`
	RedisPassword     string           `json:"-"`
	RedisAttempts     uint             `json:"redis_attempts"`
	StateTTL          time.Duration    `json:"state_ttl"`
	BridgeCallTimeout time.Duration    `json:"bridge_call_timeout"`
	SeekStep          float64          `json:"seek_step"`
	SpeedStep         float64          `json:"speed_step"`
	VolumeStep        float64          `json:"volume_step"`
	Selectors         chrome.Selectors `json:"selectors"`
}

func (cfg *AppConfig) Validate() error {
	var errs []error
	if cfg.Secret == "" {
		errs = append(errs, errors.New("secret must not be empty"))
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", cfg.Port))
	}
	if cfg.StateTTL <= 0 {
		errs = append(errs, errors.New("state ttl must be greater than 0"))
	}
	if cfg.BridgeCallTimeout <= 0 {
		errs = append(errs, errors.New("bridge call timeout must be greater than 0"))
	}
	if cfg.SeekStep <= 0 {
		errs = append(errs, errors.New("seek step must be greater than 0"))
	}
	if cfg.SpeedStep <= 0 {
		errs = append(errs, errors.New("speed step must be greater than 0"))
	}
	if cfg.VolumeStep <= 0 || cfg.VolumeStep > 1 {
		errs = append(errs, errors.New("volume step must be in (0, 1]"))
	}
	if _, err := parseLogLevel(cfg.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func parseLogLevel(level string) (slog.Level, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return logLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return logLevel, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger logs JSON to stdout and, when path is set, to a rotated file.
func newLogger(stdout io.Writer, level, path string) (*slog.Logger, io.Closer, error) {
	logLevel, err := parseLogLevel(level)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = stdout
	var closer io.Closer = nopCloser{}
	if path != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		}
		out = io.MultiWriter(stdout, fileWriter)
		closer = fileWriter
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(&h), closer, nil
}

// newHandler wires repositories, the control service and the controller.
func newHandler(rc *redis.Client, logger *slog.Logger, cfg *AppConfig) http.Handler {
	stateRepo := stateRedis.NewRepo(rc, cfg.StateTTL)
	sessionRepo := sessionInmemory.NewRepo[*control.Session]()
	connectionRepo := connInmemory.NewRepo()
	controlService := control.NewService(stateRepo, sessionRepo, connectionRepo, &control.Config{
		Secret: cfg.Secret,
		Player: player.Config{
			SeekStep:   cfg.SeekStep,
			SpeedStep:  cfg.SpeedStep,
			VolumeStep: cfg.VolumeStep,
		},
		Selectors: chrome.DefaultSelectors().Merge(cfg.Selectors),
	})
	controller := controller.NewController(controlService, logger, &controller.Config{
		BridgeCallTimeout: cfg.BridgeCallTimeout,
	})

	return controller.GetMux()
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, logCloser, err := newLogger(os.Stdout, cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
		Attempts: cfg.RedisAttempts,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: newHandler(rc, logger, cfg),
	}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
