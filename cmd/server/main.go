package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/playerctl/internal/app"
	"github.com/sharetube/playerctl/internal/chrome"
)

const envPrefix = "PLAYERCTL_"

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

func (v configVar[T]) bind() {
	viper.BindEnv(v.flagKey, envPrefix+v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

var (
	secret = configVar[string]{
		envKey:  "SECRET",
		flagKey: "secret",
		usage:   "Secret signing control tokens",
	}
	logPath = configVar[string]{
		envKey:  "LOG_PATH",
		flagKey: "log-path",
		usage:   "Rotated log file path, empty to log to stdout only",
	}
	port = configVar[int]{
		envKey:       "PORT",
		flagKey:      "port",
		defaultValue: 8080,
		usage:        "Server port",
	}
	host = configVar[string]{
		envKey:       "HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	logLevel = configVar[string]{
		envKey:       "LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPassword = configVar[string]{
		envKey:  "REDIS_PASSWORD",
		flagKey: "redis-password",
		usage:   "Redis password",
	}
	redisAttempts = configVar[uint]{
		envKey:       "REDIS_ATTEMPTS",
		flagKey:      "redis-attempts",
		defaultValue: 10,
		usage:        "Redis connection attempts at startup",
	}
	stateTTL = configVar[time.Duration]{
		envKey:       "STATE_TTL",
		flagKey:      "state-ttl",
		defaultValue: time.Hour,
		usage:        "How long a stored player state lives without access",
	}
	bridgeCallTimeout = configVar[time.Duration]{
		envKey:       "BRIDGE_CALL_TIMEOUT",
		flagKey:      "bridge-call-timeout",
		defaultValue: 5 * time.Second,
		usage:        "Timeout of one call to an agent's page",
	}
	seekStep = configVar[float64]{
		envKey:       "SEEK_STEP",
		flagKey:      "seek-step",
		defaultValue: 5,
		usage:        "Default seek in seconds",
	}
	speedStep = configVar[float64]{
		envKey:       "SPEED_STEP",
		flagKey:      "speed-step",
		defaultValue: 0.25,
		usage:        "Default playback rate step",
	}
	volumeStep = configVar[float64]{
		envKey:       "VOLUME_STEP",
		flagKey:      "volume-step",
		defaultValue: 0.2,
		usage:        "Default volume step",
	}
	selectorMoviePlayer = configVar[string]{
		envKey:  "SELECTOR_MOVIE_PLAYER",
		flagKey: "selector-movie-player",
		usage:   "Movie player selector override",
	}
	selectorHidable = configVar[[]string]{
		envKey:  "SELECTOR_HIDABLE",
		flagKey: "selector-hidable",
		usage:   "Overlay selectors hidden by HIDE_CONTROLS",
	}
	selectorLiveBadge = configVar[string]{
		envKey:  "SELECTOR_LIVE_BADGE",
		flagKey: "selector-live-badge",
		usage:   "Live badge selector override",
	}
	selectorFullscreen = configVar[string]{
		envKey:  "SELECTOR_FULLSCREEN",
		flagKey: "selector-fullscreen",
		usage:   "Fullscreen button selector override",
	}
	selectorSubtitles = configVar[string]{
		envKey:  "SELECTOR_SUBTITLES",
		flagKey: "selector-subtitles",
		usage:   "Subtitles button selector override",
	}
)

func loadAppConfig() *app.AppConfig {
	for _, v := range []configVar[string]{secret, logPath, host, logLevel, redisHost, redisPassword,
		selectorMoviePlayer, selectorLiveBadge, selectorFullscreen, selectorSubtitles} {
		pflag.String(v.flagKey, v.defaultValue, v.usage)
		v.bind()
	}
	for _, v := range []configVar[int]{port, redisPort} {
		pflag.Int(v.flagKey, v.defaultValue, v.usage)
		v.bind()
	}
	for _, v := range []configVar[float64]{seekStep, speedStep, volumeStep} {
		pflag.Float64(v.flagKey, v.defaultValue, v.usage)
		v.bind()
	}
	for _, v := range []configVar[time.Duration]{stateTTL, bridgeCallTimeout} {
		pflag.Duration(v.flagKey, v.defaultValue, v.usage)
		v.bind()
	}
	pflag.Uint(redisAttempts.flagKey, redisAttempts.defaultValue, redisAttempts.usage)
	redisAttempts.bind()
	pflag.StringSlice(selectorHidable.flagKey, selectorHidable.defaultValue, selectorHidable.usage)
	selectorHidable.bind()
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	config := &app.AppConfig{
		Secret:            viper.GetString(secret.flagKey),
		Host:              viper.GetString(host.flagKey),
		Port:              viper.GetInt(port.flagKey),
		LogLevel:          viper.GetString(logLevel.flagKey),
		LogPath:           viper.GetString(logPath.flagKey),
		RedisPort:         viper.GetInt(redisPort.flagKey),
		RedisHost:         viper.GetString(redisHost.flagKey),
		RedisPassword:     viper.GetString(redisPassword.flagKey),
		RedisAttempts:     viper.GetUint(redisAttempts.flagKey),
		StateTTL:          viper.GetDuration(stateTTL.flagKey),
		BridgeCallTimeout: viper.GetDuration(bridgeCallTimeout.flagKey),
		SeekStep:          viper.GetFloat64(seekStep.flagKey),
		SpeedStep:         viper.GetFloat64(speedStep.flagKey),
		VolumeStep:        viper.GetFloat64(volumeStep.flagKey),
		Selectors: chrome.Selectors{
			MoviePlayer: viper.GetString(selectorMoviePlayer.flagKey),
			Hidable:     viper.GetStringSlice(selectorHidable.flagKey),
			LiveBadge:   viper.GetString(selectorLiveBadge.flagKey),
			Fullscreen:  viper.GetString(selectorFullscreen.flagKey),
			Subtitles:   viper.GetString(selectorSubtitles.flagKey),
		},
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
