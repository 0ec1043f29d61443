package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	router "github.com/dkeye/Rendezvous/internal/adapters/http"
	"github.com/dkeye/Rendezvous/internal/adapters/rtc"
	signaling "github.com/dkeye/Rendezvous/internal/adapters/signal"
	"github.com/dkeye/Rendezvous/internal/app"
	"github.com/dkeye/Rendezvous/internal/app/stats"
	"github.com/dkeye/Rendezvous/internal/config"
)

func newServeCmd(v *viper.Viper, configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the signalling server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v, *configFile)
		},
	}

	cmd.Flags().String("host", "", "Listen host")
	cmd.Flags().IntP("port", "p", 0, "Listen port")
	cmd.Flags().String("mode", "", "gin mode: debug, release or test")
	cmd.Flags().String("log-level", "", "Log level")
	cmd.Flags().String("redis-addr", "", "Redis address for the visit counter (in-memory when empty)")

	for key, flag := range map[string]string{
		"host":       "host",
		"port":       "port",
		"mode":       "mode",
		"log_level":  "log-level",
		"redis_addr": "redis-addr",
	} {
		_ = v.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
	return cmd
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Mode == "debug" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func newVisitCounter(ctx context.Context, cfg *config.Config) (stats.VisitCounter, func()) {
	if cfg.RedisAddr == "" {
		return stats.NewMemoryVisits(), func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("module", "main").Str("addr", cfg.RedisAddr).Msg("redis unreachable, counting visits in memory")
		_ = rdb.Close()
		return stats.NewMemoryVisits(), func() {}
	}
	log.Info().Str("module", "main").Str("addr", cfg.RedisAddr).Msg("visit counter on redis")
	return stats.NewRedisVisits(rdb, stats.DefaultVisitsKey), func() { _ = rdb.Close() }
}

func runServe(parent context.Context, v *viper.Viper, configFile string) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// console logging until the config decides otherwise
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	if cfg.Secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return err
		}
		cfg.Secret = hex.EncodeToString(buf)
		log.Warn().Str("module", "main").Msg("no session secret configured, generated an ephemeral one")
	}

	iceServers, err := rtc.ICEServersFromConfig(cfg.ICEServers)
	if err != nil {
		return err
	}
	action, err := app.ParseBackpressureAction(cfg.BackpressurePolicy)
	if err != nil {
		return err
	}

	hub := signaling.NewHub(app.SimplePolicy{Action: action})
	coord := app.NewCoordinator(hub, app.Options{
		DefaultCapacity:  cfg.DefaultCapacity,
		MaxCapacity:      cfg.MaxCapacity,
		HostReassignment: cfg.HostReassignment,
		IDGenerator:      app.RandomRoomID(cfg.RoomIDLength),
	})
	ctl := signaling.NewSignalWSController(coord, hub, signaling.Settings{
		ReadLimit:       cfg.ReadLimit,
		PingPeriod:      cfg.PingPeriod,
		PongWait:        cfg.PongWait,
		WriteWait:       cfg.WriteWait,
		SendBuffer:      cfg.SendBuffer,
		SignalRate:      cfg.SignalRate,
		SignalBurst:     cfg.SignalBurst,
		MaxPayloadBytes: cfg.MaxPayloadBytes,
		AllowedOrigins:  cfg.CORSOrigins,
	})

	visits, closeVisits := newVisitCounter(ctx, cfg)
	defer closeVisits()

	reaper := app.NewReaper(coord, cfg.ReaperInterval, cfg.ReaperRetention)
	reaper.Start(ctx)
	defer reaper.Stop()

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Rooms:      coord,
		Conns:      hub,
		Visits:     visits,
		Signal:     ctl,
		ICEServers: iceServers,
		StartedAt:  time.Now(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("module", "main").Str("addr", cfg.Addr()).Str("version", version).Msg("Rendezvous server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	log.Info().Str("module", "main").Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Str("module", "main").Msg("Server forced to shutdown")
	}
	log.Info().Str("module", "main").Msg("Server exited gracefully")
	return nil
}
