package main

import (
	"context"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marauders-map/client/internal/store"
	"marauders-map/client/logging"
	"marauders-map/client/logging/sinks"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	router, err := buildRouter(cfg)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		router.Close(ctx)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	seed := cfg.BotSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	session := NewSession(SessionConfig{
		Store:         st,
		Publisher:     router,
		Rand:          rand.New(rand.NewSource(seed)),
		NightOverride: cfg.NightOverride,
	})

	if err := session.Join(ctx, cfg.PlayerName, cfg.house()); err != nil {
		log.Fatalf("join: %v", err)
	}
	session.Start(ctx)

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	runBot(ctx, session, rand.New(rand.NewSource(seed+1)), stopCh)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()
	session.Stop(shutdownCtx)
}

func buildRouter(cfg AppConfig) (*logging.Router, error) {
	logCfg := logging.DefaultConfig()
	logCfg.EnabledSinks = cfg.LogSinks
	logCfg.JSON.FilePath = cfg.LogJSONPath

	var named []logging.NamedSink
	if logCfg.HasSink("console") {
		named = append(named, logging.NamedSink{
			Name: "console",
			Sink: sinks.NewConsoleSink(os.Stdout),
		})
	}
	if logCfg.HasSink("json") {
		sink, err := sinks.NewJSONSink(logCfg.JSON.FilePath)
		if err != nil {
			return nil, err
		}
		named = append(named, logging.NamedSink{Name: "json", Sink: sink})
	}
	return logging.NewRouter(logging.ClockFunc(time.Now), logCfg, named), nil
}

func openStore(ctx context.Context, cfg AppConfig) (store.Store, error) {
	if cfg.RelayURL == "" {
		return store.NewMemory().Client(), nil
	}
	return store.DialRelay(ctx, cfg.RelayURL)
}

// runBot walks the player on a drifting random heading so a headless
// process still exercises movement, pickups, and encounters.
func runBot(ctx context.Context, session *Session, rng *rand.Rand, stopCh <-chan os.Signal) {
	ticker := time.NewTicker(stepIntervalWalk)
	defer ticker.Stop()

	dx, dy := 1.0, 0.0
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if rng.Float64() < 0.05 {
				angle := rng.Float64() * 2 * math.Pi
				dx, dy = math.Cos(angle), math.Sin(angle)
			}
			session.Move(ctx, dx, dy)
		}
	}
}
