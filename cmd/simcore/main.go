package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/config"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/data"
	"github.com/l1jgo/simcore/internal/input"
	"github.com/l1jgo/simcore/internal/metrics"
	"github.com/l1jgo/simcore/internal/scripting"
	"github.com/l1jgo/simcore/internal/system"
	"github.com/l1jgo/simcore/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(tick time.Duration) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              simcore  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mtick:\033[0m %s\n\n", tick)
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main simulation logic ─────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Simulation.TickRate)

	// 3. Scripts and definitions
	printSection("data")
	engine, err := scripting.NewEngine(cfg.Data.Scripts, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	printStat("formulas", len(engine.Names()))

	defs, err := data.Load(cfg.Data.Skills, cfg.Data.Items, engine)
	if err != nil {
		return fmt.Errorf("definitions: %w", err)
	}
	nSkills, nItems := defs.Counts()
	printStat("skills", nSkills)
	printStat("items", nItems)

	scenes, err := data.LoadScenes(cfg.Data.Scenes)
	if err != nil {
		return fmt.Errorf("scenes: %w", err)
	}
	printStat("scenes", len(scenes))
	fmt.Println()

	// 4. World state and the event writer
	clock := ecs.NewClock()
	state := world.NewState(clock, defs)
	bus := event.NewBus()
	writer := world.NewWriter(state, bus, log)
	writer.Attach()
	defer writer.Detach()

	printSection("world")
	spawned, claimed := 0, false
	for _, sc := range scenes {
		spawned += loadScene(state, writer, bus, sc, &claimed)
	}
	printStat("entities", spawned)
	fmt.Println()

	// 5. Systems and metrics
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	var poller input.Poller
	if cfg.Input.Script != "" {
		script, err := input.LoadScript(cfg.Input.Script)
		if err != nil {
			return fmt.Errorf("input: %w", err)
		}
		printStat("input polls", script.Len())
		poller = script
	}

	queue := event.NewQueue[event.Collision](cfg.Simulation.CollisionQueueSize)
	runner := coresys.NewRunner(clock, log)
	player := system.RegisterAll(runner, system.Deps{
		State:      state,
		Bus:        bus,
		Defs:       defs,
		Sim:        cfg.Simulation,
		Input:      cfg.Input,
		Poller:     poller,
		Collisions: queue,
		Rand:       rand.New(rand.NewSource(seed)),
		Log:        log,
	})
	defer player.Close()

	m := metrics.New()
	runner.SetObserver(m)
	bus.Observe(m.ObserveEvent)
	m.WatchCounter("collision_queue_dropped_total", "Collision records dropped because the queue was full.",
		func() float64 { return float64(queue.Dropped()) })
	m.SampleGauge("live_entities", "Entities currently alive.",
		func() float64 { return float64(state.World.Pool().Len()) })
	printOK("systems: " + strings.Join(runner.Describe(), " "))

	// 6. Run until signalled or MaxFrames
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Enabled {
		srv := &http.Server{Addr: cfg.Metrics.BindAddress, Handler: m.Handler()}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		printReady("metrics on " + cfg.Metrics.BindAddress)
	}

	g.Go(func() error {
		return loop(ctx, runner, cfg.Simulation, log)
	})
	printReady(fmt.Sprintf("simulation loop (tick: %s)", cfg.Simulation.TickRate))
	fmt.Println()

	err = g.Wait()
	if errors.Is(err, errMaxFrames) {
		err = nil
	}
	log.Info("simulation stopped",
		zap.Duration("world_time", state.TotalElapsedTime()),
		zap.Uint64("collisions_dropped", queue.Dropped()))
	return err
}

// errMaxFrames ends the loop once the configured frame budget is spent.
var errMaxFrames = errors.New("frame limit reached")

func loop(ctx context.Context, runner *coresys.Runner, sim config.SimulationConfig, log *zap.Logger) error {
	ticker := time.NewTicker(sim.TickRate)
	defer ticker.Stop()

	var frames uint64
	for {
		select {
		case <-ticker.C:
			runner.Tick(sim.TickRate)
			frames++
			if sim.MaxFrames > 0 && frames >= sim.MaxFrames {
				log.Info("frame limit reached", zap.Uint64("frames", frames))
				return errMaxFrames
			}
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return nil
		}
	}
}

// loadScene registers the scene's scenario and spawns its population. The
// first player spawn across all scenes becomes locally controlled.
func loadScene(state *world.State, w *world.Writer, bus *event.Bus, sc *data.Scene, claimed *bool) int {
	state.AddScenario(&world.Scenario{ID: sc.ID, Name: sc.Name, Dim: sc.Dim, Objects: sc.Objects()})

	n := 0
	for _, sp := range sc.Spawns {
		spec := world.SpawnSpec{
			Kind:      sp.Kind,
			Position:  component.Position{Scenario: sc.ID, Point: sp.At},
			Stats:     sp.Stats,
			Resources: &component.Resources{HP: sp.HP, MaxHP: sp.HP, MP: sp.MP, MaxMP: sp.MP},
			Equipment: sp.Equipment,
		}
		if sp.Radius > 0 {
			spec.Collider = &component.Collider{Radius: sp.Radius}
		}
		if !*claimed && sp.Kind == component.KindPlayer {
			spec.Controlled = &component.Controlled{Source: "local"}
			*claimed = true
		}
		id := w.Spawn(spec)
		if len(sp.Path) > 0 {
			bus.Comms.Publish(event.Comms{Case: event.CommsMoveIntent, Source: id, Movement: component.FollowPath(sp.Path)})
		}
		n++
	}
	return n
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
