package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docload/docload/internal/config"
	"github.com/docload/docload/internal/datagen"
	"github.com/docload/docload/internal/driver"
	"github.com/docload/docload/internal/metrics"
	"github.com/docload/docload/internal/output"
	"github.com/docload/docload/internal/plan"
	"github.com/docload/docload/internal/runner"
	"github.com/docload/docload/internal/workload"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run load from the workload definitions in the config directory",
	Long: `Load every workload definition from the config directory, provision
collections and indexes from the matching startup descriptors, then drive the
configured commands with the requested number of virtual users.

  docload run --connection-string "mongodb://localhost:27017" \
    --config-dir ./config --users 20 --duration 2m`,
	RunE: runLoad,
}

func init() {
	runCmd.Flags().String("connection-string", "", "database connection string (required)")
	runCmd.Flags().Int("users", 1, "number of concurrent virtual users")
	runCmd.Flags().Duration("duration", time.Minute, "how long to run the load")
	runCmd.Flags().Int64("seed", 0, "random seed for reproducible value generation (0 = random)")
	runCmd.Flags().String("workload", "", "run only the named workload")
	runCmd.MarkFlagRequired("connection-string")
}

func runLoad(cmd *cobra.Command, args []string) error {
	log := loggerFromFlags(cmd)
	defer log.Sync()

	configDir, _ := cmd.Flags().GetString("config-dir")
	uri, _ := cmd.Flags().GetString("connection-string")
	users, _ := cmd.Flags().GetInt("users")
	duration, _ := cmd.Flags().GetDuration("duration")
	seed, _ := cmd.Flags().GetInt64("seed")
	only, _ := cmd.Flags().GetString("workload")

	workloads, err := config.LoadDir(configDir, log)
	if err != nil {
		return err
	}
	if only != "" {
		workloads = filterWorkloads(workloads, only)
	}
	if len(workloads) == 0 {
		return fmt.Errorf("no workload definitions found in %s", configDir)
	}

	genOpts := []datagen.Option{datagen.WithLogger(log)}
	if seed != 0 {
		genOpts = append(genOpts, datagen.WithSeed(seed))
	}
	planner := plan.NewPlanner(plan.NewCache(), datagen.New(genOpts...))
	driverCfg := driver.Config{URI: uri}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runStartups(ctx, configDir, workloads, driverCfg, planner, log); err != nil {
		return err
	}

	engine := metrics.NewEngine()
	factory := func(vuID int) runner.Executor {
		return driver.NewExecutor(driverCfg, planner, log.With(zap.Int("vu", vuID)))
	}
	sched := runner.NewScheduler(workloads, factory, engine, log, runner.Options{
		Users:    users,
		Duration: duration,
		Seed:     seed,
	})

	err = sched.Run(ctx)
	output.NewConsole(os.Stdout).Summary(engine.GetSnapshot())
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// runStartups provisions databases for every workload that asks for it.
func runStartups(ctx context.Context, configDir string, workloads []*workload.Workload, cfg driver.Config, planner *plan.Planner, log *zap.Logger) error {
	for _, wl := range workloads {
		if wl.StartUp == workload.StartupNever {
			log.Info("skipping startup", zap.String("workload", wl.Name))
			continue
		}
		startup, err := config.LoadStartup(configDir, wl.Name)
		if err != nil {
			return err
		}
		if startup == nil {
			log.Warn("workload requests startup but has no startup descriptor",
				zap.String("workload", wl.Name))
			continue
		}
		log.Info("running startup", zap.String("workload", wl.Name))
		exec := driver.NewExecutor(cfg, planner, log.With(zap.String("workload", wl.Name)))
		if err := exec.RunStartup(ctx, startup); err != nil {
			return fmt.Errorf("startup for workload %s: %w", wl.Name, err)
		}
	}
	return nil
}

func filterWorkloads(workloads []*workload.Workload, name string) []*workload.Workload {
	var out []*workload.Workload
	for _, wl := range workloads {
		if wl.Name == name {
			out = append(out, wl)
		}
	}
	return out
}
