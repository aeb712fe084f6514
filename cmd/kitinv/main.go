package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/config"
	"github.com/vsinha/kitinv/pkg/interfaces/cli/commands"
)

// command is implemented by every subcommand
type command interface {
	Execute(ctx context.Context) error
}

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	logger, err := config.NewLogger(cfg.Server.AppEnv, cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	registry, err := config.LoadRegistry(cfg.StoresFile)
	if err != nil {
		logger.Error("failed to load store registry", zap.Error(err))
		os.Exit(1)
	}

	runtime := &commands.Runtime{
		Env:      cfg,
		Registry: registry,
		Logger:   logger,
		Out:      os.Stdout,
	}

	cmd, err := parseCommand(os.Args[1:], runtime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		logger.Sync() //nolint:errcheck
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseCommand picks the subcommand from the first argument. Anything that is
// not a known subcommand is parsed as reconcile flags.
func parseCommand(args []string, runtime *commands.Runtime) (command, error) {
	name := "reconcile"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		name, args = args[0], args[1:]
	}

	switch name {
	case "reconcile":
		fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
		var cfg commands.Config
		fs.StringVar(&cfg.StoreID, "store", "", "Store to reconcile (default: mexico)")
		fs.StringVar(&cfg.KitSKU, "kit", "", "Only compute this kit")
		fs.StringVar(&cfg.ScenarioDir, "scenario", "", "Path to scenario directory containing CSV files")
		fs.StringVar(&cfg.OutputDir, "output", "", "Output directory for results (optional)")
		fs.StringVar(&cfg.Format, "format", "text", "Output format: text, json, csv")
		fs.IntVar(&cfg.WindowDays, "days", 0, "Sales velocity window in days")
		fs.StringVar(&cfg.Disassemble, "disassemble", "", "Kit to simulate disassembling")
		fs.IntVar(&cfg.DisassembleQty, "qty", 1, "Number of kits to disassemble")
		fs.BoolVar(&cfg.Refresh, "refresh", false, "Ignore the cached sales velocity")
		fs.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose output")
		fs.BoolVar(&cfg.Schema, "schema", false, "Print the JSON schema of the json report")
		fs.BoolVar(&cfg.Help, "help", false, "Show help message")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return commands.NewReconcileCommand(cfg, runtime), nil

	case "stores":
		return commands.NewStoresCommand(runtime), nil

	case "clear-cache":
		fs := flag.NewFlagSet("clear-cache", flag.ContinueOnError)
		storeID := fs.String("store", "", "Store whose cache to clear (default: mexico)")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return commands.NewClearCacheCommand(*storeID, runtime), nil

	case "generate":
		fs := flag.NewFlagSet("generate", flag.ContinueOnError)
		var cfg commands.GenerateConfig
		fs.IntVar(&cfg.Kits, "kits", 10, "Number of kits to generate")
		fs.IntVar(&cfg.Components, "components", 25, "Number of components to generate")
		fs.IntVar(&cfg.Orders, "orders", 200, "Number of orders in the history")
		fs.IntVar(&cfg.Days, "days", 30, "Spread orders over this many days")
		fs.Float64Var(&cfg.Stock, "stock", 1.0, "Stock multiplier")
		fs.StringVar(&cfg.OutputDir, "output", "", "Output directory for generated files")
		fs.Int64Var(&cfg.Seed, "seed", 0, "Random seed for reproducible generation")
		fs.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose output")
		fs.BoolVar(&cfg.Help, "help", false, "Show help message")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return commands.NewGenerateCommand(cfg, runtime.Out), nil

	case "session":
		fs := flag.NewFlagSet("session", flag.ContinueOnError)
		var cfg commands.SessionConfig
		fs.StringVar(&cfg.StoreID, "store", "", "Store to load (default: mexico)")
		fs.StringVar(&cfg.ScenarioDir, "scenario", "", "Path to scenario directory containing CSV files")
		fs.IntVar(&cfg.WindowDays, "days", 0, "Sales velocity window in days")
		fs.BoolVar(&cfg.Help, "help", false, "Show help message")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return commands.NewSessionCommand(cfg, runtime, os.Stdin), nil

	default:
		return nil, fmt.Errorf("unknown command: %s (run 'kitinv -help')", name)
	}
}
