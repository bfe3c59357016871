package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"vnhdrive/core"
	"vnhdrive/host/config"
	"vnhdrive/host/console"
	"vnhdrive/host/logging"
	"vnhdrive/host/periphboard"
)

var (
	configPath = flag.String("config", "", "Path to YAML config (defaults apply when empty)")
	backend    = flag.String("backend", "", "Override backend: sim or periph")
	verbose    = flag.Bool("verbose", false, "Enable debug logging and driver traces")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *verbose {
		cfg.LogLevel = "debug"
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	logger, err := logging.NewLogger("vnh-host", cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	core.SetDebugWriter(logging.CoreDebugWriter(logger.Named("driver")))
	core.SetDebugEnabled(cfg.Debug)
	if core.IsDebugEnabled() {
		logger.Debug("driver traces enabled")
	}

	board, closeBoard, err := newBoard(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeBoard(); cerr != nil {
			logger.Errorw("failed to release board", "error", cerr)
		}
	}()

	motor := core.NewVNH5019(board, cfg.Pins.VNH5019Pins())
	if err := motor.Init(); err != nil {
		return errors.Wrap(err, "initializing driver")
	}
	logger.Infow("driver ready", "backend", cfg.Backend, "pins", cfg.Pins)

	fmt.Println("VNH5019 host console (type 'help' for available commands, 'quit' to exit)")
	err = console.New(motor, os.Stdout, logger).Run(os.Stdin)

	// leave the motor coasting whatever happened
	if cerr := motor.SetSpeed(0); cerr != nil {
		logger.Errorw("failed to coast motor on exit", "error", cerr)
	}
	return err
}

// newBoard builds the selected backend and a function releasing it
func newBoard(cfg *config.Config, logger *zap.SugaredLogger) (core.Board, func() error, error) {
	pins := cfg.Pins.VNH5019Pins()

	switch cfg.Backend {
	case config.BackendPeriph:
		board, err := periphboard.NewHostBoard(logger.Named("periph"), nil)
		if err != nil {
			return nil, nil, err
		}
		if cfg.ADC.Enabled() {
			if err := board.BindADS1x15(pins.CS, cfg.ADC.ADS1x15()); err != nil {
				board.Close()
				return nil, nil, errors.Wrap(err, "binding current sense ADC")
			}
		}
		return board, board.Close, nil
	default:
		sim := core.NewSimBoard()
		sim.SetInput(pins.ENADiagA, cfg.Sim.DiagA)
		sim.SetInput(pins.ENBDiagB, cfg.Sim.DiagB)
		sim.SetAnalog(pins.CS, core.ADCValue(cfg.Sim.CurrentSense))
		return sim, func() error { return nil }, nil
	}
}
