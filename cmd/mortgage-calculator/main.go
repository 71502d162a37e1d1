package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iwvelando/mortgage-calculator/internal/calculator"
	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/internal/export"
	"github.com/iwvelando/mortgage-calculator/internal/logging"
	"github.com/iwvelando/mortgage-calculator/internal/storage"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/output"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	saveName := flag.String("save", "", "save the calculation under this name in the configured storage")
	exportPath := flag.String("export", "", "write the calculation to this file (.json, .yaml or .yml)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	if *outputFormatFlag != "" {
		conf.Output.Format = *outputFormatFlag
	}
	if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}
	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if *saveName != "" {
		if err := conf.Storage.RequirePersistent(); err != nil {
			logger.Fatal("-save needs a redis or postgres storage backend",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	ctx := context.Background()
	report, err := calculator.NewService(logger).Calculate(ctx, conf.Request())
	if err != nil {
		logger.Fatal("failed to calculate mortgage",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	calc := storage.SavedCalculation{
		Name:    *saveName,
		Date:    time.Now().UTC(),
		Values:  report.Loan,
		Results: report.Evaluation,
	}
	if *saveName != "" {
		calc = save(ctx, logger, conf.Storage, calc)
	}
	if *exportPath != "" {
		if err := writeExport(*exportPath, calc); err != nil {
			logger.Fatal("failed to export calculation",
				zap.String("op", "main"),
				zap.String("path", *exportPath),
				zap.Error(err),
			)
		}
	}

	if err := output.Write(os.Stdout, conf.Output.Format, report); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

func save(ctx context.Context, logger *zap.Logger, cfg storage.Config, calc storage.SavedCalculation) storage.SavedCalculation {
	store, closeStore, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage",
			zap.String("op", "main.save"),
			zap.Error(err),
		)
	}
	defer closeStore()

	if err := store.SaveValues(ctx, calc.Values); err != nil {
		logger.Warn("failed to remember calculator values",
			zap.String("op", "main.save"),
			zap.Error(err),
		)
	}
	saved, err := store.Save(ctx, calc)
	if err != nil {
		logger.Fatal("failed to save calculation",
			zap.String("op", "main.save"),
			zap.Error(err),
		)
	}
	logger.Info("saved calculation",
		zap.String("op", "main.save"),
		zap.String("id", saved.ID),
		zap.String("backend", cfg.Backend),
	)
	return saved
}

func writeExport(path string, calc storage.SavedCalculation) error {
	if calc.Name == "" {
		calc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = export.ExportYAML(calc)
	default:
		data, err = export.Export(calc)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
