package commands

import (
	"fmt"

	"github.com/wonny/realdeal/internal/connectors"
	"github.com/wonny/realdeal/internal/dealconfig"
	"github.com/wonny/realdeal/internal/filters"
	"github.com/wonny/realdeal/internal/pipeline"
	"github.com/wonny/realdeal/internal/storage"
	"github.com/wonny/realdeal/internal/underwriting"
	"github.com/wonny/realdeal/pkg/config"
	"github.com/wonny/realdeal/pkg/logger"
)

// initBase loads the environment config, the strategy config, and the
// logger. Every command starts here.
func initBase() (*config.Config, *dealconfig.Config, *logger.Logger, error) {
	appCfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		appCfg.LogLevel = "debug"
	}

	log := logger.New(appCfg)

	dealCfg, err := loadStrategy(log)
	if err != nil {
		return nil, nil, nil, err
	}

	return appCfg, dealCfg, log, nil
}

// loadStrategy reads the strategy file named by --strategy, falling
// back to the built-in defaults when the flag is unset.
func loadStrategy(log *logger.Logger) (*dealconfig.Config, error) {
	if strategyFile == "" {
		return dealconfig.Default(), nil
	}

	cfg, _, err := dealconfig.Load(strategyFile)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}

	for _, warning := range dealconfig.Warn(cfg) {
		log.WithFields(map[string]interface{}{
			"code":    warning.Code,
			"message": warning.Message,
		}).Warn("Strategy configuration warning")
	}

	hash, err := dealconfig.Hash(cfg)
	if err == nil {
		log.WithFields(map[string]interface{}{
			"file": strategyFile,
			"hash": hash[:12],
		}).Info("Strategy loaded")
	}

	return cfg, nil
}

// buildPipeline wires the full scan pipeline. repo may be nil for
// in-memory runs.
func buildPipeline(appCfg *config.Config, dealCfg *dealconfig.Config, repo *storage.Repository, log *logger.Logger) *pipeline.Pipeline {
	connector := connectors.NewRealtor(appCfg, dealCfg, log)
	filter := filters.New(dealCfg, log)
	orch := underwriting.NewOrchestrator(dealCfg, log, appCfg.Workers)

	var store pipeline.Store
	if repo != nil {
		store = repo
	}
	return pipeline.New(connector, filter, orch, store, dealCfg, log)
}
