package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/rs/zerolog"

	"breedd/internal/breeds"
	"breedd/internal/config"
	"breedd/internal/manager"
	"breedd/internal/registry"
	"breedd/internal/saliency"
)

// newManager wires registry, saliency engine and admission limits from cfg.
// Classifiers are not loaded yet.
func newManager(cfg config.Config, log zerolog.Logger) *manager.Manager {
	reg := registry.New(cfg.Registry(&log))
	var engine *saliency.Engine
	if !cfg.DisableGradCAM {
		engine = saliency.NewEngine(saliency.Options{Opacity: cfg.GradCAMOpacity, Logger: &log})
	}
	return manager.NewWithConfig(manager.ManagerConfig{
		Registry:      reg,
		Saliency:      engine,
		TopK:          cfg.TopK,
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxWait:       time.Duration(cfg.MaxWait),
		MaxInflight:   cfg.MaxInflight,
		Logger:        &log,
	})
}

// loadModels loads every classifier. Demo fallbacks are reported as warnings;
// the manager still serves them.
func loadModels(mgr *manager.Manager, log zerolog.Logger, load func() error) error {
	start := time.Now()
	err := load()
	switch {
	case err == nil:
		log.Info().Dur("took", time.Since(start)).Bool("model_loaded", mgr.ModelLoaded()).Msg("classifiers ready")
	case mgr.Ready():
		log.Warn().Err(err).Dur("took", time.Since(start)).Msg("classifiers ready with fallbacks")
		return nil
	default:
		log.Error().Err(err).Msg("classifier load failed")
	}
	return err
}

// loadCatalog reads the breed catalog. A missing file leaves the service
// running with an empty catalog.
func loadCatalog(path string, log zerolog.Logger) (*breeds.Catalog, error) {
	c, err := breeds.Load(path)
	switch {
	case err == nil:
		log.Info().Str("path", path).Int("breeds", c.Len()).Msg("breed catalog loaded")
		return c, nil
	case errors.Is(err, fs.ErrNotExist):
		log.Warn().Str("path", path).Msg("breed catalog not found; catalog endpoints will report it as not loaded")
		return breeds.Empty(), nil
	default:
		return nil, err
	}
}
