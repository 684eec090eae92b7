package analysis

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tkalin/phototag-go/internal/classify"
	"github.com/tkalin/phototag-go/internal/conf"
	"github.com/tkalin/phototag-go/internal/datastore"
	"github.com/tkalin/phototag-go/internal/errors"
	"github.com/tkalin/phototag-go/internal/vision"
)

// RunSync wires a full enrichment run from settings: it opens the store,
// builds the vision client and the classification engine, and executes the
// run under a signal-aware context so Ctrl-C stops cleanly between images.
func RunSync(settings *conf.Settings, opts RunOptions) (RunSummary, error) {
	store := datastore.New(settings)
	if store == nil {
		return RunSummary{}, errors.Newf("no output database is enabled").
			Component("analysis").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err := store.Open(); err != nil {
		return RunSummary{}, err
	}
	defer func() {
		_ = store.Close()
	}()

	engine, err := buildEngine(settings)
	if err != nil {
		return RunSummary{}, err
	}

	runner := NewRunner(
		settings,
		store,
		vision.NewClient(&settings.Vision),
		engine,
		DefaultMetrics(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runner.Run(ctx, opts)
}

// buildEngine loads the configured rule table, falling back to the built-in
// rules when no external path is set.
func buildEngine(settings *conf.Settings) (*classify.Engine, error) {
	var rules *classify.RuleTable
	if settings.Classify.RulesPath != "" {
		var err error
		rules, err = classify.LoadRules(settings.Classify.RulesPath)
		if err != nil {
			return nil, err
		}
	}
	return classify.NewEngine(rules, classify.Options{
		ConfidenceFloor: settings.Classify.ConfidenceFloor,
		CountryFloor:    settings.Classify.CountryFloor,
		MaxKeywords:     settings.Classify.MaxKeywords,
		MinASCIIRatio:   settings.Classify.MinASCIIRatio,
	})
}
