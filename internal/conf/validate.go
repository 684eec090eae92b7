// validate.go settings validation
package conf

import (
	"fmt"

	"github.com/tkalin/phototag-go/internal/errors"
)

// ValidateSettings checks the loaded settings for values that would make a run
// misbehave in ways that are hard to diagnose later.
func ValidateSettings(settings *Settings) error {
	var validationErrors []string

	if settings.Vision.MaxResults <= 0 {
		validationErrors = append(validationErrors, "vision.maxresults must be positive")
	}
	if settings.Vision.MaxRetries < 0 {
		validationErrors = append(validationErrors, "vision.maxretries cannot be negative")
	}
	if settings.Vision.RateLimit < 0 {
		validationErrors = append(validationErrors, "vision.ratelimit cannot be negative")
	}

	if settings.Classify.ConfidenceFloor < 0 || settings.Classify.ConfidenceFloor > 1 {
		validationErrors = append(validationErrors, "classify.confidencefloor must be between 0.0 and 1.0")
	}
	if settings.Classify.CountryFloor < 0 || settings.Classify.CountryFloor > 1 {
		validationErrors = append(validationErrors, "classify.countryfloor must be between 0.0 and 1.0")
	}
	if settings.Classify.MaxKeywords <= 0 {
		validationErrors = append(validationErrors, "classify.maxkeywords must be positive")
	}
	if settings.Classify.MinASCIIRatio < 0 || settings.Classify.MinASCIIRatio > 1 {
		validationErrors = append(validationErrors, "classify.minasciiratio must be between 0.0 and 1.0")
	}

	if settings.Sync.BatchSize <= 0 {
		validationErrors = append(validationErrors, "sync.batchsize must be positive")
	}

	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		validationErrors = append(validationErrors, "at least one output database must be enabled")
	}
	if settings.Output.SQLite.Enabled && settings.Output.SQLite.Path == "" {
		validationErrors = append(validationErrors, "output.sqlite.path is required when SQLite is enabled")
	}
	if settings.Output.MySQL.Enabled {
		if settings.Output.MySQL.Database == "" {
			validationErrors = append(validationErrors, "output.mysql.database is required when MySQL is enabled")
		}
		if settings.Output.MySQL.Host == "" {
			validationErrors = append(validationErrors, "output.mysql.host is required when MySQL is enabled")
		}
	}

	if len(validationErrors) > 0 {
		return errors.Newf("invalid configuration: %v", validationErrors).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("error_count", fmt.Sprintf("%d", len(validationErrors))).
			Build()
	}
	return nil
}
