package conf

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkalin/phototag-go/internal/errors"
)

func validTestSettings() *Settings {
	s := &Settings{}
	s.Vision.MaxResults = 10
	s.Classify.ConfidenceFloor = 0.5
	s.Classify.CountryFloor = 0.6
	s.Classify.MaxKeywords = 25
	s.Classify.MinASCIIRatio = 0.85
	s.Sync.BatchSize = 10
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = "phototag.db"
	return s
}

func TestValidateSettingsAcceptsDefaults(t *testing.T) {
	require.NoError(t, ValidateSettings(validTestSettings()))
}

func TestValidateSettingsRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero max results", func(s *Settings) { s.Vision.MaxResults = 0 }},
		{"negative retries", func(s *Settings) { s.Vision.MaxRetries = -1 }},
		{"floor above one", func(s *Settings) { s.Classify.ConfidenceFloor = 1.5 }},
		{"negative country floor", func(s *Settings) { s.Classify.CountryFloor = -0.1 }},
		{"zero keywords", func(s *Settings) { s.Classify.MaxKeywords = 0 }},
		{"zero batch size", func(s *Settings) { s.Sync.BatchSize = 0 }},
		{"no database", func(s *Settings) { s.Output.SQLite.Enabled = false }},
		{"sqlite without path", func(s *Settings) { s.Output.SQLite.Path = "" }},
		{"mysql without host", func(s *Settings) {
			s.Output.MySQL.Enabled = true
			s.Output.MySQL.Database = "phototag"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validTestSettings()
			tt.mutate(s)
			err := ValidateSettings(s)
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
		})
	}
}

func TestDefaultsProduceValidSettings(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setDefaultConfig()

	settings := &Settings{}
	require.NoError(t, viper.Unmarshal(settings))
	require.NoError(t, ValidateSettings(settings))

	assert.True(t, settings.Output.SQLite.Enabled)
	assert.Equal(t, 10, settings.Sync.BatchSize)
	assert.InDelta(t, 0.5, settings.Classify.ConfidenceFloor, 1e-9)
	assert.InDelta(t, 0.6, settings.Classify.CountryFloor, 1e-9)
	assert.Equal(t, 25, settings.Classify.MaxKeywords)
	assert.NotEmpty(t, settings.Input.Extensions)
}

func TestEmbeddedDefaultConfigPresent(t *testing.T) {
	assert.NotEmpty(t, getDefaultConfig())
}
