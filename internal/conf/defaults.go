// defaults.go default values for viper configuration
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig sets viper defaults for every configuration parameter.
// Values mirror the embedded config.yaml.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Main settings
	viper.SetDefault("main.name", "phototag")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/phototag.log")
	viper.SetDefault("main.log.maxsizemb", 100)
	viper.SetDefault("main.log.maxbackups", 3)
	viper.SetDefault("main.log.maxagedays", 28)

	// Input settings
	viper.SetDefault("input.path", "images")
	viper.SetDefault("input.recursive", true)
	viper.SetDefault("input.extensions", []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tiff"})

	// Vision service settings
	viper.SetDefault("vision.endpoint", "https://vision.googleapis.com/v1/images:annotate")
	viper.SetDefault("vision.apikey", "")
	viper.SetDefault("vision.maxresults", 50)
	viper.SetDefault("vision.timeout", 30*time.Second)
	viper.SetDefault("vision.ratelimit", 500*time.Millisecond)
	viper.SetDefault("vision.maxretries", 3)
	viper.SetDefault("vision.retrydelay", 2*time.Second)
	viper.SetDefault("vision.cachettl", 1*time.Hour)

	// Classification settings
	viper.SetDefault("classify.confidencefloor", 0.5)
	viper.SetDefault("classify.countryfloor", 0.6)
	viper.SetDefault("classify.maxkeywords", 25)
	viper.SetDefault("classify.rulespath", "")
	viper.SetDefault("classify.minasciiratio", 0.85)

	// Sync settings
	viper.SetDefault("sync.batchsize", 10)

	// Output settings
	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "phototag.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "phototag")
	viper.SetDefault("output.mysql.password", "")
	viper.SetDefault("output.mysql.database", "phototag")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
}
