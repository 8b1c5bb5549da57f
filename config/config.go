package config

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// MigrationsConfig MigrationsConfig.
type MigrationsConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// SMTPConfig SMTPConfig.
type SMTPConfig struct {
	Hostname string `mapstructure:"hostname" yaml:"hostname"`
	Port     int    `mapstructure:"port"     yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

// FillRateConfig thresholds are percentages: rate <= Critical is critical,
// rate < Warning is warning, everything else is healthy.
type FillRateConfig struct {
	CriticalThreshold float64 `mapstructure:"critical-threshold" yaml:"critical-threshold"`
	WarningThreshold  float64 `mapstructure:"warning-threshold"  yaml:"warning-threshold"`
}

// DuplicatesConfig DuplicatesConfig.
type DuplicatesConfig struct {
	// Threshold is a percentage (0-100), normalized to 0-1 internally.
	Threshold   int  `mapstructure:"threshold"    yaml:"threshold"`
	CheckLabels bool `mapstructure:"check-labels" yaml:"check-labels"`
}

// ApprovalConfig ApprovalConfig.
type ApprovalConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// AutoApproveThreshold of 0 means every proposal requires approval.
	AutoApproveThreshold int    `mapstructure:"auto-approve-threshold" yaml:"auto-approve-threshold"`
	NotificationEmail    string `mapstructure:"notification-email"     yaml:"notification-email"`
	EmailFrom            string `mapstructure:"email-from"             yaml:"email-from"`
}

// Config Application config definition.
type Config struct {
	Enabled                 bool             `mapstructure:"enabled"                   yaml:"enabled"`
	DSN                     string           `mapstructure:"dsn"                       yaml:"dsn"`
	Migrations              MigrationsConfig `mapstructure:"migrations"                yaml:"migrations"`
	Redis                   string           `mapstructure:"redis"                     yaml:"redis"`
	DefaultEntityType       string           `mapstructure:"default-entity-type"       yaml:"default-entity-type"`
	ExcludeSystemAttributes bool             `mapstructure:"exclude-system-attributes" yaml:"exclude-system-attributes"`
	DefaultLocale           string           `mapstructure:"default-locale"            yaml:"default-locale"`
	ExportAllLocales        bool             `mapstructure:"export-all-locales"        yaml:"export-all-locales"`
	FillRate                FillRateConfig   `mapstructure:"fill-rate"                 yaml:"fill-rate"`
	Duplicates              DuplicatesConfig `mapstructure:"duplicates"                yaml:"duplicates"`
	Approval                ApprovalConfig   `mapstructure:"approval"                  yaml:"approval"`
	SMTP                    SMTPConfig       `mapstructure:"smtp"                      yaml:"smtp"`
}

// LoadConfig reads config.yaml from dir, with ATTRCARE_* env overrides.
func LoadConfig(dir string) Config {
	cfg := Config{}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(dir)
	viper.SetEnvPrefix("ATTRCARE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("enabled", true)
	viper.SetDefault("default-entity-type", "catalog_product")
	viper.SetDefault("exclude-system-attributes", true)
	viper.SetDefault("default-locale", "en")
	viper.SetDefault("fill-rate.critical-threshold", 25.0)
	viper.SetDefault("fill-rate.warning-threshold", 50.0)
	viper.SetDefault("duplicates.threshold", 80)
	viper.SetDefault("duplicates.check-labels", true)
	viper.SetDefault("approval.enabled", true)
	viper.SetDefault("approval.auto-approve-threshold", 0)

	err := viper.ReadInConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		logrus.Fatal(err)
	}

	return cfg
}
