package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Lake   LakeConfig   `yaml:"lake" mapstructure:"lake"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Kaggle KaggleConfig `yaml:"kaggle" mapstructure:"kaggle"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// LakeConfig configures the fetcher registry: where artifacts land and
// which base URLs the sources are reached at. Base URLs default to the
// production endpoints; tests point them at local servers.
type LakeConfig struct {
	DataDir           string `yaml:"data_dir" mapstructure:"data_dir"`
	UserAgent         string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs       int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	DataGovBaseURL    string `yaml:"datagov_base_url" mapstructure:"datagov_base_url"`
	TaxesBaseURL      string `yaml:"taxes_base_url" mapstructure:"taxes_base_url"`
	CBSBaseURL        string `yaml:"cbs_base_url" mapstructure:"cbs_base_url"`
	OpentabaBaseURL   string `yaml:"opentaba_base_url" mapstructure:"opentaba_base_url"`
	C4CBaseURL        string `yaml:"c4c_base_url" mapstructure:"c4c_base_url"`
	AskdataBaseURL    string `yaml:"askdata_base_url" mapstructure:"askdata_base_url"`
	OpenPoliceBaseURL string `yaml:"openpolice_base_url" mapstructure:"openpolice_base_url"`
	MunicipalBaseURL  string `yaml:"municipal_base_url" mapstructure:"municipal_base_url"`
}

// StoreConfig configures the S3-compatible object store backend.
type StoreConfig struct {
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	Region    string `yaml:"region" mapstructure:"region"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	UseSSL    bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
}

// KaggleConfig configures the external Kaggle CLI tool.
type KaggleConfig struct {
	Bin string `yaml:"bin" mapstructure:"bin"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("lake.data_dir", "./data_raw")
	v.SetDefault("lake.user_agent", "lake-cli/1.0")
	v.SetDefault("lake.timeout_secs", 30)
	v.SetDefault("lake.datagov_base_url", "https://data.gov.il")
	v.SetDefault("lake.taxes_base_url", "https://nadlan.taxes.gov.il")
	v.SetDefault("lake.cbs_base_url", "https://www.cbs.gov.il/he/publications/doclib")
	v.SetDefault("lake.opentaba_base_url", "https://opentaba-server.herokuapp.com")
	v.SetDefault("lake.c4c_base_url", "https://c4c.org.il")
	v.SetDefault("lake.askdata_base_url", "https://askdata.co.il")
	v.SetDefault("lake.openpolice_base_url", "https://openpolice.hasadna.org.il")
	v.SetDefault("lake.municipal_base_url", "https://municipaldata.hasadna.org.il")
	v.SetDefault("store.endpoint", "localhost:9000")
	v.SetDefault("store.region", "us-east-1")
	v.SetDefault("store.access_key", "minioadmin")
	v.SetDefault("store.secret_key", "minioadmin")
	v.SetDefault("store.bucket", "data-lake")
	v.SetDefault("store.use_ssl", false)
	v.SetDefault("kaggle.bin", "kaggle")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
