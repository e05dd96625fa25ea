package config

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	DEVELOPMENT = "development"
	STAGING     = "staging"
	PRODUCTION  = "production"
)

const (
	LoadFormatSQLite = "sqlite"
	LoadFormatCSV    = "csv"
)

type SourceFiles struct {
	GoogleAds      string `yaml:"google_ads" envconfig:"GOOGLE_ADS_FILE"`
	FacebookAds    string `yaml:"facebook_ads" envconfig:"FACEBOOK_ADS_FILE"`
	EmailCampaigns string `yaml:"email_campaigns" envconfig:"EMAIL_CAMPAIGNS_FILE"`
	WebTraffic     string `yaml:"web_traffic" envconfig:"WEB_TRAFFIC_FILE"`
	Clients        string `yaml:"clients" envconfig:"CLIENTS_FILE"`
	Revenue        string `yaml:"revenue" envconfig:"REVENUE_FILE"`
}

type Configuration struct {
	AppName      string      `yaml:"app_name" envconfig:"APP_NAME"`
	Env          string      `yaml:"env" envconfig:"ENV"`
	RawDataDir   string      `yaml:"raw_data_dir" envconfig:"RAW_DATA_DIR"`
	ReportsDir   string      `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LoadFormat   string      `yaml:"load_format" envconfig:"LOAD_FORMAT"`
	DBPath       string      `yaml:"db_path" envconfig:"DB_PATH"`
	OutputFile   string      `yaml:"output_file" envconfig:"OUTPUT_FILE"`
	TableName    string      `yaml:"table_name" envconfig:"TABLE_NAME"`
	Sources      SourceFiles `yaml:"sources"`
	LookbackDays int         `yaml:"lookback_days" envconfig:"LOOKBACK_DAYS"`
	// MappingOverridesFile points to an optional YAML file with extra
	// raw-column aliases per source, merged into the built-in schema maps.
	MappingOverridesFile string `yaml:"mapping_overrides_file" envconfig:"MAPPING_OVERRIDES_FILE"`
}

var configuration *Configuration = nil

// DefaultConfiguration mirrors the layout the mock data generator writes.
// LookbackDays 0 keeps the full pre-conversion history eligible for
// attribution; any positive value bounds the window in days.
func DefaultConfiguration() *Configuration {
	rawDir := filepath.Join("data", "raw")
	return &Configuration{
		AppName:    "pipeline",
		Env:        DEVELOPMENT,
		RawDataDir: rawDir,
		ReportsDir: filepath.Join("data", "reports"),
		LoadFormat: LoadFormatSQLite,
		DBPath:     filepath.Join("data", "analytics.db"),
		OutputFile: filepath.Join("data", "processed", "marketing_analytics.csv"),
		TableName:  "marketing_analytics",
		Sources: SourceFiles{
			GoogleAds:      filepath.Join(rawDir, "google_ads.csv"),
			FacebookAds:    filepath.Join(rawDir, "facebook_ads.json"),
			EmailCampaigns: filepath.Join(rawDir, "email_campaigns.csv"),
			WebTraffic:     filepath.Join(rawDir, "web_traffic.csv"),
			Clients:        filepath.Join(rawDir, "clients.csv"),
			Revenue:        filepath.Join(rawDir, "revenue.csv"),
		},
		LookbackDays: 0,
	}
}

// InitConf applies MARTECH_* environment overrides on top of the given
// configuration, validates it and initializes logging.
func InitConf(config *Configuration) error {
	if config == nil {
		config = DefaultConfiguration()
	}

	if err := envconfig.Process("martech", config); err != nil {
		return errors.Wrap(err, "failed to process env overrides")
	}

	if config.Env != DEVELOPMENT && config.Env != STAGING && config.Env != PRODUCTION {
		return errors.Errorf("env [ %s ] not recognised", config.Env)
	}
	if config.LoadFormat != LoadFormatSQLite && config.LoadFormat != LoadFormatCSV {
		return errors.Errorf("load format [ %s ] not recognised", config.LoadFormat)
	}
	if config.LookbackDays < 0 {
		return errors.Errorf("lookback_days must not be negative, got %d", config.LookbackDays)
	}

	configuration = config
	initLogging()
	return nil
}

func initLogging() {
	if IsDevelopment() {
		log.SetLevel(log.DebugLevel)
		return
	}

	// Log as JSON instead of the default ASCII formatter.
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
}

func GetConfig() *Configuration {
	if configuration == nil {
		configuration = DefaultConfiguration()
	}
	return configuration
}

func IsDevelopment() bool {
	return GetConfig().Env == DEVELOPMENT
}

// MappingOverrides is the schema of the optional column-mapping YAML file:
// source name -> { raw column name -> canonical column name }.
type MappingOverrides map[string]map[string]string

func LoadMappingOverrides(filePath string) (MappingOverrides, error) {
	if filePath == "" {
		return nil, nil
	}

	data, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read mapping overrides file %s", filePath)
	}

	overrides := make(MappingOverrides)
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, errors.Wrapf(err, "failed to parse mapping overrides file %s", filePath)
	}
	return overrides, nil
}
