package types

import "time"

// Config holds every setting docket reads from config.yaml, the environment,
// and flags.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Staging    StagingConfig    `mapstructure:"staging" yaml:"staging"`
	Remote     RemoteConfig     `mapstructure:"remote" yaml:"remote"`
	Navigation NavigationConfig `mapstructure:"navigation" yaml:"navigation"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

// DatabaseConfig selects the relational store.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	Name     string `mapstructure:"name" yaml:"name"`
	Path     string `mapstructure:"path" yaml:"path"` // SQLite file, driver "sqlite" only.
}

// StagingConfig locates the staging file. An empty Path means
// <data-dir>/expedientes.json.
type StagingConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// RemoteConfig configures the HTTP session used to drive the results portal.
type RemoteConfig struct {
	StartURL     string        `mapstructure:"start_url" yaml:"start_url"`
	UserAgent    string        `mapstructure:"user_agent" yaml:"user_agent"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout" yaml:"http_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// NavigationConfig bounds every wait the navigation engine performs.
type NavigationConfig struct {
	TableTimeout        time.Duration `mapstructure:"table_timeout" yaml:"table_timeout"`
	DetailTimeout       time.Duration `mapstructure:"detail_timeout" yaml:"detail_timeout"`
	HistoryTimeout      time.Duration `mapstructure:"history_timeout" yaml:"history_timeout"`
	ParticipantsTimeout time.Duration `mapstructure:"participants_timeout" yaml:"participants_timeout"`
	PageDelay           time.Duration `mapstructure:"page_delay" yaml:"page_delay"`
	RowRate             float64       `mapstructure:"row_rate" yaml:"row_rate"`   // Detail views opened per second; 0 is unlimited.
	MaxPages            int           `mapstructure:"max_pages" yaml:"max_pages"` // 0 is unlimited.
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// knownDrivers lists the drivers that Validate accepts.
var knownDrivers = map[string]bool{
	DriverMySQL:  true,
	DriverSQLite: true,
}

// DefaultConfig returns the settings used when nothing else is configured.
// Timings follow the pacing the portal tolerates in practice.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:   DriverMySQL,
			Host:     "127.0.0.1",
			Port:     3306,
			User:     "scraperuser",
			Password: "scraperpass",
			Name:     "scraper_data",
		},
		Remote: RemoteConfig{
			UserAgent:    "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
			HTTPTimeout:  30 * time.Second,
			PollInterval: 250 * time.Millisecond,
		},
		Navigation: NavigationConfig{
			TableTimeout:        10 * time.Second,
			DetailTimeout:       10 * time.Second,
			HistoryTimeout:      2 * time.Second,
			ParticipantsTimeout: 10 * time.Second,
			PageDelay:           2 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the database selection. It returns a sentinel error from
// this package on failure.
func (c DatabaseConfig) Validate() error {
	if c.Driver == "" {
		return ErrDriverEmpty
	}
	if !knownDrivers[c.Driver] {
		return ErrDriverUnknown
	}
	switch c.Driver {
	case DriverMySQL:
		if c.Host == "" {
			return ErrHostEmpty
		}
		if c.Name == "" {
			return ErrDatabaseEmpty
		}
	case DriverSQLite:
		if c.Path == "" {
			return ErrPathEmpty
		}
	}
	return nil
}

// Validate checks that the navigation bounds are usable.
func (c NavigationConfig) Validate() error {
	for _, d := range []time.Duration{
		c.TableTimeout, c.DetailTimeout, c.HistoryTimeout, c.ParticipantsTimeout, c.PageDelay,
	} {
		if d < 0 {
			return ErrTimeoutNegative
		}
	}
	if c.RowRate < 0 {
		return ErrRateNegative
	}
	return nil
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	return c.Navigation.Validate()
}
