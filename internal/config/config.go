package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "NEWSBRIEF_CONFIG"
	scoringAPIKeyEnv  = "OPENAI_API_KEY"
	scoringModelEnv   = "OPENAI_MODEL"
	smtpHostEnv       = "SMTP_HOST"
	smtpPortEnv       = "SMTP_PORT"
	smtpUsernameEnv   = "SMTP_USERNAME"
	smtpPasswordEnv   = "SMTP_PASSWORD"
	smtpFromEnv       = "SMTP_FROM"
	databaseDSNEnv    = "DATABASE_DSN"
	subscribersCSVEnv = "SUBSCRIBERS_CSV"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Feeds       []string          `yaml:"feeds"`
	Sites       []SiteConfig      `yaml:"sites"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Curation    CurationConfig    `yaml:"curation"`
	Mail        MailConfig        `yaml:"mail"`
	Sheet       SheetConfig       `yaml:"sheet"`
	Database    DatabaseConfig    `yaml:"database"`
	Subscribers SubscribersConfig `yaml:"subscribers"`
	Output      OutputConfig      `yaml:"output"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
}

// LoggingConfig selects the log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SiteConfig describes one website to scrape for headlines.
type SiteConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Selector string `yaml:"selector"`
}

// ScoringConfig defines how to contact the relevance-scoring service.
type ScoringConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
	Topic    string `yaml:"topic"`
}

// CurationConfig carries the ranking policy knobs with their stock defaults.
type CurationConfig struct {
	MinScore      float64 `yaml:"minScore"`
	TopStoryScore float64 `yaml:"topStoryScore"`
	MaxItems      int     `yaml:"maxItems"`
	PerSourceCap  int     `yaml:"perSourceCap"`
}

// MailConfig wires the SMTP relay used for delivery.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	Subject  string `yaml:"subject"`
}

// SheetConfig locates the spreadsheet item log.
type SheetConfig struct {
	Path  string `yaml:"path"`
	Sheet string `yaml:"sheet"`
}

// DatabaseConfig describes the optional Postgres archive.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SubscribersConfig locates the recipient roster.
type SubscribersConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig controls where the reviewable digest file is written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// SchedulerConfig defines when scheduled runs fire.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(scoringAPIKeyEnv); v != "" {
		c.Scoring.APIKey = v
	}
	if v := os.Getenv(scoringModelEnv); v != "" {
		c.Scoring.Model = v
	}

	if v := os.Getenv(smtpHostEnv); v != "" {
		c.Mail.Host = v
	}
	if v := os.Getenv(smtpPortEnv); v != "" {
		if port, err := parsePort(v); err == nil {
			c.Mail.Port = port
		} else {
			log.Printf("config: invalid %s=%q, keeping %d", smtpPortEnv, v, c.Mail.Port)
		}
	}
	if v := os.Getenv(smtpUsernameEnv); v != "" {
		c.Mail.Username = v
	}
	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Mail.Password = v
	}
	if v := os.Getenv(smtpFromEnv); v != "" {
		c.Mail.From = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(subscribersCSVEnv); v != "" {
		c.Subscribers.Path = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}
	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	if override.Scoring.Endpoint != "" {
		base.Scoring.Endpoint = override.Scoring.Endpoint
	}
	if override.Scoring.Model != "" {
		base.Scoring.Model = override.Scoring.Model
	}
	if override.Scoring.APIKey != "" {
		base.Scoring.APIKey = override.Scoring.APIKey
	}
	if override.Scoring.Topic != "" {
		base.Scoring.Topic = override.Scoring.Topic
	}

	if override.Curation.MinScore != 0 {
		base.Curation.MinScore = override.Curation.MinScore
	}
	if override.Curation.TopStoryScore != 0 {
		base.Curation.TopStoryScore = override.Curation.TopStoryScore
	}
	if override.Curation.MaxItems != 0 {
		base.Curation.MaxItems = override.Curation.MaxItems
	}
	if override.Curation.PerSourceCap != 0 {
		base.Curation.PerSourceCap = override.Curation.PerSourceCap
	}

	if override.Mail.Host != "" {
		base.Mail.Host = override.Mail.Host
	}
	if override.Mail.Port != 0 {
		base.Mail.Port = override.Mail.Port
	}
	if override.Mail.Username != "" {
		base.Mail.Username = override.Mail.Username
	}
	if override.Mail.Password != "" {
		base.Mail.Password = override.Mail.Password
	}
	if override.Mail.From != "" {
		base.Mail.From = override.Mail.From
	}
	if override.Mail.Subject != "" {
		base.Mail.Subject = override.Mail.Subject
	}

	if override.Sheet.Path != "" {
		base.Sheet.Path = override.Sheet.Path
	}
	if override.Sheet.Sheet != "" {
		base.Sheet.Sheet = override.Sheet.Sheet
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Subscribers.Path != "" {
		base.Subscribers = override.Subscribers
	}

	if override.Output.Dir != "" {
		base.Output = override.Output
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	return base
}

func parsePort(v string) (int, error) {
	port, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if port <= 0 || port > 65535 {
		return 0, strconv.ErrRange
	}
	return port, nil
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Feeds: []string{
			"https://hnrss.org/frontpage",
			"https://techcrunch.com/category/artificial-intelligence/feed/",
		},
		Sites: []SiteConfig{},
		Scoring: ScoringConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
			APIKey:   "",
			Topic:    "artificial intelligence and machine learning",
		},
		Curation: CurationConfig{
			MinScore:      4.0,
			TopStoryScore: 7.0,
			MaxItems:      15,
			PerSourceCap:  5,
		},
		Mail: MailConfig{
			Port:    587,
			Subject: "Your Weekly News Digest",
		},
		Sheet: SheetConfig{
			Path:  "newsletter_log.xlsx",
			Sheet: "Newsletter Log",
		},
		Subscribers: SubscribersConfig{Path: "subscribers.csv"},
		Output:      OutputConfig{Dir: "."},
		Scheduler: SchedulerConfig{
			CronExpression: "0 8 * * 1",
			Timezone:       defaultTimezone,
			location:       tz,
		},
	}
}
