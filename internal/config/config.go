package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	EnvGithubToken = "GITHUB_TOKEN"

	defaultAPIURL      = "https://api.github.com"
	defaultDownloadURL = "https://github.com"
	defaultUserAgent   = "relmirror"
	defaultAccept      = "application/vnd.github.v3+json"

	defaultDownloadsDir = "downloads"
	defaultKeepVersions = 3
	defaultMaxAttempts  = 3
	defaultRetryDelay   = 5 * time.Second
	defaultRepoDelay    = 2 * time.Second
	defaultChunkSize    = 8192

	defaultTimeout      = 30 * time.Second
	defaultRetryMax     = 3
	defaultRetryWaitMin = time.Second
	defaultRetryWaitMax = 30 * time.Second
)

// Duration parses yaml strings like "30s" into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("cannot parse duration %q: %w", s, err)
	}

	*d = Duration(v)

	return nil
}

func (d Duration) Value() time.Duration {
	return time.Duration(d)
}

type GithubConfig struct {
	Token       string `yaml:"token"`
	APIURL      string `yaml:"api_url"`
	DownloadURL string `yaml:"download_url"`
	UserAgent   string `yaml:"user_agent"`
	Accept      string `yaml:"accept"`
}

type HTTPConfig struct {
	Timeout      Duration `yaml:"timeout"`
	RetryMax     int      `yaml:"retry_max"`
	RetryWaitMin Duration `yaml:"retry_wait_min"`
	RetryWaitMax Duration `yaml:"retry_wait_max"`
	Proxy        string   `yaml:"proxy"`
}

type SyncConfig struct {
	MaxAttempts int      `yaml:"max_attempts"`
	RetryDelay  Duration `yaml:"retry_delay"`
	RepoDelay   Duration `yaml:"repo_delay"`
	ChunkSize   int      `yaml:"chunk_size"`
}

type Config struct {
	LogLevel     string       `yaml:"log_level"`
	LogFile      string       `yaml:"log_file"`
	DownloadsDir string       `yaml:"downloads_dir"`
	Repos        []string     `yaml:"repos"`
	KeepVersions int          `yaml:"keep_versions"`
	Github       GithubConfig `yaml:"github"`
	HTTP         HTTPConfig   `yaml:"http"`
	Sync         SyncConfig   `yaml:"sync"`
}

func (c *Config) SetDefaults() {
	c.LogLevel = LogLevelInfo
	c.DownloadsDir = defaultDownloadsDir
	c.KeepVersions = defaultKeepVersions

	c.Github.APIURL = defaultAPIURL
	c.Github.DownloadURL = defaultDownloadURL
	c.Github.UserAgent = defaultUserAgent
	c.Github.Accept = defaultAccept

	c.HTTP.Timeout = Duration(defaultTimeout)
	c.HTTP.RetryMax = defaultRetryMax
	c.HTTP.RetryWaitMin = Duration(defaultRetryWaitMin)
	c.HTTP.RetryWaitMax = Duration(defaultRetryWaitMax)

	c.Sync.MaxAttempts = defaultMaxAttempts
	c.Sync.RetryDelay = Duration(defaultRetryDelay)
	c.Sync.RepoDelay = Duration(defaultRepoDelay)
	c.Sync.ChunkSize = defaultChunkSize
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	var cfg Config
	cfg.SetDefaults()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file: %w", err)
	}

	if cfg.Github.Token == "" {
		cfg.Github.Token = os.Getenv(EnvGithubToken)
	}

	if len(cfg.Repos) < 1 {
		return nil, fmt.Errorf("no repositories configured")
	}

	return &cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}
