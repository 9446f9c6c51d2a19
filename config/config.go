// Package config loads the node configuration from a YAML file and
// BALLOT_* environment variables.
package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"

	logging "github.com/inconshreveable/log15"
	"gopkg.in/yaml.v2"

	"balloting-backend/common"
	"balloting-backend/errors"
)

const (
	EnvPrefix = "BALLOT_"

	DefaultStorage    = "file://data"
	DefaultPort       = 8080
	DefaultDifficulty = 1
	DefaultAdminKey   = "data/admin_credentials.json"
	DefaultQueueSize  = 128
	DefaultNonceTTL   = 10 * time.Minute
	DefaultLogLevel   = "info"

	DefaultPinataEndpoint   = "https://api.pinata.cloud"
	DefaultPinataMaxRetries = 3

	MaxDifficulty = 4
)

type MetadataConfig struct {
	Path   string `yaml:"path"`
	Images string `yaml:"images"`
}

type PinataConfig struct {
	Endpoint   string `yaml:"endpoint"`
	JWT        string `yaml:"jwt"`
	APIKey     string `yaml:"api_key"`
	APISecret  string `yaml:"api_secret"`
	MaxRetries int    `yaml:"max_retries"`
}

type Config struct {
	Storage    string        `yaml:"storage"`
	Port       int           `yaml:"port"`
	Difficulty uint8         `yaml:"difficulty"`
	AdminKey   string        `yaml:"admin_key"`
	Roster     string        `yaml:"roster"`
	QueueSize  int           `yaml:"queue_size"`
	NonceTTL   time.Duration `yaml:"nonce_ttl"`
	LogLevel   string        `yaml:"log_level"`
	LogOutput  string        `yaml:"log_output"`

	Metadata MetadataConfig `yaml:"metadata"`
	Pinata   PinataConfig   `yaml:"pinata"`
}

func Default() *Config {
	return &Config{
		Storage:    DefaultStorage,
		Port:       DefaultPort,
		Difficulty: DefaultDifficulty,
		AdminKey:   DefaultAdminKey,
		QueueSize:  DefaultQueueSize,
		NonceTTL:   DefaultNonceTTL,
		LogLevel:   DefaultLogLevel,
		Metadata: MetadataConfig{
			Path:   "metadata/metadata.json",
			Images: "metadata-images",
		},
		Pinata: PinataConfig{
			Endpoint:   DefaultPinataEndpoint,
			MaxRetries: DefaultPinataMaxRetries,
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if len(path) < 1 {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, errors.InvalidConfig.Clone().SetData("file", path).SetData("error", err.Error())
	}
	return c, nil
}

// ApplyEnv overrides fields from BALLOT_* environment variables.
func (c *Config) ApplyEnv() error {
	c.Storage = env("STORAGE", c.Storage)
	c.AdminKey = env("ADMIN_KEY", c.AdminKey)
	c.Roster = env("ROSTER", c.Roster)
	c.LogLevel = env("LOG_LEVEL", c.LogLevel)
	c.LogOutput = env("LOG_OUTPUT", c.LogOutput)
	c.Metadata.Path = env("METADATA_PATH", c.Metadata.Path)
	c.Metadata.Images = env("METADATA_IMAGES", c.Metadata.Images)
	c.Pinata.Endpoint = env("PINATA_ENDPOINT", c.Pinata.Endpoint)
	c.Pinata.JWT = env("PINATA_JWT", c.Pinata.JWT)
	c.Pinata.APIKey = env("PINATA_API_KEY", c.Pinata.APIKey)
	c.Pinata.APISecret = env("PINATA_API_SECRET", c.Pinata.APISecret)

	var err error
	if c.Port, err = envInt("PORT", c.Port); err != nil {
		return err
	}
	if c.QueueSize, err = envInt("QUEUE_SIZE", c.QueueSize); err != nil {
		return err
	}
	if c.Pinata.MaxRetries, err = envInt("PINATA_MAX_RETRIES", c.Pinata.MaxRetries); err != nil {
		return err
	}

	difficulty, err := envInt("DIFFICULTY", int(c.Difficulty))
	if err != nil {
		return err
	}
	if difficulty < 0 || difficulty > 255 {
		return errors.InvalidConfig.Clone().SetData("difficulty", difficulty)
	}
	c.Difficulty = uint8(difficulty)

	if v := env("NONCE_TTL", ""); len(v) > 0 {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return errors.InvalidConfig.Clone().SetData(EnvPrefix+"NONCE_TTL", v)
		}
		c.NonceTTL = ttl
	}

	return nil
}

func env(key, defaultValue string) string {
	return common.GetENVValue(EnvPrefix+key, defaultValue)
}

func envInt(key string, defaultValue int) (int, error) {
	v := env(key, "")
	if len(v) < 1 {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.InvalidConfig.Clone().SetData(EnvPrefix+key, v)
	}
	return i, nil
}

func (c *Config) Validate() error {
	invalid := func(k string, v interface{}) error {
		return errors.InvalidConfig.Clone().SetData(k, v)
	}

	u, err := url.Parse(c.Storage)
	if err != nil {
		return invalid("storage", c.Storage)
	}
	switch u.Scheme {
	case "file", "leveldb", "memory":
	default:
		return invalid("storage", c.Storage)
	}

	if c.Port < 1 || c.Port > 65535 {
		return invalid("port", c.Port)
	}
	if c.Difficulty > MaxDifficulty {
		return invalid("difficulty", c.Difficulty)
	}
	if c.QueueSize < 1 {
		return invalid("queue_size", c.QueueSize)
	}
	if c.NonceTTL <= 0 {
		return invalid("nonce_ttl", c.NonceTTL.String())
	}
	if len(c.AdminKey) < 1 {
		return invalid("admin_key", c.AdminKey)
	}
	if _, err := c.Level(); err != nil {
		return invalid("log_level", c.LogLevel)
	}
	if c.Pinata.MaxRetries < 0 {
		return invalid("pinata.max_retries", c.Pinata.MaxRetries)
	}

	return nil
}

func (c *Config) Level() (logging.Lvl, error) {
	return logging.LvlFromString(c.LogLevel)
}

// Write encodes c as YAML.
func (c *Config) Write(w io.Writer) error {
	e := yaml.NewEncoder(w)
	defer e.Close()
	return e.Encode(c)
}
