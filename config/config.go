package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Server struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type RateLimit struct {
	Capacity int           `yaml:"capacity"` // requests per client per refill window
	Refill   time.Duration `yaml:"refill"`
}

// Redis is optional; an empty Addr selects the in-process cache.
type Redis struct {
	Addr     string        `yaml:"addr,omitempty"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
}

// Mongo is optional; an empty URI keeps history in memory.
type Mongo struct {
	URI string `yaml:"uri,omitempty"`
	DB  string `yaml:"db"`
	Col string `yaml:"col"`
}

// Advisor configures plan narration. The API key is read from OPENAI_API_KEY.
type Advisor struct {
	URL     string        `yaml:"url,omitempty"`
	Model   string        `yaml:"model,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

type Config struct {
	Server        Server    `yaml:"server"`
	RateLimit     RateLimit `yaml:"rate_limit"`
	Redis         Redis     `yaml:"redis"`
	Mongo         Mongo     `yaml:"mongo"`
	Advisor       Advisor   `yaml:"advisor"`
	HistoryMemory int       `yaml:"history_memory"` // records kept by the in-memory history
}

func Default() Config {
	return Config{
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		RateLimit: RateLimit{
			Capacity: 5,
			Refill:   time.Minute,
		},
		Redis: Redis{
			TTL: 24 * time.Hour,
		},
		Mongo: Mongo{
			DB:  "tax_agent",
			Col: "calculations",
		},
		Advisor: Advisor{
			Timeout: 10 * time.Second,
		},
		HistoryMemory: 1000,
	}
}

// Parse decodes YAML over the defaults. Unknown keys are an error.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads the config file at path. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.RateLimit.Capacity <= 0 {
		return fmt.Errorf("rate_limit.capacity must be positive, got %d", c.RateLimit.Capacity)
	}
	if c.RateLimit.Refill <= 0 {
		return fmt.Errorf("rate_limit.refill must be positive, got %s", c.RateLimit.Refill)
	}
	if c.Mongo.URI != "" && (c.Mongo.DB == "" || c.Mongo.Col == "") {
		return fmt.Errorf("mongo.db and mongo.col are required when mongo.uri is set")
	}
	// The advisor runs inside the plan request, so it must give up before the
	// server stops writing the response.
	if c.Advisor.Timeout <= 0 {
		return fmt.Errorf("advisor.timeout must be positive, got %s", c.Advisor.Timeout)
	}
	if c.Server.WriteTimeout > 0 && c.Advisor.Timeout >= c.Server.WriteTimeout {
		return fmt.Errorf("advisor.timeout (%s) must be shorter than server.write_timeout (%s)",
			c.Advisor.Timeout, c.Server.WriteTimeout)
	}
	return nil
}

const redactedSecret = "xxxxx"

// Redacted returns a copy safe to log: the Redis password and any password in
// the Mongo URI are masked.
func (c Config) Redacted() Config {
	if c.Redis.Password != "" {
		c.Redis.Password = redactedSecret
	}
	if c.Mongo.URI != "" {
		c.Mongo.URI = redactURI(c.Mongo.URI)
	}
	return c
}

func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		// Unparseable URIs may still hold credentials.
		return redactedSecret
	}
	if u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), redactedSecret)
	}
	return u.String()
}
