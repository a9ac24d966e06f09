package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type config struct {
	API              apiConfig              `yaml:"api"`
	ServiceDiscovery serviceDiscoveryConfig `yaml:"serviceDiscovery"`
	Identity         identityConfig         `yaml:"identity"`
	Session          sessionConfig          `yaml:"session"`
	Jaeger           jaegerConfig           `yaml:"jaeger"`
	Kafka            kafkaConfig            `yaml:"kafka"`
}

type apiConfig struct {
	ServiceName string        `yaml:"serviceName"`
	BaseURL     string        `yaml:"baseURL"`
	Timeout     time.Duration `yaml:"timeout"`
	RateLimit   float64       `yaml:"rateLimit"`
	LoginRoute  string        `yaml:"loginRoute"`
}

type serviceDiscoveryConfig struct {
	Consul consulConfig `yaml:"consul"`
}

type consulConfig struct {
	Address string `yaml:"address"`
}

type identityConfig struct {
	Endpoint      string `yaml:"endpoint"`
	TokenEndpoint string `yaml:"tokenEndpoint"`
	APIKey        string `yaml:"apiKey"`
}

type sessionConfig struct {
	File string `yaml:"file"`
}

type jaegerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type kafkaConfig struct {
	Brokers    string `yaml:"brokers"`
	Topic      string `yaml:"topic"`
	ProviderID string `yaml:"providerID"`
}

// loadConfig reads the YAML file at path and applies FOODREVIEW_* overrides,
// including those from a .env file in the working directory.
func loadConfig(path string) (*config, error) {
	_ = godotenv.Load()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open configuration: %w", err)
	}
	defer f.Close()

	var cfg config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *config) applyEnv(lookup func(string) (string, bool)) {
	for key, dst := range map[string]*string{
		"FOODREVIEW_API_URL":           &c.API.BaseURL,
		"FOODREVIEW_CONSUL_ADDRESS":    &c.ServiceDiscovery.Consul.Address,
		"FOODREVIEW_IDENTITY_ENDPOINT": &c.Identity.Endpoint,
		"FOODREVIEW_IDENTITY_API_KEY":  &c.Identity.APIKey,
		"FOODREVIEW_SESSION_FILE":      &c.Session.File,
		"FOODREVIEW_JAEGER_HOST":       &c.Jaeger.Host,
		"FOODREVIEW_KAFKA_BROKERS":     &c.Kafka.Brokers,
	} {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
}

func (c *config) applyDefaults() error {
	if c.API.ServiceName == "" {
		c.API.ServiceName = "foodreview-api"
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.API.LoginRoute == "" {
		c.API.LoginRoute = "/login"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "favorites"
	}
	if c.Kafka.ProviderID == "" {
		c.Kafka.ProviderID = "foodreview"
	}
	if c.Session.File == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve session file: %w", err)
		}
		c.Session.File = filepath.Join(home, ".foodreview", "session.json")
	}
	return nil
}
