package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/coneno/logger"
	"github.com/cybershield-id/registration-relay/pkg/types"
	"gopkg.in/yaml.v3"
)

const (
	ENV_GIN_DEBUG_MODE = "GIN_DEBUG_MODE"
	ENV_LOG_LEVEL      = "LOG_LEVEL"
	ENV_CONFIG_FILE    = "CONFIG_FILE"

	ENV_REGISTRATION_RELAY_LISTEN_PORT = "REGISTRATION_RELAY_LISTEN_PORT"
	ENV_CORS_ALLOW_ORIGINS             = "CORS_ALLOW_ORIGINS"
	ENV_ALLOWED_REFERERS               = "ALLOWED_REFERERS"

	ENV_RELAY_ENDPOINT_URL          = "RELAY_ENDPOINT_URL"
	ENV_RELAY_CHECK_RESPONSE_STATUS = "RELAY_CHECK_RESPONSE_STATUS"
	ENV_RELAY_REQUEST_TIMEOUT       = "RELAY_REQUEST_TIMEOUT"

	ENV_SESSION_TTL = "SESSION_TTL"
)

// Config is the structure that holds all global configuration data
type Config struct {
	GinDebugMode    bool
	Port            string
	AllowOrigins    []string
	AllowedReferers []string
	LogLevel        logger.LogLevel
	DispatchConfig  types.DispatchConfig
	SessionConfig   types.SessionConfig
}

// fileConfig mirrors the optional YAML file. Environment variables win over it.
type fileConfig struct {
	GinDebugMode    bool     `yaml:"ginDebugMode"`
	Port            string   `yaml:"port"`
	AllowOrigins    []string `yaml:"allowOrigins"`
	AllowedReferers []string `yaml:"allowedReferers"`
	LogLevel        string   `yaml:"logLevel"`
	Relay           struct {
		EndpointURL         string `yaml:"endpointURL"`
		CheckResponseStatus bool   `yaml:"checkResponseStatus"`
		Timeout             int    `yaml:"timeout"`
	} `yaml:"relay"`
	SessionTTL int `yaml:"sessionTTL"`
}

func initConfig() Config {
	fc, err := readConfigFile(os.Getenv(ENV_CONFIG_FILE))
	if err != nil {
		logger.Error.Fatal("CONFIG_FILE: " + err.Error())
	}

	conf := configFromFile(fc)
	applyEnv(&conf)

	if conf.DispatchConfig.EndpointURL == "" {
		logger.Error.Fatal("Couldn't read relay endpoint URL.")
	}
	return conf
}

func readConfigFile(path string) (fileConfig, error) {
	fc := fileConfig{}
	if path == "" {
		return fc, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	err = yaml.Unmarshal(raw, &fc)
	return fc, err
}

func configFromFile(fc fileConfig) Config {
	conf := Config{
		GinDebugMode:    fc.GinDebugMode,
		Port:            fc.Port,
		AllowOrigins:    compactList(fc.AllowOrigins),
		AllowedReferers: fc.AllowedReferers,
		LogLevel:        parseLogLevel(fc.LogLevel),
		DispatchConfig: types.DispatchConfig{
			EndpointURL:         fc.Relay.EndpointURL,
			CheckResponseStatus: fc.Relay.CheckResponseStatus,
			Timeout:             fc.Relay.Timeout,
		},
		SessionConfig: types.SessionConfig{
			TTL: fc.SessionTTL,
		},
	}
	if conf.Port == "" {
		conf.Port = "8080"
	}
	if conf.SessionConfig.TTL == 0 {
		conf.SessionConfig.TTL = 30
	}
	return conf
}

func applyEnv(conf *Config) {
	if v, ok := os.LookupEnv(ENV_GIN_DEBUG_MODE); ok {
		conf.GinDebugMode = v == "true"
	}
	if v := os.Getenv(ENV_REGISTRATION_RELAY_LISTEN_PORT); v != "" {
		conf.Port = v
	}
	if v := os.Getenv(ENV_CORS_ALLOW_ORIGINS); v != "" {
		conf.AllowOrigins = splitList(v)
	}
	if v := os.Getenv(ENV_ALLOWED_REFERERS); v != "" {
		conf.AllowedReferers = splitList(v)
	}
	if v := os.Getenv(ENV_LOG_LEVEL); v != "" {
		conf.LogLevel = parseLogLevel(v)
	}

	if v := os.Getenv(ENV_RELAY_ENDPOINT_URL); v != "" {
		conf.DispatchConfig.EndpointURL = v
	}
	if v, ok := os.LookupEnv(ENV_RELAY_CHECK_RESPONSE_STATUS); ok {
		conf.DispatchConfig.CheckResponseStatus = v == "true"
	}
	if v := os.Getenv(ENV_RELAY_REQUEST_TIMEOUT); v != "" {
		timeout, err := strconv.Atoi(v)
		if err != nil {
			logger.Error.Fatal("RELAY_REQUEST_TIMEOUT: " + err.Error())
		}
		conf.DispatchConfig.Timeout = timeout
	}
	if v := os.Getenv(ENV_SESSION_TTL); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			logger.Error.Fatal("SESSION_TTL: " + err.Error())
		}
		conf.SessionConfig.TTL = ttl
	}
}

func splitList(v string) []string {
	return compactList(strings.Split(v, ","))
}

// compactList trims entries and drops empty ones.
func compactList(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.LEVEL_DEBUG
	case "info":
		return logger.LEVEL_INFO
	case "error":
		return logger.LEVEL_ERROR
	case "warning":
		return logger.LEVEL_WARNING
	default:
		return logger.LEVEL_INFO
	}
}
