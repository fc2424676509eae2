// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath      = pflag.String("config", ".", "Directory containing config.toml")
	validLogLevels  = []string{"debug", "info", "warn", "error", "fatal"}
	validDBDrivers  = []string{"sqlite", "postgres"}
	errMissingValue = errors.New("missing required value")
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	// A .env file is a convenience for local runs, real deployments set the
	// environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file, %w", err)
	}

	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")
	v.BindEnv("app.public_url", "app_public_url")
	v.BindEnv("app.development", "app_development")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.cors", "host_cors")

	v.BindEnv("jwt.secret", "jwt_secret")
	v.BindEnv("jwt.issuer", "jwt_issuer")
	v.BindEnv("jwt.audience", "jwt_audience")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("redis.addr", "redis_addr")
	v.BindEnv("redis.password", "redis_password")
	v.BindEnv("redis.db", "redis_db")

	v.BindEnv("quota.limit", "quota_limit")
	v.BindEnv("quota.window", "quota_window")

	v.BindEnv("llm.base_url", "llm_base_url")
	v.BindEnv("llm.api_key", "llm_api_key")
	v.BindEnv("llm.model", "llm_model")
	v.BindEnv("llm.max_tokens", "llm_max_tokens")
	v.BindEnv("llm.temperature", "llm_temperature")

	v.BindEnv("problem.endpoint", "problem_endpoint")

	v.BindEnv("security.rate_limit", "security_rate_limit")

	v.BindEnv("aws.access_key_id", "aws_access_key_id")
	v.BindEnv("aws.secret_access_key", "aws_secret_access_key")
	v.BindEnv("aws.region", "aws_region")
	v.BindEnv("aws.bucket", "aws_bucket")
	v.BindEnv("aws.endpoint", "aws_endpoint")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.development", false)

	v.SetDefault("host.port", 3001)
	v.SetDefault("host.cors", "*")

	v.SetDefault("jwt.issuer", "leetgym")
	v.SetDefault("jwt.audience", "leetgym")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("quota.limit", 10)
	v.SetDefault("quota.window", "24h")

	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.max_tokens", 1500)
	v.SetDefault("llm.temperature", 0.6)

	v.SetDefault("security.rate_limit", 20)

	v.SetDefault("aws.region", "auto")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return fmt.Errorf("%w: db.dsn", errMissingValue)
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if len(v.GetString("jwt.secret")) < 32 {
		return errors.New("jwt.secret must be at least 32 characters long")
	}

	if v.GetInt64("quota.limit") <= 0 {
		return errors.New("quota.limit must be bigger than 0")
	}

	if v.GetDuration("quota.window") <= 0 {
		return errors.New("quota.window must be a positive duration")
	}

	if v.GetString("llm.api_key") == "" {
		fmt.Println("[WARNING]: No shared LLM API key set. Chat only works for callers that bring their own key")
	}

	// Exports fall back to direct downloads without a bucket, but half a
	// bucket config is a mistake
	if bucket := v.GetString("aws.bucket"); bucket != "" {
		if v.GetString("aws.access_key_id") == "" {
			return fmt.Errorf("%w: aws.access_key_id", errMissingValue)
		}
		if v.GetString("aws.secret_access_key") == "" {
			return fmt.Errorf("%w: aws.secret_access_key", errMissingValue)
		}
	}

	return nil
}
