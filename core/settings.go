package core

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jcelliott/lumber"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment override, e.g. COINBOT_ACCESS_TOKEN.
const EnvPrefix = "COINBOT_"

type jsonData struct {
	Development             bool     `env:"DEVELOPMENT"`
	LogLevel                string   `env:"LOG_LEVEL"`
	Homeserver              string   `env:"HOMESERVER"`
	Username                string   `env:"USERNAME"`
	AccessToken             string   `env:"ACCESS_TOKEN"`
	CredentialsFile         string   `env:"CREDENTIALS_FILE"`
	CommandPrefix           string   `env:"COMMAND_PREFIX"`
	Database                string   `env:"DATABASE"`
	Admins                  []string `env:"ADMINS" envSeparator:","`
	Banned                  []string `env:"BANNED" envSeparator:","`
	ResponseCooldownSeconds int      `env:"RESPONSE_COOLDOWN_SECONDS"`
	CommandTimeoutSeconds   int      `env:"COMMAND_TIMEOUT_SECONDS"`
	HealthCheckURI          string   `env:"HEALTH_CHECK_URI"`
	StockAPIAddr            string   `env:"STOCK_API_ADDR"`
	SendRatePerSecond       float64  `env:"SEND_RATE_PER_SECOND"`
}

type SettingsStorage struct {
	data jsonData
}

var Settings = SettingsStorage{defaults()}

func defaults() jsonData {
	return jsonData{
		CommandPrefix:           "!",
		Database:                "coinbot.db",
		CredentialsFile:         "credentials.json",
		ResponseCooldownSeconds: 60,
		CommandTimeoutSeconds:   120,
		SendRatePerSecond:       5,
	}
}

// LoadSettings reads the json settings file, then applies COINBOT_* overrides
// from the environment and from a .env file in the working directory if present.
func LoadSettings(settingsfile string) error {
	data := defaults()
	file, err := os.Open(settingsfile)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		LogWarn("Failed to load .env file: ", err)
	}
	if err := env.ParseWithOptions(&data, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	Settings.data = data

	switch {
	case data.LogLevel != "":
		SetLogLevel(ParseLogLevel(data.LogLevel))
	case !data.Development:
		SetLogLevel(lumber.INFO)
	default:
		LogDebug("Loaded config successfully from ", settingsfile)
	}
	return nil
}

// Get whether or not we're running in Development mode.
func (s *SettingsStorage) IsDevelopment() bool {
	return s.data.Development
}

// Base URL of the Matrix homeserver, e.g. https://matrix.example.org
func (s *SettingsStorage) Homeserver() string {
	return s.data.Homeserver
}

func (s *SettingsStorage) Username() string {
	return s.data.Username
}

// Access token from the config or environment. Empty means the credentials file is used.
func (s *SettingsStorage) AccessToken() string {
	return s.data.AccessToken
}

func (s *SettingsStorage) CredentialsFile() string {
	return s.data.CredentialsFile
}

// Get the prefix used for bot commands
func (s *SettingsStorage) CommandPrefix() string {
	return s.data.CommandPrefix
}

// Path of the sqlite database file
func (s *SettingsStorage) Database() string {
	return s.data.Database
}

func (s *SettingsStorage) Admins() []string {
	return s.data.Admins
}

// Glob patterns of user ids that may not use the bot at all.
func (s *SettingsStorage) Banned() []string {
	return s.data.Banned
}

func (s *SettingsStorage) ResponseCooldown() time.Duration {
	return time.Duration(s.data.ResponseCooldownSeconds) * time.Second
}

func (s *SettingsStorage) CommandTimeout() time.Duration {
	return time.Duration(s.data.CommandTimeoutSeconds) * time.Second
}

func (s *SettingsStorage) HealthCheckURI() string {
	return s.data.HealthCheckURI
}

// Listen address of the stock price API. Empty disables it.
func (s *SettingsStorage) StockAPIAddr() string {
	return s.data.StockAPIAddr
}

func (s *SettingsStorage) SendRatePerSecond() float64 {
	return s.data.SendRatePerSecond
}
