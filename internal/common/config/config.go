package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string `yaml:"port"`
	Environment  string `yaml:"env"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`

	DBPath       string  `yaml:"db_path"`
	CanvasWidth  float64 `yaml:"canvas_width"`
	CanvasHeight float64 `yaml:"canvas_height"`
	MaxUsers     int     `yaml:"max_users"`
	SaveTimeout  int     `yaml:"save_timeout"`

	StudioURL   string   `yaml:"studio_url"`
	CORSOrigins []string `yaml:"cors_origins"`
}

func defaults() *Config {
	return &Config{
		Port:         "3000",
		Environment:  "development",
		ReadTimeout:  10,
		WriteTimeout: 10,
		DBPath:       "data/db/studio.db",
		CanvasWidth:  800,
		CanvasHeight: 600,
		MaxUsers:     3,
		SaveTimeout:  5,
		StudioURL:    "http://localhost:3001",
	}
}

// Load загружает конфигурацию: значения по умолчанию, затем YAML из
// CONFIG_FILE (если задан), затем переменные окружения.
func Load() *Config {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			log.Printf("[CONFIG] %v, using env and defaults", err)
		}
	}
	cfg.applyEnv()
	return cfg
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Environment = getEnv("ENV", c.Environment)
	c.ReadTimeout = getEnvAsInt("READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getEnvAsInt("WRITE_TIMEOUT", c.WriteTimeout)
	c.DBPath = getEnv("STUDIO_DB_PATH", c.DBPath)
	c.CanvasWidth = getEnvAsFloat("CANVAS_WIDTH", c.CanvasWidth)
	c.CanvasHeight = getEnvAsFloat("CANVAS_HEIGHT", c.CanvasHeight)
	c.MaxUsers = getEnvAsInt("MAX_USERS", c.MaxUsers)
	c.SaveTimeout = getEnvAsInt("SAVE_TIMEOUT", c.SaveTimeout)
	c.StudioURL = getEnv("STUDIO_URL", c.StudioURL)
	c.CORSOrigins = getEnvAsList("CORS_ORIGINS", c.CORSOrigins)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultVal
}

// getEnvAsList читает список через запятую.
func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
