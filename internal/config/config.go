package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultPath = "config/config.yaml"

type FilesConfig struct {
	RootDir       string `yaml:"root_dir"`
	MaxUploadMB   int64  `yaml:"max_upload_mb"`
	TranscriptTTF string `yaml:"transcript_font"`
}

// AuthConfig describes how identity-provider tokens are verified.
// Exactly one of HMACSecret / PublicKeyPEM is expected; PEM wins when both are set.
type AuthConfig struct {
	HMACSecret   string `yaml:"hmac_secret"`
	PublicKeyPEM string `yaml:"public_key_pem"`
	Issuer       string `yaml:"issuer"`
	Audience     string `yaml:"audience"`
	ClientID     string `yaml:"client_id"`
	RequiredRole string `yaml:"required_role"`
}

type MailConfig struct {
	Enabled      bool   `yaml:"enabled"`
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
}

type RealtimeConfig struct {
	SendBuffer     int           `yaml:"send_buffer"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Database struct {
		DSN          string        `yaml:"url"`
		MaxOpenConns int           `yaml:"max_open_conns"`
		MaxIdleConns int           `yaml:"max_idle_conns"`
		ConnLifetime time.Duration `yaml:"conn_lifetime"`
	} `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Files    FilesConfig    `yaml:"files"`
	Mail     MailConfig     `yaml:"mail"`
	Realtime RealtimeConfig `yaml:"realtime"`
}

// LoadConfig reads .env (if present), the YAML file at CONFIG_PATH (or
// config/config.yaml) and then applies environment overrides.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file found, using process environment")
	}
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultPath
	}
	return Load(path)
}

func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		log.Printf("[config] %s not found, relying on defaults and environment", path)
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database url is required (database.url or DATABASE_URL)")
	}
	if cfg.Auth.HMACSecret == "" && cfg.Auth.PublicKeyPEM == "" {
		return nil, fmt.Errorf("auth.hmac_secret or auth.public_key_pem is required")
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.HMACSecret = v
	}
	if v := os.Getenv("JWT_PUBLIC_KEY"); v != "" {
		c.Auth.PublicKeyPEM = v
	}
	if v := os.Getenv("FILES_ROOT"); v != "" {
		c.Files.RootDir = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnLifetime == 0 {
		c.Database.ConnLifetime = 5 * time.Minute
	}
	if c.Files.RootDir == "" {
		c.Files.RootDir = "./files"
	}
	if c.Files.MaxUploadMB == 0 {
		c.Files.MaxUploadMB = 10
	}
	if c.Auth.ClientID == "" {
		c.Auth.ClientID = "account"
	}
	if c.Realtime.SendBuffer == 0 {
		c.Realtime.SendBuffer = 64
	}
	if c.Realtime.PingInterval == 0 {
		c.Realtime.PingInterval = 30 * time.Second
	}
	if c.Mail.SMTPPort == 0 {
		c.Mail.SMTPPort = 587
	}
}
