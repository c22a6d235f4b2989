package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AppConfig holds all process-wide configuration. It is built once by Load
// at startup and passed by reference into every component that needs it;
// nothing re-reads configuration after boot.
type AppConfig struct {
	AppPort string
	AppName string
	GinMode string
	GinPath string

	// Blog behaviour
	PostsPerPage    int
	ThumbDir        string
	MaxUploadSizeMB int

	// Admin credential: a single shared identity. AdminPasswordHash is a
	// bcrypt hash; if only AdminPassword is provided it is hashed at load
	// time so route code never sees a plaintext credential.
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
	SessionTTLHours   int

	// Contact notifications
	ContactRecipient string

	RateLimitPerMinute int
	AllowedOrigins     []string

	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	// SMTP for contact notifications
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      bool

	// Redis for the admin session store
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// Load reads config/config.json (when present), fills defaults, then applies
// environment variable overrides. Precedence: json -> defaults -> env.
func Load() *AppConfig {
	cfg := &AppConfig{}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), cfg)
	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if cfg.AdminPasswordHash == "" {
		if cfg.AdminPassword == "" {
			log.Fatal("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be configured")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}
		cfg.AdminPasswordHash = string(hash)
	}
	// The plaintext is not needed past this point.
	cfg.AdminPassword = ""

	return cfg
}

// loadJSONConfig reads grouped JSON sections into cfg. A missing file is not
// an error; invalid JSON is.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var raw map[string]map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if s, ok := m[key].(string); ok {
			return s
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		switch t := m[key].(type) {
		case float64:
			return int(t)
		case int:
			return t
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		b, _ := m[key].(bool)
		return b
	}
	getStringSlice := func(m map[string]any, key string) []string {
		arr, ok := m[key].([]any)
		if !ok {
			return nil
		}
		res := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}

	if app, ok := raw["app"]; ok {
		out.AppPort = getString(app, "Port")
		out.AppName = getString(app, "Name")
		out.GinMode = getString(app, "GinMode")
		out.GinPath = getString(app, "GinLogPath")
		out.PostsPerPage = getInt(app, "PostsPerPage")
		out.ThumbDir = getString(app, "ThumbDir")
		out.MaxUploadSizeMB = getInt(app, "MaxUploadSizeMB")
		out.RateLimitPerMinute = getInt(app, "RateLimitPerMinute")
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if adm, ok := raw["admin"]; ok {
		out.AdminUsername = getString(adm, "Username")
		out.AdminPassword = getString(adm, "Password")
		out.AdminPasswordHash = getString(adm, "PasswordHash")
		out.SessionTTLHours = getInt(adm, "SessionTTLHours")
	}

	if dbs, ok := raw["database"]; ok {
		out.DatabaseURI = getString(dbs, "URI")
		out.DBHost = getString(dbs, "Host")
		out.DBPort = getString(dbs, "Port")
		out.DBUser = getString(dbs, "User")
		out.DBPassword = getString(dbs, "Password")
		out.DBName = getString(dbs, "Name")
	}

	if sm, ok := raw["smtp"]; ok {
		out.SMTPHost = getString(sm, "Host")
		out.SMTPPort = getInt(sm, "Port")
		out.SMTPUsername = getString(sm, "Username")
		out.SMTPPassword = getString(sm, "Password")
		out.SMTPFrom = getString(sm, "From")
		out.SMTPFromName = getString(sm, "FromName")
		out.SMTPTLS = getBool(sm, "TLS")
		out.ContactRecipient = getString(sm, "ContactRecipient")
	}

	if rds, ok := raw["redis"]; ok {
		out.RedisHost = getString(rds, "Host")
		out.RedisPort = getInt(rds, "Port")
		out.RedisDB = getInt(rds, "DB")
		out.RedisPassword = getString(rds, "Password")
	}

	if lg, ok := raw["log"]; ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		out.LogCompress = getBool(lg, "Compress")
	}

	return nil
}

func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.AppName == "" {
		c.AppName = "Clean Blog"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.PostsPerPage == 0 {
		c.PostsPerPage = 5
	}
	if c.ThumbDir == "" {
		c.ThumbDir = filepath.Join("static", "uploads", "thumbnails")
	}
	if c.MaxUploadSizeMB == 0 {
		c.MaxUploadSizeMB = 5
	}
	if c.SessionTTLHours == 0 {
		c.SessionTTLHours = 24
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "cleanblog"
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.ContactRecipient == "" {
		c.ContactRecipient = c.SMTPFrom
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

func applyEnvOverrides(c *AppConfig) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			*dst = mustParseInt(key, v)
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "true"
		}
	}

	setString("APP_PORT", &c.AppPort)
	setString("APP_NAME", &c.AppName)
	setString("GIN_MODE", &c.GinMode)
	setString("GIN_LOG_PATH", &c.GinPath)
	setInt("POSTS_PER_PAGE", &c.PostsPerPage)
	setString("THUMB_DIR", &c.ThumbDir)
	setInt("MAX_UPLOAD_SIZE_MB", &c.MaxUploadSizeMB)
	setString("ADMIN_USERNAME", &c.AdminUsername)
	setString("ADMIN_PASSWORD", &c.AdminPassword)
	setString("ADMIN_PASSWORD_HASH", &c.AdminPasswordHash)
	setInt("SESSION_TTL_HOURS", &c.SessionTTLHours)
	setString("CONTACT_RECIPIENT", &c.ContactRecipient)
	setInt("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}

	setString("DATABASE_URI", &c.DatabaseURI)
	setString("DB_HOST", &c.DBHost)
	setString("DB_PORT", &c.DBPort)
	setString("DB_USER", &c.DBUser)
	setString("DB_PASSWORD", &c.DBPassword)
	setString("DB_NAME", &c.DBName)

	setString("SMTP_HOST", &c.SMTPHost)
	setInt("SMTP_PORT", &c.SMTPPort)
	setString("SMTP_USERNAME", &c.SMTPUsername)
	setString("SMTP_PASSWORD", &c.SMTPPassword)
	setString("SMTP_FROM", &c.SMTPFrom)
	setString("SMTP_FROM_NAME", &c.SMTPFromName)
	setBool("SMTP_TLS", &c.SMTPTLS)

	setString("REDIS_HOST", &c.RedisHost)
	setInt("REDIS_PORT", &c.RedisPort)
	setInt("REDIS_DB", &c.RedisDB)
	setString("REDIS_PASSWORD", &c.RedisPassword)

	setString("LOG_LEVEL", &c.LogLevel)
	setString("LOG_PATH", &c.LogPath)
	setInt("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	setInt("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	setInt("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	setBool("LOG_COMPRESS", &c.LogCompress)
}

func mustParseInt(key, val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value for %s: %q", key, val)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
