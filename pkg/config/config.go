package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"cmsadmin/pkg/errors"
)

// Login modes understood by the backend
const (
	LoginForm = "form" // POST /auth/login, form-encoded
	LoginJSON = "json" // POST /login, JSON body (older backends)
)

// Config holds application configuration
type Config struct {
	APIURL                string `json:"apiUrl" yaml:"api_url"`
	ListenAddr            string `json:"listenAddr" yaml:"listen_addr"`
	SessionSecret         string `json:"sessionSecret" yaml:"session_secret"`
	SecureCookies         bool   `json:"secureCookies" yaml:"secure_cookies"`
	LoginMode             string `json:"loginMode" yaml:"login_mode"`
	PageSize              int    `json:"pageSize" yaml:"page_size"`
	RequestTimeoutSeconds int    `json:"requestTimeoutSeconds" yaml:"request_timeout_seconds"`
	AlertSeconds          int    `json:"alertSeconds" yaml:"alert_seconds"`
	TemplateDir           string `json:"templateDir" yaml:"template_dir"`
	LogLevel              string `json:"logLevel" yaml:"log_level"`
	Development           bool   `json:"development" yaml:"development"`

	// GeneratedSecret is set when no secret was configured and a random
	// one was created; sessions will not survive a restart.
	GeneratedSecret bool `json:"-" yaml:"-"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		APIURL:                "http://127.0.0.1:8000",
		ListenAddr:            "127.0.0.1:8080",
		LoginMode:             LoginForm,
		PageSize:              10,
		RequestTimeoutSeconds: 15,
		AlertSeconds:          5,
		LogLevel:              "info",
	}
}

// GetConfigFilePath returns the path of the optional config file: the
// CMS_CONFIG variable, or config.json / config.yaml in the working directory
func GetConfigFilePath() string {
	if p := os.Getenv("CMS_CONFIG"); p != "" {
		return p
	}
	for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load builds the configuration: defaults, then the config file (JSON or
// YAML by extension, skipped when path is empty), then a .env file, then
// CMS_* environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.ErrConfigLoadFailed.WithInternal(err).WithContext("path", path)
		}
		if err := cfg.decode(path, data); err != nil {
			return nil, errors.ErrConfigLoadFailed.WithInternal(err).
				WithContext("path", path).
				WithContext("stage", "parse")
		}
	}

	// godotenv never overrides variables already present in the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, errors.ErrTypeConfig, "DOTENV_INVALID", "failed to parse .env")
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, c)
	default:
		return json.Unmarshal(data, c)
	}
}

func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"CMS_API_URL":        &c.APIURL,
		"CMS_LISTEN_ADDR":    &c.ListenAddr,
		"CMS_SESSION_SECRET": &c.SessionSecret,
		"CMS_LOGIN_MODE":     &c.LoginMode,
		"CMS_TEMPLATE_DIR":   &c.TemplateDir,
		"CMS_LOG_LEVEL":      &c.LogLevel,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"CMS_PAGE_SIZE":       &c.PageSize,
		"CMS_REQUEST_TIMEOUT": &c.RequestTimeoutSeconds,
		"CMS_ALERT_SECONDS":   &c.AlertSeconds,
	}
	for name, dst := range ints {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.ErrConfigInvalid.WithUserMessage(name + " must be an integer").
				WithContext("value", v)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"CMS_SECURE_COOKIES": &c.SecureCookies,
		"CMS_DEVELOPMENT":    &c.Development,
	}
	for name, dst := range bools {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.ErrConfigInvalid.WithUserMessage(name + " must be a boolean").
				WithContext("value", v)
		}
		*dst = b
	}
	return nil
}

// Validate checks and normalizes the configuration. A missing session
// secret is replaced by a random one.
func (c *Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.APIURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.ErrConfigInvalid.WithUserMessage("api_url must be an absolute http(s) URL").
			WithContext("api_url", c.APIURL)
	}
	c.APIURL = strings.TrimRight(u.String(), "/")

	switch c.LoginMode {
	case "":
		c.LoginMode = LoginForm
	case LoginForm, LoginJSON:
	default:
		return errors.ErrConfigInvalid.WithUserMessage(`login_mode must be "form" or "json"`).
			WithContext("login_mode", c.LoginMode)
	}

	if c.PageSize <= 0 {
		return errors.ErrConfigInvalid.WithUserMessage("page_size must be positive").
			WithContext("page_size", c.PageSize)
	}
	if c.RequestTimeoutSeconds < 0 || c.AlertSeconds < 0 {
		return errors.ErrConfigInvalid.WithUserMessage("timeouts cannot be negative")
	}
	if c.ListenAddr == "" {
		c.ListenAddr = Default().ListenAddr
	}

	if c.SessionSecret == "" {
		c.SessionSecret = base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
		c.GeneratedSecret = true
	}
	return nil
}

// RequestTimeout is the per-request deadline for backend calls; zero means none
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// AlertTTL is how long success alerts stay visible
func (c *Config) AlertTTL() time.Duration {
	return time.Duration(c.AlertSeconds) * time.Second
}

// SessionKeys returns the cookie signing key derived from the secret
func (c *Config) SessionKeys() []byte {
	if raw, err := base64.StdEncoding.DecodeString(c.SessionSecret); err == nil && len(raw) >= 32 {
		return raw
	}
	return []byte(c.SessionSecret)
}

// String renders the configuration for logs, hiding the secret
func (c *Config) String() string {
	return fmt.Sprintf("api=%s listen=%s login=%s page_size=%d timeout=%ds",
		c.APIURL, c.ListenAddr, c.LoginMode, c.PageSize, c.RequestTimeoutSeconds)
}
