package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App    AppConfig
	Twilio TwilioConfig
	Token  TokenConfig
	Redis  RedisConfig
}

type AppConfig struct {
	Env  string
	Port int
}

// TwilioConfig carries the provider credentials.
// AccountSID/AuthToken authenticate REST calls (number listing) and webhook
// signature validation; the API key pair plus the TwiML app SID are what the
// access token is minted from.
type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	APIKeySID    string
	APIKeySecret string
	TwimlAppSID  string

	// ValidateWebhook toggles X-Twilio-Signature checking on the voice
	// webhook. Defaults to on in production, off elsewhere.
	ValidateWebhook bool
}

type TokenConfig struct {
	TTL time.Duration
}

// RedisConfig is optional: when Host is empty the numbers cache is disabled
// and every listing goes to the provider.
type RedisConfig struct {
	Host       string
	Port       int
	NumbersTTL time.Duration
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.Twilio.AccountSID = strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID"))
	c.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	c.Twilio.APIKeySID = strings.TrimSpace(os.Getenv("TWILIO_API_KEY"))
	c.Twilio.APIKeySecret = os.Getenv("TWILIO_API_SECRET")
	c.Twilio.TwimlAppSID = strings.TrimSpace(os.Getenv("TWILIO_TWIML_APP_SID"))

	switch strings.TrimSpace(os.Getenv("TWILIO_VALIDATE_WEBHOOK")) {
	case "":
		c.Twilio.ValidateWebhook = c.App.Env == "production"
	case "true", "1", "yes":
		c.Twilio.ValidateWebhook = true
	case "false", "0", "no":
		c.Twilio.ValidateWebhook = false
	default:
		parseErrs = append(parseErrs, errors.New("TWILIO_VALIDATE_WEBHOOK must be a boolean"))
	}

	// Optional; defaults applied in Validate().
	c.Token.TTL = mustDuration("TOKEN_TTL")

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	if c.Redis.Host != "" {
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}
	c.Redis.NumbersTTL = mustDuration("NUMBERS_CACHE_TTL")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	// Provider credentials are hard-required in production. Outside production
	// the process may boot without them; the affected endpoints answer 500
	// until they are provided.
	if c.IsProduction() {
		if c.Twilio.AccountSID == "" {
			errs = append(errs, errors.New("TWILIO_ACCOUNT_SID is required in production"))
		}
		if c.Twilio.AuthToken == "" {
			errs = append(errs, errors.New("TWILIO_AUTH_TOKEN is required in production"))
		}
		if c.Twilio.APIKeySID == "" {
			errs = append(errs, errors.New("TWILIO_API_KEY is required in production"))
		}
		if c.Twilio.APIKeySecret == "" {
			errs = append(errs, errors.New("TWILIO_API_SECRET is required in production"))
		}
		if c.Twilio.TwimlAppSID == "" {
			errs = append(errs, errors.New("TWILIO_TWIML_APP_SID is required in production"))
		}
	}
	if c.Twilio.ValidateWebhook && c.Twilio.AuthToken == "" {
		errs = append(errs, errors.New("TWILIO_AUTH_TOKEN is required when webhook validation is enabled"))
	}

	if c.Token.TTL <= 0 {
		// Short-lived tokens; the client re-mints per page session.
		c.Token.TTL = time.Hour
	}
	if c.Token.TTL > 24*time.Hour {
		errs = append(errs, errors.New("TOKEN_TTL must not exceed 24h (provider limit)"))
	}

	if c.Redis.Host != "" && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}
	if c.Redis.NumbersTTL <= 0 {
		c.Redis.NumbersTTL = 5 * time.Minute
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func (c Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
