// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/erazemk/transferlog/internal/model"
)

// EnvPrefix prefixes every environment variable. Unprefixed names are
// accepted as a fallback.
const EnvPrefix = "TRANSFERLOG"

// Config holds every setting the server reads from the environment.
type Config struct {
	AppEnv            string `envconfig:"APP_ENV" default:"dev"`
	LogLevel          string `envconfig:"LOG_LEVEL" default:"info"`
	PublicURL         string `envconfig:"PUBLIC_URL" default:"http://localhost:8080"`
	SessionSecret     string `envconfig:"SESSION_SECRET"`
	InitialAdminEmail string `envconfig:"INITIAL_ADMIN_EMAIL"`
	SystemName        string `envconfig:"SYSTEM_NAME" default:"Inventory Notification System"`

	SMTPHost         string            `envconfig:"SMTP_HOST"`
	SMTPPort         int               `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername     string            `envconfig:"SMTP_USERNAME"`
	SMTPPassword     string            `envconfig:"SMTP_PASSWORD"`
	MailFrom         string            `envconfig:"MAIL_FROM"`
	LocationContacts map[string]string `envconfig:"LOCATION_CONTACTS"`
	DefaultContact   string            `envconfig:"DEFAULT_CONTACT"`
	Drivers          []string          `envconfig:"DRIVERS" default:"Bobby,John,Austin,Robert"`

	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
}

// Load reads envFile (if it exists) into the process environment and then
// parses the configuration. Variables already set in the environment win over
// the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	c.InitialAdminEmail = model.NormalizeEmail(c.InitialAdminEmail)
	if c.MailFrom == "" {
		c.MailFrom = c.SMTPUsername
	}

	for loc := range c.LocationContacts {
		if !model.IsLocation(loc) {
			return fmt.Errorf("LOCATION_CONTACTS: unknown location %q", loc)
		}
	}

	drivers := c.Drivers[:0]
	for _, d := range c.Drivers {
		if d = strings.TrimSpace(d); d != "" {
			drivers = append(drivers, d)
		}
	}
	c.Drivers = drivers
	if len(c.Drivers) == 0 {
		c.Drivers = append([]string(nil), model.DefaultDrivers...)
	}
	return nil
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return strings.EqualFold(c.AppEnv, "dev")
}

// MailConfigured reports whether an SMTP relay and its credentials are set.
func (c *Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

// GoogleConfigured reports whether Google sign-in can be offered.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// TranscriptionConfigured reports whether a speech-to-text key is set.
func (c *Config) TranscriptionConfigured() bool {
	return c.GeminiAPIKey != ""
}

// Contacts returns the notification address of every location. Locations
// without an explicit contact fall back to DefaultContact; if that is empty
// they are left out.
func (c *Config) Contacts() map[string]string {
	out := make(map[string]string, len(model.Locations))
	for _, loc := range model.Locations {
		addr := strings.TrimSpace(c.LocationContacts[loc])
		if addr == "" {
			addr = c.DefaultContact
		}
		if addr != "" {
			out[loc] = addr
		}
	}
	return out
}

// MissingContacts lists the locations that have no notification address.
// Transfers touching them cannot be announced.
func (c *Config) MissingContacts() []string {
	contacts := c.Contacts()
	var missing []string
	for _, loc := range model.Locations {
		if contacts[loc] == "" {
			missing = append(missing, loc)
		}
	}
	return missing
}

// Status reports which optional subsystems are configured. It never carries
// secrets.
type Status struct {
	Mail            bool
	MissingContacts []string
	Google          bool
	Transcription   bool
}

// EmailReady reports whether notifications can reach every location.
func (s Status) EmailReady() bool {
	return s.Mail && len(s.MissingContacts) == 0
}

// Status summarises the configuration for health reporting.
func (c *Config) Status() Status {
	return Status{
		Mail:            c.MailConfigured(),
		MissingContacts: c.MissingContacts(),
		Google:          c.GoogleConfigured(),
		Transcription:   c.TranscriptionConfigured(),
	}
}
