package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/transferlog/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, []string{"Bobby", "John", "Austin", "Robert"}, cfg.Drivers)
	assert.Equal(t, "Inventory Notification System", cfg.SystemName)
	assert.False(t, cfg.MailConfigured())
	assert.False(t, cfg.GoogleConfigured())
	assert.False(t, cfg.TranscriptionConfigured())
	assert.Empty(t, cfg.Contacts())
	assert.Equal(t, model.Locations, cfg.MissingContacts())
	assert.False(t, cfg.Status().EmailReady())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TRANSFERLOG_SMTP_HOST", "smtp.example.com")
	t.Setenv("TRANSFERLOG_SMTP_USERNAME", "relay@example.com")
	t.Setenv("TRANSFERLOG_SMTP_PASSWORD", "secret")
	t.Setenv("TRANSFERLOG_LOCATION_CONTACTS", "Lakewood:lakewood@example.com,Storage:yard@example.com")
	t.Setenv("TRANSFERLOG_DEFAULT_CONTACT", "office@example.com")
	t.Setenv("TRANSFERLOG_INITIAL_ADMIN_EMAIL", " Owner@Example.com ")
	t.Setenv("TRANSFERLOG_PUBLIC_URL", "https://transfers.example.com/")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.MailConfigured())
	assert.Equal(t, "relay@example.com", cfg.MailFrom, "sender defaults to the relay username")
	assert.Equal(t, "owner@example.com", cfg.InitialAdminEmail)
	assert.Equal(t, "https://transfers.example.com", cfg.PublicURL)

	contacts := cfg.Contacts()
	assert.Equal(t, "lakewood@example.com", contacts["Lakewood"])
	assert.Equal(t, "yard@example.com", contacts["Storage"])
	assert.Equal(t, "office@example.com", contacts["Fountain"])
	assert.Len(t, contacts, 5)
	assert.Empty(t, cfg.MissingContacts())
	assert.True(t, cfg.Status().EmailReady())
}

func TestMissingContacts(t *testing.T) {
	cfg := &Config{LocationContacts: map[string]string{
		model.LocationLakewood: "lakewood@example.com",
		model.LocationStorage:  " ",
	}}
	assert.Equal(t, []string{
		model.LocationLongmont, model.LocationFountain, model.LocationAirstream, model.LocationStorage,
	}, cfg.MissingContacts())

	cfg.DefaultContact = "office@example.com"
	assert.Empty(t, cfg.MissingContacts())
}

func TestLoadUnprefixedFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.TranscriptionConfigured())
}

func TestLoadRejectsUnknownLocation(t *testing.T) {
	t.Setenv("TRANSFERLOG_LOCATION_CONTACTS", "Denver:denver@example.com")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TRANSFERLOG_GOOGLE_CLIENT_ID=id\nTRANSFERLOG_GOOGLE_CLIENT_SECRET=secret\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("TRANSFERLOG_GOOGLE_CLIENT_ID")
		os.Unsetenv("TRANSFERLOG_GOOGLE_CLIENT_SECRET")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.GoogleConfigured())

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err, "a missing .env file is not an error")
}
