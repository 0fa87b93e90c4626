package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"txdash/internal/source/remote"
)

func validConfig() Config {
	return Config{
		Port:        "8081",
		LogLevel:    "info",
		DataSource:  SourceRemote,
		DataURL:     "https://example.com/api/transactions",
		LoadTimeout: 10 * time.Second,
		SessionTTL:  30 * time.Minute,
		SessionMax:  500,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid remote config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "valid fallback config ignores data URL",
			mutate: func(c *Config) {
				c.DataSource = SourceFallback
				c.DataURL = ""
			},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
		{
			name:        "invalid data source",
			mutate:      func(c *Config) { c.DataSource = "postgres" },
			wantErr:     true,
			errorString: "invalid data source 'postgres'",
		},
		{
			name:        "remote source with empty URL",
			mutate:      func(c *Config) { c.DataURL = "" },
			wantErr:     true,
			errorString: "invalid data URL ''",
		},
		{
			name:        "remote source with non-http scheme",
			mutate:      func(c *Config) { c.DataURL = "ftp://example.com/data" },
			wantErr:     true,
			errorString: "invalid data URL scheme 'ftp': must be 'http' or 'https'",
		},
		{
			name: "sheets source missing spreadsheet ID",
			mutate: func(c *Config) {
				c.DataSource = SourceSheets
				c.GoogleServiceAccountJSON = "{}"
			},
			wantErr:     true,
			errorString: "Google Spreadsheet ID is required when using sheets source",
		},
		{
			name: "sheets source missing credentials",
			mutate: func(c *Config) {
				c.DataSource = SourceSheets
				c.GoogleSpreadsheetID = "123456789"
			},
			wantErr:     true,
			errorString: "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets source",
		},
		{
			name: "sheets source with inline credentials",
			mutate: func(c *Config) {
				c.DataSource = SourceSheets
				c.GoogleSpreadsheetID = "123456789"
				c.GoogleServiceAccountJSON = "{}"
			},
			wantErr: false,
		},
		{
			name:        "load timeout too short",
			mutate:      func(c *Config) { c.LoadTimeout = 10 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid load timeout 10ms: must be at least 100ms",
		},
		{
			name:        "load timeout too long",
			mutate:      func(c *Config) { c.LoadTimeout = 10 * time.Minute },
			wantErr:     true,
			errorString: "invalid load timeout 10m0s: must be at most 5 minutes",
		},
		{
			name:        "session TTL too short",
			mutate:      func(c *Config) { c.SessionTTL = time.Second },
			wantErr:     true,
			errorString: "invalid session TTL 1s: must be at least 1 minute",
		},
		{
			name:        "session max zero",
			mutate:      func(c *Config) { c.SessionMax = 0 },
			wantErr:     true,
			errorString: "invalid session max 0: must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateReportsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.SessionMax = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Config.Validate() error = nil, want aggregated error")
	}
	for _, want := range []string{"invalid port", "invalid session max"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Config.Validate() error = %v, want it to mention %q", err, want)
		}
	}
}

func TestConfig_ValidateWithFiles(t *testing.T) {
	tmpDir := t.TempDir()

	credentialsFile := filepath.Join(tmpDir, "service-account.json")
	if err := os.WriteFile(credentialsFile, []byte(`{"type":"service_account"}`), 0644); err != nil {
		t.Fatalf("Failed to create test credentials file: %v", err)
	}

	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{name: "existing credentials file", file: credentialsFile, wantErr: false},
		{name: "non-existent credentials file", file: "/non/existent/file.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.DataSource = SourceSheets
			cfg.GoogleSpreadsheetID = "123456789"
			cfg.GoogleServiceAccountFile = tt.file

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	keys := []string{
		"PORT", "LOG_LEVEL", "DATA_SOURCE", "DATA_URL", "LOAD_TIMEOUT",
		"SESSION_TTL", "SESSION_MAX", "GOOGLE_APPLICATION_CREDENTIALS",
		"GOOGLE_SERVICE_ACCOUNT_FILE", "GOOGLE_SPREADSHEET_ID",
	}

	t.Run("default values", func(t *testing.T) {
		for _, key := range keys {
			t.Setenv(key, "")
		}

		cfg := Load()

		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.DataSource != SourceRemote {
			t.Errorf("Load() DataSource = %v, want remote", cfg.DataSource)
		}
		if cfg.DataURL != remote.DefaultURL {
			t.Errorf("Load() DataURL = %v, want %v", cfg.DataURL, remote.DefaultURL)
		}
		if cfg.LoadTimeout != 10*time.Second {
			t.Errorf("Load() LoadTimeout = %v, want 10s", cfg.LoadTimeout)
		}
		if cfg.SessionTTL != 30*time.Minute {
			t.Errorf("Load() SessionTTL = %v, want 30m", cfg.SessionTTL)
		}
		if cfg.SessionMax != 500 {
			t.Errorf("Load() SessionMax = %v, want 500", cfg.SessionMax)
		}
		if cfg.GoogleCustomersRange != "Customers!A:B" {
			t.Errorf("Load() GoogleCustomersRange = %v, want Customers!A:B", cfg.GoogleCustomersRange)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("default config should validate, got %v", err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DATA_SOURCE", "fallback")
		t.Setenv("LOAD_TIMEOUT", "3s")
		t.Setenv("SESSION_TTL", "1h")
		t.Setenv("SESSION_MAX", "25")
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/etc/sa.json")
		t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.DataSource != SourceFallback {
			t.Errorf("Load() DataSource = %v, want fallback", cfg.DataSource)
		}
		if cfg.LoadTimeout != 3*time.Second {
			t.Errorf("Load() LoadTimeout = %v, want 3s", cfg.LoadTimeout)
		}
		if cfg.SessionTTL != time.Hour {
			t.Errorf("Load() SessionTTL = %v, want 1h", cfg.SessionTTL)
		}
		if cfg.SessionMax != 25 {
			t.Errorf("Load() SessionMax = %v, want 25", cfg.SessionMax)
		}
		if cfg.GoogleServiceAccountFile != "/etc/sa.json" {
			t.Errorf("Load() GoogleServiceAccountFile = %v, want /etc/sa.json", cfg.GoogleServiceAccountFile)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		t.Setenv("LOAD_TIMEOUT", "invalid")
		t.Setenv("SESSION_MAX", "invalid")

		cfg := Load()

		if cfg.LoadTimeout != 10*time.Second {
			t.Errorf("Load() LoadTimeout = %v, want 10s (default for invalid input)", cfg.LoadTimeout)
		}
		if cfg.SessionMax != 500 {
			t.Errorf("Load() SessionMax = %v, want 500 (default for invalid input)", cfg.SessionMax)
		}
	})
}
