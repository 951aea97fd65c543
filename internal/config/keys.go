package config

import (
	"net/url"
	"os"
)

// CredentialSource represents where a secret comes from.
type CredentialSource string

const (
	SourceEnv    CredentialSource = "env"
	SourceConfig CredentialSource = "config"
	SourceNone   CredentialSource = "none"
)

// CredentialStatus represents the status of a secret.
type CredentialStatus struct {
	Name   string           `json:"name"`
	Source CredentialSource `json:"source"`
	IsSet  bool             `json:"is_set"`
	Masked string           `json:"masked,omitempty"` // e.g., "sec...ret"
}

// CheckCredentials returns the status of every secret newspulse can use.
func CheckCredentials(cfg *Config) []CredentialStatus {
	return []CredentialStatus{
		checkSecret("Postgres DSN", redactDSN(cfg.Storage.PostgresDSN), "NEWSPULSE_STORAGE_POSTGRES_DSN"),
		checkSecret("Redis Password", cfg.Cache.RedisPassword, "NEWSPULSE_CACHE_REDIS_PASSWORD"),
	}
}

// checkSecret checks if a secret is set and where it came from.
func checkSecret(name, value, envVar string) CredentialStatus {
	status := CredentialStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		if os.Getenv(envVar) != "" {
			status.Source = SourceEnv
		} else {
			status.Source = SourceConfig
		}
		status.Masked = maskKey(value)
	} else {
		status.Source = SourceNone
	}

	return status
}

// redactDSN drops the password from a URL-style DSN before masking.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}

// maskKey masks a secret for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
