package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ResolveSecret reads a secret using the *_FILE convention: envName+"_FILE"
// names a file holding the value and wins over envName itself. Returns an
// empty string when neither is set.
func ResolveSecret(envName string) (string, error) {
	fileEnv := envName + "_FILE"
	if filePath := os.Getenv(fileEnv); filePath != "" {
		content, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read secret from %s=%s: %w", fileEnv, filePath, err)
		}
		return strings.TrimSpace(string(content)), nil
	}
	return os.Getenv(envName), nil
}

// Getenv returns the value of key or def when unset.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Postgres holds the connection parameters for the seed archive.
type Postgres struct {
	Host     string
	Port     string
	User     string
	Database string
	Password string
}

// DSN renders a lib/pq connection string.
func (p Postgres) DSN() string {
	parts := []string{
		"host=" + p.Host,
		"port=" + p.Port,
		"user=" + p.User,
	}
	if p.Password != "" {
		parts = append(parts, "password="+p.Password)
	}
	parts = append(parts, "dbname="+p.Database, "sslmode=disable")
	return strings.Join(parts, " ")
}

// Service is the environment-derived configuration of the seedgen binaries.
type Service struct {
	APIPort      int
	SettingsPath string

	// Postgres is nil unless PGHOST is set; the SQLite archive is used then.
	Postgres   *Postgres
	SQLitePath string

	MQTTURL      string
	MQTTUser     string
	MQTTPassword string
	MQTTPrefix   string
}

// ServiceFromEnv loads the service configuration. Secrets are resolved with
// ResolveSecret so PGPASSWORD_FILE and MQTT_PASSWORD_FILE work.
func ServiceFromEnv() (*Service, error) {
	port, err := strconv.Atoi(Getenv("SEEDENGINE_API_PORT", "8080"))
	if err != nil {
		return nil, &ValidationError{Field: "SEEDENGINE_API_PORT", Detail: err.Error()}
	}

	svc := &Service{
		APIPort:      port,
		SettingsPath: os.Getenv("SEEDENGINE_SETTINGS"),
		SQLitePath:   Getenv("SEEDENGINE_SQLITE_PATH", "seeds.db"),
		MQTTURL:      os.Getenv("MQTT_URL"),
		MQTTUser:     os.Getenv("MQTT_USER"),
		MQTTPrefix:   Getenv("MQTT_TOPIC_PREFIX", "seedengine"),
	}

	if svc.MQTTPassword, err = ResolveSecret("MQTT_PASSWORD"); err != nil {
		return nil, err
	}

	if host := os.Getenv("PGHOST"); host != "" {
		password, err := ResolveSecret("PGPASSWORD")
		if err != nil {
			return nil, err
		}
		svc.Postgres = &Postgres{
			Host:     host,
			Port:     Getenv("PGPORT", "5432"),
			User:     Getenv("PGUSER", "seedengine"),
			Database: Getenv("PGDATABASE", "seedengine"),
			Password: password,
		}
	}

	return svc, nil
}
