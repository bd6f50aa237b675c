package config

import (
	"fmt"
	"os"
	"reflect"
)

// ExpectedEnvSchemaVersion is the .env layout this build understands.
const ExpectedEnvSchemaVersion = "1.0"

// Placeholder values shipped in the example .env
const (
	examplePassword = "change_this_secure_password"
	exampleAPIKey   = "generate_with_openssl_rand_hex_32"
)

// Warnings lists settings that load and validate but are likely mistakes.
// None of them stop the service.
func (c *Config) Warnings() []string {
	var warnings []string

	switch v := os.Getenv("ENV_SCHEMA_VERSION"); {
	case v == "":
		warnings = append(warnings, fmt.Sprintf(WarnMsgSchemaUnset, ExpectedEnvSchemaVersion))
	case v != ExpectedEnvSchemaVersion:
		warnings = append(warnings, fmt.Sprintf(WarnMsgSchemaMismatch, ExpectedEnvSchemaVersion, v))
	}

	if c.APIKey == exampleAPIKey {
		warnings = append(warnings, WarnMsgExampleAPIKey)
	}

	if c.UsesMemoryStorage() {
		if c.CatalogFile == "" {
			warnings = append(warnings, WarnMsgDemoCatalog)
		}
	} else if c.DBPassword == examplePassword {
		warnings = append(warnings, WarnMsgExamplePassword)
	}

	// A release that outlives the lock wait can still be running when the
	// client retries the same request id.
	if c.ReleaseTimeout > c.LockTimeout {
		warnings = append(warnings, fmt.Sprintf(WarnMsgReleaseExceedsLock, c.ReleaseTimeout, c.LockTimeout))
	}
	if c.LockTimeout >= c.ShutdownTimeout {
		warnings = append(warnings, fmt.Sprintf(WarnMsgLockExceedsShutdown, c.LockTimeout, c.ShutdownTimeout))
	}
	if c.EventLogCleanupInterval > c.EventLogRetention {
		warnings = append(warnings, fmt.Sprintf(WarnMsgCleanupExceedsRetention, c.EventLogCleanupInterval, c.EventLogRetention))
	}

	return warnings
}

// envName maps a Config field to the environment variable that feeds it.
func envName(field string) string {
	f, ok := reflect.TypeOf(Config{}).FieldByName(field)
	if !ok {
		return field
	}
	if tag := f.Tag.Get("env"); tag != "" {
		return tag
	}
	return field
}
