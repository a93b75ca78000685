package config

import (
	"os"
	"strings"
)

// applyEnv layers environment overrides on top of whatever the yaml file
// set. Empty variables leave the file values alone.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("NOJECT_ADDR")); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("NOJECT_DATA_DIR")); v != "" {
		c.Storage.DataDir = v
	}
	if v := getEnvBool("NOJECT_IN_MEMORY"); v != nil {
		c.Storage.InMemory = *v
	}
	if v := getEnvBool("NOJECT_SYNC_WRITES"); v != nil {
		c.Storage.SyncWrites = *v
	}
	if v := strings.TrimSpace(os.Getenv("NOJECT_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
}

func getEnvBool(key string) *bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		b := true
		return &b
	case "0", "false", "no":
		b := false
		return &b
	default:
		return nil
	}
}
