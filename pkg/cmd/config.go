package cmd

import "os"

const (
	defaultConfigFile = "/etc/sysconfig.conf"
	defaultShadowFile = "/etc/shadow"
)

// Paths are the default input locations. Flags override the environment,
// the environment overrides the built-in defaults.
type Paths struct {
	// Configuration command file.
	// Default: $SYSCONFIG_FILE or /etc/sysconfig.conf
	ConfigFile string
	// Shadow database file.
	// Default: $SYSCONFIG_SHADOW_FILE or /etc/shadow
	ShadowFile string
}

func BindPaths(p *Paths) {
	if p.ConfigFile == "" {
		p.ConfigFile = envOr("SYSCONFIG_FILE", defaultConfigFile)
	}
	if p.ShadowFile == "" {
		p.ShadowFile = envOr("SYSCONFIG_SHADOW_FILE", defaultShadowFile)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
