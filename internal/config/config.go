// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

// Capacity basis values accepted by Validation.CapacityBasis.
const (
	CapacityBasisStandardWeek     = "standard_week"
	CapacityBasisResourceCapacity = "resource_capacity"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file path, or ":memory:".
	DBPath string `koanf:"db_path"`

	// MaxUtilizationPct is the default utilization ceiling used by the
	// scorer before the penalty kicks in. Callers may override per request.
	MaxUtilizationPct float64 `koanf:"max_utilization_pct"`

	// AllowOverallocation sets the default for plans that do not specify it.
	AllowOverallocation bool `koanf:"allow_overallocation"`

	// PrioritizeSkillLevel and PrioritizeAvailability set scoring defaults.
	PrioritizeSkillLevel   bool `koanf:"prioritize_skill_level"`
	PrioritizeAvailability bool `koanf:"prioritize_availability"`

	// StandardWeeklyHours is the fixed weekly capacity used by the capacity
	// validator when CapacityBasis is "standard_week".
	StandardWeeklyHours float64 `koanf:"standard_weekly_hours"`

	// CapacityBasis selects what the validator treats as full capacity:
	// "standard_week" (fixed StandardWeeklyHours) or "resource_capacity"
	// (each resource's configured weekly hours).
	CapacityBasis string `koanf:"capacity_basis"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":9090",
		DBPath:                 "pmprg.db",
		MaxUtilizationPct:      80,
		AllowOverallocation:    false,
		PrioritizeSkillLevel:   true,
		PrioritizeAvailability: true,
		StandardWeeklyHours:    40,
		CapacityBasis:          CapacityBasisStandardWeek,
	}
}
