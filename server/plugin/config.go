package plugin

// Config controls which plugins the Manager enables and where their data is
// kept.
type Config struct {
	// Enabled specifies if the plugin subsystem should be initialised. When
	// false, Enable refuses every plugin.
	Enabled bool
	// DataDirectory is the root under which every plugin gets its own data
	// folder. It defaults to `plugins`.
	DataDirectory string
	// Disabled lists plugin names that are registered but must not be enabled.
	Disabled []string
}
