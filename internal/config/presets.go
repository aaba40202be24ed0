package config

import "sort"

var Presets = map[string]func(*Config){
	"default": func(c *Config) {},
	"crowd": func(c *Config) {
		c.Population.InitialE = 500
		c.Population.InitialMP = 10
	},
	"dense": func(c *Config) {
		c.Population.InitialE = 1000
		c.Population.InitialMP = 100
		c.Mode = "snapshot"
	},
	"pair": func(c *Config) {
		c.Population.InitialE = 0
		c.Population.InitialMP = 2
	},
	"lonely": func(c *Config) {
		c.Population.InitialE = 50
		c.Population.InitialMP = 0
	},
	"legacy": func(c *Config) {
		c.ForceLaw = "legacy"
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
