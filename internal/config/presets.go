package config

import "sort"

// Presets are named constraint geometries. Each starts from
// DefaultConfig and narrows the basis; offsets and gains can still be
// overridden by flags or the parameter file.
var Presets = map[string]func() *Config{
	// No constraint: identity basis, zero force everywhere.
	"free": DefaultConfig,

	// Constrain to the xy plane (free in x and y, pulled along z).
	"plane-xy": func() *Config {
		cfg := DefaultConfig()
		cfg.Basis = []float64{
			1, 0, 0,
			0, 1, 0,
			0, 0, 0,
		}
		return cfg
	},

	// Constrain to the z axis (pulled in x and y).
	"line-z": func() *Config {
		cfg := DefaultConfig()
		cfg.Basis = []float64{
			0, 0, 0,
			0, 0, 0,
			0, 0, 1,
		}
		return cfg
	},

	// Attract to a single point at the offset.
	"point": func() *Config {
		cfg := DefaultConfig()
		cfg.Basis = []float64{
			0, 0, 0,
			0, 0, 0,
			0, 0, 0,
		}
		return cfg
	},
}

func GetPreset(name string) *Config {
	mk, ok := Presets[name]
	if !ok {
		return nil
	}
	return mk()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
