package lookup

import "fmt"

// Provider names accepted by Load.
const (
	ProviderDefault = "default"
	ProviderStatic  = "static"
)

// Config selects the lookup provider.
type Config struct {
	// Provider is "default" (no external data) or "static" (YAML file).
	Provider string `mapstructure:"provider" default:"default"`
	// File is the YAML document read by the static provider.
	File string `mapstructure:"file" default:""`
	// CacheSize is the number of memoised answers; 0 disables the cache.
	CacheSize int `mapstructure:"cache_size" default:"4096"`
}

// Load builds the configured Sources.
func Load(cfg Config) (Sources, error) {
	var src Sources
	switch cfg.Provider {
	case ProviderDefault, "":
		src = DefaultSources()
	case ProviderStatic:
		if cfg.File == "" {
			return Sources{}, fmt.Errorf("lookup provider %q needs a file", cfg.Provider)
		}
		static, err := LoadStatic(cfg.File)
		if err != nil {
			return Sources{}, err
		}
		src = static.Sources()
	default:
		return Sources{}, fmt.Errorf("unknown lookup provider %q", cfg.Provider)
	}

	if cfg.CacheSize <= 0 {
		return src, nil
	}
	cached, err := NewCached(src, cfg.CacheSize)
	if err != nil {
		return Sources{}, err
	}
	return cached.Sources(), nil
}
