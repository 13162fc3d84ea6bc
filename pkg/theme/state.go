package theme

import "sync"

var (
	stateMu sync.Mutex
	current *Config
	refs    int
)

// Init activates cfg as the process-wide configuration for a preview session.
// Each call must be paired with Teardown. When sessions overlap the most
// recently initialised configuration wins. A nil cfg activates the defaults.
func Init(cfg *Config) error {
	if cfg == nil {
		cfg = Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	stateMu.Lock()
	defer stateMu.Unlock()
	c := *cfg
	current = &c
	refs++
	return nil
}

// Teardown releases one Init. When the last session ends the configuration
// reverts to the defaults.
func Teardown() {
	stateMu.Lock()
	defer stateMu.Unlock()
	if refs == 0 {
		return
	}
	refs--
	if refs == 0 {
		current = nil
	}
}

// Current returns a copy of the active configuration, or the defaults when
// no session is active.
func Current() *Config {
	stateMu.Lock()
	defer stateMu.Unlock()
	if current == nil {
		return Defaults()
	}
	c := *current
	return &c
}

// Active reports whether at least one session holds the configuration.
func Active() bool {
	stateMu.Lock()
	defer stateMu.Unlock()
	return refs > 0
}
