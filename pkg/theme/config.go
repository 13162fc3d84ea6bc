package theme

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/schemaflow/pkg/color"
	"github.com/matzehuels/schemaflow/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "schemaflow"

// Edge styles understood by the rendering collaborator.
const (
	EdgeDefault      = "default"
	EdgeStraight     = "straight"
	EdgeStep         = "step"
	EdgeSmoothStep   = "smoothstep"
	EdgeSimpleBezier = "simplebezier"
)

// Persistence backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Record codecs.
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

var (
	edgeTypes = []string{EdgeDefault, EdgeStraight, EdgeStep, EdgeSmoothStep, EdgeSimpleBezier}
	backends  = []string{BackendFile, BackendMemory, BackendRedis, BackendMongo, BackendNone}
	codecs    = []string{CodecJSON, CodecMsgpack}
)

// =============================================================================
// Config
// =============================================================================

// Config is the complete preview configuration.
type Config struct {
	Theme   Palette `toml:"theme"`
	Layout  Layout  `toml:"layout"`
	Store   Store   `toml:"store"`
	Session Session `toml:"session"`
}

// Palette holds the fallback colors used when an element's own color is
// missing or invalid, plus rendering style options.
type Palette struct {
	TableHeader       string `toml:"table_header"`
	Group             string `toml:"group"`
	Note              string `toml:"note"`
	EdgeType          string `toml:"edge_type"`
	InheritThemeStyle bool   `toml:"inherit_theme_style"`
}

// Layout controls the automatic flow layout.
type Layout struct {
	RowBudget float64 `toml:"row_budget"`
	GapX      float64 `toml:"gap_x"`
	GapY      float64 `toml:"gap_y"`
}

// Store selects and configures the layout persistence backend.
type Store struct {
	Backend         string        `toml:"backend"`
	Codec           string        `toml:"codec"`
	Dir             string        `toml:"dir"` // file backend; empty means the XDG state dir
	RedisAddr       string        `toml:"redis_addr"`
	RedisDB         int           `toml:"redis_db"`
	MongoURI        string        `toml:"mongo_uri"`
	MongoDatabase   string        `toml:"mongo_database"`
	MongoCollection string        `toml:"mongo_collection"`
	Timeout         time.Duration `toml:"timeout"`
}

// Session controls interactive preview sessions.
type Session struct {
	Coalesce time.Duration `toml:"coalesce"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Theme: Palette{
			TableHeader:       "#316896",
			Group:             "#5b6b7c",
			Note:              "#f6e27f",
			EdgeType:          EdgeSmoothStep,
			InheritThemeStyle: true,
		},
		Layout: Layout{
			RowBudget: 1600,
			GapX:      80,
			GapY:      80,
		},
		Store: Store{
			Backend:         BackendFile,
			Codec:           CodecJSON,
			RedisAddr:       "localhost:6379",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   appName,
			MongoCollection: "layouts",
			Timeout:         5 * time.Second,
		},
		Session: Session{
			Coalesce: 100 * time.Millisecond,
		},
	}
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	for name, token := range map[string]string{
		"theme.table_header": c.Theme.TableHeader,
		"theme.group":        c.Theme.Group,
		"theme.note":         c.Theme.Note,
	} {
		if !color.Valid(token) {
			return errors.New(errors.ErrCodeColorInvalid, "%s: invalid color %q", name, token)
		}
	}
	if !slices.Contains(edgeTypes, c.Theme.EdgeType) {
		return errors.New(errors.ErrCodeInvalidInput, "theme.edge_type: unknown edge type %q (want one of %s)",
			c.Theme.EdgeType, strings.Join(edgeTypes, ", "))
	}
	if c.Layout.RowBudget <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout.row_budget must be positive")
	}
	if c.Layout.GapX < 0 || c.Layout.GapY < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout gaps must not be negative")
	}
	if !slices.Contains(backends, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "store.backend: unknown backend %q (want one of %s)",
			c.Store.Backend, strings.Join(backends, ", "))
	}
	if !slices.Contains(codecs, c.Store.Codec) {
		return errors.New(errors.ErrCodeInvalidInput, "store.codec: unknown codec %q (want one of %s)",
			c.Store.Codec, strings.Join(codecs, ", "))
	}
	if c.Session.Coalesce < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "session.coalesce must not be negative")
	}
	return nil
}

// =============================================================================
// Loading
// =============================================================================

// Load reads a TOML config file on top of the defaults. A missing file is
// not an error and yields the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if err := decode(string(data), cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML text on top of the defaults.
func Parse(text string) (*Config, error) {
	cfg := Defaults()
	if err := decode(text, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(text string, cfg *Config) error {
	meta, err := toml.Decode(text, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Write encodes the configuration as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns the config file location using the XDG standard
// (~/.config/schemaflow/config.toml).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// StateDir returns the directory for persisted layouts using the XDG standard
// (~/.local/state/schemaflow/).
func StateDir() (string, error) {
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", appName), nil
}
