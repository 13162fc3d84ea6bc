package color

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/schemaflow/pkg/errors"
)

// DefaultFallback is used when neither the token nor the supplied fallback is valid.
const DefaultFallback Color = "#316896"

// Pair is a resolved background with its readable foreground.
type Pair struct {
	Background Color
	Foreground Contrast
}

// Resolver turns possibly-invalid color tokens into usable pairs.
// An invalid token is reported as a warning every time it is resolved and
// replaced by the fallback. Resolvers are safe for concurrent use.
type Resolver struct {
	logger *log.Logger
}

// NewResolver returns a Resolver that reports invalid tokens to logger.
// A nil logger discards diagnostics.
func NewResolver(logger *log.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve validates token and falls back to fallback when it is empty or
// invalid. The owner identifies the element for diagnostics, e.g. "table-users".
func (r *Resolver) Resolve(owner, token, fallback string) Pair {
	if token != "" {
		if c, ok := Parse(token); ok {
			return Pair{Background: c, Foreground: ContrastOf(c)}
		}
		r.warn(owner, token)
	}
	c, ok := Parse(fallback)
	if !ok {
		c = DefaultFallback
	}
	return Pair{Background: c, Foreground: ContrastOf(c)}
}

func (r *Resolver) warn(owner, token string) {
	if r == nil || r.logger == nil {
		return
	}
	err := errors.New(errors.ErrCodeColorInvalid, "invalid color token %q", token)
	r.logger.Warn("invalid color, using theme default", "element", owner, "color", token, "err", err)
}
