package domain

import "time"

// Matcher defaults. The size threshold is left at zero so each strategy
// falls back to its own bound (100 nodes for gumtree, 200 for
// gumtree-complete).
const (
	// DefaultMatcher is the strategy used when none is configured
	DefaultMatcher = "gumtree"

	// DefaultMinHeight includes leaves in top-down subtree matching
	DefaultMinHeight = 0

	// DefaultSimThreshold is the minimum bottom-up similarity for a container match
	DefaultSimThreshold = 0.5

	// DefaultSizeThreshold selects the strategy's own optimal-matching bound
	DefaultSizeThreshold = 0
)

// Output defaults
const (
	DefaultOutputFormat = OutputFormatText
	DefaultColorMode    = ColorAuto
)

// Performance defaults
const (
	DefaultMaxGoroutines  = 4
	DefaultTimeoutSeconds = 300
	DefaultTimeout        = DefaultTimeoutSeconds * time.Second
)

// MaxFileSizeBytes bounds the size of a single input file
const MaxFileSizeBytes = 16 << 20

// DefaultExcludePatterns are skipped when walking directories
var DefaultExcludePatterns = []string{
	".git/**",
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/vendor/**",
}
