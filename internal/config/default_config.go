package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/ludo-technologies/astdiff/domain"
	"github.com/ludo-technologies/astdiff/internal/matcher"
)

// defaultConfigTmpl contains the embedded default configuration template
//
//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds all values used to render the default config template.
type DefaultConfigValues struct {
	Strategy      string
	Strategies    string
	MinHeight     int
	SimThreshold  float64
	SizeThreshold int

	OutputFormat string

	ExcludePatterns []string

	MaxGoroutines  int
	TimeoutSeconds int
}

func newDefaultConfigValues() DefaultConfigValues {
	return DefaultConfigValues{
		Strategy:        domain.DefaultMatcher,
		Strategies:      strings.Join(matcher.NewRegistry().Names(), ", "),
		MinHeight:       domain.DefaultMinHeight,
		SimThreshold:    domain.DefaultSimThreshold,
		SizeThreshold:   domain.DefaultSizeThreshold,
		OutputFormat:    string(domain.DefaultOutputFormat),
		ExcludePatterns: domain.DefaultExcludePatterns,
		MaxGoroutines:   domain.DefaultMaxGoroutines,
		TimeoutSeconds:  domain.DefaultTimeoutSeconds,
	}
}

// GenerateDefaultConfigTOML renders the commented default .astdiff.toml
func GenerateDefaultConfigTOML() (string, error) {
	tmpl, err := template.New("default_config").Funcs(template.FuncMap{
		"quoteList": quoteList,
	}).Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}

	return buf.String(), nil
}

// WriteDefaultConfig writes the default configuration to path. An
// existing file is only replaced when force is set.
func WriteDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	content, err := GenerateDefaultConfigTOML()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
