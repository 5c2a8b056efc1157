package service

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/astdiff/domain"
)

// OutputFormatResolver resolves the output format from --format and the
// --json/--yaml shortcut flags.
type OutputFormatResolver struct{}

func NewOutputFormatResolver() *OutputFormatResolver { return &OutputFormatResolver{} }

// Determine returns the selected format. At most one shortcut may be set and
// it must agree with format when both are given; an empty result means text.
func (r *OutputFormatResolver) Determine(format string, json, yaml bool) (domain.OutputFormat, error) {
	var shortcut domain.OutputFormat
	count := 0
	if json {
		count++
		shortcut = domain.OutputFormatJSON
	}
	if yaml {
		count++
		shortcut = domain.OutputFormatYAML
	}
	if count > 1 {
		return "", fmt.Errorf("only one output format flag can be specified")
	}

	requested := domain.OutputFormat(strings.ToLower(strings.TrimSpace(format)))
	if count == 1 {
		if requested != "" && requested != shortcut {
			return "", fmt.Errorf("--format %s conflicts with --%s", requested, shortcut)
		}
		return shortcut, nil
	}
	if requested == "" {
		return domain.OutputFormatText, nil
	}
	for _, f := range domain.OutputFormats() {
		if f == requested {
			return f, nil
		}
	}
	return "", domain.NewUnsupportedFormatError(format)
}
