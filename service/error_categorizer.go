package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ludo-technologies/astdiff/domain"
)

// ErrorCategorizerImpl implements the ErrorCategorizer interface. Domain
// error codes decide first; message patterns are the fallback for errors
// from libraries.
type ErrorCategorizerImpl struct {
	patterns []categoryPatterns
}

type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() *ErrorCategorizerImpl {
	return &ErrorCategorizerImpl{
		patterns: []categoryPatterns{
			{domain.ErrorCategoryTimeout, []string{"timeout", "timed out", "deadline", "context canceled"}},
			{domain.ErrorCategoryConfig, []string{"config", ".astdiff.toml", "unknown matcher"}},
			{domain.ErrorCategoryInput, []string{"no such file", "file not found", "permission denied", "not a directory", "is a directory", "no tree generator"}},
			{domain.ErrorCategoryProcessing, []string{"parse", "syntax", "matching", "edit script"}},
			{domain.ErrorCategoryOutput, []string{"write", "output", "encode"}},
		},
	}
}

var codeCategories = map[string]domain.ErrorCategory{
	domain.ErrCodeInvalidInput:        domain.ErrorCategoryInput,
	domain.ErrCodeFileNotFound:        domain.ErrorCategoryInput,
	domain.ErrCodeUnsupportedLanguage: domain.ErrorCategoryInput,
	domain.ErrCodeConfigError:         domain.ErrorCategoryConfig,
	domain.ErrCodeUnknownMatcher:      domain.ErrorCategoryConfig,
	domain.ErrCodeParseError:          domain.ErrorCategoryProcessing,
	domain.ErrCodeAnalysisError:       domain.ErrorCategoryProcessing,
	domain.ErrCodePostcondition:       domain.ErrorCategoryProcessing,
	domain.ErrCodeOutputError:         domain.ErrorCategoryOutput,
	domain.ErrCodeUnsupportedFormat:   domain.ErrorCategoryOutput,
}

// Categorize determines the category of an error
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	category := ec.categoryOf(err)
	return &domain.CategorizedError{
		Category: category,
		Message:  categoryMessages[category],
		Original: err,
	}
}

func (ec *ErrorCategorizerImpl) categoryOf(err error) domain.ErrorCategory {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.ErrorCategoryTimeout
	}

	var de domain.DomainError
	if errors.As(err, &de) {
		if category, ok := codeCategories[de.Code]; ok {
			return category
		}
	}

	msg := strings.ToLower(err.Error())
	for _, cp := range ec.patterns {
		for _, pattern := range cp.patterns {
			if strings.Contains(msg, pattern) {
				return cp.category
			}
		}
	}
	return domain.ErrorCategoryUnknown
}

var categoryMessages = map[domain.ErrorCategory]string{
	domain.ErrorCategoryInput:      "Failed to read input files or directories",
	domain.ErrorCategoryConfig:     "Configuration file or settings error",
	domain.ErrorCategoryTimeout:    "Diff timed out",
	domain.ErrorCategoryOutput:     "Failed to generate or write output",
	domain.ErrorCategoryProcessing: "Error while building or diffing syntax trees",
	domain.ErrorCategoryUnknown:    "An unexpected error occurred",
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	suggestions := map[domain.ErrorCategory][]string{
		domain.ErrorCategoryInput: {
			"Check that both paths exist and are readable",
			"Use --language to pick a front-end for unrecognized file names",
			"Try: astdiff list to see supported languages and file patterns",
		},
		domain.ErrorCategoryConfig: {
			"Verify the values in .astdiff.toml",
			"Try: astdiff init to generate a valid config file",
			"Try: astdiff list to see registered matchers",
		},
		domain.ErrorCategoryTimeout: {
			"Increase --timeout or diff fewer files at once",
			"Use the gumtree strategy instead of zs on large trees",
		},
		domain.ErrorCategoryOutput: {
			"Use --format text, json or yaml",
			"Check that the output destination is writable",
		},
		domain.ErrorCategoryProcessing: {
			"Check both inputs for syntax errors",
			"Re-run without --strict to get the script together with a warning",
		},
		domain.ErrorCategoryUnknown: {
			"Run with --verbose for detailed error information",
			"Report the issue if it persists",
		},
	}

	if sug, ok := suggestions[category]; ok {
		return sug
	}
	return []string{"Check the error message for more details"}
}
