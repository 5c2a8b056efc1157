package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/astdiff/domain"
	"github.com/ludo-technologies/astdiff/internal/config"
	"github.com/ludo-technologies/astdiff/service"
)

// diffFlags holds the options shared by diff and dir
type diffFlags struct {
	matcher       string
	minHeight     int
	simThreshold  float64
	sizeThreshold int
	strict        bool
	permute       bool
	language      string

	format             string
	json               bool
	yaml               bool
	output             string
	showMappings       bool
	showClassification bool
	noColor            bool
	exitCode           bool
}

func (f *diffFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.matcher, config.FlagMatcher, "m", domain.DefaultMatcher, "Matching strategy (see astdiff list)")
	flags.IntVar(&f.minHeight, config.FlagMinHeight, domain.DefaultMinHeight, "Minimum subtree height for exact subtree matching")
	flags.Float64Var(&f.simThreshold, config.FlagSimThreshold, domain.DefaultSimThreshold, "Minimum dice similarity for bottom-up matching")
	flags.IntVar(&f.sizeThreshold, config.FlagSizeThreshold, domain.DefaultSizeThreshold, "Largest subtree pair aligned optimally (0 uses the matcher default)")
	flags.BoolVar(&f.strict, config.FlagStrict, false, "Fail when the edit script does not reproduce the target tree")
	flags.BoolVar(&f.permute, config.FlagPermute, false, "Report sibling reorders as permute instead of move")
	flags.StringVarP(&f.language, config.FlagLanguage, "l", "", "Force the front-end instead of detecting it from file names")

	flags.StringVarP(&f.format, config.FlagFormat, "f", "", "Output format: text, json or yaml")
	flags.BoolVar(&f.json, "json", false, "Shortcut for --format json")
	flags.BoolVar(&f.yaml, "yaml", false, "Shortcut for --format yaml")
	flags.StringVarP(&f.output, "output", "o", "", "Write the report to a file instead of stdout")
	flags.BoolVar(&f.showMappings, config.FlagShowMappings, false, "Include node mappings in the report")
	flags.BoolVar(&f.showClassification, config.FlagShowClassification, false, "Include the deleted/inserted/updated/moved classification")
	flags.BoolVar(&f.noColor, config.FlagNoColor, false, "Disable colored text output")
	flags.BoolVar(&f.exitCode, "exit-code", false, "Exit with status 1 when the inputs differ")
}

// request builds the per-file request from the flags; configuration
// values are merged in later by the use case
func (f *diffFlags) request(cmd *cobra.Command) (*domain.DiffRequest, error) {
	format, err := service.NewOutputFormatResolver().Determine(f.format, f.json, f.yaml)
	if err != nil {
		return nil, err
	}
	configPath, _ := cmd.Flags().GetString("config")

	return &domain.DiffRequest{
		Language:           f.language,
		Matcher:            f.matcher,
		MinHeight:          f.minHeight,
		SimThreshold:       f.simThreshold,
		SizeThreshold:      f.sizeThreshold,
		Strict:             f.strict,
		DistinguishPermute: f.permute,
		OutputFormat:       format,
		OutputWriter:       cmd.OutOrStdout(),
		OutputPath:         f.output,
		ShowMappings:       f.showMappings,
		ShowClassification: f.showClassification,
		NoColor:            f.noColor,
		ConfigPath:         configPath,
	}, nil
}

// newLogger returns the logger handed to the engine. Warnings always go to
// stderr; verbose runs also get timestamps.
func newLogger(cmd *cobra.Command) *log.Logger {
	var w io.Writer = cmd.ErrOrStderr()
	if w == nil {
		w = os.Stderr
	}
	flags := 0
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		flags = log.LstdFlags
	}
	return log.New(w, "", flags)
}

func newConfigLoader(cmd *cobra.Command) *service.ConfigurationLoaderImpl {
	return service.NewConfigurationLoader(config.NewFlagTrackerFromFlagSet(cmd.Flags()))
}
