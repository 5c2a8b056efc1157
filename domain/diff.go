package domain

import (
	"context"
	"io"
	"time"
)

// DiffRequest represents a request to diff two syntax trees. Either both
// paths or both contents must be set; contents win when present.
type DiffRequest struct {
	// Input
	SourcePath    string `json:"source_path,omitempty"`
	TargetPath    string `json:"target_path,omitempty"`
	SourceContent []byte `json:"-"`
	TargetContent []byte `json:"-"`
	Language      string `json:"language,omitempty"`

	// Matching
	Matcher       string  `json:"matcher"`
	MinHeight     int     `json:"min_height"`
	SimThreshold  float64 `json:"sim_threshold"`
	SizeThreshold int     `json:"size_threshold"`

	// Script generation
	Strict             bool `json:"strict"`
	DistinguishPermute bool `json:"distinguish_permute"`

	// Output configuration
	OutputFormat       OutputFormat `json:"output_format"`
	OutputWriter       io.Writer    `json:"-"`
	OutputPath         string       `json:"output_path,omitempty"`
	ShowMappings       bool         `json:"show_mappings"`
	ShowClassification bool         `json:"show_classification"`
	NoColor            bool         `json:"no_color"`

	// Configuration file
	ConfigPath string `json:"config_path,omitempty"`
}

// HasContent reports whether the request carries in-memory sources
func (req *DiffRequest) HasContent() bool {
	return req.SourceContent != nil || req.TargetContent != nil
}

// HasValidOutputWriter checks if the request has a valid output writer
func (req *DiffRequest) HasValidOutputWriter() bool {
	return req.OutputWriter != nil
}

// Validate validates a diff request
func (req *DiffRequest) Validate() error {
	if req.HasContent() {
		if req.Language == "" && req.SourcePath == "" && req.TargetPath == "" {
			return NewValidationError("language is required when diffing in-memory sources")
		}
	} else {
		if req.SourcePath == "" || req.TargetPath == "" {
			return NewValidationError("source and target paths are required")
		}
	}

	if req.MinHeight < 0 {
		return NewValidationError("min_height must be >= 0")
	}

	if req.SimThreshold < 0.0 || req.SimThreshold > 1.0 {
		return NewValidationError("sim_threshold must be between 0.0 and 1.0")
	}

	if req.SizeThreshold < 0 {
		return NewValidationError("size_threshold must be >= 0")
	}

	switch req.OutputFormat {
	case "", OutputFormatText, OutputFormatJSON, OutputFormatYAML:
	default:
		return NewUnsupportedFormatError(string(req.OutputFormat))
	}

	return nil
}

// DefaultDiffRequest returns a diff request populated with defaults
func DefaultDiffRequest() *DiffRequest {
	return &DiffRequest{
		Matcher:       DefaultMatcher,
		MinHeight:     DefaultMinHeight,
		SimThreshold:  DefaultSimThreshold,
		SizeThreshold: DefaultSizeThreshold,
		OutputFormat:  DefaultOutputFormat,
	}
}

// NodeRef describes a tree node in reports. Type and Label come from the
// node, Pos and End are byte offsets into the parsed input.
type NodeRef struct {
	Type  string `json:"type" yaml:"type"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Pos   int    `json:"pos" yaml:"pos"`
	End   int    `json:"end" yaml:"end"`
}

// ActionView is the serialized form of one edit action. Tree and Parent
// hold node descriptors such as `identifier: foo [12,15]`; an empty Parent
// with a non-nil At denotes the virtual root above the source tree.
type ActionView struct {
	Action   string   `json:"action" yaml:"action"`
	Tree     string   `json:"tree" yaml:"tree"`
	Parent   string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	At       *int     `json:"at,omitempty" yaml:"at,omitempty"`
	Label    string   `json:"label,omitempty" yaml:"label,omitempty"`
	OldLabel string   `json:"old_label,omitempty" yaml:"old_label,omitempty"`
	Node     NodeRef  `json:"node" yaml:"node"`
	Target   *NodeRef `json:"parent_node,omitempty" yaml:"parent_node,omitempty"`
}

// MappingView pairs a source node with its destination partner
type MappingView struct {
	Src string `json:"src" yaml:"src"`
	Dst string `json:"dst" yaml:"dst"`
}

// ClassificationView lists the nodes touched by the script, grouped by
// what happened to them. Deleted and Inserted hold subtree roots only.
type ClassificationView struct {
	Deleted  []string `json:"deleted" yaml:"deleted"`
	Inserted []string `json:"inserted" yaml:"inserted"`
	Updated  []string `json:"updated" yaml:"updated"`
	Moved    []string `json:"moved" yaml:"moved"`
}

// DiffSummary counts the actions of a script and the size of both trees
type DiffSummary struct {
	Inserts      int `json:"inserts" yaml:"inserts"`
	Deletes      int `json:"deletes" yaml:"deletes"`
	Updates      int `json:"updates" yaml:"updates"`
	Moves        int `json:"moves" yaml:"moves"`
	Permutes     int `json:"permutes" yaml:"permutes"`
	TotalActions int `json:"total_actions" yaml:"total_actions"`
	SourceNodes  int `json:"source_nodes" yaml:"source_nodes"`
	TargetNodes  int `json:"target_nodes" yaml:"target_nodes"`
	MappedNodes  int `json:"mapped_nodes" yaml:"mapped_nodes"`
}

// HasChanges reports whether the script is non-empty
func (s DiffSummary) HasChanges() bool {
	return s.TotalActions > 0
}

// MatchStatistics reports what each matching phase contributed
type MatchStatistics struct {
	SubtreeCandidates int `json:"subtree_candidates" yaml:"subtree_candidates"`
	SubtreeMappings   int `json:"subtree_mappings" yaml:"subtree_mappings"`
	BottomUpMappings  int `json:"bottom_up_mappings" yaml:"bottom_up_mappings"`
	RecoveredMappings int `json:"recovered_mappings" yaml:"recovered_mappings"`
	OptimalRuns       int `json:"optimal_runs" yaml:"optimal_runs"`
	OptimalSkipped    int `json:"optimal_skipped" yaml:"optimal_skipped"`
}

// DiffResponse represents the result of a single diff
type DiffResponse struct {
	Source   string `json:"source" yaml:"source"`
	Target   string `json:"target" yaml:"target"`
	Language string `json:"language" yaml:"language"`
	Matcher  string `json:"matcher" yaml:"matcher"`

	Actions        []ActionView        `json:"actions" yaml:"actions"`
	Mappings       []MappingView       `json:"mappings,omitempty" yaml:"mappings,omitempty"`
	Classification *ClassificationView `json:"classification,omitempty" yaml:"classification,omitempty"`

	Summary    DiffSummary     `json:"summary" yaml:"summary"`
	Statistics MatchStatistics `json:"statistics" yaml:"statistics"`

	// Verified is false when the script failed the post-condition check
	Verified bool   `json:"verified" yaml:"verified"`
	Warning  string `json:"warning,omitempty" yaml:"warning,omitempty"`

	// Metadata
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Duration    int64  `json:"duration_ms" yaml:"duration_ms"`
}

// FileStatus describes how a file differs between two directories
type FileStatus string

const (
	FileModified  FileStatus = "modified"
	FileUnchanged FileStatus = "unchanged"
	FileAdded     FileStatus = "added"
	FileDeleted   FileStatus = "deleted"
	FileFailed    FileStatus = "failed"
)

// FilePair links the same relative path in both directories
type FilePair struct {
	RelPath string `json:"path" yaml:"path"`
	Source  string `json:"source" yaml:"source"`
	Target  string `json:"target" yaml:"target"`
}

// DirectoryPairing is the result of matching files across two directories
type DirectoryPairing struct {
	Paired  []FilePair `json:"paired" yaml:"paired"`
	Added   []string   `json:"added" yaml:"added"`
	Deleted []string   `json:"deleted" yaml:"deleted"`
}

// DirDiffRequest represents a request to diff two directory trees file by
// file. Diff carries the per-file settings; its paths are filled per pair.
type DirDiffRequest struct {
	SourceDir       string   `json:"source_dir"`
	TargetDir       string   `json:"target_dir"`
	Recursive       bool     `json:"recursive"`
	IncludePatterns []string `json:"include_patterns"`
	ExcludePatterns []string `json:"exclude_patterns"`

	Diff DiffRequest `json:"diff"`

	MaxGoroutines int           `json:"max_goroutines"`
	Timeout       time.Duration `json:"timeout"`
	ShowProgress  bool          `json:"show_progress"`
}

// Validate validates a directory diff request
func (req *DirDiffRequest) Validate() error {
	if req.SourceDir == "" || req.TargetDir == "" {
		return NewValidationError("source and target directories are required")
	}
	if req.MaxGoroutines < 0 {
		return NewValidationError("max_goroutines must be >= 0")
	}
	if req.Timeout < 0 {
		return NewValidationError("timeout must be >= 0")
	}
	return nil
}

// FileDiff is the outcome for one file of a directory diff
type FileDiff struct {
	Path   string        `json:"path" yaml:"path"`
	Status FileStatus    `json:"status" yaml:"status"`
	Diff   *DiffResponse `json:"diff,omitempty" yaml:"diff,omitempty"`
	Error  string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// DirDiffSummary aggregates a directory diff
type DirDiffSummary struct {
	FilesCompared int `json:"files_compared" yaml:"files_compared"`
	FilesChanged  int `json:"files_changed" yaml:"files_changed"`
	FilesAdded    int `json:"files_added" yaml:"files_added"`
	FilesDeleted  int `json:"files_deleted" yaml:"files_deleted"`
	FilesFailed   int `json:"files_failed" yaml:"files_failed"`
	TotalActions  int `json:"total_actions" yaml:"total_actions"`
}

// DirDiffResponse represents the result of a directory diff
type DirDiffResponse struct {
	SourceDir   string         `json:"source_dir" yaml:"source_dir"`
	TargetDir   string         `json:"target_dir" yaml:"target_dir"`
	Files       []FileDiff     `json:"files" yaml:"files"`
	Summary     DirDiffSummary `json:"summary" yaml:"summary"`
	GeneratedAt string         `json:"generated_at" yaml:"generated_at"`
	Duration    int64          `json:"duration_ms" yaml:"duration_ms"`
}

// DiffService defines the interface for tree diffing
type DiffService interface {
	// Diff reads both files and diffs their trees
	Diff(ctx context.Context, req *DiffRequest) (*DiffResponse, error)

	// DiffSources diffs in-memory sources
	DiffSources(ctx context.Context, req *DiffRequest) (*DiffResponse, error)
}

// DiffOutputFormatter defines the interface for rendering diff results
type DiffOutputFormatter interface {
	// Write renders a single diff
	Write(response *DiffResponse, format OutputFormat, writer io.Writer) error

	// WriteDir renders a directory diff
	WriteDir(response *DirDiffResponse, format OutputFormat, writer io.Writer) error
}

// DiffConfigurationLoader loads diff settings from configuration files
type DiffConfigurationLoader interface {
	// LoadConfig loads the file at path. With an empty path, .astdiff.toml
	// is searched upward from dir; nil is returned when none exists.
	LoadConfig(path, dir string) (*DiffRequest, error)

	// MergeConfig lays explicitly set request values over the loaded configuration
	MergeConfig(base *DiffRequest, override *DiffRequest) *DiffRequest
}

// DirDiffConfigurationLoader loads directory diff settings
type DirDiffConfigurationLoader interface {
	// LoadDirConfig behaves like DiffConfigurationLoader.LoadConfig
	LoadDirConfig(path, dir string) (*DirDiffRequest, error)

	// MergeDirConfig lays explicitly set request values over the loaded configuration
	MergeDirConfig(base *DirDiffRequest, override *DirDiffRequest) *DirDiffRequest
}

// FileReader defines the interface for reading and collecting input files
type FileReader interface {
	// ReadFile reads the content of a file
	ReadFile(path string) ([]byte, error)

	// CollectFiles lists files under root relative to it, honoring patterns
	CollectFiles(root string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)

	// FileExists checks if a regular file exists
	FileExists(path string) (bool, error)
}

// DirectoryComparator pairs files between two directories
type DirectoryComparator interface {
	Compare(sourceDir, targetDir string, recursive bool, includePatterns, excludePatterns []string) (*DirectoryPairing, error)
}
