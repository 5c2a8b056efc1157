package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ludo-technologies/astdiff/domain"
	"github.com/ludo-technologies/astdiff/internal/config"
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies("", nil)
	}
	return &HandlerSet{deps: deps}
}

// HandleDiffFiles handles the diff_files tool
func (h *HandlerSet) HandleDiffFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	sourcePath, ok := args["source_path"].(string)
	if !ok || sourcePath == "" {
		return mcp.NewToolResultError("source_path parameter is required and must be a string"), nil
	}
	targetPath, ok := args["target_path"].(string)
	if !ok || targetPath == "" {
		return mcp.NewToolResultError("target_path parameter is required and must be a string"), nil
	}
	for _, p := range []string{sourcePath, targetPath} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", p)), nil
		}
	}

	var buf bytes.Buffer
	req := h.newRequest(&buf)
	req.SourcePath = sourcePath
	req.TargetPath = targetPath
	set, err := applyDiffOptions(args, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return h.runDiff(ctx, req, set, &buf)
}

// HandleDiffSources handles the diff_sources tool
func (h *HandlerSet) HandleDiffSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	source, ok := args["source"].(string)
	if !ok {
		return mcp.NewToolResultError("source parameter is required and must be a string"), nil
	}
	target, ok := args["target"].(string)
	if !ok {
		return mcp.NewToolResultError("target parameter is required and must be a string"), nil
	}

	var buf bytes.Buffer
	req := h.newRequest(&buf)
	req.SourceContent = []byte(source)
	req.TargetContent = []byte(target)
	set, err := applyDiffOptions(args, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if req.Language == "" {
		return mcp.NewToolResultError("language parameter is required for inline sources"), nil
	}

	return h.runDiff(ctx, req, set, &buf)
}

// HandleDiffDirectories handles the diff_directories tool
func (h *HandlerSet) HandleDiffDirectories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	sourceDir, ok := args["source_dir"].(string)
	if !ok || sourceDir == "" {
		return mcp.NewToolResultError("source_dir parameter is required and must be a string"), nil
	}
	targetDir, ok := args["target_dir"].(string)
	if !ok || targetDir == "" {
		return mcp.NewToolResultError("target_dir parameter is required and must be a string"), nil
	}

	var buf bytes.Buffer
	diffReq := h.newRequest(&buf)
	set, err := applyDiffOptions(args, diffReq)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := domain.DirDiffRequest{
		SourceDir:       sourceDir,
		TargetDir:       targetDir,
		Recursive:       true,
		ExcludePatterns: domain.DefaultExcludePatterns,
		Diff:            *diffReq,
		MaxGoroutines:   domain.DefaultMaxGoroutines,
		Timeout:         domain.DefaultTimeout,
	}
	if v, ok := args["recursive"].(bool); ok {
		req.Recursive = v
		set[config.FlagRecursive] = true
	}
	if v, ok := stringSlice(args["include"]); ok {
		req.IncludePatterns = v
		set[config.FlagInclude] = true
	}
	if v, ok := stringSlice(args["exclude"]); ok {
		req.ExcludePatterns = v
		set[config.FlagExclude] = true
	}

	uc, err := h.deps.BuildDirDiffUseCase(set)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create diff: %v", err)), nil
	}
	if _, err := uc.Execute(ctx, req); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("diff failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// HandleListMatchers handles the list_matchers tool
func (h *HandlerSet) HandleListMatchers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc := h.deps.DiffService()

	languages := make([]map[string]interface{}, 0)
	for _, name := range svc.Generators().Names() {
		g, err := svc.Generators().Get(name)
		if err != nil {
			continue
		}
		languages = append(languages, map[string]interface{}{
			"name":     name,
			"patterns": g.Patterns(),
		})
	}

	jsonData, err := json.Marshal(map[string]interface{}{
		"matchers":  svc.Matchers().Strategies(),
		"languages": languages,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *HandlerSet) newRequest(buf *bytes.Buffer) *domain.DiffRequest {
	req := domain.DefaultDiffRequest()
	req.OutputFormat = domain.OutputFormatJSON
	req.OutputWriter = buf
	req.NoColor = true
	req.ConfigPath = h.deps.ConfigPath()
	return req
}

func (h *HandlerSet) runDiff(ctx context.Context, req *domain.DiffRequest, set map[string]bool, buf *bytes.Buffer) (*mcp.CallToolResult, error) {
	uc, err := h.deps.BuildDiffUseCase(set)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create diff: %v", err)), nil
	}
	if _, err := uc.Execute(ctx, *req); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("diff failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// applyDiffOptions copies the matching options present in args onto req and
// returns the flag names they correspond to, so configuration files only
// fill in what the caller left out. The output format is always JSON.
func applyDiffOptions(args map[string]interface{}, req *domain.DiffRequest) (map[string]bool, error) {
	set := map[string]bool{config.FlagFormat: true}

	if v, ok := args["matcher"].(string); ok && v != "" {
		req.Matcher = v
		set[config.FlagMatcher] = true
	}
	if v, ok := args["language"].(string); ok && v != "" {
		req.Language = v
		set[config.FlagLanguage] = true
	}
	if v, ok := args["min_height"].(float64); ok {
		if v < 0 {
			return nil, fmt.Errorf("min_height must be >= 0")
		}
		req.MinHeight = int(v)
		set[config.FlagMinHeight] = true
	}
	if v, ok := args["sim_threshold"].(float64); ok {
		if v <= 0 || v > 1 {
			return nil, fmt.Errorf("sim_threshold must be in (0, 1]")
		}
		req.SimThreshold = v
		set[config.FlagSimThreshold] = true
	}
	if v, ok := args["strict"].(bool); ok {
		req.Strict = v
		set[config.FlagStrict] = true
	}
	if v, ok := args["permute"].(bool); ok {
		req.DistinguishPermute = v
		set[config.FlagPermute] = true
	}
	if v, ok := args["include_mappings"].(bool); ok {
		req.ShowMappings = v
		set[config.FlagShowMappings] = true
	}
	if v, ok := args["classify"].(bool); ok {
		req.ShowClassification = v
		set[config.FlagShowClassification] = true
	}
	return set, nil
}

func stringSlice(v interface{}) ([]string, bool) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}
