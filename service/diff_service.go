package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ludo-technologies/astdiff/domain"
	"github.com/ludo-technologies/astdiff/internal/actions"
	"github.com/ludo-technologies/astdiff/internal/gen"
	"github.com/ludo-technologies/astdiff/internal/matcher"
	"github.com/ludo-technologies/astdiff/internal/tree"
)

// DiffServiceImpl implements the DiffService interface
type DiffServiceImpl struct {
	generators *gen.Registry
	matchers   *matcher.Registry
	fileReader domain.FileReader
	logger     *log.Logger
}

// NewDiffService creates a diff service with the built-in front-ends and
// matchers. A nil logger discards warnings.
func NewDiffService(logger *log.Logger) *DiffServiceImpl {
	return NewDiffServiceWith(gen.NewRegistry(tree.NewTypeRegistry()), matcher.NewRegistry(), NewFileReader(), logger)
}

// NewDiffServiceWith creates a diff service over caller-supplied registries
func NewDiffServiceWith(generators *gen.Registry, matchers *matcher.Registry, fileReader domain.FileReader, logger *log.Logger) *DiffServiceImpl {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &DiffServiceImpl{
		generators: generators,
		matchers:   matchers,
		fileReader: fileReader,
		logger:     logger,
	}
}

// Generators returns the front-end registry
func (s *DiffServiceImpl) Generators() *gen.Registry { return s.generators }

// Matchers returns the matcher registry
func (s *DiffServiceImpl) Matchers() *matcher.Registry { return s.matchers }

// Diff reads both files and diffs their trees
func (s *DiffServiceImpl) Diff(ctx context.Context, req *domain.DiffRequest) (*domain.DiffResponse, error) {
	if req.SourcePath == "" || req.TargetPath == "" {
		return nil, domain.NewInvalidInputError("source and target paths are required", nil)
	}

	srcContent, err := s.fileReader.ReadFile(req.SourcePath)
	if err != nil {
		return nil, err
	}
	dstContent, err := s.fileReader.ReadFile(req.TargetPath)
	if err != nil {
		return nil, err
	}

	withContent := *req
	withContent.SourceContent = srcContent
	withContent.TargetContent = dstContent
	return s.DiffSources(ctx, &withContent)
}

// DiffSources diffs the in-memory contents of req. Paths, when present,
// only name the inputs and select the front-end.
func (s *DiffServiceImpl) DiffSources(ctx context.Context, req *domain.DiffRequest) (*domain.DiffResponse, error) {
	startTime := time.Now()

	generator, err := s.resolveGenerator(req)
	if err != nil {
		return nil, err
	}

	srcTree, err := s.parse(ctx, generator, req.SourceContent, displayName(req.SourcePath, "source"))
	if err != nil {
		return nil, err
	}
	dstTree, err := s.parse(ctx, generator, req.TargetContent, displayName(req.TargetPath, "target"))
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := s.matchers.New(req.Matcher, matcher.Options{
		MinHeight:     req.MinHeight,
		SimThreshold:  req.SimThreshold,
		SizeThreshold: req.SizeThreshold,
		Registry:      s.generators.Types(),
		Logger:        s.logger,
	})
	if err != nil {
		return nil, domain.NewUnknownMatcherError(req.Matcher, err)
	}

	result, err := m.MatchWithStats(srcTree, dstTree)
	if err != nil {
		return nil, domain.NewAnalysisError("matching failed", err)
	}

	script, err := actions.NewGenerator(actions.Options{
		DistinguishPermute: req.DistinguishPermute,
		Logger:             s.logger,
	}).Generate(srcTree, dstTree, result.Mappings)

	verified := true
	warning := ""
	switch {
	case err == nil:
	case errors.Is(err, actions.ErrScriptMismatch):
		if req.Strict {
			return nil, domain.NewPostconditionError(err)
		}
		verified = false
		warning = err.Error()
	default:
		return nil, domain.NewAnalysisError("edit script generation failed", err)
	}

	views := newViewBuilder(s.generators.Types())
	response := &domain.DiffResponse{
		Source:      displayName(req.SourcePath, "source"),
		Target:      displayName(req.TargetPath, "target"),
		Language:    generator.Name(),
		Matcher:     m.Name(),
		Actions:     views.actions(script),
		Summary:     summarize(script, srcTree, dstTree, result.Mappings),
		Statistics:  domain.MatchStatistics(result.Stats),
		Verified:    verified,
		Warning:     warning,
		GeneratedAt: time.Now().Format(time.RFC3339),
	}
	if req.ShowMappings {
		response.Mappings = views.mappings(result.Mappings)
	}
	if req.ShowClassification {
		response.Classification = views.classification(script, actions.Classify(script, result.Mappings))
	}
	response.Duration = time.Since(startTime).Milliseconds()

	return response, nil
}

// resolveGenerator picks the front-end from the explicit language or from
// the source path, falling back to the target path.
func (s *DiffServiceImpl) resolveGenerator(req *domain.DiffRequest) (gen.Generator, error) {
	if req.Language != "" {
		g, err := s.generators.Get(req.Language)
		if err != nil {
			return nil, domain.NewUnsupportedLanguageError(req.Language, err)
		}
		return g, nil
	}

	var lastErr error
	for _, path := range []string{req.SourcePath, req.TargetPath} {
		if path == "" {
			continue
		}
		g, err := s.generators.ForPath(path)
		if err == nil {
			return g, nil
		}
		lastErr = err
	}
	what := req.SourcePath
	if what == "" {
		what = "input without a file name"
	}
	return nil, domain.NewUnsupportedLanguageError(what, lastErr)
}

func (s *DiffServiceImpl) parse(ctx context.Context, g gen.Generator, content []byte, name string) (*tree.Node, error) {
	if len(content) > domain.MaxFileSizeBytes {
		return nil, domain.NewInvalidInputError(
			fmt.Sprintf("%s exceeds the maximum size of %d bytes", name, domain.MaxFileSizeBytes), nil)
	}
	root, err := g.Generate(ctx, content)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, domain.NewParseError(name, err)
	}
	return root, nil
}

func displayName(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}

func summarize(script *actions.EditScript, src, dst *tree.Node, mappings *matcher.MappingStore) domain.DiffSummary {
	summary := domain.DiffSummary{
		Inserts:      script.Count(actions.Insert),
		Deletes:      script.Count(actions.Delete),
		Updates:      script.Count(actions.Update),
		Moves:        script.Count(actions.Move),
		Permutes:     script.Count(actions.Permute),
		TotalActions: script.Len(),
		MappedNodes:  mappings.Len(),
	}
	if src != nil {
		summary.SourceNodes = src.Size()
	}
	if dst != nil {
		summary.TargetNodes = dst.Size()
	}
	return summary
}
