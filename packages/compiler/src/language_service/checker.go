package language_service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"ngexpr-go/packages/compiler/src/config"
	"ngexpr-go/packages/compiler/src/expression_parser"
	"ngexpr-go/packages/compiler/src/template_parser"
	"ngexpr-go/packages/compiler/src/util"
)

// FileResult is the outcome of checking one template.
type FileResult struct {
	Path     string
	Bindings int
	Errors   []*util.ParseError
}

// HasErrors reports whether any error-level diagnostic was found.
func (r *FileResult) HasErrors() bool {
	for _, err := range r.Errors {
		if err.Level == util.ParseErrorLevelError {
			return true
		}
	}
	return false
}

// Checker parses every binding of a set of template files.
type Checker struct {
	fs  afero.Fs
	cfg *config.Config
	log logrus.FieldLogger
}

// NewChecker creates a Checker reading from fs. A nil cfg uses the defaults.
func NewChecker(fs afero.Fs, cfg *config.Config, log logrus.FieldLogger) *Checker {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Checker{fs: fs, cfg: cfg, log: log}
}

// CheckSource checks a template held in memory. A TypeScript source has
// the inline templates of its components checked.
func (c *Checker) CheckSource(path, content string) *FileResult {
	file := util.NewParseSourceFile(content, path)
	scanned := file
	if strings.HasSuffix(path, ".ts") {
		scanned = util.NewParseSourceFile(maskTemplates(content, InlineTemplates(content)), path)
	}

	// parsers keep state, each call gets its own
	bp := template_parser.NewBindingParser(expression_parser.NewParser(expression_parser.NewLexer()), c.log)
	bindings := bp.ParseTemplate(scanned)
	errs := bp.GetErrors()
	if scanned != file {
		for _, err := range errs {
			if err.Span != nil {
				err.Span = file.Span(err.Span.Start.Offset, err.Span.End.Offset)
			}
		}
	}
	return &FileResult{
		Path:     path,
		Bindings: len(bindings),
		Errors:   errs,
	}
}

// CheckFile reads and checks one template.
func (c *Checker) CheckFile(path string) (*FileResult, error) {
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return c.CheckSource(path, string(data)), nil
}

// Collect expands roots into the sorted list of template files to check.
// Directories are walked; a file root is kept whatever its extension.
func (c *Checker) Collect(roots ...string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}
	for _, root := range roots {
		info, err := c.fs.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = afero.Walk(c.fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if path != root && isSkippedDir(info.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if c.cfg.MatchesExtension(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// Check collects the templates under roots and checks them on up to
// cfg.Workers goroutines. Results follow the order of Collect.
func (c *Checker) Check(ctx context.Context, roots ...string) ([]*FileResult, error) {
	files, err := c.Collect(roots...)
	if err != nil {
		return nil, err
	}

	results := make([]*FileResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := c.CheckFile(path)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	errs := 0
	for _, r := range results {
		errs += len(r.Errors)
	}
	c.log.WithFields(logrus.Fields{
		"files":  len(results),
		"errors": errs,
	}).Info("check finished")
	return results, nil
}

func isSkippedDir(name string) bool {
	switch name {
	case "node_modules", ".git", "dist", ".angular":
		return true
	}
	return false
}
