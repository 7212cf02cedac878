package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"examples-db/internal/catalog"
	"examples-db/internal/compare"
	"examples-db/internal/config"
	"examples-db/internal/database"
	"examples-db/internal/export"
	"examples-db/internal/metadata"
	"examples-db/internal/progress"
	"examples-db/internal/tree"
	"examples-db/internal/walker"
)

// AbortError carries every data-quality problem found by a stage. Nothing
// is written when a run aborts.
type AbortError struct {
	Stage  string
	Errors []error
}

func (e *AbortError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d error(s), aborting", e.Stage, len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *AbortError) Unwrap() []error {
	return e.Errors
}

type Options struct {
	Config *config.Config
	Logger *zap.Logger
	// ShowProgress draws a progress bar on stdout while enhancing, when
	// stdout is a terminal.
	ShowProgress bool
	// SQLitePath, when set, also exports the catalog to a SQLite file.
	SQLitePath string
	Engine     catalog.ProjectEngine
}

type Report struct {
	Examples int
	Tags     int
	Diff     *compare.Result
}

func (o *Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Build reads the examples directory and produces the catalog without
// touching the database directory.
func Build(ctx context.Context, opts Options) (*database.Catalog, error) {
	cfg := opts.Config
	log := opts.logger()

	log.Info("reading examples", zap.String("dir", cfg.ExamplesDir))
	walked, err := walker.Walk(cfg.ExamplesDir, walker.Options{
		Extensions: cfg.Extensions,
		Exclude:    cfg.Exclude,
		IgnoreFile: cfg.IgnoreFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read examples: %w", err)
	}
	if len(walked.Errors) > 0 {
		readErrors := make([]error, 0, len(walked.Errors))
		for _, err := range walked.Errors {
			readErr := &metadata.Error{Kind: metadata.UnreadableFile, Err: err}
			var entryErr *walker.EntryError
			if errors.As(err, &entryErr) {
				readErr.Path = entryErr.Path
				readErr.Err = entryErr.Err
			}
			readErrors = append(readErrors, readErr)
		}
		return nil, abort(log, "read", readErrors)
	}

	filtered := tree.Filter(walked.Root, tree.FilterOptions{MagicIgnoreFiles: cfg.MagicIgnoreFiles})
	if filtered == nil {
		return nil, fmt.Errorf("no examples left in %s after filtering ignored folders", cfg.ExamplesDir)
	}
	log.Info("file tree ready",
		zap.Int("directories", tree.CountDirectories(filtered)),
		zap.Int("files", tree.CountFiles(filtered)))

	var bar *progress.Bar
	enhancerOpts := metadata.Options{
		TagFile:         cfg.TagFile,
		LicenseFile:     cfg.LicenseFile,
		SampleImage:     cfg.SampleImage,
		IgnoredTagNames: cfg.IgnoredTagNames,
		Concurrency:     cfg.Concurrency,
		Logger:          log,
	}
	if opts.ShowProgress {
		bar = progress.ForStdout(int64(tree.CountDirectories(filtered)))
		enhancerOpts.OnDirectory = bar.DirectoryDone
	}

	enhanced, err := metadata.NewEnhancer(enhancerOpts).Enhance(ctx, filtered, metadata.Context{
		Tags:        []string{},
		License:     cfg.DefaultLicense,
		Authors:     []string{},
		AllAuthors:  entries(cfg.Authors),
		AllLicenses: entries(cfg.Licenses),
	})
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to enhance file tree: %w", err)
	}
	if len(enhanced.Errors) > 0 {
		return nil, abort(log, "parse", enhanced.Errors)
	}

	extracted := catalog.Extract(metadata.Flatten(enhanced.Tree), catalog.Options{
		ResourcesBaseURL: cfg.ResourcesBaseURL,
		ReadmeFile:       cfg.ReadmeFile,
		PreviewImages:    cfg.PreviewImages,
		ExtensionTags:    cfg.ExtensionTags,
		Engine:           opts.Engine,
		Logger:           log,
	})
	if len(extracted.Errors) > 0 {
		return nil, abort(log, "extract", extracted.Errors)
	}

	log.Info("catalog built",
		zap.Int("examples", len(extracted.Examples)),
		zap.Int("tags", enhanced.AllTags.Len()))

	return &database.Catalog{
		Examples: extracted.Examples,
		Filters:  catalog.BuildFilters(enhanced, extracted.Examples, cfg.DefaultTags),
	}, nil
}

// Run builds the catalog and writes it to the database directory.
func Run(ctx context.Context, opts Options) (*Report, error) {
	c, err := Build(ctx, opts)
	if err != nil {
		return nil, err
	}

	writer := database.NewWriter(opts.Config.DatabaseDir, opts.Config.Concurrency, opts.logger())
	diff, err := writer.Write(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to write database: %w", err)
	}

	if opts.SQLitePath != "" {
		if err := export.SQLite(ctx, opts.SQLitePath, c.Examples, c.Filters); err != nil {
			return nil, fmt.Errorf("failed to export to SQLite: %w", err)
		}
		opts.logger().Info("SQLite export written", zap.String("path", filepath.Clean(opts.SQLitePath)))
	}

	return &Report{Examples: len(c.Examples), Tags: len(c.Filters.AllTags), Diff: diff}, nil
}

// Diff builds the catalog and compares it with the database on disk.
func Diff(ctx context.Context, opts Options) (*compare.Result, error) {
	c, err := Build(ctx, opts)
	if err != nil {
		return nil, err
	}
	writer := database.NewWriter(opts.Config.DatabaseDir, opts.Config.Concurrency, opts.logger())
	return writer.Diff(ctx, c)
}

func abort(log *zap.Logger, stage string, errs []error) error {
	for _, err := range errs {
		var metaErr *metadata.Error
		if errors.As(err, &metaErr) {
			log.Warn("example error",
				zap.String("stage", stage),
				zap.String("kind", string(metaErr.Kind)),
				zap.String("path", metaErr.Path),
				zap.Error(metaErr.Err))
			continue
		}
		log.Warn("example error", zap.String("stage", stage), zap.Error(err))
	}
	return &AbortError{Stage: stage, Errors: errs}
}

func entries(tokens []config.TokenEntry) []metadata.Entry {
	out := make([]metadata.Entry, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, metadata.Entry{Name: t.Name, SearchToken: t.SearchToken})
	}
	return out
}
