// Package pipeline drives one composite build end to end: discover,
// join, render, assemble, plan, resolve, finalize. Per-document problems
// become mismatches and the run continues; structural problems (nothing
// to assemble, TOC capacity, unwritable output) abort the run with no
// partial composite left behind.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/kmandel/bindery/internal/assemble"
	"github.com/kmandel/bindery/internal/catalog"
	"github.com/kmandel/bindery/internal/config"
	"github.com/kmandel/bindery/internal/finalize"
	"github.com/kmandel/bindery/internal/home"
	"github.com/kmandel/bindery/internal/render"
	"github.com/kmandel/bindery/internal/resolve"
	"github.com/kmandel/bindery/internal/scan"
	"github.com/kmandel/bindery/internal/tabular"
	"github.com/kmandel/bindery/internal/tocplan"
)

// ErrNoDocuments is returned when discovery finds nothing to bind.
var ErrNoDocuments = errors.New("no source documents found")

// Options configures one pipeline run.
type Options struct {
	Config *config.Config
	Home   *home.Dir

	// Renderer overrides the default serialized soffice renderer.
	Renderer render.Renderer
	Logger   *slog.Logger
}

// Summary reports what a completed run produced.
type Summary struct {
	RunID      string
	Discovered int
	Assembled  int
	TOCPages   int
	TotalPages int
	OutputPath string
	ReportPath string
	Mismatches []catalog.Mismatch
}

// Run executes the pipeline once.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("pipeline requires a configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Home == nil {
		return nil, errors.New("pipeline requires a home directory")
	}

	runID := home.NewRunID()
	if err := opts.Home.EnsureRunDir(runID); err != nil {
		return nil, err
	}
	logger = logger.With("run_id", runID)

	sum, err := run(ctx, opts, cfg, logger, runID)

	if cfg.KeepIntermediates {
		logger.Info("keeping intermediates", "dir", opts.Home.RunDir(runID))
	} else if rmErr := opts.Home.RemoveRun(runID); rmErr != nil {
		logger.Warn("failed to remove run scratch", "error", rmErr)
	}
	return sum, err
}

func run(ctx context.Context, opts Options, cfg *config.Config, logger *slog.Logger, runID string) (*Summary, error) {
	records, err := scan.Discover(cfg.Input.Dir, logger)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoDocuments
	}

	merged, mismatches, err := join(records, cfg, logger)
	if err != nil {
		return nil, err
	}

	renderer := opts.Renderer
	if renderer == nil {
		soffice := render.NewSoffice(cfg.Render.Binary, time.Duration(cfg.Render.TimeoutSeconds)*time.Second)
		renderer = render.NewSerialized(soffice, int(cfg.Render.MaxRetries))
	}

	renderedDir := opts.Home.RenderedDir(runID)
	survivors, renderFailures, err := renderAll(ctx, renderer, merged, renderedDir, logger)
	if err != nil {
		return nil, err
	}
	mismatches = append(mismatches, renderFailures...)
	if len(survivors) == 0 {
		return nil, errors.New("no documents rendered successfully")
	}

	contentPath := filepath.Join(opts.Home.RunDir(runID), "content.pdf")
	asm, err := assemble.Assemble(survivors, assemble.DirLookup(renderedDir), contentPath, logger)
	if err != nil {
		return nil, err
	}
	mismatches = append(mismatches, asm.Failed...)

	// Plan only what actually assembled, so sections whose documents all
	// failed never emit a header.
	var planned []catalog.MergedRecord
	for _, r := range survivors {
		if _, ok := asm.PageMap.Start(r.ID); ok {
			planned = append(planned, r)
		}
	}

	draft, err := tocplan.Plan(planned, layoutFrom(cfg.TOC))
	if err != nil {
		return nil, err
	}
	comp, err := resolve.Resolve(draft, asm.PageMap)
	if err != nil {
		return nil, err
	}

	err = finalize.Finalize(finalize.Inputs{
		Draft:       draft,
		Composite:   comp,
		ContentPath: contentPath,
		OutputPath:  cfg.Output.File,
		ReportPath:  cfg.Output.ReportFile,
		Mismatches:  mismatches,
		ScratchDir:  opts.Home.RunDir(runID),
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	return &Summary{
		RunID:      runID,
		Discovered: len(records),
		Assembled:  len(planned),
		TOCPages:   comp.TOCPages,
		TotalPages: comp.TotalPages,
		OutputPath: cfg.Output.File,
		ReportPath: cfg.Output.ReportFile,
		Mismatches: mismatches,
	}, nil
}

// join loads the section sources and merges them with the discovered
// records. In auto mode, ids rejected by prefix assignment are removed
// before the merge so each id yields exactly one mismatch.
func join(records []catalog.SourceRecord, cfg *config.Config, logger *slog.Logger) ([]catalog.MergedRecord, []catalog.Mismatch, error) {
	var (
		mapping    []catalog.SectionMapping
		categories []catalog.SectionCategory
		pre        []catalog.Mismatch
	)

	if cfg.Sections.AutoAssign {
		mapping, pre = catalog.AutoMapping(records)
		categories = catalog.DefaultCategories()
		if len(pre) > 0 {
			rejected := make(map[string]bool, len(pre))
			for _, m := range pre {
				rejected[m.ID] = true
			}
			kept := records[:0:0]
			for _, r := range records {
				if !rejected[catalog.NormalizeID(r.ID)] && !rejected[r.ID] {
					kept = append(kept, r)
				}
			}
			records = kept
		}
	} else {
		var err error
		mapping, err = tabular.LoadSectionMappings(cfg.Sections.MappingFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load section mapping: %w", err)
		}
		categories, err = tabular.LoadSectionCategories(cfg.Sections.CategoriesFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load section categories: %w", err)
		}
	}

	merged, mismatches := catalog.Merge(records, mapping, categories)
	logger.Info("joined sections", "merged", len(merged), "mismatches", len(pre)+len(mismatches))
	return merged, append(pre, mismatches...), nil
}

// renderAll converts every merged record to PDF. A failed document is
// dropped and reported; a canceled context aborts the run.
func renderAll(ctx context.Context, renderer render.Renderer, merged []catalog.MergedRecord, renderedDir string, logger *slog.Logger) ([]catalog.MergedRecord, []catalog.Mismatch, error) {
	var survivors []catalog.MergedRecord
	var failures []catalog.Mismatch

	for _, r := range merged {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		dst := filepath.Join(renderedDir, r.ID+".pdf")
		pages, err := renderer.Render(ctx, r.Path, dst)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			logger.Warn("render failed", "id", r.ID, "error", err)
			failures = append(failures, catalog.Mismatch{
				ID:        r.ID,
				Reason:    catalog.ReasonRenderFailed,
				PresentIn: []string{catalog.SourceDocuments},
			})
			continue
		}
		logger.Debug("rendered document", "id", r.ID, "pages", pages)
		survivors = append(survivors, r)
	}

	logger.Info("rendered documents", "ok", len(survivors), "failed", len(failures))
	return survivors, failures, nil
}

// layoutFrom maps TOC configuration onto the layout defaults.
func layoutFrom(t config.TOCCfg) tocplan.Layout {
	l := tocplan.DefaultLayout()
	if t.Title != "" {
		l.Title = t.Title
	}
	if t.FontFamily != "" {
		l.FontFamily = t.FontFamily
	}
	if t.FontSize > 0 {
		l.FontSize = t.FontSize
	}
	if t.HeaderFontSize > 0 {
		l.HeaderFontSize = t.HeaderFontSize
	}
	if t.TitleFontSize > 0 {
		l.TitleFontSize = t.TitleFontSize
	}
	if t.Margin > 0 {
		l.Margin = t.Margin
	}
	if t.LineHeight > 0 {
		l.LineHeight = t.LineHeight
	}
	if t.PlaceholderDigits > 0 {
		l.PlaceholderDigits = t.PlaceholderDigits
	}
	return l
}
