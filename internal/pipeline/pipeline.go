// Package pipeline orchestrates the per-file extraction flow and fans a
// batch of statements out over a worker pool.
package pipeline

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"

	"bank-statement-extractor/internal/banks"
	"bank-statement-extractor/internal/detect"
	"bank-statement-extractor/internal/export"
	"bank-statement-extractor/internal/extract"
	"bank-statement-extractor/internal/models"
	"bank-statement-extractor/pkg/logger"
)

// Config controls pipeline behavior.
type Config struct {
	Detect *detect.Config
	Banks  *banks.Config
	// BankOverride forces the bank for every file, bypassing detection.
	BankOverride string
	// Output is the requested output path. Its extension selects the
	// writer; the actual per-file name also carries the bank and source
	// file stem.
	Output string
	// Workers caps the pool size. Zero means min(GOMAXPROCS, file count).
	Workers int
}

// Pipeline wires page extraction, bank detection, parsing and export.
type Pipeline struct {
	config   *Config
	detector *detect.Detector
	registry *banks.Registry
	source   extract.PageSource
	log      logger.Logger
}

// New creates a pipeline reading pages from PDF files
func New(config *Config) *Pipeline {
	return NewWithSource(config, extract.NewPDFSource())
}

// NewWithSource creates a pipeline with a custom page source
func NewWithSource(config *Config, source extract.PageSource) *Pipeline {
	return &Pipeline{
		config:   config,
		detector: detect.NewDetector(config.Detect),
		registry: banks.NewRegistry(config.Banks),
		source:   source,
		log:      logger.WithComponent("pipeline"),
	}
}

// FileResult is the outcome of processing one statement file.
type FileResult struct {
	File         string
	Bank         string
	Output       string
	Transactions []models.Transaction
	Report       *banks.Report
	Err          error
}

// ProcessFile runs the full flow for one statement: read pages, detect the
// bank, parse, audit and export. Files that parse to zero transactions
// produce no output file.
func (p *Pipeline) ProcessFile(ctx context.Context, file string) FileResult {
	result := FileResult{File: file}

	select {
	case <-ctx.Done():
		result.Err = ctx.Err()
		return result
	default:
	}

	pages, err := p.source.ReadPages(file)
	if err != nil {
		result.Err = err
		return result
	}

	bank := p.config.BankOverride
	if bank == "" {
		bank = p.detector.Detect(file, pages)
	}
	result.Bank = bank

	parser := p.registry.Resolve(bank)
	transactions, report, err := parser.Parse(ctx, pages)
	result.Report = report
	if err != nil {
		result.Err = err
		return result
	}

	base := filepath.Base(file)
	for i := range transactions {
		transactions[i].SourceFile = base
	}
	result.Transactions = transactions

	p.audit(base, transactions, report)

	if len(transactions) == 0 {
		p.log.WithFields(logger.Fields{"file": base, "bank": bank}).Warn("no transactions extracted, skipping output")
		return result
	}

	output := export.OutputPath(p.config.Output, bank, file)
	writer, err := export.ForPath(output)
	if err != nil {
		result.Err = err
		return result
	}
	if err := writer.Write(output, transactions); err != nil {
		result.Err = err
		return result
	}
	result.Output = output

	return result
}

// ProcessBatch processes files concurrently. One file's failure never aborts
// the batch; cancellation stops dispatching and records the context error
// for files not yet started.
func (p *Pipeline) ProcessBatch(ctx context.Context, files []string) []FileResult {
	results := make([]FileResult, len(files))
	if len(files) == 0 {
		return results
	}

	workers := p.config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(files) {
		workers = len(files)
	}

	tracker := logger.NewProgressTracker(logger.ProgressConfig{
		Operation: "extract statements",
		Total:     int64(len(files)),
		Logger:    p.log,
	})

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.ProcessFile(ctx, files[i])
				tracker.Increment()
			}
		}()
	}

	cancelled := false
	for i := range files {
		select {
		case <-ctx.Done():
			for j := i; j < len(files); j++ {
				results[j] = FileResult{File: files[j], Err: ctx.Err()}
			}
			cancelled = true
		case jobs <- i:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	if cancelled {
		tracker.CompleteWithError(ctx.Err())
	} else {
		tracker.Complete()
	}

	p.summarize(results)
	return results
}

// audit logs post-parse diagnostics so oddities in the extracted data are
// visible without opening the output file.
func (p *Pipeline) audit(file string, transactions []models.Transaction, report *banks.Report) {
	for i := range transactions {
		txn := &transactions[i]
		if err := txn.Validate(); err != nil {
			p.log.WithFields(logger.Fields{"file": file, "date": txn.Date}).WithError(err).Warn("transaction failed validation")
		}
		if !txn.HasAmount() {
			p.log.WithFields(logger.Fields{"file": file, "date": txn.Date, "description": txn.Description}).Warn("transaction carries no amounts")
		}
		if !txn.HasISODate() {
			p.log.WithFields(logger.Fields{"file": file, "date": txn.Date}).Debug("date kept in original form")
		}
	}

	if report != nil {
		for reason, count := range report.SkipCounts() {
			p.log.WithFields(logger.Fields{"file": file, "reason": string(reason), "count": count}).Debug("rows skipped")
		}
	}
}

func (p *Pipeline) summarize(results []FileResult) {
	succeeded := 0
	failed := 0
	total := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			p.log.WithFields(logger.Fields{"file": r.File}).WithError(r.Err).Error("file failed")
			continue
		}
		succeeded++
		total += len(r.Transactions)
		p.log.WithFields(logger.Fields{
			"file":         filepath.Base(r.File),
			"bank":         r.Bank,
			"transactions": len(r.Transactions),
			"output":       r.Output,
		}).Info("file processed")
	}
	p.log.WithFields(logger.Fields{
		"files":        len(results),
		"succeeded":    succeeded,
		"failed":       failed,
		"transactions": total,
	}).Info("batch finished")
}
