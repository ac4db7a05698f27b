// Package pipeline assembles the report artifacts written at the end of a
// scoring run: markdown report, CSV exports, sufficiency verdict, and a
// checksum manifest for reproducibility.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/reporting"
	"equity-noise-lab/internal/storage"
)

// GeneratorVersion tags report artifacts for reproducibility.
const GeneratorVersion = "1.0.0"

// Output file names written by ReportPipeline.Run.
const (
	ReportFile      = "REPORT.md"
	SeriesCSVFile   = "noise_series.csv"
	ValidationFile  = "validation.csv"
	SufficiencyFile = "SUFFICIENCY.md"
	ManifestFile    = "MANIFEST.txt"
)

// ReportPipeline orchestrates report generation and artifact output.
type ReportPipeline struct {
	reportGen          *reporting.Generator
	sufficiencyChecker *SufficiencyChecker
	noiseSeriesStore   storage.NoiseSeriesStore
	tickers            []string
	outputDir          string
	clock              func() time.Time
}

// NewReportPipeline creates a new pipeline writing artifacts to outputDir.
func NewReportPipeline(
	evidenceStore storage.EvidenceStore,
	shortInterestStore storage.ShortInterestStore,
	noiseSeriesStore storage.NoiseSeriesStore,
	outputDir string,
) *ReportPipeline {
	return &ReportPipeline{
		reportGen:        reporting.NewGenerator(evidenceStore, shortInterestStore, noiseSeriesStore),
		noiseSeriesStore: noiseSeriesStore,
		tickers:          domain.FocusTickers,
		outputDir:        outputDir,
		clock:            func() time.Time { return time.Now().UTC() },
	}
}

// WithSufficiencyChecker adds a sufficiency checker to the pipeline.
func (p *ReportPipeline) WithSufficiencyChecker(checker *SufficiencyChecker) *ReportPipeline {
	p.sufficiencyChecker = checker
	return p
}

// WithClock sets a custom clock function for deterministic output.
func (p *ReportPipeline) WithClock(clock func() time.Time) *ReportPipeline {
	p.clock = clock
	p.reportGen = p.reportGen.WithClock(clock)
	return p
}

// WithTickers overrides the default ticker list.
func (p *ReportPipeline) WithTickers(tickers []string) *ReportPipeline {
	p.tickers = tickers
	p.reportGen = p.reportGen.WithTickers(tickers)
	if p.sufficiencyChecker != nil {
		p.sufficiencyChecker = p.sufficiencyChecker.WithTickers(tickers)
	}
	return p
}

// Run executes the pipeline and writes output files:
//   - REPORT.md
//   - noise_series.csv
//   - validation.csv
//   - SUFFICIENCY.md (when a checker is configured)
//   - MANIFEST.txt
func (p *ReportPipeline) Run(ctx context.Context) error {
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return err
	}

	var written []string

	// 1. Sufficiency check first: its verdict heads the artifact set.
	if p.sufficiencyChecker != nil {
		suffResult, err := p.sufficiencyChecker.Check(ctx)
		if err != nil {
			return err
		}
		if err := p.writeFile(SufficiencyFile, renderSufficiencyMarkdown(suffResult, p.clock())); err != nil {
			return err
		}
		written = append(written, SufficiencyFile)
	}

	// 2. Generate and write the report.
	report, err := p.reportGen.Generate(ctx)
	if err != nil {
		return err
	}
	if err := p.writeFile(ReportFile, reporting.RenderMarkdown(report)); err != nil {
		return err
	}
	written = append(written, ReportFile)

	// 3. Export the full scored series.
	var allPoints []*domain.NoiseSeriesPoint
	for _, ticker := range p.tickers {
		points, err := p.noiseSeriesStore.GetByTicker(ctx, ticker)
		if err != nil {
			return err
		}
		allPoints = append(allPoints, points...)
	}
	if err := p.writeFile(SeriesCSVFile, reporting.RenderSeriesCSV(allPoints)); err != nil {
		return err
	}
	written = append(written, SeriesCSVFile)

	// 4. Export validation rows.
	if err := p.writeFile(ValidationFile, reporting.RenderValidationCSV(report.ValidationRows)); err != nil {
		return err
	}
	written = append(written, ValidationFile)

	// 5. Checksum manifest over everything written above.
	manifest, err := p.buildManifest(written)
	if err != nil {
		return err
	}
	return p.writeFile(ManifestFile, manifest)
}

func (p *ReportPipeline) writeFile(name, content string) error {
	return os.WriteFile(filepath.Join(p.outputDir, name), []byte(content), 0644)
}

// buildManifest lists sha256 checksums of the written artifacts so a rerun
// over the same stored data can be byte-compared.
func (p *ReportPipeline) buildManifest(files []string) (string, error) {
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("generator_version: %s\n", GeneratorVersion))
	sb.WriteString(fmt.Sprintf("generated_at: %s\n\n", p.clock().Format(time.RFC3339)))
	for _, name := range sorted {
		data, err := os.ReadFile(filepath.Join(p.outputDir, name))
		if err != nil {
			return "", err
		}
		sum := sha256.Sum256(data)
		sb.WriteString(fmt.Sprintf("%s  %s\n", hex.EncodeToString(sum[:]), name))
	}
	return sb.String(), nil
}

// renderSufficiencyMarkdown renders the sufficiency verdict as Markdown.
func renderSufficiencyMarkdown(result *SufficiencyResult, generatedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Data Sufficiency\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", generatedAt.Format(time.RFC3339)))

	sb.WriteString("| Check | Threshold | Actual | Status |\n")
	sb.WriteString("|-------|-----------|--------|--------|\n")
	for _, check := range result.Checks {
		status := "FAIL"
		if check.Pass {
			status = "PASS"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			check.Name, check.Threshold, check.Actual, status))
	}
	sb.WriteString("\n")

	if result.AllPass {
		sb.WriteString("**All checks passed.**\n")
	} else {
		sb.WriteString("**Some checks failed.** Correlations in this report are indicative only.\n")
	}

	if len(result.Errors) > 0 {
		sb.WriteString("\n## Integrity Errors\n\n")
		for _, e := range result.Errors {
			sb.WriteString(fmt.Sprintf("- %s\n", e))
		}
	}

	return sb.String()
}
