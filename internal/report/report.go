// Package report records what a build did: inputs, per-stage timings, page and
// link counts, diagnostics and the final outcome.
package report

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/ssio/internal/depgraph"
)

// Outcome is the final state of a build.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeWarning Outcome = "warning"
	OutcomeFailed  Outcome = "failed"
)

// StageName identifies a build stage.
type StageName string

const (
	StageTemplate    StageName = "template"
	StagePreprocess  StageName = "preprocess"
	StageResolve     StageName = "resolve"
	StagePostprocess StageName = "postprocess"
	StageLink        StageName = "link"
)

// Inputs describes what the build was asked to do.
type Inputs struct {
	ProjectRoot string   `json:"project_root"`
	OutputDir   string   `json:"output_dir"`
	Template    string   `json:"template,omitempty"`
	Pages       []string `json:"pages"`
	Assets      []string `json:"assets,omitempty"`
	Bundles     []string `json:"bundles,omitempty"`
	PrettyPrint bool     `json:"pretty_print"`
}

// PageCounts tallies page results.
type PageCounts struct {
	Total      int `json:"total"`
	Written    int `json:"written"`
	Unchanged  int `json:"unchanged"`
	Failed     int `json:"failed"`
	Duplicates int `json:"duplicates"`
}

// LinkCounts tallies symlink results.
type LinkCounts struct {
	// Assets is the number of asset rules the resolver knew, declared and derived.
	Assets    int `json:"assets"`
	Created   int `json:"created"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Bundles   int `json:"bundles"`
}

// Diagnostic is the serialized form of a depgraph.Diagnostic.
type Diagnostic struct {
	Severity string `json:"severity"`
	Source   string `json:"source"`
	Target   string `json:"target,omitempty"`
	Message  string `json:"message"`
}

// Report is a complete record of one build.
type Report struct {
	ID             string                  `json:"id"`
	Start          time.Time               `json:"start"`
	End            time.Time               `json:"end"`
	Duration       int64                   `json:"duration_ms"`
	Inputs         Inputs                  `json:"inputs"`
	InputsHash     string                  `json:"inputs_hash"`
	StageDurations map[StageName]int64     `json:"stage_durations_ms"`
	Pages          PageCounts              `json:"pages"`
	Links          LinkCounts              `json:"links"`
	Diagnostics    []Diagnostic            `json:"diagnostics"`
	Errors         []string                `json:"errors"`
	Outcome        Outcome                 `json:"outcome"`
	stageStart     map[StageName]time.Time
}

// New starts a report with a fresh id.
func New(inputs Inputs) *Report {
	return &Report{
		ID:             uuid.NewString(),
		Start:          time.Now(),
		Inputs:         inputs,
		StageDurations: map[StageName]int64{},
		Diagnostics:    []Diagnostic{},
		Errors:         []string{},
		stageStart:     map[StageName]time.Time{},
	}
}

// BeginStage marks the start of stage.
func (r *Report) BeginStage(stage StageName) {
	if r.stageStart == nil {
		r.stageStart = map[StageName]time.Time{}
	}
	r.stageStart[stage] = time.Now()
}

// EndStage records the time since BeginStage and returns it.
func (r *Report) EndStage(stage StageName) time.Duration {
	start, ok := r.stageStart[stage]
	if !ok {
		return 0
	}
	d := time.Since(start)
	if r.StageDurations == nil {
		r.StageDurations = map[StageName]int64{}
	}
	r.StageDurations[stage] = d.Milliseconds()
	return d
}

// AddDiagnostics appends diagnostics in the order given.
func (r *Report) AddDiagnostics(diags []depgraph.Diagnostic) {
	for _, d := range diags {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{
			Severity: string(d.Severity),
			Source:   d.Source,
			Target:   d.Target,
			Message:  d.Message,
		})
	}
}

// AddError records a failure that affected part of the build.
func (r *Report) AddError(err error) {
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
	}
}

// Finish stamps the end time and derives the outcome.
func (r *Report) Finish() {
	r.End = time.Now()
	r.Duration = r.End.Sub(r.Start).Milliseconds()
	r.InputsHash, _ = r.Hash()
	switch {
	case len(r.Errors) > 0 || r.Pages.Failed > 0:
		r.Outcome = OutcomeFailed
	case len(r.Diagnostics) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Summary returns a single-line human readable summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("pages=%d written=%d unchanged=%d failed=%d links=%d diagnostics=%d duration=%s outcome=%s",
		r.Pages.Total, r.Pages.Written, r.Pages.Unchanged, r.Pages.Failed,
		r.Links.Created+r.Links.Unchanged, len(r.Diagnostics),
		time.Duration(r.Duration)*time.Millisecond, r.Outcome)
}

// Hash is a deterministic digest of the inputs, usable to tell whether two
// builds were asked to do the same thing.
func (r *Report) Hash() (string, error) {
	in := r.Inputs
	in.Pages = slices.Sorted(slices.Values(in.Pages))
	in.Assets = slices.Sorted(slices.Values(in.Assets))
	in.Bundles = slices.Sorted(slices.Values(in.Bundles))
	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// ToJSON serializes the report.
func (r *Report) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// FromJSON reads a report written by ToJSON.
func FromJSON(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &r, nil
}

// Persist writes the report to path atomically.
func (r *Report) Persist(path string) error {
	data, err := r.ToJSON()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("ensure report dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename report: %w", err)
	}
	return nil
}
