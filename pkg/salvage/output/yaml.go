package output

import (
	"bytes"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlOutput represents the full YAML output structure.
type yamlOutput struct {
	Candidates []yamlCandidate `yaml:"candidates"`
	Stats      yamlStats       `yaml:"stats"`
	Meta       yamlMeta        `yaml:"meta"`
}

// yamlCandidate represents a candidate in YAML output.
type yamlCandidate struct {
	Time         time.Time `yaml:"time"`
	Timestamp    int64     `yaml:"timestamp_ms"`
	Size         int64     `yaml:"size"`
	SizeHuman    string    `yaml:"size_human"`
	Basename     string    `yaml:"basename"`
	Resource     string    `yaml:"resource"`
	BlobPath     string    `yaml:"blob_path"`
	FromManifest bool      `yaml:"from_manifest"`
}

// yamlStats represents scan statistics in YAML output.
type yamlStats struct {
	RootsScanned    int    `yaml:"roots_scanned"`
	FoldersScanned  int    `yaml:"folders_scanned"`
	EntriesExamined int    `yaml:"entries_examined"`
	Skipped         int    `yaml:"skipped"`
	CacheHits       int    `yaml:"cache_hits"`
	Duration        string `yaml:"duration"`
}

// yamlMeta represents metadata in YAML output.
type yamlMeta struct {
	Roots       []string `yaml:"roots"`
	OutputDir   string   `yaml:"output_dir,omitempty"`
	Copied      int      `yaml:"copied"`
	Matches     int      `yaml:"matches"`
	TotalSize   int64    `yaml:"total_size"`
	Interrupted bool     `yaml:"interrupted"`
}

// YAMLFormatter formats the listing as YAML. It produces the same
// structure as JSONFormatter but in YAML format.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, l *Listing) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(f.buildOutput(l)); err != nil {
		return err
	}
	return encoder.Close()
}

// buildOutput converts a Listing to the YAML output structure.
func (f *YAMLFormatter) buildOutput(l *Listing) yamlOutput {
	candidates := make([]yamlCandidate, len(l.Rows))
	for i := range l.Rows {
		r := &l.Rows[i]
		candidates[i] = yamlCandidate{
			Time:         r.Time,
			Timestamp:    r.Time.UnixMilli(),
			Size:         r.Size,
			SizeHuman:    r.SizeHuman,
			Basename:     r.Basename,
			Resource:     r.Resource,
			BlobPath:     r.BlobPath,
			FromManifest: r.FromManifest,
		}
	}

	return yamlOutput{
		Candidates: candidates,
		Stats: yamlStats{
			RootsScanned:    l.Stats.RootsScanned,
			FoldersScanned:  l.Stats.FoldersScanned,
			EntriesExamined: l.Stats.EntriesExamined,
			Skipped:         l.Stats.Skipped,
			CacheHits:       l.Stats.CacheHits,
			Duration:        formatDurationString(l.Stats.Duration),
		},
		Meta: yamlMeta{
			Roots:       l.Roots,
			OutputDir:   l.OutputDir,
			Copied:      l.Copied,
			Matches:     len(l.Rows),
			TotalSize:   l.TotalSize(),
			Interrupted: l.Interrupted,
		},
	}
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
