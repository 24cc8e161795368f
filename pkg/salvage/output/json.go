package output

import (
	"bytes"
	"encoding/json"
	"time"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Candidates []jsonCandidate `json:"candidates"`
	Stats      jsonStats       `json:"stats"`
	Meta       jsonMeta        `json:"meta"`
}

// jsonCandidate represents a candidate in JSON output.
type jsonCandidate struct {
	Time         time.Time `json:"time"`
	Timestamp    int64     `json:"timestamp_ms"`
	Size         int64     `json:"size"`
	SizeHuman    string    `json:"size_human"`
	Basename     string    `json:"basename"`
	Resource     string    `json:"resource"`
	BlobPath     string    `json:"blob_path"`
	FromManifest bool      `json:"from_manifest"`
}

// jsonStats represents scan statistics in JSON output.
type jsonStats struct {
	RootsScanned    int    `json:"roots_scanned"`
	FoldersScanned  int    `json:"folders_scanned"`
	EntriesExamined int    `json:"entries_examined"`
	Skipped         int    `json:"skipped"`
	CacheHits       int    `json:"cache_hits"`
	Duration        string `json:"duration"`
}

// jsonMeta represents metadata in JSON output.
type jsonMeta struct {
	Roots       []string `json:"roots"`
	OutputDir   string   `json:"output_dir,omitempty"`
	Copied      int      `json:"copied"`
	Matches     int      `json:"matches"`
	TotalSize   int64    `json:"total_size"`
	Interrupted bool     `json:"interrupted"`
}

// JSONFormatter formats the listing as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, l *Listing) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(f.buildOutput(l))
}

// buildOutput converts a Listing to the JSON output structure.
func (f *JSONFormatter) buildOutput(l *Listing) jsonOutput {
	candidates := make([]jsonCandidate, len(l.Rows))
	for i := range l.Rows {
		candidates[i] = toJSONCandidate(&l.Rows[i])
	}

	return jsonOutput{
		Candidates: candidates,
		Stats: jsonStats{
			RootsScanned:    l.Stats.RootsScanned,
			FoldersScanned:  l.Stats.FoldersScanned,
			EntriesExamined: l.Stats.EntriesExamined,
			Skipped:         l.Stats.Skipped,
			CacheHits:       l.Stats.CacheHits,
			Duration:        formatDurationString(l.Stats.Duration),
		},
		Meta: jsonMeta{
			Roots:       l.Roots,
			OutputDir:   l.OutputDir,
			Copied:      l.Copied,
			Matches:     len(l.Rows),
			TotalSize:   l.TotalSize(),
			Interrupted: l.Interrupted,
		},
	}
}

// toJSONCandidate converts a display row to its JSON form.
func toJSONCandidate(r *Row) jsonCandidate {
	return jsonCandidate{
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

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter formats the listing as newline-delimited JSON, one compact
// candidate object per line. Suitable for streaming processing with jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, l *Listing) error {
	for i := range l.Rows {
		data, err := json.Marshal(toJSONCandidate(&l.Rows[i]))
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
