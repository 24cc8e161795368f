package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tkrisch/salvage/pkg/salvage/types"
)

func testResult() *types.LocateResult {
	ts := time.Date(2024, 5, 3, 19, 35, 0, 0, time.Local)
	return &types.LocateResult{
		Candidates: []types.Candidate{
			{
				Timestamp:    ts.UnixMilli(),
				Resource:     "file:///c%3A/work/Records.tsx",
				BlobPath:     "/h/-abc/keep.tsx",
				Size:         599_252,
				FromManifest: true,
			},
			{
				Timestamp:    ts.Add(-time.Hour).UnixMilli(),
				Resource:     "file:///c%3A/work/Records.tsx",
				BlobPath:     "/h/-abc/older.tsx",
				Size:         598_100,
				FromManifest: true,
			},
		},
		RootsScanned:    1,
		FoldersScanned:  42,
		EntriesExamined: 310,
		Skips:           []types.SkipReason{{Path: "/h/-bad", Reason: "bad-manifest"}},
		CacheHits:       12,
		Elapsed:         1500 * time.Millisecond,
	}
}

func TestNewListing(t *testing.T) {
	l := NewListing(testResult(), []string{"/h"})

	require.Len(t, l.Rows, 2)
	assert.Equal(t, "0503_193500", l.Rows[0].Stamp)
	assert.Equal(t, "Records.tsx", l.Rows[0].Basename)
	assert.Equal(t, int64(599_252), l.Rows[0].Size)
	assert.Equal(t, 42, l.Stats.FoldersScanned)
	assert.Equal(t, 1, l.Stats.Skipped)
	assert.Equal(t, 12, l.Stats.CacheHits)
	assert.Equal(t, int64(599_252+598_100), l.TotalSize())
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"pretty", "plain", "json", "jsonl", "yaml"} {
		f, err := Get(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := Get("csv")
	assert.Error(t, err)

	names := Available()
	assert.Contains(t, names, "pretty")
	assert.True(t, sortedStrings(names))
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			return false
		}
	}
	return true
}

func TestPlainFormat(t *testing.T) {
	l := NewListing(testResult(), []string{"/h"})

	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, l))
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "TIME")
	assert.Contains(t, lines[1], "0503_193500")
	assert.Contains(t, lines[1], "Records.tsx")
	// No ANSI escapes in plain output.
	assert.NotContains(t, out, "\x1b[")
}

func TestJSONFormat(t *testing.T) {
	l := NewListing(testResult(), []string{"/h"})
	l.OutputDir = "/out/RECOVERED"
	l.Copied = 2

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, l))

	var parsed struct {
		Candidates []struct {
			Basename    string `json:"basename"`
			TimestampMS int64  `json:"timestamp_ms"`
			Size        int64  `json:"size"`
		} `json:"candidates"`
		Stats struct {
			FoldersScanned int `json:"folders_scanned"`
			Skipped        int `json:"skipped"`
		} `json:"stats"`
		Meta struct {
			OutputDir string `json:"output_dir"`
			Copied    int    `json:"copied"`
			Matches   int    `json:"matches"`
			TotalSize int64  `json:"total_size"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	require.Len(t, parsed.Candidates, 2)
	assert.Equal(t, "Records.tsx", parsed.Candidates[0].Basename)
	assert.Equal(t, int64(599_252), parsed.Candidates[0].Size)
	assert.Equal(t, 42, parsed.Stats.FoldersScanned)
	assert.Equal(t, "/out/RECOVERED", parsed.Meta.OutputDir)
	assert.Equal(t, 2, parsed.Meta.Copied)
	assert.Equal(t, 2, parsed.Meta.Matches)
}

func TestJSONLFormat(t *testing.T) {
	l := NewListing(testResult(), []string{"/h"})

	var buf bytes.Buffer
	require.NoError(t, (&JSONLFormatter{}).Format(&buf, l))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	for _, line := range lines {
		var obj map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &obj))
		assert.Equal(t, "Records.tsx", obj["basename"])
	}
}

func TestYAMLFormat(t *testing.T) {
	l := NewListing(testResult(), []string{"/h"})

	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, l))

	var parsed struct {
		Candidates []struct {
			Basename string `yaml:"basename"`
			Size     int64  `yaml:"size"`
		} `yaml:"candidates"`
		Meta struct {
			Matches int `yaml:"matches"`
		} `yaml:"meta"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &parsed))

	require.Len(t, parsed.Candidates, 2)
	assert.Equal(t, "Records.tsx", parsed.Candidates[0].Basename)
	assert.Equal(t, 2, parsed.Meta.Matches)
}

func TestPrettyFormat(t *testing.T) {
	l := NewListing(testResult(), []string{"/h"})

	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, l))
	out := buf.String()

	assert.Contains(t, out, "Records.tsx")
	assert.Contains(t, out, "05-03 19:35:00")
	assert.Contains(t, out, "Matches:")
}

func TestPrettyFormatEmpty(t *testing.T) {
	l := NewListing(&types.LocateResult{}, []string{"/h"})

	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, l))
	assert.NotEmpty(t, buf.String())
}
