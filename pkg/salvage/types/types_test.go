package types

import (
	"testing"
	"time"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		// Plain byte values
		{name: "plain bytes", input: "599252", want: 599252, wantErr: false},
		{name: "zero bytes", input: "0", want: 0, wantErr: false},
		{name: "bytes with B suffix", input: "512B", want: 512, wantErr: false},

		// Kilobytes
		{name: "kilobytes uppercase", input: "550K", want: 550 * 1024, wantErr: false},
		{name: "kilobytes lowercase", input: "550k", want: 550 * 1024, wantErr: false},
		{name: "kilobytes with B", input: "550KB", want: 550 * 1024, wantErr: false},
		{name: "kilobytes with iB", input: "550KiB", want: 550 * 1024, wantErr: false},

		// Megabytes
		{name: "megabytes", input: "50M", want: 50 * 1024 * 1024, wantErr: false},
		{name: "megabytes with B", input: "50MB", want: 50 * 1024 * 1024, wantErr: false},

		// Gigabytes
		{name: "gigabytes", input: "2G", want: 2 * 1024 * 1024 * 1024, wantErr: false},
		{name: "gigabytes with iB", input: "2GiB", want: 2 * 1024 * 1024 * 1024, wantErr: false},

		// Whitespace handling
		{name: "leading whitespace", input: "  100M", want: 100 * 1024 * 1024, wantErr: false},
		{name: "trailing whitespace", input: "100M  ", want: 100 * 1024 * 1024, wantErr: false},

		// Decimal values
		{name: "decimal values truncated", input: "1.5G", want: 1610612736, wantErr: false},

		// Error cases
		{name: "empty string", input: "", wantErr: true},
		{name: "only whitespace", input: "   ", wantErr: true},
		{name: "invalid suffix", input: "100X", wantErr: true},
		{name: "negative value", input: "-100M", wantErr: true},
		{name: "letters only", input: "abc", wantErr: true},
		{name: "suffix only", input: "M", wantErr: true},
		{name: "invalid format", input: "100M100", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasename(t *testing.T) {
	tests := []struct {
		name     string
		resource string
		want     string
	}{
		{name: "plain path", resource: "/home/user/work/app.py", want: "app.py"},
		{name: "file URI", resource: "file:///home/user/work/Records.tsx", want: "Records.tsx"},
		{name: "windows drive escaped", resource: "file:///c%3A/work/Records.tsx", want: "Records.tsx"},
		{name: "escaped space", resource: "file:///tmp/my%20notes.md", want: "my notes.md"},
		{name: "backslash path", resource: `c:\work\Records.tsx`, want: "Records.tsx"},
		{name: "vscode remote URI", resource: "vscode-remote://ssh/home/user/main.go", want: "main.go"},
		{name: "bare name", resource: "notes.md", want: "notes.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Candidate{Resource: tt.resource}
			if got := c.Basename(); got != tt.want {
				t.Errorf("Basename(%q) = %q, want %q", tt.resource, got, tt.want)
			}
		})
	}
}

func TestCandidateTime(t *testing.T) {
	ms := int64(1714764900000)
	c := Candidate{Timestamp: ms}

	if got := c.Time().UnixMilli(); got != ms {
		t.Errorf("Time().UnixMilli() = %d, want %d", got, ms)
	}
}

func TestFormatStamp(t *testing.T) {
	// 2024-05-03 19:35:00 local
	ts := time.Date(2024, 5, 3, 19, 35, 0, 0, time.Local)

	got := FormatStamp(ts.UnixMilli())
	want := "0503_193500"
	if got != want {
		t.Errorf("FormatStamp() = %q, want %q", got, want)
	}
}

func TestLocateResultTotalSize(t *testing.T) {
	r := LocateResult{
		Candidates: []Candidate{
			{Size: 100},
			{Size: 250},
			{Size: 0},
		},
	}

	if got := r.TotalSize(); got != 350 {
		t.Errorf("TotalSize() = %d, want 350", got)
	}

	empty := LocateResult{}
	if got := empty.TotalSize(); got != 0 {
		t.Errorf("TotalSize() on empty result = %d, want 0", got)
	}
}
