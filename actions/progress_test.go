package actions

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/platform/instagram"
)

func TestProgressEnabled(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, ProgressEnabled(false, os.Stderr))
	assert.False(t, ProgressEnabled(true, &buf))
}

func TestProgressBarFinishes(t *testing.T) {
	tests := []struct {
		name    string
		reports []instagram.ProgressReport
		ok      bool
	}{
		{
			name: "completed upload",
			reports: []instagram.ProgressReport{
				{Step: "INIT", TotalBytes: 100},
				{Step: "UPLOAD", BytesSent: 40, TotalBytes: 100},
				{Step: "UPLOAD", BytesSent: 100, TotalBytes: 100},
				{Step: "CONFIG"},
			},
			ok: true,
		},
		{
			name: "partial upload succeeded",
			reports: []instagram.ProgressReport{
				{Step: "INIT", TotalBytes: 100},
				{Step: "UPLOAD", BytesSent: 40, TotalBytes: 100},
			},
			ok: true,
		},
		{
			name: "failed mid upload",
			reports: []instagram.ProgressReport{
				{Step: "PREPARE"},
				{Step: "INIT", TotalBytes: 100},
				{Step: "UPLOAD", BytesSent: 10, TotalBytes: 100},
			},
			ok: false,
		},
		{
			name: "empty file",
			reports: []instagram.ProgressReport{
				{Step: "INIT", TotalBytes: 0},
			},
			ok: true,
		},
		{
			name: "no bar started",
			reports: []instagram.ProgressReport{
				{Step: "PREPARE"},
			},
			ok: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			bar := NewProgressBar(&buf)
			for _, r := range tt.reports {
				bar.Report(r)
			}
			// Must not block.
			bar.Finish(tt.ok)
		})
	}
}
