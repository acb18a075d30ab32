// Package actions holds pieces shared by the login, post and story runners.
package actions

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/platform/instagram"
)

// ProgressBar renders upload progress reported by the Instagram client.
type ProgressBar struct {
	progress *mpb.Progress

	mu    sync.Mutex
	bar   *mpb.Bar
	total int64

	// statusMu is taken by the decorator on the bar's goroutine; never
	// acquire mu while holding it.
	statusMu  sync.Mutex
	statusMsg string
}

func NewProgressBar(w io.Writer) *ProgressBar {
	return &ProgressBar{
		progress:  mpb.New(mpb.WithOutput(w), mpb.WithWidth(60)),
		statusMsg: "Starting",
	}
}

// ProgressEnabled reports whether a bar should be drawn on w. Bars are
// only drawn when asked for and w is a terminal.
func ProgressEnabled(requested bool, w io.Writer) bool {
	if !requested {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *ProgressBar) Report(p instagram.ProgressReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.Step == "INIT" && r.bar == nil {
		r.setStatus("Uploading")
		r.total = p.TotalBytes
		r.bar = r.progress.AddBar(p.TotalBytes,
			mpb.PrependDecorators(
				decor.Any(func(decor.Statistics) string {
					return fmt.Sprintf("%-12s", r.status())
				}, decor.WCSyncSpaceR),
				decor.Counters(decor.SizeB1024(0), "% .2f / % .2f", decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.AverageSpeed(decor.SizeB1024(0), "% .2f", decor.WCSyncSpace),
				decor.Name(" | "),
				decor.OnAbort(
					decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO), "done"),
					"failed",
				),
			),
		)
		return
	}

	switch p.Step {
	case "PREPARE":
		r.setStatus("Preparing")
	case "UPLOAD":
		r.setStatus("Uploading")
		if r.bar != nil {
			r.bar.SetCurrent(p.BytesSent)
		}
	case "CONFIG":
		r.setStatus("Configuring")
	}
}

func (r *ProgressBar) setStatus(msg string) {
	r.statusMu.Lock()
	r.statusMsg = msg
	r.statusMu.Unlock()
}

func (r *ProgressBar) status() string {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	return r.statusMsg
}

// Finish completes or aborts the bar and waits for the final render.
func (r *ProgressBar) Finish(ok bool) {
	r.mu.Lock()
	bar, total := r.bar, r.total
	r.mu.Unlock()

	switch {
	case bar == nil:
	case !ok:
		bar.Abort(false)
	case total > 0:
		bar.SetCurrent(total)
	default:
		bar.SetTotal(-1, true)
	}
	r.progress.Wait()
}
