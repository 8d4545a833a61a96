package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// exportProgress reports export progress with a progress bar.
type exportProgress struct {
	quiet bool
	out   io.Writer
	bar   *progressbar.ProgressBar
	start time.Time
}

func newExportProgress(out io.Writer, quiet bool) *exportProgress {
	return &exportProgress{quiet: quiet, out: out}
}

func (p *exportProgress) OnStart(total int) {
	p.start = time.Now()
	if p.quiet || total < 2 {
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Exporting patterns"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("patterns/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.out)
		}),
	)
}

func (p *exportProgress) OnExported(identifier string) {
	if p.bar != nil {
		p.bar.Add(1)
	}
}

func (p *exportProgress) OnComplete(exported, failed int) {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "✓ Exported %d patterns in %.1fs\n", exported, time.Since(p.start).Seconds())
	if failed > 0 {
		fmt.Fprintf(p.out, "  Failed: %d\n", failed)
	}
}
