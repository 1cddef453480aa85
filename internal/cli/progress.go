package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/leadflow/internal/ingest"
)

// LoadProgress draws one bar step per export decoded.
type LoadProgress struct {
	bar    *progressbar.ProgressBar
	writer io.Writer
	mu     sync.Mutex
}

// NewLoadProgress creates a progress bar for total exports.
func NewLoadProgress(w io.Writer, total int) *LoadProgress {
	p := &LoadProgress{writer: w}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan][bold]Loading exports...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return p
}

// Loaded advances the bar. It is safe for concurrent use and matches the
// ingest OnLoaded callback.
func (p *LoadProgress) Loaded(kind ingest.Kind, rows int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bar.Describe(fmt.Sprintf("[cyan][bold]Loaded %s (%d rows)[reset]", kind, rows))
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}
