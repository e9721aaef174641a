package output

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"
)

const barTemplate = `{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{speed . }}`

// ProgressBars draws one progress bar per file copy.
// It implements storage.TransferObserver.
type ProgressBars struct {
	mu     sync.Mutex
	writer io.Writer
	bars   map[string]*pb.ProgressBar
}

// NewProgressBars creates progress bars writing to w (stderr when nil)
func NewProgressBars(w io.Writer) *ProgressBars {
	if w == nil {
		w = os.Stderr
	}
	return &ProgressBars{
		writer: w,
		bars:   make(map[string]*pb.ProgressBar),
	}
}

// StartTransfer starts a bar for name and returns a reader that advances it
func (p *ProgressBars) StartTransfer(name string, size int64, r io.Reader) io.Reader {
	bar := pb.New64(size)
	bar.SetTemplateString(barTemplate)
	bar.Set(pb.Bytes, true)
	bar.Set("prefix", filepath.Base(name))
	bar.SetWriter(p.writer)
	bar.Start()

	p.mu.Lock()
	p.bars[name] = bar
	p.mu.Unlock()

	return bar.NewProxyReader(r)
}

// FinishTransfer stops the bar for name
func (p *ProgressBars) FinishTransfer(name string, err error) {
	p.mu.Lock()
	bar, ok := p.bars[name]
	delete(p.bars, name)
	p.mu.Unlock()

	if !ok {
		return
	}
	if err != nil {
		bar.SetErr(err)
	}
	bar.Finish()
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
