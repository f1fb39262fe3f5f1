package progress

import "github.com/schollz/progressbar/v3"

// Sink receives cumulative download progress for one file at a time.
type Sink interface {
	Start(name string, total int64)
	Add(n int)
	Finish()
}

type bars struct {
	bar *progressbar.ProgressBar
}

// NewBars returns a Sink rendering a byte progress bar per file.
func NewBars() Sink {
	return &bars{}
}

func (b *bars) Start(name string, total int64) {
	b.bar = progressbar.DefaultBytes(total, name)
}

func (b *bars) Add(n int) {
	if b.bar != nil {
		_ = b.bar.Add(n)
	}
}

func (b *bars) Finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
		b.bar = nil
	}
}

type discard struct{}

// Discard returns a Sink that drops all progress. Used in tests and
// when no terminal output is wanted.
func Discard() Sink {
	return discard{}
}

func (discard) Start(string, int64) {}
func (discard) Add(int)             {}
func (discard) Finish()             {}
