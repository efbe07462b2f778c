package viewer

import (
	"io"
	"sync"
)

// Progress tracks the integer load percentage of one load. Reported values
// never decrease and stay within [0, 100].
type Progress struct {
	mu      sync.Mutex
	percent int
	known   bool
}

// Report records received of total bytes. An unknown total (<= 0) records
// nothing. The returned value is the current percentage.
func (p *Progress) Report(received, total int64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if total <= 0 {
		return p.percent, p.known
	}
	if received < 0 {
		received = 0
	}
	if received > total {
		received = total
	}
	// integer rounding of received*100/total
	pct := int((received*200 + total) / (2 * total))
	if pct > p.percent {
		p.percent = pct
	}
	p.known = true
	return p.percent, true
}

// Complete marks the load as fully received.
func (p *Progress) Complete() {
	p.mu.Lock()
	p.percent = 100
	p.known = true
	p.mu.Unlock()
}

// Percent returns the current percentage and whether any was reported.
func (p *Progress) Percent() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent, p.known
}

// progressReader feeds bytes read from r into a Progress.
type progressReader struct {
	r        io.Reader
	total    int64
	received int64
	progress *Progress
	onChange func(int)
	last     int
}

func newProgressReader(r io.Reader, total int64, progress *Progress, onChange func(int)) *progressReader {
	return &progressReader{r: r, total: total, progress: progress, onChange: onChange, last: -1}
}

func (pr *progressReader) Read(b []byte) (int, error) {
	n, err := pr.r.Read(b)
	if n > 0 {
		pr.received += int64(n)
		if pct, ok := pr.progress.Report(pr.received, pr.total); ok && pct != pr.last {
			pr.last = pct
			if pr.onChange != nil {
				pr.onChange(pct)
			}
		}
	}
	return n, err
}
