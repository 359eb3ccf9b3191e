package discussion

import "sync"

// progressTracker reports run progress to pollers. Percent is monotone
// non-decreasing for the lifetime of a session; once the run finishes the
// snapshot is frozen and further sets are ignored.
type progressTracker struct {
	mu      sync.Mutex
	percent int
	label   string
	frozen  bool
}

func (p *progressTracker) set(percent int, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frozen {
		return
	}
	if percent > p.percent {
		p.percent = percent
	}
	if label != "" {
		p.label = label
	}
}

// finish pins the tracker at its terminal value. Completed runs land on
// 100/complete; failed runs keep their last percent with a failure label.
func (p *progressTracker) finish(percent int, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frozen {
		return
	}
	if percent > p.percent {
		p.percent = percent
	}
	p.label = label
	p.frozen = true
}

func (p *progressTracker) snapshot() (int, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent, p.label
}
