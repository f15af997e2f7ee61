package defnet

// Reporter observes parse progress and diagnostics. Implementations must be
// safe for concurrent use and must never influence parse order or results;
// the parser behaves identically under NopReporter.
type Reporter interface {
	// Progress reports that n more input bytes have been consumed.
	Progress(n int64)
	// Warnf reports a recoverable parse problem.
	Warnf(format string, args ...any)
	// Debugf reports low-value diagnostics such as unknown prefixes.
	Debugf(format string, args ...any)
}

type nopReporter struct{}

func (nopReporter) Progress(int64)        {}
func (nopReporter) Warnf(string, ...any)  {}
func (nopReporter) Debugf(string, ...any) {}

// NopReporter discards all events.
func NopReporter() Reporter {
	return nopReporter{}
}
