package antivirus

import (
	"context"
	"io"
)

// ScanResult contains the result of a malware scan
type ScanResult struct {
	Infected    bool   // True if malware was detected
	ThreatName  string // Name of detected threat (empty if clean)
	ScannerName string
	Error       error
}

// Scanner is the interface for pluggable antivirus implementations.
// Callers treat a non-nil Error as infected (fail closed).
type Scanner interface {
	Scan(ctx context.Context, filename string, data io.Reader) ScanResult
	Name() string
	Available(ctx context.Context) bool
}

// NoOpScanner always reports clean. Used when no daemon is configured.
type NoOpScanner struct{}

var _ Scanner = (*NoOpScanner)(nil)

func NewNoOpScanner() *NoOpScanner {
	return &NoOpScanner{}
}

func (n *NoOpScanner) Scan(ctx context.Context, filename string, data io.Reader) ScanResult {
	return ScanResult{ScannerName: n.Name()}
}

func (n *NoOpScanner) Name() string {
	return "noop"
}

func (n *NoOpScanner) Available(ctx context.Context) bool {
	return true
}

// New returns a clamd scanner for address, or a no-op scanner when address is empty.
func New(address string) Scanner {
	if address == "" {
		return NewNoOpScanner()
	}
	return NewClamAVScanner(address)
}
