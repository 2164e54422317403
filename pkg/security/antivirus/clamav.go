package antivirus

import (
	"context"
	"fmt"
	"io"

	"github.com/dutchcoders/go-clamd"
)

// ClamAVScanner streams content to a clamd daemon with INSTREAM.
type ClamAVScanner struct {
	address string // "tcp://host:3310" or a unix socket path
	client  *clamd.Clamd
}

var _ Scanner = (*ClamAVScanner)(nil)

func NewClamAVScanner(address string) *ClamAVScanner {
	return &ClamAVScanner{
		address: address,
		client:  clamd.NewClamd(address),
	}
}

func (c *ClamAVScanner) Name() string {
	return "clamav"
}

func (c *ClamAVScanner) Available(ctx context.Context) bool {
	return c.client.Ping() == nil
}

func (c *ClamAVScanner) Scan(ctx context.Context, filename string, data io.Reader) ScanResult {
	result := ScanResult{ScannerName: c.Name()}

	abort := make(chan bool)
	defer close(abort)

	results, err := c.client.ScanStream(data, abort)
	if err != nil {
		result.Infected = true
		result.Error = fmt.Errorf("clamd scan %s: %w", filename, err)
		return result
	}

	for {
		select {
		case <-ctx.Done():
			result.Infected = true
			result.Error = ctx.Err()
			return result
		case r, ok := <-results:
			if !ok {
				return result
			}
			switch r.Status {
			case clamd.RES_OK:
			case clamd.RES_FOUND:
				result.Infected = true
				result.ThreatName = r.Description
			default:
				result.Infected = true
				result.Error = fmt.Errorf("clamd scan %s: %s", filename, r.Raw)
			}
		}
	}
}
