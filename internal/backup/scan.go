package backup

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// scanBurst is the limiter burst in bytes. It must exceed the largest single
// read the checksum engine performs (32 KiB).
const scanBurst = 256 * 1024

// newScanLimiter builds the byte-rate limiter that keeps bulk audits from
// saturating disk I/O.
func newScanLimiter(bytesPerSec int64) *rate.Limiter {
	burst := scanBurst
	if int64(burst) < bytesPerSec {
		burst = int(bytesPerSec)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// scanReader wraps r with the manager's scan limiter, if any.
func (m *Manager) scanReader(r io.Reader) io.Reader {
	if m.limiter == nil {
		return r
	}
	return &throttledReader{r: r, limiter: m.limiter}
}

type throttledReader struct {
	r       io.Reader
	limiter *rate.Limiter
}

func (t *throttledReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		if waitErr := t.limiter.WaitN(context.Background(), n); waitErr != nil && err == nil {
			err = waitErr
		}
	}
	return n, err
}
