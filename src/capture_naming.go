package nrsc5

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/strftime"
)

// CapturePattern compiles a strftime pattern once for repeated use naming
// raw-sample or WAV capture files, the way the teacher's xmit.go/tq.go
// compile their timestamp_format flag once per session rather than on
// every logged line.
type CapturePattern struct {
	f *strftime.Strftime
}

// NewCapturePattern compiles pattern (e.g. "capture-%Y%m%d-%H%M%S.cu8").
func NewCapturePattern(pattern string) (*CapturePattern, error) {
	f, err := strftime.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("nrsc5: compiling capture pattern: %w", err)
	}
	return &CapturePattern{f: f}, nil
}

// Name renders the pattern against t, the capture start time.
func (c *CapturePattern) Name(t time.Time) string {
	return c.f.FormatString(t)
}
