//go:build NOORT && !ALL

package hugot

import (
	"errors"

	"github.com/knights-analytics/hugot"
)

var ErrNoRuntime = errors.New("binary built with NOORT, onnxruntime support is disabled")

var newSession = func() (*hugot.Session, error) {
	return nil, ErrNoRuntime
}
