//go:build !NOORT || ALL

package hugot

import "github.com/knights-analytics/hugot"

var newSession = func() (*hugot.Session, error) {
	return hugot.NewORTSession()
}
