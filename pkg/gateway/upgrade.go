package gateway

import "github.com/roffe/slcanx/pkg/frame"

// Upgrade returns f as an FD frame with bit rate switching. Remote requests
// have no FD equivalent and become empty data frames.
func Upgrade(f frame.Frame) frame.Frame {
	if f.RTR {
		f.Data = nil
	}
	f.RTR = false
	f.FD = true
	f.BRS = true
	return f
}
