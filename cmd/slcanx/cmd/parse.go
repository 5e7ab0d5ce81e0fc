package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/roffe/slcanx/pkg/frame"
)

// parseFrame reads the cansend notation:
//
//	<id>#<data>          classical, 3 hex digit id is standard, 8 is extended
//	<id>#R               remote request
//	<id>##<flags><data>  FD, flags bit 0 enables bit rate switching
//
// Data bytes may be separated by dots.
func parseFrame(s string) (frame.Frame, error) {
	idStr, rest, ok := strings.Cut(s, "#")
	if !ok {
		return frame.Frame{}, fmt.Errorf("missing '#' in %q", s)
	}
	var f frame.Frame
	switch len(idStr) {
	case 3:
	case 8:
		f.Extended = true
	default:
		return frame.Frame{}, fmt.Errorf("identifier %q must be 3 or 8 hex digits", idStr)
	}
	id, err := strconv.ParseUint(idStr, 16, 32)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("invalid identifier %q", idStr)
	}
	f.Identifier = uint32(id)

	switch {
	case strings.HasPrefix(rest, "#"):
		if len(rest) < 2 {
			return frame.Frame{}, fmt.Errorf("missing FD flags in %q", s)
		}
		flags, err := strconv.ParseUint(rest[1:2], 16, 8)
		if err != nil {
			return frame.Frame{}, fmt.Errorf("invalid FD flags %q", rest[1:2])
		}
		f.FD = true
		f.BRS = flags&0x01 != 0
		rest = rest[2:]
	case rest == "R" || rest == "r":
		f.RTR = true
		return f, f.Validate()
	}

	if f.Data, err = hex.DecodeString(strings.ReplaceAll(rest, ".", "")); err != nil {
		return frame.Frame{}, fmt.Errorf("invalid data %q: %w", rest, err)
	}
	if len(f.Data) == 0 {
		f.Data = nil
	}
	return f, f.Validate()
}
