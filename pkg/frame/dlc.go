package frame

// FD lengths for DLC 9..15.
var fdLengths = [...]int{12, 16, 20, 24, 32, 48, 64}

// DLCToLength returns the payload length for a data length code.
// Codes above 15 saturate to 64.
func DLCToLength(dlc uint8) int {
	if dlc <= 8 {
		return int(dlc)
	}
	if dlc > 15 {
		return MaxLength
	}
	return fdLengths[dlc-9]
}

// LengthToDLC returns the smallest data length code able to carry length bytes.
// Lengths above 48 saturate to 15.
func LengthToDLC(length int) uint8 {
	if length <= 0 {
		return 0
	}
	if length <= 8 {
		return uint8(length)
	}
	for i, l := range fdLengths {
		if length <= l {
			return uint8(9 + i)
		}
	}
	return 15
}

// ValidLength reports whether length is representable by a DLC.
func ValidLength(length int) bool {
	return length >= 0 && length <= MaxLength && DLCToLength(LengthToDLC(length)) == length
}

// PaddedLength rounds length up to the next representable payload length.
func PaddedLength(length int) int {
	return DLCToLength(LengthToDLC(length))
}
