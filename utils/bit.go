package utils

// HasFlag returns whether given flags include the given bitflag.
func HasFlag(flags uint8, flag uint8) bool {
	return flags&flag > 0
}
