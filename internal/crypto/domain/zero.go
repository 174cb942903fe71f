package domain

// Zero overwrites key material in place so it does not linger in memory after use.
func Zero(b []byte) {
	clear(b)
}
