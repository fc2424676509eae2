package util

// MaskSecret keeps the first 6 and last 4 characters of s so users can tell
// which key is stored without it being readable
func MaskSecret(s string) string {
	r := []rune(s)
	if len(r) <= 10 {
		return "••••"
	}

	return string(r[:6]) + "••••" + string(r[len(r)-4:])
}
