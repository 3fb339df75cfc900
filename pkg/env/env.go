package env

import "os"

// Prefix namespaces the dashboard's variables. Unprefixed names are still
// honored so shared settings such as LOG_FORMAT keep working.
const Prefix = "A33_"

// Get returns the value of the prefixed variable, then the bare one, or a
// fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(Prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
