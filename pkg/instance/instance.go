package instance

import "os"

// ID names this process in logs. DYNO wins on the hosted platform, then the
// container HOSTNAME.
func ID() string {
	for _, key := range []string{"DYNO", "HOSTNAME"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
