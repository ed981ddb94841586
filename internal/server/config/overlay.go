package config

import "time"

// setString, setInt and setDuration copy v into dst unless v is the zero value,
// so an overlay only replaces what its source actually carries.
func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
