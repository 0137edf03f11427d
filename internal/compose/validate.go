package compose

import "strings"

// CanSubmit reports whether a composer holding text may submit. View models
// use it to disable the submit affordance.
func CanSubmit(text string) bool {
	return strings.TrimSpace(text) != ""
}
