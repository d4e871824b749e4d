package utils

import "strings"

// SplitMulti flattens repeated query values that may themselves be
// comma-separated, trimming blanks.
//
// Example:
//
//	utils.SplitMulti("nuts,gluten", " sesame ") // ["nuts" "gluten" "sesame"]
func SplitMulti(vals ...string) []string {
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
