package risk

import (
	"regexp"
	"strings"
)

// sensitiveArea groups path patterns that usually need extra review
type sensitiveArea struct {
	name    string
	pattern *regexp.Regexp
}

var sensitiveAreas = []sensitiveArea{
	{"authentication", regexp.MustCompile(`(?i)(auth|login|password|secret|token|credential)`)},
	{"payments", regexp.MustCompile(`(?i)(payment|billing|transaction|invoice)`)},
	{"privileges", regexp.MustCompile(`(?i)(admin|sudo|privilege|permission|rbac)`)},
	{"configuration", regexp.MustCompile(`(?i)(^|/)(\.env(\..*)?|config\.json|settings\.py|secrets?\.ya?ml)$`)},
	{"migrations", regexp.MustCompile(`(?i)(^|/)migrations?/`)},
}

// SensitiveFiles returns the paths that fall into a sensitive area
func SensitiveFiles(files []string) []string {
	var out []string
	for _, f := range files {
		if len(SensitiveAreas(f)) > 0 {
			out = append(out, f)
		}
	}
	return out
}

// SensitiveAreas names the sensitive areas a path belongs to
func SensitiveAreas(path string) []string {
	path = strings.TrimSpace(path)
	var areas []string
	for _, a := range sensitiveAreas {
		if a.pattern.MatchString(path) {
			areas = append(areas, a.name)
		}
	}
	return areas
}
