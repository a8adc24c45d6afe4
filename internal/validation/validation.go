package validation

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
)

var (
	slugRe    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	versionRe = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func ValidateSlug(slug string) bool {
	slug = NormalizeSlug(slug)
	return len(slug) >= 2 && len(slug) <= 64 && slugRe.MatchString(slug)
}

// ValidateVersion accepts the three-component numeric MAJOR.MINOR.PATCH form.
func ValidateVersion(version string) bool {
	return versionRe.MatchString(strings.TrimSpace(version))
}

func ValidateRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

// CompareVersions compares two MAJOR.MINOR.PATCH strings component-wise
// numerically: -1 if a < b, 0 if equal, 1 if a > b. Missing or malformed
// components compare as zero, so "1.2" equals "1.2.0".
func CompareVersions(a, b string) int {
	aParts := versionParts(a)
	bParts := versionParts(b)
	for i := 0; i < 3; i++ {
		if aParts[i] < bParts[i] {
			return -1
		}
		if aParts[i] > bParts[i] {
			return 1
		}
	}
	return 0
}

// IsNewerVersion reports whether candidate is strictly newer than installed.
func IsNewerVersion(candidate, installed string) bool {
	return CompareVersions(candidate, installed) > 0
}

func versionParts(v string) [3]int {
	var out [3]int
	for i, p := range strings.SplitN(strings.TrimSpace(v), ".", 3) {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			continue
		}
		out[i] = n
	}
	return out
}

func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}
