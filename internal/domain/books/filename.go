package books

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// AllowedExtensions is the upload allow-list, lower-case without the dot.
var AllowedExtensions = map[string]bool{
	"txt":  true,
	"pdf":  true,
	"epub": true,
	"mobi": true,
	"azw":  true,
	"azw3": true,
}

const fallbackFilename = "upload"

var rxUnsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Extension returns the lower-cased text after the last dot, or "" when the
// name has no dot.
func Extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

// ValidateFilename checks an uploaded name before anything is stored.
func ValidateFilename(filename string) error {
	if filename == "" {
		return ErrNoFile
	}
	if !AllowedExtensions[Extension(filename)] {
		return ErrInvalidExtension
	}
	return nil
}

// SanitizeFilename makes an uploaded name safe to use as a storage key
// component: ASCII only, no path separators, no whitespace.
func SanitizeFilename(filename string) string {
	s := norm.NFKD.String(filename)

	var b strings.Builder
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	s = strings.NewReplacer("/", " ", `\`, " ").Replace(b.String())
	s = strings.Join(strings.Fields(s), "_")
	s = rxUnsafeFilename.ReplaceAllString(s, "")
	s = strings.Trim(s, "._")

	if s == "" {
		return fallbackFilename
	}
	return s
}
