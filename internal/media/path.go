// Package media decides where downloaded enclosures are stored.
package media

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	maxNameBytes     = 120
	defaultExtension = ".mp3"
	unnamed          = "untitled"
)

// Path returns dir/<feed>/<entry><ext>. The extension comes from the
// enclosure URL path.
func Path(dir, feedTitle, entryTitle, enclosureURL string) string {
	return filepath.Join(dir, Sanitize(feedTitle), Sanitize(entryTitle)+Extension(enclosureURL))
}

// Sanitize turns a title into a single, portable path element.
func Sanitize(title string) string {
	title = norm.NFC.String(title)

	var sb strings.Builder
	lastSpace := false
	for _, r := range title {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			r = '-'
		case unicode.IsSpace(r):
			r = ' '
		case unicode.IsControl(r) || r == utf8.RuneError:
			continue
		}

		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
		} else {
			lastSpace = false
		}
		sb.WriteRune(r)
	}

	name := strings.Trim(sb.String(), " .")
	name = truncate(name, maxNameBytes)
	name = strings.TrimRight(name, " .")

	return cmp.Or(name, unnamed)
}

// Extension returns the lower-cased file extension of the enclosure URL
// path, or .mp3 when it has none.
func Extension(enclosureURL string) string {
	u, err := url.Parse(enclosureURL)
	if err != nil {
		return defaultExtension
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if len(ext) < 2 || len(ext) > 6 || strings.ContainsFunc(ext[1:], func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		return defaultExtension
	}
	return ext
}

// Unique returns p when nothing exists there yet, otherwise the first free
// name of the form "name (2).ext", "name (3).ext", ...
func Unique(p string) (string, error) {
	ext := filepath.Ext(p)
	base := strings.TrimSuffix(p, ext)

	candidate := p
	for n := 2; ; n++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", candidate, err)
		}
		candidate = fmt.Sprintf("%s (%d)%s", base, n, ext)
	}
}

// EnsureDir creates the parent directory of file.
func EnsureDir(file string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", file, err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
