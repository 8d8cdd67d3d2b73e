// Package subscription manages the list of subscribed feed URLs.
package subscription

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"

	"github.com/lysyi3m/podcomb/internal/buffer"
)

var ErrInvalidURL = errors.New("invalid feed URL")

// List is the subscription file: one feed URL per line, in the order the
// feeds were added.
type List struct {
	path string
	buf  *buffer.Buffer
}

func Open(path string) (*List, error) {
	buf, err := buffer.Hydrate(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subscription list: %w", err)
	}
	buf.EndLine()
	return &List{path: path, buf: buf}, nil
}

// Add validates rawURL, appends it and persists the list.
func (l *List) Add(rawURL string) (string, error) {
	feedURL, err := Validate(rawURL)
	if err != nil {
		return "", err
	}

	l.buf.AppendString(feedURL)
	l.buf.AppendString("\n")

	if err := l.buf.Persist(l.path); err != nil {
		return "", fmt.Errorf("failed to save subscription %s: %w", feedURL, err)
	}
	return feedURL, nil
}

// URLs rescans the whole list and returns the feed URLs in file order.
// Blank lines are ignored.
func (l *List) URLs() []string {
	var lines []string

	l.buf.ResetCursor()
	for {
		line, ok := l.buf.NextLine()
		if !ok {
			break
		}
		lines = append(lines, strings.TrimSpace(string(line)))
	}

	return lo.Compact(lines)
}

func (l *List) Contains(feedURL string) bool {
	return lo.Contains(l.URLs(), feedURL)
}

func (l *List) Len() int {
	return len(l.URLs())
}

func (l *List) Path() string {
	return l.path
}

// Validate trims rawURL and checks that it is an absolute http(s) URL.
func Validate(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if strings.ContainsAny(trimmed, " \t\r\n") {
		return "", fmt.Errorf("%w: %q contains whitespace", ErrInvalidURL, trimmed)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %q must use http or https", ErrInvalidURL, trimmed)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, trimmed)
	}

	return trimmed, nil
}
