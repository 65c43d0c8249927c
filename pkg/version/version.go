// Package version handles the release tag scheme: a literal "v" followed
// by a non-negative integer, incremented by one on every published release.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Baseline is the tag assumed when a repository has no releases yet,
// so the first published release becomes "v1".
const Baseline = "v0"

// IncrementTag returns the next tag in the sequence, e.g. "v4" -> "v5".
func IncrementTag(tag string) (string, error) {
	num, ok := strings.CutPrefix(tag, "v")
	if !ok {
		return "", errors.Errorf("malformed release tag %q: missing v prefix", tag)
	}

	n, err := strconv.Atoi(num)
	if err != nil {
		return "", errors.Errorf("malformed release tag %q: %w", tag, err)
	}
	if n < 0 {
		return "", errors.Errorf("malformed release tag %q: negative version", tag)
	}

	return fmt.Sprintf("v%d", n+1), nil
}
