package editor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	segmentPattern = regexp.MustCompile(`^[A-Za-z]+(\[\d+\])?$`)
	indexPattern   = regexp.MustCompile(`\[(\d+)\]`)
)

// parsePath splits "sections[2].subsections" into the table pattern
// "sections[].subsections" and the parent indexes [2]. The last segment
// names the collection itself and cannot carry an index.
func parsePath(path string) (string, []int, error) {
	if path == "" {
		return "", nil, fmt.Errorf("%w: empty path", ErrUnknownPath)
	}

	segments := strings.Split(path, ".")
	for i, seg := range segments {
		if !segmentPattern.MatchString(seg) {
			return "", nil, fmt.Errorf("%w: %q", ErrUnknownPath, path)
		}
		if i == len(segments)-1 && strings.HasSuffix(seg, "]") {
			return "", nil, fmt.Errorf("%w: %q ends with an index", ErrUnknownPath, path)
		}
	}

	var idx []int
	for _, m := range indexPattern.FindAllStringSubmatch(path, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return "", nil, fmt.Errorf("%w: %q", ErrUnknownPath, path)
		}
		idx = append(idx, n)
	}

	return indexPattern.ReplaceAllString(path, "[]"), idx, nil
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}
