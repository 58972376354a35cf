/*
Package input reads delimited tuples of unsigned integers used as hypertrie
keys by CLI commands.
*/
package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxLineSize is the maximum supported input line length.
const MaxLineSize = 64 * 1024

// ErrEmptyDelimiter is returned when no delimiter is given.
var ErrEmptyDelimiter = errors.New("empty delimiter")

// ReadTuples parses r line by line calling fn for every tuple of depth
// elements separated by delim. Empty lines and lines starting with '#' are
// skipped. Reading stops at the first error returned by fn or if ctx is done.
func ReadTuples(ctx context.Context, r io.Reader, delim string, depth int, fn func([]uint64) error) error {
	if len(delim) == 0 {
		return ErrEmptyDelimiter
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), MaxLineSize)
	var line int
	for scanner.Scan() {
		line++
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		s := strings.TrimSpace(scanner.Text())
		if len(s) == 0 || s[0] == '#' {
			continue
		}
		tuple, err := ParseTuple(s, delim, depth)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(tuple); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// ParseTuple parses a single tuple of depth elements.
func ParseTuple(s string, delim string, depth int) ([]uint64, error) {
	parts := strings.Split(s, delim)
	if len(parts) != depth {
		return nil, fmt.Errorf("expected %d elements, got %d", depth, len(parts))
	}
	res := make([]uint64, depth)
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		res[i] = v
	}
	return res, nil
}
