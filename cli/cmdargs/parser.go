package cmdargs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nspcc-dev/hypertrie/pkg/hypertrie"
	"github.com/urfave/cli"
)

// EnsureNone returns an error if there are any positional arguments present.
// It can be used to check for them in commands that don't accept arguments.
func EnsureNone(ctx *cli.Context) *cli.ExitError {
	if ctx.Args().Present() {
		return cli.NewExitError("additional arguments given while this command expects none", 1)
	}
	return nil
}

// ParseSliceKey parses a slice key of the given depth, see
// hypertrie.ParseSliceKey for the format.
func ParseSliceKey(s string, depth int) (hypertrie.SliceKey, error) {
	if len(s) == 0 {
		return nil, errors.New("empty slice key")
	}
	sk, err := hypertrie.ParseSliceKey(s)
	if err != nil {
		return nil, err
	}
	if len(sk) != depth {
		return nil, fmt.Errorf("slice key %s has %d positions, expected %d", sk, len(sk), depth)
	}
	return sk, nil
}

// ParsePositions parses comma-separated list of distinct positions below
// depth, e.g. "0,2".
func ParsePositions(s string, depth int) ([]int, error) {
	if len(s) == 0 {
		return nil, errors.New("empty positions list")
	}
	parts := strings.Split(s, ",")
	res := make([]int, 0, len(parts))
	seen := make(map[int]bool, len(parts))
	for _, p := range parts {
		pos, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid position %q: %w", p, err)
		}
		if pos < 0 || pos >= depth {
			return nil, fmt.Errorf("position %d is out of [0, %d) range", pos, depth)
		}
		if seen[pos] {
			return nil, fmt.Errorf("duplicate position %d", pos)
		}
		seen[pos] = true
		res = append(res, pos)
	}
	return res, nil
}
