/*
Package join implements hash joins of hypertries over a single join variable.
Every operand binds the variable to one or more of its positions, the join
enumerates key parts present on all operand diagonals.
*/
package join

import (
	"context"
	"errors"
	"fmt"

	"github.com/nspcc-dev/hypertrie/pkg/hypertrie"
)

// pollInterval is the number of driver key parts processed between
// context checks.
const pollInterval = 64

// ErrNoOperands is returned when there is nothing to join.
var ErrNoOperands = errors.New("no join operands")

// ErrStop can be returned from a row callback to stop the join early without
// an error.
var ErrStop = errors.New("stop join")

// Operand is a hypertrie view together with the positions bound to the join
// variable.
type Operand[V hypertrie.Value] struct {
	View      *hypertrie.View[V]
	Positions []int
}

// Row is a single join result. Results are in operand order, each of them is
// the operand sliced by KeyPart at its positions. Results of optional
// operands not matching KeyPart are absent.
type Row[V hypertrie.Value] struct {
	KeyPart hypertrie.KeyPart
	Results []hypertrie.SliceResult[V]
}

// HashJoin calls fn for every key part present on diagonals of all operands,
// key parts are enumerated in ascending order of the smallest diagonal.
func HashJoin[V hypertrie.Value](ctx context.Context, operands []Operand[V], fn func(Row[V]) error) error {
	return LeftHashJoin(ctx, operands, nil, fn)
}

// LeftHashJoin is similar to HashJoin, but key parts are only required to be
// present on diagonals of required operands. Results of optional operands
// follow the required ones in the row.
func LeftHashJoin[V hypertrie.Value](ctx context.Context, required, optional []Operand[V], fn func(Row[V]) error) error {
	if len(required) == 0 {
		return ErrNoOperands
	}
	diags := make([]*hypertrie.RawHashDiagonal[V], 0, len(required)+len(optional))
	for i, op := range append(append([]Operand[V]{}, required...), optional...) {
		d, err := diagonal(op)
		if err != nil {
			return fmt.Errorf("operand %d: %w", i, err)
		}
		diags = append(diags, d)
	}
	driver := 0
	for i := 1; i < len(required); i++ {
		if diags[i].Size() < diags[driver].Size() {
			driver = i
		}
	}
	if diags[driver].Size() == 0 {
		return nil
	}

	var processed int
	for diags[driver].Next() {
		if processed%pollInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		processed++

		kp := diags[driver].KeyPart()
		row := Row[V]{KeyPart: kp, Results: make([]hypertrie.SliceResult[V], len(diags))}
		matched := true
		for i, d := range diags {
			if i == driver {
				row.Results[i] = d.Result()
				continue
			}
			res, ok := d.Find(kp)
			if !ok && i < len(required) {
				matched = false
				break
			}
			row.Results[i] = res
		}
		if !matched {
			continue
		}
		if err := fn(row); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

func diagonal[V hypertrie.Value](op Operand[V]) (*hypertrie.RawHashDiagonal[V], error) {
	if op.View == nil {
		return nil, errors.New("nil view")
	}
	depth := op.View.Depth()
	if len(op.Positions) == 0 || len(op.Positions) > depth {
		return nil, fmt.Errorf("invalid positions %v for depth %d", op.Positions, depth)
	}
	seen := make(map[int]bool, len(op.Positions))
	for _, p := range op.Positions {
		if p < 0 || p >= depth || seen[p] {
			return nil, fmt.Errorf("invalid positions %v for depth %d", op.Positions, depth)
		}
		seen[p] = true
	}
	return op.View.Diagonal(op.Positions), nil
}
