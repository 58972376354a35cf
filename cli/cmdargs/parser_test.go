package cmdargs

import (
	"flag"
	"testing"

	"github.com/nspcc-dev/hypertrie/pkg/hypertrie"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func TestEnsureNone(t *testing.T) {
	set := flag.NewFlagSet("flagSet", flag.ContinueOnError)
	require.NoError(t, set.Parse([]string{}))
	require.Nil(t, EnsureNone(cli.NewContext(cli.NewApp(), set, nil)))

	set = flag.NewFlagSet("flagSet", flag.ContinueOnError)
	require.NoError(t, set.Parse([]string{"extra"}))
	require.NotNil(t, EnsureNone(cli.NewContext(cli.NewApp(), set, nil)))
}

func TestParseSliceKey(t *testing.T) {
	sk, err := ParseSliceKey("1,*,3", 3)
	require.NoError(t, err)
	require.Equal(t, hypertrie.SliceKey{hypertrie.Fixed(1), hypertrie.Any, hypertrie.Fixed(3)}, sk)

	for _, tc := range []struct {
		s     string
		depth int
	}{
		{"", 3},
		{"1,*", 3},
		{"1,*,x", 3},
	} {
		_, err := ParseSliceKey(tc.s, tc.depth)
		require.Error(t, err, tc.s)
	}
}

func TestParsePositions(t *testing.T) {
	ps, err := ParsePositions("2, 0", 3)
	require.NoError(t, err)
	require.Equal(t, []int{2, 0}, ps)

	for _, s := range []string{"", "3", "-1", "0,0", "a"} {
		_, err := ParsePositions(s, 3)
		require.Error(t, err, s)
	}
}
