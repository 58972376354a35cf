package metrics

import (
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/nspcc-dev/hypertrie/pkg/config"
	"github.com/nspcc-dev/hypertrie/pkg/hypertrie"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func get(t *testing.T, url string) string {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPrometheusService(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		s := NewPrometheusService(config.BasicService{Addresses: []string{"localhost:0"}}, zaptest.NewLogger(t))
		require.NoError(t, s.Start())
		s.ShutDown()
	})
	t.Run("nil logger", func(t *testing.T) {
		require.Nil(t, NewPrometheusService(config.BasicService{}, nil))
	})
	t.Run("serves nodes gauge", func(t *testing.T) {
		ctx, err := hypertrie.New[bool](config.Hypertrie{MaxDepth: 2}, nil)
		require.NoError(t, err)
		h, err := hypertrie.NewHypertrie(ctx, 2)
		require.NoError(t, err)
		h.InsertBatch([]hypertrie.Entry[bool]{{Key: hypertrie.Key{1, 2}, Value: true}, {Key: hypertrie.Key{2, 2}, Value: true}})

		s := NewPrometheusService(config.BasicService{Enabled: true, Addresses: []string{"localhost:0"}}, zaptest.NewLogger(t))
		require.NoError(t, s.Start())
		t.Cleanup(s.ShutDown)
		addrs := s.Addresses()
		require.Len(t, addrs, 1)
		body := get(t, "http://"+addrs[0]+"/metrics")
		require.True(t, strings.Contains(body, "hypertrie_nodes{"), body)
		require.True(t, strings.Contains(body, "hypertrie_applied_entries_total{op=\"insert\"}"), body)
	})
}

func TestPprofService(t *testing.T) {
	s := NewPprofService(config.BasicService{Enabled: true, Addresses: []string{"localhost:0"}}, zaptest.NewLogger(t))
	require.NoError(t, s.Start())
	defer s.ShutDown()
	body := get(t, "http://"+s.Addresses()[0]+"/debug/pprof/")
	require.True(t, strings.Contains(body, "goroutine"))
}

func TestPprofService_Profiles(t *testing.T) {
	s := NewPprofService(config.BasicService{Enabled: true, Addresses: []string{"localhost:0"}}, zaptest.NewLogger(t))
	require.NoError(t, s.Start())
	t.Cleanup(s.ShutDown)
	body := get(t, "http://"+s.Addresses()[0]+"/debug/pprof/goroutine?debug=1")
	require.True(t, strings.Contains(body, "goroutine profile"), body)
}

func TestService_StartTwice(t *testing.T) {
	s := NewPrometheusService(config.BasicService{Enabled: true, Addresses: []string{"localhost:0"}}, zaptest.NewLogger(t))
	require.NoError(t, s.Start())
	addrs := s.Addresses()
	require.NoError(t, s.Start())
	require.Equal(t, addrs, s.Addresses())
	s.ShutDown()
	s.ShutDown()
}

func freeAddress(t *testing.T) string {
	ln, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestService_StartPartialFailure(t *testing.T) {
	free := freeAddress(t)
	busy, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)

	s := NewPrometheusService(config.BasicService{Enabled: true, Addresses: []string{free, busy.Addr().String()}}, zaptest.NewLogger(t))
	require.Error(t, s.Start())

	// The first address must be released after the failure.
	ln, err := net.Listen("tcp", free)
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	// And the service can be started once the second one is available.
	require.NoError(t, busy.Close())
	require.NoError(t, s.Start())
	t.Cleanup(s.ShutDown)
	require.True(t, strings.Contains(get(t, "http://"+s.Addresses()[0]+MetricsPath), "hypertrie_"))
}
