package metrics

import (
	"net/http"
	"net/http/pprof"

	"github.com/nspcc-dev/hypertrie/pkg/config"
	"go.uber.org/zap"
)

// profiles are served by name in addition to the pprof index.
var profiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// NewPprofService creates a service exposing runtime profiles under
// /debug/pprof/. It returns nil if log is nil.
func NewPprofService(cfg config.BasicService, log *zap.Logger) *Service {
	if log == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	for _, p := range profiles {
		mux.Handle("/debug/pprof/"+p, pprof.Handler(p))
	}
	return NewService("Pprof", newServers(cfg, mux), cfg, log)
}
