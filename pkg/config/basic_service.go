package config

import (
	"fmt"
	"net"
	"strconv"
)

// BasicService is a configuration of an HTTP endpoint exposing runtime data of
// the hypertrie tool, it's used for Prometheus metrics and pprof.
type BasicService struct {
	Enabled bool `yaml:"Enabled"`
	// Addresses is a list of "host:port" pairs to listen on.
	Addresses []string `yaml:"Addresses"`
	// Port makes the service listen on all interfaces when Addresses is empty.
	Port uint16 `yaml:"Port,omitempty"`
}

// GetAddresses returns the list of addresses to listen on. Addresses take
// precedence over Port.
func (s BasicService) GetAddresses() []string {
	if len(s.Addresses) != 0 {
		return append([]string{}, s.Addresses...)
	}
	if s.Port == 0 {
		return []string{}
	}
	return []string{net.JoinHostPort("", strconv.FormatUint(uint64(s.Port), 10))}
}

// Validate checks that an enabled service has something to listen on and all
// of its addresses are valid. name is used in error messages only.
func (s BasicService) Validate(name string) error {
	if !s.Enabled {
		return nil
	}
	addrs := s.GetAddresses()
	if len(addrs) == 0 {
		return fmt.Errorf("%w: %s is enabled, but has no Addresses and Port", ErrInvalidConfig, name)
	}
	for _, addr := range addrs {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("%w: %s address %q: %w", ErrInvalidConfig, name, addr, err)
		}
	}
	return nil
}
