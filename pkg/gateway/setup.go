package gateway

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// SetupConfig describes the host preparation done before forwarding.
type SetupConfig struct {
	// FlushRules removes all kernel cangw rules so frames are not forwarded
	// twice.
	FlushRules bool
	// Kill is a pkill -f pattern for processes competing for the
	// interfaces, empty kills nothing.
	Kill string

	// Interfaces are taken down, configured and brought up again when
	// Bitrate is set.
	Interfaces  []string
	Bitrate     uint32
	DataBitrate uint32

	Attempts  uint
	Delay     time.Duration
	OnMessage func(string)
}

// DefaultKillPattern matches the capture used when the gateway runs next to
// a logger.
func DefaultKillPattern(sources []string) string {
	return "candump -L " + strings.Join(sources, " ")
}

func (cfg *SetupConfig) withDefaults() *SetupConfig {
	c := *cfg
	if c.Attempts == 0 {
		c.Attempts = 3
	}
	if c.Delay <= 0 {
		c.Delay = 100 * time.Millisecond
	}
	if c.OnMessage == nil {
		c.OnMessage = func(msg string) { log.Println(msg) }
	}
	return &c
}

func (cfg *SetupConfig) String() string {
	return fmt.Sprintf("flush: %t kill: %q interfaces: %v bitrate: %d data bitrate: %d", cfg.FlushRules, cfg.Kill, cfg.Interfaces, cfg.Bitrate, cfg.DataBitrate)
}
