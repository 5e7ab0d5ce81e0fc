package slcanx

import (
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"time"
)

const (
	DefaultPortBaudrate = 115200
	DefaultGroupWindow  = 125 * time.Microsecond
	DefaultPollInterval = 1 * time.Millisecond
	DefaultReadTimeout  = 3 * time.Millisecond

	// MaxBurstSize is the write buffer size after which a burst is flushed
	// even if the grouping window is still open.
	MaxBurstSize = 1024
)

type Config struct {
	Debug        bool
	Port         string
	PortBaudrate int

	// GroupWindow bounds how long outgoing commands are collected before
	// they are written to the port in one call. A negative value writes
	// every command on its own.
	GroupWindow time.Duration
	// PollInterval is how long the worker waits for a command when it has
	// nothing to write before going back to reading the port.
	PollInterval time.Duration
	// ReadTimeout is the serial read timeout.
	ReadTimeout time.Duration

	CommandQueueSize int
	EventQueueSize   int

	OnMessage func(string)
}

// withDefaults returns a copy of cfg with zero values replaced.
func (cfg *Config) withDefaults() *Config {
	c := *cfg
	if c.PortBaudrate == 0 {
		c.PortBaudrate = DefaultPortBaudrate
	}
	if c.GroupWindow == 0 {
		c.GroupWindow = DefaultGroupWindow
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.CommandQueueSize <= 0 {
		c.CommandQueueSize = 1024
	}
	if c.EventQueueSize <= 0 {
		c.EventQueueSize = 1024
	}
	if c.OnMessage == nil {
		c.OnMessage = func(msg string) {
			_, file, no, ok := runtime.Caller(1)
			if ok {
				log.Printf("%s#%d %v", filepath.Base(file), no, msg)
			} else {
				log.Println(msg)
			}
		}
	}
	return &c
}

func (cfg *Config) String() string {
	return fmt.Sprintf("port: %s @ %d, group window: %s, poll: %s, read timeout: %s", cfg.Port, cfg.PortBaudrate, cfg.GroupWindow, cfg.PollInterval, cfg.ReadTimeout)
}
