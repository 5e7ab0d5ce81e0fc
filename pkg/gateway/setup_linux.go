package gateway

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/avast/retry-go"
	"go.einride.tech/can/pkg/candevice"
)

// Setup prepares the host for forwarding. Failing to flush rules or kill
// processes is logged, failing to configure an interface is returned.
func Setup(ctx context.Context, cfg *SetupConfig) error {
	cfg = cfg.withDefaults()
	if cfg.FlushRules {
		if out, err := exec.CommandContext(ctx, "cangw", "-F").CombinedOutput(); err != nil {
			cfg.OnMessage(fmt.Sprintf("cangw -F: %v %s", err, out))
		} else {
			cfg.OnMessage("flushed cangw rules")
		}
	}
	if cfg.Kill != "" {
		err := exec.CommandContext(ctx, "pkill", "-f", cfg.Kill).Run()
		var exitErr *exec.ExitError
		switch {
		case err == nil:
			cfg.OnMessage(fmt.Sprintf("killed %q", cfg.Kill))
		case errors.As(err, &exitErr) && exitErr.ExitCode() == 1:
			// no process matched
		default:
			cfg.OnMessage(fmt.Sprintf("pkill: %v", err))
		}
	}
	if cfg.Bitrate == 0 {
		return nil
	}
	for _, iface := range cfg.Interfaces {
		if err := configure(ctx, cfg, iface); err != nil {
			return fmt.Errorf("failed to configure %s: %w", iface, err)
		}
	}
	return nil
}

func configure(ctx context.Context, cfg *SetupConfig, iface string) error {
	d, err := candevice.New(iface)
	if err != nil {
		return err
	}
	if err := d.SetDown(); err != nil {
		return fmt.Errorf("set down: %w", err)
	}
	err = retry.Do(func() error {
		if cfg.DataBitrate > 0 {
			// candevice has no data phase settings
			out, err := exec.CommandContext(ctx, "ip", "link", "set", "dev", iface, "type", "can",
				"bitrate", strconv.FormatUint(uint64(cfg.Bitrate), 10),
				"dbitrate", strconv.FormatUint(uint64(cfg.DataBitrate), 10),
				"fd", "on").CombinedOutput()
			if err != nil {
				return fmt.Errorf("ip link: %w: %s", err, out)
			}
		} else if err := d.SetBitrate(cfg.Bitrate); err != nil {
			return fmt.Errorf("set bitrate: %w", err)
		}
		return d.SetUp()
	},
		retry.Context(ctx),
		retry.Attempts(cfg.Attempts),
		retry.Delay(cfg.Delay),
		retry.OnRetry(func(n uint, err error) {
			cfg.OnMessage(fmt.Sprintf("%s retry #%d: %v", iface, n, err))
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}
	cfg.OnMessage(fmt.Sprintf("%s up at %d/%d bit/s", iface, cfg.Bitrate, cfg.DataBitrate))
	return nil
}
