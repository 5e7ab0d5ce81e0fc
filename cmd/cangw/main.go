// Command cangw forwards frames from several SocketCAN interfaces to one
// CAN-FD interface, upgrading every frame to FD with bit rate switching.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roffe/slcanx/pkg/gateway"
	"github.com/roffe/slcanx/pkg/socketcan"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "cangw --dst <iface> <source iface>...",
	Short:         "forward classical CAN interfaces to one CAN-FD interface",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	log.SetFlags(log.Lshortfile | log.LstdFlags)
	f := rootCmd.Flags()
	f.String("dst", "can3", "destination interface")
	f.BoolP("flush", "F", false, "flush kernel cangw rules and stop competing candump before starting")
	f.Uint32("bitrate", 0, "configure all interfaces with this nominal bitrate, 0 = leave as is")
	f.Uint32("data-bitrate", 0, "data bitrate in bit/s for the destination, needs --bitrate")
	f.BoolP("debug", "d", false, "print every forwarded frame")
	f.Duration("stats", 0, "print statistics at this interval")
}

func run(cmd *cobra.Command, sources []string) error {
	f := cmd.Flags()
	dst, _ := f.GetString("dst")
	flush, _ := f.GetBool("flush")
	bitrate, _ := f.GetUint32("bitrate")
	dataBitrate, _ := f.GetUint32("data-bitrate")
	debug, _ := f.GetBool("debug")
	statsInterval, _ := f.GetDuration("stats")
	ctx := cmd.Context()

	setup := &gateway.SetupConfig{
		FlushRules: flush,
		Bitrate:    bitrate,
		Interfaces: sources,
	}
	if flush {
		setup.Kill = gateway.DefaultKillPattern(sources)
	}
	if err := gateway.Setup(ctx, setup); err != nil {
		return err
	}
	if bitrate != 0 {
		// the destination is the only FD interface
		if err := gateway.Setup(ctx, &gateway.SetupConfig{
			Interfaces:  []string{dst},
			Bitrate:     bitrate,
			DataBitrate: dataBitrate,
		}); err != nil {
			return err
		}
	}

	out, err := socketcan.Dial(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	var srcs []gateway.Source
	for _, name := range sources {
		c, err := socketcan.Dial(name)
		if err != nil {
			for _, s := range srcs {
				s.Close()
			}
			return err
		}
		srcs = append(srcs, c)
	}

	fw := gateway.NewForwarder(out, srcs, &gateway.Config{Debug: debug})
	log.Printf("forwarding %v -> %s (CAN FD BRS)", sources, dst)
	if statsInterval > 0 {
		go func() {
			t := time.NewTicker(statsInterval)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					log.Println(fw.Stats())
				}
			}
		}()
	}
	err = fw.Run(ctx)
	log.Println(fw.Stats())
	return err
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
