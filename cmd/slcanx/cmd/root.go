package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/roffe/slcanx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "slcanx",
	Short:        "slcanx four channel CAN-FD adapter tool",
	SilenceUsage: true,
}

// Execute runs the command line against ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

const (
	flagPort     = "port"
	flagBaudrate = "baudrate"
	flagDebug    = "debug"
	flagWindow   = "window"
)

func init() {
	log.SetFlags(log.Lshortfile | log.LstdFlags)

	pf := rootCmd.PersistentFlags()
	pf.StringP(flagPort, "p", "", "com-port, empty = select")
	pf.IntP(flagBaudrate, "b", slcanx.DefaultPortBaudrate, "baudrate")
	pf.BoolP(flagDebug, "d", false, "debug mode")
	pf.Duration(flagWindow, slcanx.DefaultGroupWindow, "write grouping window, negative writes every command on its own")
}

func openDevice(cmd *cobra.Command) (*slcanx.Device, error) {
	pf := cmd.Flags()
	port, err := pf.GetString(flagPort)
	if err != nil {
		return nil, err
	}
	if port == "" {
		if port, err = selectPort(); err != nil {
			return nil, err
		}
	}
	baudrate, err := pf.GetInt(flagBaudrate)
	if err != nil {
		return nil, err
	}
	debug, err := pf.GetBool(flagDebug)
	if err != nil {
		return nil, err
	}
	window, err := pf.GetDuration(flagWindow)
	if err != nil {
		return nil, err
	}
	// the device outlives the command context so channels can be closed
	// cleanly on ctrl-c
	return slcanx.Open(context.Background(), &slcanx.Config{
		Debug:        debug,
		Port:         port,
		PortBaudrate: baudrate,
		GroupWindow:  window,
	})
}

func selectPort() (string, error) {
	ports, err := slcanx.ListPorts()
	if err != nil {
		return "", err
	}
	if len(ports) == 1 {
		return ports[0].Name, nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return "", errors.New("several serial ports found, select one with --port")
	}
	items := make([]string, len(ports))
	for i, p := range ports {
		items[i] = describePort(p.Name, p.IsUSB, p.VID, p.PID, p.SerialNumber)
	}
	prompt := promptui.Select{
		Label:    "Select port",
		HideHelp: true,
		Items:    items,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return ports[idx].Name, nil
}

func describePort(name string, usb bool, vid, pid, serial string) string {
	if !usb {
		return name
	}
	if serial == "" {
		return fmt.Sprintf("%s (USB %s:%s)", name, vid, pid)
	}
	return fmt.Sprintf("%s (USB %s:%s %s)", name, vid, pid, serial)
}

// closeDevice closes the CAN channels, waits for the worker to flush and
// stops it.
func closeDevice(dev *slcanx.Device, channels []*slcanx.Channel) {
	for _, ch := range channels {
		if err := ch.Close(); err != nil {
			log.Println(err)
		}
	}
	time.Sleep(10 * slcanx.DefaultPollInterval)
	dev.Close()
}
