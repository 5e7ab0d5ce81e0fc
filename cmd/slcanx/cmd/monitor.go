package cmd

import (
	"fmt"
	"log"

	"github.com/roffe/slcanx"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor [channels...]",
	Short: "print frames received on the given channels",
	Args:  cobra.MaximumNArgs(slcanx.MaxChannels),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"0"}
		}
		colors, err := cmd.Flags().GetBool("color")
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		dev, err := openDevice(cmd)
		if err != nil {
			return err
		}
		channels, err := openChannels(cmd, dev, args)
		if err != nil {
			dev.Close()
			return err
		}

		errg, gctx := errgroup.WithContext(ctx)
		for _, ch := range channels {
			sub := ch.Subscribe(1024)
			errg.Go(func() error {
				defer sub.Close()
				for {
					msg, err := sub.Wait(gctx)
					if err != nil {
						if gctx.Err() != nil {
							return nil
						}
						return err
					}
					if colors {
						fmt.Printf("%s %d || %s\n", msg.Time.Format("15:04:05.000000"), msg.Channel, msg.Frame.ColorString())
					} else {
						fmt.Printf("%s %s\n", msg.Time.Format("15:04:05.000000"), msg)
					}
				}
			})
		}
		err = errg.Wait()
		closeDevice(dev, channels)
		log.Println(dev.Stats())
		return err
	},
}

func init() {
	addBusFlags(monitorCmd)
	monitorCmd.Flags().BoolP("color", "c", false, "colorize output")
	rootCmd.AddCommand(monitorCmd)
}
