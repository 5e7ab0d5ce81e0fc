package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <channel> <frame>",
	Short: "send a frame, 123#DEADBEEF, 12345678#00, 123#R or 123##1<fd data>",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := parseFrame(args[1])
		if err != nil {
			return err
		}
		repeat, err := cmd.Flags().GetDuration("repeat")
		if err != nil {
			return err
		}

		dev, err := openDevice(cmd)
		if err != nil {
			return err
		}
		channels, err := openChannels(cmd, dev, args[:1])
		if err != nil {
			dev.Close()
			return err
		}
		defer closeDevice(dev, channels)
		ch := channels[0]

		if repeat <= 0 {
			return ch.Send(f)
		}
		log.Printf("sending %s every %s on channel %d, ctrl-c to stop", f, repeat, ch.ID())
		return ch.SendPeriodic(cmd.Context(), f, repeat, nil)
	},
}

func init() {
	addBusFlags(sendCmd)
	sendCmd.Flags().Duration("repeat", 0, "send the frame periodically until interrupted")
	rootCmd.AddCommand(sendCmd)
}
