package cmd

import (
	"fmt"
	"strconv"

	"github.com/roffe/slcanx"
	"github.com/spf13/cobra"
)

const (
	flagBitrate         = "bitrate"
	flagDataBitrate     = "data-bitrate"
	flagSamplePoint     = "sample-point"
	flagDataSamplePoint = "data-sample-point"
	flagListenOnly      = "listen-only"
)

func addBusFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int(flagBitrate, 500000, "nominal bitrate in bit/s")
	f.Int(flagDataBitrate, 0, "FD data bitrate in Mbit/s (1-15), 0 = leave unchanged")
	f.Float64(flagSamplePoint, 0, "nominal sample point in percent, unset = leave unchanged")
	f.Float64(flagDataSamplePoint, 0, "data sample point in percent, unset = leave unchanged")
	f.Bool(flagListenOnly, false, "open channels in listen only mode")
}

func parseChannel(s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil || n >= slcanx.MaxChannels {
		return 0, fmt.Errorf("invalid channel %q, valid channels are 0-%d", s, slcanx.MaxChannels-1)
	}
	return uint8(n), nil
}

// optionalFloat returns nil unless the flag was given on the command line.
func optionalFloat(cmd *cobra.Command, name string) (*float64, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// openChannels configures and opens the channels named in args.
func openChannels(cmd *cobra.Command, dev *slcanx.Device, args []string) ([]*slcanx.Channel, error) {
	f := cmd.Flags()
	bitrate, err := f.GetInt(flagBitrate)
	if err != nil {
		return nil, err
	}
	dataBitrate, err := f.GetInt(flagDataBitrate)
	if err != nil {
		return nil, err
	}
	sp, err := optionalFloat(cmd, flagSamplePoint)
	if err != nil {
		return nil, err
	}
	dsp, err := optionalFloat(cmd, flagDataSamplePoint)
	if err != nil {
		return nil, err
	}
	listenOnly, err := f.GetBool(flagListenOnly)
	if err != nil {
		return nil, err
	}

	var channels []*slcanx.Channel
	for _, arg := range args {
		id, err := parseChannel(arg)
		if err != nil {
			return nil, err
		}
		ch, err := dev.Channel(id)
		if err != nil {
			return nil, err
		}
		if err := ch.SetBitrate(bitrate); err != nil {
			return nil, err
		}
		if dataBitrate != 0 {
			if err := ch.SetDataBitrate(dataBitrate); err != nil {
				return nil, err
			}
		}
		if err := ch.SetSamplePoint(sp, dsp); err != nil {
			return nil, err
		}
		if err := ch.SetListenOnly(listenOnly); err != nil {
			return nil, err
		}
		if err := ch.Open(); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, nil
}
