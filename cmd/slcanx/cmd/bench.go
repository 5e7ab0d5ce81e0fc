package cmd

import (
	"encoding/binary"
	"fmt"
	"log"
	"time"

	"github.com/roffe/slcanx"
	"github.com/roffe/slcanx/pkg/bar"
	"github.com/roffe/slcanx/pkg/frame"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var benchCmd = &cobra.Command{
	Use:   "bench <tx channel> [rx channel]",
	Short: "flood a channel with FD frames, optionally counting them on a second channel wired to the first",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		count, err := f.GetInt("count")
		if err != nil {
			return err
		}
		size, err := f.GetInt("size")
		if err != nil {
			return err
		}
		if !frame.ValidLength(size) || size < 4 {
			return fmt.Errorf("invalid frame size %d", size)
		}
		timeout, err := f.GetDuration("timeout")
		if err != nil {
			return err
		}

		dev, err := openDevice(cmd)
		if err != nil {
			return err
		}
		channels, err := openChannels(cmd, dev, args)
		if err != nil {
			dev.Close()
			return err
		}
		defer closeDevice(dev, channels)

		var rx *slcanx.Subscriber
		if len(channels) == 2 {
			rx = channels[1].Subscribe(count)
			defer rx.Close()
		}

		pb := bar.New(count, fmt.Sprintf("ch%d", channels[0].ID()))
		start := time.Now()
		errg, ctx := errgroup.WithContext(cmd.Context())
		errg.Go(func() error {
			data := make([]byte, size)
			for i := 0; i < count; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				binary.BigEndian.PutUint32(data, uint32(i))
				if err := channels[0].Send(frame.NewFD(0x123, data, false, true)); err != nil {
					return err
				}
				pb.Add(1)
			}
			return nil
		})
		received := 0
		if rx != nil {
			errg.Go(func() error {
				deadline := time.After(timeout)
				for received < count {
					select {
					case <-deadline:
						return fmt.Errorf("received %d of %d frames within %s", received, count, timeout)
					case <-ctx.Done():
						return ctx.Err()
					case _, ok := <-rx.Chan():
						if !ok {
							return dev.Err()
						}
						received++
					}
				}
				return nil
			})
		}
		err = errg.Wait()
		elapsed := time.Since(start)
		fmt.Println()
		log.Printf("%d frames in %s, %.0f frames/s", count, elapsed.Round(time.Millisecond), float64(count)/elapsed.Seconds())
		if rx != nil {
			log.Printf("received %d frames", received)
		}
		log.Println(dev.Stats())
		return err
	},
}

func init() {
	addBusFlags(benchCmd)
	bf := benchCmd.Flags()
	bf.IntP("count", "n", 10000, "frames to send")
	bf.Int("size", 64, "payload bytes per frame")
	bf.Duration("timeout", 10*time.Second, "how long to wait for frames on the rx channel")
	rootCmd.AddCommand(benchCmd)
}
