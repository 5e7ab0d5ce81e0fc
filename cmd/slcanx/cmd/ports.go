package cmd

import (
	"fmt"

	"github.com/roffe/slcanx"
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "list serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := slcanx.ListPorts()
		if err != nil {
			return err
		}
		for _, p := range ports {
			fmt.Println(describePort(p.Name, p.IsUSB, p.VID, p.PID, p.SerialNumber))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
