package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var osCmd = &cobra.Command{
	Use:   "os",
	Short: "OS management commands (echo, reset)",
}

var osEchoCmd = &cobra.Command{
	Use:   "echo <msg>",
	Short: "Send an echo request and print the device's reply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		reply, err := c.Echo(args[0])
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	},
}

var osResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reboot the device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		return c.Reset()
	},
}

func init() {
	osCmd.AddCommand(osEchoCmd)
	osCmd.AddCommand(osResetCmd)
}
