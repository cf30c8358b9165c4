package commands

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v2"
	"github.com/spf13/cobra"

	"github.com/ffenix113/smp-tool/client"
	"github.com/ffenix113/smp-tool/smp/imgmgmt"
)

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Image management commands (info, flash, test, confirm)",
}

var appInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "List the device's images",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		images, err := c.Info()
		if err != nil {
			return err
		}
		for _, img := range images {
			printImage(img)
		}
		return nil
	},
}

func printImage(img imgmgmt.ImageDescriptor) {
	fmt.Printf("slot: %d\n", img.Slot)
	fmt.Printf("  version: %s\n", img.Version)
	if img.Hash != nil {
		fmt.Printf("  hash: %x\n", img.Hash)
	}
	fmt.Printf("  active: %t\n", img.Active)
	fmt.Printf("  confirmed: %t\n", img.Confirmed)
	fmt.Printf("  bootable: %t\n", img.Bootable)
	fmt.Printf("  pending: %t\n", img.Pending)
}

var (
	flashSlot      uint32
	flashChunkSize uint32
	flashUpgrade   bool
)

var appFlashCmd = &cobra.Command{
	Use:   "flash <file>",
	Short: "Upload a firmware image to the device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		firmware, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		c, err := newClient()
		if err != nil {
			return err
		}

		bar := progressbar.NewOptions(len(firmware),
			progressbar.OptionSetDescription("uploading"),
		)

		var slot *uint32
		if cmd.Flags().Changed("slot") {
			slot = &flashSlot
		}

		opts := client.FlashOptions{
			Slot:      slot,
			ChunkSize: flashChunkSize,
			Upgrade:   flashUpgrade,
			Progress: func(written, total uint32) {
				_ = bar.Set(int(written))
			},
		}
		return c.Flash(firmware, opts)
	},
}

var appTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Mark an image pending for the next boot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetState(cmd, func(c *client.Client, hash []byte) ([]imgmgmt.ImageDescriptor, error) {
			return c.Test(hash)
		})
	},
}

var appConfirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Permanently confirm the image with the given hash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetState(cmd, func(c *client.Client, hash []byte) ([]imgmgmt.ImageDescriptor, error) {
			return c.Confirm(hash)
		})
	},
}

var hashHex string

func runSetState(cmd *cobra.Command, fn func(*client.Client, []byte) ([]imgmgmt.ImageDescriptor, error)) error {
	hash, err := client.DecodeHashHex(hashHex)
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	images, err := fn(c, hash)
	if err != nil {
		return err
	}
	for _, img := range images {
		printImage(img)
	}
	return nil
}

func init() {
	appFlashCmd.Flags().Uint32Var(&flashSlot, "slot", 0, "target image slot")
	appFlashCmd.Flags().Uint32Var(&flashChunkSize, "chunk-size", 256, "bytes per write-chunk request")
	appFlashCmd.Flags().BoolVar(&flashUpgrade, "upgrade", false, "restrict the device to accepting only newer firmware")

	appTestCmd.Flags().StringVar(&hashHex, "hash", "", "image SHA-256 hash, hex-encoded")
	_ = appTestCmd.MarkFlagRequired("hash")
	appConfirmCmd.Flags().StringVar(&hashHex, "hash", "", "image SHA-256 hash, hex-encoded")
	_ = appConfirmCmd.MarkFlagRequired("hash")

	appCmd.AddCommand(appInfoCmd)
	appCmd.AddCommand(appFlashCmd)
	appCmd.AddCommand(appTestCmd)
	appCmd.AddCommand(appConfirmCmd)
}
