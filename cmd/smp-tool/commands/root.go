// Package commands implements the smp-tool CLI commands.
package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ffenix113/smp-tool/client"
	"github.com/ffenix113/smp-tool/smp/udp"
)

var v = viper.New()

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "smp-tool",
	Short: "Manage MCUboot-based firmware over the Simple Management Protocol",
	Long: `smp-tool talks SMP (an 8-byte-header + CBOR request/response protocol)
to a device over UDP: enumerate images, upload new firmware, mark an
image pending or confirmed, run shell commands, echo, and reset.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.main.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		PrintErr("%s", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("transport", "udp", "transport to use (only \"udp\" is supported)")
	rootCmd.PersistentFlags().String("dest-host", "127.0.0.1", "device host to connect to")
	rootCmd.PersistentFlags().Int("udp-port", 1337, "device UDP port")
	rootCmd.PersistentFlags().Int("timeout-ms", 3000, "per-request timeout in milliseconds")

	v.SetEnvPrefix("SMP_TOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	_ = v.BindPFlag("transport", rootCmd.PersistentFlags().Lookup("transport"))
	_ = v.BindPFlag("dest-host", rootCmd.PersistentFlags().Lookup("dest-host"))
	_ = v.BindPFlag("udp-port", rootCmd.PersistentFlags().Lookup("udp-port"))
	_ = v.BindPFlag("timeout-ms", rootCmd.PersistentFlags().Lookup("timeout-ms"))

	rootCmd.AddCommand(osCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(appCmd)
}

// newClient dials the configured device and returns a ready-to-use
// Client with its per-request timeout already set.
func newClient() (*client.Client, error) {
	if transport := v.GetString("transport"); transport != "udp" {
		return nil, fmt.Errorf("unsupported transport %q: only udp is implemented", transport)
	}

	addr := fmt.Sprintf("%s:%d", v.GetString("dest-host"), v.GetInt("udp-port"))
	link, err := udp.Dial(addr)
	if err != nil {
		return nil, err
	}
	link.SetReceiveTimeout(time.Duration(v.GetInt("timeout-ms")) * time.Millisecond)

	return client.New(link), nil
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
