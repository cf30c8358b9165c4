package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ffenix113/smp-tool/smp"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run shell commands on the device",
}

var shellExecCmd = &cobra.Command{
	Use:   "exec <argv...>",
	Short: "Run one shell command and print its stdout",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		return runExec(c, args)
	},
}

var shellInteractiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Read commands from stdin and run each on the device",
	Long: `interactive reads one line at a time from stdin and runs it as a shell
command on the device, printing its stdout. There is no history or line
editing: type a command, press enter, see the result.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if err := runExec(c, strings.Fields(line)); err != nil {
				PrintErr("%s", err)
			}
		}
		return scanner.Err()
	},
}

func runExec(c execer, argv []string) error {
	stdout, err := c.Exec(argv)
	if stdout != "" {
		fmt.Print(stdout)
		if !strings.HasSuffix(stdout, "\n") {
			fmt.Println()
		}
	}

	var nonZero *smp.ShellNonZeroExit
	if errors.As(err, &nonZero) {
		return fmt.Errorf("command exited %d", nonZero.Ret)
	}
	return err
}

// execer is the subset of *client.Client interactive/exec need; kept as
// an interface so tests can swap in a fake.
type execer interface {
	Exec(argv []string) (string, error)
}

func init() {
	shellCmd.AddCommand(shellExecCmd)
	shellCmd.AddCommand(shellInteractiveCmd)
}
