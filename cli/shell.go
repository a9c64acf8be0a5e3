package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell mode",
		Long: "Interactive shell mode. The catalog is loaded once and filters, " +
			"sort order and page persist between commands. Type exit or quit to leave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			for {
				fmt.Fprint(out, "catalog> ")
				line, err := in.ReadString('\n')
				if err != nil && line == "" {
					fmt.Fprintln(out)
					return nil
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				argv, perr := splitArgs(line)
				if perr != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), perr)
					continue
				}
				if argv[0] == "shell" {
					fmt.Fprintln(cmd.ErrOrStderr(), "already in shell")
					continue
				}

				rootCmd.SetArgs(argv)
				ran, err := rootCmd.ExecuteC()
				if err != nil {
					printError(cmd.ErrOrStderr(), err)
				}
				resetFlags(ran)
				rootCmd.SetArgs(nil)
			}
		},
	}
}

// resetFlags restores the defaults of c's local flags so a shell command
// line never inherits flag values from the previous one.
func resetFlags(c *cobra.Command) {
	if c == nil {
		return
	}
	resetFlagSet(c.Flags())
}

func resetFlagSet(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
}

// splitArgs splits a shell line on whitespace, keeping single- or
// double-quoted sections together.
func splitArgs(line string) ([]string, error) {
	var args []string
	var cur strings.Builder
	var quote rune
	inArg := false

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
