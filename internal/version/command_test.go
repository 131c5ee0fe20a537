package version

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// TestAttachCobraVersionCommand runs both the subcommand and the flag.
func TestAttachCobraVersionCommand(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{"version"}, {"--version"}} {
		root := &cobra.Command{Use: "alarm-test", Run: func(*cobra.Command, []string) {}}
		AttachCobraVersionCommand(root)

		var out bytes.Buffer

		root.SetOut(&out)
		root.SetArgs(args)

		require.NoError(t, root.Execute())
		require.Equal(t, Full(), strings.TrimSpace(out.String()), strings.Join(args, " "))
	}
}
