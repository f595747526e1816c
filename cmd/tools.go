package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/server"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the server exposes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cs, err := server.Connect(ctx, server.New(Version, services.Tools), Version)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cs.Close()

		res, err := cs.ListTools(ctx, nil)
		if err != nil {
			return fmt.Errorf("list tools: %w", err)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, tool := range res.Tools {
			fmt.Fprintf(w, "%s\t%s\n", tool.Name, firstSentence(tool.Description))
		}
		return w.Flush()
	},
}

func firstSentence(s string) string {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '.' && s[i+1] == ' ' {
			return s[:i+1]
		}
	}
	return s
}
