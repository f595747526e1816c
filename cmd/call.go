package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/server"
)

var (
	callArgs   string
	callOutput string
)

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Call one tool and print its JSON result",
	Example: `  epo-mcp call get_legal --args '{"reference_type":"publication","input_data":{"number":"EP1000000"}}'
  epo-mcp call get_image --args '{"path":"EP/1000000/PA/firstpage"}' --output page1.tiff`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var arguments map[string]any
		if err := json.Unmarshal([]byte(callArgs), &arguments); err != nil {
			return fmt.Errorf("--args is not a JSON object: %w", err)
		}

		ctx := cmd.Context()
		cs, err := server.Connect(ctx, server.New(Version, services.Tools), Version)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cs.Close()

		res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: args[0], Arguments: arguments})
		if err != nil {
			return fmt.Errorf("call %s: %w", args[0], err)
		}

		var text string
		for _, content := range res.Content {
			switch c := content.(type) {
			case *mcp.TextContent:
				if text == "" {
					text = c.Text
				}
			case *mcp.ImageContent:
				if callOutput == "" {
					continue
				}
				if err := os.WriteFile(callOutput, c.Data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", callOutput, err)
				}
				logger.Infow("Image written", "path", callOutput, "mime_type", c.MIMEType, "bytes", len(c.Data))
			}
		}
		if res.IsError {
			return errors.New(text)
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	callCmd.Flags().StringVar(&callArgs, "args", "{}", "Tool arguments as a JSON object")
	callCmd.Flags().StringVarP(&callOutput, "output", "o", "", "Write image content to this file")
}
