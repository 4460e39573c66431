package main

import (
	"fmt"
	"os"

	"github.com/revuai/revuchat/internal/services"
	"github.com/revuai/revuchat/internal/transcript"
	"github.com/spf13/cobra"
)

var exportOutPath string

var exportCmd = &cobra.Command{
	Use:   "export <conversation-id>",
	Short: "Export a stored conversation as an HTML transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := services.NewBoltDB(cfg.StorePath)
		if err != nil {
			return err
		}
		defer store.Close()

		record, err := store.Conversation(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		messages, err := store.Messages(cmd.Context(), record.ID)
		if err != nil {
			return fmt.Errorf("failed to load messages: %w", err)
		}

		renderer, err := transcript.NewRenderer()
		if err != nil {
			return err
		}

		out := os.Stdout
		if exportOutPath != "" {
			f, err := os.Create(exportOutPath)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		return renderer.Render(out, record, messages)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutPath, "output", "o", "", "write transcript to file instead of stdout")
}
