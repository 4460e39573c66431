package main

import (
	"fmt"

	"github.com/revuai/revuchat/internal/services"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := services.NewBoltDB(cfg.StorePath)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.Conversations(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list conversations: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No stored conversations.")
			return nil
		}

		for _, record := range records {
			title := record.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%s  %s  product=%s  %s\n",
				record.ID,
				record.StartedAt.Format("2006-01-02 15:04"),
				record.ProductID,
				title,
			)
		}
		return nil
	},
}
