package main

import (
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"bat-ads/internal/adapter/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print a generated demo catalog as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		campaigns, _ := cmd.Flags().GetInt("campaigns")
		creatives, _ := cmd.Flags().GetInt("creatives")
		seed, _ := cmd.Flags().GetInt64("seed")

		doc := catalog.Seed(rand.New(rand.NewSource(seed)), time.Now(), campaigns, creatives)
		data, err := catalog.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	catalogCmd.Flags().Int("campaigns", 5, "Number of campaigns")
	catalogCmd.Flags().Int("creatives", 10, "Creatives per campaign")
	catalogCmd.Flags().Int64("seed", time.Now().UnixNano(), "Random seed")
	rootCmd.AddCommand(catalogCmd)
}
