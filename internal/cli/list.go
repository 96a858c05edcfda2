package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored embedding batches and computed targets",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	batches, err := st.ListBatches()
	if err != nil {
		return fmt.Errorf("failed to list batches: %w", err)
	}

	fmt.Printf("Batches (%d):\n", len(batches))
	for _, b := range batches {
		rows, dim := b.Tensor.MatShape()
		fmt.Printf("  %-30s %-10s %-10s %dx%d\n", b.ID, b.Dataset, b.Modality, rows, dim)
	}

	ids, err := st.ListTargetIDs()
	if err != nil {
		return fmt.Errorf("failed to list targets: %w", err)
	}

	fmt.Printf("\nTargets (%d):\n", len(ids))
	for _, id := range ids {
		fmt.Printf("  %s\n", id)
	}

	return nil
}
