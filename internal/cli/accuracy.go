package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"distill/internal/usecase"
)

var (
	accImageID   string
	accTextID    string
	accBatchSize int
)

var accuracyCmd = &cobra.Command{
	Use:   "accuracy",
	Short: "Compute retrieval accuracy for a stored batch pair",
	Long: `Compute bidirectional image/text retrieval accuracy from the
similarity logits of a stored embedding batch pair.

Example:
  distill accuracy -i rsicd-img -t rsicd-txt`,
	RunE: runAccuracy,
}

func init() {
	accuracyCmd.Flags().StringVarP(&accImageID, "image", "i", "", "image batch ID (required)")
	accuracyCmd.Flags().StringVarP(&accTextID, "text", "t", "", "text batch ID (required)")
	accuracyCmd.Flags().IntVarP(&accBatchSize, "batch-size", "b", 0, "normalizer (default: image batch row count)")
	accuracyCmd.MarkFlagRequired("image")
	accuracyCmd.MarkFlagRequired("text")
	rootCmd.AddCommand(accuracyCmd)
}

func runAccuracy(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	uc := usecase.NewEvaluateUseCase(st)
	acc, err := uc.Accuracy(accImageID, accTextID, accBatchSize)
	if err != nil {
		return err
	}

	fmt.Printf("accuracy: %.4f\n", acc)
	return nil
}
