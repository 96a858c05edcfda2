package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"distill/internal/loss"
	"distill/internal/usecase"
)

var (
	mseImageID    string
	mseTextID     string
	mseSemanticID string
	mseReduction  string
)

var mseCmd = &cobra.Command{
	Use:   "mse",
	Short: "Score semantic alignment of a stored batch pair",
	Long: `Compare the CLIP similarity structure of a stored image/text batch
pair against a stored semantic reference batch and print the mean squared
error.

Example:
  distill mse -i rsicd-img -t rsicd-txt -s rsicd-sbert`,
	RunE: runMSE,
}

func init() {
	mseCmd.Flags().StringVarP(&mseImageID, "image", "i", "", "image batch ID (required)")
	mseCmd.Flags().StringVarP(&mseTextID, "text", "t", "", "text batch ID (required)")
	mseCmd.Flags().StringVarP(&mseSemanticID, "semantic", "s", "", "semantic batch ID (required)")
	mseCmd.Flags().StringVarP(&mseReduction, "reduction", "r", "", "reduction: mean, sum or none (default from config)")
	mseCmd.MarkFlagRequired("image")
	mseCmd.MarkFlagRequired("text")
	mseCmd.MarkFlagRequired("semantic")
	rootCmd.AddCommand(mseCmd)
}

func runMSE(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	keyword := mseReduction
	if keyword == "" {
		keyword = cfg.Loss.Reduction
	}
	red, err := loss.ParseReduction(keyword)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	uc := usecase.NewEvaluateUseCase(st)
	out, err := uc.AlignmentMSE(mseImageID, mseTextID, mseSemanticID, red, loss.Options{LegacySum: cfg.Loss.LegacySum})
	if err != nil {
		return err
	}

	if red == loss.ReductionNone {
		data := out.Data()
		fmt.Printf("ii_mse: %.6f\nit_mse: %.6f\ntt_mse: %.6f\n", data[0], data[1], data[2])
		return nil
	}
	fmt.Printf("mse (%s): %.6f\n", red, out.Data()[0])
	return nil
}
