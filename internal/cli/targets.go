package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"distill/internal/usecase"
)

var (
	targetsImageID  string
	targetsTextID   string
	targetsOutputID string
	targetsPairFile string
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Compute teacher targets for stored embedding batch pairs",
	Long: `Compute soft distillation targets for image/text embedding batch
pairs and persist them in the store.

Examples:
  distill targets -i rsicd-img -t rsicd-txt      # Single pair
  distill targets --pairs pairs.json             # Bulk from a pair list`,
	RunE: runTargets,
}

func init() {
	targetsCmd.Flags().StringVarP(&targetsImageID, "image", "i", "", "image batch ID")
	targetsCmd.Flags().StringVarP(&targetsTextID, "text", "t", "", "text batch ID")
	targetsCmd.Flags().StringVarP(&targetsOutputID, "out", "o", "", "ID to store the targets under (default image/text)")
	targetsCmd.Flags().StringVar(&targetsPairFile, "pairs", "", "JSON file with a list of {image, text, out} pairs")
	rootCmd.AddCommand(targetsCmd)
}

func runTargets(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	uc := usecase.NewTargetsUseCase(st, targetConfig(GetConfig()))

	if targetsPairFile != "" {
		return runTargetsBulk(uc)
	}

	if targetsImageID == "" || targetsTextID == "" {
		return fmt.Errorf("either --pairs or both --image and --text are required")
	}

	pair, err := uc.Compute(usecase.PairSpec{
		ImageID:  targetsImageID,
		TextID:   targetsTextID,
		TargetID: targetsOutputID,
	})
	if err != nil {
		return err
	}

	m, n := pair.Image.MatShape()
	fmt.Printf("Stored targets %q (%dx%d per branch)\n", pair.ID, m, n)
	return nil
}

type pairFileEntry struct {
	Image string `json:"image"`
	Text  string `json:"text"`
	Out   string `json:"out,omitempty"`
}

func runTargetsBulk(uc *usecase.TargetsUseCase) error {
	data, err := os.ReadFile(targetsPairFile)
	if err != nil {
		return fmt.Errorf("failed to read pair file: %w", err)
	}

	var entries []pairFileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse pair file: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("pair file %s lists no pairs", targetsPairFile)
	}

	specs := make([]usecase.PairSpec, len(entries))
	for i, e := range entries {
		specs[i] = usecase.PairSpec{ImageID: e.Image, TextID: e.Text, TargetID: e.Out}
	}

	bar := progressbar.NewOptions(len(specs),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Computing[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
	progress := func(processed, total int, current string) {
		bar.Set(processed)
	}

	result, err := uc.ComputeAll(specs, progress)
	if err != nil {
		return err
	}

	fmt.Printf("\nTargets computed: %d\n", result.PairsComputed)
	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	return nil
}
