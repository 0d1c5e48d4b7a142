package cmd

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/glimmer-tools/glimmer/internal/palette"
	"github.com/glimmer-tools/glimmer/pkg/scene"
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Suggest orb colors from a photo",
	Long: `Extract a small palette of suggested orb colors from a photo.

Colors are printed as hex strings, darkest first, so the first entry is
a reasonable background choice and the rest work as orb fills. With
--orbs, a randomized orb layout using the palette is printed instead, as
a JSON fragment ready to paste into a parameter document.

Examples:
  # Five suggested colors
  glimmer palette --input photo.jpg

  # Eight colors via k-means clustering
  glimmer palette --input photo.jpg --count 8 --method kmeans

  # A randomized background-orb layout from the photo's palette
  glimmer palette --input photo.jpg --orbs 4`,
	RunE: runPalette,
}

func init() {
	rootCmd.AddCommand(paletteCmd)

	paletteCmd.Flags().StringP("input", "i", "", "input photo (PNG or JPEG, required)")
	paletteCmd.Flags().IntP("count", "n", 5, "number of colors to suggest (1-16)")
	paletteCmd.Flags().String("method", "dominantcolor", "extraction method (dominantcolor|kmeans)")
	paletteCmd.Flags().Int("orbs", 0, "emit a randomized layout of this many orbs instead of colors")
	paletteCmd.Flags().Int64("seed", 0, "random seed for --orbs (default: time-based)")

	viper.BindPFlag("palette.input", paletteCmd.Flags().Lookup("input"))
	viper.BindPFlag("palette.count", paletteCmd.Flags().Lookup("count"))
	viper.BindPFlag("palette.method", paletteCmd.Flags().Lookup("method"))
	viper.BindPFlag("palette.orbs", paletteCmd.Flags().Lookup("orbs"))
	viper.BindPFlag("palette.seed", paletteCmd.Flags().Lookup("seed"))
}

func runPalette(cmd *cobra.Command, args []string) error {
	inputPath := viper.GetString("palette.input")
	if inputPath == "" {
		return fmt.Errorf("input photo is required (use --input)")
	}
	count := viper.GetInt("palette.count")
	if count < 1 || count > 16 {
		return fmt.Errorf("count must be between 1 and 16, got %d", count)
	}

	img, _, err := loadImage(inputPath)
	if err != nil {
		return err
	}

	method := palette.ParseMethod(viper.GetString("palette.method"))
	colors := palette.Extract(img, count, method)
	palette.SortByBrightness(colors)

	if n := viper.GetInt("palette.orbs"); n > 0 {
		seed := viper.GetInt64("palette.seed")
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		orbs := scene.GenerateOrbs(colors, n, rand.New(rand.NewSource(seed)))
		doc, err := json.MarshalIndent(map[string]any{
			"backgroundOrbs": map[string]any{"enabled": true, "orbs": orbs},
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(doc))
		return nil
	}

	for _, c := range colors {
		fmt.Fprintln(cmd.OutOrStdout(), c.Hex())
	}
	return nil
}
