package cmd

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/glimmer-tools/glimmer/internal/bgremove"
	"github.com/glimmer-tools/glimmer/internal/render"
	"github.com/glimmer-tools/glimmer/pkg/scene"

	_ "image/jpeg"
	_ "image/png"
)

const version = "1.0.0"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "glimmer",
	Short: "Render silhouette compositions from a photo",
	Long: `glimmer extracts the subject silhouette from a photo and renders a
stylized composition: a flat or gradient background, light orbs, glowing
outline strokes around the subject, and an optional directional blur.

Scene parameters live in a JSON document; any field left out keeps its
default, so a params file only needs the values it changes.

Examples:
  # Render a photo with default parameters to Instagram portrait size
  glimmer --input photo.jpg --output out.png

  # Render with a parameter document and a pre-computed mask
  glimmer --input photo.jpg --params scene.json --mask mask.png -o out.png

  # Render at a custom canvas size
  glimmer --input photo.jpg --width 1920 --height 1080 -o wallpaper.png

  # Start HTTP server
  glimmer serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("input") == "" {
			return cmd.Help()
		}
		return runRender(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.glimmer.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log pipeline diagnostics to stderr")

	// Render flags on the root for default behavior
	rootCmd.Flags().StringP("input", "i", "", "input photo (PNG or JPEG, required)")
	rootCmd.Flags().StringP("output", "o", "", "output PNG file (default: stdout)")
	rootCmd.Flags().StringP("params", "p", "", "scene parameter JSON document")
	rootCmd.Flags().StringP("mask", "m", "", "pre-computed mask image, skips local segmentation")
	rootCmd.Flags().String("save-params", "", "write the fully resolved parameter document to this file")
	rootCmd.Flags().Int("width", render.ExportWidth, "canvas width in pixels")
	rootCmd.Flags().Int("height", render.ExportHeight, "canvas height in pixels")

	// Background-removal service (optional)
	rootCmd.Flags().String("bgremove-url", "", "background-removal service URL")
	rootCmd.Flags().String("bgremove-key", "", "background-removal service API key")

	// Bind flags to viper for root command
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("input", rootCmd.Flags().Lookup("input"))
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("params", rootCmd.Flags().Lookup("params"))
	viper.BindPFlag("mask", rootCmd.Flags().Lookup("mask"))
	viper.BindPFlag("save-params", rootCmd.Flags().Lookup("save-params"))
	viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	viper.BindPFlag("height", rootCmd.Flags().Lookup("height"))
	viper.BindPFlag("bgremove.url", rootCmd.Flags().Lookup("bgremove-url"))
	viper.BindPFlag("bgremove.key", rootCmd.Flags().Lookup("bgremove-key"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".glimmer" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".glimmer")
	}

	viper.SetEnvPrefix("GLIMMER")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger returns a slog.Logger honoring --verbose; silent otherwise.
func newLogger() *slog.Logger {
	if viper.GetBool("verbose") {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	inputPath := viper.GetString("input")
	if inputPath == "" {
		return fmt.Errorf("input photo is required (use --input)")
	}
	width := viper.GetInt("width")
	height := viper.GetInt("height")
	if width <= 0 || height <= 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", width, height)
	}

	src, srcData, err := loadImage(inputPath)
	if err != nil {
		return err
	}

	params := scene.Defaults()
	if paramsPath := viper.GetString("params"); paramsPath != "" {
		params, err = scene.LoadFile(paramsPath)
		if err != nil {
			return fmt.Errorf("load params: %w", err)
		}
	}

	if savePath := viper.GetString("save-params"); savePath != "" {
		if err := scene.SaveFile(savePath, params); err != nil {
			return fmt.Errorf("save params: %w", err)
		}
	}

	var external image.Image
	if maskPath := viper.GetString("mask"); maskPath != "" {
		external, _, err = loadImage(maskPath)
		if err != nil {
			return fmt.Errorf("load mask: %w", err)
		}
	} else if url := viper.GetString("bgremove.url"); url != "" {
		remover := bgremove.New(url, viper.GetString("bgremove.key"))
		remover.Logger = newLogger()
		external = remover.RemoveOrNil(cmd.Context(), srcData)
	}

	r := render.New()
	if l := newLogger(); l != nil {
		r.Logger = l
	}
	png, err := r.RenderPNG(width, height, src, params, external)
	if err != nil {
		return err
	}

	outputPath := viper.GetString("output")
	if outputPath == "" || outputPath == "-" {
		_, err = os.Stdout.Write(png)
		return err
	}
	if err := os.WriteFile(outputPath, png, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%dx%d, %d bytes)\n", outputPath, width, height, len(png))
	return nil
}

// loadImage reads and decodes an image file, also returning the raw bytes
// for services that want the original encoding.
func loadImage(path string) (image.Image, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, data, nil
}
