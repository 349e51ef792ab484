package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"json2video/jobs"
	"json2video/types"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var output string
	var keepAssets bool

	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Render one document and print the result as JSON",
		Long: "Render one document and print the result as JSON.\n" +
			"The exit status is non-zero when the render fails; the JSON result is printed either way.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc, err := buildServices(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer svc.Close()
			svc.processor.KeepAssets = keepAssets

			result := renderFile(cmd, svc.processor, args[0], output, cfg.OutputDir)
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.OK() {
				return fmt.Errorf("render failed: %s", result.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output video path (default: <output_dir>/<document name>.<format>)")
	cmd.Flags().BoolVar(&keepAssets, "keep-assets", false, "Keep narration and downloaded files after rendering")
	return cmd
}

func renderFile(cmd *cobra.Command, p *jobs.Processor, path, output, outputDir string) types.Result {
	doc, err := types.LoadDocument(path)
	if err != nil {
		return types.Failed(err)
	}
	if output == "" {
		ext, err := jobs.OutputExtension(doc)
		if err != nil {
			return types.Failed(err)
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		output = filepath.Join(outputDir, base+ext)
	}
	return p.Render(cmd.Context(), doc, output)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
