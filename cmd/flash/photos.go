// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/flash/internal/photos"
)

var photosCmd = &cobra.Command{
	Use:   "photos",
	Short: "Move camera uploads into the pictures directory",
	Long: `Photos moves every entry of the camera upload directory (default
~/Dropbox/Camera Uploads) into the pictures directory (default ~/Pictures).
Entries whose name already exists in the target are left in place.
Across filesystems only regular files are moved; subdirectories are
reported and left in the upload directory.`,
	Args: cobra.NoArgs,
	RunE: runPhotos,
}

func init() {
	photosCmd.Flags().String("source", "", "camera upload directory")
	photosCmd.Flags().String("target", "", "pictures directory")

	rootCmd.AddCommand(photosCmd)
}

func runPhotos(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Photos
	if v, _ := cmd.Flags().GetString("source"); v != "" {
		cfg.SourceDir = v
	}
	if v, _ := cmd.Flags().GetString("target"); v != "" {
		cfg.TargetDir = v
	}

	result, err := photos.Organize(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d entr(ies) could not be moved", result.Failed)
	}
	return nil
}
