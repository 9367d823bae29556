//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/sh"
)

// calibreImage is the image used by the container conversion backend.
const calibreImage = "linuxserver/calibre:latest"

// CalibreImage pulls the container image used by `flash kindle --backend container`,
// preferring docker and falling back to podman.
func CalibreImage() error {
	for _, bin := range []string{"docker", "podman"} {
		if _, err := sh.Output(bin, "info"); err != nil {
			continue
		}
		return sh.RunV(bin, "pull", calibreImage)
	}
	return fmt.Errorf("no container runtime available: neither docker nor podman found or operational")
}
