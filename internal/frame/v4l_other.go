//go:build !linux

package frame

import (
	"fmt"

	"github.com/ironsheep/vision-demos/internal/config"
)

func openV4L(dev string, _ config.Camera) (Source, error) {
	return nil, fmt.Errorf("frame: V4L2 capture of %s is only supported on Linux", dev)
}
