package whatsapp

import (
	"fmt"
	"os"

	"github.com/btraven00/linksift/internal/platforms"
)

func init() {
	if err := platforms.Register(New()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to register whatsapp platform: %v\n", err)
	}
}
