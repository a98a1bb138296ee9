package main

import (
	"context"
	"fmt"
	"os"

	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
)

// Version information, set at build time via ldflags
var (
	Version   = "dev"
	GitCommit = "none"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		// Pipeline failures are reported by kind
		if kind, ok := domain.KindOf(err); ok {
			fmt.Fprintf(os.Stderr, "%s: %v\n", kind, err)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
