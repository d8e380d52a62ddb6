// Command carecost estimates care-plan line item costs and loads the
// reference data the estimates draw on.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/gyeh/carecost/internal/exitcode"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
