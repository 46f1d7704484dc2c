package core

import (
	"testing"

	"recordhub/testutil"
)

func TestCoreDoesNotImportTransports(t *testing.T) {
	testutil.AssertImports(t, ".", testutil.ImportRule{
		Forbidden: testutil.ModulePackages("internal/events", "internal/adapters", "internal/seed", "internal/platform"),
		Reason:    "the engine publishes through its Publisher interface only",
	})
}
