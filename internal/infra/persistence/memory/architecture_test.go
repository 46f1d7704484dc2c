package memory

import (
	"testing"

	"recordhub/testutil"
)

func TestStoreDoesNotImportUpperLayers(t *testing.T) {
	testutil.AssertImports(t, ".", testutil.ImportRule{
		Forbidden: testutil.ModulePackages("internal/core", "internal/events", "internal/adapters", "internal/seed"),
		Reason:    "the record store sits below the engine and transports",
	})
}
