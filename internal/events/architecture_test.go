package events_test

import (
	"testing"

	"recordhub/testutil"
)

func TestEventsDoesNotImportEngine(t *testing.T) {
	testutil.AssertImports(t, ".", testutil.ImportRule{
		Forbidden: testutil.ModulePackages("internal/core", "internal/adapters", "internal/infra"),
		Reason:    "the bus only knows domain change events",
	})
}
