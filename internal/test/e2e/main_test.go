package e2e

import "testing"

func TestE2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e tests in short mode")
	}
	RunE2ETests(t, new(QueryE2ETestSuite))
}
