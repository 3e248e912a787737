//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "shop-api"
	ConsumerName = "storefront"

	StateCatalogBaseline = "user U1 and products P1, P2 exist"
)

// Seed data shared by both sides of the contract.
const (
	UserID        = "7b0f3c52-1a0e-4c55-9d61-2f1c8a0e0001"
	UserName      = "Pact User"
	UserEmail     = "pact.user@example.com"
	UserPassword  = "pact-pass"
	MugID         = "7b0f3c52-1a0e-4c55-9d61-2f1c8a0e0101"
	MugName       = "Caneca"
	MugPrice      = "10.00"
	MugStock      = 5
	ShirtID       = "7b0f3c52-1a0e-4c55-9d61-2f1c8a0e0102"
	ShirtName     = "Camiseta"
	ShirtPrice    = "20.00"
	ShirtStock    = 1
	MissingItemID = "ghost"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleOrderRequest is the payload the storefront sends at checkout.
func ExampleOrderRequest() map[string]any {
	return map[string]any{
		"userId": UserID,
		"products": []map[string]any{
			{"productId": MugID, "quantity": 2},
			{"productId": ShirtID, "quantity": 1},
		},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
