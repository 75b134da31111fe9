package discovery

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestGenerateInstanceID(t *testing.T) {
	a := GenerateInstanceID("galaxy-server")
	b := GenerateInstanceID("galaxy-server")

	if !strings.HasPrefix(a, "galaxy-server-") {
		t.Errorf("Expected service name prefix, got %q", a)
	}
	if a == b {
		t.Errorf("Expected unique instance IDs, got %q twice", a)
	}
}

func TestRegister_InvalidAddress(t *testing.T) {
	registry, err := NewRegistry("127.0.0.1:1", time.Second)
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}

	tests := []string{"no-port", "host:http"}
	for _, addr := range tests {
		if err := registry.Register(context.Background(), "id", "galaxy-server", addr); err == nil {
			t.Errorf("Expected error for address %q", addr)
		}
	}
}
