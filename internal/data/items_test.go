package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParseItemCatalog(t *testing.T) {
	resolver, err := ParseItemCatalog([]byte(`
items:
  4151: Abyssal whip
  13652: "  Dragon claws "
  995: ""
`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ctx := context.Background()
	if name, err := resolver.ItemName(ctx, 4151); err != nil || name != "Abyssal whip" {
		t.Errorf("Expected 'Abyssal whip', got '%s' (%v)", name, err)
	}
	if name, _ := resolver.ItemName(ctx, 13652); name != "Dragon claws" {
		t.Errorf("Expected trimmed name, got '%s'", name)
	}
	if _, err := resolver.ItemName(ctx, 995); err == nil {
		t.Error("Expected blank entry to be dropped")
	}
	if _, err := resolver.ItemName(ctx, 1); err == nil {
		t.Error("Expected error for unknown item")
	}
}

func TestLoadItemCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.yaml")
	if err := os.WriteFile(path, []byte("items:\n  526: Bones\n"), 0644); err != nil {
		t.Fatal(err)
	}

	resolver, err := LoadItemCatalog(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if name, _ := resolver.ItemName(context.Background(), 526); name != "Bones" {
		t.Errorf("Expected 'Bones', got '%s'", name)
	}

	if _, err := LoadItemCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestParseItemCatalog_Invalid(t *testing.T) {
	if _, err := ParseItemCatalog([]byte("items: [not, a, map]")); err == nil {
		t.Error("Expected parse error")
	}
}
