package data

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/galzzz/drops-exporter/internal/biz/repo"
)

// itemCatalog resolves item IDs from a YAML file:
//
//	items:
//	  4151: Abyssal whip
//	  13652: Dragon claws
type itemCatalog struct {
	names map[int]string
}

type catalogFile struct {
	Items map[int]string `yaml:"items"`
}

// LoadItemCatalog reads an item catalog from path
func LoadItemCatalog(path string) (repo.ItemResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read item catalog: %w", err)
	}
	return ParseItemCatalog(data)
}

// ParseItemCatalog parses catalog YAML
func ParseItemCatalog(data []byte) (repo.ItemResolver, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse item catalog: %w", err)
	}

	names := make(map[int]string, len(file.Items))
	for id, name := range file.Items {
		if name = strings.TrimSpace(name); name != "" {
			names[id] = name
		}
	}
	return &itemCatalog{names: names}, nil
}

// ItemName returns the display name of itemID
func (c *itemCatalog) ItemName(ctx context.Context, itemID int) (string, error) {
	name, ok := c.names[itemID]
	if !ok {
		return "", fmt.Errorf("unknown item id %d", itemID)
	}
	return name, nil
}
