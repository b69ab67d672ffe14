package dlt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFilterList reads a filter list from a YAML file.
func LoadFilterList(path string) (*FilterList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read filter file %s: %w", path, err)
	}

	var list FilterList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse filter file %s: %w", path, err)
	}

	return &list, nil
}

// SaveFilterList writes a filter list to a YAML file.
func SaveFilterList(path string, list *FilterList) error {
	data, err := yaml.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal filter list: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write filter file: %w", err)
	}

	return nil
}
