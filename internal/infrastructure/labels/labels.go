package labels

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/entity"
)

//go:embed labels.yaml
var embedded []byte

// Load returns the label table stored at path, or the embedded table when path is empty
func Load(path string) (*entity.LabelTable, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read label table: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded label table. The embedded file is validated by
// the package tests, so a parse failure here is a build defect.
func Default() *entity.LabelTable {
	table, err := Parse(embedded)
	if err != nil {
		panic(fmt.Sprintf("labels: embedded table is invalid: %v", err))
	}
	return table
}

// Parse decodes a YAML label table keyed by class id
func Parse(data []byte) (*entity.LabelTable, error) {
	var entries map[int]entity.LabelEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse label table: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("label table is empty")
	}

	for id, entry := range entries {
		if id < 0 {
			return nil, fmt.Errorf("label table: negative class id %d", id)
		}
		if entry.Name == "" {
			return nil, fmt.Errorf("label table: class %d has no name", id)
		}
	}

	return entity.NewLabelTable(entries), nil
}
