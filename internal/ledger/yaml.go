package ledger

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kioku-srs/kioku/internal/card"
)

// CardFile is the YAML interchange format for bulk-importing authored
// cards and exporting the ledger for backup.
type CardFile struct {
	Deck  string      `yaml:"deck,omitempty"`
	Cards []card.Card `yaml:"cards"`
}

func readYamlFile[T any](path string) (T, error) {
	var result T

	file, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(&result); err != nil {
		return result, fmt.Errorf("yaml.NewDecoder().Decode() > %w", err)
	}
	return result, nil
}

func writeYamlFile[T any](path string, data T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	return yaml.NewEncoder(file).Encode(data)
}

// ReadCardFile loads a YAML card file.
func ReadCardFile(path string) (CardFile, error) {
	return readYamlFile[CardFile](path)
}

// WriteCardFile writes cards to a YAML file.
func WriteCardFile(path string, f CardFile) error {
	return writeYamlFile(path, f)
}
