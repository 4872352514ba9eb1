package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrJamesThe3rd/lumen/internal/account"
)

// Vocabulary holds the category names offered to the classifier per account type.
type Vocabulary struct {
	Consumer []string `yaml:"consumer"`
	Business []string `yaml:"business"`
}

func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Consumer: []string{
			"Food & Dining", "Groceries", "Shopping", "Transportation", "Utilities",
			"Entertainment", "Healthcare", "Education", "Travel", "Rent",
			"Bills & Subscriptions", "Transfers", "Income", "Other",
		},
		Business: []string{
			"Office Supplies", "Travel", "Meals & Entertainment", "Software & Subscriptions",
			"Utilities", "Rent", "Salaries", "Professional Services", "Marketing",
			"Equipment", "Taxes", "Sales", "Other",
		},
	}
}

func (v Vocabulary) For(t account.Type) []string {
	if t == account.TypeBusiness {
		return v.Business
	}

	return v.Consumer
}

// LoadVocabulary reads a YAML vocabulary file. Lists missing from the file keep their defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := DefaultVocabulary()
	if path == "" {
		return v, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("reading vocabulary: %w", err)
	}

	var file Vocabulary
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Vocabulary{}, fmt.Errorf("parsing vocabulary: %w", err)
	}

	if len(file.Consumer) > 0 {
		v.Consumer = file.Consumer
	}

	if len(file.Business) > 0 {
		v.Business = file.Business
	}

	return v, nil
}
