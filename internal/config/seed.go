package config

import (
	"fmt"
	"os"

	"rentmimi/internal/models"

	"gopkg.in/yaml.v2"
)

// RosterSeed is the shape of the optional roster.yaml file used to
// pre-populate partner applications on an empty database.
type RosterSeed struct {
	Partners []RosterEntry `yaml:"partners"`
}

type RosterEntry struct {
	Phone    string             `yaml:"phone"`
	Nickname string             `yaml:"nickname"`
	Region   string             `yaml:"region"`
	Form     models.PartnerForm `yaml:"form"`
}

// LoadRoster reads the seed roster. A missing file yields an empty seed,
// not an error, so deployments without a roster work unchanged.
func LoadRoster(path string) (*RosterSeed, error) {
	if path == "" {
		return &RosterSeed{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &RosterSeed{}, nil
		}
		return nil, err
	}

	var seed RosterSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse roster seed: %w", err)
	}

	if err := ValidateRoster(&seed); err != nil {
		return nil, err
	}

	return &seed, nil
}

func ValidateRoster(seed *RosterSeed) error {
	seen := make(map[string]bool)
	for _, entry := range seed.Partners {
		if entry.Phone == "" {
			return fmt.Errorf("roster entry '%s' has no phone", entry.Nickname)
		}
		if seen[entry.Phone] {
			return fmt.Errorf("duplicate roster phone found: %s", entry.Phone)
		}
		seen[entry.Phone] = true

		if entry.Form.Grade != "" {
			if _, ok := models.GradeHourlyRates[entry.Form.Grade]; !ok {
				return fmt.Errorf("roster entry %s has unknown grade '%s'", entry.Phone, entry.Form.Grade)
			}
		}
	}
	return nil
}
