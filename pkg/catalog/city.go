// Package catalog loads the city records that seed the tree's roots.
package catalog

import (
	"fmt"
	"strings"
)

// City is one catalog record: a root row's payload.
type City struct {
	Name string `yaml:"name" json:"name"`
	Text string `yaml:"description" json:"description"`
}

// Validate checks the record can be displayed.
func (c City) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("city name cannot be empty")
	}
	return nil
}

// Title returns the name as shown on a root row.
func (c City) Title() string {
	return strings.TrimSpace(c.Name)
}
