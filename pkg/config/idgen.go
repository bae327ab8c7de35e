package config

import (
	"time"

	"github.com/vanderheijden86/treelist/pkg/tree"
)

// IDGenerator builds the generator described by the ids section.
func (c *Config) IDGenerator() tree.IDGenerator {
	if c.IDs.Generator == GeneratorCounter {
		return tree.NewCounter(tree.ID(c.IDs.Start))
	}
	seed := c.IDs.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return tree.NewRandomIDs(tree.ID(c.IDs.Min), tree.ID(c.IDs.Max), seed)
}
