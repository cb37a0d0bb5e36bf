package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDRefGenerator issues ULID reference codes: lexicographically sortable
// by issue time and collision-free without coordination, so an insert
// never trips the ref_code uniqueness constraint.
type ULIDRefGenerator struct{}

// NewULIDRefGenerator creates a new ULIDRefGenerator.
func NewULIDRefGenerator() *ULIDRefGenerator {
	return &ULIDRefGenerator{}
}

// Generate returns a fresh reference code.
func (g *ULIDRefGenerator) Generate() string {
	return ulid.Make().String()
}
