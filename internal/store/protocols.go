package store

import (
	"PortalServer/internal/entities"
	"fmt"
	"strings"
)

type Protocols struct {
	c *Collection[entities.TreatmentProtocol]
}

func protocolCategory(p entities.TreatmentProtocol) string { return p.Category }
func protocolName(p entities.TreatmentProtocol) string     { return p.Name }

func (s *Protocols) List(category, q string) []entities.TreatmentProtocol {
	return s.c.Filter(All(
		Equals(category, protocolCategory),
		Search(q, protocolName, protocolCategory),
	))
}

func (s *Protocols) Get(id string) (entities.TreatmentProtocol, error) {
	return s.c.Get(id)
}

func (s *Protocols) Create(p entities.TreatmentProtocol) (entities.TreatmentProtocol, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	p.Name = strings.TrimSpace(p.Name)
	if err := s.c.Insert(p); err != nil {
		return entities.TreatmentProtocol{}, fmt.Errorf("Protocols.Create: %w", err)
	}
	return p, nil
}

// Categories lists distinct categories in catalog order.
func (s *Protocols) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range s.c.List() {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}
