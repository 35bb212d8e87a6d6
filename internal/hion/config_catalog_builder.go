package hion

import "fmt"

// BuildSpeciesTableFromConfig builds a SpeciesTable from a validated
// CatalogConfig. Minimum kinematic masses of resonances are resolved from
// their decay thresholds, so every decay product must exist in the catalog.
func BuildSpeciesTableFromConfig(cfg CatalogConfig) (*SpeciesTable, error) {
	if err := ValidateCatalogConfig(cfg); err != nil {
		return nil, err
	}

	table := NewSpeciesTable(cfg.Name)
	byCode := make(map[PDGCode]*Species, len(cfg.Species))

	for _, sc := range cfg.Species {
		sp := &Species{
			PDG:            PDGCode(sc.PDG),
			Name:           sc.Name,
			Mass:           sc.Mass,
			Width:          sc.Width,
			SpinDegeneracy: sc.SpinDegeneracy,
			Stable:         sc.Stable,
			Charge:         sc.Charge,
			BaryonNumber:   sc.BaryonNumber,
			Strangeness:    sc.Strangeness,
			Isospin:        sc.Isospin,
			Isospin3:       sc.Isospin3,
		}
		for _, mc := range sc.DecayModes {
			mode := DecayMode{BranchingRatio: mc.BranchingRatio}
			for _, code := range mc.Products {
				mode.Products = append(mode.Products, PDGCode(code))
			}
			sp.DecayModes = append(sp.DecayModes, mode)
		}
		byCode[sp.PDG] = sp
		table.WithSpecies(sp)
	}

	// Second pass: resolve decay thresholds now that every product is known.
	for _, sp := range byCode {
		if sp.Stable || len(sp.DecayModes) == 0 {
			continue
		}
		minMass := 0.0
		for _, mode := range sp.DecayModes {
			threshold := 0.0
			for _, code := range mode.Products {
				product, ok := byCode[code]
				if !ok {
					return nil, fmt.Errorf("species %s: decay product %d not in catalog", sp.Name, code)
				}
				threshold += product.Mass
			}
			if minMass == 0 || threshold < minMass {
				minMass = threshold
			}
		}
		sp.minMass = minMass
	}

	return table, nil
}
