package hion

import (
	"fmt"
	"strings"
)

// ValidationError collects multiple validation issues
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid catalog: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "catalog validation errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// ValidateCatalogConfig performs comprehensive validation of a CatalogConfig
func ValidateCatalogConfig(cfg CatalogConfig) error {
	err := &ValidationError{}

	if cfg.Name == "" {
		err.Add("catalog name is required")
	}

	// Build a map of PDG codes for cross-reference checks
	codes := make(map[int]bool)
	for _, sp := range cfg.Species {
		if sp.PDG == 0 {
			err.Add("species PDG code is required")
			continue
		}
		if codes[sp.PDG] {
			err.Add(fmt.Sprintf("duplicate species PDG code: %d", sp.PDG))
		} else {
			codes[sp.PDG] = true
		}
	}

	for i, sp := range cfg.Species {
		prefix := "species"
		if sp.Name != "" {
			prefix = "species '" + sp.Name + "'"
		} else {
			prefix = "species at index " + fmt.Sprintf("%d", i)
			err.Add(prefix + ": name is required")
		}

		if sp.Mass <= 0 {
			err.Add(prefix + ": mass must be positive")
		}
		if sp.Width < 0 {
			err.Add(prefix + ": width must not be negative")
		}
		if sp.SpinDegeneracy < 1 {
			err.Add(prefix + ": spin degeneracy must be at least 1")
		}
		if !sp.Stable && sp.Width == 0 {
			err.Add(prefix + ": unstable species needs a non-zero width")
		}
		if sp.Stable && len(sp.DecayModes) > 0 {
			err.Add(prefix + ": stable species must not declare decay modes")
		}
		if sp.Isospin3 != 0 && sp.Isospin == 0 {
			err.Add(prefix + ": isospin3 without isospin")
		}

		brSum := 0.0
		for j, mode := range sp.DecayModes {
			modePrefix := prefix + " decay mode at index " + fmt.Sprintf("%d", j)
			if len(mode.Products) < 2 {
				err.Add(modePrefix + ": needs at least two products")
			}
			if mode.BranchingRatio <= 0 || mode.BranchingRatio > 1 {
				err.Add(modePrefix + ": branching ratio must be in (0, 1]")
			}
			brSum += mode.BranchingRatio
			for _, code := range mode.Products {
				if !codes[code] {
					err.Add(fmt.Sprintf("%s: product %d does not exist in catalog", modePrefix, code))
				}
			}
		}
		if len(sp.DecayModes) > 0 && brSum > 1.0+1e-9 {
			err.Add(fmt.Sprintf("%s: branching ratios sum to %g > 1", prefix, brSum))
		}
	}

	if err.HasIssues() {
		return err
	}
	return nil
}
