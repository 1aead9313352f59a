package main

import (
	"fmt"

	"github.com/couchcryptid/island-notify/internal/config"
	"github.com/couchcryptid/island-notify/internal/geo"
	"github.com/couchcryptid/island-notify/internal/normalize"
	"github.com/spf13/cobra"
)

// checkPhase tracks pass/fail for one validation phase.
type checkPhase struct {
	name   string
	errors []string
}

func (p *checkPhase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *checkPhase) passed() bool { return len(p.errors) == 0 }

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the geography and contact files for consistency",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			idx, contacts, err := loadGeo(cfg)
			if err != nil {
				return err
			}

			phases := []*checkPhase{
				validateIslandReferences(idx),
				validateContactCoverage(idx, contacts),
				validateSuppressionRules(idx),
			}

			allPassed := true
			for _, p := range phases {
				status := "PASS"
				if !p.passed() {
					status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
					allPassed = false
				}
				fmt.Printf("  %-38s %s\n", p.name, status)
			}

			fmt.Printf("\nUnits: %d, suppression rules: %d, islands with contacts: %d\n",
				len(idx.Units), len(idx.Suppressions), len(contacts))

			for _, p := range phases {
				if p.passed() {
					continue
				}
				fmt.Printf("\n--- %s ---\n", p.name)
				for i, e := range p.errors {
					fmt.Printf("  [%d] %s\n", i+1, e)
				}
			}

			if !allPassed {
				return fmt.Errorf("validation failed")
			}
			fmt.Println("\nAll validations passed.")
			return nil
		},
	}
}

// validateIslandReferences checks that every island a unit points at exists
// in the islands catalogue.
func validateIslandReferences(idx *geo.Index) *checkPhase {
	p := &checkPhase{name: "Island references (units vs catalogue)"}
	for _, u := range idx.Units {
		for _, island := range u.Islands {
			if !idx.HasIsland(island) {
				p.errorf("unit %q references unknown island %q", u.Name, island)
			}
		}
	}
	return p
}

// validateContactCoverage checks that every island reachable from a unit has
// at least one subscriber, and that no contact entry names an unknown island.
func validateContactCoverage(idx *geo.Index, contacts geo.Contacts) *checkPhase {
	p := &checkPhase{name: "Contact coverage (islands vs contacts)"}

	for _, u := range idx.Units {
		for _, island := range u.Islands {
			if len(contacts.Addresses(island)) == 0 {
				p.errorf("island %q (unit %q) has no subscribers", island, u.Name)
			}
		}
	}
	for island := range contacts {
		if !idx.HasIsland(island) {
			p.errorf("contacts entry for unknown island %q", island)
		}
	}
	return p
}

// validateSuppressionRules checks that every suppression tag is actually
// carried by some unit or settlement, so stale rules are flagged when
// vocabulary changes.
func validateSuppressionRules(idx *geo.Index) *checkPhase {
	p := &checkPhase{name: "Suppression rules (tags in use)"}

	for _, rule := range idx.Suppressions {
		if !suppressionTagInUse(idx, rule.Tag) {
			p.errorf("suppression tag %q matches no unit or settlement tag", rule.Tag)
		}
	}
	return p
}

func suppressionTagInUse(idx *geo.Index, tag string) bool {
	want := normalize.Text(tag)
	for _, u := range idx.Units {
		for _, t := range u.Tags {
			if normalize.Text(t) == want {
				return true
			}
		}
	}
	for _, island := range idx.Islands() {
		for _, s := range island.Settlements {
			for _, t := range s.Tags {
				if normalize.Text(t) == want {
					return true
				}
			}
		}
	}
	return false
}
