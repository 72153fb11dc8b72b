// internal/models/material.go
package models

// Material categories a recycling center can accept.
const (
	MaterialPlastic    = "plastic"
	MaterialGlass      = "glass"
	MaterialPaper      = "paper"
	MaterialMetal      = "metal"
	MaterialElectronic = "electronic"
	MaterialOrganic    = "organic"
	MaterialTextile    = "textile"
	MaterialBattery    = "battery"
	MaterialOther      = "other"
)

// MaterialTypes is the full catalog, in display order.
var MaterialTypes = []string{
	MaterialPlastic,
	MaterialGlass,
	MaterialPaper,
	MaterialMetal,
	MaterialElectronic,
	MaterialOrganic,
	MaterialTextile,
	MaterialBattery,
	MaterialOther,
}

// ValidMaterial reports whether t is a known material category.
func ValidMaterial(t string) bool {
	for _, m := range MaterialTypes {
		if m == t {
			return true
		}
	}
	return false
}
