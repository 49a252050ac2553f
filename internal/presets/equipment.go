// Package presets holds the static equipment catalog used by the
// maintenance submit form: per-equipment maintenance cycles and typical
// warranty terms.
package presets

import "strings"

type EquipmentPreset struct {
	Name                 string `json:"name"`
	Category             string `json:"category"`
	MaintenanceCycleDays int    `json:"maintenance_cycle_days"`
	TypicalWarrantyYears int    `json:"typical_warranty_years"`
	Description          string `json:"description"`
}

var Categories = []string{
	"Production Equipment",
	"Testing Equipment",
	"Safety Equipment",
	"HVAC Systems",
	"Electrical Systems",
	"Computer Systems",
	"Office Equipment",
	"Other",
}

var Equipment = []EquipmentPreset{
	// Production Equipment
	{Name: "PCB Assembly Machine", Category: "Production Equipment", MaintenanceCycleDays: 90, TypicalWarrantyYears: 2, Description: "Surface mount and through-hole PCB assembly"},
	{Name: "Reflow Oven", Category: "Production Equipment", MaintenanceCycleDays: 60, TypicalWarrantyYears: 3, Description: "Solder reflow processing"},
	{Name: "Wave Solder Machine", Category: "Production Equipment", MaintenanceCycleDays: 30, TypicalWarrantyYears: 2, Description: "Wave soldering system"},
	{Name: "Pick and Place Machine", Category: "Production Equipment", MaintenanceCycleDays: 90, TypicalWarrantyYears: 2, Description: "Component placement system"},
	{Name: "Conveyor System", Category: "Production Equipment", MaintenanceCycleDays: 180, TypicalWarrantyYears: 5, Description: "Production line conveyor"},

	// Testing Equipment
	{Name: "AOI Machine", Category: "Testing Equipment", MaintenanceCycleDays: 90, TypicalWarrantyYears: 2, Description: "Automated Optical Inspection"},
	{Name: "X-Ray Inspection System", Category: "Testing Equipment", MaintenanceCycleDays: 180, TypicalWarrantyYears: 3, Description: "X-ray inspection for BGA and hidden joints"},
	{Name: "ICT Tester", Category: "Testing Equipment", MaintenanceCycleDays: 120, TypicalWarrantyYears: 2, Description: "In-Circuit Testing equipment"},
	{Name: "Flying Probe Tester", Category: "Testing Equipment", MaintenanceCycleDays: 90, TypicalWarrantyYears: 2, Description: "Flying probe test system"},
	{Name: "Functional Test Station", Category: "Testing Equipment", MaintenanceCycleDays: 90, TypicalWarrantyYears: 2, Description: "Final functional testing"},

	// Safety Equipment
	{Name: "Fire Extinguisher", Category: "Safety Equipment", MaintenanceCycleDays: 365, TypicalWarrantyYears: 5, Description: "Fire safety equipment"},
	{Name: "Emergency Lighting", Category: "Safety Equipment", MaintenanceCycleDays: 180, TypicalWarrantyYears: 3, Description: "Emergency exit lighting"},
	{Name: "First Aid Station", Category: "Safety Equipment", MaintenanceCycleDays: 90, TypicalWarrantyYears: 0, Description: "First aid supplies and equipment"},
	{Name: "Eye Wash Station", Category: "Safety Equipment", MaintenanceCycleDays: 30, TypicalWarrantyYears: 5, Description: "Emergency eye wash station"},

	// HVAC Systems
	{Name: "Air Conditioning Unit", Category: "HVAC Systems", MaintenanceCycleDays: 90, TypicalWarrantyYears: 5, Description: "HVAC cooling system"},
	{Name: "Air Filtration System", Category: "HVAC Systems", MaintenanceCycleDays: 30, TypicalWarrantyYears: 3, Description: "Clean room air filtration"},
	{Name: "Exhaust System", Category: "HVAC Systems", MaintenanceCycleDays: 90, TypicalWarrantyYears: 5, Description: "Ventilation and exhaust"},

	// Electrical Systems
	{Name: "UPS System", Category: "Electrical Systems", MaintenanceCycleDays: 180, TypicalWarrantyYears: 3, Description: "Uninterruptible Power Supply"},
	{Name: "Generator", Category: "Electrical Systems", MaintenanceCycleDays: 90, TypicalWarrantyYears: 5, Description: "Backup power generator"},
	{Name: "Electrical Panel", Category: "Electrical Systems", MaintenanceCycleDays: 365, TypicalWarrantyYears: 10, Description: "Main electrical distribution"},

	// Computer Systems
	{Name: "Server", Category: "Computer Systems", MaintenanceCycleDays: 90, TypicalWarrantyYears: 3, Description: "Server hardware"},
	{Name: "Network Switch", Category: "Computer Systems", MaintenanceCycleDays: 180, TypicalWarrantyYears: 3, Description: "Network switching equipment"},
	{Name: "Workstation", Category: "Computer Systems", MaintenanceCycleDays: 180, TypicalWarrantyYears: 3, Description: "Desktop computer workstation"},

	// Office Equipment
	{Name: "Printer", Category: "Office Equipment", MaintenanceCycleDays: 90, TypicalWarrantyYears: 1, Description: "Office printer"},
	{Name: "Copier", Category: "Office Equipment", MaintenanceCycleDays: 60, TypicalWarrantyYears: 2, Description: "Office copier/scanner"},
	{Name: "Projector", Category: "Office Equipment", MaintenanceCycleDays: 180, TypicalWarrantyYears: 2, Description: "Presentation projector"},
}

// ByName finds a preset by case-insensitive equipment name.
func ByName(name string) (EquipmentPreset, bool) {
	for _, p := range Equipment {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return EquipmentPreset{}, false
}

// ByCategory returns all presets in a category.
func ByCategory(category string) []EquipmentPreset {
	var out []EquipmentPreset
	for _, p := range Equipment {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
