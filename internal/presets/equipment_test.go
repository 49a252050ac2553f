package presets

import "testing"

func TestByNameIsCaseInsensitive(t *testing.T) {
	preset, ok := ByName("reflow oven")
	if !ok {
		t.Fatal("ByName(reflow oven) returned nil")
	}
	if preset.Name != "Reflow Oven" || preset.MaintenanceCycleDays != 60 {
		t.Errorf("unexpected preset: %+v", preset)
	}

	if _, ok := ByName("Teleporter"); ok {
		t.Error("ByName matched an unknown equipment name")
	}
}

func TestByCategory(t *testing.T) {
	safety := ByCategory("Safety Equipment")
	if len(safety) != 4 {
		t.Fatalf("got %d safety presets, want 4", len(safety))
	}
	for _, p := range safety {
		if p.Category != "Safety Equipment" {
			t.Errorf("preset %q has category %q", p.Name, p.Category)
		}
	}

	if got := ByCategory("No Such Category"); len(got) != 0 {
		t.Errorf("unknown category returned %d presets", len(got))
	}
}

func TestEveryPresetHasAKnownCategory(t *testing.T) {
	known := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		known[c] = true
	}
	for _, p := range Equipment {
		if !known[p.Category] {
			t.Errorf("preset %q has unknown category %q", p.Name, p.Category)
		}
		if p.MaintenanceCycleDays <= 0 {
			t.Errorf("preset %q has no maintenance cycle", p.Name)
		}
	}
}
