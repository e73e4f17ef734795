package domain

import "testing"

func TestCategoriesFixedRegistry(t *testing.T) {
	labels := Categories()
	if len(labels) != 10 {
		t.Fatalf("expected 10 categories, got %d", len(labels))
	}
	for _, label := range labels {
		if !IsCategory(label) {
			t.Fatalf("registry label %q not recognized", label)
		}
	}
	if IsCategory("Cooking") {
		t.Fatalf("unknown label accepted")
	}
	if IsCategory("drama") {
		t.Fatalf("category match must be case-sensitive")
	}

	// callers must not be able to mutate the registry
	labels[0] = "Mutated"
	if Categories()[0] == "Mutated" {
		t.Fatalf("registry leaked internal slice")
	}
}
