package registry

import (
	"errors"
	"testing"
)

func sampleRegistry() *Registry {
	return &Registry{Skills: []Skill{
		{Name: "alpha", Content: "A", Category: "Bio"},
		{Name: "beta", Content: "B", Category: ""},
		{Name: "gamma", Content: "C", Category: "Code"},
	}}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", DefaultCategory},
		{"   ", DefaultCategory},
		{"\t\n", DefaultCategory},
		{" Finance ", "Finance"},
		{"Code", "Code"},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.in); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategoryLabel(t *testing.T) {
	if got := (Skill{}).CategoryLabel(); got != DefaultCategory {
		t.Errorf("empty category label = %q, want %q", got, DefaultCategory)
	}
	if got := (Skill{Category: "Bio"}).CategoryLabel(); got != "Bio" {
		t.Errorf("label = %q, want Bio", got)
	}
}

func TestRemove_ByName(t *testing.T) {
	reg := sampleRegistry()
	if err := reg.Remove("beta"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	names := reg.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "gamma" {
		t.Errorf("names after remove = %v", names)
	}
}

func TestRemove_Unknown(t *testing.T) {
	reg := sampleRegistry()
	err := reg.Remove("delta")
	if !errors.Is(err, ErrSkillNotFound) {
		t.Fatalf("expected ErrSkillNotFound, got %v", err)
	}
	if reg.Len() != 3 {
		t.Errorf("registry changed on failed remove: %d skills", reg.Len())
	}
}

func TestSetCategory_WhitespaceBecomesDefault(t *testing.T) {
	reg := sampleRegistry()
	got, err := reg.SetCategory("alpha", "   ")
	if err != nil {
		t.Fatalf("SetCategory: %v", err)
	}
	if got != DefaultCategory {
		t.Errorf("stored label = %q", got)
	}
	s, _ := reg.Lookup("alpha")
	if s.Category != DefaultCategory {
		t.Errorf("category = %q, want %q", s.Category, DefaultCategory)
	}
}

func TestSetCategory_Trims(t *testing.T) {
	reg := sampleRegistry()
	if _, err := reg.SetCategory("gamma", "  Finance\t"); err != nil {
		t.Fatal(err)
	}
	s, _ := reg.Lookup("gamma")
	if s.Category != "Finance" {
		t.Errorf("category = %q, want Finance", s.Category)
	}
}

func TestClone_Independent(t *testing.T) {
	reg := sampleRegistry()
	c := reg.Clone()
	c.Skills[0].Category = "Changed"
	if reg.Skills[0].Category != "Bio" {
		t.Error("clone shares skill storage with original")
	}
}

func TestNilRegistryHelpers(t *testing.T) {
	var reg *Registry
	if reg.Len() != 0 || reg.Has("x") || len(reg.Names()) != 0 {
		t.Error("nil registry should behave as empty")
	}
	if reg.Clone().Skills == nil {
		t.Error("clone of nil registry should have a non-nil skill list")
	}
}

func TestClear(t *testing.T) {
	reg := sampleRegistry()
	reg.Clear()
	if reg.Len() != 0 || reg.Skills == nil {
		t.Errorf("after Clear: %#v", reg.Skills)
	}
}
