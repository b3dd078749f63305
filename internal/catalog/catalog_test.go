package catalog

import (
	"reflect"
	"testing"

	"github.com/skillsync/skillsync/internal/registry"
)

func testRegistry() *registry.Registry {
	return &registry.Registry{Skills: []registry.Skill{
		{Name: "s0", Category: "Finance"},
		{Name: "s1", Category: ""},
		{Name: "s2", Category: "Bio"},
		{Name: "s3", Category: "Finance"},
		{Name: "s4", Category: "General"},
	}}
}

func TestGroupSkills(t *testing.T) {
	groups := GroupSkills(testRegistry())

	var labels []string
	for _, g := range groups {
		labels = append(labels, g.Label)
	}
	if !reflect.DeepEqual(labels, []string{"Bio", "Finance", "General"}) {
		t.Fatalf("labels = %v", labels)
	}

	finance := groups[1]
	if len(finance.Entries) != 2 || finance.Entries[0].Skill.Name != "s0" || finance.Entries[1].Skill.Name != "s3" {
		t.Errorf("finance entries = %+v", finance.Entries)
	}

	general := groups[2]
	if len(general.Entries) != 2 || general.Entries[0].Skill.Name != "s1" {
		t.Errorf("empty category should be grouped as General: %+v", general.Entries)
	}
}

func TestGroupSkills_Empty(t *testing.T) {
	if got := GroupSkills(registry.New()); len(got) != 0 {
		t.Errorf("expected no groups, got %v", got)
	}
	if got := GroupSkills(nil); len(got) != 0 {
		t.Errorf("expected no groups for nil, got %v", got)
	}
}

func TestCategories(t *testing.T) {
	got := Categories(testRegistry())
	want := []string{"Bio", "Finance", "General"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Categories = %v, want %v", got, want)
	}
}

func TestSuggest(t *testing.T) {
	reg := testRegistry()
	if got := Suggest(reg, "fi"); !reflect.DeepEqual(got, []string{"Finance"}) {
		t.Errorf("Suggest(fi) = %v", got)
	}
	if got := Suggest(reg, ""); len(got) != 3 {
		t.Errorf("Suggest('') = %v", got)
	}
	if got := Suggest(reg, "zzz"); len(got) != 0 {
		t.Errorf("Suggest(zzz) = %v", got)
	}
}
