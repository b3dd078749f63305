package surface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsync/skillsync/internal/activation"
	"github.com/skillsync/skillsync/internal/importer"
	"github.com/skillsync/skillsync/internal/registry"
)

type recordingActivator struct {
	got []string
	err error
}

func (a *recordingActivator) Activate(_ context.Context, content string) error {
	if a.err != nil {
		return a.err
	}
	a.got = append(a.got, content)
	return nil
}

// failingStore loads normally but refuses to save.
type failingStore struct {
	*registry.MemoryStore
}

func (failingStore) Save(context.Context, *registry.Registry) error {
	return errors.New("disk full")
}

func seeded(t *testing.T, skills ...registry.Skill) (*Surface, *registry.MemoryStore, *recordingActivator) {
	t.Helper()
	store := registry.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), &registry.Registry{Skills: skills}))
	act := &recordingActivator{}
	s := New(store, act, Popup, nil)
	require.NoError(t, s.Load(context.Background()))
	return s, store, act
}

func file(p, content string) importer.File {
	return importer.File{Path: p, Read: func() ([]byte, error) { return []byte(content), nil }}
}

func TestImportPersists(t *testing.T) {
	ctx := context.Background()
	s, store, _ := seeded(t)

	res, err := s.Import(ctx, []importer.File{
		file("ProjectA/SKILL.md", "X"),
		file("Cat1/ProjectB/SKILL.md", "Y"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []registry.Skill{
		{Name: "ProjectA", Category: "General", Content: "X"},
		{Name: "ProjectB", Category: "Cat1", Content: "Y"},
	}, stored.Skills)
}

func TestImportNothingFound(t *testing.T) {
	s, store, _ := seeded(t)
	saves := store.Saves()

	_, err := s.Import(context.Background(), []importer.File{file("a/README.md", "x")})
	assert.ErrorIs(t, err, importer.ErrNoSkillFiles)
	assert.Equal(t, saves, store.Saves(), "nothing should be persisted")
}

func TestDuplicateImportKeepsCategory(t *testing.T) {
	s, _, _ := seeded(t, registry.Skill{Name: "Foo", Category: "Bio", Content: "v1"})

	res, err := s.Import(context.Background(), []importer.File{file("Foo/SKILL.md", "v2")})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)

	reg := s.Registry()
	require.Equal(t, 1, reg.Len())
	assert.Equal(t, registry.Skill{Name: "Foo", Category: "Bio", Content: "v1"}, reg.Skills[0])
}

func TestDeleteByNameIgnoresGrouping(t *testing.T) {
	ctx := context.Background()
	s, store, _ := seeded(t,
		registry.Skill{Name: "a", Category: "Zeta"},
		registry.Skill{Name: "b", Category: "Alpha"},
		registry.Skill{Name: "c", Category: "Zeta"},
	)

	// The grouped view lists b first; deleting by name must still remove c.
	view := s.View()
	require.Equal(t, "Alpha", view.Groups[0].Label)

	require.NoError(t, s.Delete(ctx, "c"))
	assert.Equal(t, []string{"a", "b"}, s.Registry().Names())

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, stored.Names())
}

func TestDeleteUnknown(t *testing.T) {
	s, _, _ := seeded(t, registry.Skill{Name: "a"})
	err := s.Delete(context.Background(), "zzz")
	assert.ErrorIs(t, err, registry.ErrSkillNotFound)
	assert.Equal(t, 1, s.Registry().Len())
}

func TestSetCategoryBlank(t *testing.T) {
	ctx := context.Background()
	s, store, _ := seeded(t, registry.Skill{Name: "a", Category: "Bio"})

	require.NoError(t, s.SetCategory(ctx, "a", "  \t "))

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, registry.DefaultCategory, stored.Skills[0].Category)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s, store, _ := seeded(t, registry.Skill{Name: "a"}, registry.Skill{Name: "b"})

	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, 0, s.Registry().Len())
	assert.JSONEq(t, `{"skills": []}`, string(store.Raw()))
}

func TestExportMatchesStored(t *testing.T) {
	s, store, _ := seeded(t,
		registry.Skill{Name: "a", Category: "Bio", Content: "line1\nline2"},
		registry.Skill{Name: "b", Category: "General", Content: "<b>&</b>"},
	)

	for _, pretty := range []bool{false, true} {
		var buf bytes.Buffer
		require.NoError(t, s.Export(&buf, pretty))

		var exported, stored any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &exported))
		require.NoError(t, json.Unmarshal(store.Raw(), &stored))
		assert.Equal(t, stored, exported)
	}
}

func TestSaveFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	mem := registry.NewMemoryStore()
	require.NoError(t, mem.Save(ctx, &registry.Registry{Skills: []registry.Skill{{Name: "a"}}}))

	s := New(failingStore{mem}, nil, Modal, nil)
	require.NoError(t, s.Load(ctx))

	err := s.Delete(ctx, "a")
	require.Error(t, err)
	assert.Equal(t, []string{"a"}, s.Registry().Names())
}

func TestUse(t *testing.T) {
	s, _, act := seeded(t, registry.Skill{Name: "a", Content: "raw"})

	require.NoError(t, s.Use(context.Background(), "a"))
	assert.Equal(t, []string{"raw"}, act.got)

	assert.ErrorIs(t, s.Use(context.Background(), "missing"), registry.ErrSkillNotFound)
}

func TestUseInputNotFoundLeavesRegistry(t *testing.T) {
	ctx := context.Background()
	s, store, act := seeded(t, registry.Skill{Name: "a", Content: "raw"})
	act.err = activation.ErrInputNotFound
	before := store.Raw()

	err := s.Use(ctx, "a")
	assert.ErrorIs(t, err, activation.ErrInputNotFound)
	assert.Equal(t, before, store.Raw())
	assert.Equal(t, "raw", s.Registry().Skills[0].Content)
}

func TestVariantExportSettings(t *testing.T) {
	assert.Equal(t, "skill_registry_backup.json", Popup.ExportFilename())
	assert.Equal(t, "gemini_skills_backup.json", Modal.ExportFilename())
	assert.False(t, Popup.PrettyExport())
	assert.True(t, Modal.PrettyExport())
}
