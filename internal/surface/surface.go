// Package surface holds the state behind a skill panel: the in-memory
// registry, the store it is persisted to, and the activator that "Use"
// hands content to.
//
// Every mutation edits a copy of the in-memory registry, saves that copy,
// and only then makes it current. A failed save leaves the
// surface unchanged. Skills are always addressed by name, so an action
// issued against an older render still hits the intended skill.
package surface

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/skillsync/skillsync/internal/activation"
	"github.com/skillsync/skillsync/internal/catalog"
	"github.com/skillsync/skillsync/internal/importer"
	"github.com/skillsync/skillsync/internal/registry"
)

// Variant selects the panel flavour.
type Variant int

const (
	// Popup is the always-open panel: flat list, compact export, remote
	// activation.
	Popup Variant = iota
	// Modal is the on-demand in-page panel: grouped list, indented export,
	// in-page activation, closes after Use.
	Modal
)

func (v Variant) String() string {
	if v == Modal {
		return "modal"
	}
	return "popup"
}

// ExportFilename returns the suggested backup file name for the variant.
func (v Variant) ExportFilename() string {
	if v == Modal {
		return "gemini_skills_backup.json"
	}
	return "skill_registry_backup.json"
}

// PrettyExport reports whether the variant exports indented JSON.
func (v Variant) PrettyExport() bool {
	return v == Modal
}

// Surface is the state object owned by one panel instance.
type Surface struct {
	mu        sync.Mutex
	store     registry.Store
	activator activation.Activator
	variant   Variant
	logger    *zap.Logger
	reg       *registry.Registry
}

// New creates a surface. Call Load before rendering.
func New(store registry.Store, activator activation.Activator, variant Variant, logger *zap.Logger) *Surface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Surface{
		store:     store,
		activator: activator,
		variant:   variant,
		logger:    logger.With(zap.Stringer("surface", variant)),
		reg:       registry.New(),
	}
}

// Variant returns the panel flavour.
func (s *Surface) Variant() Variant {
	return s.variant
}

// Load replaces the in-memory registry with the stored one.
func (s *Surface) Load(ctx context.Context) error {
	reg, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}
	s.mu.Lock()
	s.reg = reg
	s.mu.Unlock()
	s.logger.Debug("registry loaded", zap.Int("skills", reg.Len()))
	return nil
}

// Registry returns a copy of the current registry.
func (s *Surface) Registry() *registry.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Clone()
}

// View is what a render pass needs.
type View struct {
	Skills     []registry.Skill // registry order
	Groups     []catalog.Group  // by category
	Categories []string         // autocomplete
}

// View derives a fresh render model from the current registry.
func (s *Surface) View() View {
	reg := s.Registry()
	return View{
		Skills:     reg.Skills,
		Groups:     catalog.GroupSkills(reg),
		Categories: catalog.Categories(reg),
	}
}

// Import adds the skills found in files and persists the result. It returns
// importer.ErrNoSkillFiles when files hold no marker file.
func (s *Surface) Import(ctx context.Context, files []importer.File) (importer.Result, error) {
	var res importer.Result
	err := s.mutate(ctx, "import", func(reg *registry.Registry) (*registry.Registry, error) {
		next, r, err := importer.Import(reg, files)
		if err != nil {
			return nil, err
		}
		res = r
		return next, nil
	})
	if err != nil {
		return importer.Result{}, err
	}
	s.logger.Info("skills imported", zap.Int("added", res.Added), zap.Strings("skipped", res.Skipped))
	return res, nil
}

// SetCategory recategorizes the named skill. Blank labels become
// registry.DefaultCategory.
func (s *Surface) SetCategory(ctx context.Context, name, label string) error {
	return s.mutate(ctx, "recategorize", func(reg *registry.Registry) (*registry.Registry, error) {
		if _, err := reg.SetCategory(name, label); err != nil {
			return nil, fmt.Errorf("%w: %s", err, name)
		}
		return reg, nil
	})
}

// Delete removes the named skill. Callers confirm with the user first.
func (s *Surface) Delete(ctx context.Context, name string) error {
	return s.mutate(ctx, "delete", func(reg *registry.Registry) (*registry.Registry, error) {
		if err := reg.Remove(name); err != nil {
			return nil, fmt.Errorf("%w: %s", err, name)
		}
		return reg, nil
	})
}

// Clear removes every skill. Callers confirm with the user first.
func (s *Surface) Clear(ctx context.Context) error {
	return s.mutate(ctx, "clear", func(reg *registry.Registry) (*registry.Registry, error) {
		reg.Clear()
		return reg, nil
	})
}

// Export writes the full registry as JSON.
func (s *Surface) Export(w io.Writer, pretty bool) error {
	reg := s.Registry()
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(reg); err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}
	return nil
}

// Use hands the named skill's content to the activator.
func (s *Surface) Use(ctx context.Context, name string) error {
	s.mu.Lock()
	skill, ok := s.reg.Lookup(name)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", registry.ErrSkillNotFound, name)
	}
	if s.activator == nil {
		return fmt.Errorf("no activation target configured")
	}
	if err := s.activator.Activate(ctx, skill.Content); err != nil {
		return err
	}
	s.logger.Info("skill used", zap.String("skill", name))
	return nil
}

// mutate runs one persist-then-replace cycle. The surface lock is held for
// the whole cycle so actions on one surface apply in the order issued.
func (s *Surface) mutate(ctx context.Context, op string, fn func(*registry.Registry) (*registry.Registry, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.reg.Clone())
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, next); err != nil {
		s.logger.Error("save failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("saving registry: %w", err)
	}
	s.reg = next
	s.logger.Debug("registry saved", zap.String("op", op), zap.Int("skills", next.Len()))
	return nil
}
