package content

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/career-engine/pkg/session"
)

// ErrScenarioNotFound is returned when no template exists for a scenario id.
var ErrScenarioNotFound = errors.New("scenario not found")

type overlayKey struct {
	scenarioID string
	role       session.Role
}

// Store holds validated content in memory, keyed by scenario id and by
// (scenario id, role) for overlays. It is populated once at process start
// and read-only afterwards, so lookups need no locking.
type Store struct {
	templates map[string]*ScenarioTemplate
	overlays  map[overlayKey]*RoleOverlay
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		templates: make(map[string]*ScenarioTemplate),
		overlays:  make(map[overlayKey]*RoleOverlay),
	}
}

// LoadDir validates dir and indexes its content. If any document fails
// validation, nothing is indexed and the report is returned alongside the
// error: unpublishable content never becomes servable.
func (s *Store) LoadDir(dir string) (Report, error) {
	v := NewValidator()
	report, err := v.ValidateDir(dir)
	if err != nil {
		return report, err
	}
	if !report.Valid() {
		return report, fmt.Errorf("content validation failed with %d error(s)", report.ErrorCount())
	}
	for _, t := range v.Templates() {
		s.templates[t.ID] = t
	}
	for _, o := range v.Overlays() {
		s.overlays[overlayKey{o.ScenarioID, o.Role}] = o
	}
	return report, nil
}

// AddTemplate indexes a template directly. Intended for tests; production
// content goes through LoadDir so it cannot bypass validation.
func (s *Store) AddTemplate(t *ScenarioTemplate) {
	s.templates[t.ID] = t
}

// AddOverlay indexes an overlay directly. Intended for tests.
func (s *Store) AddOverlay(o *RoleOverlay) {
	s.overlays[overlayKey{o.ScenarioID, o.Role}] = o
}

// Len returns the number of indexed templates.
func (s *Store) Len() int { return len(s.templates) }

// ScenarioIDs lists the ids of all indexed templates.
func (s *Store) ScenarioIDs() []string {
	ids := make([]string, 0, len(s.templates))
	for id := range s.templates {
		ids = append(ids, id)
	}
	return ids
}

// GetMergedScenario returns the effective scenario for (scenarioID, role).
// An empty role, or a role with no overlay, yields the base template
// unchanged.
func (s *Store) GetMergedScenario(scenarioID string, role session.Role) (*MergedScenario, error) {
	t, ok := s.templates[scenarioID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, scenarioID)
	}
	var o *RoleOverlay
	if role != "" {
		o = s.overlays[overlayKey{scenarioID, role}]
	}
	return Merge(t, o), nil
}
