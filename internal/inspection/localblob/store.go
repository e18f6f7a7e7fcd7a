package localblob

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"inspections-server/internal/inspection"
	"inspections-server/internal/shared/errors"

	"github.com/google/uuid"
)

// Store keeps the entire project tree serialized as one JSON value in a KV
// slot, the single-blob counterpart of the multi-table postgres store. All
// mutations rewrite the whole value; a mutex serializes them.
//
// This backend has no notion of separate owners: it serves a single local
// user and ignores the owner id. Parent-chain scoping still holds: children
// are only ever looked up inside the project the caller names, so an id from
// another project is a not-found error here too.
type Store struct {
	kv     KV
	logger *slog.Logger
	mutex  sync.Mutex
}

func NewStore(kv KV, logger *slog.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger.With("component", "localblob_store"),
	}
}

// readAll deserializes the stored tree. A missing value is an empty tree; a
// corrupt value is logged and treated as empty rather than wedging every
// request.
func (s *Store) readAll() ([]inspection.Project, error) {
	data, found, err := s.kv.Get()
	if err != nil {
		return nil, err
	}
	if !found {
		return []inspection.Project{}, nil
	}

	var projects []inspection.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		s.logger.Error("Stored project tree is corrupt, starting empty", "error", err)
		return []inspection.Project{}, nil
	}
	return projects, nil
}

func (s *Store) writeAll(projects []inspection.Project) error {
	data, err := json.Marshal(projects)
	if err != nil {
		return errors.WrapInternal("failed to serialize project tree", err)
	}
	return s.kv.Set(data)
}

// ---- Projects ----

func (s *Store) ListProjects(ctx context.Context, ownerID int) ([]inspection.Project, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	out := make([]inspection.Project, 0, len(projects))
	for _, p := range projects {
		p.Levels = nil
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetProject(ctx context.Context, ownerID int, projectID string) (*inspection.Project, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}
	cp := *p
	cp.Levels = nil
	return &cp, nil
}

func (s *Store) CreateProject(ctx context.Context, ownerID int, in inspection.ProjectInput) (*inspection.Project, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	project := inspection.Project{
		ID:                      uuid.NewString(),
		Location:                in.Location,
		BuildingCharacteristics: in.BuildingCharacteristics,
		Levels:                  []inspection.Level{},
		CreatedAt:               time.Now().UTC(),
	}
	projects = append(projects, project)

	if err := s.writeAll(projects); err != nil {
		return nil, err
	}

	cp := project
	cp.Levels = nil
	return &cp, nil
}

func (s *Store) UpdateProject(ctx context.Context, ownerID int, projectID string, in inspection.ProjectInput) (*inspection.Project, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}
	p.Location = in.Location
	p.BuildingCharacteristics = in.BuildingCharacteristics

	if err := s.writeAll(projects); err != nil {
		return nil, err
	}

	cp := *p
	cp.Levels = nil
	return &cp, nil
}

func (s *Store) DeleteProject(ctx context.Context, ownerID int, projectID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return err
	}

	for i := range projects {
		if projects[i].ID == projectID {
			projects = append(projects[:i], projects[i+1:]...)
			return s.writeAll(projects)
		}
	}
	return errors.NotFoundf("project with id %s not found", projectID)
}

// ---- Levels ----

func (s *Store) GetLevelsByProjectID(ctx context.Context, ownerID int, projectID string) ([]inspection.Level, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}

	out := make([]inspection.Level, 0, len(p.Levels))
	for _, l := range p.Levels {
		l.Spaces = nil
		out = append(out, l)
	}
	return out, nil
}

func (s *Store) CreateLevel(ctx context.Context, ownerID int, projectID string, in inspection.LevelInput) (*inspection.Level, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}

	level := inspection.Level{
		ID:        uuid.NewString(),
		Name:      in.Name,
		ProjectID: projectID,
		Spaces:    []inspection.SpaceRoom{},
		CreatedAt: time.Now().UTC(),
	}
	p.Levels = append(p.Levels, level)

	if err := s.writeAll(projects); err != nil {
		return nil, err
	}

	cp := level
	cp.Spaces = nil
	return &cp, nil
}

func (s *Store) UpdateLevel(ctx context.Context, ownerID int, projectID, levelID string, in inspection.LevelInput) (*inspection.Level, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}
	l := findLevel(p, levelID)
	if l == nil {
		return nil, errors.NotFoundf("level with id %s not found", levelID)
	}
	l.Name = in.Name

	if err := s.writeAll(projects); err != nil {
		return nil, err
	}

	cp := *l
	cp.Spaces = nil
	return &cp, nil
}

func (s *Store) DeleteLevel(ctx context.Context, ownerID int, projectID, levelID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return errors.NotFoundf("project with id %s not found", projectID)
	}

	for li := range p.Levels {
		if p.Levels[li].ID == levelID {
			p.Levels = append(p.Levels[:li], p.Levels[li+1:]...)
			return s.writeAll(projects)
		}
	}
	return errors.NotFoundf("level with id %s not found", levelID)
}

// ---- Spaces ----

func (s *Store) GetSpacesByLevelID(ctx context.Context, ownerID int, projectID, levelID string) ([]inspection.SpaceRoom, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}
	l := findLevel(p, levelID)
	if l == nil {
		return nil, errors.NotFoundf("level with id %s not found", levelID)
	}

	out := make([]inspection.SpaceRoom, 0, len(l.Spaces))
	for _, sp := range l.Spaces {
		sp.Observations = nil
		out = append(out, sp)
	}
	return out, nil
}

func (s *Store) CreateSpace(ctx context.Context, ownerID int, projectID, levelID string, in inspection.SpaceInput) (*inspection.SpaceRoom, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}
	l := findLevel(p, levelID)
	if l == nil {
		return nil, errors.NotFoundf("level with id %s not found", levelID)
	}

	space := inspection.SpaceRoom{
		ID:           uuid.NewString(),
		Name:         in.Name,
		LevelID:      levelID,
		Observations: []inspection.Observation{},
		CreatedAt:    time.Now().UTC(),
	}
	l.Spaces = append(l.Spaces, space)

	if err := s.writeAll(projects); err != nil {
		return nil, err
	}

	cp := space
	cp.Observations = nil
	return &cp, nil
}

func (s *Store) UpdateSpace(ctx context.Context, ownerID int, projectID, spaceID string, in inspection.SpaceInput) (*inspection.SpaceRoom, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}
	sp := findSpace(p, spaceID)
	if sp == nil {
		return nil, errors.NotFoundf("space with id %s not found", spaceID)
	}
	sp.Name = in.Name

	if err := s.writeAll(projects); err != nil {
		return nil, err
	}

	cp := *sp
	cp.Observations = nil
	return &cp, nil
}

func (s *Store) DeleteSpace(ctx context.Context, ownerID int, projectID, spaceID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return errors.NotFoundf("project with id %s not found", projectID)
	}

	for li := range p.Levels {
		spaces := p.Levels[li].Spaces
		for si := range spaces {
			if spaces[si].ID == spaceID {
				p.Levels[li].Spaces = append(spaces[:si], spaces[si+1:]...)
				return s.writeAll(projects)
			}
		}
	}
	return errors.NotFoundf("space with id %s not found", spaceID)
}

// ---- Observations ----

func (s *Store) GetObservationsBySpaceID(ctx context.Context, ownerID int, projectID, spaceID string) ([]inspection.Observation, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}
	sp := findSpace(p, spaceID)
	if sp == nil {
		return nil, errors.NotFoundf("space with id %s not found", spaceID)
	}

	out := make([]inspection.Observation, len(sp.Observations))
	copy(out, sp.Observations)
	return out, nil
}

func (s *Store) GetObservation(ctx context.Context, ownerID int, projectID, observationID string) (*inspection.Observation, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}
	o := findObservation(p, observationID)
	if o == nil {
		return nil, errors.NotFoundf("observation with id %s not found", observationID)
	}
	cp := *o
	return &cp, nil
}

func (s *Store) CreateObservation(ctx context.Context, ownerID int, projectID, levelID, spaceID, text, locationInSpace string, photoURLs []string) (*inspection.Observation, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}
	l := findLevel(p, levelID)
	if l == nil {
		return nil, errors.NotFoundf("level with id %s not found", levelID)
	}

	var sp *inspection.SpaceRoom
	for si := range l.Spaces {
		if l.Spaces[si].ID == spaceID {
			sp = &l.Spaces[si]
			break
		}
	}
	if sp == nil {
		return nil, errors.NotFoundf("space with id %s not found", spaceID)
	}

	if photoURLs == nil {
		photoURLs = []string{}
	}
	obs := inspection.Observation{
		ID:              uuid.NewString(),
		Text:            text,
		LocationInSpace: locationInSpace,
		Photos:          photoURLs,
		SpaceID:         spaceID,
		CreatedAt:       time.Now().UTC(),
	}
	sp.Observations = append(sp.Observations, obs)

	if err := s.writeAll(projects); err != nil {
		return nil, err
	}

	cp := obs
	return &cp, nil
}

func (s *Store) UpdateObservation(ctx context.Context, ownerID int, projectID, observationID string, upd inspection.ObservationUpdate) (*inspection.Observation, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}
	o := findObservation(p, observationID)
	if o == nil {
		return nil, errors.NotFoundf("observation with id %s not found", observationID)
	}
	o.Text = upd.Text
	o.LocationInSpace = upd.LocationInSpace

	if err := s.writeAll(projects); err != nil {
		return nil, err
	}

	cp := *o
	return &cp, nil
}

func (s *Store) DeleteObservation(ctx context.Context, ownerID int, projectID, observationID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return errors.NotFoundf("project with id %s not found", projectID)
	}

	for li := range p.Levels {
		for si := range p.Levels[li].Spaces {
			observations := p.Levels[li].Spaces[si].Observations
			for oi := range observations {
				if observations[oi].ID == observationID {
					p.Levels[li].Spaces[si].Observations = append(observations[:oi], observations[oi+1:]...)
					return s.writeAll(projects)
				}
			}
		}
	}
	return errors.NotFoundf("observation with id %s not found", observationID)
}

// ---- Tree ----

func (s *Store) GetProjectTree(ctx context.Context, ownerID int, projectID string) (*inspection.Project, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	projects, err := s.readAll()
	if err != nil {
		return nil, err
	}

	p := findProject(projects, projectID)
	if p == nil {
		return nil, errors.NotFoundf("project with id %s not found", projectID)
	}
	return cloneProject(p), nil
}

// ---- Tree lookups ----
//
// Child lookups walk a single project, never the whole tree, so ids that live
// under a different project do not resolve.

func findProject(projects []inspection.Project, id string) *inspection.Project {
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i]
		}
	}
	return nil
}

func findLevel(p *inspection.Project, id string) *inspection.Level {
	for li := range p.Levels {
		if p.Levels[li].ID == id {
			return &p.Levels[li]
		}
	}
	return nil
}

func findSpace(p *inspection.Project, id string) *inspection.SpaceRoom {
	for li := range p.Levels {
		for si := range p.Levels[li].Spaces {
			if p.Levels[li].Spaces[si].ID == id {
				return &p.Levels[li].Spaces[si]
			}
		}
	}
	return nil
}

func findObservation(p *inspection.Project, id string) *inspection.Observation {
	for li := range p.Levels {
		for si := range p.Levels[li].Spaces {
			observations := p.Levels[li].Spaces[si].Observations
			for oi := range observations {
				if observations[oi].ID == id {
					return &observations[oi]
				}
			}
		}
	}
	return nil
}

func cloneProject(p *inspection.Project) *inspection.Project {
	cp := *p
	cp.Levels = make([]inspection.Level, len(p.Levels))
	for li, l := range p.Levels {
		cl := l
		cl.Spaces = make([]inspection.SpaceRoom, len(l.Spaces))
		for si, sp := range l.Spaces {
			cs := sp
			cs.Observations = make([]inspection.Observation, len(sp.Observations))
			copy(cs.Observations, sp.Observations)
			cl.Spaces[si] = cs
		}
		cp.Levels[li] = cl
	}
	return &cp
}
