package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/worktrack-hq/attendance-backend-go/internal/domain/person"
)

type Directory struct {
	mu     sync.RWMutex
	people map[string]person.TrackedPerson
}

func NewDirectory(people ...person.TrackedPerson) *Directory {
	d := &Directory{people: make(map[string]person.TrackedPerson, len(people))}
	for _, p := range people {
		d.people[p.ID] = p
	}
	return d
}

func (d *Directory) Put(p person.TrackedPerson) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.people[p.ID] = p
}

// GetByID implements person.DirectoryRepository.
func (d *Directory) GetByID(ctx context.Context, id string) (person.TrackedPerson, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.people[id]
	if !ok {
		return person.TrackedPerson{}, person.ErrPersonNotFound
	}
	return p, nil
}

// ListByIDs implements person.DirectoryRepository.
func (d *Directory) ListByIDs(ctx context.Context, ids []string) ([]person.TrackedPerson, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []person.TrackedPerson
	for _, id := range ids {
		if p, ok := d.people[id]; ok {
			out = append(out, p)
		}
	}
	sortByName(out)
	return out, nil
}

// ListBySupervisor implements person.DirectoryRepository.
func (d *Directory) ListBySupervisor(ctx context.Context, supervisorID string) ([]person.TrackedPerson, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []person.TrackedPerson
	for _, p := range d.people {
		if p.Active && p.SupervisorID != nil && *p.SupervisorID == supervisorID {
			out = append(out, p)
		}
	}
	sortByName(out)
	return out, nil
}

// ListActive implements person.DirectoryRepository.
func (d *Directory) ListActive(ctx context.Context) ([]person.TrackedPerson, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []person.TrackedPerson
	for _, p := range d.people {
		if p.Active {
			out = append(out, p)
		}
	}
	sortByName(out)
	return out, nil
}

func sortByName(people []person.TrackedPerson) {
	sort.Slice(people, func(i, j int) bool {
		return people[i].DisplayName < people[j].DisplayName
	})
}
