package stateful

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// StateStore holds every resource for one server instance.
type StateStore struct {
	mu        sync.RWMutex
	resources map[string]*Resource
	order     []string
	observer  Observer
}

// NewStateStore creates an empty StateStore.
func NewStateStore() *StateStore {
	return &StateStore{
		resources: make(map[string]*Resource),
		observer:  &NoopObserver{},
	}
}

// SetObserver installs hooks fired by the Bridge. Nil restores the no-op observer.
func (s *StateStore) SetObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o == nil {
		o = &NoopObserver{}
	}
	s.observer = o
}

// GetObserver returns the installed observer.
func (s *StateStore) GetObserver() Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.observer
}

// Register adds a resource and loads its seed data.
func (s *StateStore) Register(config *ResourceConfig) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	if config.Name == "" {
		return errors.New("resource name cannot be empty")
	}
	if config.Label == "" {
		return fmt.Errorf("resource %q: label cannot be empty", config.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.resources[config.Name]; exists {
		return fmt.Errorf("resource %q already registered", config.Name)
	}

	seen := make(map[int64]bool, len(config.SeedData))
	for i, rec := range config.SeedData {
		recID := rec.ID()
		if recID == 0 {
			return fmt.Errorf("seed data for %q: record %d has no positive integer id", config.Name, i)
		}
		if seen[recID] {
			return fmt.Errorf("seed data for %q: duplicate id %d at index %d", config.Name, recID, i)
		}
		seen[recID] = true
	}

	s.resources[config.Name] = NewResource(config)
	s.order = append(s.order, config.Name)
	return nil
}

// Get returns a resource by name, or nil.
func (s *StateStore) Get(name string) *Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resources[name]
}

// List returns resource names in registration order.
func (s *StateStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Reset restores resources to their seed data.
// If resourceName is empty, all resources are reset.
func (s *StateStore) Reset(resourceName string) (*ResetResponse, error) {
	start := time.Now()

	s.mu.RLock()
	var targets []*Resource
	if resourceName == "" {
		for _, name := range s.order {
			targets = append(targets, s.resources[name])
		}
	} else {
		res, ok := s.resources[resourceName]
		if !ok {
			s.mu.RUnlock()
			return nil, &NotFoundError{Resource: resourceName, Label: "Resource"}
		}
		targets = []*Resource{res}
	}
	observer := s.observer
	s.mu.RUnlock()

	names := make([]string, 0, len(targets))
	for _, res := range targets {
		res.Reset()
		names = append(names, res.Name())
	}
	observer.OnReset(names, time.Since(start))

	return &ResetResponse{
		Reset:     true,
		Resources: names,
		Message:   "State reset to seed data",
	}, nil
}

// Overview returns information about all registered resources.
func (s *StateStore) Overview() *StateOverview {
	s.mu.RLock()
	defer s.mu.RUnlock()

	overview := &StateOverview{
		Resources:    len(s.order),
		ResourceList: make([]*ResourceInfo, 0, len(s.order)),
	}
	for _, name := range s.order {
		info := s.resources[name].Info()
		overview.TotalItems += info.ItemCount
		overview.ResourceList = append(overview.ResourceList, info)
	}
	return overview
}

// ResourceInfo returns details about a specific resource.
func (s *StateStore) ResourceInfo(name string) (*ResourceInfo, error) {
	res := s.Get(name)
	if res == nil {
		return nil, &NotFoundError{Resource: name, Label: "Resource"}
	}
	return res.Info(), nil
}
