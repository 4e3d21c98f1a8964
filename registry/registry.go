// MIT License
//
// Copyright (c) 2025 DaggerTech
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package registry

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Registry provides thread-safe management of connected campuses.
// It uses a mutex to protect concurrent access to the campus directory.
// Campus names are case-sensitive: "Lahore" and "lahore" are distinct
// entries.
type Registry struct {
	// Map of campus name to record
	campuses map[string]*CampusRecord
	// Protects concurrent access
	mutex sync.Mutex
}

// New creates and returns a new Registry.
// The registry is initialized with an empty directory
// and is ready for concurrent use.
//
// Returns:
//   - *Registry: A new, empty campus registry
func New() *Registry {
	return &Registry{
		campuses: make(map[string]*CampusRecord),
	}
}

// Add registers a campus in the directory. If a campus with the same name
// already exists it is silently overwritten; the displaced record's session
// keeps running but is no longer reachable by name.
//
// Parameters:
//   - rec: The CampusRecord to register
func (r *Registry) Add(rec *CampusRecord) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.campuses[rec.Name]; exists {
		log.Warnf("Campus %q re-registered, previous session orphaned", rec.Name)
	}
	r.campuses[rec.Name] = rec
}

// Remove deregisters a campus from the directory.
// The operation is a no-op if the campus doesn't exist.
//
// Parameters:
//   - name: The name of the campus to remove
func (r *Registry) Remove(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.campuses, name)
}

// RemoveRecord deregisters a campus only if the directory still holds the
// given record. A session that has been displaced by a later registration
// under the same name must not evict its successor during cleanup; this is
// the form session teardown uses.
//
// Parameters:
//   - name: The name of the campus to remove
//   - rec: The record the caller believes it registered
func (r *Registry) RemoveRecord(name string, rec *CampusRecord) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if current, exists := r.campuses[name]; exists && current == rec {
		delete(r.campuses, name)
	}
}

// Get retrieves a campus record by name.
// The returned record should not be modified as it is shared
// across goroutines.
//
// Parameters:
//   - name: The name of the campus to retrieve
//
// Returns:
//   - *CampusRecord: Pointer to the record if found, nil otherwise
//   - bool: True if the campus exists, false otherwise
func (r *Registry) Get(name string) (*CampusRecord, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	rec, exists := r.campuses[name]
	return rec, exists
}

// Exists checks if a campus with the given name is registered.
//
// Parameters:
//   - name: The name to check
//
// Returns:
//   - bool: True if the campus exists, false otherwise
func (r *Registry) Exists(name string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	_, exists := r.campuses[name]
	return exists
}

// Snapshot returns a slice containing all registered campuses.
// The mutex is held for the full copy so the slice is a consistent
// point-in-time view: no entry appears or vanishes mid-iteration due
// to a concurrent Add or Remove. The record pointers within the slice
// point to the same underlying data as the directory.
//
// Returns:
//   - []*CampusRecord: Slice of pointers to all registered campuses
func (r *Registry) Snapshot() []*CampusRecord {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	recs := make([]*CampusRecord, 0, len(r.campuses))
	for _, rec := range r.campuses {
		recs = append(recs, rec)
	}
	return recs
}

// Count returns the number of currently registered campuses.
//
// Returns:
//   - int: The directory size
func (r *Registry) Count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.campuses)
}
