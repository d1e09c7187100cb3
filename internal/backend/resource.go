package backend

import (
	"fmt"
	"sort"
)

// Resource is the table of files mounted from the application archive.
// Entries are addressed by dense ids handed to the client.
type Resource struct {
	paths map[string]uint32
	files [][]byte
	names []string
}

// NewResource creates an empty resource table.
func NewResource() *Resource {
	return &Resource{paths: make(map[string]uint32)}
}

// Add registers file data under path and returns its id. Re-adding a path
// replaces its data and keeps the id.
func (r *Resource) Add(path string, data []byte) uint32 {
	if id, ok := r.paths[path]; ok {
		r.files[id] = data
		return id
	}
	id := uint32(len(r.files))
	r.paths[path] = id
	r.files = append(r.files, data)
	r.names = append(r.names, path)
	return id
}

// Id resolves a path to its resource id.
func (r *Resource) Id(path string) (uint32, bool) {
	id, ok := r.paths[path]
	return id, ok
}

// Data returns the file contents for an id.
func (r *Resource) Data(id uint32) ([]byte, error) {
	if int(id) >= len(r.files) {
		return nil, fmt.Errorf("no resource with id %d", id)
	}
	return r.files[id], nil
}

// Size returns the file size for an id.
func (r *Resource) Size(id uint32) (uint32, error) {
	data, err := r.Data(id)
	if err != nil {
		return 0, err
	}
	return uint32(len(data)), nil
}

// Paths lists all mounted paths in sorted order.
func (r *Resource) Paths() []string {
	paths := append([]string(nil), r.names...)
	sort.Strings(paths)
	return paths
}
