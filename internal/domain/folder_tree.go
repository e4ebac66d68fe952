package domain

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// DefaultMaxFolderDepth is the number of nesting levels a folder chain may
// have, a root folder being level 1. Writes enforce it and walks over a
// FolderTree use it as their bound.
const DefaultMaxFolderDepth = 256

// FolderTree is an in-memory index over one owner's folders. It keeps the
// parent->children adjacency so closures and breadcrumbs can be computed
// iteratively without a round trip per level.
//
// Walks never recurse. Each walk carries a visited set and a depth bound and
// fails with ErrFolderCycle instead of looping on malformed data.
type FolderTree struct {
	nodes    map[uuid.UUID]*Folder
	children map[uuid.UUID][]uuid.UUID
	roots    []uuid.UUID
	maxDepth int
}

// NewFolderTree indexes folders. Folders whose parent is absent from the
// slice are treated as roots.
func NewFolderTree(folders []*Folder) *FolderTree {
	t := &FolderTree{
		nodes:    make(map[uuid.UUID]*Folder, len(folders)),
		children: make(map[uuid.UUID][]uuid.UUID),
		maxDepth: DefaultMaxFolderDepth,
	}

	for _, f := range folders {
		t.nodes[f.ID] = f
	}

	for _, f := range folders {
		if f.ParentID != nil {
			if _, ok := t.nodes[*f.ParentID]; ok {
				t.children[*f.ParentID] = append(t.children[*f.ParentID], f.ID)
				continue
			}
		}
		t.roots = append(t.roots, f.ID)
	}

	for parent := range t.children {
		t.sortByName(t.children[parent])
	}
	t.sortByName(t.roots)

	return t
}

// WithMaxDepth returns the tree with a different depth bound.
func (t *FolderTree) WithMaxDepth(depth int) *FolderTree {
	if depth > 0 {
		t.maxDepth = depth
	}
	return t
}

func (t *FolderTree) sortByName(ids []uuid.UUID) {
	sort.SliceStable(ids, func(i, j int) bool {
		return t.nodes[ids[i]].Name < t.nodes[ids[j]].Name
	})
}

// Len returns the number of indexed folders.
func (t *FolderTree) Len() int {
	return len(t.nodes)
}

// Get returns the folder with the given ID.
func (t *FolderTree) Get(id uuid.UUID) (*Folder, bool) {
	f, ok := t.nodes[id]
	return f, ok
}

// Roots returns the root folders ordered by name.
func (t *FolderTree) Roots() []*Folder {
	return t.resolve(t.roots)
}

// Children returns the direct children of id, or of the root group when id is nil.
func (t *FolderTree) Children(id *uuid.UUID) []*Folder {
	if id == nil {
		return t.Roots()
	}
	return t.resolve(t.children[*id])
}

func (t *FolderTree) resolve(ids []uuid.UUID) []*Folder {
	folders := make([]*Folder, 0, len(ids))
	for _, id := range ids {
		folders = append(folders, t.nodes[id])
	}
	return folders
}

// Subtree returns id followed by every transitive descendant of id.
func (t *FolderTree) Subtree(id uuid.UUID) ([]uuid.UUID, error) {
	if _, ok := t.nodes[id]; !ok {
		return nil, fmt.Errorf("folder %s is not indexed", id)
	}

	type frame struct {
		id    uuid.UUID
		depth int
	}

	visited := make(map[uuid.UUID]struct{}, len(t.nodes))
	result := make([]uuid.UUID, 0, 8)
	stack := []frame{{id: id}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[top.id]; seen {
			return nil, fmt.Errorf("%w: folder %s reached twice", ErrFolderCycle, top.id)
		}
		if top.depth > t.maxDepth {
			return nil, fmt.Errorf("%w: depth exceeds %d", ErrFolderCycle, t.maxDepth)
		}

		visited[top.id] = struct{}{}
		result = append(result, top.id)

		kids := t.children[top.id]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: kids[i], depth: top.depth + 1})
		}
	}

	return result, nil
}

// Breadcrumbs returns the ancestors of id ordered from the root down to its
// direct parent. A root folder has no breadcrumbs.
func (t *FolderTree) Breadcrumbs(id uuid.UUID) ([]Breadcrumb, error) {
	current, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("folder %s is not indexed", id)
	}

	visited := map[uuid.UUID]struct{}{id: {}}
	path := make([]Breadcrumb, 0, 4)

	for current.ParentID != nil {
		parent, ok := t.nodes[*current.ParentID]
		if !ok {
			break
		}
		if _, seen := visited[parent.ID]; seen {
			return nil, fmt.Errorf("%w: folder %s reached twice", ErrFolderCycle, parent.ID)
		}
		if len(path) >= t.maxDepth {
			return nil, fmt.Errorf("%w: depth exceeds %d", ErrFolderCycle, t.maxDepth)
		}
		visited[parent.ID] = struct{}{}
		path = append(path, Breadcrumb{ID: parent.ID, Name: parent.Name})
		current = parent
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, nil
}

// IsWithinSubtree reports whether candidate is root itself or one of its descendants.
func (t *FolderTree) IsWithinSubtree(root, candidate uuid.UUID) (bool, error) {
	ids, err := t.Subtree(root)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == candidate {
			return true, nil
		}
	}
	return false, nil
}

// RecursiveCount sums perFolder over the subtree rooted at id.
func (t *FolderTree) RecursiveCount(id uuid.UUID, perFolder map[uuid.UUID]int) (int, error) {
	ids, err := t.Subtree(id)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, fid := range ids {
		total += perFolder[fid]
	}
	return total, nil
}

// Depth returns the level of id, counting a root folder as 1. Unlike
// Breadcrumbs it ignores the depth bound, so writes can measure a chain
// before deciding whether to extend it.
func (t *FolderTree) Depth(id uuid.UUID) (int, error) {
	current, ok := t.nodes[id]
	if !ok {
		return 0, fmt.Errorf("folder %s is not indexed", id)
	}

	visited := map[uuid.UUID]struct{}{id: {}}
	depth := 1
	for current.ParentID != nil {
		parent, ok := t.nodes[*current.ParentID]
		if !ok {
			break
		}
		if _, seen := visited[parent.ID]; seen {
			return 0, fmt.Errorf("%w: folder %s reached twice", ErrFolderCycle, parent.ID)
		}
		visited[parent.ID] = struct{}{}
		depth++
		current = parent
	}
	return depth, nil
}

// Height returns the number of levels in the subtree rooted at id, 1 for a
// folder without children. Like Depth it ignores the depth bound.
func (t *FolderTree) Height(id uuid.UUID) (int, error) {
	if _, ok := t.nodes[id]; !ok {
		return 0, fmt.Errorf("folder %s is not indexed", id)
	}

	visited := map[uuid.UUID]struct{}{id: {}}
	level := []uuid.UUID{id}
	height := 0
	for len(level) > 0 {
		height++
		var next []uuid.UUID
		for _, fid := range level {
			for _, kid := range t.children[fid] {
				if _, seen := visited[kid]; seen {
					return 0, fmt.Errorf("%w: folder %s reached twice", ErrFolderCycle, kid)
				}
				visited[kid] = struct{}{}
				next = append(next, kid)
			}
		}
		level = next
	}
	return height, nil
}
