// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog resolves the category forest: slug paths, ancestor
// chains, descendant closures and breadcrumbs, plus the per-category
// display metadata (counts, preview images, theme colors) built on top.
package catalog

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"buttonshop/internal/colors"
	"buttonshop/internal/models"
)

// Tree is an in-memory index over one batch of categories. It is built
// once per request and is read-only afterwards.
type Tree struct {
	byID     map[uuid.UUID]*models.Category
	children map[uuid.UUID][]uuid.UUID
	roots    []uuid.UUID
}

// Breadcrumb is one step of a navigation trail.
type Breadcrumb struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// NewTree indexes a flat list of categories. A category whose parent is
// missing from the list, or is itself, is treated as a root.
func NewTree(categories []models.Category) *Tree {
	t := &Tree{
		byID:     make(map[uuid.UUID]*models.Category, len(categories)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	for i := range categories {
		c := categories[i]
		t.byID[c.ID] = &c
	}

	for _, c := range categories {
		if c.ParentID != nil && *c.ParentID != c.ID {
			if _, ok := t.byID[*c.ParentID]; ok {
				t.children[*c.ParentID] = append(t.children[*c.ParentID], c.ID)
				continue
			}
		}
		t.roots = append(t.roots, c.ID)
	}

	t.sortIDs(t.roots)
	for _, ids := range t.children {
		t.sortIDs(ids)
	}
	return t
}

// sortIDs orders ids by sort order, then name.
func (t *Tree) sortIDs(ids []uuid.UUID) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := t.byID[ids[i]], t.byID[ids[j]]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Name < b.Name
	})
}

// Len returns the number of indexed categories, active or not.
func (t *Tree) Len() int {
	return len(t.byID)
}

// Get returns the category with the given id. Returns nil if unknown.
func (t *Tree) Get(id uuid.UUID) *models.Category {
	c, ok := t.byID[id]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

// Roots returns the active root categories in display order.
func (t *Tree) Roots() []models.Category {
	return t.active(t.roots)
}

// Children returns the active direct children of parentID in display order.
func (t *Tree) Children(parentID uuid.UUID) []models.Category {
	return t.active(t.children[parentID])
}

func (t *Tree) active(ids []uuid.UUID) []models.Category {
	var result []models.Category
	for _, id := range ids {
		if c := t.byID[id]; c.IsActive {
			result = append(result, *c)
		}
	}
	return result
}

// ResolvePath walks a slug path from a root down to the leaf. At every
// level exactly one active category must match the slug; otherwise, or for
// an empty path, it returns nil.
func (t *Tree) ResolvePath(slugs []string) *models.CategoryWithAncestors {
	if len(slugs) == 0 {
		return nil
	}

	candidates := t.roots
	var chain []models.Category
	for _, s := range slugs {
		var match *models.Category
		for _, id := range candidates {
			c := t.byID[id]
			if !c.IsActive || c.Slug != s {
				continue
			}
			if match != nil {
				return nil
			}
			match = c
		}
		if match == nil {
			return nil
		}
		chain = append(chain, *match)
		candidates = t.children[match.ID]
	}

	return &models.CategoryWithAncestors{
		Category:  chain[len(chain)-1],
		Ancestors: chain[:len(chain)-1],
	}
}

// SplitPath turns "a/b/c" (with or without surrounding slashes) into slugs.
func SplitPath(path string) []string {
	var slugs []string
	for _, s := range strings.Split(path, "/") {
		if s = strings.TrimSpace(s); s != "" {
			slugs = append(slugs, s)
		}
	}
	return slugs
}

// Ancestors returns the ancestor chain of id ordered from the root down to
// the immediate parent. The walk stops if the parent graph loops.
func (t *Tree) Ancestors(id uuid.UUID) []models.Category {
	c, ok := t.byID[id]
	if !ok {
		return nil
	}

	var chain []models.Category
	seen := map[uuid.UUID]bool{id: true}
	for c.ParentID != nil {
		parent, ok := t.byID[*c.ParentID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		chain = append(chain, *parent)
		c = parent
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// WithAncestors loads a category by id together with its ancestor chain.
// Returns nil if the id is unknown.
func (t *Tree) WithAncestors(id uuid.UUID) *models.CategoryWithAncestors {
	c := t.Get(id)
	if c == nil {
		return nil
	}
	return &models.CategoryWithAncestors{Category: *c, Ancestors: t.Ancestors(id)}
}

// DescendantIDs returns every category below id, active or not, in
// breadth-first order. id itself is never included, even if the graph
// loops back to it.
func (t *Tree) DescendantIDs(id uuid.UUID) []uuid.UUID {
	var result []uuid.UUID
	visited := map[uuid.UUID]bool{id: true}
	queue := []uuid.UUID{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range t.children[current] {
			if visited[child] {
				continue
			}
			visited[child] = true
			result = append(result, child)
			queue = append(queue, child)
		}
	}
	return result
}

// Siblings returns every category, active or not, that shares parentID,
// in display order. A nil parentID selects the roots.
func (t *Tree) Siblings(parentID *uuid.UUID) []models.Category {
	ids := t.roots
	if parentID != nil {
		ids = t.children[*parentID]
	}
	result := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		result = append(result, *t.byID[id])
	}
	return result
}

// Walk visits every category reachable from the roots, active or not,
// depth first in display order. Categories caught in a parent loop are
// unreachable from any root and are not visited.
func (t *Tree) Walk(fn func(c models.Category, depth int)) {
	visited := make(map[uuid.UUID]bool, len(t.byID))
	var visit func(id uuid.UUID, depth int)
	visit = func(id uuid.UUID, depth int) {
		if visited[id] {
			return
		}
		visited[id] = true
		fn(*t.byID[id], depth)
		for _, child := range t.children[id] {
			visit(child, depth+1)
		}
	}
	for _, id := range t.roots {
		visit(id, 0)
	}
}

// Path returns the slug path of a category from its root.
func (t *Tree) Path(id uuid.UUID) []string {
	c, ok := t.byID[id]
	if !ok {
		return nil
	}
	var slugs []string
	for _, a := range t.Ancestors(id) {
		slugs = append(slugs, a.Slug)
	}
	return append(slugs, c.Slug)
}

// Href returns the public URL of a category.
func (t *Tree) Href(id uuid.UUID) string {
	return Href(t.Path(id))
}

// Href joins a slug path into a category URL.
func Href(slugs []string) string {
	return "/categories/" + strings.Join(slugs, "/")
}

// Breadcrumbs returns Home, then every ancestor, then the category itself.
func Breadcrumbs(cwa *models.CategoryWithAncestors) []Breadcrumb {
	crumbs := make([]Breadcrumb, 0, len(cwa.Ancestors)+2)
	crumbs = append(crumbs, Breadcrumb{Name: "Home", Href: "/"})

	var slugs []string
	for _, a := range cwa.Ancestors {
		slugs = append(slugs, a.Slug)
		crumbs = append(crumbs, Breadcrumb{Name: a.Name, Href: Href(slugs)})
	}
	slugs = append(slugs, cwa.Category.Slug)
	return append(crumbs, Breadcrumb{Name: cwa.Category.Name, Href: Href(slugs)})
}

// EffectiveColors resolves each theme color independently: the category's
// own value, else the nearest ancestor that sets it, else the default.
func EffectiveColors(cwa *models.CategoryWithAncestors) colors.Pair {
	pair := colors.DefaultPair()
	if v := inherit(cwa, func(c *models.Category) *string { return c.PrimaryColor }); v != "" {
		pair.Primary = v
	}
	if v := inherit(cwa, func(c *models.Category) *string { return c.SecondaryColor }); v != "" {
		pair.Secondary = v
	}
	return pair
}

// EffectiveBackground resolves the background image like EffectiveColors.
// There is no default image, so the result may be empty.
func EffectiveBackground(cwa *models.CategoryWithAncestors) string {
	return inherit(cwa, func(c *models.Category) *string { return c.BackgroundImage })
}

// inherit scans the category, then its ancestors nearest first.
func inherit(cwa *models.CategoryWithAncestors, field func(*models.Category) *string) string {
	if v := field(&cwa.Category); v != nil && *v != "" {
		return *v
	}
	for i := len(cwa.Ancestors) - 1; i >= 0; i-- {
		if v := field(&cwa.Ancestors[i]); v != nil && *v != "" {
			return *v
		}
	}
	return ""
}
