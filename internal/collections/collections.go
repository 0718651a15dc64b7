// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package collections is the registry of tenant scoped content collections and
// the read policy each of them applies to anonymous callers.
package collections

import (
	"sort"
)

type ReadMode int

const (
	// ReadPublic exposes every document of the tenant to anonymous callers.
	ReadPublic ReadMode = iota
	// ReadPublished exposes only published documents to anonymous callers.
	ReadPublished
	// ReadAuthenticated hides the collection from anonymous callers.
	ReadAuthenticated
)

func (m ReadMode) String() string {
	switch m {
	case ReadPublic:
		return "public"
	case ReadPublished:
		return "published"
	case ReadAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

type Collection struct {
	Slug string
	// Drafts collections carry a draft/published status.
	Drafts bool
	Read   ReadMode
	// OwnerScoped collections restrict plain users to the documents they own.
	OwnerScoped bool
}

type Registry struct {
	collections map[string]Collection
}

func (r *Registry) Get(slug string) (Collection, bool) {
	c, ok := r.collections[slug]
	return c, ok
}

func (r *Registry) Slugs() []string {
	slugs := make([]string, 0, len(r.collections))
	for s := range r.collections {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)
	return slugs
}

func NewRegistry(cs ...Collection) *Registry {
	r := new(Registry)
	r.collections = make(map[string]Collection, len(cs))

	for _, c := range cs {
		r.collections[c.Slug] = c
	}

	return r
}

// Default returns the registry of every tenant scoped collection of the platform.
func Default() *Registry {
	return NewRegistry(
		Collection{Slug: "pages", Drafts: true, Read: ReadPublished},
		Collection{Slug: "posts", Drafts: true, Read: ReadPublished},
		Collection{Slug: "headers", Read: ReadPublic},
		Collection{Slug: "footers", Read: ReadPublic},
		Collection{Slug: "videos", Drafts: true, Read: ReadPublished},
		Collection{Slug: "programs", Drafts: true, Read: ReadPublished},
		Collection{Slug: "notifications", Read: ReadAuthenticated, OwnerScoped: true},
		Collection{Slug: "customers", Read: ReadAuthenticated, OwnerScoped: true},
		Collection{Slug: "subscriptions", Read: ReadAuthenticated, OwnerScoped: true},
		Collection{Slug: "achievements", Read: ReadAuthenticated, OwnerScoped: true},
		Collection{Slug: "video-progress", Read: ReadAuthenticated, OwnerScoped: true},
		Collection{Slug: "enrollments", Read: ReadAuthenticated, OwnerScoped: true},
	)
}
