// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package collections

import (
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	tests := []struct {
		slug        string
		found       bool
		read        ReadMode
		ownerScoped bool
	}{
		{slug: "pages", found: true, read: ReadPublished},
		{slug: "headers", found: true, read: ReadPublic},
		{slug: "video-progress", found: true, read: ReadAuthenticated, ownerScoped: true},
		{slug: "tenants", found: false},
		{slug: "domains", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			c, ok := r.Get(tt.slug)
			if ok != tt.found {
				t.Fatalf("expected found %v, got %v", tt.found, ok)
			}
			if !ok {
				return
			}
			if c.Read != tt.read {
				t.Errorf("expected read mode %s, got %s", tt.read, c.Read)
			}
			if c.OwnerScoped != tt.ownerScoped {
				t.Errorf("expected owner scoped %v, got %v", tt.ownerScoped, c.OwnerScoped)
			}
		})
	}

	if n := len(r.Slugs()); n != 12 {
		t.Errorf("expected 12 collections, got %d", n)
	}
}
