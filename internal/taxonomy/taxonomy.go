// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package taxonomy holds the built-in taxonomy definitions attached to posts.
// Definitions are static: the database only stores terms and their metadata,
// while labels, hierarchy, and public rewrite slugs live here.
package taxonomy

const (
	// Partner is the taxonomy whose terms carry logo and homepage metadata.
	Partner = "partner"

	// SpecialReport groups posts into long-running report series.
	SpecialReport = "special-report"
)

// Labels holds the admin-facing names for a taxonomy.
type Labels struct {
	Name         string // plural, e.g. "Partners"
	SingularName string
	AddNewItem   string
	EditItem     string
	SearchItems  string
}

// Definition describes a taxonomy registered on the post content type.
type Definition struct {
	Name            string
	Hierarchical    bool
	Public          bool
	ShowAdminColumn bool
	Rewrite         string // URL prefix for public archives, e.g. "partners"
	Labels          Labels
}

// LabelSet selects which wording the partner taxonomy uses in the admin.
type LabelSet string

const (
	LabelsMedia     LabelSet = "media"
	LabelsHechinger LabelSet = "hechinger"
)

// Registry is the set of taxonomies available to posts.
type Registry struct {
	defs []Definition
}

// NewRegistry builds the registry with the special-report and partner
// taxonomies. The partner labels follow the requested label set; an
// unknown set falls back to the media partner wording.
func NewRegistry(set LabelSet) *Registry {
	partnerLabels := labelsFor("Media Partner", "Media Partners")
	if set == LabelsHechinger {
		partnerLabels = labelsFor("Partner", "Partners")
	}

	return &Registry{defs: []Definition{
		{
			Name:            SpecialReport,
			Hierarchical:    true,
			Public:          true,
			ShowAdminColumn: true,
			Rewrite:         "special-reports",
			Labels:          labelsFor("Special Report", "Special Reports"),
		},
		{
			Name:            Partner,
			Hierarchical:    true,
			Public:          true,
			ShowAdminColumn: true,
			Rewrite:         "partners",
			Labels:          partnerLabels,
		},
	}}
}

func labelsFor(singular, plural string) Labels {
	return Labels{
		Name:         plural,
		SingularName: singular,
		AddNewItem:   "Add New " + singular,
		EditItem:     "Edit " + singular,
		SearchItems:  "Search " + plural,
	}
}

// Definitions returns every registered taxonomy in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Lookup finds a taxonomy by name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	for _, d := range r.defs {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// ByRewrite finds a public taxonomy by its archive URL prefix.
func (r *Registry) ByRewrite(prefix string) (Definition, bool) {
	for _, d := range r.defs {
		if d.Public && d.Rewrite == prefix {
			return d, true
		}
	}
	return Definition{}, false
}
