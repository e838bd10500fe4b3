// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"html/template"
	"net/url"

	"partnerpress/internal/middleware"
	"partnerpress/internal/partner"
	"partnerpress/internal/store"
)

// PartnerTermHooks adds the logo and homepage fields to the partner term
// screens and saves them after every create and update. The session role
// decides whether the metadata is written.
func PartnerTermHooks(terms *store.TermStore, assets partner.Assets) TermHooks {
	auth := partner.AuthorizerFunc(middleware.CanEditContent)
	return TermHooks{
		AddFields: partner.AddFormFields,
		EditFields: func(ctx context.Context, termID int64) template.HTML {
			return partner.EditFormFields(ctx, terms, assets, termID)
		},
		Saved: func(ctx context.Context, termID int64, form url.Values) error {
			return partner.SaveMeta(ctx, terms, auth, termID, form)
		},
	}
}
