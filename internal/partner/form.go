// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package partner

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
)

// The upload button is wired up by /static/admin.js, which opens the media
// picker and writes the chosen ID and URL back into these fields.
var formTmpl = template.Must(template.New("add").Parse(`
<div class="form-field">
	<label for="partner_logo">Partner Logo:</label>
	<input type="hidden" name="partner_logo" id="partner_logo" value="" />
	<input class="upload_image_button button" name="add_partner_logo" id="add_partner_logo" type="button" value="Select/Upload Image" />
	<img src="" id="partner_logo_preview" style="max-width: 250px; width: 100%; height: auto" />
</div>
<div class="form-field">
	<label for="partner_url">Partner URL:</label>
	<input type="text" name="partner_url" id="partner_url" value="" />
</div>
{{define "edit"}}
<tr class="form-field">
	<th scope="row" valign="top"><label for="add_partner_logo">Partner Logo</label></th>
	<td>
		<input type="hidden" name="partner_logo" id="partner_logo" value="{{.LogoID}}" />
		<input class="upload_image_button button" name="add_partner_logo" id="add_partner_logo" type="button" value="Select/Upload Image" />
	</td>
</tr>
<tr class="form-field">
	<th scope="row" valign="top"></th>
	<td>
		<div class="img-preview">
			<img src="{{.LogoURL}}" id="partner_logo_preview" style="max-width: 250px; width: 100%; height: auto" />
		</div>
	</td>
</tr>
<tr class="form-field">
	<th scope="row" valign="top"><label for="partner_url">Partner URL</label></th>
	<td>
		<input type="text" name="partner_url" id="partner_url" value="{{.URL}}" />
	</td>
</tr>
{{end}}`))

// previewWidth is the size hint used for the logo preview on the edit form.
const previewWidth = 150

// AddFormFields returns the empty partner fields for the "add new" form.
func AddFormFields() template.HTML {
	var buf bytes.Buffer
	if err := formTmpl.ExecuteTemplate(&buf, "add", nil); err != nil {
		slog.Error("render partner add fields failed", "error", err)
		return ""
	}
	return template.HTML(buf.String())
}

// EditFormFields returns the partner fields pre-filled from the term's
// stored metadata. An unresolvable logo leaves the preview empty.
func EditFormFields(ctx context.Context, meta MetaReader, assets Assets, termID int64) template.HTML {
	m := loadMeta(ctx, meta, termID)

	data := struct {
		LogoID  int64
		LogoURL string
		URL     string
	}{LogoID: m.logo, URL: m.url}
	if m.logo != 0 {
		data.LogoURL = assets.ImageURL(ctx, m.logo, previewWidth, previewWidth)
	}

	var buf bytes.Buffer
	if err := formTmpl.ExecuteTemplate(&buf, "edit", data); err != nil {
		slog.Error("render partner edit fields failed", "term_id", termID, "error", err)
		return ""
	}
	return template.HTML(buf.String())
}
