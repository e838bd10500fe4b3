// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"partnerpress/internal/imaging"
	"partnerpress/internal/middleware"
	"partnerpress/internal/models"
	"partnerpress/internal/render"
)

const (
	// maxUploadSize caps logo uploads at 10 MB.
	maxUploadSize = 10 << 20

	// maxImagePixels rejects decompression bombs before decoding.
	maxImagePixels = 40_000_000

	mediaPageSize = 100
)

// allowedMediaTypes are the sniffed MIME types accepted for upload.
var allowedMediaTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// mediaItem is one media row with its resolved URL.
type mediaItem struct {
	Media models.Media
	URL   string
}

// mediaJSON is the picker's view of a media item.
type mediaJSON struct {
	ID     int64  `json:"id"`
	URL    string `json:"url"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// MediaLibrary lists uploaded media: an HTML page for browsers, or a JSON
// array of {id, url} for the partner logo picker.
func (a *Admin) MediaLibrary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := a.mediaStore.List(ctx, mediaPageSize, 0)
	if err != nil {
		slog.Error("list media failed", "error", err)
	}

	views := make([]mediaItem, 0, len(items))
	for _, m := range items {
		views = append(views, mediaItem{Media: m, URL: a.resolver.ImageURL(ctx, m.ID, 0, 0)})
	}

	if wantsJSON(r) {
		out := make([]mediaJSON, 0, len(views))
		for _, v := range views {
			if !v.Media.IsImage() {
				continue
			}
			out = append(out, mediaJSON{
				ID: v.Media.ID, URL: v.URL, Name: v.Media.OriginalName,
				Width: v.Media.Width, Height: v.Media.Height,
			})
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	a.renderer.Page(w, r, "media", &render.PageData{
		Title:   "Media Library",
		Section: "media",
		Data: map[string]any{
			"Items":   views,
			"Enabled": a.storageClient != nil,
		},
	})
}

// MediaUpload stores an image in S3 together with its badge variant and
// records it in the media table. The returned integer ID is what editors
// put into a partner's logo field.
func (a *Admin) MediaUpload(w http.ResponseWriter, r *http.Request) {
	if a.storageClient == nil {
		a.mediaError(w, r, "Object storage is not configured.", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+4096)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		a.mediaError(w, r, "File too large. Maximum size is 10 MB.", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.mediaError(w, r, "No file provided.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		a.mediaError(w, r, "Failed to read file.", http.StatusInternalServerError)
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedMediaTypes[contentType]
	if !ok {
		a.mediaError(w, r, fmt.Sprintf("File type %q is not allowed.", contentType), http.StatusBadRequest)
		return
	}

	width, height, err := imaging.Dimensions(data)
	if err != nil {
		a.mediaError(w, r, "The file is not a readable image.", http.StatusBadRequest)
		return
	}
	if int64(width)*int64(height) > maxImagePixels {
		a.mediaError(w, r, "Image dimensions are too large.", http.StatusBadRequest)
		return
	}

	now := time.Now()
	fileID := uuid.New().String()
	prefix := fmt.Sprintf("media/%d/%02d/%s", now.Year(), now.Month(), fileID)
	key := prefix + ext

	if err := a.storageClient.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		slog.Error("s3 upload failed", "key", key, "error", err)
		a.mediaError(w, r, "Failed to upload file.", http.StatusInternalServerError)
		return
	}

	m := &models.Media{
		Filename:     fileID + ext,
		OriginalName: path.Base(header.Filename),
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		Width:        width,
		Height:       height,
		Bucket:       a.storageClient.Bucket(),
		S3Key:        key,
		UploaderID:   sess.UserID,
	}
	if alt := strings.TrimSpace(r.FormValue("alt_text")); alt != "" {
		m.AltText = &alt
	}
	m.BadgeS3Key = a.uploadBadge(r, data, prefix, width)

	created, err := a.mediaStore.Create(ctx, m)
	if err != nil {
		slog.Error("media insert failed", "key", key, "error", err)
		a.mediaError(w, r, "Failed to save file metadata.", http.StatusInternalServerError)
		return
	}

	slog.Info("media uploaded", "media_id", created.ID, "key", key, "badge", created.BadgeS3Key != nil)
	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, mediaJSON{
			ID: created.ID, URL: a.storageClient.FileURL(created.S3Key), Name: created.OriginalName,
			Width: created.Width, Height: created.Height,
		})
		return
	}
	http.Redirect(w, r, "/admin/media", http.StatusSeeOther)
}

// uploadBadge stores the narrow variant used by the cross-published badge.
// Images already at or below the badge width need none. Failures only
// cost the variant; the original is still usable.
func (a *Admin) uploadBadge(r *http.Request, data []byte, prefix string, width int) *string {
	if width <= imaging.Badge.Width {
		return nil
	}
	variant, err := imaging.Generate(data, imaging.Badge)
	if err != nil {
		slog.Warn("badge variant generation failed", "prefix", prefix, "error", err)
		return nil
	}
	key := prefix + "_" + variant.Name + ".png"
	if err := a.storageClient.Upload(r.Context(), key, variant.ContentType, bytes.NewReader(variant.Data), int64(len(variant.Data))); err != nil {
		slog.Warn("badge variant upload failed", "key", key, "error", err)
		return nil
	}
	return &key
}

// MediaDelete removes a media item from the database and S3.
func (a *Admin) MediaDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	deleted, err := a.mediaStore.Delete(ctx, id)
	if err != nil {
		slog.Error("media delete failed", "media_id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if deleted == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	if a.storageClient != nil {
		keys := []string{deleted.S3Key}
		if deleted.BadgeS3Key != nil {
			keys = append(keys, *deleted.BadgeS3Key)
		}
		for _, k := range keys {
			if err := a.storageClient.Delete(ctx, k); err != nil {
				slog.Warn("s3 delete failed", "key", k, "error", err)
			}
		}
	}

	// A deleted logo disappears from every badge and grid.
	a.pageCache.InvalidateAll(ctx)
	http.Redirect(w, r, "/admin/media", http.StatusSeeOther)
}

// mediaError answers in JSON for the picker and as the media page otherwise.
func (a *Admin) mediaError(w http.ResponseWriter, r *http.Request, msg string, status int) {
	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	a.renderer.PageStatus(w, r, status, "media", &render.PageData{
		Title:   "Media Library",
		Section: "media",
		Data: map[string]any{
			"Enabled": a.storageClient != nil,
			"Error":   msg,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json failed", "error", err)
	}
}
