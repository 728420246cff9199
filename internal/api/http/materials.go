package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eadlabs/ead-platform/internal/catalog"
	"github.com/eadlabs/ead-platform/internal/storage"
)

const maxUploadBytes = 64 << 20

// POST /lessons/{lessonID}/materials — multipart form with "file",
// optional "name" and "comment" fields.
func UploadMaterialHandler(store *catalog.SQLStore, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lessonID := chi.URLParam(r, "lessonID")
		if _, err := store.GetLesson(r.Context(), lessonID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, "lesson not found", http.StatusNotFound)
				return
			}
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "bad multipart form", http.StatusBadRequest)
			return
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file field required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		name := r.FormValue("name")
		if name == "" {
			name = hdr.Filename
		}
		key := fmt.Sprintf("materials/%s/%s%s", lessonID, uuid.NewString(), safeExt(hdr.Filename))
		if _, err := blobs.Put(key, file); err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		m, err := store.AddMaterial(r.Context(), catalog.SupportMaterial{
			LessonID: lessonID,
			Name:     name,
			Comment:  r.FormValue("comment"),
			FilePath: key,
		})
		if err != nil {
			_ = blobs.Delete(key)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, m)
	}
}

// GET /lessons/{lessonID}/materials
func ListMaterialsHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListMaterials(r.Context(), chi.URLParam(r, "lessonID"))
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, list)
	}
}

// DELETE /materials/{materialID} — removes the row, then the blob.
func DeleteMaterialHandler(store *catalog.SQLStore, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := store.DeleteMaterial(r.Context(), chi.URLParam(r, "materialID"))
		if errors.Is(err, catalog.ErrNotFound) {
			http.Error(w, "material not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		_ = blobs.Delete(key)
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /assets/* — streams a stored blob (lesson videos, materials).
// Keys are validated against path escapes before hitting the store.
func AssetHandler(blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		if key == "" || strings.Contains(key, "..") {
			http.Error(w, "bad asset key", http.StatusBadRequest)
			return
		}
		rc, err := blobs.Get(key)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				http.Error(w, "asset not found", http.StatusNotFound)
				return
			}
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		defer rc.Close()
		if ct := contentTypeFor(key); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		_, _ = io.Copy(w, rc)
	}
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 {
		return ""
	}
	return ext
}

func contentTypeFor(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".pdf":
		return "application/pdf"
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	case ".mp4":
		return "video/mp4"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
