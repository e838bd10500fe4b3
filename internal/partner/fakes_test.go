package partner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"partnerpress/internal/models"
	"partnerpress/internal/taxonomy"
)

var errStore = errors.New("store unavailable")

// memStore is an in-memory term store. Terms are returned in the order
// they were added.
type memStore struct {
	terms    []models.Term
	meta     map[int64]map[string]string
	assigned map[uuid.UUID][]int64
	writes   int

	failList, failMeta, failWrite bool
}

func newMemStore() *memStore {
	return &memStore{
		meta:     make(map[int64]map[string]string),
		assigned: make(map[uuid.UUID][]int64),
	}
}

// addPartner adds a partner term with optional logo and URL metadata.
func (s *memStore) addPartner(name, logo, url string) models.Term {
	t := models.Term{ID: int64(len(s.terms) + 1), Taxonomy: taxonomy.Partner, Name: name}
	s.terms = append(s.terms, t)
	if logo != "" {
		s.set(t.ID, MetaLogo, logo)
	}
	if url != "" {
		s.set(t.ID, MetaHomepageURL, url)
	}
	return t
}

func (s *memStore) set(termID int64, key, value string) {
	if s.meta[termID] == nil {
		s.meta[termID] = make(map[string]string)
	}
	s.meta[termID][key] = value
}

func (s *memStore) GetMeta(_ context.Context, termID int64, key string) (string, bool, error) {
	if s.failMeta {
		return "", false, errStore
	}
	v, ok := s.meta[termID][key]
	return v, ok, nil
}

func (s *memStore) SetMeta(_ context.Context, termID int64, key, value string) error {
	if s.failWrite {
		return errStore
	}
	s.writes++
	s.set(termID, key, value)
	return nil
}

func (s *memStore) ListByTaxonomy(_ context.Context, tax string, _ bool) ([]models.Term, error) {
	if s.failList {
		return nil, errStore
	}
	var out []models.Term
	for _, t := range s.terms {
		if t.Taxonomy == tax {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) TermsForContent(_ context.Context, contentID uuid.UUID, tax string) ([]models.Term, error) {
	if s.failList {
		return nil, errStore
	}
	var out []models.Term
	for _, id := range s.assigned[contentID] {
		t := s.terms[id-1]
		if t.Taxonomy == tax {
			out = append(out, t)
		}
	}
	return out, nil
}

// fakeAssets resolves IDs listed in known; everything else is missing.
type fakeAssets struct {
	known map[int64]string
}

func (a fakeAssets) ImageURL(_ context.Context, id int64, _, _ int) string {
	return a.known[id]
}

func (a fakeAssets) ImageTag(_ context.Context, id int64, w, h int) string {
	src, ok := a.known[id]
	if !ok {
		return ""
	}
	return fmt.Sprintf(`<img src="%s" data-hint="%dx%d" />`, src, w, h)
}

var (
	canEdit    = AuthorizerFunc(func(context.Context) bool { return true })
	cannotEdit = AuthorizerFunc(func(context.Context) bool { return false })
)
