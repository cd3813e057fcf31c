package search

import (
	"context"
	"log"
)

// Service is the facade that tries Meilisearch first and falls back to PG FTS.
type Service struct {
	meili *Meili
	pgfts *PgFTS
}

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili, pgfts *PgFTS) *Service {
	return &Service{meili: meili, pgfts: pgfts}
}

// Search tries Meilisearch if healthy, otherwise falls back to PG FTS.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to pgfts: %v", err)
	}

	if s.pgfts == nil {
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	results, total, err := s.pgfts.Search(q)
	if err != nil {
		log.Printf("search: pgfts error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexUser indexes a user (fire-and-forget to Meilisearch).
func (s *Service) IndexUser(u UserRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexUser(u); err != nil {
			log.Printf("search: index user %s: %v", u.ID, err)
		}
	}()
}

// IndexComplaint indexes a complaint (fire-and-forget to Meilisearch).
func (s *Service) IndexComplaint(c ComplaintRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexComplaint(c); err != nil {
			log.Printf("search: index complaint %s: %v", c.ID, err)
		}
	}()
}

// IndexPage indexes a content page (fire-and-forget to Meilisearch).
func (s *Service) IndexPage(p PageRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexPage(p); err != nil {
			log.Printf("search: index page %s: %v", p.ID, err)
		}
	}()
}

// DeleteUser removes a user from the search index (fire-and-forget).
func (s *Service) DeleteUser(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteUser(id); err != nil {
			log.Printf("search: delete user %s: %v", id, err)
		}
	}()
}

// DeleteComplaint removes a complaint from the search index (fire-and-forget).
func (s *Service) DeleteComplaint(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteComplaint(id); err != nil {
			log.Printf("search: delete complaint %s: %v", id, err)
		}
	}()
}

// DeletePage removes a content page from the search index (fire-and-forget).
func (s *Service) DeletePage(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeletePage(id); err != nil {
			log.Printf("search: delete page %s: %v", id, err)
		}
	}()
}

// ReindexAll pushes a full snapshot of every searchable resource to
// Meilisearch. Called during startup once the collections are loaded.
func (s *Service) ReindexAll(users []UserRecord, complaints []ComplaintRecord, pages []PageRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}

	if len(users) > 0 {
		if err := s.meili.IndexUsers(users); err != nil {
			log.Printf("search: reindex users: %v", err)
		}
	}
	if len(complaints) > 0 {
		if err := s.meili.IndexComplaints(complaints); err != nil {
			log.Printf("search: reindex complaints: %v", err)
		}
	}
	if len(pages) > 0 {
		if err := s.meili.IndexPages(pages); err != nil {
			log.Printf("search: reindex pages: %v", err)
		}
	}
}

// ReindexFromPG reindexes the database-backed resources into Meilisearch.
func (s *Service) ReindexFromPG(ctx context.Context) {
	if s.meili == nil || !s.meili.Healthy() || s.pgfts == nil {
		return
	}
	complaints, pages, err := s.pgfts.LoadAllRecords(ctx)
	if err != nil {
		log.Printf("search: reindex load failed: %v", err)
		return
	}
	s.ReindexAll(nil, complaints, pages)
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
