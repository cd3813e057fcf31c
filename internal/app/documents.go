package app

import (
	"context"
	"io"
	"strings"
	"time"

	"martdesk/api/internal/docstore"
	"martdesk/api/internal/store"
	"martdesk/api/internal/util"
)

// VerificationDocuments lists the supporting documents attached to one
// verification request.
func (s *Service) VerificationDocuments(id string) ([]store.VerificationDocument, error) {
	request, ok := s.verifications.Get(id)
	if !ok {
		return nil, notFoundError("Verification request not found")
	}
	if request.Documents == nil {
		return []store.VerificationDocument{}, nil
	}
	return request.Documents, nil
}

// AddVerificationDocument stores the uploaded file in the blob store and
// records its metadata on the request.
func (s *Service) AddVerificationDocument(ctx context.Context, sess Session, id, name, contentType string, size int64, body io.Reader) (store.VerificationDocument, error) {
	if _, ok := s.verifications.Get(id); !ok {
		return store.VerificationDocument{}, notFoundError("Verification request not found")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return store.VerificationDocument{}, validationError("a document name is required", nil)
	}
	if size <= 0 {
		return store.VerificationDocument{}, validationError("the document body is empty", nil)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	docID := util.NewID("doc")
	key := "verifications/" + id + "/" + docID
	if err := s.docs.Put(ctx, key, name, contentType, size, body); err != nil {
		return store.VerificationDocument{}, err
	}

	doc := store.VerificationDocument{
		ID:          docID,
		Name:        name,
		ContentType: contentType,
		Size:        size,
		Key:         key,
		UploadedAt:  time.Now(),
	}
	_, found, err := s.verifications.Update(ctx, id, func(v *store.VerificationRequest) {
		v.Documents = append(v.Documents, doc)
	})
	if err != nil {
		return store.VerificationDocument{}, err
	}
	if !found {
		_ = s.docs.Delete(ctx, key)
		return store.VerificationDocument{}, notFoundError("Verification request not found")
	}
	s.audit(ctx, sess, "verifications", "upload_document", id)
	return doc, nil
}

// OpenVerificationDocument streams one stored document. The caller closes
// the returned body.
func (s *Service) OpenVerificationDocument(ctx context.Context, id, docID string) (docstore.Object, error) {
	request, ok := s.verifications.Get(id)
	if !ok {
		return docstore.Object{}, notFoundError("Verification request not found")
	}
	for _, doc := range request.Documents {
		if doc.ID == docID {
			return s.docs.Get(ctx, doc.Key)
		}
	}
	return docstore.Object{}, notFoundError("Document not found")
}
