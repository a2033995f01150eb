// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package mongodriver

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/go-core-stack/doccopy/document"
)

// CursorStream adapts a *mongo.Cursor into a document.DocumentStream,
// splitting each raw document into its "_id" and the remaining fields
// the same way the driver adapter's write side expects to receive
// them back.
type CursorStream struct {
	cur *mongo.Cursor
}

// NewCursorStream opens a Find cursor against col sorted by _id so
// that a restarted copy resumes in the same document order, and wraps
// it as a document.DocumentStream.
func NewCursorStream(ctx context.Context, col *mongo.Collection, batchSize int32) (*CursorStream, error) {
	cur, err := col.Find(ctx, bson.D{}, options.Find().
		SetBatchSize(batchSize).
		SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return &CursorStream{cur: cur}, nil
}

// Next decodes the cursor's current raw document into a document.Document,
// separating out the "_id" field as Document.Id and keeping the rest of
// the raw BSON as Content.
func (s *CursorStream) Next(ctx context.Context) (document.Document, bool, error) {
	if !s.cur.Next(ctx) {
		if err := s.cur.Err(); err != nil {
			return document.Document{}, false, err
		}
		return document.Document{}, true, nil
	}

	raw := s.cur.Current
	var id interface{}
	if err := raw.Lookup("_id").Unmarshal(&id); err != nil {
		return document.Document{}, false, err
	}

	var content bson.D
	if err := bson.Unmarshal(raw, &content); err != nil {
		return document.Document{}, false, err
	}
	filtered := make(bson.D, 0, len(content))
	for _, elem := range content {
		if elem.Key != "_id" {
			filtered = append(filtered, elem)
		}
	}

	return document.Document{Id: id, Content: filtered}, false, nil
}

// Release closes the underlying cursor. Safe to call more than once.
func (s *CursorStream) Release(ctx context.Context) error {
	if s.cur == nil {
		return nil
	}
	return s.cur.Close(ctx)
}
