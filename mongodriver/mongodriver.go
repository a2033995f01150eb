// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package mongodriver is the MongoDB-wire implementation of the
// writer's driver adapter contract: translate strategy-tagged batches
// into bulk operations, classify the driver's own errors into the
// pipeline's ErrorKind taxonomy, and recover partial progress out of a
// bulk-write error envelope.
package mongodriver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/go-core-stack/doccopy/document"
	"github.com/go-core-stack/doccopy/errors"
)

// duplicateKeyCode is the MongoDB wire error code for a unique-index
// violation.
const duplicateKeyCode = 11000

// rateLimitCode is the DocumentDB-compatible throttle error code
// surfaced alongside HTTP 429 style messages.
const rateLimitCode = 16500

var (
	throttlePattern = regexp.MustCompile(`(?i)rate limit|throttl|too many requests`)
	networkPattern  = regexp.MustCompile(`(?i)timeout|network|connection`)
)

// bulkWriteError wraps the driver's BulkWriteException together with
// the BulkWriteResult the driver still returns alongside it, so the
// single-argument ClassifyError/ExtractPartialProgress contract can
// recover both the error shape and the confirmed partial counts from
// one value.
type bulkWriteError struct {
	exception mongo.BulkWriteException
	partial   *mongo.BulkWriteResult
}

func (e *bulkWriteError) Error() string {
	return e.exception.Error()
}

func (e *bulkWriteError) Unwrap() error {
	return e.exception
}

// Strategy is the MongoDB-backed implementation of writer.DriverAdapter.
type Strategy struct {
	col *mongo.Collection
}

// New constructs a Strategy writing into the given collection.
func New(col *mongo.Collection) *Strategy {
	return &Strategy{col: col}
}

// EnsureTargetExists looks the collection up by name and creates it if
// absent, returning whether it had to be created.
func (s *Strategy) EnsureTargetExists(ctx context.Context) (created bool, err error) {
	db := s.col.Database()
	names, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: s.col.Name()}})
	if err != nil {
		return false, err
	}
	if len(names) > 0 {
		return false, nil
	}
	if err := db.CreateCollection(ctx, s.col.Name()); err != nil {
		return false, err
	}
	return true, nil
}

// ClassifyError maps a raw driver error into the pipeline's tagged
// ErrorKind: 429/16500 or
// a rate-limit message is Throttle; connection-reset/timeout/dns/
// unreachable codes or message is Network; any bulk-write error
// containing code 11000 is Conflict; everything else is Other.
func ClassifyError(err error) document.ErrorKind {
	if err == nil {
		return document.Other
	}

	if cmdErr, ok := err.(mongo.CommandError); ok {
		if cmdErr.Code == 429 || cmdErr.Code == rateLimitCode {
			return document.Throttle
		}
		if cmdErr.HasErrorLabel("NetworkError") {
			return document.Network
		}
	}

	msg := err.Error()
	if throttlePattern.MatchString(msg) {
		return document.Throttle
	}

	if we, ok := writeErrorsOf(err); ok {
		for _, e := range we {
			if e.Code == duplicateKeyCode {
				return document.Conflict
			}
		}
	}
	if mongo.IsDuplicateKeyError(err) {
		return document.Conflict
	}

	if networkPattern.MatchString(msg) {
		return document.Network
	}
	if strings.Contains(msg, "ECONNRESET") || strings.Contains(msg, "ETIMEDOUT") ||
		strings.Contains(msg, "ENOTFOUND") || strings.Contains(msg, "ENETUNREACH") {
		return document.Network
	}

	return document.Other
}

// writeErrorsOf pulls the WriteErrors slice out of either a bare
// mongo.BulkWriteException or this package's bulkWriteError wrapper.
func writeErrorsOf(err error) ([]mongo.BulkWriteError, bool) {
	if bwe, ok := err.(*bulkWriteError); ok {
		return bwe.exception.WriteErrors, true
	}
	if bwe, ok := err.(mongo.BulkWriteException); ok {
		return bwe.WriteErrors, true
	}
	return nil, false
}

// ExtractPartialProgress recovers the strategy-semantic progress
// counters the writer needs to slice its retry batch and report
// real-time progress, out of a bulkWriteError. Returns false for any
// other error shape (there is nothing confirmed to recover).
func ExtractPartialProgress(strategy document.ConflictStrategy, err error) (document.PartialProgress, bool) {
	bwe, ok := err.(*bulkWriteError)
	if !ok || bwe.partial == nil {
		return document.PartialProgress{}, false
	}

	p := document.PartialProgress{Strategy: strategy}
	if bwe.partial.InsertedCount > 0 {
		p.Inserted = int(bwe.partial.InsertedCount)
	}
	if bwe.partial.MatchedCount > 0 {
		p.Replaced = int(bwe.partial.MatchedCount)
	}
	if bwe.partial.UpsertedCount > 0 {
		p.Created = int(bwe.partial.UpsertedCount)
	}
	p.Processed = p.Inserted + p.Replaced + p.Created
	return p, p.Processed > 0
}

// WriteBatch applies docs to the collection according to strategy,
// returning a strategy-tagged BatchResult. It throws only for
// Throttle/Network/unexpected Conflict in the fallback path; expected
// conflicts (Skip duplicates, Abort first-conflict) are returned in
// Errors with counts populated, never thrown.
func (s *Strategy) WriteBatch(ctx context.Context, docs []document.Document, strategy document.ConflictStrategy) (document.BatchResult, error) {
	switch strategy {
	case document.Skip:
		return s.writeSkip(ctx, docs)
	case document.Overwrite:
		return s.writeOverwrite(ctx, docs)
	case document.Abort:
		return s.writeAbort(ctx, docs)
	case document.GenerateNewIds:
		return s.writeGenerateNewIds(ctx, docs)
	default:
		return document.BatchResult{}, errors.Wrapf(errors.InvalidArgument, "unsupported conflict strategy %s", strategy)
	}
}

// writeSkip pre-filters documents whose _id already exists, then
// inserts only the complement. The pre-filter is a performance
// optimization: a race-condition duplicate surfacing during the insert
// is still handled via the fallback path.
func (s *Strategy) writeSkip(ctx context.Context, docs []document.Document) (document.BatchResult, error) {
	ids := make([]interface{}, len(docs))
	for i, d := range docs {
		ids[i] = d.Id
	}

	cursor, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return document.BatchResult{}, err
	}
	var existing []bson.M
	if err := cursor.All(ctx, &existing); err != nil {
		return document.BatchResult{}, err
	}
	existingSet := make(map[interface{}]bool, len(existing))
	for _, e := range existing {
		existingSet[e["_id"]] = true
	}

	var toInsert []document.Document
	result := document.BatchResult{Strategy: document.Skip}
	for _, d := range docs {
		if existingSet[d.Id] {
			result.Skipped++
			result.Errors = append(result.Errors, document.ConflictError{
				Id:      d.Id,
				Message: fmt.Sprintf("document %v already exists, skipped", d.Id),
			})
			continue
		}
		toInsert = append(toInsert, d)
	}

	if len(toInsert) > 0 {
		models := make([]mongo.WriteModel, len(toInsert))
		for i, d := range toInsert {
			models[i] = mongo.NewInsertOneModel().SetDocument(withID(d))
		}
		res, err := s.col.BulkWrite(ctx, models)
		if err != nil {
			bwe, ok := err.(mongo.BulkWriteException)
			if !ok {
				return document.BatchResult{}, err
			}
			raceDuplicates := 0
			for _, we := range bwe.WriteErrors {
				if we.Code == duplicateKeyCode {
					raceDuplicates++
				} else {
					return document.BatchResult{}, &bulkWriteError{exception: bwe, partial: res}
				}
			}
			if res != nil {
				result.Inserted += int(res.InsertedCount)
			}
			result.Skipped += raceDuplicates
		} else {
			result.Inserted += len(toInsert)
		}
	}

	result.Processed = result.Inserted + result.Skipped
	return result, nil
}

// writeOverwrite issues an ordered bulk of replace-with-upsert
// operations, reporting matched documents as replaced and upserted
// documents as created.
func (s *Strategy) writeOverwrite(ctx context.Context, docs []document.Document) (document.BatchResult, error) {
	models := make([]mongo.WriteModel, len(docs))
	for i, d := range docs {
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": d.Id}).
			SetReplacement(withID(d)).
			SetUpsert(true)
	}

	res, err := s.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		if bwe, ok := err.(mongo.BulkWriteException); ok {
			return document.BatchResult{}, &bulkWriteError{exception: bwe, partial: res}
		}
		return document.BatchResult{}, err
	}

	return document.BatchResult{
		Strategy:  document.Overwrite,
		Replaced:  int(res.MatchedCount),
		Created:   int(res.UpsertedCount),
		Processed: int(res.MatchedCount + res.UpsertedCount),
	}, nil
}

// writeAbort issues an ordered insert; on the first duplicate-key
// error it returns the insertedCount confirmed so far plus a
// one-element Errors list carrying the conflicting document's id.
func (s *Strategy) writeAbort(ctx context.Context, docs []document.Document) (document.BatchResult, error) {
	models := make([]mongo.WriteModel, len(docs))
	for i, d := range docs {
		models[i] = mongo.NewInsertOneModel().SetDocument(withID(d))
	}

	res, err := s.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err == nil {
		return document.BatchResult{
			Strategy:  document.Abort,
			Inserted:  int(res.InsertedCount),
			Processed: int(res.InsertedCount),
		}, nil
	}

	bwe, ok := err.(mongo.BulkWriteException)
	if !ok {
		return document.BatchResult{}, err
	}
	insertedSoFar := 0
	if res != nil {
		insertedSoFar = int(res.InsertedCount)
	}
	for _, we := range bwe.WriteErrors {
		if we.Code == duplicateKeyCode {
			conflictID := idAtIndex(docs, we.Index)
			return document.BatchResult{
				Strategy:  document.Abort,
				Inserted:  insertedSoFar,
				Aborted:   1,
				Processed: insertedSoFar + 1,
				Errors: []document.ConflictError{{
					Id:      conflictID,
					Message: fmt.Sprintf("abort strategy: conflicting document %v: %s", conflictID, we.Message),
				}},
			}, nil
		}
	}
	return document.BatchResult{}, &bulkWriteError{exception: bwe, partial: res}
}

// writeGenerateNewIds strips each document's original _id, relocates
// it under _original_id (disambiguated with a numeric suffix if that
// key is already taken), and inserts the result, letting the server
// assign a fresh _id.
func (s *Strategy) writeGenerateNewIds(ctx context.Context, docs []document.Document) (document.BatchResult, error) {
	models := make([]mongo.WriteModel, len(docs))
	for i, d := range docs {
		models[i] = mongo.NewInsertOneModel().SetDocument(relocateID(d))
	}

	res, err := s.col.BulkWrite(ctx, models)
	if err != nil {
		if bwe, ok := err.(mongo.BulkWriteException); ok {
			return document.BatchResult{}, &bulkWriteError{exception: bwe, partial: res}
		}
		return document.BatchResult{}, err
	}

	return document.BatchResult{
		Strategy:  document.GenerateNewIds,
		Inserted:  int(res.InsertedCount),
		Processed: int(res.InsertedCount),
	}, nil
}

// withID flattens a Document's Content with its Id reattached as _id,
// for operations that address the target key explicitly.
func withID(d document.Document) bson.M {
	m := toBsonM(d.Content)
	m["_id"] = d.Id
	return m
}

// relocateID flattens a Document's Content without its original
// server-assigned key, moving that key under _original_id (or a
// numbered variant if the content already defines that field).
func relocateID(d document.Document) bson.M {
	m := toBsonM(d.Content)
	key := "_original_id"
	for i := 1; ; i++ {
		if _, taken := m[key]; !taken {
			break
		}
		key = fmt.Sprintf("_original_id_%d", i)
	}
	m[key] = d.Id
	return m
}

func toBsonM(content interface{}) bson.M {
	if m, ok := content.(bson.M); ok {
		cp := make(bson.M, len(m))
		for k, v := range m {
			cp[k] = v
		}
		return cp
	}
	raw, err := bson.Marshal(content)
	if err != nil {
		return bson.M{}
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return bson.M{}
	}
	return m
}

func idAtIndex(docs []document.Document, index int) interface{} {
	if index < 0 || index >= len(docs) {
		return nil
	}
	return docs[index].Id
}
