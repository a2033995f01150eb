// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package mongodriver

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/go-core-stack/doccopy/document"
)

func Test_ClassifyError_Throttle(t *testing.T) {
	err := errors.New("too many requests, please slow down")
	if got := ClassifyError(err); got != document.Throttle {
		t.Fatalf("expected Throttle, got %s", got)
	}
}

func Test_ClassifyError_Network(t *testing.T) {
	err := errors.New("dial tcp: connection timeout")
	if got := ClassifyError(err); got != document.Network {
		t.Fatalf("expected Network, got %s", got)
	}
}

func Test_ClassifyError_Conflict(t *testing.T) {
	bwe := mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{
			{WriteError: mongo.WriteError{Code: duplicateKeyCode, Message: "E11000 duplicate key"}},
		},
	}
	if got := ClassifyError(bwe); got != document.Conflict {
		t.Fatalf("expected Conflict, got %s", got)
	}
}

func Test_ClassifyError_Other(t *testing.T) {
	err := errors.New("validator rejected document")
	if got := ClassifyError(err); got != document.Other {
		t.Fatalf("expected Other, got %s", got)
	}
}

func Test_ThrottleSimulator_ZeroProgressThenSucceeds(t *testing.T) {
	sim := &ThrottleSimulator{ThrottleAfter: 1, ThrottleCount: 1, ProgressFraction: 0}
	docs := []document.Document{{Id: 1}, {Id: 2}}

	_, err := sim.WriteBatch(context.Background(), docs, document.Skip)
	if err != nil {
		t.Fatalf("expected first call to succeed, got %v", err)
	}

	_, err = sim.WriteBatch(context.Background(), docs, document.Skip)
	if err == nil {
		t.Fatalf("expected second call to throttle")
	}
	if ClassifySimulated(err) != document.Throttle {
		t.Fatalf("expected simulated error to classify as Throttle")
	}
	progress, ok := ExtractSimulatedProgress(document.Skip, err)
	if !ok || progress.Processed != 0 {
		t.Fatalf("expected zero-progress throttle, got %+v ok=%v", progress, ok)
	}

	_, err = sim.WriteBatch(context.Background(), docs, document.Skip)
	if err != nil {
		t.Fatalf("expected simulator to recover after ThrottleCount calls, got %v", err)
	}
}

func Test_ThrottleSimulator_PartialProgress(t *testing.T) {
	sim := &ThrottleSimulator{ThrottleAfter: 0, ThrottleCount: 1, ProgressFraction: 0.5}
	docs := []document.Document{{Id: 1}, {Id: 2}, {Id: 3}, {Id: 4}}

	_, err := sim.WriteBatch(context.Background(), docs, document.Skip)
	if err == nil {
		t.Fatalf("expected throttle on first call")
	}
	progress, ok := ExtractSimulatedProgress(document.Skip, err)
	if !ok || progress.Processed != 2 {
		t.Fatalf("expected partial progress of 2, got %+v ok=%v", progress, ok)
	}
}

func Test_RelocateID_DisambiguatesCollision(t *testing.T) {
	d := document.Document{
		Id:      "orig",
		Content: map[string]interface{}{"_original_id": "taken"},
	}
	m := relocateID(d)
	if m["_original_id"] != "taken" {
		t.Fatalf("expected existing _original_id to survive untouched")
	}
	if m["_original_id_1"] != "orig" {
		t.Fatalf("expected collision to be disambiguated under _original_id_1, got %v", m["_original_id_1"])
	}
}
