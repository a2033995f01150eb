// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package db

import (
	"context"
	"fmt"
	"log"
	"reflect"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type DocumentKey[K any] struct {
	Key *K `bson:"_id,omitempty"`
}

type UpdateDescription[E any] struct {
	UpdatedFields *E       `bson:"updatedFields,omitempty"`
	RemovedFields []string `bson:"removedFields,omitempty"`
}

type Namespace struct {
	Database   string `bson:"db,omitempty"`
	Collection string `bson:"coll,omitempty"`
}

type Event[K any, E any] struct {
	Doc     DocumentKey[K]        `bson:"documentKey,omitempty"`
	Op      string                `bson:"operationType,omitempty"`
	Time    bson.Timestamp        `bson:"clusterTime,omitempty"`
	Ns      *Namespace            `bson:"ns,omitempty"`
	Entry   *E                    `bson:"fullDocument,omitempty"`
	Updates *UpdateDescription[E] `bson:"updateDescription,omitempty"`
}

func (e *Event[K, E]) LogEvent() {
	msg := "Event: "
	if e.Ns != nil {
		msg += fmt.Sprintf("Coll=%s:%s, ", e.Ns.Database, e.Ns.Collection)
	}
	msg += fmt.Sprintf("Key=%v, Op=%s, Time=%v", e.Doc.Key, e.Op, e.Time)
	if e.Entry != nil {
		msg += fmt.Sprintf(", Entry= %v", *e.Entry)
	}
	if e.Updates != nil && e.Updates.UpdatedFields != nil {
		msg += fmt.Sprintf(", Updates=%v", *e.Updates.UpdatedFields)
	}

	log.Print(msg)
}

// EventLogger watches a collection and logs every change as a
// typed Event, keyed and shaped by the K/E type parameters.
type EventLogger[K any, E any] struct {
	col StoreCollection
}

func NewEventLogger[K any, E any](col StoreCollection) *EventLogger[K, E] {
	return &EventLogger[K, E]{
		col: col,
	}
}

// Start registers a Watch callback that decodes every notified key into
// an Event[K, E] and logs it. The callback only has the document key
// available (the store's Watch contract), so Entry/Updates stay nil;
// callers that need the full document should Find it themselves.
func (l *EventLogger[K, E]) Start(ctx context.Context) error {
	var event Event[K, E]
	eventType := reflect.TypeOf(event)

	log.Printf("Starting event logger for collection with event type: %s", eventType)

	return l.col.Watch(ctx, nil, func(op string, wKey interface{}) {
		key, _ := wKey.(*K)
		e := Event[K, E]{
			Doc: DocumentKey[K]{Key: key},
			Op:  op,
		}
		e.LogEvent()
	})
}
