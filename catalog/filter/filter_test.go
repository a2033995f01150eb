// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package filter

import (
	"testing"

	"github.com/go-core-stack/doccopy/catalog"
)

func buildRegistry() *catalog.Registry {
	r := catalog.NewRegistry()
	r.Register(catalog.OperatorEntry{Value: "$size", Meta: "array", ApplicableBsonTypes: []string{"array"}})
	r.Register(catalog.OperatorEntry{Value: "$eq", Meta: "comparison"})
	r.Register(catalog.OperatorEntry{Value: "$gt", Meta: "comparison:range"})
	r.Register(catalog.OperatorEntry{Value: "$type", Meta: "evaluation", ApplicableBsonTypes: []string{"string", "int"}})
	return r
}

func Test_Filter_PrefixOnly(t *testing.T) {
	f := New(buildRegistry())
	got := f.Apply([]catalog.MetaTag{"comparison"}, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 comparison entries (including comparison:range), got %d: %+v", len(got), got)
	}
}

func Test_Filter_BsonTypeIntersection(t *testing.T) {
	f := New(buildRegistry())
	got := f.Apply(nil, []string{"array"})
	if len(got) != 3 {
		// $size (array), $eq (universal), $gt (universal) match; $type does not.
		t.Fatalf("expected 3 entries to match array or be universal, got %d: %+v", len(got), got)
	}
	for _, e := range got {
		if e.Value == "$type" {
			t.Errorf("$type should not match bsonType=array filter")
		}
	}
}

func Test_Filter_PreservesRegistrationOrder(t *testing.T) {
	f := New(buildRegistry())
	got := f.Apply([]catalog.MetaTag{"array", "comparison", "evaluation"}, nil)
	want := []string{"$size", "$eq", "$gt", "$type"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, e := range got {
		if e.Value != want[i] {
			t.Errorf("entry %d = %q, want %q", i, e.Value, want[i])
		}
	}
}

func Test_Filter_EmptyRegistryReturnsNil(t *testing.T) {
	f := New(catalog.NewRegistry())
	got := f.Apply([]catalog.MetaTag{"anything"}, nil)
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %+v", got)
	}
}

func Test_Filter_IsPure(t *testing.T) {
	f := New(buildRegistry())
	a := f.Apply([]catalog.MetaTag{"comparison"}, []string{"int"})
	b := f.Apply([]catalog.MetaTag{"comparison"}, []string{"int"})
	if len(a) != len(b) {
		t.Fatalf("repeated calls with identical arguments must agree: %d vs %d", len(a), len(b))
	}
}
