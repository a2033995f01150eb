// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package catalog

import "testing"

func Test_MetaTag_Matches(t *testing.T) {
	cases := []struct {
		tag, prefix MetaTag
		want        bool
	}{
		{"array", "array", true},
		{"array:update", "array", true},
		{"array", "arr", false},
		{"arrayish", "array", false},
		{"comparison:eq", "comparison", true},
		{"comparison", "comparison:eq", false},
	}
	for _, c := range cases {
		if got := c.tag.Matches(c.prefix); got != c.want {
			t.Errorf("MetaTag(%q).Matches(%q) = %v, want %v", c.tag, c.prefix, got, c.want)
		}
	}
}

func Test_Registry_PreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(OperatorEntry{Value: "$gt", Meta: "comparison"})
	r.Register(OperatorEntry{Value: "$lt", Meta: "comparison"})
	r.Register(OperatorEntry{Value: "$eq", Meta: "comparison"})

	entries := r.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"$gt", "$lt", "$eq"}
	for i, e := range entries {
		if e.Value != want[i] {
			t.Errorf("entry %d = %q, want %q", i, e.Value, want[i])
		}
	}
}

func Test_OperatorEntry_IsUniversal(t *testing.T) {
	universal := OperatorEntry{Value: "$eq"}
	scoped := OperatorEntry{Value: "$size", ApplicableBsonTypes: []string{"array"}}
	if !universal.IsUniversal() {
		t.Errorf("entry with no ApplicableBsonTypes should be universal")
	}
	if scoped.IsUniversal() {
		t.Errorf("entry with ApplicableBsonTypes should not be universal")
	}
}
