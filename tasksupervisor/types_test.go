// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package tasksupervisor

import "testing"

func strPtr(s string) *string { return &s }

func Test_ResourceDescriptor_Conflicts(t *testing.T) {
	cases := []struct {
		name     string
		a, b     ResourceDescriptor
		conflict bool
	}{
		{
			name:     "different clusters never conflict",
			a:        ResourceDescriptor{ClusterId: "c1"},
			b:        ResourceDescriptor{ClusterId: "c2"},
			conflict: false,
		},
		{
			name:     "same cluster, both wildcard, conflicts",
			a:        ResourceDescriptor{ClusterId: "c1"},
			b:        ResourceDescriptor{ClusterId: "c1"},
			conflict: true,
		},
		{
			name:     "one side scoped to db, other wildcard, conflicts",
			a:        ResourceDescriptor{ClusterId: "c1", DatabaseName: strPtr("db1")},
			b:        ResourceDescriptor{ClusterId: "c1"},
			conflict: true,
		},
		{
			name:     "both scoped to different dbs, no conflict",
			a:        ResourceDescriptor{ClusterId: "c1", DatabaseName: strPtr("db1")},
			b:        ResourceDescriptor{ClusterId: "c1", DatabaseName: strPtr("db2")},
			conflict: false,
		},
		{
			name:     "same db, different collections, no conflict",
			a:        ResourceDescriptor{ClusterId: "c1", DatabaseName: strPtr("db1"), CollectionName: strPtr("a")},
			b:        ResourceDescriptor{ClusterId: "c1", DatabaseName: strPtr("db1"), CollectionName: strPtr("b")},
			conflict: false,
		},
		{
			name:     "same db and collection conflicts",
			a:        ResourceDescriptor{ClusterId: "c1", DatabaseName: strPtr("db1"), CollectionName: strPtr("a")},
			b:        ResourceDescriptor{ClusterId: "c1", DatabaseName: strPtr("db1"), CollectionName: strPtr("a")},
			conflict: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Conflicts(c.b); got != c.conflict {
				t.Errorf("Conflicts() = %v, want %v", got, c.conflict)
			}
		})
	}
}
