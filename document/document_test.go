// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package document

import "testing"

func Test_WriteStats_Merge(t *testing.T) {
	stats := &WriteStats{}

	delta := stats.Merge(BatchResult{Strategy: Skip, Inserted: 7, Skipped: 3, Processed: 10})
	if delta != 10 {
		t.Errorf("expected delta 10, got %d", delta)
	}
	if stats.TotalProcessed != 10 {
		t.Errorf("expected total processed 10, got %d", stats.TotalProcessed)
	}

	delta = stats.Merge(BatchResult{Strategy: Skip, Inserted: 2, Skipped: 0, Processed: 2})
	if delta != 2 {
		t.Errorf("expected delta 2, got %d", delta)
	}
	if stats.TotalProcessed != 12 {
		t.Errorf("expected total processed 12, got %d", stats.TotalProcessed)
	}
	if stats.Inserted != 9 || stats.Skipped != 3 {
		t.Errorf("unexpected aggregate counts: inserted=%d skipped=%d", stats.Inserted, stats.Skipped)
	}
}

func Test_WriteStats_MergePartial(t *testing.T) {
	stats := &WriteStats{}
	delta := stats.MergePartial(PartialProgress{Strategy: Skip, Inserted: 50, Processed: 50})
	if delta != 50 {
		t.Errorf("expected delta 50, got %d", delta)
	}
	if stats.TotalProcessed != 50 {
		t.Errorf("expected total processed 50, got %d", stats.TotalProcessed)
	}

	final := stats.Merge(BatchResult{Strategy: Skip, Inserted: 50, Processed: 50})
	if final != 50 {
		t.Errorf("expected final delta 50, got %d", final)
	}
	if stats.TotalProcessed != 100 {
		t.Errorf("expected total processed 100 after full batch, got %d", stats.TotalProcessed)
	}
}

func Test_ConflictStrategy_String(t *testing.T) {
	cases := map[ConflictStrategy]string{
		Abort:          "Abort",
		Skip:           "Skip",
		Overwrite:      "Overwrite",
		GenerateNewIds: "GenerateNewIds",
	}
	for strategy, want := range cases {
		if got := strategy.String(); got != want {
			t.Errorf("strategy %d: got %q want %q", strategy, got, want)
		}
	}
}
