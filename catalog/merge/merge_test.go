// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package merge

import (
	"reflect"
	"testing"

	"github.com/go-core-stack/doccopy/catalog/scrape"
)

func sampleScraped() []scrape.Page {
	return []scrape.Page{
		{Category: "Comparison", Operator: "$eq", Description: "Matches equal values.", Syntax: "{ $eq: <v> }"},
		{Category: "Array", Operator: "$size", Description: "Matches array size."},
	}
}

func Test_Apply_EmptyOverrideIsIdentity(t *testing.T) {
	scraped := sampleScraped()
	got := Apply(scraped, nil)
	if !reflect.DeepEqual(got, scraped) {
		t.Fatalf("merge(scraped, empty) must equal scraped: got %+v, want %+v", got, scraped)
	}
}

func Test_Apply_EmptyFieldsNeverOverride(t *testing.T) {
	scraped := sampleScraped()
	overrides := []scrape.Page{
		{Category: "Comparison", Operator: "$eq", Description: "", Syntax: "{ $eq: <value> } // updated"},
	}
	got := Apply(scraped, overrides)
	if got[0].Description != scraped[0].Description {
		t.Errorf("empty override description must not replace scraped value, got %q", got[0].Description)
	}
	if got[0].Syntax != "{ $eq: <value> } // updated" {
		t.Errorf("non-empty override syntax must replace scraped value, got %q", got[0].Syntax)
	}
}

func Test_Apply_ComposeAssociativity(t *testing.T) {
	scraped := sampleScraped()
	o1 := []scrape.Page{
		{Category: "Comparison", Operator: "$eq", Description: "o1 description"},
	}
	o2 := []scrape.Page{
		{Category: "Comparison", Operator: "$eq", Syntax: "o2 syntax"},
		{Category: "Array", Operator: "$size", Description: "o2 array description"},
	}

	stepwise := Apply(Apply(scraped, o1), o2)
	composed := Apply(scraped, Compose(o1, o2))

	if !reflect.DeepEqual(stepwise, composed) {
		t.Fatalf("merge(merge(s,o1),o2) must equal merge(s,compose(o1,o2)): got %+v vs %+v", stepwise, composed)
	}
}

func Test_Apply_ComposeFavorsSecondOverride(t *testing.T) {
	o1 := []scrape.Page{{Category: "C", Operator: "$x", Description: "from o1"}}
	o2 := []scrape.Page{{Category: "C", Operator: "$x", Description: "from o2"}}

	composed := Compose(o1, o2)
	if len(composed) != 1 || composed[0].Description != "from o2" {
		t.Fatalf("compose must favor o2's field value, got %+v", composed)
	}
}

func Test_Apply_UnmatchedOverrideIgnored(t *testing.T) {
	scraped := sampleScraped()
	overrides := []scrape.Page{
		{Category: "Nonexistent", Operator: "$ghost", Description: "never applied"},
	}
	got := Apply(scraped, overrides)
	if !reflect.DeepEqual(got, scraped) {
		t.Fatalf("an override with no matching scraped entry must not alter the result")
	}
}
