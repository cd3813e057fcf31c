package collection

import (
	"encoding/json"
	"testing"
)

func TestSearchAndFilterChangesResetPage(t *testing.T) {
	p := NewParams()
	p.SetPage(3)
	p.SetSearch("fresh")
	if p.Page() != 0 {
		t.Fatalf("search change should reset page, got %d", p.Page())
	}

	p.SetPage(2)
	p.SetFilter("status", "active")
	if p.Page() != 0 {
		t.Fatalf("filter change should reset page, got %d", p.Page())
	}
}

func TestSortChangeKeepsPage(t *testing.T) {
	p := NewParams()
	p.SetPage(4)
	p.SetSort("name", SortDesc)
	if p.Page() != 4 {
		t.Fatalf("sort change should keep page, got %d", p.Page())
	}
}

func TestPageSizeChangeResetsPage(t *testing.T) {
	p := NewParams()
	p.SetPage(2)
	p.SetPageSize(25)
	if p.Page() != 0 {
		t.Fatalf("page size change should reset page, got %d", p.Page())
	}
	// Setting the same size again is not a change.
	p.SetPage(2)
	p.SetPageSize(25)
	if p.Page() != 2 {
		t.Fatalf("identical page size should keep page, got %d", p.Page())
	}
}

func TestRepeatedIdenticalSearchKeepsPage(t *testing.T) {
	p := NewParams()
	p.SetSearch("fresh")
	p.SetPage(2)
	p.SetSearch("fresh")
	if p.Page() != 2 {
		t.Fatalf("identical search should keep page, got %d", p.Page())
	}
}

func TestFilterAllSentinelClearsDimension(t *testing.T) {
	p := NewParams()
	p.SetFilter("role", "seller")
	p.SetFilter("role", FilterAll)
	if got := p.Filter("role"); got != "" {
		t.Fatalf("sentinel should clear dimension, got %q", got)
	}
	if len(p.Filters()) != 0 {
		t.Fatalf("expected no active filters, got %v", p.Filters())
	}
}

func TestParamsJSONRoundTrip(t *testing.T) {
	p := NewParams()
	p.SetSearch("fresh")
	p.SetFilter("role", "seller")
	p.SetSort("name", SortDesc)
	p.SetPage(2)
	p.SetPageSize(25)

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var restored Params
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.Search() != "fresh" || restored.Filter("role") != "seller" {
		t.Fatalf("query intent lost: %+v", restored)
	}
	if restored.SortKey() != "name" || restored.SortDir() != SortDesc {
		t.Fatalf("sort lost: %+v", restored)
	}
	if restored.Page() != 2 || restored.PageSize() != 25 {
		t.Fatalf("pagination lost: %+v", restored)
	}
}

func TestParamsUnmarshalRejectsBadDirection(t *testing.T) {
	var p Params
	if err := json.Unmarshal([]byte(`{"sortDir":"sideways","page":0,"pageSize":10}`), &p); err == nil {
		t.Fatalf("expected error for invalid sort direction")
	}
}
