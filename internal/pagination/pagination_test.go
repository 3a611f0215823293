package pagination

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name    string
		in      Params
		page    int
		perPage int
	}{
		{"zero values", Params{}, 1, DefaultPerPage},
		{"negative page", Params{Page: -3, PerPage: 10}, 1, 10},
		{"over max per page", Params{Page: 2, PerPage: 500}, 2, MaxPerPage},
		{"already valid", Params{Page: 4, PerPage: 25}, 4, 25},
	}
	for _, tc := range cases {
		got := tc.in.Normalize()
		if got.Page != tc.page || got.PerPage != tc.perPage {
			t.Fatalf("%s: got page=%d per_page=%d, want page=%d per_page=%d",
				tc.name, got.Page, got.PerPage, tc.page, tc.perPage)
		}
	}
}

func TestOffset(t *testing.T) {
	if off := (Params{Page: 1, PerPage: 20}).Offset(); off != 0 {
		t.Fatalf("page 1 offset = %d, want 0", off)
	}
	if off := (Params{Page: 3, PerPage: 20}).Offset(); off != 40 {
		t.Fatalf("page 3 offset = %d, want 40", off)
	}
}

func TestNewResultTotalPages(t *testing.T) {
	res := NewResult([]string{"a", "b"}, 41, Params{Page: 2, PerPage: 20})
	if res.TotalPages != 3 {
		t.Fatalf("total pages = %d, want 3", res.TotalPages)
	}
	if res.Total != 41 || res.Page != 2 || res.PerPage != 20 {
		t.Fatalf("unexpected result meta: %+v", res)
	}

	exact := NewResult([]int{}, 40, Params{Page: 1, PerPage: 20})
	if exact.TotalPages != 2 {
		t.Fatalf("exact division total pages = %d, want 2", exact.TotalPages)
	}
}
