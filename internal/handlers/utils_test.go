package handlers

import (
	"net/http/httptest"
	"testing"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantPage   int
		wantLimit  int
		wantOffset int
		wantErr    bool
	}{
		{"defaults", "/articles", 1, 10, 0, false},
		{"page_num and page_size", "/articles?page_num=3&page_size=20", 3, 20, 40, false},
		{"fallback naming", "/articles?page=2&limit=5", 2, 5, 5, false},
		{"limit capped", "/articles?page_size=500", 1, 100, 0, false},
		{"zero page", "/articles?page_num=0", 0, 0, 0, true},
		{"negative limit", "/articles?page_size=-1", 0, 0, 0, true},
		{"garbage page", "/articles?page_num=abc", 0, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			page, limit, offset, err := parsePagination(r)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got page=%d limit=%d", page, limit)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page != tt.wantPage || limit != tt.wantLimit || offset != tt.wantOffset {
				t.Fatalf("got page=%d limit=%d offset=%d, want %d/%d/%d",
					page, limit, offset, tt.wantPage, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{5, 0, 1},
	}
	for _, tt := range tests {
		if got := totalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("totalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}
