package utils

import "testing"

func TestPaginate(t *testing.T) {
	tests := []struct {
		name         string
		total        int64
		page         int
		wantLastPage int
		wantPrev     *int
		wantNext     *int
	}{
		{"empty", 0, 1, 0, nil, nil},
		{"first of three", 25, 1, 3, nil, intPtr(2)},
		{"middle", 25, 2, 3, intPtr(1), intPtr(3)},
		{"last", 25, 3, 3, intPtr(2), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate([]string{}, tt.total, tt.page, 10)

			if got.Meta.LastPage != tt.wantLastPage {
				t.Errorf("LastPage = %d, want %d", got.Meta.LastPage, tt.wantLastPage)
			}
			if !sameIntPtr(got.Meta.Prev, tt.wantPrev) {
				t.Errorf("Prev = %v, want %v", got.Meta.Prev, tt.wantPrev)
			}
			if !sameIntPtr(got.Meta.Next, tt.wantNext) {
				t.Errorf("Next = %v, want %v", got.Meta.Next, tt.wantNext)
			}
		})
	}
}

func TestPaginateNilData(t *testing.T) {
	got := Paginate[int](nil, 0, 1, 10)
	if got.Data == nil {
		t.Errorf("Data should be an empty slice, not nil")
	}
}

func TestNormalizePage(t *testing.T) {
	page, perPage := NormalizePage(0, 0, 20)
	if page != 1 || perPage != 20 {
		t.Errorf("NormalizePage(0, 0, 20) = %d, %d; want 1, 20", page, perPage)
	}
}

func intPtr(v int) *int { return &v }

func sameIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
