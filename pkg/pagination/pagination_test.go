package pagination_test

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/ziggway/insight/pkg/pagination"
)

func testConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		req          pagination.PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"zero values", pagination.PageRequest{}, 1, 20},
		{"negative page", pagination.PageRequest{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page size", pagination.PageRequest{Page: 2, PageSize: 500}, 2, 100},
		{"within bounds", pagination.PageRequest{Page: 4, PageSize: 50}, 4, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(testConfig())
			if tt.req.Page != tt.wantPage {
				t.Errorf("got page %d, want %d", tt.req.Page, tt.wantPage)
			}
			if tt.req.PageSize != tt.wantPageSize {
				t.Errorf("got page size %d, want %d", tt.req.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	req := pagination.PageRequest{Page: 3, PageSize: 25}
	if got := req.Offset(); got != 50 {
		t.Errorf("got offset %d, want 50", got)
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("page", "2")
	values.Set("page_size", "10")
	values.Set("search", "entrega")
	values.Set("sort", "-imported_at,name")

	req := pagination.PageRequestFromQuery(values, testConfig())

	if req.Page != 2 || req.PageSize != 10 {
		t.Errorf("got page %d size %d, want 2 and 10", req.Page, req.PageSize)
	}
	if req.Search == nil || *req.Search != "entrega" {
		t.Errorf("got search %v, want entrega", req.Search)
	}
	if len(req.Sort) != 2 {
		t.Fatalf("got %d sort fields, want 2", len(req.Sort))
	}
	if req.Sort[0].Field != "imported_at" || !req.Sort[0].Descending {
		t.Errorf("got %+v, want descending imported_at", req.Sort[0])
	}
	if req.Sort[1].Field != "name" || req.Sort[1].Descending {
		t.Errorf("got %+v, want ascending name", req.Sort[1])
	}
}

func TestPageRequestFromQueryEmpty(t *testing.T) {
	req := pagination.PageRequestFromQuery(url.Values{}, testConfig())
	if req.Page != 1 || req.PageSize != 20 {
		t.Errorf("got page %d size %d, want defaults", req.Page, req.PageSize)
	}
	if req.Search != nil {
		t.Errorf("got search %v, want nil", req.Search)
	}
}

func TestSortFieldsUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"compact string", `"-created_at,name"`, 2},
		{"object array", `[{"field":"name","descending":true}]`, 1},
		{"empty string", `""`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fields pagination.SortFields
			if err := json.Unmarshal([]byte(tt.data), &fields); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if len(fields) != tt.want {
				t.Errorf("got %d fields, want %d", len(fields), tt.want)
			}
		})
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		pageSize       int
		wantTotalPages int
	}{
		{"exact pages", 100, 20, 5},
		{"partial last page", 101, 20, 6},
		{"empty result", 0, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult([]string{}, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("got %d total pages, want %d", result.TotalPages, tt.wantTotalPages)
			}
		})
	}
}

func TestNewPageResultNilData(t *testing.T) {
	result := pagination.NewPageResult[string](nil, 0, 1, 20)
	if result.Data == nil {
		t.Errorf("data should be non-nil")
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg pagination.Config
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.DefaultPageSize != 20 || cfg.MaxPageSize != 100 {
			t.Errorf("got %+v, want defaults 20 and 100", cfg)
		}
	})

	t.Run("environment override", func(t *testing.T) {
		t.Setenv("TEST_DEFAULT_PAGE_SIZE", "10")
		t.Setenv("TEST_MAX_PAGE_SIZE", "50")

		var cfg pagination.Config
		env := &pagination.ConfigEnv{
			DefaultPageSize: "TEST_DEFAULT_PAGE_SIZE",
			MaxPageSize:     "TEST_MAX_PAGE_SIZE",
		}
		if err := cfg.Finalize(env); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.DefaultPageSize != 10 || cfg.MaxPageSize != 50 {
			t.Errorf("got %+v, want 10 and 50", cfg)
		}
	})

	t.Run("invalid bounds", func(t *testing.T) {
		cfg := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
		if err := cfg.Finalize(nil); err == nil {
			t.Errorf("expected validation error")
		}
	})
}

func TestConfigMerge(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
	cfg.Merge(&pagination.Config{MaxPageSize: 200})
	if cfg.DefaultPageSize != 20 || cfg.MaxPageSize != 200 {
		t.Errorf("got %+v, want default kept and max overridden", cfg)
	}
}
