package query_test

import (
	"testing"

	"github.com/JaimeStill/waybill/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "shipments", "s").
		Project("id", "id").
		Project("carrier_name", "carrier_name").
		Project("created_at", "createdAt")
}

func ptr(s string) *string { return &s }

func TestProjectionMapTable(t *testing.T) {
	p := testProjection()
	got := p.Table()
	want := "public.shipments s"
	if got != want {
		t.Errorf("Table() = %q, want %q", got, want)
	}
}

func TestProjectionMapAlias(t *testing.T) {
	p := testProjection()
	if got := p.Alias(); got != "s" {
		t.Errorf("Alias() = %q, want %q", got, "s")
	}
}

func TestProjectionMapColumns(t *testing.T) {
	p := testProjection()
	got := p.Columns()
	want := "s.id, s.carrier_name, s.created_at"
	if got != want {
		t.Errorf("Columns() = %q, want %q", got, want)
	}
}

func TestProjectionMapColumnList(t *testing.T) {
	p := testProjection()
	got := p.ColumnList()
	if len(got) != 3 {
		t.Fatalf("ColumnList() length = %d, want 3", len(got))
	}
	want := []string{"s.id", "s.carrier_name", "s.created_at"}
	for i, col := range got {
		if col != want[i] {
			t.Errorf("ColumnList()[%d] = %q, want %q", i, col, want[i])
		}
	}
}

func TestProjectionMapColumnLookup(t *testing.T) {
	p := testProjection()

	tests := []struct {
		name     string
		viewName string
		want     string
	}{
		{"mapped field", "carrier_name", "s.carrier_name"},
		{"mapped camel", "createdAt", "s.created_at"},
		{"unmapped passthrough", "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Column(tt.viewName); got != tt.want {
				t.Errorf("Column(%q) = %q, want %q", tt.viewName, got, tt.want)
			}
		})
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []query.SortField
	}{
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "single ascending",
			input: "name",
			want:  []query.SortField{{Field: "name", Descending: false}},
		},
		{
			name:  "single descending",
			input: "-createdAt",
			want:  []query.SortField{{Field: "createdAt", Descending: true}},
		},
		{
			name:  "multiple mixed",
			input: "name,-createdAt",
			want: []query.SortField{
				{Field: "name", Descending: false},
				{Field: "createdAt", Descending: true},
			},
		},
		{
			name:  "with spaces",
			input: " name , -createdAt ",
			want: []query.SortField{
				{Field: "name", Descending: false},
				{Field: "createdAt", Descending: true},
			},
		},
		{
			name:  "empty parts skipped",
			input: "name,,createdAt",
			want: []query.SortField{
				{Field: "name", Descending: false},
				{Field: "createdAt", Descending: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if tt.want == nil {
				if got != nil {
					t.Errorf("ParseSortFields(%q) = %v, want nil", tt.input, got)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseSortFields(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseSortFields(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuilderBuild(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	sql, args := b.Build()

	wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s"
	if sql != wantSQL {
		t.Errorf("Build() sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 0 {
		t.Errorf("Build() args = %v, want empty", args)
	}
}

func TestBuilderBuildCount(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	sql, args := b.BuildCount()

	wantSQL := "SELECT COUNT(*) FROM public.shipments s"
	if sql != wantSQL {
		t.Errorf("BuildCount() sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 0 {
		t.Errorf("BuildCount() args = %v, want empty", args)
	}
}

func TestBuilderBuildPage(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p, query.SortField{Field: "createdAt", Descending: true})
	sql, args := b.BuildPage(2, 10)

	wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s ORDER BY s.created_at DESC LIMIT 10 OFFSET 10"
	if sql != wantSQL {
		t.Errorf("BuildPage() sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 0 {
		t.Errorf("BuildPage() args = %v, want empty", args)
	}
}

func TestBuilderBuildSingle(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	sql, args := b.BuildSingle("id", "abc-123")

	wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s WHERE s.id = $1"
	if sql != wantSQL {
		t.Errorf("BuildSingle() sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "abc-123" {
		t.Errorf("BuildSingle() args = %v, want [abc-123]", args)
	}
}

func TestBuilderBuildSingleOrNull(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereEquals("carrier_name", "Nordfracht")
	sql, args := b.BuildSingleOrNull()

	wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s WHERE s.carrier_name = $1 LIMIT 1"
	if sql != wantSQL {
		t.Errorf("BuildSingleOrNull() sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "Nordfracht" {
		t.Errorf("BuildSingleOrNull() args = %v, want [Nordfracht]", args)
	}
}

func TestBuilderWhereEquals(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereEquals("carrier_name", "Nordfracht")
	sql, args := b.Build()

	wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s WHERE s.carrier_name = $1"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "Nordfracht" {
		t.Errorf("args = %v, want [Nordfracht]", args)
	}
}

func TestBuilderWhereEqualsNilSkipped(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereEquals("carrier_name", nil)
	sql, args := b.Build()

	wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderWhereContains(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereContains("carrier_name", ptr("test"))
	sql, args := b.Build()

	wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s WHERE s.carrier_name ILIKE $1"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "%test%" {
		t.Errorf("args = %v, want [%%test%%]", args)
	}
}

func TestBuilderWhereContainsNilSkipped(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereContains("carrier_name", nil)
	_, args := b.Build()

	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderWhereContainsEmptySkipped(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereContains("carrier_name", ptr(""))
	_, args := b.Build()

	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderWhereIn(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereIn("id", []any{"a", "b", "c"})
	sql, args := b.Build()

	wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s WHERE s.id IN ($1, $2, $3)"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 3 {
		t.Errorf("args length = %d, want 3", len(args))
	}
}

func TestBuilderWhereInEmptySkipped(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereIn("id", []any{})
	_, args := b.Build()

	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderWhereNullable(t *testing.T) {
	t.Run("nil value generates IS NULL", func(t *testing.T) {
		p := testProjection()
		b := query.NewBuilder(p)
		b.WhereNullable("carrier_name", nil)
		sql, args := b.Build()

		wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s WHERE s.carrier_name IS NULL"
		if sql != wantSQL {
			t.Errorf("sql = %q, want %q", sql, wantSQL)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want empty", args)
		}
	})

	t.Run("non-nil value generates equals", func(t *testing.T) {
		p := testProjection()
		b := query.NewBuilder(p)
		b.WhereNullable("carrier_name", "Nordfracht")
		sql, args := b.Build()

		wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s WHERE s.carrier_name = $1"
		if sql != wantSQL {
			t.Errorf("sql = %q, want %q", sql, wantSQL)
		}
		if len(args) != 1 || args[0] != "Nordfracht" {
			t.Errorf("args = %v, want [Nordfracht]", args)
		}
	})
}

func TestBuilderWhereSearch(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereSearch(ptr("test"), "carrier_name", "id")
	sql, args := b.Build()

	wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s WHERE (s.carrier_name ILIKE $1 OR s.id ILIKE $2)"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 2 || args[0] != "%test%" || args[1] != "%test%" {
		t.Errorf("args = %v, want [%%test%% %%test%%]", args)
	}
}

func TestBuilderWhereSearchNilSkipped(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereSearch(nil, "carrier_name")
	_, args := b.Build()

	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderMultipleConditions(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereEquals("carrier_name", "Nordfracht")
	b.WhereContains("id", ptr("abc"))
	sql, args := b.Build()

	wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s WHERE s.carrier_name = $1 AND s.id ILIKE $2"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 2 {
		t.Errorf("args length = %d, want 2", len(args))
	}
	if args[0] != "Nordfracht" {
		t.Errorf("args[0] = %v, want Nordfracht", args[0])
	}
	if args[1] != "%abc%" {
		t.Errorf("args[1] = %v, want %%abc%%", args[1])
	}
}

func TestBuilderOrderByFields(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p, query.SortField{Field: "id", Descending: false})
	b.OrderByFields([]query.SortField{
		{Field: "createdAt", Descending: true},
		{Field: "carrier_name", Descending: false},
	})
	sql, _ := b.Build()

	wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s ORDER BY s.created_at DESC, s.carrier_name ASC"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
}

func TestBuilderDefaultSort(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p, query.SortField{Field: "createdAt", Descending: true})
	sql, _ := b.Build()

	wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s ORDER BY s.created_at DESC"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
}

func TestBuilderBuildCountWithConditions(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p)
	b.WhereEquals("carrier_name", "Nordfracht")
	sql, args := b.BuildCount()

	wantSQL := "SELECT COUNT(*) FROM public.shipments s WHERE s.carrier_name = $1"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "Nordfracht" {
		t.Errorf("args = %v, want [Nordfracht]", args)
	}
}

func TestBuilderBuildPageWithConditions(t *testing.T) {
	p := testProjection()
	b := query.NewBuilder(p, query.SortField{Field: "id"})
	b.WhereContains("carrier_name", ptr("logistik"))
	sql, args := b.BuildPage(3, 25)

	wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s WHERE s.carrier_name ILIKE $1 ORDER BY s.id ASC LIMIT 25 OFFSET 50"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "%logistik%" {
		t.Errorf("args = %v, want [%%logistik%%]", args)
	}
}

func TestProjectionMapFrom(t *testing.T) {
	p := testProjection()
	if got, want := p.From(), "public.shipments s"; got != want {
		t.Errorf("From() = %q, want %q", got, want)
	}
}

func TestBuilderWhereRange(t *testing.T) {
	low := 0.5
	high := 0.9

	tests := []struct {
		name     string
		from     any
		to       any
		wantSQL  string
		wantArgs int
	}{
		{
			name:     "both bounds",
			from:     &low,
			to:       &high,
			wantSQL:  "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s WHERE s.created_at >= $1 AND s.created_at <= $2",
			wantArgs: 2,
		},
		{
			name:     "lower bound only",
			from:     &low,
			to:       (*float64)(nil),
			wantSQL:  "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s WHERE s.created_at >= $1",
			wantArgs: 1,
		},
		{
			name:     "upper bound only",
			from:     nil,
			to:       &high,
			wantSQL:  "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s WHERE s.created_at <= $1",
			wantArgs: 1,
		},
		{
			name:     "no bounds",
			from:     nil,
			to:       nil,
			wantSQL:  "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s",
			wantArgs: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := query.NewBuilder(testProjection())
			b.WhereRange("createdAt", tt.from, tt.to)
			sql, args := b.Build()

			if sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", sql, tt.wantSQL)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args length = %d, want %d", len(args), tt.wantArgs)
			}
		})
	}
}

func TestProjectionMapLookup(t *testing.T) {
	p := testProjection()

	if col, ok := p.Lookup("createdAt"); !ok || col != "s.created_at" {
		t.Errorf("Lookup(createdAt) = %q, %v, want s.created_at, true", col, ok)
	}
	if _, ok := p.Lookup("created_at; DROP TABLE shipments"); ok {
		t.Error("Lookup() should not map unknown names")
	}
}

func TestBuilderOrderByUnmappedFields(t *testing.T) {
	tests := []struct {
		name   string
		fields []query.SortField
		want   string
	}{
		{
			name: "unmapped dropped",
			fields: []query.SortField{
				{Field: "1; DROP TABLE shipments --"},
				{Field: "carrier_name", Descending: true},
			},
			want: " ORDER BY s.carrier_name DESC",
		},
		{
			name:   "all unmapped falls back to default",
			fields: []query.SortField{{Field: "unknown"}},
			want:   " ORDER BY s.id ASC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := query.NewBuilder(testProjection(), query.SortField{Field: "id"})
			b.OrderByFields(tt.fields)
			sql, _ := b.Build()

			wantSQL := "SELECT s.id, s.carrier_name, s.created_at FROM public.shipments s" + tt.want
			if sql != wantSQL {
				t.Errorf("sql = %q, want %q", sql, wantSQL)
			}
		})
	}
}

func TestBuilderContainsEscapesWildcards(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"percent", "100%", `%100\%%`},
		{"underscore", "LKW_7", `%LKW\_7%`},
		{"backslash", `a\b`, `%a\\b%`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, args := query.NewBuilder(testProjection()).
				WhereContains("carrier_name", ptr(tt.input)).
				Build()

			if len(args) != 1 || args[0] != tt.want {
				t.Errorf("args = %v, want [%s]", args, tt.want)
			}
		})
	}
}
