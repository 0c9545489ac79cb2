package dialect

import "testing"

func TestBuilder(t *testing.T) {
	t.Parallel()

	b := Update("users").
		Set("name", "Ada").
		Set("age", 36).
		Where(Eq("id", 1), Or(IsNull("deleted_at"))).
		OrderBy("id", "DESC").
		Limit(5).
		Offset(10)

	q := b.Query()
	if q.Action != ActionUpdate || q.Table != "users" {
		t.Fatalf("unexpected action/table: %v %q", q.Action, q.Table)
	}
	if len(q.Columns) != 2 || len(q.Values) != 2 {
		t.Fatalf("expected two assignments, got %v / %v", q.Columns, q.Values)
	}
	if q.Conditions[1].Logic() != "OR" || q.Conditions[1].Operator() != "IS NULL" {
		t.Fatalf("unexpected second condition: %+v", q.Conditions[1])
	}
	if q.OrderBy[0].Column() != "id" || q.OrderBy[0].Dir() != "DESC" {
		t.Fatalf("unexpected order: %+v", q.OrderBy[0])
	}
	if q.Limit != 5 || q.Offset != 10 {
		t.Fatalf("unexpected limit/offset: %d/%d", q.Limit, q.Offset)
	}

	t.Run("Query Is A Copy", func(t *testing.T) {
		b.Set("email", "ada@example.com")
		if len(q.Columns) != 2 {
			t.Fatalf("expected earlier Query to keep two columns, got %v", q.Columns)
		}
	})
}

func TestCompiledQueryReturnsRows(t *testing.T) {
	t.Parallel()

	tt := []struct {
		kind QueryKind
		want bool
	}{
		{KindSelect, true},
		{KindInsert, false},
		{KindUpdate, false},
		{KindDelete, false},
		{KindRaw, false},
	}

	for _, tc := range tt {
		t.Run(tc.kind.String(), func(t *testing.T) {
			t.Parallel()
			if got := (CompiledQuery{Kind: tc.kind}).ReturnsRows(); got != tc.want {
				t.Fatalf("ReturnsRows for %v: want %v got %v", tc.kind, tc.want, got)
			}
		})
	}
}
