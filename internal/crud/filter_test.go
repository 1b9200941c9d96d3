package crud

import "testing"

func TestApply_SubsetInInputOrder(t *testing.T) {
	items := []item{
		{ID: 1, Name: "Ventas", Cat: "a"},
		{ID: 2, Name: "Clientes", Cat: "b"},
		{ID: 3, Name: "ventas online", Cat: "b"},
		{ID: 4, Name: "Costos", Desc: "incluye VENTAS", Cat: "a"},
		{ID: 5, Name: "Margen", Cat: "a"},
	}
	queries := []string{"", "ventas", "VEN", "zzz"}
	cats := []*string{nil, ptr("a"), ptr("b"), ptr("c")}

	for _, q := range queries {
		for _, c := range cats {
			out := Apply(items,
				Text(q, func(it item) []string { return []string{it.Name, it.Desc} }),
				Equal(c, func(it item) string { return it.Cat }),
			)
			pos := -1
			for _, o := range out {
				idx := -1
				for i, in := range items {
					if in.ID == o.ID {
						idx = i
					}
				}
				if idx < 0 {
					t.Fatalf("output item %d not in input", o.ID)
				}
				if idx <= pos {
					t.Fatalf("query=%q cat=%v: output out of input order", q, c)
				}
				pos = idx
			}
		}
	}
}

func TestApply_ConjunctiveFilters(t *testing.T) {
	items := []item{
		{ID: 1, Name: "Ventas", Cat: "a"},
		{ID: 2, Name: "Ventas B", Cat: "b"},
		{ID: 3, Name: "Costos", Cat: "a"},
	}
	out := Apply(items,
		Text("ventas", func(it item) []string { return []string{it.Name} }),
		Equal(ptr("a"), func(it item) string { return it.Cat }),
	)
	if len(out) != 1 || out[0].ID != 1 {
		t.Errorf("expected only item 1, got %+v", out)
	}
}

func TestEqualOptional_MissingAttributeNeverMatches(t *testing.T) {
	type row struct{ P *int64 }
	rows := []row{{P: nil}, {P: ptr(int64(1))}, {P: ptr(int64(2))}}

	out := Apply(rows, EqualOptional(ptr(int64(1)), func(r row) *int64 { return r.P }))
	if len(out) != 1 || *out[0].P != 1 {
		t.Errorf("unexpected result %+v", out)
	}
	if all := Apply(rows, EqualOptional[row, int64](nil, func(r row) *int64 { return r.P })); len(all) != 3 {
		t.Errorf("nil selection should match all, got %d", len(all))
	}
}
