package reviews

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"manaklaltailor.in/web/internal/kv"
)

type flakyKV struct {
	kv.Store
	getErr    error
	setErr    error
	removeErr error
}

func (f *flakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value)
}

func (f *flakyKV) Remove(ctx context.Context, key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	return f.Store.Remove(ctx, key)
}

func genRecord() gopter.Gen {
	return gopter.CombineGens(
		gen.OneGenOf(gen.Identifier(), gen.OneConstOf(" ", "\t", "  ")),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.IntRange(MinRating, MaxRating),
		gen.Int64Range(-4102444800000, 4102444800000),
		gen.UInt64Range(0, 1<<40),
	).Map(func(v []any) Record {
		return Record{
			Name:   v[0].(string),
			Text:   v[1].(string),
			Rating: v[2].(int),
			Time:   v[3].(int64),
			Seq:    v[4].(uint64),
		}
	})
}

func genCollection() gopter.Gen {
	return gen.SliceOf(genRecord()).Map(func(rs []Record) Collection {
		return Collection(rs)
	})
}

func TestStoreRoundTripProperty(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("load after save returns the saved collection", prop.ForAll(
		func(c Collection) bool {
			ctx := context.Background()
			store := NewStore(kv.NewMemory(), "", nil)
			if err := store.Save(ctx, c); err != nil {
				return false
			}
			return cmp.Equal(c, store.Load(ctx), cmpopts.EquateEmpty())
		},
		genCollection(),
	))

	properties.TestingRun(t)
}

func TestStoreAppendProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("append grows by one and lands last in storage, first in display", prop.ForAll(
		func(c Collection, r Record) bool {
			ctx := context.Background()
			store := NewStore(kv.NewMemory(), "", nil)
			if err := store.Save(ctx, c); err != nil {
				return false
			}
			r.ID = "rev_new"
			got, err := store.Append(ctx, r)
			if err != nil {
				return false
			}
			if Count(got) != Count(c)+1 || Count(store.Load(ctx)) != Count(c)+1 {
				return false
			}
			last, _ := got.Last()
			if last.ID != "rev_new" || last.Seq <= c.maxSeq() {
				return false
			}
			shown := Reviews(Project(got, nil))
			return shown[0].ID == "rev_new"
		},
		genCollection(),
		genRecord(),
	))

	properties.TestingRun(t)
}

func TestStoreLoadFailSafe(t *testing.T) {
	t.Parallel()

	valid := `{"name":"Asha","text":"Perfect fit","rating":5,"time":1700000000000}`
	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{name: "non json", payload: "not json at all", want: 0},
		{name: "empty string", payload: "", want: 0},
		{name: "object instead of array", payload: `{"name":"A"}`, want: 0},
		{name: "number", payload: `42`, want: 0},
		{name: "null", payload: `null`, want: 0},
		{name: "array of scalars", payload: `[1,"two",true]`, want: 0},
		{name: "truncated array", payload: `[` + valid, want: 0},
		{name: "valid array", payload: `[` + valid + `]`, want: 1},
		{name: "drops rating out of range", payload: `[` + valid + `,{"name":"B","text":"ok","rating":9,"time":1}]`, want: 1},
		{name: "drops empty name", payload: `[{"name":"","text":"ok","rating":3,"time":1},` + valid + `]`, want: 1},
		{name: "drops empty text", payload: `[{"name":"C","text":"","rating":3,"time":1},` + valid + `]`, want: 1},
		{name: "keeps whitespace text", payload: `[{"name":"C","text":"   ","rating":3,"time":1},` + valid + `]`, want: 2},
		{name: "keeps whitespace name", payload: `[{"name":" ","text":"ok","rating":3,"time":1}]`, want: 1},
		{name: "keeps negative time", payload: `[{"name":"C","text":"ok","rating":3,"time":-5}]`, want: 1},
		{name: "drops wrong field type", payload: `[{"name":"C","text":"ok","rating":"5","time":1},` + valid + `]`, want: 1},
		{name: "drops fractional rating", payload: `[{"name":"C","text":"ok","rating":4.5,"time":1}]`, want: 0},
		{name: "drops missing time", payload: `[{"name":"C","text":"ok","rating":4}]`, want: 0},
		{name: "keeps unknown fields", payload: `[{"name":"C","text":"ok","rating":4,"time":1,"extra":true}]`, want: 1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			backend := kv.NewMemory()
			if err := backend.Set(ctx, DefaultKey, tc.payload); err != nil {
				t.Fatalf("seed: %v", err)
			}
			got := NewStore(backend, DefaultKey, nil).Load(ctx)
			if got == nil {
				t.Fatalf("expected non-nil empty collection")
			}
			if len(got) != tc.want {
				t.Fatalf("expected %d records, got %d (%+v)", tc.want, len(got), got)
			}
		})
	}
}

func TestStoreLoadKeepsOrderWhenDropping(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	payload := `[
		{"name":"A","text":"one","rating":5,"time":1},
		{"name":"bad","text":"x","rating":0,"time":2},
		{"name":"C","text":"three","rating":4,"time":3}
	]`
	if err := backend.Set(ctx, DefaultKey, payload); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got := NewStore(backend, "", nil).Load(ctx)
	want := Collection{
		{Name: "A", Text: "one", Rating: 5, Time: 1},
		{Name: "C", Text: "three", Rating: 4, Time: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected collection (-want +got):\n%s", diff)
	}
}

func TestStoreLoadBackendErrorDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	backend := &flakyKV{Store: kv.NewMemory(), getErr: errors.New("connection refused")}
	got := NewStore(backend, "", nil).Load(ctx)
	if len(got) != 0 {
		t.Fatalf("expected empty collection, got %+v", got)
	}
}

func TestStoreSaveAndClearSurfaceWriteErrors(t *testing.T) {
	ctx := context.Background()
	backend := &flakyKV{
		Store:     kv.NewMemory(),
		setErr:    errors.New("quota exceeded"),
		removeErr: errors.New("read only"),
	}
	store := NewStore(backend, "", nil)

	if err := store.Save(ctx, Collection{{Name: "A", Text: "t", Rating: 3}}); !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist from save, got %v", err)
	}
	if _, err := store.Append(ctx, Record{Name: "A", Text: "t", Rating: 3}); !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist from append, got %v", err)
	}
	if err := store.Clear(ctx); !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist from clear, got %v", err)
	}
}

func TestStoreClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemory(), "", nil)
	if _, err := store.Append(ctx, Record{Name: "A", Text: "t", Rating: 4, Time: 10}); err != nil {
		t.Fatalf("append: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("clear #%d: %v", i+1, err)
		}
		if n := Count(store.Load(ctx)); n != 0 {
			t.Fatalf("clear #%d: expected empty, got %d records", i+1, n)
		}
	}
}

func TestStoreAppendAssignsSeqAndClampsTime(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemory(), "", nil)

	if _, err := store.Append(ctx, Record{Name: "A", Text: "first", Rating: 5, Time: 2000}); err != nil {
		t.Fatalf("append first: %v", err)
	}
	got, err := store.Append(ctx, Record{Name: "B", Text: "clock went back", Rating: 3, Time: 1000, Seq: 99})
	if err != nil {
		t.Fatalf("append second: %v", err)
	}

	if got[0].Seq != 1 || got[1].Seq != 2 {
		t.Fatalf("expected seq 1,2, got %d,%d", got[0].Seq, got[1].Seq)
	}
	if got[1].Time != 2000 {
		t.Fatalf("expected time clamped to 2000, got %d", got[1].Time)
	}
}

func TestStoreAppendRejectsInvalidRecord(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kv.NewMemory(), "", nil)
	_, err := store.Append(ctx, Record{Name: "A", Text: "t", Rating: 6})
	if !errors.Is(err, ErrInvalidSubmission) {
		t.Fatalf("expected ErrInvalidSubmission, got %v", err)
	}
	if n := Count(store.Load(ctx)); n != 0 {
		t.Fatalf("expected no records, got %d", n)
	}
}

func TestStoreKeyIsolation(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	a := NewStore(backend, "board_a", nil)
	b := NewStore(backend, "board_b", nil)

	if _, err := a.Append(ctx, Record{Name: "A", Text: "t", Rating: 4}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if n := Count(b.Load(ctx)); n != 0 {
		t.Fatalf("expected other key untouched, got %d records", n)
	}
	if a.Key() != "board_a" || NewStore(backend, " ", nil).Key() != DefaultKey {
		t.Fatalf("unexpected keys %q", a.Key())
	}
}

// Two writers that both load before either saves: the later save wins and
// the earlier submission is lost. No merge is attempted.
func TestStoreConcurrentWritersLastSaveWins(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	tabOne := NewStore(backend, "", nil)
	tabTwo := NewStore(backend, "", nil)

	if _, err := tabOne.Append(ctx, Record{Name: "Seed", Text: "t", Rating: 4, Time: 1}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	one := tabOne.Load(ctx)
	two := tabTwo.Load(ctx)

	one = append(one, Record{Name: "From tab one", Text: "t", Rating: 5, Time: 2})
	two = append(two, Record{Name: "From tab two", Text: "t", Rating: 1, Time: 3})

	if err := tabOne.Save(ctx, one); err != nil {
		t.Fatalf("save one: %v", err)
	}
	if err := tabTwo.Save(ctx, two); err != nil {
		t.Fatalf("save two: %v", err)
	}

	got := tabOne.Load(ctx)
	names := make([]string, 0, len(got))
	for _, r := range got {
		names = append(names, r.Name)
	}
	want := []string{"Seed", "From tab two"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("expected last save to win (-want +got):\n%s", diff)
	}
}
