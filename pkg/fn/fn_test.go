package fn

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync/atomic"
	"testing"
)

func TestMapFilter(t *testing.T) {
	doubled := Map([]int{1, 2, 3}, func(n int) int { return n * 2 })
	if !reflect.DeepEqual(doubled, []int{2, 4, 6}) {
		t.Errorf("Map = %v", doubled)
	}

	evens := Filter([]int{1, 2, 3, 4}, func(n int) bool { return n%2 == 0 })
	if !reflect.DeepEqual(evens, []int{2, 4}) {
		t.Errorf("Filter = %v", evens)
	}
}

func TestFilterMap(t *testing.T) {
	out := FilterMap([]string{"1", "x", "3"}, func(s string) (string, bool) {
		return s, s != "x"
	})
	if !reflect.DeepEqual(out, []string{"1", "3"}) {
		t.Errorf("FilterMap = %v", out)
	}
}

func TestChunk(t *testing.T) {
	chunks := Chunk([]int{1, 2, 3, 4, 5}, 2)
	if len(chunks) != 3 || len(chunks[2]) != 1 {
		t.Errorf("Chunk = %v", chunks)
	}
	if Chunk([]int{1}, 0) != nil {
		t.Error("Chunk with n<=0 should be nil")
	}
}

func TestUnique(t *testing.T) {
	out := Unique([]string{"a", "b", "a", "c", "b"})
	if !reflect.DeepEqual(out, []string{"a", "b", "c"}) {
		t.Errorf("Unique = %v", out)
	}
}

func TestKeyByLastWins(t *testing.T) {
	type kv struct {
		k string
		v int
	}
	m := KeyBy([]kv{{"a", 1}, {"b", 2}, {"a", 3}}, func(e kv) string { return e.k })
	if m["a"].v != 3 {
		t.Errorf("later item should win, got %d", m["a"].v)
	}
}

func TestParMapPreservesOrder(t *testing.T) {
	in := make([]int, 100)
	for i := range in {
		in[i] = i
	}
	out := ParMap(in, 8, func(n int) int { return n * n })
	for i, v := range out {
		if v != i*i {
			t.Fatalf("out[%d] = %d", i, v)
		}
	}
}

func TestFanOut(t *testing.T) {
	var calls atomic.Int32
	out := FanOut(
		func() int { calls.Add(1); return 1 },
		func() int { calls.Add(1); return 2 },
	)
	if !reflect.DeepEqual(out, []int{1, 2}) {
		t.Errorf("FanOut = %v", out)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d", calls.Load())
	}
}

func TestFanOutResultFirstError(t *testing.T) {
	boom := errors.New("boom")
	r := FanOutResult(
		func() Result[int] { return Ok(1) },
		func() Result[int] { return Err[int](boom) },
	)
	if _, err := r.Unwrap(); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestResult(t *testing.T) {
	if v := Ok(7).UnwrapOr(0); v != 7 {
		t.Errorf("UnwrapOr = %d", v)
	}
	if v := Err[int](errors.New("x")).UnwrapOr(9); v != 9 {
		t.Errorf("UnwrapOr fallback = %d", v)
	}
	r := FromPair(3, nil)
	if r.IsErr() {
		t.Error("FromPair(nil) should be ok")
	}
}

func TestThenShortCircuits(t *testing.T) {
	boom := errors.New("boom")
	first := func(_ context.Context, n int) Result[int] { return Err[int](boom) }
	var secondRan bool
	second := func(_ context.Context, n int) Result[int] { secondRan = true; return Ok(n) }

	r := Then(Stage[int, int](first), Stage[int, int](second))(context.Background(), 1)
	if !r.IsErr() || secondRan {
		t.Error("second stage must not run after a failure")
	}
}

func TestTracedStagePassesThrough(t *testing.T) {
	stage := TracedStage("test", MapStage(func(n int) int { return n + 1 }))
	r := stage(context.Background(), 1)
	if v, _ := r.Unwrap(); v != 2 {
		t.Errorf("got %d, want 2", v)
	}
}

func TestCollect(t *testing.T) {
	all := Collect([]Result[int]{Ok(1), Ok(2)})
	v, err := all.Unwrap()
	if err != nil {
		t.Fatal(err)
	}
	sort.Ints(v)
	if !reflect.DeepEqual(v, []int{1, 2}) {
		t.Errorf("Collect = %v", v)
	}
}
