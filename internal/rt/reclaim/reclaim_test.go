package reclaim

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadThroughReader(t *testing.T) {
	o := NewObjectWith(42)
	r := o.NewReader()
	defer r.Close()

	a := r.ReadAccess()
	assert.Equal(t, 42, *a.Get())
	a.Close()

	assert.Equal(t, 42, r.Value())
}

func TestZeroValueConstructor(t *testing.T) {
	o := NewObject[int]()
	r := o.NewReader()
	defer r.Close()

	assert.Equal(t, 0, r.Value())
}

// TestUpdateAndReclaimLifecycle is the canonical lifecycle: a reader
// holding access across an update keeps observing the old value; once
// the access closes, a reclaim destroys the old value exactly once.
func TestUpdateAndReclaimLifecycle(t *testing.T) {
	o := NewObjectWith(42)

	var reclaimed []int
	o.OnReclaim(func(v *int) { reclaimed = append(reclaimed, *v) })

	r1 := o.NewReader()
	defer r1.Close()

	a1 := r1.ReadAccess()
	require.Equal(t, 42, *a1.Get())

	o.Update(43)

	// A fresh reader sees the new value immediately.
	r2 := o.NewReader()
	assert.Equal(t, 43, r2.Value())
	r2.Close()

	// R1's still-open access still reads the pre-update value.
	assert.Equal(t, 42, *a1.Get())

	// While R1 is open, nothing may be reclaimed.
	o.Reclaim()
	assert.Empty(t, reclaimed, "reclaimed a value observable by an open read access")

	a1.Close()

	o.Reclaim()
	require.Equal(t, []int{42}, reclaimed, "old value must be destroyed exactly once")

	// A further reclaim must not touch it again.
	o.Reclaim()
	assert.Equal(t, []int{42}, reclaimed)
}

// TestReaderIsolation verifies a read access opened before an update
// returns the pre-update value for its entire open duration, across
// multiple subsequent updates.
func TestReaderIsolation(t *testing.T) {
	o := NewObjectWith(1)
	r := o.NewReader()
	defer r.Close()

	a := r.ReadAccess()
	for i := 2; i <= 10; i++ {
		o.Update(i)
		assert.Equal(t, 1, *a.Get(), "open access must keep the pre-update value")
	}
	a.Close()

	assert.Equal(t, 10, r.Value())
}

func TestReclaimKeepsPinnedZombiesOnly(t *testing.T) {
	o := NewObjectWith(0)

	var count atomic.Int64
	o.OnReclaim(func(*int) { count.Add(1) })

	r := o.NewReader()
	defer r.Close()

	o.Update(1) // retires 0 with no open access
	a := r.ReadAccess()
	o.Update(2) // retires 1, pinned by a
	o.Update(3) // retires 2, also >= a's pin

	o.Reclaim()
	// Zombie 0 retired before the access opened; a's pin is above its
	// retirement epoch, so it goes. Zombies 1 and 2 stay pinned.
	assert.Equal(t, int64(1), count.Load())

	a.Close()
	o.Reclaim()
	assert.Equal(t, int64(3), count.Load(), "all zombies freed after the access closed")
}

func TestReclaimWithoutReadersFreesEverything(t *testing.T) {
	o := NewObjectWith(0)

	var count atomic.Int64
	o.OnReclaim(func(*int) { count.Add(1) })

	const updates = 100
	for i := 1; i <= updates; i++ {
		o.Update(i)
	}
	o.Reclaim()
	assert.Equal(t, int64(updates), count.Load())
}

func TestWriteAccessInPlaceMutation(t *testing.T) {
	type params struct {
		Gain float64
		Mute bool
	}

	o := NewObjectWith(params{Gain: 0.5})
	r := o.NewReader()
	defer r.Close()

	w := o.WriteAccess()
	w.Get().Mute = true
	// Not yet published: readers still see the old value.
	assert.Equal(t, params{Gain: 0.5}, r.Value())

	w.Publish()
	assert.Equal(t, params{Gain: 0.5, Mute: true}, r.Value())
}

func TestWriteAccessPublishTwicePanics(t *testing.T) {
	o := NewObjectWith(1)
	w := o.WriteAccess()
	w.Publish()
	assert.Panics(t, func() { w.Publish() })
	assert.Panics(t, func() { w.Get() })
}

func TestReadAccessCloseTwicePanics(t *testing.T) {
	o := NewObjectWith(1)
	r := o.NewReader()
	defer r.Close()

	a := r.ReadAccess()
	a.Close()
	assert.Panics(t, func() { a.Close() })
}

func TestNestedReadAccessPanics(t *testing.T) {
	o := NewObjectWith(1)
	r := o.NewReader()
	defer r.Close()

	a := r.ReadAccess()
	defer a.Close()
	assert.Panics(t, func() { r.ReadAccess() })
}

func TestReaderCloseWithOpenAccessPanics(t *testing.T) {
	o := NewObjectWith(1)
	r := o.NewReader()
	a := r.ReadAccess()
	assert.Panics(t, func() { r.Close() })
	a.Close()
	r.Close()
}

// TestConcurrentReadersAndWriters stresses the full protocol: several
// writers update a two-field value whose fields move in lockstep,
// several readers continuously validate consistency through their
// accesses, and a reclaimer goroutine reclaims on a tight schedule.
func TestConcurrentReadersAndWriters(t *testing.T) {
	type pair struct {
		A, B uint64 // invariant: B == 2*A
	}

	o := NewObjectWith(pair{A: 1, B: 2})

	var stop atomic.Bool
	var wg sync.WaitGroup

	const (
		writers = 4
		readers = 4
	)

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			for i := seed; !stop.Load(); i++ {
				o.Update(pair{A: i, B: 2 * i})
			}
		}(uint64(w+1) * 1000)
	}

	errs := make(chan string, readers)
	for g := 0; g < readers; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := o.NewReader()
			defer r.Close()
			for !stop.Load() {
				a := r.ReadAccess()
				v := *a.Get()
				if v.B != 2*v.A {
					select {
					case errs <- "inconsistent value observed":
					default:
					}
				}
				a.Close()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for !stop.Load() {
			o.Reclaim()
			time.Sleep(100 * time.Microsecond)
		}
	}()

	time.Sleep(200 * time.Millisecond)
	stop.Store(true)
	wg.Wait()

	select {
	case msg := <-errs:
		t.Fatal(msg)
	default:
	}

	// Everything unpinned must be reclaimable now.
	var count atomic.Int64
	o.OnReclaim(func(*pair) { count.Add(1) })
	o.Reclaim()
	o.zombiesMu.Lock()
	remaining := len(o.zombies)
	o.zombiesMu.Unlock()
	assert.Zero(t, remaining, "zombies left after all readers closed")
}

func BenchmarkReadAccess(b *testing.B) {
	o := NewObjectWith(42)
	r := o.NewReader()
	defer r.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a := r.ReadAccess()
		_ = *a.Get()
		a.Close()
	}
}

func BenchmarkUpdate(b *testing.B) {
	o := NewObjectWith(0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o.Update(i)
	}
	b.StopTimer()
	o.Reclaim()
}
