package viewer

import (
	"bytes"
	"io"
	"testing"
)

func TestProgressIsMonotonicAndBounded(t *testing.T) {
	t.Parallel()

	var p Progress
	last := 0
	for _, received := range []int64{0, 10, 5, 333, 200, 999, 1000, 1500} {
		pct, ok := p.Report(received, 1000)
		if !ok {
			t.Fatal("known total reported as unknown")
		}
		if pct < last {
			t.Fatalf("progress went from %d to %d", last, pct)
		}
		if pct < 0 || pct > 100 {
			t.Fatalf("progress %d out of range", pct)
		}
		last = pct
	}
	if last != 100 {
		t.Fatalf("final progress = %d, want 100", last)
	}
}

func TestProgressRounding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		received, total int64
		want            int
	}{
		{received: 1, total: 3, want: 33},
		{received: 2, total: 3, want: 67},
		{received: 1, total: 200, want: 1},
		{received: 1, total: 201, want: 0},
	}
	for _, tc := range tests {
		var p Progress
		if got, _ := p.Report(tc.received, tc.total); got != tc.want {
			t.Fatalf("Report(%d, %d) = %d, want %d", tc.received, tc.total, got, tc.want)
		}
	}
}

func TestProgressUnknownTotalReportsNothing(t *testing.T) {
	t.Parallel()

	var p Progress
	if _, ok := p.Report(500, -1); ok {
		t.Fatal("unknown total reported progress")
	}
	if _, ok := p.Percent(); ok {
		t.Fatal("Percent known after unknown-size report")
	}
}

func TestProgressReaderCallbacks(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte{1}, 1000)
	var p Progress
	var seen []int
	r := newProgressReader(bytes.NewReader(data), int64(len(data)), &p, func(pct int) {
		seen = append(seen, pct)
	})
	buf := make([]byte, 100)
	for {
		_, err := r.Read(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
	}
	if len(seen) != 10 {
		t.Fatalf("callbacks = %v, want 10 values", seen)
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] <= seen[i-1] {
			t.Fatalf("callbacks not increasing: %v", seen)
		}
	}
	if seen[len(seen)-1] != 100 {
		t.Fatalf("last callback = %d, want 100", seen[len(seen)-1])
	}
}
