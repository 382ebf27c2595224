package device

import (
	"errors"
	"testing"

	"github.com/sweeney/rotation-sensor/internal/counter"
)

func readAll(t *testing.T, n *Node) string {
	t.Helper()
	var off int64
	var out []byte
	buf := make([]byte, 64)
	for {
		nr, err := n.Read(buf, &off)
		if err != nil {
			t.Fatalf("read error: %v", err)
		}
		if nr == 0 {
			return string(out)
		}
		out = append(out, buf[:nr]...)
	}
}

func TestReadZeroPosition(t *testing.T) {
	c := counter.New(5000)
	n := NewNode(c)

	if got := readAll(t, n); got != "0.0\n" {
		t.Errorf("expected %q, got %q", "0.0\n", got)
	}
}

func TestReadAfterEdges(t *testing.T) {
	// 10 clockwise ticks at modulus 5000: angle = 10*3600/5000 = 7 tenths.
	c := counter.New(5000)
	for i := 0; i < 10; i++ {
		c.Step(true)
	}
	n := NewNode(c)

	if got := readAll(t, n); got != "0.7\n" {
		t.Errorf("expected %q, got %q", "0.7\n", got)
	}
}

func TestReadIdempotent(t *testing.T) {
	c := counter.New(5000)
	c.Set(1234)
	n := NewNode(c)

	first := readAll(t, n)
	second := readAll(t, n)
	if first != second {
		t.Errorf("reads differ with no intervening events: %q vs %q", first, second)
	}
}

func TestPartialReads(t *testing.T) {
	c := counter.New(5000)
	c.Set(2500)
	n := NewNode(c)

	full := readAll(t, n) // "180.0\n"

	for split := 1; split < len(full); split++ {
		var off int64
		first := make([]byte, split)
		nr, err := n.Read(first, &off)
		if err != nil {
			t.Fatalf("split %d: first read error: %v", split, err)
		}
		if nr != split {
			t.Fatalf("split %d: first read returned %d bytes", split, nr)
		}
		if off != int64(split) {
			t.Fatalf("split %d: cursor at %d", split, off)
		}

		rest := make([]byte, 64)
		nr2, err := n.Read(rest, &off)
		if err != nil {
			t.Fatalf("split %d: second read error: %v", split, err)
		}

		got := string(first[:nr]) + string(rest[:nr2])
		if got != full {
			t.Errorf("split %d: chunked read %q, full read %q", split, got, full)
		}
	}
}

func TestReadPastEnd(t *testing.T) {
	c := counter.New(5000)
	n := NewNode(c)

	off := int64(len(n.Format()))
	buf := make([]byte, 16)
	nr, err := n.Read(buf, &off)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nr != 0 {
		t.Errorf("expected 0 bytes at end of stream, got %d", nr)
	}

	off = 1000
	nr, err = n.Read(buf, &off)
	if err != nil || nr != 0 {
		t.Errorf("far past end: expected (0, nil), got (%d, %v)", nr, err)
	}
}

func TestReadNegativeOffset(t *testing.T) {
	n := NewNode(counter.New(5000))

	off := int64(-1)
	_, err := n.Read(make([]byte, 8), &off)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestWriteThenRead(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"half turn", "2500", "180.0\n"},
		{"zero", "0", "0.0\n"},
		{"trailing newline", "2500\n", "180.0\n"},
		{"leading whitespace", "  \t1250", "90.0\n"},
		{"explicit plus", "+10", "0.7\n"},
		{"trailing junk ignored", "2500 rpm", "180.0\n"},
		// Out-of-range values stay raw until the next edge; the angle
		// is rendered from the raw value, truncating toward zero.
		{"beyond one revolution", "7500", "540.0\n"},
		{"negative", "-100", "-7.-2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := counter.New(5000)
			n := NewNode(c)

			nw, err := n.Write([]byte(tt.input))
			if err != nil {
				t.Fatalf("write error: %v", err)
			}
			if nw != len(tt.input) {
				t.Errorf("expected %d bytes consumed, got %d", len(tt.input), nw)
			}

			if got := readAll(t, n); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWriteInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "  \n"},
		{"letters", "fast"},
		{"bare sign", "-"},
		{"sign then letters", "+x"},
		{"overflow", "99999999999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := counter.New(5000)
			c.Set(42)
			n := NewNode(c)

			nw, err := n.Write([]byte(tt.input))
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			if nw != 0 {
				t.Errorf("expected 0 bytes consumed, got %d", nw)
			}
			if c.Value() != 42 {
				t.Errorf("counter changed on failed write: %d", c.Value())
			}
		})
	}
}

func TestWriteSkipsNormalization(t *testing.T) {
	c := counter.New(5000)
	n := NewNode(c)

	if _, err := n.Write([]byte("12345")); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if c.Value() != 12345 {
		t.Errorf("expected raw value 12345, got %d", c.Value())
	}

	// The next edge pulls the value back into range.
	c.Step(true)
	if c.Value() != 2346 {
		t.Errorf("expected 2346 after edge, got %d", c.Value())
	}
	if got := readAll(t, n); got != "168.9\n" {
		// 2346*3600/5000 = 1689 tenths
		t.Errorf("expected %q, got %q", "168.9\n", got)
	}
}

func TestWritesCounted(t *testing.T) {
	n := NewNode(counter.New(5000))

	n.Write([]byte("1"))
	n.Write([]byte("nope"))
	n.Write([]byte("2"))

	if n.Writes() != 2 {
		t.Errorf("expected 2 successful writes, got %d", n.Writes())
	}
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"2500", 2500, false},
		{"-100", -100, false},
		{"+42", 42, false},
		{" \t\n-7xyz", -7, false},
		{"12.5", 12, false},
		{"", 0, true},
		{"abc", 0, true},
		{"--1", 0, true},
	}

	for _, tt := range tests {
		v, err := parseLeadingInt([]byte(tt.input))
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error, got %d", tt.input, v)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.input, err)
			continue
		}
		if v != tt.want {
			t.Errorf("%q: expected %d, got %d", tt.input, tt.want, v)
		}
	}
}
