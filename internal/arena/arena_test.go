package arena

import "testing"

func TestWriteAtRoundTrip(t *testing.T) {
	a := New()
	defer a.Close()

	b1, o1, err := a.Write([]byte{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	b2, o2, err := a.Write([]byte{4, 3, 2, 1})
	if err != nil {
		t.Fatal(err)
	}

	got, err := a.At(b1, o1, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("At(first) = %v, want %v", got, want)
		}
	}

	got, err = a.At(b2, o2, 4)
	if err != nil {
		t.Fatal(err)
	}
	want = []byte{4, 3, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("At(second) = %v, want %v", got, want)
		}
	}

	if got, want := a.Len(), 8; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
}

func TestWriteSpansNewBlock(t *testing.T) {
	a := New()
	defer a.Close()

	if _, _, err := a.Write(make([]byte, 16)); err != nil {
		t.Fatal(err)
	}
	big := make([]byte, 36*1024)
	big[1] = 5
	bi, off, err := a.Write(big)
	if err != nil {
		t.Fatal(err)
	}
	if bi == 0 {
		t.Fatal("expected the oversized write to land in a new block")
	}
	got, err := a.At(bi, off, len(big))
	if err != nil {
		t.Fatal(err)
	}
	if got[1] != 5 {
		t.Fatalf("got[1] = %d, want 5", got[1])
	}
}
