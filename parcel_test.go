package binder

import "testing"

func TestPadSize(t *testing.T) {
	cases := map[int]int{0: 0, 1: 4, 2: 4, 3: 4, 4: 4, 5: 8, 8: 8, 9: 12}
	for in, want := range cases {
		if got := padSize(in); got != want {
			t.Errorf("padSize(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestOwnedParcelInt32RoundTrip(t *testing.T) {
	p := NewOwnedParcel(nil)
	defer p.Release()

	p.WriteInt32(-42)
	p.WriteInt32(7)

	p.SetPosition(0)
	v1, err := p.ReadInt32()
	if err != nil {
		t.Fatalf("ReadInt32: %v", err)
	}
	if v1 != -42 {
		t.Errorf("first value = %d, want -42", v1)
	}
	v2, err := p.ReadInt32()
	if err != nil {
		t.Fatalf("ReadInt32: %v", err)
	}
	if v2 != 7 {
		t.Errorf("second value = %d, want 7", v2)
	}
}

func TestOwnedParcelString16RoundTrip(t *testing.T) {
	p := NewOwnedParcel(nil)
	defer p.Release()

	p.WriteString16("binder")
	p.SetPosition(0)

	got, err := p.ReadString16()
	if err != nil {
		t.Fatalf("ReadString16: %v", err)
	}
	if got != "binder" {
		t.Errorf("ReadString16() = %q, want %q", got, "binder")
	}
}

func TestOwnedParcelEmptyString16RoundTrip(t *testing.T) {
	p := NewOwnedParcel(nil)
	defer p.Release()

	p.WriteString16("")
	p.SetPosition(0)

	got, err := p.ReadString16()
	if err != nil {
		t.Fatalf("ReadString16: %v", err)
	}
	if got != "" {
		t.Errorf("ReadString16() = %q, want empty", got)
	}
}

func TestOwnedParcelWriteStrongBinderNil(t *testing.T) {
	p := NewOwnedParcel(nil)
	defer p.Release()

	p.WriteStrongBinder(nil)
	p.SetPosition(0)

	proxy, err := p.ReadStrongBinder()
	if err != nil {
		t.Fatalf("ReadStrongBinder: %v", err)
	}
	if proxy != nil {
		t.Errorf("expected nil proxy for a null binder write, got %+v", proxy)
	}
}

func TestOwnedParcelWriteOverflowPanics(t *testing.T) {
	p := NewOwnedParcel(nil)
	defer p.Release()

	defer func() {
		if recover() == nil {
			t.Fatal("expected overflow write to panic")
		}
	}()
	p.WriteBuf(make([]byte, p.Cap()+64))
}

func TestOwnedParcelClearResetsState(t *testing.T) {
	p := NewOwnedParcel(nil)
	defer p.Release()

	p.WriteInt32(1)
	p.WriteStrongBinder(nil)
	p.Clear()

	if p.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", p.Len())
	}
	if p.Position() != 0 {
		t.Errorf("Position() after Clear = %d, want 0", p.Position())
	}
}
