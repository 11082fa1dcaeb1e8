package hyperion

import "testing"

func TestGrowContainerNoOpWhenFreeSpaceSuffices(t *testing.T) {
	a := NewHeapArena()
	cfg := testConfig()
	h, err := initializeContainer(a, cfg)
	if err != nil {
		t.Fatalf("initializeContainer: %v", err)
	}
	h2, _, err := growContainer(a, h, cfg, 1)
	if err != nil {
		t.Fatalf("growContainer: %v", err)
	}
	if h2 != h {
		t.Fatalf("expected unchanged handle when free space suffices, got %v != %v", h2, h)
	}
}

func TestGrowContainerReallocatesOnDeficit(t *testing.T) {
	a := NewHeapArena()
	cfg := testConfig()
	h, err := initializeContainer(a, cfg)
	if err != nil {
		t.Fatalf("initializeContainer: %v", err)
	}
	c0, _ := resolveContainer(a, h)
	before := int(c0.size())

	h2, c2, err := growContainer(a, h, cfg, before+1)
	if err != nil {
		t.Fatalf("growContainer: %v", err)
	}
	if int(c2.size()) <= before {
		t.Fatalf("size after growth = %d, want > %d", c2.size(), before)
	}
	if int(c2.freeBytes()) < before+1 {
		t.Fatalf("freeBytes after growth = %d, want >= %d", c2.freeBytes(), before+1)
	}
	if h2 == h {
		t.Fatal("expected a new handle after a real reallocation")
	}
}

func TestGrowContainerPreservesLiveBytes(t *testing.T) {
	a := NewHeapArena()
	cfg := testConfig()
	h, err := initializeContainer(a, cfg)
	if err != nil {
		t.Fatalf("initializeContainer: %v", err)
	}
	h, err = putKey(a, cfg, h, region{}, nil, []byte{1, 2, 3}, NodeValue{9, 9, 9, 9})
	if err != nil {
		t.Fatalf("putKey: %v", err)
	}
	before, rc, err := getKey(a, cfg, h, region{}, []byte{1, 2, 3})
	if err != nil || rc != OK {
		t.Fatalf("getKey before growth: rc=%v err=%v", rc, err)
	}

	c, _ := resolveContainer(a, h)
	h2, _, err := growContainer(a, h, cfg, int(c.size())+1)
	if err != nil {
		t.Fatalf("growContainer: %v", err)
	}

	after, rc, err := getKey(a, cfg, h2, region{}, []byte{1, 2, 3})
	if err != nil || rc != OK {
		t.Fatalf("getKey after growth: rc=%v err=%v", rc, err)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("value changed across growth: before=%v after=%v", before, after)
		}
	}
}

func TestUpdateEmbeddedAncestorSizesOnlyAffectsEnclosingAncestors(t *testing.T) {
	buf := make([]byte, 32)
	embeddedHeader{size: 10}.encode(buf, 0)
	embeddedHeader{size: 20}.encode(buf, 16)

	stack := []ref{
		{valid: true, offset: 0},  // encloses offset 5 (0 <= 5)
		{valid: true, offset: 16}, // does not enclose offset 5 (16 > 5)
	}
	updateEmbeddedAncestorSizes(buf, stack, 5, 3)

	if got := decodeEmbeddedHeader(buf, 0).size; got != 13 {
		t.Fatalf("ancestor at 0: size = %d, want 13", got)
	}
	if got := decodeEmbeddedHeader(buf, 16).size; got != 20 {
		t.Fatalf("ancestor at 16 should be untouched: size = %d, want 20", got)
	}
}

func TestBumpSuccessorJumpOnlyWhenShiftCrossesJumpedRegion(t *testing.T) {
	cfg := testConfig()
	buf := make([]byte, 32)
	buf[0] = encodeTopHeader(typeInnerNode, false, true, false)
	buf[1] = 0 // resync byte, prevChar=-1 => char 0
	writeU16(buf, 2, 10) // jump_successor field: target = top offset(0) + 10 = 10

	bumpSuccessorJump(buf, ref{valid: true, offset: 0}, 8, 4, cfg)
	if got := readU16(buf, 2); got != 14 {
		t.Fatalf("jump field after in-range shift = %d, want 14", got)
	}

	buf2 := make([]byte, 32)
	buf2[0] = encodeTopHeader(typeInnerNode, false, true, false)
	buf2[1] = 0
	writeU16(buf2, 2, 10)
	bumpSuccessorJump(buf2, ref{valid: true, offset: 0}, 20, 4, cfg)
	if got := readU16(buf2, 2); got != 10 {
		t.Fatalf("jump field after out-of-range shift = %d, want unchanged 10", got)
	}
}
