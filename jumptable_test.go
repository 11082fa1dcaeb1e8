package hyperion

import "testing"

// buildTopWithSubs inserts a root container containing one top node ('a')
// with n sub nodes at consecutive chars 0, 1, 2, ..., n-1, each a plain
// 2-byte key (no further child), returning the handle and the top node's
// offset.
func buildTopWithSubs(t *testing.T, a Arena, cfg Config, n int) (Handle, int) {
	t.Helper()
	h, err := initializeContainer(a, cfg)
	if err != nil {
		t.Fatalf("initializeContainer: %v", err)
	}
	for i := 0; i < n; i++ {
		key := []byte{'a', byte(i)}
		h, err = putKey(a, cfg, h, region{}, nil, key, NodeValue{1, 2, 3, 4})
		if err != nil {
			t.Fatalf("putKey(%v): %v", key, err)
		}
	}
	c, err := resolveContainer(a, h)
	if err != nil {
		t.Fatalf("resolveContainer: %v", err)
	}
	found, topOffset, _ := scanForChar(c.buf, int(c.headSize()), c.safeOffset(), false, 'a', cfg)
	if !found {
		t.Fatal("expected top node 'a' to exist")
	}
	return h, topOffset
}

func TestEnsureSubJumpTableMaterializesPastThreshold(t *testing.T) {
	a := NewHeapArena()
	cfg := testConfig()
	cfg.SubJumpTableThreshold = 4

	h, topOffset := buildTopWithSubs(t, a, cfg, 6)

	h, err := ensureSubJumpTable(a, cfg, h, topOffset, nil)
	if err != nil {
		t.Fatalf("ensureSubJumpTable: %v", err)
	}
	c, err := resolveContainer(a, h)
	if err != nil {
		t.Fatalf("resolveContainer: %v", err)
	}
	if !headerJumpTbl(c.buf[topOffset]) {
		t.Fatal("expected top node's jump-table bit to be set")
	}
}

func TestEnsureSubJumpTableNoOpBelowThreshold(t *testing.T) {
	a := NewHeapArena()
	cfg := testConfig()
	cfg.SubJumpTableThreshold = 100

	h, topOffset := buildTopWithSubs(t, a, cfg, 6)

	h, err := ensureSubJumpTable(a, cfg, h, topOffset, nil)
	if err != nil {
		t.Fatalf("ensureSubJumpTable: %v", err)
	}
	c, err := resolveContainer(a, h)
	if err != nil {
		t.Fatalf("resolveContainer: %v", err)
	}
	if headerJumpTbl(c.buf[topOffset]) {
		t.Fatal("jump table should not materialize below threshold")
	}
}

func TestUseSubNodeJumpTableFindsBucket(t *testing.T) {
	a := NewHeapArena()
	cfg := testConfig()
	cfg.SubJumpTableThreshold = 4

	// Sub chars 0..39 span buckets 0 (0-31) and 1 (32-39).
	h, topOffset := buildTopWithSubs(t, a, cfg, 40)
	h, err := ensureSubJumpTable(a, cfg, h, topOffset, nil)
	if err != nil {
		t.Fatalf("ensureSubJumpTable: %v", err)
	}
	c, err := resolveContainer(a, h)
	if err != nil {
		t.Fatalf("resolveContainer: %v", err)
	}

	offset, _, ok := useSubNodeJumpTable(c.buf, topOffset, 35, cfg)
	if !ok {
		t.Fatal("expected bucket 1 to be populated")
	}
	if offset <= topOffset {
		t.Fatalf("offset %d should be past topOffset %d", offset, topOffset)
	}
}

func TestUseSubNodeJumpTableMissingTableReturnsFalse(t *testing.T) {
	a := NewHeapArena()
	cfg := testConfig()
	h, topOffset := buildTopWithSubs(t, a, cfg, 3)
	c, err := resolveContainer(a, h)
	if err != nil {
		t.Fatalf("resolveContainer: %v", err)
	}
	if _, _, ok := useSubNodeJumpTable(c.buf, topOffset, 1, cfg); ok {
		t.Fatal("expected ok=false with no jump table present")
	}
}

func TestEnsureSuccessorJumpMaterializesPastThreshold(t *testing.T) {
	a := NewHeapArena()
	cfg := testConfig()
	cfg.SuccessorJumpThreshold = 4

	h, topOffset := buildTopWithSubs(t, a, cfg, 6)
	c, err := resolveContainer(a, h)
	if err != nil {
		t.Fatalf("resolveContainer: %v", err)
	}
	nextTop := c.safeOffset()

	h, err = ensureSuccessorJump(a, cfg, h, topOffset, nextTop, nil)
	if err != nil {
		t.Fatalf("ensureSuccessorJump: %v", err)
	}
	c, err = resolveContainer(a, h)
	if err != nil {
		t.Fatalf("resolveContainer: %v", err)
	}
	if !headerJumpSucc(c.buf[topOffset]) {
		t.Fatal("expected top node's jump-successor bit to be set")
	}
}
