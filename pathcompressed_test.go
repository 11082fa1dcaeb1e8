package hyperion

import (
	"bytes"
	"testing"
)

func TestWriteReadPCLeafWithValue(t *testing.T) {
	cfg := testConfig()
	buf := make([]byte, 32)
	residual := []byte{1, 2, 3}
	value := NodeValue{9, 8, 7, 6}

	writePCLeaf(buf, 0, cfg, value, residual)

	gotValue, gotResidual := readPCLeaf(buf, 0, cfg)
	if !bytes.Equal(gotValue, value) {
		t.Fatalf("value = %v, want %v", gotValue, value)
	}
	if !bytes.Equal(gotResidual, residual) {
		t.Fatalf("residual = %v, want %v", gotResidual, residual)
	}
}

func TestWriteReadPCLeafNoValue(t *testing.T) {
	cfg := testConfig()
	buf := make([]byte, 32)
	residual := []byte{4, 5}

	writePCLeaf(buf, 0, cfg, nil, residual)

	gotValue, gotResidual := readPCLeaf(buf, 0, cfg)
	if gotValue != nil {
		t.Fatalf("value = %v, want nil", gotValue)
	}
	if !bytes.Equal(gotResidual, residual) {
		t.Fatalf("residual = %v, want %v", gotResidual, residual)
	}
}

func TestComparePathCompressedNode(t *testing.T) {
	cfg := testConfig()
	buf := make([]byte, 32)
	writePCLeaf(buf, 0, cfg, NodeValue{1, 2, 3, 4}, []byte{10, 20, 30})

	if !comparePathCompressedNode(buf, 0, []byte{10, 20, 30}, cfg) {
		t.Fatal("expected exact residual match to compare equal")
	}
	if comparePathCompressedNode(buf, 0, []byte{10, 20}, cfg) {
		t.Fatal("shorter key tail should not compare equal")
	}
	if comparePathCompressedNode(buf, 0, []byte{10, 20, 31}, cfg) {
		t.Fatal("differing last byte should not compare equal")
	}
}

func TestPCFitsRespectsSevenBitSizeField(t *testing.T) {
	cfg := testConfig()
	if !pcFits(cfg, true, 10) {
		t.Fatal("small residual with value should fit")
	}
	if pcFits(cfg, true, 200) {
		t.Fatal("oversized residual should not fit the 7-bit size field")
	}
}

func TestSafePathCompressedContextSurvivesOverwrite(t *testing.T) {
	cfg := testConfig()
	buf := make([]byte, 32)
	writePCLeaf(buf, 0, cfg, NodeValue{1, 2, 3, 4}, []byte{42, 43})

	ctx := safePathCompressedContext(buf, 0, cfg)

	// Mutate the underlying bytes as ejection/conversion would.
	for i := range buf[:8] {
		buf[i] = 0xFF
	}

	if !ctx.header.valuePresent {
		t.Fatal("side-band context should have kept the original header")
	}
	if !bytes.Equal(ctx.value, NodeValue{1, 2, 3, 4}) {
		t.Fatalf("side-band value = %v, want [1 2 3 4]", ctx.value)
	}
	if !bytes.Equal(ctx.residualKey, []byte{42, 43}) {
		t.Fatalf("side-band residual = %v, want [42 43]", ctx.residualKey)
	}
}
