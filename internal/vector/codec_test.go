package vector

import "testing"

func TestDecodeFloat32_rejectsTruncatedBlob(t *testing.T) {
	if _, err := DecodeFloat32([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for blob of length 3")
	}
}

func TestEncodeDecodeFloat32(t *testing.T) {
	in := []float32{0.25, -1.5, 3}
	out, err := DecodeFloat32(EncodeFloat32(in))
	if err != nil {
		t.Fatal(err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("index %d: got %v, want %v", i, out[i], in[i])
		}
	}
}
