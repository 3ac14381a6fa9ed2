package auth

import "testing"

func TestHasherSaltsEveryHash(t *testing.T) {
	h := NewHasher(4)

	first, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	second, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if first == second {
		t.Fatalf("two hashes of the same password are identical")
	}
	if !h.Verify("correct horse", first) || !h.Verify("correct horse", second) {
		t.Fatalf("hash does not verify against its own password")
	}
}

func TestHasherRejectsWrongPassword(t *testing.T) {
	h := NewHasher(4)
	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h.Verify("correct horsf", hash) {
		t.Fatalf("near-miss password verified")
	}
	if h.Verify("", hash) {
		t.Fatalf("empty password verified")
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	// Out-of-range costs must not panic GenerateFromPassword later.
	for _, cost := range []int{-1, 0, 99} {
		h := NewHasher(cost)
		if _, err := h.Hash("pw"); err != nil {
			t.Fatalf("NewHasher(%d).Hash: %v", cost, err)
		}
	}
}
