package idp

import "testing"

func TestComputeSecretHash_KnownVectors(t *testing.T) {
	tests := []struct {
		username     string
		clientID     string
		clientSecret string
		want         string
	}{
		{"jane@x.com", "client-1", "top-secret", "PvhHzwwnX04yJATD/Le+h1p5oA2NhaE3baCsnQYfBcQ="},
		{"a@x.com", "3fooclient", "s3cr3t", "BUs4JuFAG/WQOzW+GrA2bwHKs2+E5pPFwWHgPw2pZdk="},
	}

	for _, tc := range tests {
		got, err := ComputeSecretHash(tc.username, tc.clientID, tc.clientSecret)
		if err != nil {
			t.Fatalf("ComputeSecretHash(%q) error: %v", tc.username, err)
		}
		if got != tc.want {
			t.Fatalf("ComputeSecretHash(%q) = %q, want %q", tc.username, got, tc.want)
		}
	}
}

func TestComputeSecretHash_Deterministic(t *testing.T) {
	a, err := ComputeSecretHash("user@x.com", "cid", "secret")
	if err != nil {
		t.Fatalf("ComputeSecretHash error: %v", err)
	}
	b, err := ComputeSecretHash("user@x.com", "cid", "secret")
	if err != nil {
		t.Fatalf("ComputeSecretHash error: %v", err)
	}
	if a != b {
		t.Fatalf("equal inputs produced different hashes: %q vs %q", a, b)
	}
}

func TestComputeSecretHash_EmptyArguments(t *testing.T) {
	cases := [][3]string{
		{"", "cid", "secret"},
		{"user@x.com", "", "secret"},
		{"user@x.com", "cid", ""},
	}
	for _, c := range cases {
		if _, err := ComputeSecretHash(c[0], c[1], c[2]); err == nil {
			t.Fatalf("ComputeSecretHash(%q, %q, %q): want error, got nil", c[0], c[1], c[2])
		}
	}
}
