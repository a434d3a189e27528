package idhash

import (
	"testing"
)

func TestComputeLaunchID(t *testing.T) {
	tests := []struct {
		name              string
		mint              string
		creationSignature string
	}{
		{
			name:              "basic launch",
			mint:              "So11111111111111111111111111111111111111112",
			creationSignature: "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW",
		},
		{
			name:              "empty signature",
			mint:              "MintAddr123",
			creationSignature: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLaunchID(tt.mint, tt.creationSignature)

			if len(got) != 64 {
				t.Errorf("ComputeLaunchID() length = %d, want 64", len(got))
			}

			got2 := ComputeLaunchID(tt.mint, tt.creationSignature)
			if got != got2 {
				t.Errorf("ComputeLaunchID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeLaunchID_Uniqueness(t *testing.T) {
	base := ComputeLaunchID("mintA", "sig1")

	variants := map[string]string{
		"different mint":      ComputeLaunchID("mintB", "sig1"),
		"different signature": ComputeLaunchID("mintA", "sig2"),
		"shifted separator":   ComputeLaunchID("mintA|sig", "1"),
	}

	for name, id := range variants {
		if id == base {
			t.Errorf("%s: expected different launch_id, got identical %s", name, id)
		}
	}
}

func TestComputeLaunchID_KnownValue(t *testing.T) {
	const want = "3fcbffadd70f3ae5dacf53c576b0984302328777e3ca5fff4fa37759e346ef9e"
	if got := ComputeLaunchID("mint", "sig"); got != want {
		t.Errorf("ComputeLaunchID() = %s, want %s", got, want)
	}
}
