package clientsync

import "testing"

func TestNormalizeMAC(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"AA:BB:CC:DD:EE:FF", "aa:bb:cc:dd:ee:ff"},
		{"aa-bb-cc-dd-ee-ff", "aa:bb:cc:dd:ee:ff"},
		{"aabb.ccdd.eeff", "aa:bb:cc:dd:ee:ff"},
		{"AABBCCDDEEFF", "aa:bb:cc:dd:ee:ff"},
		{"  0A1b2C3d4E5f ", "0a:1b:2c:3d:4e:5f"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := NormalizeMAC(tc.raw)
			if err != nil {
				t.Fatalf("NormalizeMAC(%q): %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("NormalizeMAC(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizeMACRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "aa:bb:cc", "zz:bb:cc:dd:ee:ff", "aabbccddeeff00", "hello world"} {
		if _, err := NormalizeMAC(raw); err == nil {
			t.Fatalf("NormalizeMAC(%q): expected error", raw)
		}
	}
}
