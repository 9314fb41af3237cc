package jsonrpc

import "testing"

func TestParseProtocolVersion(t *testing.T) {
	for _, s := range []string{"2024-11-05", "2025-03-26", "DRAFT-2025-v2"} {
		v, err := ParseProtocolVersion(s)
		if err != nil {
			t.Errorf("expected %s to parse: %v", s, err)
		}
		if string(v) != s {
			t.Errorf("expected %s, got %s", s, v)
		}
	}

	if _, err := ParseProtocolVersion("2023-01-01"); err == nil {
		t.Error("expected unknown version to fail")
	}
}

func TestSupportedVersionsOrdering(t *testing.T) {
	versions := SupportedProtocolVersions()
	if len(versions) != 3 {
		t.Fatalf("expected 3 supported versions, got %d", len(versions))
	}
	for i := 1; i < len(versions); i++ {
		if versions[i-1].Compare(versions[i]) != -1 {
			t.Errorf("versions must be ordered oldest first: %v", versions)
		}
	}
	if ProtocolVersion20250326.Compare(ProtocolVersion20250326) != 0 {
		t.Error("a version must compare equal to itself")
	}
	if ProtocolVersionDraft.Compare(ProtocolVersion20241105) != 1 {
		t.Error("draft must sort after frozen revisions")
	}
}

func TestLatestIsFrozen(t *testing.T) {
	if LatestProtocolVersion() != ProtocolVersion20250326 {
		t.Errorf("expected 2025-03-26, got %s", LatestProtocolVersion())
	}
}

func TestSupportedVersionsCopyIsIsolated(t *testing.T) {
	// The version table is a constant: mutating a returned slice must not
	// leak into later calls.
	first := SupportedProtocolVersions()
	first[0] = "mutated"
	if SupportedProtocolVersions()[0] != ProtocolVersion20241105 {
		t.Error("returned slice must be a copy")
	}
}
