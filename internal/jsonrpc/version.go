// ABOUTME: Closed set of supported MCP protocol revisions
// ABOUTME: Constant table with parsing and ordering helpers

package jsonrpc

import "fmt"

// ProtocolVersion is one of the frozen protocol revisions. Each revision
// owns its own vocabulary.
type ProtocolVersion string

const (
	ProtocolVersion20241105 ProtocolVersion = "2024-11-05"
	ProtocolVersion20250326 ProtocolVersion = "2025-03-26"
	ProtocolVersionDraft    ProtocolVersion = "DRAFT-2025-v2"
)

// supportedVersions is ordered oldest to newest; the draft revision sorts
// after every frozen one.
var supportedVersions = []ProtocolVersion{
	ProtocolVersion20241105,
	ProtocolVersion20250326,
	ProtocolVersionDraft,
}

// SupportedProtocolVersions returns the closed version set, oldest first.
func SupportedProtocolVersions() []ProtocolVersion {
	out := make([]ProtocolVersion, len(supportedVersions))
	copy(out, supportedVersions)
	return out
}

// LatestProtocolVersion returns the newest frozen (non-draft) revision.
func LatestProtocolVersion() ProtocolVersion {
	return ProtocolVersion20250326
}

// ParseProtocolVersion maps a wire string to a supported revision.
func ParseProtocolVersion(s string) (ProtocolVersion, error) {
	for _, v := range supportedVersions {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("protocol version parse error: %s", s)
}

// Compare orders two revisions: -1 if v is older than other, 0 if equal,
// +1 if newer. Unknown versions sort before every supported one.
func (v ProtocolVersion) Compare(other ProtocolVersion) int {
	vi, oi := versionIndex(v), versionIndex(other)
	switch {
	case vi < oi:
		return -1
	case vi > oi:
		return 1
	default:
		return 0
	}
}

func versionIndex(v ProtocolVersion) int {
	for i, sv := range supportedVersions {
		if sv == v {
			return i
		}
	}
	return -1
}
