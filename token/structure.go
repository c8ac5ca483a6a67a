package token

import (
	"fmt"
	"strings"
)

// minSegmentLength is the smallest plausible base64url segment of a real
// JWT. The compact encoding of an HS256 header alone is 36 characters;
// anything shorter than this in any position is corrupt.
const minSegmentLength = 8

// CheckStructure performs a cheap structural sanity check on a compact JWT
// without decoding it: exactly three dot-separated segments, each non-empty
// and above a minimum length. It catches truncated or tampered values
// before they reach durable storage or the parser.
func CheckStructure(raw string) error {
	segments := strings.Split(raw, ".")
	if len(segments) != 3 {
		return fmt.Errorf("%w: expected 3 segments, got %d", MalformedTokenErr, len(segments))
	}
	for i, segment := range segments {
		if len(segment) < minSegmentLength {
			return fmt.Errorf("%w: segment %d too short", MalformedTokenErr, i)
		}
	}
	return nil
}
