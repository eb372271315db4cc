package urlinfo

import "strings"

// currentLocation is the sentinel returned by normalizePathStrict for an
// empty or root path. It is distinct from "/" so that callers can tell
// "nothing to traverse" apart from "root".
const currentLocation = "."

// normalizePathStrict produces the security-safe form of a path, used only
// as input to the validator's traversal check. It is deliberately lossy:
//
//   - Backslashes are folded to forward slashes first, so alternate
//     separator tricks ("..\..\etc") cannot bypass segment splitting.
//   - Empty and "." segments are dropped.
//   - A ".." segment pops the previous segment when one exists; a ".."
//     with nothing left to pop is dropped and reported as an escape
//     attempt. The traversal must not leak into the accumulated segments.
//
// The second return value reports whether any ".." tried to climb above
// the root. Ambiguity here must resolve to the safer interpretation, which
// is why this function is kept separate from normalizePathCanonical: the
// two have different consumers with different obligations, and merging
// them is how traversal bugs happen.
func normalizePathStrict(path string) (normalized string, escaped bool) {
	if path == "" || path == "/" {
		return currentLocation, false
	}

	path = strings.ReplaceAll(path, "\\", "/")
	leadingSlash := strings.HasPrefix(path, "/")

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			// skip
		case "..":
			if n := len(segments); n > 0 && segments[n-1] != ".." {
				segments = segments[:n-1]
			} else {
				escaped = true
			}
		default:
			segments = append(segments, seg)
		}
	}

	joined := strings.Join(segments, "/")
	if leadingSlash {
		joined = "/" + joined
	}
	if joined == "" {
		joined = currentLocation
	}
	return joined, escaped
}

// normalizePathCanonical produces the canonical form of an
// already-validated path. Unlike the strict variant it is faithful rather
// than defensive: an unresolvable ".." (one with no preceding segment to
// cancel) is preserved verbatim, because the canonical form must remain a
// round-trippable representation of the path the validator already
// cleared. Repeated slashes collapse to one.
func normalizePathCanonical(path string) string {
	if path == "" {
		return ""
	}

	leadingSlash := strings.HasPrefix(path, "/")

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			// skip
		case "..":
			if n := len(segments); n > 0 && segments[n-1] != ".." {
				segments = segments[:n-1]
			} else if !leadingSlash {
				// Nothing to cancel: keep the segment. Rooted paths
				// cannot climb above "/", so the segment vanishes there.
				segments = append(segments, seg)
			}
		default:
			segments = append(segments, seg)
		}
	}

	joined := strings.Join(segments, "/")
	if leadingSlash {
		joined = "/" + joined
	}
	return joined
}
