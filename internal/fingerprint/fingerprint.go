// Package fingerprint computes stable content digests for stage inputs.
// Equal canonical content always yields an equal digest; any change that
// must invalidate downstream artifacts changes the canonical form.
package fingerprint

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Digest is the full hex form of a SHA-256 content hash. The zero value
// means "no fingerprint".
type Digest string

// Short returns a log-friendly prefix of the digest.
func (d Digest) Short() string {
	if len(d) <= 12 {
		return string(d)
	}
	return string(d)[:12]
}

// IsZero reports whether no fingerprint was computed.
func (d Digest) IsZero() bool { return d == "" }

func (d Digest) String() string { return string(d) }

var spaceRun = regexp.MustCompile(`[ \t]+`)

// Canonical normalizes free text before hashing: line endings become LF,
// runs of spaces and tabs collapse to one space, per-line and outer
// trailing whitespace is dropped. Near-duplicate edits (a stray trailing
// blank, a double space) share one canonical form.
func Canonical(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = spaceRun.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, " \n", "\n")
	return strings.TrimSpace(s)
}

// Text fingerprints free text through its canonical form.
func Text(s string) Digest {
	return sum([]byte(Canonical(s)))
}

// JSON fingerprints a structured value through its canonical JSON
// serialization. Struct fields marshal in declaration order and map keys
// sort, so equivalent values share one serialization.
func JSON(v any) Digest {
	b, _ := json.Marshal(v)
	return sum(b)
}

// Bytes fingerprints raw bytes as-is, with no canonicalization. Used for
// uploaded file content, where the bytes are the identity.
func Bytes(b []byte) Digest {
	return sum(b)
}

// Combine derives one digest from an ordered list of digests.
func Combine(parts ...Digest) Digest {
	joined := make([]string, len(parts))
	for i, p := range parts {
		joined[i] = string(p)
	}
	return sum([]byte(strings.Join(joined, "\n")))
}

func sum(b []byte) Digest {
	h := sha256.Sum256(b)
	return Digest(fmt.Sprintf("%x", h[:]))
}
