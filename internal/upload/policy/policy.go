// Package policy decides whether a candidate file may be uploaded at all.
// Validation is pure and synchronous: a rejection is data, not an error.
package policy

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shopkeeper/internal/upload/gallery"
)

// Reason explains why a candidate was rejected.
type Reason string

const (
	ReasonUnsupportedType Reason = "UnsupportedType"
	ReasonTooLarge        Reason = "TooLarge"
)

// DefaultMaxBytes matches the storefront's 5 MB image limit.
const DefaultMaxBytes int64 = 5 * 1024 * 1024

// DefaultTypePrefixes accepts any image.
var DefaultTypePrefixes = []string{"image/"}

// Policy is the file type / size rule set for one upload surface.
// MaxBytes is an upper bound only; zero-byte files are accepted.
// An empty entry in AllowedTypePrefixes allows every media type.
type Policy struct {
	AllowedTypePrefixes []string
	MaxBytes            int64
}

// Default returns the image gallery policy.
func Default() Policy {
	return Policy{AllowedTypePrefixes: DefaultTypePrefixes, MaxBytes: DefaultMaxBytes}
}

// Verdict is the outcome of Validate. The zero value is not meaningful;
// use Accepted.
type Verdict struct {
	Accepted bool
	Reason   Reason
	Detail   string
}

func accept() Verdict { return Verdict{Accepted: true} }

func reject(r Reason, format string, args ...any) Verdict {
	return Verdict{Reason: r, Detail: fmt.Sprintf(format, args...)}
}

// Validate checks the declared media type, then the declared size.
func (p Policy) Validate(c gallery.Candidate) Verdict {
	if !p.typeAllowed(c.MediaType) {
		mt := c.MediaType
		if mt == "" {
			mt = "unknown"
		}
		return reject(ReasonUnsupportedType, "%s has unsupported type %s", c.Name, mt)
	}
	if c.Size() > p.MaxBytes {
		return reject(ReasonTooLarge, "%s is %s, limit is %s", c.Name, HumanSize(c.Size()), HumanSize(p.MaxBytes))
	}
	return accept()
}

func (p Policy) typeAllowed(mediaType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	for _, prefix := range p.AllowedTypePrefixes {
		if strings.HasPrefix(mt, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

// HumanSize renders n bytes as B, KB or MB with one decimal.
func HumanSize(n int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
