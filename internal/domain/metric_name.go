package domain

import (
	"strings"
)

// NamespaceSeparator splits namespaces from names in the textual form.
const NamespaceSeparator = ":"

// segmentSeparator joins segments internally. Names come off the wire
// between NUL bytes, so no segment can ever contain it.
const segmentSeparator = "\x00"

// MetricName is a hierarchical metric name: either a bare name or a
// namespace wrapping a nested name. The zero value is the empty bare name.
//
// MetricName is comparable, so it can be used directly as a map key, and
// equality is structural.
type MetricName struct {
	path string
}

// NewName builds a bare (namespace-less) name.
func NewName(name string) MetricName {
	return MetricName{path: name}
}

// NewNamespace nests inner under namespace.
func NewNamespace(namespace string, inner MetricName) MetricName {
	return MetricName{path: namespace + segmentSeparator + inner.path}
}

// ParseMetricName splits s on ':' namespace-first, name-last, so "a:b:c" is
// namespace a, namespace b, name c. Parsing never fails.
func ParseMetricName(s string) MetricName {
	return MetricName{path: strings.ReplaceAll(s, NamespaceSeparator, segmentSeparator)}
}

// Segments returns the namespaces followed by the final name.
func (n MetricName) Segments() []string {
	return strings.Split(n.path, segmentSeparator)
}

// Namespace returns the outermost namespace and the name nested below it.
// ok is false for a bare name.
func (n MetricName) Namespace() (namespace string, inner MetricName, ok bool) {
	namespace, rest, ok := strings.Cut(n.path, segmentSeparator)
	if !ok {
		return "", MetricName{}, false
	}
	return namespace, MetricName{path: rest}, true
}

// Name returns the innermost (last) segment.
func (n MetricName) Name() string {
	if i := strings.LastIndex(n.path, segmentSeparator); i >= 0 {
		return n.path[i+len(segmentSeparator):]
	}
	return n.path
}

// IsNamespaced reports whether n has at least one namespace.
func (n MetricName) IsNamespaced() bool {
	return strings.Contains(n.path, segmentSeparator)
}

// Compare orders names segment by segment, so "a:b" sorts before "a0".
func (n MetricName) Compare(other MetricName) int {
	a, b := n.path, other.path
	for {
		sa, restA, moreA := strings.Cut(a, segmentSeparator)
		sb, restB, moreB := strings.Cut(b, segmentSeparator)
		if c := strings.Compare(sa, sb); c != 0 {
			return c
		}
		switch {
		case !moreA && !moreB:
			return 0
		case !moreA:
			return -1
		case !moreB:
			return 1
		}
		a, b = restA, restB
	}
}

func (n MetricName) String() string {
	return strings.ReplaceAll(n.path, segmentSeparator, NamespaceSeparator)
}
