package vcard

import (
	"fmt"
	"strings"
)

// Serialize renders prepared entities as vCard text targeting v. Each entity
// is followed by a blank line so the output splits back into the same blocks.
func Serialize(entities []*Properties, v Version) string {
	var sb strings.Builder
	for _, props := range entities {
		sb.WriteString("BEGIN:VCARD\n")
		sb.WriteString("VERSION:" + string(v) + "\n")
		for _, p := range props.Pairs() {
			sb.WriteString(p.Key)
			sb.WriteByte(':')
			sb.WriteString(p.Value)
			sb.WriteByte('\n')
		}
		sb.WriteString("END:VCARD\n")
		sb.WriteByte('\n')
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// ExportAll prepares every entity of c for v and serializes the result. Any
// entity failing preparation fails the whole export.
func ExportAll(c *Collection, v Version) (string, error) {
	if _, ok := versionRules[v]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVersion, string(v))
	}
	prepared := make([]*Properties, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		props, err := Prepare(c.Entities[i].Properties, v)
		if err != nil {
			return "", &TransformError{Index: c.Entities[i].Index, Version: v, Err: err}
		}
		prepared = append(prepared, props)
	}
	return Serialize(prepared, v), nil
}
