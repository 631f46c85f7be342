package vcard

import (
	"fmt"
	"strings"
)

// Version is a vCard format revision token.
type Version string

const (
	Version21 Version = "2.1"
	Version30 Version = "3.0"
	Version40 Version = "4.0"
)

// ContentType is the MIME type used for exported files.
const ContentType = "text/vcard"

// Versions lists the export targets in ascending order.
var Versions = []Version{Version21, Version30, Version40}

// ParseVersion returns the Version for s, or ErrUnknownVersion.
func ParseVersion(s string) (Version, error) {
	v := Version(strings.TrimSpace(s))
	if _, ok := versionRules[v]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVersion, s)
	}
	return v, nil
}

// Filename is the download name for an export targeting v.
func Filename(v Version) string {
	return "edited_vcard_" + string(v) + ".vcf"
}

func (v Version) String() string { return string(v) }
