package vcard

import (
	"fmt"
	"strings"
)

type versionRule struct {
	repair func(*Properties) error
	deny   map[string]struct{}
}

var versionRules = map[Version]versionRule{
	Version21: {
		repair: repairNameFromFormattedName,
		deny: keySet("ANNIVERSARY", "CALADRURI", "CALURI", "CATEGORIES", "CLASS", "CLIENTPIDMAP",
			"FBURL", "GENDER", "IMPP", "KIND", "MEMBER", "NAME", "NICKNAME", "PRODID", "PROFILE",
			"RELATED", "SORT-STRING", "SOURCE", "XML"),
	},
	Version30: {
		deny: keySet("ANNIVERSARY", "CATEGORIES", "KIND", "LANG", "MEMBER", "RELATED", "XML"),
	},
	// TODO: remap LABEL into ADR parameters and SORT-STRING into N;SORT-AS for 4.0.
	Version40: {
		deny: keySet("AGENT", "CLASS", "MAILER", "NAME", "PROFILE"),
	},
}

func keySet(keys ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// 2.1 requires N; fall back to FN.
func repairNameFromFormattedName(p *Properties) error {
	if n, _ := p.Get("N"); n != "" {
		return nil
	}
	fn, _ := p.Get("FN")
	if fn == "" {
		return fmt.Errorf("%w: N and FN are both empty", ErrMissingMandatoryField)
	}
	p.Set("N", fn)
	return nil
}

// Prepare returns a copy of props repaired and pruned for version v. The input
// is never modified.
func Prepare(props *Properties, v Version) (*Properties, error) {
	rule, ok := versionRules[v]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, string(v))
	}

	out := props.Clone()
	if rule.repair != nil {
		if err := rule.repair(out); err != nil {
			return nil, err
		}
	}
	for _, key := range out.Keys() {
		if _, denied := rule.deny[strings.ToUpper(BareKey(key))]; denied {
			out.Delete(key)
		}
	}
	return out, nil
}
