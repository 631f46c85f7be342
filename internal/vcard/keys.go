package vcard

import (
	"regexp"
	"strings"
)

// validKey is the permitted property key grammar: a known property name,
// optionally followed by ;param=value[,value...] groups.
var validKey = regexp.MustCompile(`^(BEGIN|END|SOURCE|KIND|XML|FN|N|NICKNAME|PHOTO|BDAY|ANNIVERSARY|GENDER|ADR|TEL|EMAIL|IMPP|LANG|TZ|GEO|TITLE|ROLE|LOGO|ORG|MEMBER|RELATED|CATEGORIES|NOTE|PRODID|REV|SOUND|UID|CLIENTPIDMAP|URL|VERSION|KEY|FBURL|CALADRURI|CALURI)(;(.*=.*,?)*)?$`)

// ValidKey reports whether key matches the property key grammar.
func ValidKey(key string) bool {
	return validKey.MatchString(key)
}

// BareKey strips any ;PARAM suffix from key.
func BareKey(key string) string {
	if i := strings.IndexByte(key, ';'); i >= 0 {
		return key[:i]
	}
	return key
}
