package datagen

import "strings"

// Kind is the closed set of synthetic value types. Wire tags are parsed once
// into a Kind so generation dispatches through a table instead of repeated
// string comparison.
type Kind int

const (
	KindUnknown Kind = iota
	KindGUID
	KindObjectID
	KindDate
	KindDateTime
	KindDateTimeISO
	KindUnixTimestamp
	KindUnixTimestampString
	KindRandomInt
	KindRandomIntString
	KindRandomFloat
	KindRandomList
	KindRandomBool
	KindRandomString
	KindConstantString
	KindConstantInt
	KindConcat
	KindProvider
)

var kindNames = map[string]Kind{
	"guid":                     KindGUID,
	"objectid":                 KindObjectID,
	"date":                     KindDate,
	"datetime":                 KindDateTime,
	"datetimeiso":              KindDateTimeISO,
	"unix_timestamp":           KindUnixTimestamp,
	"unix_timestamp_as_string": KindUnixTimestampString,
	"random_int":               KindRandomInt,
	"random_int_as_string":     KindRandomIntString,
	"random_float":             KindRandomFloat,
	"random_list":              KindRandomList,
	"random_bool":              KindRandomBool,
	"random_string":            KindRandomString,
	"constant_string":          KindConstantString,
	"constant_int":             KindConstantInt,
	"concat":                   KindConcat,
}

// ParseKind maps a wire type tag to its Kind. Provider-backed tags
// ("faker.<method>[.<method>...]") additionally return the method chain.
// Anything unrecognized yields KindUnknown.
func ParseKind(tag string) (Kind, []string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if k, ok := kindNames[tag]; ok {
		return k, nil
	}
	if rest, ok := strings.CutPrefix(tag, "faker."); ok && rest != "" {
		return KindProvider, strings.Split(rest, ".")
	}
	return KindUnknown, nil
}
