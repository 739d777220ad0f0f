package config

import (
	"strconv"
	"strings"
)

// Configuration keys delivered to the indicator controller. Values are
// integer strings: switches use "0"/"1", the unit type its numeric
// value.
const (
	KeyEnabled  = "networktraffic.enabled"
	KeyAutoHide = "networktraffic.autohide"
	KeyUnitType = "networktraffic.unittype"
)

// KeyValue is a single changed-key notification.
type KeyValue struct {
	Key   string
	Value string
}

// Pairs encodes every setting as a key/value notification, in a stable
// order. Used to replay the full configuration at startup.
func (s Settings) Pairs() []KeyValue {
	return []KeyValue{
		{KeyEnabled, encodeSwitch(s.Enabled)},
		{KeyAutoHide, encodeSwitch(s.AutoHide)},
		{KeyUnitType, strconv.Itoa(s.UnitType)},
	}
}

// Diff returns the key/value notifications for settings that changed
// between old and updated.
func Diff(old, updated Settings) []KeyValue {
	var changed []KeyValue
	if old.Enabled != updated.Enabled {
		changed = append(changed, KeyValue{KeyEnabled, encodeSwitch(updated.Enabled)})
	}
	if old.AutoHide != updated.AutoHide {
		changed = append(changed, KeyValue{KeyAutoHide, encodeSwitch(updated.AutoHide)})
	}
	if old.UnitType != updated.UnitType {
		changed = append(changed, KeyValue{KeyUnitType, strconv.Itoa(updated.UnitType)})
	}
	return changed
}

func encodeSwitch(on bool) string {
	if on {
		return "1"
	}
	return "0"
}

// ParseIntegerSwitch interprets an integer-switch value: any nonzero
// integer is true. Unparseable values fall back to def.
func ParseIntegerSwitch(value string, def bool) bool {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return n != 0
}

// ParseInteger parses an integer value, falling back to def on garbage.
func ParseInteger(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return n
}
