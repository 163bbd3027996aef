package controls

import (
	"fmt"
	"strings"
)

// Key is a movement key of the viewer
type Key string

const (
	KeyForward  Key = "w"
	KeyLeft     Key = "a"
	KeyBackward Key = "s"
	KeyRight    Key = "d"
	KeyUp       Key = "space"
	KeyDown     Key = "shift"
)

var allKeys = []Key{KeyForward, KeyLeft, KeyBackward, KeyRight, KeyUp, KeyDown}

// ParseKey parses a key name case-insensitively
func ParseKey(s string) (Key, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, key := range allKeys {
		if string(key) == name {
			return key, nil
		}
	}
	return "", fmt.Errorf("unknown key %q (valid: w, a, s, d, space, shift)", s)
}

// ParseKeys parses a comma-separated list of key names. An empty string
// yields no keys.
func ParseKeys(s string) ([]Key, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var keys []Key
	for _, part := range strings.Split(s, ",") {
		key, err := ParseKey(part)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
