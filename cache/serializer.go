package cache

import (
	"encoding/json"
	"strings"
)

// Stored payloads are tagged at write time so reads never have to probe the
// value's shape at runtime: "r:" prefixes raw text, "j:" prefixes a JSON
// encoding of a structured value. Untagged payloads (written by anything
// else sharing the keyspace) are handed back as raw text.
const (
	tagRaw  = "r:"
	tagJSON = "j:"
)

// encode tags and serializes a value for storage.
func encode(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return tagRaw + v, nil
	case []byte:
		return tagRaw + string(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", ErrSerialize.Wrap(err)
		}
		return tagJSON + string(data), nil
	}
}

// decode interprets a stored payload according to its tag. It never fails:
// when the payload cannot be decoded into dest, the stored text is returned
// as a fallback and ok is false.
func decode(payload string, dest interface{}) (raw string, ok bool) {
	switch {
	case strings.HasPrefix(payload, tagJSON):
		body := payload[len(tagJSON):]
		if err := json.Unmarshal([]byte(body), dest); err != nil {
			return body, false
		}
		return "", true

	case strings.HasPrefix(payload, tagRaw):
		body := payload[len(tagRaw):]
		if s, isString := dest.(*string); isString {
			*s = body
			return "", true
		}
		return body, false

	default:
		// untagged legacy payload
		if s, isString := dest.(*string); isString {
			*s = payload
			return "", true
		}
		return payload, false
	}
}
