package logger

import (
	"fmt"
	"reflect"
	"strings"
)

// DefaultMessage is used when no string argument is given to a log call.
const DefaultMessage = "Log event"

// normalizeArgs turns flexible log-call arguments into a canonical
// (message, metadata) pair.
//
// The first string encountered becomes the message; later strings are
// appended to it. Every map argument with string keys merges into metadata
// in argument order. When a key appears in more than one merged map, no
// value is overwritten: the first occurrence is renamed to key_0 and later
// ones become key_1, key_2, ... in encounter order. A first argument that is
// neither a string nor a map (a number, a slice) is coerced to its string
// form and used as the message.
//
// childContext is applied last and is a plain replacement merge: a child key
// wins over a runtime key of the same name without index suffixing.
func normalizeArgs(args []interface{}, childContext map[string]interface{}) (string, map[string]interface{}) {
	var messageParts []string
	metadata := make(map[string]interface{})
	collisions := make(map[string]int)

	for _, arg := range args {
		if arg == nil {
			continue
		}
		switch v := arg.(type) {
		case string:
			messageParts = append(messageParts, v)
		case map[string]interface{}:
			mergeWithSuffixes(metadata, collisions, v)
		case error:
			messageParts = append(messageParts, v.Error())
		default:
			if m, ok := asStringKeyedMap(v); ok {
				mergeWithSuffixes(metadata, collisions, m)
				continue
			}
			// Numbers, slices and other non-object values become message
			// text, matching the coercion rule for the first argument.
			messageParts = append(messageParts, fmt.Sprint(v))
		}
	}

	message := strings.Join(messageParts, " ")
	if message == "" {
		message = DefaultMessage
	}

	for k, v := range childContext {
		metadata[k] = v
	}
	return message, metadata
}

// mergeWithSuffixes merges one metadata object, applying the collision
// policy: a key's first occurrence keeps its name until a collision appears,
// at which point it is renamed key_0 and the newcomer becomes key_1, then
// key_2 and so on.
func mergeWithSuffixes(metadata map[string]interface{}, collisions map[string]int, obj map[string]interface{}) {
	for k, v := range obj {
		seen := collisions[k]
		if seen == 0 {
			metadata[k] = v
			collisions[k] = 1
			continue
		}
		if seen == 1 {
			metadata[k+"_0"] = metadata[k]
			delete(metadata, k)
		}
		metadata[fmt.Sprintf("%s_%d", k, seen)] = v
		collisions[k] = seen + 1
	}
}

// asStringKeyedMap converts any map with string keys (map[string]string,
// map[string]int, ...) into the canonical metadata shape. Arrays, slices and
// nil are not objects and are rejected.
func asStringKeyedMap(v interface{}) (map[string]interface{}, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
