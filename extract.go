package restclient

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"

	"github.com/gorilla/schema"
)

var schemaEncoder = schema.NewEncoder()

// isNil reports whether the argument carries no value at all.
// Such arguments are left out of the request.
func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func toString(obj interface{}) (string, error) {
	if marshaler, ok := obj.(encoding.TextMarshaler); ok {
		valueBytes, err := marshaler.MarshalText()
		if err != nil {
			return "", err
		}
		return string(valueBytes), nil
	}
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "", nil
		}
		return toString(v.Elem().Interface())
	}
	return fmt.Sprintf("%v", obj), nil
}

// extractStrings collects key -> value for every parameter with the role.
// A later parameter with the same key overwrites the earlier one.
func extractStrings(params []Param, args []reflect.Value, role Role) (map[string]string, error) {
	result := make(map[string]string)
	for i, p := range params {
		if p.Role != role || isNil(args[i]) {
			continue
		}
		value, err := toString(args[i].Interface())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s parameter %q: %w", role, p.Key, err)
		}
		result[p.Key] = value
	}
	return result, nil
}

// extractValues is extractStrings for query and form parameters: plain
// role values and the keys expanded from the matching map role are merged
// in declaration order.
func extractValues(params []Param, args []reflect.Value, role, mapRole Role) (url.Values, error) {
	result := make(url.Values)
	for i, p := range params {
		if isNil(args[i]) {
			continue
		}
		switch p.Role {
		case role:
			value, err := toString(args[i].Interface())
			if err != nil {
				return nil, fmt.Errorf("failed to marshal %s parameter %q: %w", role, p.Key, err)
			}
			result.Set(p.Key, value)
		case mapRole:
			expanded, err := expandMap(args[i])
			if err != nil {
				return nil, fmt.Errorf("failed to expand %s parameter %d: %w", mapRole, i, err)
			}
			for k, vs := range expanded {
				result[k] = vs
			}
		}
	}
	return result, nil
}

// extractHeaders returns explicit header parameters, including expanded
// headermap arguments.
func extractHeaders(params []Param, args []reflect.Value) (map[string]string, error) {
	headers, err := extractValues(params, args, RoleHeader, RoleHeaderMap)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string, len(headers))
	for k := range headers {
		result[k] = headers.Get(k)
	}
	return result, nil
}

// extractParts returns multipart entries keyed by part name.
func extractParts(params []Param, args []reflect.Value) map[string]Part {
	result := make(map[string]Part)
	for i, p := range params {
		if p.Role != RolePart || isNil(args[i]) {
			continue
		}
		result[p.Key] = args[i].Interface().(Part)
	}
	return result
}

// extractBody returns the argument of the body parameter, if any.
// All body parameters share the empty key, so the last declared one wins.
func extractBody(params []Param, args []reflect.Value) (interface{}, bool) {
	bodies := make(map[string]interface{}, 1)
	for i, p := range params {
		if p.Role != RoleBody || isNil(args[i]) {
			continue
		}
		bodies[""] = args[i].Interface()
	}
	body, has := bodies[""]
	return body, has
}

// expandMap turns a struct or a map argument of a map role into values.
func expandMap(v reflect.Value) (url.Values, error) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	result := make(url.Values)
	switch v.Kind() {
	case reflect.Struct:
		if err := schemaEncoder.Encode(v.Interface(), result); err != nil {
			return nil, err
		}
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map key must be string, got %s", v.Type().Key())
		}
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			elem := iter.Value()
			if elem.Kind() == reflect.Slice && elem.Type().Elem().Kind() == reflect.String {
				for j := 0; j < elem.Len(); j++ {
					result.Add(key, elem.Index(j).String())
				}
				continue
			}
			if isNil(elem) {
				continue
			}
			value, err := toString(elem.Interface())
			if err != nil {
				return nil, fmt.Errorf("failed to marshal value for key %q: %w", key, err)
			}
			result.Set(key, value)
		}
	default:
		return nil, fmt.Errorf("want struct or map, got %s", v.Kind())
	}
	return result, nil
}
