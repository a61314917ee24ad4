package restclient

import (
	"fmt"
	"io"
	"net/http"
	"sort"

	"gopkg.in/yaml.v3"

	rcerrors "github.com/starius/restclient/errors"
)

// yamlMethod is one entry of a YAML method table:
//
//	GetBook:
//	  get: /book/{id}
//	  params:
//	    - path: id
//	UpdateBook:
//	  put: /book/{id}
//	  content_type: application/json
//	  params:
//	    - path: id
//	    - body:
type yamlMethod struct {
	Get         *string             `yaml:"get,omitempty"`
	Post        *string             `yaml:"post,omitempty"`
	Put         *string             `yaml:"put,omitempty"`
	Delete      *string             `yaml:"delete,omitempty"`
	ContentType string              `yaml:"content_type,omitempty"`
	Params      []map[string]string `yaml:"params,omitempty"`
}

var knownRoles = map[Role]bool{
	RoleQuery:     true,
	RolePath:      true,
	RoleHeader:    true,
	RoleBody:      true,
	RoleField:     true,
	RolePart:      true,
	RoleQueryMap:  true,
	RoleFieldMap:  true,
	RoleHeaderMap: true,
}

// LoadMethods reads a method table from YAML. Methods are returned sorted
// by name. Verb conflicts are reported later, by NewClient.
func LoadMethods(r io.Reader) ([]Method, error) {
	var table map[string]yamlMethod
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&table); err != nil {
		return nil, rcerrors.Config("failed to parse method table: %v", err)
	}

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	methods := make([]Method, 0, len(table))
	for _, name := range names {
		ym := table[name]
		m := Method{Name: name}
		for _, v := range []struct {
			method string
			path   *string
		}{
			{http.MethodGet, ym.Get},
			{http.MethodPost, ym.Post},
			{http.MethodPut, ym.Put},
			{http.MethodDelete, ym.Delete},
		} {
			if v.path != nil {
				m.Verbs = append(m.Verbs, Verb{Method: v.method, Path: *v.path, ContentType: ym.ContentType})
			}
		}
		for i, p := range ym.Params {
			if len(p) != 1 {
				return nil, rcerrors.Config("method %s: parameter %d must have exactly one role, got %d", name, i, len(p))
			}
			for role, key := range p {
				if !knownRoles[Role(role)] {
					return nil, rcerrors.Config("method %s: parameter %d has unknown role %q", name, i, role)
				}
				m.Params = append(m.Params, Param{Role: Role(role), Key: key})
			}
		}
		methods = append(methods, m)
	}
	return methods, nil
}

// WriteMethods writes the method table in the format read by LoadMethods.
func WriteMethods(w io.Writer, methods []Method) error {
	table := make(map[string]yamlMethod, len(methods))
	for _, m := range methods {
		var ym yamlMethod
		for _, v := range m.Verbs {
			path := v.Path
			switch v.Method {
			case http.MethodGet:
				ym.Get = &path
			case http.MethodPost:
				ym.Post = &path
			case http.MethodPut:
				ym.Put = &path
			case http.MethodDelete:
				ym.Delete = &path
			default:
				return fmt.Errorf("method %s: unsupported verb %q", m.Name, v.Method)
			}
			if v.ContentType != "" {
				ym.ContentType = v.ContentType
			}
		}
		for _, p := range m.Params {
			ym.Params = append(ym.Params, map[string]string{string(p.Role): p.Key})
		}
		table[m.Name] = ym
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(table); err != nil {
		return err
	}
	return encoder.Close()
}
