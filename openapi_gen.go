package restclient

import (
	"encoding"
	"reflect"
	"strings"
	"time"

	spec "github.com/getkin/kin-openapi/openapi3"

	rcerrors "github.com/starius/restclient/errors"
)

var (
	timeType          = reflect.TypeOf(time.Time{})
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// OpenAPI describes every bound method of the client as an OpenAPI 3
// document. Methods must be bound first: argument and result types come
// from the function fields.
func (c *Client) OpenAPI(title, version string) (*spec.T, error) {
	descriptors := c.boundDescriptors()
	if len(descriptors) == 0 {
		return nil, rcerrors.Config("no bound methods, call Bind first")
	}

	swagger := &spec.T{
		OpenAPI: "3.0.0",
		Info: &spec.Info{
			Title:   title,
			Version: version,
		},
		Paths: spec.Paths{},
	}

	for _, desc := range descriptors {
		op := spec.NewOperation()
		op.OperationID = desc.name

		offset := 0
		if desc.hasContext {
			offset = 1
		}
		formFields := spec.NewObjectSchema()
		hasForm := false
		for i, p := range desc.params {
			argType := desc.funcType.In(i + offset)
			var param *spec.Parameter
			switch p.Role {
			case RolePath:
				param = spec.NewPathParameter(p.Key)
			case RoleQuery:
				param = spec.NewQueryParameter(p.Key)
			case RoleHeader:
				param = spec.NewHeaderParameter(p.Key)
			case RoleField:
				formFields.WithProperty(p.Key, schemaForType(argType, nil))
				hasForm = true
			case RolePart:
				formFields.WithProperty(p.Key, spec.NewStringSchema().WithFormat("binary"))
				hasForm = true
			case RoleBody:
				op.RequestBody = &spec.RequestBodyRef{
					Value: spec.NewRequestBody().WithContent(spec.NewContentWithSchema(schemaForType(argType, nil), []string{desc.contentType})),
				}
			}
			if param != nil {
				param.WithSchema(schemaForType(argType, nil))
				op.Parameters = append(op.Parameters, &spec.ParameterRef{Value: param})
			}
		}
		if hasForm {
			op.RequestBody = &spec.RequestBodyRef{
				Value: spec.NewRequestBody().WithContent(spec.NewContentWithSchema(formFields, []string{desc.contentType})),
			}
		}

		op.Responses = spec.NewResponses()
		resp := spec.NewResponse().WithDescription("success")
		if desc.resultType != nil {
			resp.WithContent(spec.NewContentWithJSONSchema(schemaForType(desc.resultType, nil)))
		}
		op.AddResponse(200, resp)

		pathItem := swagger.Paths.Find(desc.path)
		if pathItem == nil {
			pathItem = &spec.PathItem{}
			swagger.Paths[desc.path] = pathItem
		}
		pathItem.SetOperation(desc.verb, op)
	}

	return swagger, nil
}

// schemaForType renders a Go type as JSON schema. Recursive types are cut
// at the first repetition.
func schemaForType(t reflect.Type, visiting map[reflect.Type]bool) *spec.Schema {
	if visiting == nil {
		visiting = make(map[reflect.Type]bool)
	}
	if t.Kind() == reflect.Ptr {
		schema := schemaForType(t.Elem(), visiting)
		schema.Nullable = true
		return schema
	}
	if t == timeType {
		return spec.NewDateTimeSchema()
	}
	if t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType) {
		return spec.NewStringSchema()
	}

	switch t.Kind() {
	case reflect.Bool:
		return spec.NewBoolSchema()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return spec.NewIntegerSchema()
	case reflect.Float32, reflect.Float64:
		return spec.NewFloat64Schema()
	case reflect.String:
		return spec.NewStringSchema()
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return spec.NewBytesSchema()
		}
		return spec.NewArraySchema().WithItems(schemaForType(t.Elem(), visiting))
	case reflect.Map:
		return spec.NewObjectSchema()
	case reflect.Struct:
		schema := spec.NewObjectSchema()
		if visiting[t] {
			return schema
		}
		visiting[t] = true
		defer delete(visiting, t)
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.PkgPath != "" {
				continue
			}
			jsonTag := field.Tag.Get("json")
			if jsonTag == "-" {
				continue
			}
			name := strings.SplitN(jsonTag, ",", 2)[0]
			if name == "" {
				name = field.Name
			}
			schema.WithProperty(name, schemaForType(field.Type, visiting))
		}
		return schema
	default:
		return &spec.Schema{}
	}
}
