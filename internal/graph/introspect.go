package graph

import (
	"context"
	"reflect"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/introspection"
	"github.com/vektah/gqlparser/v2/ast"
)

func (ec *executionContext) _Query___schema(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	ctx, _ = ec.fieldContext(ctx, "Query", field, false)
	if ec.op.DisableIntrospection {
		graphql.AddErrorf(ctx, "introspection disabled")
		return graphql.Null
	}

	schema := introspection.WrapSchema(ec.es.schema)
	return ec.marshalIntrospection(ctx, field.Selections, "__Schema", reflect.ValueOf(schema))
}

func (ec *executionContext) _Query___type(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	ctx, args := ec.fieldContext(ctx, "Query", field, false)
	if ec.op.DisableIntrospection {
		graphql.AddErrorf(ctx, "introspection disabled")
		return graphql.Null
	}

	name, _ := args["name"].(string)
	def := ec.es.schema.Types[name]
	if def == nil {
		return graphql.Null
	}

	t := introspection.WrapTypeFromDef(ec.es.schema, def)
	return ec.marshalIntrospection(ctx, field.Selections, "__Type", reflect.ValueOf(t))
}

// marshalIntrospection renders a value from the introspection package.
// Object fields are looked up as Go methods first (Fields, OfType, ...) and
// then as struct fields (Name, Args, ...); boolean method parameters receive
// the includeDeprecated argument.
func (ec *executionContext) marshalIntrospection(ctx context.Context, sel ast.SelectionSet, typeName string, v reflect.Value) graphql.Marshaler {
	for v.Kind() == reflect.Interface || (v.Kind() == reflect.Pointer && v.Elem().Kind() != reflect.Struct) {
		if v.IsNil() {
			return graphql.Null
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Invalid:
		return graphql.Null
	case reflect.String:
		return graphql.MarshalString(v.String())
	case reflect.Bool:
		return graphql.MarshalBoolean(v.Bool())
	case reflect.Slice:
		if v.IsNil() {
			return graphql.Null
		}
		arr := make(graphql.Array, v.Len())
		for i := range arr {
			arr[i] = ec.marshalIntrospection(ctx, sel, typeName, v.Index(i))
		}
		return arr
	case reflect.Struct:
		if v.CanAddr() {
			v = v.Addr()
		} else {
			p := reflect.New(v.Type())
			p.Elem().Set(v)
			v = p
		}
	case reflect.Pointer:
		if v.IsNil() {
			return graphql.Null
		}
	default:
		graphql.AddErrorf(ctx, "cannot marshal %s value for %s", v.Kind(), typeName)
		return graphql.Null
	}

	fields := graphql.CollectFields(ec.op, sel, []string{typeName})
	out := graphql.NewFieldSet(fields)

	for i, field := range fields {
		if field.Name == "__typename" {
			out.Values[i] = graphql.MarshalString(typeName)
			continue
		}

		fctx, args := ec.fieldContext(ctx, typeName, field, false)
		res, ok := introspectionField(v, field.Name, args)
		if !ok {
			graphql.AddErrorf(fctx, "%s.%s is not supported", typeName, field.Name)
			out.Values[i] = graphql.Null
			continue
		}

		fieldType := typeName
		if field.Definition != nil {
			fieldType = field.Definition.Type.Name()
		}
		out.Values[i] = ec.marshalIntrospection(fctx, field.Selections, fieldType, res)
	}
	return out
}

// introspectionField reads the GraphQL field name from the struct pointer obj.
func introspectionField(obj reflect.Value, name string, args map[string]any) (reflect.Value, bool) {
	goName := strings.ToUpper(name[:1]) + name[1:]

	if m := obj.MethodByName(goName); m.IsValid() {
		mt := m.Type()
		in := make([]reflect.Value, mt.NumIn())
		for i := range in {
			pt := mt.In(i)
			if pt.Kind() == reflect.Bool {
				b, _ := args["includeDeprecated"].(bool)
				in[i] = reflect.ValueOf(b).Convert(pt)
			} else {
				in[i] = reflect.Zero(pt)
			}
		}
		out := m.Call(in)
		if len(out) == 0 {
			return reflect.Value{}, false
		}
		return out[0], true
	}

	if f := obj.Elem().FieldByName(goName); f.IsValid() && f.CanInterface() {
		return f, true
	}
	return reflect.Value{}, false
}
