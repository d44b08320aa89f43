package graph

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hmans/posts/internal/graph/model"
	"github.com/hmans/posts/internal/post"
)

//go:embed schema.graphqls
var sourceData string

var parsedSchema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphqls", Input: sourceData, BuiltIn: false})

// NewExecutableSchema creates an ExecutableSchema from the ResolverRoot interface.
func NewExecutableSchema(cfg Config) graphql.ExecutableSchema {
	return &executableSchema{
		schema:    parsedSchema,
		resolvers: cfg.Resolvers,
	}
}

type Config struct {
	Resolvers ResolverRoot
}

type ResolverRoot interface {
	Mutation() MutationResolver
	Query() QueryResolver
	Subscription() SubscriptionResolver
}

type MutationResolver interface {
	CreatePost(ctx context.Context, input model.PostInput) (*post.Post, error)
	UpdatePost(ctx context.Context, id string, input model.PostInput) (*post.Post, error)
	DeletePost(ctx context.Context, id string) (*string, error)
}

type QueryResolver interface {
	Posts(ctx context.Context) ([]*post.Post, error)
	Post(ctx context.Context, id string) (*post.Post, error)
}

type SubscriptionResolver interface {
	PostChanged(ctx context.Context) (<-chan *model.PostEvent, error)
}

type executableSchema struct {
	schema    *ast.Schema
	resolvers ResolverRoot
}

func (e *executableSchema) Schema() *ast.Schema {
	return e.schema
}

func (e *executableSchema) Complexity(typeName, field string, childComplexity int, rawArgs map[string]any) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)
	ec := &executionContext{op: opCtx, es: e}

	switch opCtx.Operation.Operation {
	case ast.Query, ast.Mutation:
		first := true
		return func(ctx context.Context) *graphql.Response {
			if !first {
				return nil
			}
			first = false

			var data graphql.Marshaler
			if opCtx.Operation.Operation == ast.Query {
				data = ec._Query(ctx, opCtx.Operation.SelectionSet)
			} else {
				data = ec._Mutation(ctx, opCtx.Operation.SelectionSet)
			}

			var buf bytes.Buffer
			data.MarshalGQL(&buf)
			return &graphql.Response{Data: buf.Bytes()}
		}

	case ast.Subscription:
		next := ec._Subscription(ctx, opCtx.Operation.SelectionSet)
		if next == nil {
			// The error has been recorded on ctx already.
			return graphql.OneShot(&graphql.Response{Data: []byte("null")})
		}
		return func(ctx context.Context) *graphql.Response {
			data := next(ctx)
			if data == nil {
				return nil
			}

			var buf bytes.Buffer
			data.MarshalGQL(&buf)
			return &graphql.Response{Data: buf.Bytes()}
		}

	default:
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}
}

type executionContext struct {
	op *graphql.OperationContext
	es *executableSchema
}

// fieldContext pushes a FieldContext for field and returns its coerced
// arguments.
func (ec *executionContext) fieldContext(ctx context.Context, object string, field graphql.CollectedField, isResolver bool) (context.Context, map[string]any) {
	var args map[string]any
	if field.Definition != nil {
		args = field.ArgumentMap(ec.op.Variables)
	}
	fc := &graphql.FieldContext{
		Object:     object,
		Field:      field,
		Args:       args,
		IsMethod:   isResolver,
		IsResolver: isResolver,
	}
	return graphql.WithFieldContext(ctx, fc), args
}

// resolve runs fn through the operation's field middleware and turns panics
// into errors.
func (ec *executionContext) resolve(ctx context.Context, fn graphql.Resolver) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ec.op.RecoverFunc != nil {
				err = ec.op.Recover(ctx, r)
			} else {
				err = fmt.Errorf("internal system error: %v", r)
			}
			res = nil
		}
	}()

	if ec.op.ResolverMiddleware != nil {
		return ec.op.ResolverMiddleware(ctx, fn)
	}
	return fn(ctx)
}

// argID reads an ID argument, which clients may send as a string or an int.
func argID(args map[string]any, name string) (string, error) {
	switch v := args[name].(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case json.Number:
		return v.String(), nil
	case nil:
		return "", fmt.Errorf("argument %s is required", name)
	default:
		return "", fmt.Errorf("argument %s: %T is not a valid ID", name, v)
	}
}

// region    ************************** Query **************************

var queryImplementors = []string{"Query"}

func (ec *executionContext) _Query(ctx context.Context, sel ast.SelectionSet) graphql.Marshaler {
	fields := graphql.CollectFields(ec.op, sel, queryImplementors)
	out := graphql.NewFieldSet(fields)

	for i, field := range fields {
		switch field.Name {
		case "__typename":
			out.Values[i] = graphql.MarshalString("Query")
		case "posts":
			out.Values[i] = ec._Query_posts(ctx, field)
		case "post":
			out.Values[i] = ec._Query_post(ctx, field)
		case "__schema":
			out.Values[i] = ec._Query___schema(ctx, field)
		case "__type":
			out.Values[i] = ec._Query___type(ctx, field)
		default:
			panic("unknown field " + strconv.Quote(field.Name))
		}
	}
	return out
}

func (ec *executionContext) _Query_posts(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	ctx, _ = ec.fieldContext(ctx, "Query", field, true)

	res, err := ec.resolve(ctx, func(ctx context.Context) (any, error) {
		return ec.es.resolvers.Query().Posts(ctx)
	})
	if err != nil {
		graphql.AddError(ctx, err)
		return graphql.Null
	}

	posts, _ := res.([]*post.Post)
	if posts == nil {
		return graphql.Null
	}
	return ec.marshalPostList(ctx, field.Selections, posts)
}

func (ec *executionContext) _Query_post(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	ctx, args := ec.fieldContext(ctx, "Query", field, true)

	id, err := argID(args, "id")
	if err != nil {
		graphql.AddError(ctx, err)
		return graphql.Null
	}

	res, err := ec.resolve(ctx, func(ctx context.Context) (any, error) {
		return ec.es.resolvers.Query().Post(ctx, id)
	})
	if err != nil {
		graphql.AddError(ctx, err)
		return graphql.Null
	}

	p, _ := res.(*post.Post)
	return ec._Post(ctx, field.Selections, p)
}

// endregion ************************** Query **************************

// region    ************************** Mutation **************************

var mutationImplementors = []string{"Mutation"}

// _Mutation resolves the root fields one after another, in document order.
func (ec *executionContext) _Mutation(ctx context.Context, sel ast.SelectionSet) graphql.Marshaler {
	fields := graphql.CollectFields(ec.op, sel, mutationImplementors)
	out := graphql.NewFieldSet(fields)

	for i, field := range fields {
		switch field.Name {
		case "__typename":
			out.Values[i] = graphql.MarshalString("Mutation")
		case "createPost":
			out.Values[i] = ec._Mutation_createPost(ctx, field)
		case "updatePost":
			out.Values[i] = ec._Mutation_updatePost(ctx, field)
		case "deletePost":
			out.Values[i] = ec._Mutation_deletePost(ctx, field)
		default:
			panic("unknown field " + strconv.Quote(field.Name))
		}
	}
	return out
}

func (ec *executionContext) _Mutation_createPost(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	ctx, args := ec.fieldContext(ctx, "Mutation", field, true)

	input, err := model.UnmarshalPostInput(args["input"])
	if err != nil {
		graphql.AddError(ctx, err)
		return graphql.Null
	}

	res, err := ec.resolve(ctx, func(ctx context.Context) (any, error) {
		return ec.es.resolvers.Mutation().CreatePost(ctx, input)
	})
	if err != nil {
		graphql.AddError(ctx, err)
		return graphql.Null
	}

	p, _ := res.(*post.Post)
	return ec._Post(ctx, field.Selections, p)
}

func (ec *executionContext) _Mutation_updatePost(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	ctx, args := ec.fieldContext(ctx, "Mutation", field, true)

	id, err := argID(args, "id")
	if err != nil {
		graphql.AddError(ctx, err)
		return graphql.Null
	}
	input, err := model.UnmarshalPostInput(args["input"])
	if err != nil {
		graphql.AddError(ctx, err)
		return graphql.Null
	}

	res, err := ec.resolve(ctx, func(ctx context.Context) (any, error) {
		return ec.es.resolvers.Mutation().UpdatePost(ctx, id, input)
	})
	if err != nil {
		graphql.AddError(ctx, err)
		return graphql.Null
	}

	p, _ := res.(*post.Post)
	return ec._Post(ctx, field.Selections, p)
}

func (ec *executionContext) _Mutation_deletePost(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	ctx, args := ec.fieldContext(ctx, "Mutation", field, true)

	id, err := argID(args, "id")
	if err != nil {
		graphql.AddError(ctx, err)
		return graphql.Null
	}

	res, err := ec.resolve(ctx, func(ctx context.Context) (any, error) {
		return ec.es.resolvers.Mutation().DeletePost(ctx, id)
	})
	if err != nil {
		graphql.AddError(ctx, err)
		return graphql.Null
	}

	deleted, _ := res.(*string)
	if deleted == nil {
		return graphql.Null
	}
	return graphql.MarshalID(*deleted)
}

// endregion ************************** Mutation **************************

// region    ************************** Subscription **************************

var subscriptionImplementors = []string{"Subscription"}

func (ec *executionContext) _Subscription(ctx context.Context, sel ast.SelectionSet) func(ctx context.Context) graphql.Marshaler {
	fields := graphql.CollectFields(ec.op, sel, subscriptionImplementors)
	if len(fields) != 1 {
		graphql.AddErrorf(ctx, "must subscribe to exactly one stream")
		return nil
	}

	switch fields[0].Name {
	case "postChanged":
		return ec._Subscription_postChanged(ctx, fields[0])
	default:
		panic("unknown field " + strconv.Quote(fields[0].Name))
	}
}

func (ec *executionContext) _Subscription_postChanged(ctx context.Context, field graphql.CollectedField) func(ctx context.Context) graphql.Marshaler {
	ctx, _ = ec.fieldContext(ctx, "Subscription", field, true)

	res, err := ec.resolve(ctx, func(ctx context.Context) (any, error) {
		return ec.es.resolvers.Subscription().PostChanged(ctx)
	})
	if err != nil {
		graphql.AddError(ctx, err)
		return nil
	}
	events, _ := res.(<-chan *model.PostEvent)
	if events == nil {
		graphql.AddErrorf(ctx, "postChanged returned no stream")
		return nil
	}

	return func(ctx context.Context) graphql.Marshaler {
		select {
		case ev, ok := <-events:
			if !ok || ev == nil {
				return nil
			}
			ctx, _ := ec.fieldContext(ctx, "Subscription", field, true)
			return graphql.WriterFunc(func(w io.Writer) {
				w.Write([]byte{'{'})
				graphql.MarshalString(field.Alias).MarshalGQL(w)
				w.Write([]byte{':'})
				ec._PostEvent(ctx, field.Selections, ev).MarshalGQL(w)
				w.Write([]byte{'}'})
			})
		case <-ctx.Done():
			return nil
		}
	}
}

// endregion ************************** Subscription **************************

// region    ************************** Objects **************************

var postImplementors = []string{"Post"}

func (ec *executionContext) _Post(ctx context.Context, sel ast.SelectionSet, obj *post.Post) graphql.Marshaler {
	if obj == nil {
		return graphql.Null
	}

	fields := graphql.CollectFields(ec.op, sel, postImplementors)
	out := graphql.NewFieldSet(fields)

	for i, field := range fields {
		switch field.Name {
		case "__typename":
			out.Values[i] = graphql.MarshalString("Post")
		case "id":
			out.Values[i] = graphql.MarshalID(obj.ID)
		case "title":
			out.Values[i] = graphql.MarshalString(obj.Title)
		case "content":
			out.Values[i] = graphql.MarshalString(obj.Content)
		case "createDate":
			if obj.CreateDate == nil {
				out.Values[i] = graphql.Null
			} else {
				out.Values[i] = graphql.MarshalString(obj.FormatCreateDate())
			}
		default:
			panic("unknown field " + strconv.Quote(field.Name))
		}
	}
	return out
}

func (ec *executionContext) marshalPostList(ctx context.Context, sel ast.SelectionSet, v []*post.Post) graphql.Marshaler {
	ret := make(graphql.Array, len(v))
	for i := range v {
		fc := &graphql.FieldContext{
			Index:  &i,
			Result: v[i],
		}
		ret[i] = ec._Post(graphql.WithFieldContext(ctx, fc), sel, v[i])
	}
	return ret
}

var postEventImplementors = []string{"PostEvent"}

func (ec *executionContext) _PostEvent(ctx context.Context, sel ast.SelectionSet, obj *model.PostEvent) graphql.Marshaler {
	fields := graphql.CollectFields(ec.op, sel, postEventImplementors)
	out := graphql.NewFieldSet(fields)

	for i, field := range fields {
		switch field.Name {
		case "__typename":
			out.Values[i] = graphql.MarshalString("PostEvent")
		case "type":
			out.Values[i] = obj.Type
		case "id":
			out.Values[i] = graphql.MarshalID(obj.ID)
		case "post":
			out.Values[i] = ec._Post(ctx, field.Selections, obj.Post)
		default:
			panic("unknown field " + strconv.Quote(field.Name))
		}
	}
	return out
}

// endregion ************************** Objects **************************
