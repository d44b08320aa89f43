package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/executor"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"golang.org/x/term"

	"github.com/hmans/posts/internal/graph"
)

var (
	queryJSON       bool
	queryVariables  string
	queryOperation  string
	querySchemaOnly bool
)

var graphqlCmd = &cobra.Command{
	Use:     "graphql <query>",
	Aliases: []string{"query"},
	Short:   "Execute a GraphQL query or mutation",
	Long: `Execute a GraphQL query or mutation against the configured store.

The argument should be a valid GraphQL query or mutation string.

Examples:
  # List all posts
  posts graphql '{ posts { id title createDate } }'

  # Get a specific post
  posts graphql '{ post(id: "abc") { title content } }'

  # Create a post
  posts graphql 'mutation { createPost(input: {title: "Hi", content: "There"}) { id } }'

  # Use variables
  posts graphql -v '{"id": "abc"}' 'query GetPost($id: ID!) { post(id: $id) { title } }'

  # Read from stdin (useful for complex queries or escaping issues)
  cat query.graphql | posts graphql

  # Print the schema
  posts graphql --schema`,
	Args: func(cmd *cobra.Command, args []string) error {
		if querySchemaOnly {
			return nil
		}
		// Allow 0 args if stdin has data, or exactly 1 arg
		if len(args) > 1 {
			return fmt.Errorf("accepts at most 1 argument (the GraphQL query)")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if querySchemaOnly {
			_, err := fmt.Fprint(out, GetGraphQLSchema())
			return err
		}

		var query string
		if len(args) == 1 {
			query = args[0]
		} else {
			stdinQuery, err := readFromStdin(os.Stdin)
			if err != nil {
				return err
			}
			if stdinQuery == "" {
				return fmt.Errorf("no query provided (pass as argument or pipe to stdin)")
			}
			query = stdinQuery
		}

		var variables map[string]any
		if queryVariables != "" {
			if err := json.Unmarshal([]byte(queryVariables), &variables); err != nil {
				return fmt.Errorf("invalid variables JSON: %w", err)
			}
		}

		result, err := executeQuery(cmd.Context(), query, variables, queryOperation)
		if err != nil {
			return err
		}

		if queryJSON {
			fmt.Fprintln(out, string(result))
		} else {
			prettyPrint(out, result)
		}
		return nil
	},
}

// readFromStdin reads the query from f unless it is a terminal.
func readFromStdin(f *os.File) (string, error) {
	if term.IsTerminal(int(f.Fd())) {
		return "", nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// executeQuery runs a GraphQL operation against the resolver.
// On success, it returns just the data portion of the response.
// On error, it returns an error so the CLI can handle it appropriately.
func executeQuery(ctx context.Context, query string, variables map[string]any, operationName string) ([]byte, error) {
	exec := executor.New(graph.NewExecutableSchema(graph.Config{Resolvers: resolver}))
	exec.Use(extension.Introspection{})
	exec.SetErrorPresenter(graph.ErrorPresenter)

	ctx = graphql.StartOperationTrace(ctx)
	params := &graphql.RawParams{
		Query:         query,
		Variables:     variables,
		OperationName: operationName,
	}

	opCtx, errs := exec.CreateOperationContext(ctx, params)
	if errs != nil {
		return nil, formatGraphQLErrors(errs)
	}
	if opCtx.Operation.Operation == ast.Subscription {
		return nil, fmt.Errorf("subscriptions need a running server (posts serve)")
	}

	ctx = graphql.WithOperationContext(ctx, opCtx)
	handler, ctx := exec.DispatchOperation(ctx, opCtx)
	resp := handler(ctx)

	if len(resp.Errors) > 0 {
		return nil, formatGraphQLErrors(resp.Errors)
	}

	return resp.Data, nil
}

// formatGraphQLErrors formats GraphQL errors into a single error.
func formatGraphQLErrors(errs gqlerror.List) error {
	if len(errs) == 0 {
		return nil
	}
	msg := func(e *gqlerror.Error) string {
		if code, ok := e.Extensions["code"].(string); ok {
			return fmt.Sprintf("%s (%s)", e.Message, code)
		}
		return e.Message
	}
	if len(errs) == 1 {
		return fmt.Errorf("graphql: %s", msg(errs[0]))
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, msg(e))
	}
	return fmt.Errorf("graphql errors:\n  %s", strings.Join(msgs, "\n  "))
}

// prettyPrint outputs the JSON with colors and indentation.
func prettyPrint(w io.Writer, data []byte) {
	fmt.Fprintln(w, string(pretty.Color(pretty.Pretty(data), nil)))
}

// GetGraphQLSchema returns the GraphQL schema as a string.
func GetGraphQLSchema() string {
	es := graph.NewExecutableSchema(graph.Config{Resolvers: &graph.Resolver{}})

	var buf bytes.Buffer
	f := formatter.NewFormatter(&buf, formatter.WithIndent("  "))
	f.FormatSchema(es.Schema())

	return buf.String()
}

func init() {
	graphqlCmd.Flags().BoolVar(&queryJSON, "json", false, "Output raw JSON (no formatting)")
	graphqlCmd.Flags().StringVarP(&queryVariables, "variables", "v", "", "Query variables as JSON string")
	graphqlCmd.Flags().StringVarP(&queryOperation, "operation", "o", "", "Operation name (for multi-operation documents)")
	graphqlCmd.Flags().BoolVar(&querySchemaOnly, "schema", false, "Print the GraphQL schema and exit")
	rootCmd.AddCommand(graphqlCmd)
}
