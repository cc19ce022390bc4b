package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/respext/packages/extract"
	"github.com/abdul-hamid-achik/respext/packages/selector"
	"github.com/abdul-hamid-achik/respext/packages/template"
)

var (
	renderFuncFlag      string
	renderRequestFlag   string
	renderAttributeFlag string
	renderFilterFlag    string
	renderBehaviorFlag  string
	renderPurposeFlag   string
	renderFileFlag      string
	renderVarsFlag      map[string]string
)

var renderCmd = &cobra.Command{
	Use:   "render [template]",
	Short: "Render a template or call a single extraction function",
	Long: `Render text containing {{ ... }} tags, or call one extraction function.

Templates may call the extraction functions listed by 'respext functions',
builtins such as uuid() and base64('...'), environment variables ({{$HOME}})
and variables given with --var. Unknown tags are left in place.

Examples:
  respext render "Bearer {{ responseExtensions.oauth2('req_login', '$.accessToken') }}"
  respext render --file body.json.tmpl --purpose send
  respext render --func responseExtensions.body --request req_users --filter '$.data[0].id'
  respext render --func responseExtensions --request req_users --attribute response --filter '$.statusCode'`,
	Args: cobra.MaximumNArgs(1),
	RunE: renderCommand,
}

func init() {
	renderCmd.Flags().StringVar(&renderFuncFlag, "func", "", "Call this extraction function instead of rendering a template")
	renderCmd.Flags().StringVarP(&renderRequestFlag, "request", "r", "", "Source request id (with --func)")
	renderCmd.Flags().StringVar(&renderAttributeFlag, "attribute", "", "Attribute for responseExtensions: oauth2, response, body (with --func)")
	renderCmd.Flags().StringVarP(&renderFilterFlag, "filter", "f", "", "JSONPath filter, e.g. $.data.id (with --func)")
	renderCmd.Flags().StringVarP(&renderBehaviorFlag, "behavior", "b", "", "Trigger behavior: smart, always, never (default from config)")
	renderCmd.Flags().StringVar(&renderPurposeFlag, "purpose", string(selector.PurposePreview), "Render purpose: send, preview")
	renderCmd.Flags().StringVar(&renderFileFlag, "file", "", "Read the template from a file (- for stdin)")
	renderCmd.Flags().StringToStringVar(&renderVarsFlag, "var", nil, "Template variable (name=value), repeatable")
}

func parsePurpose(s string) (selector.Purpose, error) {
	switch selector.Purpose(s) {
	case selector.PurposeSend, selector.PurposePreview:
		return selector.Purpose(s), nil
	default:
		return "", fmt.Errorf("invalid purpose %q (use send or preview)", s)
	}
}

func renderCommand(cmd *cobra.Command, args []string) error {
	purpose, err := parsePurpose(renderPurposeFlag)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	behavior := renderBehaviorFlag
	if behavior == "" {
		behavior = a.cfg.Behavior
	}

	if renderFuncFlag != "" {
		return callFunction(cmd, a, purpose, behavior)
	}

	input, err := templateInput(cmd, args)
	if err != nil {
		return err
	}

	r := template.New(a.registry,
		template.WithPurpose(purpose),
		template.WithBehavior(behavior),
		template.WithLogger(a.logger),
		template.WithVariables(renderVarsFlag))

	out, renderErr := r.Render(cmd.Context(), input)
	fmt.Fprint(cmd.OutOrStdout(), out)
	if renderErr != nil {
		a.logger.Warn("some template functions produced no value", "error", renderErr)
	}
	return nil
}

func templateInput(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case renderFileFlag == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	case renderFileFlag != "":
		b, err := os.ReadFile(renderFileFlag)
		if err != nil {
			return "", withExitCode(ExitParseError, err)
		}
		return string(b), nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", withExitCode(ExitUsageError, errors.New("a template argument, --file or --func is required"))
	}
}

// callFunction invokes one extraction function with the argument flags.
func callFunction(cmd *cobra.Command, a *app, purpose selector.Purpose, behavior string) error {
	def, ok := a.registry.Lookup(renderFuncFlag)
	if !ok {
		return withExitCode(ExitUsageError, fmt.Errorf("unknown function %q (see 'respext functions')", renderFuncFlag))
	}

	values := map[string]string{
		extract.ArgRequest:   renderRequestFlag,
		extract.ArgAttribute: renderAttributeFlag,
		extract.ArgFilter:    renderFilterFlag,
		extract.ArgBehavior:  behavior,
	}
	positional := make([]string, len(def.Args))
	for i, arg := range def.Args {
		positional[i] = values[arg.Name]
	}

	result, err := a.registry.Call(cmd.Context(), def.Name, positional, purpose)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	a.formatter.FormatExtraction(def.Name, result)
	if errors.Is(result.Err, extract.ErrSendFailed) {
		return withExitCode(ExitNetworkError, result.Err)
	}
	return nil
}
