package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/martinemde/polyglot/catalog"
	"github.com/martinemde/polyglot/llmclient"
	"github.com/martinemde/polyglot/modelwire"
)

var completeCmd = &cobra.Command{
	Use:   "complete [prompt]",
	Short: "Send one completion request",
	Long:  "Send a single completion request and print the normalized answer. With --stream, text prints as it arrives. The prompt comes from the arguments or, when absent, from stdin.",
	Args:  cobra.ArbitraryArgs,
	RunE:  runComplete,
}

func init() {
	completeCmd.Flags().StringArray("system", nil, "System prompt (repeatable)")
	completeCmd.Flags().Int("max-tokens", 0, "Completion token cap (0 = provider default)")
	completeCmd.Flags().Float64("temperature", 0, "Sampling temperature")
	completeCmd.Flags().String("effort", "", "Reasoning effort (low, medium, high)")
	completeCmd.Flags().String("verbosity", "", "Output verbosity (low, medium, high)")
	completeCmd.Flags().Bool("stream", false, "Stream text as it arrives")
	completeCmd.Flags().String("previous-response-id", "", "Continue from a prior response id")

	rootCmd.AddCommand(completeCmd)
}

func runComplete(cmd *cobra.Command, args []string) error {
	model := viper.GetString("model")
	verbose := viper.GetBool("verbose")

	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading prompt from stdin: %w", err)
		}
		prompt = strings.TrimSpace(string(data))
	}
	if prompt == "" {
		return fmt.Errorf("no prompt given: pass it as an argument or on stdin")
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	var adapterOpts []catalog.AdapterOption
	if baseURL := viper.GetString("base_url"); baseURL != "" {
		adapterOpts = append(adapterOpts, catalog.WithBaseURL(baseURL))
	}
	if prevID, _ := cmd.Flags().GetString("previous-response-id"); prevID != "" {
		adapterOpts = append(adapterOpts, catalog.WithPreviousResponseID(prevID))
	}

	adapter, err := cat.NewAdapter(model, adapterOpts...)
	if err != nil {
		return err
	}

	client, err := llmclient.New(adapter, llmclient.WithLogger(newLogger()))
	if err != nil {
		return err
	}
	client.Emitter().On(terminalEventListener(verbose))

	req := modelwire.Request{
		Messages: []modelwire.Message{modelwire.UserMessage(prompt)},
	}
	if system, _ := cmd.Flags().GetStringArray("system"); len(system) > 0 {
		req.SystemPrompts = system
	}
	if maxTokens, _ := cmd.Flags().GetInt("max-tokens"); maxTokens > 0 {
		req.MaxTokens = maxTokens
	}
	if cmd.Flags().Changed("temperature") {
		temp, _ := cmd.Flags().GetFloat64("temperature")
		req.Temperature = &temp
	}
	if effort, _ := cmd.Flags().GetString("effort"); effort != "" {
		req.ReasoningEffort = modelwire.ReasoningEffort(effort)
	}
	if verbosity, _ := cmd.Flags().GetString("verbosity"); verbosity != "" {
		req.Verbosity = modelwire.Verbosity(verbosity)
	}

	if stream, _ := cmd.Flags().GetBool("stream"); stream {
		return streamCompletion(cmd.Context(), client, req, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	return bufferedCompletion(cmd.Context(), client, req, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func bufferedCompletion(ctx context.Context, client *llmclient.Client, req modelwire.Request, stdout, stderr io.Writer) error {
	resp, err := client.Complete(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, resp.Text())
	for _, call := range resp.ToolCalls {
		fmt.Fprintf(stderr, "[tool call] %s(%s)\n", call.Name, call.Arguments)
	}
	if resp.ResponseID != "" {
		fmt.Fprintf(stderr, "[response id] %s\n", resp.ResponseID)
	}
	return nil
}

func streamCompletion(ctx context.Context, client *llmclient.Client, req modelwire.Request, stdout, stderr io.Writer) error {
	events, err := client.Stream(ctx, req)
	if err != nil {
		return err
	}

	var streamErr error
	var responseID string
	for evt := range events {
		switch evt.Type {
		case modelwire.EventTextDelta:
			fmt.Fprint(stdout, evt.Delta)
		case modelwire.EventToolRequest:
			fmt.Fprintf(stderr, "\n[tool call] %s(%s)\n", evt.Tool.Name, evt.Tool.Arguments)
		case modelwire.EventError:
			streamErr = evt.Error
		case modelwire.EventMessageStop:
			// The terminal event carries the id inside its message.
			if evt.Message != nil {
				responseID = evt.Message.ResponseID
			}
		}
	}
	fmt.Fprintln(stdout)

	if responseID != "" {
		fmt.Fprintf(stderr, "[response id] %s\n", responseID)
	}
	return streamErr
}

// loadCatalog builds the model catalog, merging the optional override file.
func loadCatalog() (*catalog.Catalog, error) {
	cat := catalog.New()
	path := viper.GetString("catalog")
	if path == "" {
		return cat, nil
	}
	overrides, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	return cat.WithOverrides(overrides), nil
}

// newLogger builds the CLI logger; --verbose raises the level to info,
// --debug to debug.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if viper.GetBool("verbose") {
		level = slog.LevelInfo
	}
	if viper.GetBool("debug") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// terminalEventListener returns an event listener that prints request
// progress to stderr.
func terminalEventListener(verbose bool) func(llmclient.Event) {
	return func(e llmclient.Event) {
		if !verbose {
			return
		}
		switch e.Type {
		case llmclient.EventRequestStarted, llmclient.EventStreamStarted:
			model, _ := e.Data["model"].(string)
			protocol, _ := e.Data["protocol"].(string)
			fmt.Fprintf(os.Stderr, "[request] %s via %s...\n", model, protocol)

		case llmclient.EventRequestCompleted, llmclient.EventStreamCompleted:
			durationMs, _ := e.Data["duration_ms"].(int64)
			input, _ := e.Data["input_tokens"].(int)
			output, _ := e.Data["output_tokens"].(int)
			fmt.Fprintf(os.Stderr, "[request] done in %.1fs (%d in, %d out)\n",
				float64(durationMs)/1000, input, output)

		case llmclient.EventRequestFailed:
			errMsg, _ := e.Data["error"].(string)
			fmt.Fprintf(os.Stderr, "[request] failed: %s\n", errMsg)
		}
	}
}
