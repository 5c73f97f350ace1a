package main

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/etdte/svc-http/internal/app"
	"github.com/etdte/svc-http/pkg/svchttp"
)

// callerFactory opens a caller runtime for a single command invocation.
type callerFactory func(ctx context.Context) (*app.Caller, error)

func newRootCommand(open callerFactory) *cobra.Command {
	root := &cobra.Command{
		Use:   "svchttp",
		Short: "Call configured HTTP services",
		Long: `svchttp issues authenticated requests against the service profiles
declared in the profiles file and prints the normalized JSON result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newCallCommand(open),
		newTokenCommand(open),
		newProfilesCommand(open),
	)
	return root
}

func newCallCommand(open callerFactory) *cobra.Command {
	var (
		data    []string
		publish bool
	)

	cmd := &cobra.Command{
		Use:   "call <profile> <method> [path]",
		Short: "Issue a request against a profile",
		Long: `Issue a GET, POST, PUT or DELETE request against a profile.

Request attributes are passed with --data key=value and are sent as query
parameters for GET and as a JSON body for POST and PUT.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := svchttp.ParseMethod(args[1])
			if err != nil {
				return err
			}
			attrs, err := parseData(data)
			if err != nil {
				return err
			}
			var path string
			if len(args) == 3 {
				path = args[2]
			}

			caller, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer caller.Close()

			resp, err := caller.Call(cmd.Context(), args[0], method, path, attrs, publish)
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}

	cmd.Flags().StringArrayVarP(&data, "data", "d", nil, "Request attribute as key=value (repeatable)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Forward the result to the configured sinks")
	return cmd
}

func newTokenCommand(open callerFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage cached profile tokens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <profile> <token>",
		Short: "Cache a token for a profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer caller.Close()

			if err := caller.SetToken(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token stored for profile '%s'\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "forget <profile>",
		Short: "Drop the cached token for a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer caller.Close()

			if err := caller.ForgetToken(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token removed for profile '%s'\n", args[0])
			return nil
		},
	})

	return cmd
}

func newProfilesCommand(open callerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List configured profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer caller.Close()

			for _, p := range caller.Profiles() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.ID, strings.TrimRight(p.BaseURL+"/"+p.Path, "/"))
			}
			return nil
		},
	}
}

// parseData turns key=value pairs into request attributes. Values that look
// like numbers or booleans are sent as such.
func parseData(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	attrs := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --data %q (expected key=value)", pair)
		}
		attrs[key] = typedValue(value)
	}
	return attrs, nil
}

var (
	intPattern   = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)
	floatPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)\.[0-9]+$`)
)

func typedValue(value string) any {
	switch {
	case value == "true" || value == "false":
		return cast.ToBool(value)
	case intPattern.MatchString(value):
		if n, err := cast.ToInt64E(value); err == nil {
			return n
		}
	case floatPattern.MatchString(value):
		if f, err := cast.ToFloat64E(value); err == nil {
			return f
		}
	}
	return value
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
