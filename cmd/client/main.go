package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cryptotools/internal/httpx"
)

// Example client for the tool service. Each tool is an explicit subcommand
// with typed flags; nothing is inferred from free text.

var (
	serverURL string
	timeout   int

	httpClient = httpx.New(0) // per-request deadlines come from the context
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cointool",
		Short: "Client for the crypto tool service",
		Long: `cointool calls the tool service over HTTP.

Each tool is an explicit subcommand:
  • price   - spot price of a coin
  • stake   - compound staking projection
  • search  - find coins by symbol or name
  • calc    - evaluate an arithmetic expression
  • persona - look up a persona record
  • product - look up a product record`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("COINTOOL_SERVER", "http://localhost:8080"), "tool service base URL")
	rootCmd.PersistentFlags().IntVar(&timeout, "timeout", 15, "request timeout seconds")

	rootCmd.AddCommand(priceCmd(), stakeCmd(), searchCmd(), calcCmd(), lookupCmd("persona"), lookupCmd("product"), toolsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func priceCmd() *cobra.Command {
	var coin, currencies string
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Spot price of a coin in the given currencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), "price", map[string]any{
				"coin":       coin,
				"currencies": currencies,
			})
		},
	}
	cmd.Flags().StringVar(&coin, "coin", "", "provider coin id, e.g. bitcoin")
	cmd.Flags().StringVar(&currencies, "currencies", "usd", "comma-separated currency codes")
	_ = cmd.MarkFlagRequired("coin")
	return cmd
}

func stakeCmd() *cobra.Command {
	var coin, currency string
	var amount, years, apy float64
	cmd := &cobra.Command{
		Use:   "stake",
		Short: "Compound staking projection",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"amount": amount,
				"years":  years,
				"apy":    apy,
				"coin":   coin,
			}
			if currency != "" {
				body["currency"] = currency
			}
			return execute(cmd.Context(), "stake", body)
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "principal in coin units")
	cmd.Flags().Float64Var(&years, "years", 1, "staking duration in years")
	cmd.Flags().Float64Var(&apy, "apy", 0, "annual percentage yield, e.g. 5 for 5%")
	cmd.Flags().StringVar(&coin, "coin", "", "provider coin id, e.g. cardano")
	cmd.Flags().StringVar(&currency, "currency", "", "display currency for conversion (optional)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("apy")
	_ = cmd.MarkFlagRequired("coin")
	return cmd
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find coins by symbol or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), "search", map[string]any{"query": args[0]})
		},
	}
}

func calcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calc <expression>",
		Short: "Evaluate an arithmetic expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), "calc", map[string]any{"expression": args[0]})
		},
	}
}

func lookupCmd(tool string) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   tool,
		Short: fmt.Sprintf("Look up a %s record by id (omit --id to list)", tool),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{}
			if id != "" {
				body["id"] = id
			}
			return execute(cmd.Context(), tool, body)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "record id")
	return cmd
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List available tools and their parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeout)*time.Second)
			defer cancel()
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL+"/api/tools", http.NoBody)
			if err != nil {
				return err
			}
			return doAndPrint(req)
		},
	}
}

// execute posts args to the named tool and prints the JSON response.
func execute(ctx context.Context, tool string, args map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	payload, err := json.Marshal(args)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL+"/api/tools/"+tool, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return doAndPrint(req)
}

func doAndPrint(req *http.Request) error {
	res, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	// Re-indent for terminal readability; fall back to raw on surprises.
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
	} else {
		fmt.Println(pretty.String())
	}
	if res.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", res.Status)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
