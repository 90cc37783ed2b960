package tools

import (
	"context"
	"fmt"
	"strings"

	"cryptotools/internal/calc"
	"cryptotools/internal/catalog"
	"cryptotools/internal/dataset"
	"cryptotools/internal/provider"
	"cryptotools/internal/staking"
)

// PriceLookup is what the price and stake tools need from the cache layer.
type PriceLookup interface {
	GetOrFetch(ctx context.Context, coinID string, currencies []string) (provider.Quote, error)
}

// Searcher is what the search tool needs from the catalog.
type Searcher interface {
	Search(ctx context.Context, query string) ([]provider.Coin, error)
}

var _ Searcher = (*catalog.Catalog)(nil)

// PriceTool looks up spot prices for one coin in one or more currencies.
type PriceTool struct {
	Prices PriceLookup
}

func (t *PriceTool) Name() string        { return "price" }
func (t *PriceTool) Description() string { return "Current price of a coin in the given currencies" }
func (t *PriceTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{Name: "coin", Type: "string", Description: "provider coin id, e.g. bitcoin", Required: true},
		{Name: "currencies", Type: "string_list", Description: "currency codes, default usd", Required: false},
	}
}

func (t *PriceTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	coin, err := stringArg(args, "coin", true)
	if err != nil {
		return nil, err
	}
	currencies, err := stringListArg(args, "currencies")
	if err != nil {
		return nil, err
	}
	if len(currencies) == 0 {
		currencies = []string{"usd"}
	}
	quote, err := t.Prices.GetOrFetch(ctx, coin, currencies)
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// StakeTool projects compounded staking value for a coin.
type StakeTool struct {
	Calc *staking.Calculator
}

func (t *StakeTool) Name() string        { return "stake" }
func (t *StakeTool) Description() string { return "Compound staking projection with optional currency conversion" }
func (t *StakeTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{Name: "amount", Type: "number", Description: "principal in coin units", Required: true},
		{Name: "years", Type: "number", Description: "staking duration in years, may be fractional", Required: true},
		{Name: "apy", Type: "number", Description: "annual percentage yield, e.g. 5 for 5%", Required: true},
		{Name: "coin", Type: "string", Description: "provider coin id, e.g. cardano", Required: true},
		{Name: "currency", Type: "string", Description: "display currency for conversion, optional", Required: false},
	}
}

func (t *StakeTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	amount, err := floatArg(args, "amount", true)
	if err != nil {
		return nil, err
	}
	years, err := floatArg(args, "years", true)
	if err != nil {
		return nil, err
	}
	apy, err := floatArg(args, "apy", true)
	if err != nil {
		return nil, err
	}
	coin, err := stringArg(args, "coin", true)
	if err != nil {
		return nil, err
	}
	currency, err := stringArg(args, "currency", false)
	if err != nil {
		return nil, err
	}
	var displayCurrencies []string
	if currency != "" {
		displayCurrencies = []string{currency}
	}
	return t.Calc.Project(ctx, amount, years, apy, coin, displayCurrencies)
}

// SearchTool finds coins by symbol or name.
type SearchTool struct {
	Catalog Searcher
}

func (t *SearchTool) Name() string        { return "search" }
func (t *SearchTool) Description() string { return "Find coins by symbol or name" }
func (t *SearchTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{Name: "query", Type: "string", Description: "symbol or name fragment", Required: true},
	}
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	query, err := stringArg(args, "query", true)
	if err != nil {
		return nil, err
	}
	return t.Catalog.Search(ctx, query)
}

// CalcTool evaluates a constrained arithmetic expression.
type CalcTool struct{}

func (t *CalcTool) Name() string        { return "calc" }
func (t *CalcTool) Description() string { return "Evaluate an arithmetic expression (+ - * / and parentheses)" }
func (t *CalcTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{Name: "expression", Type: "string", Description: "e.g. (2+3)*4", Required: true},
	}
}

func (t *CalcTool) Execute(_ context.Context, args map[string]any) (any, error) {
	expr, err := stringArg(args, "expression", true)
	if err != nil {
		return nil, err
	}
	v, err := calc.Eval(expr)
	if err != nil {
		return nil, provider.Wrap(provider.KindInvalidInput, err, "invalid expression")
	}
	return map[string]any{"expression": expr, "result": v}, nil
}

// LookupTool serves one dataset table (personas, products). Without an id
// it lists the available keys.
type LookupTool struct {
	Table    *dataset.Table
	ToolName string
	Describe string
}

func (t *LookupTool) Name() string        { return t.ToolName }
func (t *LookupTool) Description() string { return t.Describe }
func (t *LookupTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{Name: "id", Type: "string", Description: "record id; omit to list all ids", Required: false},
	}
}

func (t *LookupTool) Execute(_ context.Context, args map[string]any) (any, error) {
	id, err := stringArg(args, "id", false)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return map[string]any{"ids": t.Table.Keys()}, nil
	}
	return t.Table.Get(id)
}

// Argument extraction helpers. JSON bodies decode numbers as float64 and
// lists as []any; flags-built maps may carry native types.

func stringArg(args map[string]any, name string, required bool) (string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		if required {
			return "", provider.Errorf(provider.KindInvalidInput, "missing required argument %q", name)
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", provider.Errorf(provider.KindInvalidInput, "argument %q must be a string, got %T", name, raw)
	}
	s = strings.TrimSpace(s)
	if required && s == "" {
		return "", provider.Errorf(provider.KindInvalidInput, "argument %q cannot be empty", name)
	}
	return s, nil
}

func floatArg(args map[string]any, name string, required bool) (float64, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		if required {
			return 0, provider.Errorf(provider.KindInvalidInput, "missing required argument %q", name)
		}
		return 0, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, provider.Errorf(provider.KindInvalidInput, "argument %q must be a number, got %T", name, raw)
	}
}

func stringListArg(args map[string]any, name string) ([]string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case string:
		return splitCSV(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, provider.Errorf(provider.KindInvalidInput, "argument %q must be a list of strings", name)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, provider.Errorf(provider.KindInvalidInput, "argument %q must be a list of strings, got %T", name, raw)
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NewDefaultRegistry wires the standard tool set.
func NewDefaultRegistry(prices PriceLookup, calculator *staking.Calculator, coins Searcher, tables ...*dataset.Table) (*Registry, error) {
	registry := NewRegistry()
	list := []Tool{
		&PriceTool{Prices: prices},
		&StakeTool{Calc: calculator},
		&SearchTool{Catalog: coins},
		&CalcTool{},
	}
	for _, table := range tables {
		list = append(list, &LookupTool{
			Table:    table,
			ToolName: table.Name(),
			Describe: fmt.Sprintf("Look up a %s record by id", table.Name()),
		})
	}
	for _, tool := range list {
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
