package server

import (
	"fmt"

	"github.com/rgehrsitz/paysplit/internal/calculation"
	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
)

const monthsPerYear = 12

// parseQuery fills a query from the request arguments, falling back to the
// configured defaults for anything omitted
func (s *Server) parseQuery(args *fasthttp.Args) (domain.Query, error) {
	query := domain.Query{
		Year:          s.Defaults.Year,
		Scheme:        s.Defaults.Scheme,
		AgeBracket:    s.Defaults.AgeBracket,
		MonthlySalary: s.Defaults.MonthlySalary,
	}

	year, err := intParam(args, "year", query.Year)
	if err != nil {
		return query, err
	}
	query.Year = year

	if scheme := args.Peek("scheme"); len(scheme) > 0 {
		query.Scheme = string(scheme)
	}

	if raw := args.Peek("bracket"); len(raw) > 0 {
		bracket, err := domain.ParseAgeBracket(string(raw))
		if err != nil {
			return query, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		query.AgeBracket = bracket
	}
	if query.AgeBracket == "" {
		query.AgeBracket = domain.AgeBracketBase
	}

	if args.Has("monthly") {
		monthly, err := amountParam(args, "monthly")
		if err != nil {
			return query, err
		}
		query.MonthlySalary = monthly
	}

	return query, nil
}

// grossParam reads the annual gross income, either directly or as twelve
// times the monthly salary
func grossParam(args *fasthttp.Args, query domain.Query) (decimal.Decimal, error) {
	if args.Has("gross") {
		return amountParam(args, "gross")
	}
	if args.Has("monthly") {
		return query.MonthlySalary.Mul(decimal.NewFromInt(monthsPerYear)), nil
	}
	return decimal.Zero, fmt.Errorf("%w: gross or monthly is required", errBadRequest)
}

func amountParam(args *fasthttp.Args, name string) (decimal.Decimal, error) {
	raw := string(args.Peek(name))
	amount, ok := calculation.ParseAmount(raw)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s must not be negative", errBadRequest, name)
	}
	return amount, nil
}
