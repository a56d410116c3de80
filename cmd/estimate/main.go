/*
main.go - Command-line loan estimator

PURPOSE:
  Resolves one loan schedule and prints it, without a server or database.
  The defaults reproduce the reference loan: 150 000 at 10% over two months,
  weekly from 2024-01-07, with Sundays, Saturdays and holidays excluded.

OUTPUT:
  Payment ID, Date, Amount
  1, 2024-01-09, 22500
  ...
  Total due: 180000
  Sum of payments: 180000
  Difference: 0

  With -json the loan is printed as the API would return it.

EXAMPLES:
  ./estimate
  ./estimate -principal=123457 -rate=7.25 -term=MONTH -periodicity=DAILY -first=2024-05-02
*/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-engine/api"
	"github.com/warp/loan-engine/cache"
	"github.com/warp/loan-engine/calendar"
	"github.com/warp/loan-engine/estimate"
	"github.com/warp/loan-engine/loan"
	"github.com/warp/loan-engine/logger"
	"github.com/warp/loan-engine/store/memory"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("estimate", flag.ContinueOnError)
	flags.SetOutput(stderr)

	principal := flags.Int64("principal", 150000, "loan principal")
	rate := flags.String("rate", "10", "monthly interest rate, percent")
	term := flags.String("term", string(estimate.TermBimonth), "MONTH or BIMONTH")
	first := flags.String("first", "2024-01-07", "first payment date (YYYY-MM-DD)")
	periodicity := flags.String("periodicity", string(estimate.PeriodicityWeekly), "DAILY, WEEKLY, FORTNIGHTLY or MONTHLY")
	sundays := flags.Bool("sundays", true, "no payments on Sundays")
	saturdays := flags.Bool("saturdays", true, "no payments on Saturdays")
	holidays := flags.Bool("holidays", true, "no payments on Colombian holidays")
	base := flags.String("rounding-base", loan.DefaultRoundingBase.String(), "installment rounding base")
	minPrincipal := flags.Int64("min-principal", estimate.DefaultMinPrincipal, "smallest principal accepted")
	asJSON := flags.Bool("json", false, "print the loan as JSON")
	logLevel := flags.String("log-level", "warn", "log level")
	if err := flags.Parse(args); err != nil {
		return err
	}

	monthlyRate, err := decimal.NewFromString(*rate)
	if err != nil {
		return fmt.Errorf("invalid rate %q: %w", *rate, err)
	}
	roundingBase, err := decimal.NewFromString(*base)
	if err != nil {
		return fmt.Errorf("invalid rounding base %q: %w", *base, err)
	}

	log := logger.New(stderr, "loan-estimate", logger.ParseLevel(*logLevel))
	cal := calendar.NewCached(calendar.NewColombianCalculator(), cache.NewMemory(), nil, log)
	svc := estimate.NewService(cal, memory.New(), estimate.Options{
		RoundingBase: roundingBase,
		MinPrincipal: *minPrincipal,
		Logger:       log,
	})

	l, err := svc.Estimate(context.Background(), estimate.Request{
		Principal:           *principal,
		MonthlyInterestRate: monthlyRate,
		Term:                estimate.Term(*term),
		FirstPaymentDate:    *first,
		PaymentPeriodicity:  estimate.Periodicity(*periodicity),
		InterestFreeDays: loan.InterestFreeDays{
			OnSundays:   *sundays,
			OnSaturdays: *saturdays,
			OnHolidays:  *holidays,
		},
	})
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(api.NewLoanDTO(l))
	}
	return printSchedule(stdout, l)
}

func printSchedule(w io.Writer, l *loan.Loan) error {
	payments := l.Summary.ExpectedPayments
	sum := loan.SumPayments(payments)

	fmt.Fprintln(w, "Payment ID, Date, Amount")
	for _, p := range payments {
		fmt.Fprintf(w, "%d, %s, %s\n", p.ID, p.Date, p.Amount)
	}
	fmt.Fprintf(w, "Total due: %s\n", l.TotalDue())
	fmt.Fprintf(w, "Sum of payments: %s\n", sum)
	_, err := fmt.Fprintf(w, "Difference: %s\n", l.TotalDue().Sub(sum))
	return err
}
