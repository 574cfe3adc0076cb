package commands

import (
	"fmt"
	"strings"

	"github.com/wonny/realdeal/internal/contracts"
)

// printDealsTable renders ranked deals for the terminal.
func printDealsTable(results []contracts.UnderwritingResult, top int) {
	if len(results) == 0 {
		fmt.Println("No deals to show")
		return
	}
	if top > 0 && top < len(results) {
		results = results[:top]
	}

	fmt.Printf("%-4s %-12s %-16s %9s %4s %8s %9s %9s %6s %5s %5s %s\n",
		"#", "ID", "City", "Price", "BR", "Rent", "Cashflow", "Stress", "DSCR", "MoS", "Conf", "Pass")
	fmt.Println(strings.Repeat("-", 104))

	for i, r := range results {
		pass := "FAIL"
		if r.Passed {
			pass = "PASS"
		}
		fmt.Printf("%-4d %-12s %-16s %9.0f %4d %8.0f %9.2f %9.2f %6.2f %5d %5.2f %s\n",
			i+1,
			truncate(r.ListingID, 12),
			truncate(r.Listing.City, 16),
			r.Listing.Price,
			r.Listing.Bedrooms,
			r.RentMonthly,
			r.CashflowMonthly,
			r.StressCashflowMonthly,
			r.DSCR,
			r.MarginOfSafetyScore,
			r.ConfidenceScore,
			pass,
		)
	}
}

// printFailReasons lists which thresholds a deal missed.
func printFailReasons(r contracts.UnderwritingResult) {
	for key, flag := range r.ReasonFlags {
		if flag.Passed {
			continue
		}
		fmt.Printf("   %s: %.2f (need %.2f)\n", key, flag.Observed, flag.Threshold)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
