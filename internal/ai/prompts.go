package ai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"USD": "$", "EUR": "€", "GBP": "£", "INR": "₹", "JPY": "¥",
	"AUD": "A$", "CAD": "C$", "CHF": "CHF", "CNY": "¥",
}

func currencySymbol(code string) string {
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return code
}

func categorizePrompt(amount decimal.Decimal, remarks string) string {
	return fmt.Sprintf(`Given this transaction:
Amount: %s
Remarks: %s

Categorize it into ONE of these categories: %s

Respond with ONLY the category name, nothing else.`,
		amount.StringFixed(2), remarks, strings.Join(Categories, ", "))
}

func summarizePrompt(data MonthData) string {
	sym := currencySymbol(data.Currency)

	var spending, savings, investments decimal.Decimal
	byCategory := make(map[string]decimal.Decimal)
	for _, t := range data.Transactions {
		switch t.Category {
		case "Savings":
			savings = savings.Add(t.Amount)
		case "Investment":
			investments = investments.Add(t.Amount)
		default:
			if t.Type == "expense" {
				spending = spending.Add(t.Amount)
			}
		}
		byCategory[t.Category] = byCategory[t.Category].Add(t.Amount)
	}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this monthly expense data and provide insights:\n\n")
	fmt.Fprintf(&b, "Month: %d/%d\n", data.Month, data.Year)
	fmt.Fprintf(&b, "Currency: %s (%s)\n", data.Currency, sym)
	if data.Budget != nil {
		fmt.Fprintf(&b, "Monthly budget: %s%s\n", sym, data.Budget.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total Expenses: %s%s\n", sym, spending.StringFixed(2))
	fmt.Fprintf(&b, "Total Savings: %s%s\n", sym, savings.StringFixed(2))
	fmt.Fprintf(&b, "Total Investments: %s%s\n\n", sym, investments.StringFixed(2))
	b.WriteString("Category Breakdown:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %s%s\n", name, sym, byCategory[name].StringFixed(2))
	}
	fmt.Fprintf(&b, `
Provide:
1. A brief plain-English spending summary (2-3 sentences)
2. Any overspending categories as a percentage of total spending
3. The savings rate, if there is income
4. ONE blunt, actionable suggestion

Use the %s symbol for all amounts. Be direct and specific with numbers. Keep it under 150 words.`, sym)
	return b.String()
}

func spikePrompt(spike SpikeData) string {
	return fmt.Sprintf(`Spending increased by %s%% this month compared to last month.

Current month total: %s
Previous month total: %s

Write a brief warning (1-2 sentences) about this spike. Be direct and specific.`,
		spike.IncreasePct.StringFixed(1), spike.Current.StringFixed(2), spike.Previous.StringFixed(2))
}
