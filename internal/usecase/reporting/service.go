// Package reporting assembles the income statement from per-category
// ledger totals, split into operating, financial, exceptional and tax
// sections the way the statement is presented.
package reporting

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dmarinho/farmbooks-backend/internal/domain"
	"github.com/dmarinho/farmbooks-backend/internal/usecase/ledger"
)

// Aggregator provides per-category totals. *ledger.Service satisfies it.
type Aggregator interface {
	SumByCategory(ctx context.Context, txType domain.CategoryType, scope domain.TransactionScope) ([]ledger.CategoryTotal, error)
}

// Section is one block of the income statement.
type Section struct {
	Lines []ledger.CategoryTotal
	Total decimal.Decimal
}

// IncomeStatement is the classified statement for a scope (one period,
// one fiscal year, or all time).
type IncomeStatement struct {
	OperatingRevenue    Section
	OperatingExpenses   Section
	FinancialExpenses   Section
	ExceptionalRevenue  Section
	ExceptionalExpenses Section
	Tax                 Section

	OperatingResult decimal.Decimal
	ResultBeforeTax decimal.Decimal
	NetResult       decimal.Decimal
}

// Service produces reports.
type Service struct {
	Ledger Aggregator
}

// NewService creates a new reporting Service instance.
func NewService(aggregator Aggregator) *Service {
	return &Service{Ledger: aggregator}
}

var financialExpenseNames = map[string]bool{
	domain.CategoryLoanInterest:  true,
	domain.CategoryLeaseInterest: true,
}

var exceptionalRevenueNames = map[string]bool{
	domain.CategoryCapitalGain:  true,
	domain.CategoryOtherRevenue: true,
}

var exceptionalExpenseNames = map[string]bool{
	domain.CategoryCapitalLoss:   true,
	domain.CategoryOtherExpenses: true,
}

// IncomeStatement classifies the scope's per-category totals. Interest
// lines are financial, capital gains/losses and the "other" buckets are
// exceptional, corporate tax stands alone; everything else, including
// uncategorized amounts, is operating.
func (s *Service) IncomeStatement(ctx context.Context, scope domain.TransactionScope) (*IncomeStatement, error) {
	revenues, err := s.Ledger.SumByCategory(ctx, domain.CategoryTypeRevenue, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	expenses, err := s.Ledger.SumByCategory(ctx, domain.CategoryTypeExpense, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate expenses: %w", err)
	}

	statement := &IncomeStatement{}
	for _, row := range revenues {
		if exceptionalRevenueNames[row.Name] {
			appendLine(&statement.ExceptionalRevenue, row)
		} else {
			appendLine(&statement.OperatingRevenue, row)
		}
	}
	for _, row := range expenses {
		switch {
		case row.Name == domain.CategoryCorporateTax:
			appendLine(&statement.Tax, row)
		case financialExpenseNames[row.Name]:
			appendLine(&statement.FinancialExpenses, row)
		case exceptionalExpenseNames[row.Name]:
			appendLine(&statement.ExceptionalExpenses, row)
		default:
			appendLine(&statement.OperatingExpenses, row)
		}
	}

	statement.OperatingResult = statement.OperatingRevenue.Total.Sub(statement.OperatingExpenses.Total)
	statement.ResultBeforeTax = statement.OperatingResult.
		Sub(statement.FinancialExpenses.Total).
		Add(statement.ExceptionalRevenue.Total).
		Sub(statement.ExceptionalExpenses.Total)
	statement.NetResult = statement.ResultBeforeTax.Sub(statement.Tax.Total)
	return statement, nil
}

func appendLine(section *Section, row ledger.CategoryTotal) {
	section.Lines = append(section.Lines, row)
	section.Total = section.Total.Add(row.Total)
}
