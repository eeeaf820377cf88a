package pricing

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"solar-catalog-api/internal/model"
)

const (
	sheetSummary      = "Summary"
	sheetDistributors = "Distributors"
	sheetCategories   = "Categories"
	sheetInsights     = "Insights"
)

// WriteReportXLSX renders the report as a workbook with Summary,
// Distributors, Categories and Insights sheets.
func WriteReportXLSX(report model.PriceComparisonReport, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{sheetDistributors, sheetCategories, sheetInsights} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	s := report.Summary
	summaryRows := [][]any{
		{"Run ID", report.RunID},
		{"Generated at", report.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total SKUs", s.TotalSkus},
		{"Total offers", s.TotalOffers},
		{"Distributors", s.TotalDistributors},
		{"Multi-distributor SKUs", s.MultiDistributorSkus},
		{"Single-offer SKUs", s.SingleOfferSkus},
		{"Avg price variation (%)", s.AvgPriceVariationPct},
	}
	row := len(summaryRows) + 2
	summaryRows = append(summaryRows, []any{})
	summaryRows = append(summaryRows, []any{"Recommendations"})
	for _, r := range report.Recommendations {
		summaryRows = append(summaryRows, []any{"", r})
	}
	if err := writeRows(f, sheetSummary, summaryRows); err != nil {
		return err
	}
	recCell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetCellStyle(sheetSummary, recCell, recCell, headerStyle); err != nil {
		return err
	}
	f.SetColWidth(sheetSummary, "A", "A", 28)
	f.SetColWidth(sheetSummary, "B", "B", 80)

	distributorRows := [][]any{{"Rank", "Distributor", "Products", "Times cheapest", "Times most expensive", "Avg deviation (%)", "Score"}}
	for _, d := range report.DistributorRankings {
		distributorRows = append(distributorRows, []any{
			d.Rank, d.Distributor, d.TotalProducts, d.TimesCheapest, d.TimesMostExpensive, d.AvgPriceDeviationPct, d.Score,
		})
	}
	if err := writeTable(f, sheetDistributors, distributorRows, headerStyle); err != nil {
		return err
	}

	categoryRows := [][]any{{"Category", "SKUs", "Multi-distributor", "Single offer", "Avg price", "Avg variation (%)", "Cheapest distributor"}}
	for _, c := range report.CategoryStats {
		categoryRows = append(categoryRows, []any{
			string(c.Category), c.TotalSkus, c.MultiDistributorSkus, c.SingleOfferSkus, c.AvgPrice, c.AvgPriceVariationPct, c.CheapestDistributor,
		})
	}
	if err := writeTable(f, sheetCategories, categoryRows, headerStyle); err != nil {
		return err
	}

	insightRows := [][]any{{"Type", "Severity", "SKU", "Category", "Value", "Message"}}
	for _, in := range report.Insights {
		insightRows = append(insightRows, []any{
			string(in.Type), string(in.Severity), in.SkuID, string(in.Category), in.Value, in.Message,
		})
	}
	if err := writeTable(f, sheetInsights, insightRows, headerStyle); err != nil {
		return err
	}
	f.SetColWidth(sheetInsights, "F", "F", 80)

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(rows[0]))
	return f.SetColWidth(sheet, "A", lastCol, 20)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, values := range rows {
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
