package application

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/alphaview/internal/portfolio/domain"
	"github.com/xuri/excelize/v2"
)

// 导出格式
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// 可导出字段，基础字段来自持仓行，计算字段在导出时派生
const (
	FieldTicker       = "ticker"
	FieldShares       = "shares"
	FieldAvgCost      = "avg_cost_basis"
	FieldTotalCost    = "total_cost_basis"
	FieldCurrentValue = "current_value"
	FieldPnL          = "unrealized_pnl"
	FieldLastUpdated  = "last_updated"
	FieldWeightPct    = "weight_pct"
	FieldROIPct       = "roi_pct"
	FieldCurrentPrice = "current_price"
	FieldPriceChange  = "price_change"
	FieldDaysHeld     = "days_held"
)

// DefaultExportFields 未指定字段时导出的基础字段
var DefaultExportFields = []string{
	FieldTicker, FieldShares, FieldAvgCost, FieldTotalCost,
	FieldCurrentValue, FieldPnL, FieldLastUpdated,
}

var exportFieldLabels = map[string]string{
	FieldTicker:       "Ticker",
	FieldShares:       "Shares",
	FieldAvgCost:      "Avg Cost Basis",
	FieldTotalCost:    "Total Cost Basis",
	FieldCurrentValue: "Current Value",
	FieldPnL:          "Unrealized P&L",
	FieldLastUpdated:  "Last Updated",
	FieldWeightPct:    "Weight %",
	FieldROIPct:       "ROI %",
	FieldCurrentPrice: "Current Price",
	FieldPriceChange:  "Price Change",
	FieldDaysHeld:     "Days Held",
}

// ExportRequest 导出请求：格式、字段选择、是否附带成交历史
type ExportRequest struct {
	Format              string   `json:"format"`
	Fields              []string `json:"fields"`
	IncludeTransactions bool     `json:"include_transactions"`
}

// ExportResult 导出结果：文件名、MIME 类型、文件内容
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export 按请求生成组合导出文件
// CSV 附带成交历史时打包为 ZIP；XLSX 写入第二个工作表；JSON 写入第二个数组
func (s *PortfolioService) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	fields := req.Fields
	if len(fields) == 0 {
		fields = DefaultExportFields
	}
	for _, f := range fields {
		if _, ok := exportFieldLabels[f]; !ok {
			return nil, fmt.Errorf("unknown export field: %s", f)
		}
	}

	rows, err := s.exportRows(ctx, fields)
	if err != nil {
		return nil, err
	}

	var executions []*domain.Execution
	if req.IncludeTransactions {
		executions, err = s.executions.ListRecent(ctx, defaultTransactionLimit)
		if err != nil {
			return nil, err
		}
	}

	stamp := time.Now().Format("20060102")
	switch req.Format {
	case FormatCSV, "":
		return exportCSV(fields, rows, executions, stamp)
	case FormatJSON:
		return exportJSON(fields, rows, executions, stamp)
	case FormatXLSX:
		return exportXLSX(fields, rows, executions, stamp)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", req.Format)
	}
}

// exportRows 为每个持仓按字段顺序生成一行字符串值
func (s *PortfolioService) exportRows(ctx context.Context, fields []string) ([][]string, error) {
	positions, err := s.positions.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, nil
	}

	total := decimal.Zero
	tickers := make([]string, len(positions))
	for i, p := range positions {
		total = total.Add(p.CurrentValue)
		tickers[i] = p.Ticker
	}

	needPrices := containsAny(fields, FieldCurrentPrice, FieldPriceChange)
	var latest map[string]decimal.Decimal
	if needPrices {
		latest, err = s.prices.LatestAdjCloseBatch(ctx, tickers)
		if err != nil {
			return nil, err
		}
	}

	var firstBuy map[string]time.Time
	if containsAny(fields, FieldDaysHeld) {
		executions, err := s.executions.ListThrough(ctx, time.Now())
		if err != nil {
			return nil, err
		}
		firstBuy = make(map[string]time.Time, len(positions))
		for _, e := range executions {
			if e.Action != domain.ActionBuy {
				continue
			}
			if first, ok := firstBuy[e.Ticker]; !ok || e.ExecutionDate.Before(first) {
				firstBuy[e.Ticker] = e.ExecutionDate
			}
		}
	}

	hundred := decimal.NewFromInt(100)
	rows := make([][]string, 0, len(positions))
	for _, p := range positions {
		row := make([]string, 0, len(fields))
		for _, f := range fields {
			switch f {
			case FieldTicker:
				row = append(row, p.Ticker)
			case FieldShares:
				row = append(row, p.Shares.String())
			case FieldAvgCost:
				row = append(row, p.AvgCostBasis.StringFixed(2))
			case FieldTotalCost:
				row = append(row, p.TotalCostBasis.StringFixed(2))
			case FieldCurrentValue:
				row = append(row, p.CurrentValue.StringFixed(2))
			case FieldPnL:
				row = append(row, p.UnrealizedPnL.StringFixed(2))
			case FieldLastUpdated:
				row = append(row, p.LastUpdated.Format(time.RFC3339))
			case FieldWeightPct:
				weight := decimal.Zero
				if total.IsPositive() {
					weight = p.CurrentValue.Div(total).Mul(hundred)
				}
				row = append(row, weight.StringFixed(2))
			case FieldROIPct:
				row = append(row, p.ROIPercent().StringFixed(2))
			case FieldCurrentPrice:
				row = append(row, latest[p.Ticker].StringFixed(2))
			case FieldPriceChange:
				// 现价相对平均成本的变动
				row = append(row, latest[p.Ticker].Sub(p.AvgCostBasis).StringFixed(2))
			case FieldDaysHeld:
				days := 0
				if first, ok := firstBuy[p.Ticker]; ok {
					days = int(time.Since(first).Hours() / 24)
				}
				row = append(row, fmt.Sprintf("%d", days))
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func containsAny(fields []string, wanted ...string) bool {
	for _, f := range fields {
		for _, w := range wanted {
			if f == w {
				return true
			}
		}
	}
	return false
}

func headerRow(fields []string) []string {
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = exportFieldLabels[f]
	}
	return header
}

var transactionHeader = []string{"Date", "Ticker", "Action", "Shares", "Price", "Total Cost", "Fees"}

func transactionRows(executions []*domain.Execution) [][]string {
	rows := make([][]string, 0, len(executions))
	for _, e := range executions {
		rows = append(rows, []string{
			e.ExecutionDate.Format("2006-01-02"),
			e.Ticker,
			string(e.Action),
			e.Shares.String(),
			e.Price.StringFixed(2),
			e.TotalCost.StringFixed(2),
			e.Fees.StringFixed(2),
		})
	}
	return rows
}

func writeCSV(fields []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headerRow(fields)); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportCSV(fields []string, rows [][]string, executions []*domain.Execution, stamp string) (*ExportResult, error) {
	portfolioCSV, err := writeCSV(fields, rows)
	if err != nil {
		return nil, err
	}

	if executions == nil {
		return &ExportResult{
			Filename:    fmt.Sprintf("portfolio_%s.csv", stamp),
			ContentType: "text/csv",
			Data:        portfolioCSV,
		}, nil
	}

	// 成交历史作为第二个 CSV 打进 ZIP
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	f, err := zw.Create(fmt.Sprintf("portfolio_%s.csv", stamp))
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(portfolioCSV); err != nil {
		return nil, err
	}

	var txBuf bytes.Buffer
	tw := csv.NewWriter(&txBuf)
	if err := tw.Write(transactionHeader); err != nil {
		return nil, err
	}
	if err := tw.WriteAll(transactionRows(executions)); err != nil {
		return nil, err
	}
	tw.Flush()
	if tw.Error() != nil {
		return nil, tw.Error()
	}

	f, err = zw.Create(fmt.Sprintf("transactions_%s.csv", stamp))
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(txBuf.Bytes()); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("portfolio_%s.zip", stamp),
		ContentType: "application/zip",
		Data:        buf.Bytes(),
	}, nil
}

func exportJSON(fields []string, rows [][]string, executions []*domain.Execution, stamp string) (*ExportResult, error) {
	positions := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(fields))
		for i, f := range fields {
			obj[f] = row[i]
		}
		positions = append(positions, obj)
	}

	payload := map[string]any{"positions": positions}
	if executions != nil {
		txs := make([]map[string]string, 0, len(executions))
		for _, row := range transactionRows(executions) {
			obj := make(map[string]string, len(transactionHeader))
			for i, h := range transactionHeader {
				obj[h] = row[i]
			}
			txs = append(txs, obj)
		}
		payload["transactions"] = txs
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("portfolio_%s.json", stamp),
		ContentType: "application/json",
		Data:        data,
	}, nil
}

func exportXLSX(fields []string, rows [][]string, executions []*domain.Execution, stamp string) (*ExportResult, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Portfolio"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := writeSheet(f, sheet, headerRow(fields), rows); err != nil {
		return nil, err
	}

	if executions != nil {
		const txSheet = "Transactions"
		if _, err := f.NewSheet(txSheet); err != nil {
			return nil, err
		}
		if err := writeSheet(f, txSheet, transactionHeader, transactionRows(executions)); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("portfolio_%s.xlsx", stamp),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	for col, h := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
