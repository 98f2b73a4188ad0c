// Package report renders batch evaluation results as Excel compliance
// summaries for the finance archive.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/expense-compliance-agent/internal/models"
)

const sheetName = "报销合规审核"

// Writer produces compliance summary workbooks.
type Writer struct {
	companyName string
	logger      *zap.Logger
}

// NewWriter creates a report writer stamping each workbook with the
// company name.
func NewWriter(companyName string, logger *zap.Logger) *Writer {
	return &Writer{companyName: companyName, logger: logger}
}

// WriteBatchReport writes one evaluation result to outputPath. Rows
// keep the evaluation partition: compliant items first, then
// non-compliant ones with their reasons.
func (w *Writer) WriteBatchReport(result *models.BatchResult, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	w.setCell(f, "A1", w.companyName)
	w.setCell(f, "A2", "生成时间")
	w.setCell(f, "B2", time.Now().Format("2006-01-02 15:04:05"))

	headers := []string{"类别", "金额", "日期", "是否有发票", "合规", "原因"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		w.setCell(f, cell, h)
	}

	row := 5
	for _, verdict := range result.CompliantItems {
		w.writeVerdict(f, row, verdict)
		row++
	}
	for _, verdict := range result.NonCompliantItems {
		w.writeVerdict(f, row, verdict)
		row++
	}

	row++
	w.setCell(f, fmt.Sprintf("A%d", row), "报销项目总数")
	w.setCell(f, fmt.Sprintf("B%d", row), fmt.Sprintf("%d", result.ItemCount))
	row++
	w.setCell(f, fmt.Sprintf("A%d", row), "合规项目数")
	w.setCell(f, fmt.Sprintf("B%d", row), fmt.Sprintf("%d", result.CompliantCount))
	row++
	w.setCell(f, fmt.Sprintf("A%d", row), "合规报销总金额")
	w.setCell(f, fmt.Sprintf("B%d", row), fmt.Sprintf("%.2f", result.CompliantTotal))
	row++
	w.setCell(f, fmt.Sprintf("A%d", row), "大写金额")
	w.setCell(f, fmt.Sprintf("B%d", row), amountToChinese(result.CompliantTotal))

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	w.logger.Info("Compliance report written",
		zap.String("output_path", outputPath),
		zap.Int("item_count", result.ItemCount))
	return nil
}

func (w *Writer) writeVerdict(f *excelize.File, row int, verdict models.ComplianceVerdict) {
	compliance := "合规"
	if !verdict.Compliant {
		compliance = "不合规"
	}

	w.setCell(f, fmt.Sprintf("A%d", row), string(verdict.Category))
	w.setCell(f, fmt.Sprintf("B%d", row), fmt.Sprintf("%.2f", verdict.Amount))
	w.setCell(f, fmt.Sprintf("C%d", row), verdict.Date)
	w.setCell(f, fmt.Sprintf("D%d", row), invoiceLabel(verdict.HasInvoice))
	w.setCell(f, fmt.Sprintf("E%d", row), compliance)
	w.setCell(f, fmt.Sprintf("F%d", row), strings.Join(verdict.Reasons, "；"))
}

func (w *Writer) setCell(f *excelize.File, cell, value string) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		w.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func invoiceLabel(hasInvoice bool) string {
	if hasInvoice {
		return "有"
	}
	return "无"
}

var (
	chineseDigits = []string{"零", "壹", "贰", "叁", "肆", "伍", "陆", "柒", "捌", "玖"}
	chineseUnits  = []string{"", "拾", "佰", "仟"}
	chineseGroups = []string{"", "万", "亿"}
)

// amountToChinese renders an amount in Chinese capital form, 角 and 分
// included, as finance vouchers require.
func amountToChinese(amount float64) string {
	if amount == 0 {
		return "零元整"
	}

	cents := int64(amount*100 + 0.5)
	yuan := cents / 100
	jiao := (cents / 10) % 10
	fen := cents % 10

	result := ""
	if yuan == 0 {
		result = "零"
	} else {
		result = integerToChinese(yuan)
	}
	result += "元"

	if jiao == 0 && fen == 0 {
		return result + "整"
	}
	if jiao != 0 {
		result += chineseDigits[jiao] + "角"
	}
	if fen != 0 {
		if jiao == 0 {
			result += "零"
		}
		result += chineseDigits[fen] + "分"
	}
	return result
}

// integerToChinese converts a positive integer, grouping by four
// digits with 万/亿 markers.
func integerToChinese(num int64) string {
	var groups []int64
	for num > 0 {
		groups = append(groups, num%10000)
		num /= 10000
	}

	result := ""
	for gi := len(groups) - 1; gi >= 0; gi-- {
		group := groups[gi]
		if group == 0 {
			if result != "" && !strings.HasSuffix(result, chineseDigits[0]) {
				result += chineseDigits[0]
			}
			continue
		}

		part := ""
		lastZero := false
		for ui := 3; ui >= 0; ui-- {
			digit := group / pow10(ui) % 10
			if digit == 0 {
				if part != "" {
					lastZero = true
				}
				continue
			}
			if lastZero {
				part += chineseDigits[0]
				lastZero = false
			}
			part += chineseDigits[digit] + chineseUnits[ui]
		}

		result += part + chineseGroups[gi]
	}

	return strings.TrimSuffix(result, chineseDigits[0])
}

func pow10(n int) int64 {
	result := int64(1)
	for i := 0; i < n; i++ {
		result *= 10
	}
	return result
}
