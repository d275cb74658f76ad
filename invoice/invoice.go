// Package invoice renders sales invoices and repair quotes as .xlsx
// workbooks branded with the store info.
package invoice

import (
	"fmt"
	"os"
	"path/filepath"

	"bitbucket.org/iberryms/repairshop_backend/models"
	"github.com/xuri/excelize/v2"
)

const sheet = "Sheet1"

// Renderer writes emitted documents into OutDir. It satisfies
// checkout.DocumentEmitter.
type Renderer struct {
	OutDir string
}

func NewRenderer() *Renderer {
	dir := os.Getenv("INVOICE_DIR")
	if dir == "" {
		dir = "invoices"
	}
	return &Renderer{OutDir: dir}
}

func (r *Renderer) EmitSaleInvoice(sale models.Sale, lines []models.CartLine, info models.StoreInfo, payment models.PaymentMethod) error {
	f, err := r.RenderSaleInvoice(sale, lines, info, payment)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
		return err
	}
	return f.SaveAs(filepath.Join(r.OutDir, "Invoice_"+sale.ID+".xlsx"))
}

// RenderSaleInvoice builds the invoice workbook. Quantities come from the
// cart lines; when called for an already-persisted sale (no cart available)
// pass lines built from the sale items with quantity one.
func (r *Renderer) RenderSaleInvoice(sale models.Sale, lines []models.CartLine, info models.StoreInfo, payment models.PaymentMethod) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(sheet); err != nil {
		f.Close()
		return nil, err
	}

	f.SetCellValue(sheet, "A1", info.Name)
	f.SetCellValue(sheet, "A2", info.Address)
	f.SetCellValue(sheet, "A3", fmt.Sprintf("Phone: %s | Email: %s", info.Phone, info.Email))

	f.SetCellValue(sheet, "A5", "INVOICE TO:")
	f.SetCellValue(sheet, "B5", sale.CustomerName)
	f.SetCellValue(sheet, "A6", "INVOICE ID:")
	f.SetCellValue(sheet, "B6", sale.ID)
	f.SetCellValue(sheet, "A7", "DATE:")
	f.SetCellValue(sheet, "B7", sale.Date.Format("2006-01-02 15:04"))
	f.SetCellValue(sheet, "A8", "PAYMENT:")
	f.SetCellValue(sheet, "B8", string(payment))

	// Line table
	f.SetCellValue(sheet, "A10", "TYPE")
	f.SetCellValue(sheet, "B10", "DESCRIPTION")
	f.SetCellValue(sheet, "C10", "QTY")
	f.SetCellValue(sheet, "D10", "UNIT PRICE")
	f.SetCellValue(sheet, "E10", "SUBTOTAL")

	row := 11
	for _, line := range lines {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), string(line.Kind))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), line.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), line.Qty())
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), "ZAR "+line.UnitPrice.StringFixed(2))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), "ZAR "+line.Subtotal().StringFixed(2))
		row++
	}

	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), "TOTAL AMOUNT")
	f.SetCellValue(sheet, fmt.Sprintf("E%d", row), "ZAR "+sale.Total.StringFixed(2))

	f.SetCellValue(sheet, fmt.Sprintf("A%d", row+2), "Thank you for choosing "+info.Name+"!")
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row+3), "Terms: Standard 3-month warranty applies to all repair labor and parts replaced.")

	return f, nil
}

// RenderRepairQuote builds a one-line quotation sheet for a repair job.
func (r *Renderer) RenderRepairQuote(rep models.Repair, info models.StoreInfo) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(sheet); err != nil {
		f.Close()
		return nil, err
	}

	f.SetCellValue(sheet, "A1", info.Name)
	f.SetCellValue(sheet, "A2", info.Address)
	f.SetCellValue(sheet, "A3", fmt.Sprintf("Phone: %s | Email: %s", info.Phone, info.Email))

	f.SetCellValue(sheet, "A5", "QUOTATION FOR:")
	f.SetCellValue(sheet, "B5", rep.CustomerName)
	f.SetCellValue(sheet, "A6", "DEVICE:")
	f.SetCellValue(sheet, "B6", rep.Model)
	f.SetCellValue(sheet, "A7", "IMEI/SERIAL:")
	f.SetCellValue(sheet, "B7", rep.Imei)
	f.SetCellValue(sheet, "A8", "REPORTED FAULT:")
	f.SetCellValue(sheet, "B8", rep.Fault)
	f.SetCellValue(sheet, "A9", "QUOTED PRICE:")
	f.SetCellValue(sheet, "B9", "ZAR "+rep.Price.StringFixed(2))
	f.SetCellValue(sheet, "A10", "STATUS:")
	f.SetCellValue(sheet, "B10", string(rep.Status))

	return f, nil
}
