package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"github.com/phamluong43-design/quan-ly-chung-thu-so/models"
)

var excelColumns = []string{"serialNumber", "certificateName", "email", "unitName", "issueDate", "expiryDate", "status"}

// importExcel reads the first sheet of an uploaded workbook and inserts one
// certificate per row. Rows without a serial number and rows whose serial
// already exists are skipped, not errors.
func (h *CertificateHandler) importExcel(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Không có file được upload"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Không đọc được file upload"})
	}
	defer file.Close()

	wb, err := excelize.OpenReader(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File không phải định dạng Excel hợp lệ"})
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File Excel rỗng hoặc không có dữ liệu"})
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil || len(rows) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File Excel rỗng hoặc không có dữ liệu"})
	}

	cols := headerIndex(rows[0])
	if _, ok := cols["serialnumber"]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Thiếu cột serialNumber trong file Excel"})
	}

	imported, skipped := 0, 0
	for _, row := range rows[1:] {
		cert, err := rowToCertificate(row, cols)
		if err != nil || cert.SerialNumber == "" {
			skipped++
			continue
		}
		if err := h.store.Create(cert); err != nil {
			if errors.Is(err, models.ErrDuplicateSerial) || errors.Is(err, models.ErrInvalidCertificate) || errors.Is(err, models.ErrInvalidStatus) {
				skipped++
				continue
			}
			h.log.WithError(err).Error("excel import failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi import: " + err.Error()})
		}
		imported++
	}

	return c.JSON(fiber.Map{
		"message":  fmt.Sprintf("Import thành công %d bản ghi! Bỏ qua %d dòng (trùng hoặc thiếu dữ liệu).", imported, skipped),
		"imported": imported,
		"skipped":  skipped,
	})
}

// exportExcel writes every certificate to a single-sheet workbook.
func (h *CertificateHandler) exportExcel(c *fiber.Ctx) error {
	certs, err := h.store.All()
	if err != nil {
		h.log.WithError(err).Error("failed to load certificates for export")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server khi xuất danh sách chứng thư"})
	}

	wb := excelize.NewFile()
	defer wb.Close()
	sheet := wb.GetSheetName(0)

	writeRow := func(row int, values []interface{}) error {
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := wb.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	}

	header := make([]interface{}, len(excelColumns))
	for i, name := range excelColumns {
		header[i] = name
	}
	err = writeRow(1, header)
	for r := 0; err == nil && r < len(certs); r++ {
		cert := certs[r]
		err = writeRow(r+2, []interface{}{
			cert.SerialNumber,
			cert.CertificateName,
			cert.Email,
			cert.UnitName,
			formatDate(cert.IssueDate),
			formatDate(cert.ExpiryDate),
			cert.Status,
		})
	}
	if err != nil {
		h.log.WithError(err).Error("failed to build export workbook")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server khi xuất file Excel"})
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		h.log.WithError(err).Error("failed to build export workbook")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server khi xuất file Excel"})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="certificates.xlsx"`)
	return c.Send(buf.Bytes())
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func rowToCertificate(row []string, cols map[string]int) (*models.Certificate, error) {
	get := func(name string) string {
		i, ok := cols[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	issue, err := parseDate(get("issueDate"))
	if err != nil {
		return nil, err
	}
	expiry, err := parseDate(get("expiryDate"))
	if err != nil {
		return nil, err
	}
	status := get("status")
	if status == "" {
		status = models.StatusActive
	}
	return &models.Certificate{
		SerialNumber:    get("serialNumber"),
		CertificateName: get("certificateName"),
		Email:           get("email"),
		UnitName:        get("unitName"),
		IssueDate:       issue,
		ExpiryDate:      expiry,
		Status:          status,
	}, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
