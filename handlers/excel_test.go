package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/phamluong43-design/quan-ly-chung-thu-so/models"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()
	sheet := wb.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name failed: %v", err)
			}
			if err := wb.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell failed: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		t.Fatalf("workbook write failed: %v", err)
	}
	return buf.Bytes()
}

func TestImportExcel(t *testing.T) {
	app, store, _ := newTestApp(t)

	existing := handlerTestNow.AddDate(0, 0, 30)
	if err := store.Create(&models.Certificate{SerialNumber: "SN-DUP", ExpiryDate: &existing}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	data := buildWorkbook(t, [][]interface{}{
		{"serialNumber", "certificateName", "email", "unitName", "issueDate", "expiryDate", "status"},
		{"SN-NEW-1", "Nguyễn Văn A", "a@example.com", "Phòng CNTT", "2024-06-01", "2025-06-01", "active"},
		{"SN-NEW-2", "Trần Thị B", "b@example.com", "", "", "2025-12-01", ""},
		{"SN-DUP", "Trùng serial", "dup@example.com", "", "", "2025-12-01", "active"},
		{"", "Thiếu serial", "c@example.com", "", "", "", ""},
	})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "certs.xlsx")
	if err != nil {
		t.Fatalf("form file failed: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/certificates/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("failed to perform request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var result struct {
		Imported int `json:"imported"`
		Skipped  int `json:"skipped"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 2 {
		t.Fatalf("expected imported=2 skipped=2, got %+v", result)
	}

	cert, err := store.BySerial("SN-NEW-1")
	if err != nil {
		t.Fatalf("imported row missing: %v", err)
	}
	if cert.Email != "a@example.com" || cert.ExpiryDate == nil || cert.ExpiryDate.Format("2006-01-02") != "2025-06-01" {
		t.Fatalf("imported fields wrong: %+v", cert)
	}
	if cert.Status != models.StatusActive {
		t.Fatalf("expected status active, got %q", cert.Status)
	}
}

func TestImportExcelWithoutFile(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/certificates/import", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("failed to perform request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestImportExcelMissingSerialColumn(t *testing.T) {
	app, _, _ := newTestApp(t)

	data := buildWorkbook(t, [][]interface{}{
		{"name", "email"},
		{"A", "a@example.com"},
	})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "certs.xlsx")
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/certificates/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("failed to perform request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestExportExcel(t *testing.T) {
	app, store, _ := newTestApp(t)

	expiry := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := store.Create(&models.Certificate{SerialNumber: "SN-1", CertificateName: "Nguyễn Văn A", Email: "a@example.com", ExpiryDate: &expiry}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/certificates/export", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("failed to perform request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("wrong content type: %s", ct)
	}

	wb, err := excelize.OpenReader(resp.Body)
	if err != nil {
		t.Fatalf("exported file not a workbook: %v", err)
	}
	defer wb.Close()
	rows, err := wb.GetRows(wb.GetSheetName(0))
	if err != nil {
		t.Fatalf("read rows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if rows[1][0] != "SN-1" {
		t.Fatalf("expected serial in first column, got %v", rows[1])
	}
}
