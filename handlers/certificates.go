package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/phamluong43-design/quan-ly-chung-thu-so/models"
	"github.com/phamluong43-design/quan-ly-chung-thu-so/notify"
)

type CertificateHandler struct {
	store         *models.CertificateStore
	service       *notify.Service
	window        notify.Window
	manualTimeout time.Duration
	log           *logrus.Logger
}

func NewCertificateHandler(store *models.CertificateStore, service *notify.Service, window notify.Window, manualTimeout time.Duration, log *logrus.Logger) *CertificateHandler {
	return &CertificateHandler{
		store:         store,
		service:       service,
		window:        window,
		manualTimeout: manualTimeout,
		log:           log,
	}
}

func RegisterCertificates(app *fiber.App, h *CertificateHandler, auth fiber.Handler) {
	grp := app.Group("/api/certificates", auth)
	grp.Get("/", h.list)
	grp.Post("/", h.create)
	grp.Put("/:id", h.update)
	grp.Delete("/:id", h.delete)
	grp.Post("/import", h.importExcel)
	grp.Get("/export", h.exportExcel)
	grp.Post("/renew/:id", h.renew)
	grp.Get("/trigger-warning-now", h.triggerWarning)
}

type certificateInput struct {
	SerialNumber    string `json:"serialNumber"`
	CertificateName string `json:"certificateName"`
	Email           string `json:"email"`
	UnitName        string `json:"unitName"`
	IssueDate       string `json:"issueDate"`
	ExpiryDate      string `json:"expiryDate"`
	Status          string `json:"status"`
}

func (in *certificateInput) toModel() (*models.Certificate, error) {
	issue, err := parseDate(in.IssueDate)
	if err != nil {
		return nil, err
	}
	expiry, err := parseDate(in.ExpiryDate)
	if err != nil {
		return nil, err
	}
	return &models.Certificate{
		SerialNumber:    in.SerialNumber,
		CertificateName: in.CertificateName,
		Email:           in.Email,
		UnitName:        in.UnitName,
		IssueDate:       issue,
		ExpiryDate:      expiry,
		Status:          in.Status,
	}, nil
}

// parseDate accepts YYYY-MM-DD or the vi-VN DD/MM/YYYY form. Empty input
// means no date.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("invalid date: " + s)
}

func (h *CertificateHandler) list(c *fiber.Ctx) error {
	certs, err := h.store.All()
	if err != nil {
		h.log.WithError(err).Error("failed to list certificates")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi server khi lấy danh sách chứng thư"})
	}
	return c.JSON(certs)
}

func (h *CertificateHandler) create(c *fiber.Ctx) error {
	var in certificateInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	cert, err := in.toModel()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.store.Create(cert); err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateSerial):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Serial Number đã tồn tại. Vui lòng dùng giá trị khác!"})
		case errors.Is(err, models.ErrInvalidCertificate), errors.Is(err, models.ErrInvalidStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		h.log.WithError(err).Error("failed to create certificate")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi khi thêm chứng thư"})
	}
	return c.Status(fiber.StatusCreated).JSON(cert)
}

func (h *CertificateHandler) update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	var in certificateInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	cert, err := in.toModel()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	cert.ID = id
	if err := h.store.Update(cert); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Không tìm thấy chứng thư"})
		case errors.Is(err, models.ErrDuplicateSerial):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Serial Number đã tồn tại. Vui lòng dùng giá trị khác!"})
		case errors.Is(err, models.ErrInvalidCertificate), errors.Is(err, models.ErrInvalidStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		h.log.WithError(err).Error("failed to update certificate")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi khi cập nhật"})
	}
	return c.JSON(fiber.Map{"message": "Cập nhật thành công"})
}

func (h *CertificateHandler) delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Không tìm thấy chứng thư"})
		}
		h.log.WithError(err).Error("failed to delete certificate")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi khi xóa"})
	}
	return c.JSON(fiber.Map{"message": "Xóa thành công"})
}

func (h *CertificateHandler) renew(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	res, err := h.service.Renew(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Không tìm thấy chứng thư"})
		case errors.Is(err, models.ErrNoExpiryDate):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Chứng thư không có ngày hết hạn để gia hạn"})
		}
		h.log.WithError(err).Error("failed to renew certificate")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi hệ thống khi gia hạn"})
	}
	return c.JSON(fiber.Map{
		"message":       "Gia hạn thành công",
		"newExpiryDate": res.NewExpiryDate.Format("2006-01-02"),
		"mailSent":      res.MailSent,
		"mailError":     res.MailError,
	})
}

func (h *CertificateHandler) triggerWarning(c *fiber.Ctx) error {
	ctx := context.Background()
	if h.manualTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.manualTimeout)
		defer cancel()
	}

	sum, err := h.service.RunScan(ctx, h.window, notify.ModeManual)
	if err != nil {
		switch {
		case errors.Is(err, notify.ErrScanBusy):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Đang có một phiên quét chạy, vui lòng thử lại sau"})
		case errors.Is(err, context.DeadlineExceeded) && sum != nil:
			// Timed out mid-run: report what completed.
			return c.JSON(fiber.Map{
				"message": "Quét bị dừng do quá thời gian, kết quả một phần",
				"partial": true,
				"summary": sum,
			})
		}
		h.log.WithError(err).Error("manual expiry scan failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Lỗi hệ thống khi gửi cảnh báo thủ công"})
	}
	return c.JSON(fiber.Map{
		"message": "Đã kiểm tra và gửi xong thông báo cảnh báo",
		"summary": sum,
	})
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
