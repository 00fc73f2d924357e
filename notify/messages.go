package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/phamluong43-design/quan-ly-chung-thu-so/mailer"
	"github.com/phamluong43-design/quan-ly-chung-thu-so/models"
)

// dateLayout is the vi-VN day-first date format used in all mail copy.
const dateLayout = "02/01/2006"

type messageData struct {
	Owner      string
	Serial     string
	DaysLeft   int
	ExpiryDate string
	SentAt     string
}

var warningText = template.Must(template.New("warning").Parse(`Kính gửi {{.Owner}},

Hệ thống Quản lý Chứng thư số (Thuế TP. Hải Phòng) thông báo:

Chứng thư số của Quý vị sẽ hết hạn trong {{.DaysLeft}} ngày nữa.

Thông tin chi tiết:
- Số serial chứng thư: {{.Serial}}
- Chủ thể / Đơn vị: {{.Owner}}
- Ngày hết hạn: {{.ExpiryDate}}

Việc chứng thư số hết hạn sẽ gây gián đoạn các thủ tục kê khai thuế điện tử (eTax), hóa đơn điện tử (TMS) và các giao dịch điện tử khác.

Quý vị vui lòng chủ động thực hiện gia hạn chứng thư số kịp thời trước ngày hết hạn.

Trân trọng thông báo!

Hệ thống Quản lý Chứng thư số
Thuế thành phố Hải Phòng`))

var warningHTML = htmltemplate.Must(htmltemplate.New("warning").Parse(`<div style="font-family: Arial, Helvetica, sans-serif; max-width: 650px; margin: 0 auto; padding: 25px; border: 1px solid #ccc; border-radius: 8px;">
  <h2 style="color: #c62828; text-align: center;">THÔNG BÁO CHỨNG THƯ SỐ SẮP HẾT HẠN</h2>
  <p>Kính gửi <strong>{{.Owner}}</strong>,</p>
  <p style="font-size: 18px; font-weight: bold; color: #c62828;">Chứng thư số của Quý vị sẽ hết hạn sau <u>{{.DaysLeft}} ngày</u>.</p>
  <table style="width: 100%; border-collapse: collapse; margin: 15px 0;">
    <tr><td style="padding: 10px; border: 1px solid #ddd;"><strong>Số serial:</strong></td><td style="padding: 10px; border: 1px solid #ddd;">{{.Serial}}</td></tr>
    <tr><td style="padding: 10px; border: 1px solid #ddd;"><strong>Chủ thể / Đơn vị:</strong></td><td style="padding: 10px; border: 1px solid #ddd;">{{.Owner}}</td></tr>
    <tr><td style="padding: 10px; border: 1px solid #ddd;"><strong>Ngày hết hạn:</strong></td><td style="padding: 10px; border: 1px solid #ddd;">{{.ExpiryDate}}</td></tr>
  </table>
  <p style="color: #c62828; font-weight: bold;">Vui lòng chủ động gia hạn ngay để tránh ảnh hưởng công việc!</p>
  <hr style="border: 0; border-top: 1px solid #eee;">
  <small style="color: #555;">Đây là email tự động từ Hệ thống Quản lý Chứng thư số - Thuế TP. Hải Phòng. Thời gian gửi: {{.SentAt}}</small>
</div>`))

var urgentText = template.Must(template.New("urgent").Parse(`Kính gửi {{.Owner}},

[THÔNG BÁO GỬI THỦ CÔNG - {{.SentAt}}]

Hệ thống phát hiện chứng thư số của Quý vị còn {{.DaysLeft}} ngày sẽ hết hạn.

Thông tin chi tiết:
- Số serial: {{.Serial}}
- Chủ thể / Đơn vị: {{.Owner}}
- Ngày hết hạn: {{.ExpiryDate}}

Việc hết hạn chứng thư số sẽ gây gián đoạn các thủ tục thuế điện tử (eTax, TMS, hóa đơn điện tử...).

Quý vị vui lòng chủ động gia hạn NGAY LẬP TỨC để tránh ảnh hưởng công việc.

Trân trọng,
Hệ thống Quản lý Chứng thư số
Thuế TP. Hải Phòng`))

var urgentHTML = htmltemplate.Must(htmltemplate.New("urgent").Parse(`<div style="font-family: Arial; padding: 20px; border: 2px solid #d32f2f; border-radius: 10px; background: #fff8f8; max-width: 600px;">
  <h2 style="color: #d32f2f; text-align: center;">CẢNH BÁO KHẨN - GỬI THỦ CÔNG</h2>
  <p><strong>Thời gian gửi:</strong> {{.SentAt}}</p>
  <p style="font-size: 18px; color: #d32f2f;">Chứng thư số của Quý vị còn <strong>{{.DaysLeft}} ngày</strong> sẽ hết hạn!</p>
  <ul style="line-height: 1.8;">
    <li><strong>Số serial:</strong> {{.Serial}}</li>
    <li><strong>Chủ thể / Đơn vị:</strong> {{.Owner}}</li>
    <li><strong>Ngày hết hạn:</strong> {{.ExpiryDate}}</li>
  </ul>
  <p style="font-size: 17px; font-weight: bold; color: #b71c1c;">Vui lòng chủ động gia hạn NGAY để tránh gián đoạn công việc!</p>
  <hr>
  <small style="color: #555;">Hệ thống Quản lý Chứng thư số - Thuế TP. Hải Phòng</small>
</div>`))

var renewalText = template.Must(template.New("renewal").Parse(`Kính gửi {{.Owner}},

Chứng thư số {{.Serial}} đã được gia hạn thành công.
Ngày hết hạn mới: {{.ExpiryDate}}

Cảm ơn quý vị đã sử dụng hệ thống!
Trân trọng,
Hệ thống Quản lý Chứng thư số - Thuế TP. Hải Phòng`))

var renewalHTML = htmltemplate.Must(htmltemplate.New("renewal").Parse(`<h3 style="color: #2e7d32;">XÁC NHẬN GIA HẠN THÀNH CÔNG</h3>
<p>Chứng thư số <strong>{{.Serial}}</strong> đã được gia hạn.</p>
<p>Ngày hết hạn mới: <strong>{{.ExpiryDate}}</strong></p>
<hr>
<small>Hệ thống Quản lý Chứng thư số - Thuế TP. Hải Phòng</small>`))

// warningMessage renders the expiry warning for a certificate. Scheduled
// runs use the standard copy; manual runs use the urgent copy.
func warningMessage(cert *models.Certificate, daysLeft int, now time.Time, urgent bool) (mailer.Message, error) {
	data := messageData{
		Owner:      cert.OwnerDisplay(),
		Serial:     cert.SerialNumber,
		DaysLeft:   daysLeft,
		ExpiryDate: cert.ExpiryDate.Format(dateLayout),
		SentAt:     now.Format("02/01/2006 15:04"),
	}

	textTmpl, htmlTmpl := warningText, warningHTML
	subject := fmt.Sprintf("THÔNG BÁO: Chứng thư số sắp hết hạn sau %d ngày - Vui lòng chủ động gia hạn", daysLeft)
	if urgent {
		textTmpl, htmlTmpl = urgentText, urgentHTML
		subject = fmt.Sprintf("CẢNH BÁO KHẨN: Chứng thư số còn %d ngày sẽ hết hạn - Vui lòng gia hạn NGAY!", daysLeft)
	}

	var text, html bytes.Buffer
	if err := textTmpl.Execute(&text, data); err != nil {
		return mailer.Message{}, fmt.Errorf("render warning text: %w", err)
	}
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return mailer.Message{}, fmt.Errorf("render warning html: %w", err)
	}
	return mailer.Message{
		To:      cert.Email,
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// renewalMessage renders the confirmation mail sent after a successful
// renewal. ExpiryDate must already hold the new date.
func renewalMessage(cert *models.Certificate) (mailer.Message, error) {
	data := messageData{
		Owner:      cert.OwnerDisplay(),
		Serial:     cert.SerialNumber,
		ExpiryDate: cert.ExpiryDate.Format(dateLayout),
	}

	var text, html bytes.Buffer
	if err := renewalText.Execute(&text, data); err != nil {
		return mailer.Message{}, fmt.Errorf("render renewal text: %w", err)
	}
	if err := renewalHTML.Execute(&html, data); err != nil {
		return mailer.Message{}, fmt.Errorf("render renewal html: %w", err)
	}
	return mailer.Message{
		To:      cert.Email,
		Subject: fmt.Sprintf("Xác nhận gia hạn thành công - Chứng thư số %s", cert.SerialNumber),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
