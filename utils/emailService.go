package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"net/url"

	"qurotech/config"
)

// SendCertificateEmail notifies a holder that their certificate is ready.
// Best effort: skipped silently when no SMTP sender is configured.
func SendCertificateEmail(email, userName, internship, serial string) error {
	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password
	if from == "" || password == "" {
		return nil
	}

	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	to := []string{email}

	verifyURL := config.AppConfig.PublicBaseURL + "/certificates/verify?serial=" + url.QueryEscape(serial)

	subject := "Subject: Your Internship Certificate - QuroTech\nMIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"

	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
				<div style="max-width: 600px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px; box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);">
					<h2 style="color: #333333; text-align: center;">🏆 Certificate Issued</h2>
					<p style="font-size: 16px; color: #555555;">Dear %s,</p>
					<p style="font-size: 16px; color: #555555;">Congratulations on completing:</p>
					<h3 style="text-align: center; color: #4CAF50; margin: 20px 0;">%s</h3>
					<div style="background-color: #f8f9fa; border-radius: 8px; padding: 20px; margin: 20px 0; text-align: center;">
						<p style="font-size: 14px; color: #666666; margin-bottom: 10px;">Your Certificate Serial:</p>
						<h2 style="color: #2196F3; margin: 0;">%s</h2>
					</div>
					<p style="font-size: 14px; color: #666666;">Anyone can verify this certificate at <a href="%s">%s</a>.</p>
					<p style="text-align: center; font-size: 12px; color: #bbbbbb; margin-top: 20px;">QuroTech Team</p>
				</div>
			</body>
		</html>
	`, userName, internship, serial, verifyURL, verifyURL)

	message := []byte(subject + "\n" + body)
	auth := smtp.PlainAuth("", from, password, smtpHost)

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, message); err != nil {
		log.Printf("Error sending certificate email to %s: %v", email, err)
		return err
	}

	log.Println("Certificate email sent successfully to", email)
	return nil
}
