package utils

import (
	"fmt"
	"lexorial/config"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail sends an HTML email through SendGrid. Without an API key the
// email is logged and dropped.
func SendEmail(to, subject, htmlBody string) error {
	cfg := config.AppConfig
	if cfg.SendGridAPIKey == "" {
		log.Printf("Email to %s skipped (SENDGRID_API_KEY not set): %s", to, subject)
		return nil
	}

	from := mail.NewEmail("Lexorial", cfg.EmailSender)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), "", htmlBody)

	resp, err := sendgrid.NewSendClient(cfg.SendGridAPIKey).Send(message)
	if err != nil {
		log.Printf("Error sending email to %s: %v", to, err)
		return err
	}
	if resp.StatusCode >= 300 {
		log.Printf("SendGrid rejected email to %s: %d %s", to, resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid status %d", resp.StatusCode)
	}
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: Helvetica, Arial, sans-serif; background-color: #F4F6FB; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1F3A93; padding: 24px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 22px; }
			.content { padding: 32px 28px; color: #1B1B1B; line-height: 1.6; }
			.footer { background-color: #F4F6FB; padding: 16px; text-align: center; font-size: 12px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>LEXORIAL</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">You are receiving this because you are learning on Lexorial.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// SendLevelUpEmail congratulates a learner on finishing a level. Sent async.
func SendLevelUpEmail(email string, finishedLevel, newLevel int) {
	if email == "" || config.AppConfig.SendGridAPIKey == "" {
		return
	}
	subject := fmt.Sprintf("Level %d complete!", finishedLevel)
	body := fmt.Sprintf(`
		<p>Great work! You finished every lesson of level <strong>%d</strong>.</p>
		<p>Level <strong>%d</strong> is now unlocked.</p>
	`, finishedLevel, newLevel)

	go SendEmail(email, subject, getEmailTemplate("Level up", body))
}
