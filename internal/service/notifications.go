package service

import (
	"fmt"
	"html"
	"time"
)

const (
	welcomeSubject   = "Welcome to Our Portfolio!"
	resetCodeSubject = "Password Reset Code"
)

func welcomeBody(username string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #c15f3c;">Welcome to Our Portfolio!</h1>
  <p>Dear %s,</p>
  <p>Thank you for joining our community! We're excited to have you on board.</p>
  <p>Feel free to explore our projects and reach out if you have any questions.</p>
  <p>Best regards,<br>The Portfolio Team</p>
</div>`, html.EscapeString(username))
}

func resetCodeBody(code string, ttl time.Duration) string {
	return fmt.Sprintf(`<p>Your verification code is: <strong>%s</strong></p>
<p>This code will expire in %d minutes.</p>`, html.EscapeString(code), int(ttl.Minutes()))
}
