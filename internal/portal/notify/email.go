package notify

import (
	"fmt"
	"html"
	"time"
)

// CodeEmailSubject is the subject line for login code mail.
const CodeEmailSubject = "Your FastLAN Login Code"

// CodeEmail renders the HTML body for a login code message. formattedCode
// already carries the display prefix (e.g. "FAST-0042").
func CodeEmail(recipientName, formattedCode string, ttl time.Duration) string {
	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif;">
  <h2>FastLAN Security Verification</h2>
  <p>Hello %s,</p>
  <p>A login attempt was detected for your account. Please enter the code below in the verification page:</p>
  <p style="font-size: 36px; font-weight: bold; letter-spacing: 3px;">%s</p>
  <p><strong>This code will expire in %d minutes.</strong></p>
  <p>If you did not attempt to login, please ignore this email or contact your administrator.</p>
  <hr>
  <p style="font-size: 12px; color: #666;">This is an automated message from FastLAN Employee Portal.</p>
</body>
</html>`,
		html.EscapeString(recipientName),
		html.EscapeString(formattedCode),
		int(ttl.Minutes()),
	)
}
