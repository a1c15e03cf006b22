// Package templates holds the HTML bodies of outbound mail.
package templates

import (
	"fmt"
	"html"
)

// RenderRingAlertEmail generates the HTML body of the fallback "someone is
// at the door" mail. The address is HTML-escaped before interpolation.
func RenderRingAlertEmail(address string) string {
	safeAddress := html.EscapeString(address)

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>Doorbell</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f4f7; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background-color: #2d6a4f; padding: 32px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 22px; font-weight: 700; }
    .content { padding: 32px 30px; color: #333; line-height: 1.6; font-size: 15px; }
    .footer { padding: 24px 30px; text-align: center; color: #8a8a8a; font-size: 12px; border-top: 1px solid #eee; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Someone is at the door</h1>
    </div>
    <div class="content">
      <p>Someone rang the doorbell at <strong>%s</strong>.</p>
      <p>Open the app to answer. The open button stays available for a short while after each ring.</p>
    </div>
    <div class="footer">
      <p>You received this mail because none of your devices could be reached with a push notification.</p>
    </div>
  </div>
</body>
</html>`, safeAddress)
}
