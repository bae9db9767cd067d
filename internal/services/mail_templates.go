package services

import "fmt"

func welcomeBody(email string) string {
	return fmt.Sprintf(
		`<p>Welcome! Your account has been created with email id: <b>%s</b></p>`,
		email)
}

func verifyOTPBody(code, email string) string {
	return fmt.Sprintf(
		`<h2>Verify your email</h2>
<p>Your verification code for <b>%s</b> is:</p>
<p style="font-size:24px;letter-spacing:4px"><b>%s</b></p>
<p>The code is valid for 24 hours.</p>`,
		email, code)
}

func resetOTPBody(code, email string) string {
	return fmt.Sprintf(
		`<h2>Password reset</h2>
<p>Your password reset code for <b>%s</b> is:</p>
<p style="font-size:24px;letter-spacing:4px"><b>%s</b></p>
<p>The code is valid for 15 minutes.</p>`,
		email, code)
}
