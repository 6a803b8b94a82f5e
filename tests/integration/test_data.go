package integration

import (
	"fmt"
	"regexp"
	"time"
)

// TestUser generates unique test user credentials using a timestamp
func TestUser(suffix string) (email, password string) {
	ts := time.Now().UnixNano()
	email = fmt.Sprintf("test-%d-%s@example.com", ts, suffix)
	password = "TestPassword123!"
	return
}

var otpCodePattern = regexp.MustCompile(`\b(\d{6})\b`)

// ExtractCodeFromEmail extracts the 6-digit verification code from an email body
func ExtractCodeFromEmail(emailBody string) string {
	match := otpCodePattern.FindStringSubmatch(emailBody)
	if match == nil {
		return ""
	}
	return match[1]
}

var resetTokenPattern = regexp.MustCompile(`Reset token: (\S+)`)

// ExtractResetTokenFromEmail extracts the password reset token from an email body
func ExtractResetTokenFromEmail(emailBody string) string {
	match := resetTokenPattern.FindStringSubmatch(emailBody)
	if match == nil {
		return ""
	}
	return match[1]
}
