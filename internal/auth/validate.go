package auth

import "regexp"

var (
	// mobilePattern accepts 11-digit mainland mobile numbers.
	mobilePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)
	// passwordPattern accepts 8-20 alphanumeric characters.
	passwordPattern = regexp.MustCompile(`^[0-9A-Za-z]{8,20}$`)
)

// ValidMobile reports whether the phone number has the accepted format.
func ValidMobile(mobile string) bool {
	return mobilePattern.MatchString(mobile)
}

// ValidPassword reports whether the password has the accepted format.
func ValidPassword(password string) bool {
	return passwordPattern.MatchString(password)
}
