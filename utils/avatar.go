package utils

import (
	"fmt"
	"net/url"
)

// DefaultAvatarURL builds an initials avatar for records created without an
// image.
func DefaultAvatarURL(name string) string {
	return fmt.Sprintf(
		"https://api.dicebear.com/9.x/initials/png?seed=%s&backgroundColor=b6e3f4,c0aede,d1d4f9",
		url.QueryEscape(name),
	)
}
