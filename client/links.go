// File: waymate/client/links.go
package client

import (
	"fmt"
	"net/url"
	"strings"

	"waymate/models"
)

// NavigateURL builds a Google Maps directions link to the traveler's last
// reported position.
func NavigateURL(t *models.Traveller) string {
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%f,%f", t.Latitude, t.Longitude)
}

// CallURI builds a tel: link for the traveler's phone number, or an empty
// string when no number is on file.
func CallURI(phone string) string {
	cleaned := strings.TrimSpace(phone)
	if cleaned == "" {
		return ""
	}
	return "tel:" + url.PathEscape(cleaned)
}
