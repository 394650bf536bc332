package tracking

import (
	"fmt"
	"strings"
)

// PixelURL returns the fully-qualified tracking pixel URL for an email.
func PixelURL(baseURL, emailID string) string {
	return fmt.Sprintf("%s/p/%s.gif", strings.TrimRight(baseURL, "/"), emailID)
}

// LinkURL returns the fully-qualified tracked redirect URL for a link.
func LinkURL(baseURL, linkID string) string {
	return fmt.Sprintf("%s/l/%s", strings.TrimRight(baseURL, "/"), linkID)
}

// ImgTag returns a ready-to-embed HTML image tag for the pixel.
func ImgTag(pixelURL string) string {
	return fmt.Sprintf(`<img src="%s" width="1" height="1" style="display:none" alt="" />`, pixelURL)
}
