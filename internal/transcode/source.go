package transcode

import (
	"net/url"
	"strings"
)

// NormalizeSource rewrites sharing-service links into a form the transcoder
// can stream directly. Other locators are returned unchanged.
func NormalizeSource(locator string) string {
	locator = strings.TrimSpace(locator)

	u, err := url.Parse(locator)
	if err != nil || u.Host == "" {
		return locator
	}

	switch strings.ToLower(u.Host) {
	case "drive.google.com":
		if id := driveFileID(u); id != "" {
			return "https://drive.google.com/uc?export=download&id=" + url.QueryEscape(id)
		}
	case "www.dropbox.com", "dropbox.com":
		q := u.Query()
		q.Set("dl", "1")
		u.RawQuery = q.Encode()
		return u.String()
	}

	return locator
}

// driveFileID extracts the id from /file/d/<id>/view and /open?id=<id> links.
func driveFileID(u *url.URL) string {
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "file" && parts[i+1] == "d" {
			return parts[i+2]
		}
	}
	return u.Query().Get("id")
}
