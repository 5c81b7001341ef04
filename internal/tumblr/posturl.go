package tumblr

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParsePostURL extracts the blog identifier and numeric post ID from a
// public post URL. Exactly two shapes are accepted:
//
//	https://<blog>.tumblr.com/post/<id>[/slug]
//	https://www.tumblr.com/<blog>/<id>[/slug]
//
// Anything else, including custom domains, is rejected with an error
// rather than guessed at.
func ParsePostURL(raw string) (string, int64, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, fmt.Errorf("invalid post URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", 0, fmt.Errorf("invalid post URL %q: unsupported scheme", raw)
	}

	segments := splitPath(u.Path)
	host := u.Hostname()

	var blog, idSegment string
	switch {
	case host == "www.tumblr.com" || host == "tumblr.com":
		if len(segments) < 2 {
			return "", 0, fmt.Errorf("invalid post URL %q: expected /<blog>/<id>", raw)
		}
		blog = segments[0]
		idSegment = segments[1]
	case strings.HasSuffix(host, ".tumblr.com"):
		if len(segments) < 2 || segments[0] != "post" {
			return "", 0, fmt.Errorf("invalid post URL %q: expected /post/<id>", raw)
		}
		blog = strings.TrimSuffix(host, ".tumblr.com")
		idSegment = segments[1]
	default:
		return "", 0, fmt.Errorf("invalid post URL %q: unsupported host %q", raw, host)
	}

	id, err := strconv.ParseInt(idSegment, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid post URL %q: post ID %q is not numeric", raw, idSegment)
	}

	return blog, id, nil
}

func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
