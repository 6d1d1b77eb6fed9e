// Utilities for lifting a browser session out of a "Copy as cURL" command.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	headerFlag = regexp.MustCompile(`(?:-H|--header)\s+'([^']+)'|(?:-H|--header)\s+"([^"]+)"`)
	cookieFlag = regexp.MustCompile(`(?:-b|--cookie)\s+'([^']+)'|(?:-b|--cookie)\s+"([^"]+)"`)
)

// sessionCookieNames are the cookies the feed endpoint needs to see an authenticated session.
var sessionCookieNames = []string{"sessionid", "csrftoken"}

// CurlHeaders represents parsed headers and cookies from a cURL command.
type CurlHeaders struct {
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts headers.
func ParseCurlFile(filepath string) (*CurlHeaders, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(string(content))
}

// ParseCurlCommand parses a cURL command string and extracts headers.
//
// The cookie comes from -b/--cookie when present, otherwise from a Cookie header.
// Cookie headers never appear in Headers.
func ParseCurlCommand(data string) (*CurlHeaders, error) {
	curlCmd := strings.ReplaceAll(data, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := make(map[string]string)
	var headerCookie string

	for _, match := range headerFlag.FindAllStringSubmatch(curlCmd, -1) {
		key, value, ok := strings.Cut(firstGroup(match), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if strings.EqualFold(key, "cookie") {
			if headerCookie == "" {
				headerCookie = value
			}
			continue
		}
		headers[key] = value
	}

	cookie := headerCookie
	if match := cookieFlag.FindStringSubmatch(curlCmd); match != nil {
		cookie = firstGroup(match)
	}

	if len(headers) == 0 && cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}

	return &CurlHeaders{Headers: headers, Cookie: cookie}, nil
}

// SessionCookie returns the session cookies (sessionid, csrftoken) as a Cookie header value.
//
// Falls back to the whole cookie string when none of the session cookies are present.
func (c *CurlHeaders) SessionCookie() string {
	var kept []string
	for _, pair := range strings.Split(c.Cookie, ";") {
		name, _, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		for _, want := range sessionCookieNames {
			if name == want {
				kept = append(kept, strings.TrimSpace(pair))
			}
		}
	}

	if len(kept) == 0 {
		return strings.TrimSpace(c.Cookie)
	}
	return strings.Join(kept, "; ")
}

// UserAgent returns the User-Agent header, matched case-insensitively.
func (c *CurlHeaders) UserAgent() string {
	for key, value := range c.Headers {
		if strings.EqualFold(key, "user-agent") {
			return value
		}
	}
	return ""
}

func firstGroup(match []string) string {
	if match[1] != "" {
		return match[1]
	}
	return match[2]
}
