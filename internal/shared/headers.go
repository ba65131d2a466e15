package shared

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// BrowserHeaders are the request headers copied out of a signed-in YouTube Music
// browser session ("Copy as cURL"). The proxy turns them into a browser.json auth file.
type BrowserHeaders struct {
	Headers map[string]string
	Cookie  string
}

var (
	headerFlag = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']+)'|"([^"]+)")`)
	cookieFlag = regexp.MustCompile(`(?:-b|--cookie)\s+(?:'([^']+)'|"([^"]+)")`)
)

// ReadBrowserHeaders reads a file holding a cURL command and extracts its headers.
func ReadBrowserHeaders(path string) (*BrowserHeaders, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}
	return ParseBrowserHeaders(string(content))
}

// ParseBrowserHeaders extracts headers and the cookie from a cURL command.
//
// A cookie passed with -b wins over a Cookie header.
func ParseBrowserHeaders(cmd string) (*BrowserHeaders, error) {
	cmd = strings.ReplaceAll(cmd, "\\\r\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")

	h := &BrowserHeaders{Headers: make(map[string]string)}

	for _, m := range headerFlag.FindAllStringSubmatch(cmd, -1) {
		key, value, ok := strings.Cut(firstGroup(m), ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if strings.EqualFold(key, "cookie") {
			h.Cookie = value
			continue
		}
		h.Headers[key] = value
	}

	if m := cookieFlag.FindStringSubmatch(cmd); m != nil {
		h.Cookie = firstGroup(m)
	}

	if len(h.Headers) == 0 && h.Cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}
	return h, nil
}

func firstGroup(m []string) string {
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

// Raw renders the headers as newline separated "Key: Value" lines, sorted by
// key, with the cookie last. This is the headers_raw format ytmusicapi expects.
func (h *BrowserHeaders) Raw() string {
	keys := make([]string, 0, len(h.Headers))
	for k := range h.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, h.Headers[k]))
	}
	if h.Cookie != "" {
		lines = append(lines, "cookie: "+h.Cookie)
	}
	return strings.Join(lines, "\n")
}
