package fetch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// netscapeHeader marks the Netscape cookie file format.
const netscapeHeader = "# Netscape HTTP Cookie File"

// jarCookie is one cookie from either on-disk format.
type jarCookie struct {
	Domain  string `json:"domain"`
	Path    string `json:"path"`
	Secure  bool   `json:"secure"`
	Expires int64  `json:"expires"`
	Name    string `json:"name"`
	Value   string `json:"value"`
}

// LoadCookieJar reads an external cookie jar. Two formats are accepted:
// the Netscape tab-separated format and a JSON array of cookie objects.
// Expired cookies are dropped; a jar with no live cookies returns an
// empty jar, which callers treat as absent for auth gating.
func LoadCookieJar(path string, now time.Time) (http.CookieJar, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	var cookies []jarCookie
	if strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		if err := json.Unmarshal(data, &cookies); err != nil {
			return nil, 0, fmt.Errorf("parse json cookie jar: %w", err)
		}
	} else {
		cookies, err = parseNetscape(string(data))
		if err != nil {
			return nil, 0, err
		}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, 0, err
	}

	live := 0
	for _, c := range cookies {
		if c.Expires > 0 && time.Unix(c.Expires, 0).Before(now) {
			continue
		}
		host := strings.TrimPrefix(c.Domain, ".")
		if host == "" || c.Name == "" {
			continue
		}
		u := &url.URL{Scheme: "https", Host: host, Path: "/"}
		jar.SetCookies(u, []*http.Cookie{{
			Name:   c.Name,
			Value:  c.Value,
			Path:   c.Path,
			Domain: c.Domain,
			Secure: c.Secure,
		}})
		live++
	}
	return jar, live, nil
}

// parseNetscape parses the seven-field tab-separated Netscape format:
// domain, include-subdomains, path, secure, expires, name, value.
func parseNetscape(content string) ([]jarCookie, error) {
	if !strings.HasPrefix(content, netscapeHeader) {
		return nil, fmt.Errorf("unrecognised cookie jar format")
	}

	var cookies []jarCookie
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			continue
		}
		expires, _ := strconv.ParseInt(fields[4], 10, 64)
		cookies = append(cookies, jarCookie{
			Domain:  fields[0],
			Path:    fields[2],
			Secure:  strings.EqualFold(fields[3], "TRUE"),
			Expires: expires,
			Name:    fields[5],
			Value:   fields[6],
		})
	}
	return cookies, scanner.Err()
}
