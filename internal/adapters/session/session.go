package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/jjdiaconia/alpaca-paper-account-refresher/internal/domain"
)

const acceptHeader = "application/json, text/plain, */*"

var csrfMetaPattern = regexp.MustCompile(`<meta\s+name=["']csrf-token["']\s+content=["']([^"']+)["']`)

// Context carries an authenticated dashboard session: the cookies captured by
// the one-off browser login flow plus, once established, the CSRF token
// scraped from the dashboard page. It is built once per run and never
// persisted back.
type Context struct {
	cookies   map[string]string
	csrfToken string
}

type storageState struct {
	Cookies []storedCookie `json:"cookies"`
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Load reads a Playwright storage-state file and returns a session context
// holding its cookies. A missing, unreadable, or malformed file wraps
// domain.ErrAuthStateMissing: the operator has to re-run the login capture.
func Load(path string) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrAuthStateMissing, path, err)
	}

	var state storageState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrAuthStateMissing, path, err)
	}
	if len(state.Cookies) == 0 {
		return nil, fmt.Errorf("%w: %s contains no cookies", domain.ErrAuthStateMissing, path)
	}

	cookies := make(map[string]string, len(state.Cookies))
	for _, cookie := range state.Cookies {
		if cookie.Name == "" {
			continue
		}
		cookies[cookie.Name] = cookie.Value
	}

	return &Context{cookies: cookies}, nil
}

// EstablishCSRF fetches the given authenticated page once and extracts the
// csrf-token meta tag. An absent tag is not an error: some internal endpoints
// accept cookie auth alone, so callers proceed without the header. A failed
// page fetch is an error because it means the session itself is unusable.
func (c *Context) EstablishCSRF(ctx context.Context, client *http.Client, pageURL string) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fmt.Errorf("create dashboard request: %w", err)
	}
	c.Apply(request)

	response, err := client.Do(request)
	if err != nil {
		return fmt.Errorf("fetch dashboard page: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read dashboard page: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("fetch dashboard page: status %d", response.StatusCode)
	}

	if match := csrfMetaPattern.FindSubmatch(body); match != nil {
		c.csrfToken = string(match[1])
	}

	return nil
}

// Apply forwards every captured cookie verbatim and, when a CSRF token has
// been established, the X-CSRF-Token header.
func (c *Context) Apply(request *http.Request) {
	request.Header.Set("Accept", acceptHeader)
	if c.csrfToken != "" {
		request.Header.Set("X-CSRF-Token", c.csrfToken)
	}

	names := make([]string, 0, len(c.cookies))
	for name := range c.cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+c.cookies[name])
	}
	if len(pairs) > 0 {
		request.Header.Set("Cookie", strings.Join(pairs, "; "))
	}
}

func (c *Context) CSRFToken() string {
	return c.csrfToken
}
