package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

// Lookup queries a vxtwitter-compatible API: GET <base>/<user>/status/<id>.
type Lookup struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type lookupResponse struct {
	MediaURLs []string `json:"mediaURLs"`
}

// NewLookup returns a Lookup allowing perSecond requests per second.
func NewLookup(baseURL string, httpClient *http.Client, perSecond float64) *Lookup {
	return &Lookup{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

func (l *Lookup) Media(ctx context.Context, author, postID, _ string) ([]string, error) {
	user := strings.TrimPrefix(author, "@")
	endpoint := fmt.Sprintf("%s/%s/status/%s", l.baseURL, url.PathEscape(user), url.PathEscape(postID))

	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookup, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrLookup, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrLookup, resp.StatusCode, endpoint)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrLookup, err)
	}

	return body.MediaURLs, nil
}
