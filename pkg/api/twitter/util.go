package twitter

import (
	"fmt"
	"strings"

	"github.com/VAIOT/lottery-backend/pkg/api"
)

// IsRateLimit detects the twitter rate-limit signal, either as a plain 429
// or as the legacy error code 88 inside the body.
func IsRateLimit(resp *api.Response) bool {
	if resp.Code == 429 {
		return true
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return false
	}

	errs, err := body.Get("errors")
	if err != nil {
		return false
	}

	aErrs, ok := errs.([]any)
	if !ok {
		return false
	}

	for i := range aErrs {
		if m, ok := aErrs[i].(map[string]any); ok {
			if code, err := api.JSON(m).GetInt("code"); err == nil && code == 88 {
				return true
			}
		}
	}

	return false
}

// ParsePostID extracts the tweet id from a post URL of the form
// twitter.com/<user>/status/<id>.
func ParsePostID(postURL string) (string, error) {
	parts := strings.Split(postURL, "/")
	for i, part := range parts {
		if (part == "status" || part == "statuses") && i+1 < len(parts) {
			id, _, _ := strings.Cut(parts[i+1], "?")
			if id != "" {
				return id, nil
			}
		}
	}

	return "", fmt.Errorf("not found post id in %s", postURL)
}

func trimHandle(screenName string) string {
	return strings.TrimPrefix(screenName, "@")
}
