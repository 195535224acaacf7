package github

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"
)

// MergedExternalPRCount counts merged pull requests the user authored in
// repositories they do not own.
func (c *Client) MergedExternalPRCount(ctx context.Context, username string) (int, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("author:%s is:pr is:merged -user:%s", username, username))
	q.Set("per_page", "1")

	data, _, err := c.get(ctx, c.APIURL+"/search/issues", q, acceptJSON)
	if err != nil {
		return 0, fmt.Errorf("search merged prs of %s: %w", username, err)
	}

	total := gjson.GetBytes(data, "total_count")
	if !total.Exists() {
		return 0, fmt.Errorf("search merged prs of %s: no total_count", username)
	}
	return int(total.Int()), nil
}
