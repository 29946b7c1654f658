package twitter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"ASongADay/internal/domain"
)

type timelineResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
}

// HistoryPage reads one page of the account's own posts.
func (c *Client) HistoryPage(ctx context.Context, accessToken, cursor string, pageSize int) (domain.HistoryPage, error) {
	if c.userID == "" {
		return domain.HistoryPage{}, fmt.Errorf("twitter user id is not configured")
	}

	query := url.Values{}
	query.Set("max_results", strconv.Itoa(pageSize))
	if cursor != "" {
		query.Set("pagination_token", cursor)
	}
	endpoint := fmt.Sprintf("%s/2/users/%s/tweets?%s", c.baseURL, url.PathEscape(c.userID), query.Encode())

	req, err := newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.HistoryPage{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var resp timelineResponse
	if err := c.do(req, "history", isOK, &resp); err != nil {
		return domain.HistoryPage{}, err
	}

	page := domain.HistoryPage{NextToken: resp.Meta.NextToken}
	for _, t := range resp.Data {
		page.Records = append(page.Records, domain.PublicationRecord{ID: t.ID, Text: t.Text})
	}
	return page, nil
}
