package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ASongADay/internal/domain"
)

type replySettings struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

type tweetPayload struct {
	Text  string         `json:"text"`
	Reply *replySettings `json:"reply,omitempty"`
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// Publish posts the text and returns the new post ID.
func (c *Client) Publish(ctx context.Context, accessToken string, post domain.Post) (string, error) {
	payload := tweetPayload{Text: post.Text}
	if post.ReplyTo != "" {
		payload.Reply = &replySettings{InReplyToTweetID: post.ReplyTo}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := newRequest(ctx, http.MethodPost, c.baseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	var resp tweetResponse
	if err := c.do(req, "publish", is2xx, &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("publish response without id")
	}
	return resp.Data.ID, nil
}
