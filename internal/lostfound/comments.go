package lostfound

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// ListComments fetches a page of comments for a post.
func (c *Client) ListComments(ctx context.Context, postID string, page, limit int) (*CommentPage, error) {
	env, err := c.call(ctx, http.MethodGet, "/posts/"+postID+"/comments", func(req *resty.Request) {
		if page > 0 {
			req.SetQueryParam("page", strconv.Itoa(page))
		}
		if limit > 0 {
			req.SetQueryParam("limit", strconv.Itoa(limit))
		}
	})
	if err != nil {
		return nil, err
	}

	var result CommentPage
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse comments: %w", err)
	}
	return &result, nil
}

// CreateComment adds a comment to a post.
func (c *Client) CreateComment(ctx context.Context, postID string, data CreateCommentData) (*Comment, error) {
	env, err := c.call(ctx, http.MethodPost, "/posts/"+postID+"/comments", func(req *resty.Request) {
		req.SetBody(data)
	})
	if err != nil {
		return nil, err
	}
	return decodeComment(env)
}

// UpdateComment replaces a comment's content.
func (c *Client) UpdateComment(ctx context.Context, postID, commentID, content string) (*Comment, error) {
	env, err := c.call(ctx, http.MethodPut, "/posts/"+postID+"/comments/"+commentID, func(req *resty.Request) {
		req.SetBody(map[string]string{"content": content})
	})
	if err != nil {
		return nil, err
	}
	return decodeComment(env)
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	_, err := c.call(ctx, http.MethodDelete, "/posts/"+postID+"/comments/"+commentID, nil)
	return err
}

// LikeComment adds the authenticated user's like to a comment.
func (c *Client) LikeComment(ctx context.Context, postID, commentID string) error {
	_, err := c.call(ctx, http.MethodPost, "/posts/"+postID+"/comments/"+commentID+"/like", nil)
	return err
}

// UnlikeComment removes the authenticated user's like from a comment.
func (c *Client) UnlikeComment(ctx context.Context, postID, commentID string) error {
	_, err := c.call(ctx, http.MethodDelete, "/posts/"+postID+"/comments/"+commentID+"/like", nil)
	return err
}

func decodeComment(env *Envelope) (*Comment, error) {
	var comment Comment
	if err := json.Unmarshal(env.Data, &comment); err != nil {
		return nil, fmt.Errorf("failed to parse comment: %w", err)
	}
	return &comment, nil
}
