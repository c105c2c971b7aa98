package lostfound

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// GetUserProfile fetches another user's public profile.
func (c *Client) GetUserProfile(ctx context.Context, userID string) (*User, error) {
	env, err := c.call(ctx, http.MethodGet, "/users/"+userID, nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(env)
}

// GetUserPosts fetches a page of posts authored by the given user.
func (c *Client) GetUserPosts(ctx context.Context, userID string, page, limit int) (*PostPage, error) {
	env, err := c.call(ctx, http.MethodGet, "/users/"+userID+"/posts", func(req *resty.Request) {
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
	return decodePostPage(env)
}

// GetDashboardStats fetches the authenticated user's activity summary.
func (c *Client) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	env, err := c.call(ctx, http.MethodGet, "/dashboard/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats DashboardStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		return nil, fmt.Errorf("failed to parse dashboard stats: %w", err)
	}
	return &stats, nil
}

// GetMyPosts fetches the authenticated user's own posts, optionally filtered
// by status.
func (c *Client) GetMyPosts(ctx context.Context, page, limit int, status string) (*PostPage, error) {
	env, err := c.call(ctx, http.MethodGet, "/dashboard/posts", func(req *resty.Request) {
		if page > 0 {
			req.SetQueryParam("page", strconv.Itoa(page))
		}
		if limit > 0 {
			req.SetQueryParam("limit", strconv.Itoa(limit))
		}
		if status != "" {
			req.SetQueryParam("status", status)
		}
	})
	if err != nil {
		return nil, err
	}
	return decodePostPage(env)
}
