package lostfound

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
)

func (p ListPostsParams) queryParams() map[string]string {
	params := map[string]string{}
	if p.Page > 0 {
		params["page"] = strconv.Itoa(p.Page)
	}
	if p.Limit > 0 {
		params["limit"] = strconv.Itoa(p.Limit)
	}
	if p.Category != "" {
		params["category"] = p.Category
	}
	if p.Status != "" {
		params["status"] = p.Status
	}
	if p.Search != "" {
		params["search"] = p.Search
	}
	if p.Location != "" {
		params["location"] = p.Location
	}
	return params
}

// ListPosts fetches a page of posts matching the given filters.
func (c *Client) ListPosts(ctx context.Context, params ListPostsParams) (*PostPage, error) {
	env, err := c.call(ctx, http.MethodGet, "/posts", func(req *resty.Request) {
		req.SetQueryParams(params.queryParams())
	})
	if err != nil {
		return nil, err
	}
	return decodePostPage(env)
}

// GetPost fetches a single post by ID.
func (c *Client) GetPost(ctx context.Context, id string) (*Post, error) {
	env, err := c.call(ctx, http.MethodGet, "/posts/"+id, nil)
	if err != nil {
		return nil, err
	}
	return decodePost(env)
}

// CreatePost creates a post and returns the server's representation.
func (c *Client) CreatePost(ctx context.Context, data CreatePostData) (*Post, error) {
	env, err := c.call(ctx, http.MethodPost, "/posts", func(req *resty.Request) {
		req.SetBody(data)
	})
	if err != nil {
		return nil, err
	}
	return decodePost(env)
}

// UpdatePost updates a post and returns the server's representation.
func (c *Client) UpdatePost(ctx context.Context, id string, data UpdatePostData) (*Post, error) {
	env, err := c.call(ctx, http.MethodPut, "/posts/"+id, func(req *resty.Request) {
		req.SetBody(data)
	})
	if err != nil {
		return nil, err
	}
	return decodePost(env)
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	_, err := c.call(ctx, http.MethodDelete, "/posts/"+id, nil)
	return err
}

// LikePost adds the authenticated user's like to a post.
func (c *Client) LikePost(ctx context.Context, id string) error {
	_, err := c.call(ctx, http.MethodPost, "/posts/"+id+"/like", nil)
	return err
}

// UnlikePost removes the authenticated user's like from a post.
func (c *Client) UnlikePost(ctx context.Context, id string) error {
	_, err := c.call(ctx, http.MethodDelete, "/posts/"+id+"/like", nil)
	return err
}

// SearchPosts runs a free-text search over posts.
func (c *Client) SearchPosts(ctx context.Context, query string, page, limit int) (*PostPage, error) {
	env, err := c.call(ctx, http.MethodGet, "/search/posts", func(req *resty.Request) {
		req.SetQueryParam("q", query)
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

func decodePost(env *Envelope) (*Post, error) {
	var post Post
	if err := json.Unmarshal(env.Data, &post); err != nil {
		return nil, fmt.Errorf("failed to parse post: %w", err)
	}
	return &post, nil
}

func decodePostPage(env *Envelope) (*PostPage, error) {
	var page PostPage
	if err := json.Unmarshal(env.Data, &page); err != nil {
		return nil, fmt.Errorf("failed to parse post page: %w", err)
	}
	return &page, nil
}
