package posts

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/Michaelanand123singh/lostfound-client/internal/lostfound"
	"github.com/Michaelanand123singh/lostfound-client/internal/session"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// State is a snapshot of the post listing surface: the loaded page window,
// the currently open post, and its comments.
type State struct {
	Posts     []lostfound.Post
	Current   *lostfound.Post
	IsLoading bool
	Err       string

	Total   int
	Page    int
	Limit   int
	HasMore bool

	Filters lostfound.ListPostsParams

	Comments        []lostfound.Comment
	CommentsLoading bool
	CommentsErr     string
}

// Manager is the post list state container, the session container's sibling
// for the browsing surface. Like it, every action is a terminal error
// boundary.
type Manager struct {
	client   *lostfound.Client
	notifier session.Notifier

	mu        sync.Mutex
	state     State
	listeners []func(State)
}

func NewManager(client *lostfound.Client, notifier session.Notifier) *Manager {
	if notifier == nil {
		notifier = session.NopNotifier{}
	}
	return &Manager{client: client, notifier: notifier}
}

func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers a listener invoked with a snapshot after every state
// change.
func (m *Manager) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) setState(mutate func(*State)) {
	m.mu.Lock()
	mutate(&m.state)
	snapshot := m.state
	listeners := m.listeners
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

func (m *Manager) fail(err error, fallback string) {
	msg := lostfound.ErrorMessage(err, fallback)
	m.setState(func(s *State) {
		s.IsLoading = false
		s.Err = msg
	})
	m.notifier.Error(msg)
}

// FetchPosts loads one page of posts with the active filters. Page 1
// replaces the list; later pages append to it.
func (m *Manager) FetchPosts(ctx context.Context, page, limit int) {
	if page <= 0 {
		page = lostfound.DefaultPage
	}
	if limit <= 0 {
		limit = lostfound.DefaultLimit
	}

	m.mu.Lock()
	params := m.state.Filters
	m.mu.Unlock()
	params.Page = page
	params.Limit = limit

	m.setState(func(s *State) {
		s.IsLoading = true
		s.Err = ""
	})

	result, err := m.client.ListPosts(ctx, params)
	if err != nil {
		m.fail(err, "Failed to fetch posts")
		return
	}

	m.setState(func(s *State) {
		if page == 1 {
			s.Posts = result.Posts
		} else {
			s.Posts = append(s.Posts, result.Posts...)
		}
		s.Total = result.Total
		s.Page = result.Page
		s.Limit = result.Limit
		s.HasMore = result.HasNext
		s.IsLoading = false
	})
}

// FetchPost loads a single post as the current one.
func (m *Manager) FetchPost(ctx context.Context, id string) {
	m.setState(func(s *State) {
		s.IsLoading = true
		s.Err = ""
	})

	post, err := m.client.GetPost(ctx, id)
	if err != nil {
		m.fail(err, "Failed to fetch post")
		return
	}

	m.setState(func(s *State) {
		s.Current = post
		s.IsLoading = false
	})
}

// CreatePost uploads the given image files concurrently, then creates the
// post with the uploaded URLs prepended to the list. Upload failures are
// non-fatal: the post is created without the failed images.
func (m *Manager) CreatePost(ctx context.Context, data lostfound.CreatePostData, imagePaths []string) {
	m.setState(func(s *State) {
		s.IsLoading = true
		s.Err = ""
	})

	if len(imagePaths) > 0 {
		urls := m.uploadImages(ctx, imagePaths)
		data.Images = append(urls, data.Images...)
	}
	if data.Images == nil {
		data.Images = []string{}
	}

	post, err := m.client.CreatePost(ctx, data)
	if err != nil {
		m.fail(err, "Failed to create post")
		return
	}

	m.setState(func(s *State) {
		s.Posts = append([]lostfound.Post{*post}, s.Posts...)
		s.IsLoading = false
	})
	m.notifier.Success("Post created successfully!")
}

func (m *Manager) uploadImages(ctx context.Context, paths []string) []string {
	var mu sync.Mutex
	urls := make([]string, 0, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("failed to open image")
				return nil
			}
			defer f.Close()

			upload, err := m.client.UploadFile(ctx, filepath.Base(path), f)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("image upload failed")
				return nil
			}

			mu.Lock()
			urls = append(urls, upload.URL)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return urls
}

// UpdatePost updates a post and swaps the server's representation into the
// list and the current post.
func (m *Manager) UpdatePost(ctx context.Context, id string, data lostfound.UpdatePostData) {
	m.setState(func(s *State) {
		s.IsLoading = true
		s.Err = ""
	})

	post, err := m.client.UpdatePost(ctx, id, data)
	if err != nil {
		m.fail(err, "Failed to update post")
		return
	}

	m.setState(func(s *State) {
		for i := range s.Posts {
			if s.Posts[i].ID == id {
				s.Posts[i] = *post
			}
		}
		if s.Current != nil && s.Current.ID == id {
			s.Current = post
		}
		s.IsLoading = false
	})
	m.notifier.Success("Post updated successfully!")
}

// DeletePost removes a post from the backend and the local list.
func (m *Manager) DeletePost(ctx context.Context, id string) {
	m.setState(func(s *State) {
		s.IsLoading = true
		s.Err = ""
	})

	if err := m.client.DeletePost(ctx, id); err != nil {
		m.fail(err, "Failed to delete post")
		return
	}

	m.setState(func(s *State) {
		kept := s.Posts[:0]
		for _, p := range s.Posts {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		s.Posts = kept
		if s.Current != nil && s.Current.ID == id {
			s.Current = nil
		}
		s.IsLoading = false
	})
	m.notifier.Success("Post deleted successfully!")
}

// LikePost bumps the like count optimistically and rolls it back if the
// backend rejects the like.
func (m *Manager) LikePost(ctx context.Context, id string) {
	m.adjustLikes(id, 1)
	if err := m.client.LikePost(ctx, id); err != nil {
		log.Warn().Err(err).Str("postId", id).Msg("like failed, rolling back")
		m.adjustLikes(id, -1)
	}
}

// UnlikePost is the optimistic inverse of LikePost.
func (m *Manager) UnlikePost(ctx context.Context, id string) {
	m.adjustLikes(id, -1)
	if err := m.client.UnlikePost(ctx, id); err != nil {
		log.Warn().Err(err).Str("postId", id).Msg("unlike failed, rolling back")
		m.adjustLikes(id, 1)
	}
}

func (m *Manager) adjustLikes(id string, delta int) {
	m.setState(func(s *State) {
		for i := range s.Posts {
			if s.Posts[i].ID == id {
				s.Posts[i].Counts.Likes = max(0, s.Posts[i].Counts.Likes+delta)
			}
		}
		if s.Current != nil && s.Current.ID == id {
			s.Current.Counts.Likes = max(0, s.Current.Counts.Likes+delta)
		}
	})
}

// FetchComments loads one page of comments for a post. Page 1 replaces the
// list; later pages append.
func (m *Manager) FetchComments(ctx context.Context, postID string, page, limit int) {
	m.setState(func(s *State) {
		s.CommentsLoading = true
		s.CommentsErr = ""
	})

	result, err := m.client.ListComments(ctx, postID, page, limit)
	if err != nil {
		msg := lostfound.ErrorMessage(err, "Failed to fetch comments")
		m.setState(func(s *State) {
			s.CommentsLoading = false
			s.CommentsErr = msg
		})
		m.notifier.Error(msg)
		return
	}

	m.setState(func(s *State) {
		if page <= 1 {
			s.Comments = result.Comments
		} else {
			s.Comments = append(s.Comments, result.Comments...)
		}
		s.CommentsLoading = false
	})
}

// CreateComment adds a comment and bumps the current post's comment count.
func (m *Manager) CreateComment(ctx context.Context, postID string, data lostfound.CreateCommentData) {
	comment, err := m.client.CreateComment(ctx, postID, data)
	if err != nil {
		msg := lostfound.ErrorMessage(err, "Failed to create comment")
		m.setState(func(s *State) {
			s.CommentsErr = msg
		})
		m.notifier.Error(msg)
		return
	}

	m.setState(func(s *State) {
		s.Comments = append([]lostfound.Comment{*comment}, s.Comments...)
		if s.Current != nil && s.Current.ID == postID {
			s.Current.Counts.Comments++
		}
	})
	m.notifier.Success("Comment added successfully!")
}

// DeleteComment removes a comment and decrements the current post's count.
func (m *Manager) DeleteComment(ctx context.Context, postID, commentID string) {
	if err := m.client.DeleteComment(ctx, postID, commentID); err != nil {
		msg := lostfound.ErrorMessage(err, "Failed to delete comment")
		m.setState(func(s *State) {
			s.CommentsErr = msg
		})
		m.notifier.Error(msg)
		return
	}

	m.setState(func(s *State) {
		kept := s.Comments[:0]
		for _, c := range s.Comments {
			if c.ID != commentID {
				kept = append(kept, c)
			}
		}
		s.Comments = kept
		if s.Current != nil && s.Current.ID == postID {
			s.Current.Counts.Comments = max(0, s.Current.Counts.Comments-1)
		}
	})
	m.notifier.Success("Comment deleted successfully!")
}

// SetFilters replaces the active filters. The next FetchPosts applies them.
func (m *Manager) SetFilters(filters lostfound.ListPostsParams) {
	m.setState(func(s *State) {
		s.Filters = filters
	})
}

// ClearFilters resets all filters.
func (m *Manager) ClearFilters() {
	m.setState(func(s *State) {
		s.Filters = lostfound.ListPostsParams{}
	})
}

// ClearError resets the list error.
func (m *Manager) ClearError() {
	m.setState(func(s *State) {
		s.Err = ""
	})
}

// Reset returns the container to its initial empty state.
func (m *Manager) Reset() {
	m.setState(func(s *State) {
		*s = State{}
	})
}
