package lostfound

import "encoding/json"

// Envelope is the response wrapper used by every backend endpoint.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// User is the profile as returned by the backend. The session layer caches
// the full object; the authoritative copy lives server-side.
type User struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	Username    string       `json:"username"`
	FirstName   string       `json:"firstName,omitempty"`
	LastName    string       `json:"lastName,omitempty"`
	Avatar      string       `json:"avatar,omitempty"`
	Bio         string       `json:"bio,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Location    *GeoLocation `json:"location,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
	Stats       *UserStats   `json:"stats,omitempty"`
	CreatedAt   string       `json:"createdAt,omitempty"`
	UpdatedAt   string       `json:"updatedAt,omitempty"`
}

type GeoLocation struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

type Preferences struct {
	EmailNotifications bool `json:"emailNotifications"`
	PushNotifications  bool `json:"pushNotifications"`
	PublicProfile      bool `json:"publicProfile"`
	ShowContactInfo    bool `json:"showContactInfo"`
}

type UserStats struct {
	PostsCount        int    `json:"postsCount"`
	CommentsCount     int    `json:"commentsCount"`
	SuccessfulReturns int    `json:"successfulReturns"`
	MemberSince       string `json:"memberSince,omitempty"`
}

// LoginCredentials is the body of POST /auth/login.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterCredentials is the body of POST /auth/register.
type RegisterCredentials struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
}

// AuthSession is the payload of a successful login/register response.
type AuthSession struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UpdateProfileData carries the partial profile fields of PUT /auth/profile.
// Pointer fields are omitted when nil so the backend only sees what changed.
type UpdateProfileData struct {
	FirstName   *string      `json:"firstName,omitempty"`
	LastName    *string      `json:"lastName,omitempty"`
	Bio         *string      `json:"bio,omitempty"`
	Phone       *string      `json:"phone,omitempty"`
	Location    *GeoLocation `json:"location,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// Post statuses as the backend understands them.
const (
	StatusLost     = "LOST"
	StatusFound    = "FOUND"
	StatusReturned = "RETURNED"
	StatusClosed   = "CLOSED"
)

// Categories recognized by the backend.
var Categories = []string{
	"electronics", "jewelry", "clothing", "documents", "pets",
	"vehicles", "books", "sports", "other",
}

// Pagination defaults shared with the backend.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

type Post struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Category         string       `json:"category"`
	Status           string       `json:"status"`
	Location         *GeoLocation `json:"location,omitempty"`
	ContactPhone     string       `json:"contactPhone,omitempty"`
	ContactEmail     string       `json:"contactEmail,omitempty"`
	PreferredContact string       `json:"preferredContact,omitempty"`
	Reward           string       `json:"reward,omitempty"`
	Tags             []string     `json:"tags,omitempty"`
	Images           []string     `json:"images,omitempty"`
	Author           *User        `json:"author,omitempty"`
	Counts           PostCounts   `json:"_count"`
	CreatedAt        string       `json:"createdAt,omitempty"`
	UpdatedAt        string       `json:"updatedAt,omitempty"`
}

type PostCounts struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

// ListPostsParams are the query parameters of GET /posts. Zero values are
// omitted from the query string.
type ListPostsParams struct {
	Page     int
	Limit    int
	Category string
	Status   string
	Search   string
	Location string
}

// PostPage is the paginated payload of GET /posts.
type PostPage struct {
	Posts   []Post `json:"data"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	HasNext bool   `json:"hasNext"`
}

// CreatePostData is the body of POST /posts. Image URLs must already be
// uploaded via UploadFile.
type CreatePostData struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	Status           string   `json:"status"`
	Address          string   `json:"address,omitempty"`
	City             string   `json:"city,omitempty"`
	State            string   `json:"state,omitempty"`
	Country          string   `json:"country,omitempty"`
	ContactPhone     string   `json:"contactPhone,omitempty"`
	ContactEmail     string   `json:"contactEmail,omitempty"`
	PreferredContact string   `json:"preferredContact,omitempty"`
	Reward           string   `json:"reward,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Images           []string `json:"images"`
}

// UpdatePostData is the body of PUT /posts/{id}.
type UpdatePostData struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Reward      *string  `json:"reward,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Images      []string `json:"images,omitempty"`
}

type Comment struct {
	ID        string     `json:"id"`
	PostID    string     `json:"postId"`
	ParentID  string     `json:"parentId,omitempty"`
	Content   string     `json:"content"`
	Author    *User      `json:"author,omitempty"`
	Counts    PostCounts `json:"_count"`
	CreatedAt string     `json:"createdAt,omitempty"`
	UpdatedAt string     `json:"updatedAt,omitempty"`
}

// CommentPage is the payload of GET /posts/{id}/comments.
type CommentPage struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	HasNext  bool      `json:"hasNext"`
}

// CreateCommentData is the body of POST /posts/{id}/comments.
type CreateCommentData struct {
	Content  string `json:"content"`
	ParentID string `json:"parentId,omitempty"`
}

// Upload is the payload of POST /upload.
type Upload struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// DashboardStats is the payload of GET /dashboard/stats.
type DashboardStats struct {
	TotalPosts        int `json:"totalPosts"`
	ActivePosts       int `json:"activePosts"`
	ResolvedPosts     int `json:"resolvedPosts"`
	TotalComments     int `json:"totalComments"`
	SuccessfulReturns int `json:"successfulReturns"`
	Reputation        int `json:"reputation"`
}
