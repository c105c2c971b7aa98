package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Michaelanand123singh/lostfound-client/config"
	"github.com/Michaelanand123singh/lostfound-client/internal/lostfound"
	"github.com/Michaelanand123singh/lostfound-client/internal/posts"
	"github.com/Michaelanand123singh/lostfound-client/internal/session"
	"github.com/Michaelanand123singh/lostfound-client/internal/storage"
	"github.com/Michaelanand123singh/lostfound-client/internal/watcher"
	"github.com/lithammer/dedent"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var usage = strings.TrimSpace(dedent.Dedent(`
	usage: lostfound <command> [flags]

	session:
	  login           -email -password
	  register        -email -username -password [-first -last]
	  logout
	  whoami
	  update-profile  [-first -last -bio -phone -city]

	posts:
	  posts           [-page -limit -category -status -search -location]
	  post            <id>
	  create          -title -description -category [-status -city -reward -image ...]
	  like <id> / unlike <id>
	  comments        <postID>
	  comment         <postID> -text <content>
	  search          <query>
	  my-posts        [-status]
	  stats
	  watch           <query> [-interval 10m]

	config (env or ~/.config/lostfound-client/config.env):
	  LOSTFOUND_API_URL    backend base URL (default http://localhost:3001/api)
	  LOSTFOUND_DB_PATH    session database path (default lostfound.db)
	  LOSTFOUND_TOKEN_KEY  passphrase encrypting stored tokens (required)
`))

// cliNotifier prints transient notifications to the terminal, standing in
// for the toast layer of a graphical UI.
type cliNotifier struct{}

func (cliNotifier) Success(msg string) { fmt.Println(msg) }
func (cliNotifier) Error(msg string)   { fmt.Fprintln(os.Stderr, "error: "+msg) }

type app struct {
	store    storage.Storage
	tokens   *session.TokenStore
	client   *lostfound.Client
	service  *session.Service
	sessions *session.Manager
	posts    *posts.Manager
	notifier session.Notifier
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if os.Getenv("LOSTFOUND_DEBUG") == "" {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	config.LoadEnvFile()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	command := os.Args[1]
	args := os.Args[2:]

	tokenKey := config.TokenKey()
	if tokenKey == "" {
		fmt.Fprintln(os.Stderr, "LOSTFOUND_TOKEN_KEY is not set")
		os.Exit(1)
	}

	encryptionKey, err := storage.DeriveKey(tokenKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to derive encryption key: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStore(config.DBPath(), encryptionKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open session store at %s: %v\n", config.DBPath(), err)
		os.Exit(1)
	}
	defer store.Close()

	notifier := cliNotifier{}
	tokens := session.NewTokenStore(store)
	client := lostfound.NewClient(lostfound.ClientOpts{
		BaseURL: config.APIBaseURL(),
		Tokens:  tokens,
		OnSessionExpired: func() {
			fmt.Fprintln(os.Stderr, "session expired, please log in again")
		},
	})
	service := session.NewService(tokens)

	a := &app{
		store:    store,
		tokens:   tokens,
		client:   client,
		service:  service,
		sessions: session.NewManager(client, service, notifier),
		posts:    posts.NewManager(client, notifier),
		notifier: notifier,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Rehydrate session state before running any command.
	a.sessions.Initialize()

	if err := a.run(ctx, command, args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "register":
		return a.cmdRegister(ctx, args)
	case "logout":
		a.sessions.Logout(ctx)
		return nil
	case "whoami":
		return a.cmdWhoami()
	case "update-profile":
		return a.cmdUpdateProfile(ctx, args)
	case "posts":
		return a.cmdPosts(ctx, args)
	case "post":
		return a.cmdPost(ctx, args)
	case "create":
		return a.cmdCreate(ctx, args)
	case "like":
		return a.cmdLike(ctx, args, true)
	case "unlike":
		return a.cmdLike(ctx, args, false)
	case "comments":
		return a.cmdComments(ctx, args)
	case "comment":
		return a.cmdComment(ctx, args)
	case "search":
		return a.cmdSearch(ctx, args)
	case "my-posts":
		return a.cmdMyPosts(ctx, args)
	case "stats":
		return a.cmdStats(ctx)
	case "watch":
		return a.cmdWatch(ctx, args)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("login requires -email and -password")
	}

	a.sessions.Login(ctx, lostfound.LoginCredentials{Email: *email, Password: *password})
	if state := a.sessions.Snapshot(); !state.IsAuthenticated {
		return fmt.Errorf("login failed: %s", state.Err)
	}
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	username := fs.String("username", "", "Public username")
	password := fs.String("password", "", "Account password")
	first := fs.String("first", "", "First name")
	last := fs.String("last", "", "Last name")
	fs.Parse(args)

	if *email == "" || *username == "" || *password == "" {
		return fmt.Errorf("register requires -email, -username and -password")
	}

	a.sessions.Register(ctx, lostfound.RegisterCredentials{
		Email:           *email,
		Username:        *username,
		Password:        *password,
		ConfirmPassword: *password,
		FirstName:       *first,
		LastName:        *last,
	})
	if state := a.sessions.Snapshot(); !state.IsAuthenticated {
		return fmt.Errorf("registration failed: %s", state.Err)
	}
	return nil
}

func (a *app) cmdWhoami() error {
	state := a.sessions.Snapshot()
	if !state.IsAuthenticated {
		fmt.Println("not logged in")
		return nil
	}
	u := state.User
	fmt.Printf("%s <%s> (id: %s)\n", u.Username, u.Email, u.ID)
	if u.Bio != "" {
		fmt.Println(u.Bio)
	}
	return nil
}

func (a *app) cmdUpdateProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update-profile", flag.ExitOnError)
	first := fs.String("first", "", "First name")
	last := fs.String("last", "", "Last name")
	bio := fs.String("bio", "", "Profile bio")
	phone := fs.String("phone", "", "Contact phone")
	city := fs.String("city", "", "City")
	fs.Parse(args)

	var data lostfound.UpdateProfileData
	set := func(dst **string, v string) {
		if v != "" {
			*dst = &v
		}
	}
	set(&data.FirstName, *first)
	set(&data.LastName, *last)
	set(&data.Bio, *bio)
	set(&data.Phone, *phone)
	if *city != "" {
		data.Location = &lostfound.GeoLocation{City: *city}
	}

	a.sessions.UpdateProfile(ctx, data)
	if state := a.sessions.Snapshot(); state.Err != "" {
		return fmt.Errorf("profile update failed: %s", state.Err)
	}
	return nil
}

func (a *app) cmdPosts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("posts", flag.ExitOnError)
	page := fs.Int("page", 1, "Page number")
	limit := fs.Int("limit", lostfound.DefaultLimit, "Page size")
	category := fs.String("category", "", "Category filter")
	status := fs.String("status", "", "Status filter: LOST, FOUND, RETURNED, CLOSED")
	search := fs.String("search", "", "Free text filter")
	location := fs.String("location", "", "Location filter")
	fs.Parse(args)

	a.posts.SetFilters(lostfound.ListPostsParams{
		Category: *category,
		Status:   *status,
		Search:   *search,
		Location: *location,
	})
	a.posts.FetchPosts(ctx, *page, *limit)

	state := a.posts.Snapshot()
	if state.Err != "" {
		return fmt.Errorf("failed to list posts: %s", state.Err)
	}
	printPosts(state.Posts)
	fmt.Printf("page %d, %d total\n", state.Page, state.Total)
	return nil
}

func (a *app) cmdPost(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: lostfound post <id>")
	}

	a.posts.FetchPost(ctx, args[0])
	state := a.posts.Snapshot()
	if state.Err != "" {
		return fmt.Errorf("failed to fetch post: %s", state.Err)
	}

	p := state.Current
	fmt.Printf("[%s] %s (%s)\n", p.Status, p.Title, p.Category)
	fmt.Println(p.Description)
	if p.Location != nil && p.Location.City != "" {
		fmt.Printf("location: %s\n", p.Location.City)
	}
	fmt.Printf("%d likes, %d comments\n", p.Counts.Likes, p.Counts.Comments)
	return nil
}

func (a *app) cmdCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "Post title")
	description := fs.String("description", "", "Post description")
	category := fs.String("category", "other", "Item category")
	status := fs.String("status", lostfound.StatusLost, "LOST or FOUND")
	city := fs.String("city", "", "City where the item was lost/found")
	reward := fs.String("reward", "", "Offered reward")
	var images stringList
	fs.Var(&images, "image", "Image file to attach (repeatable)")
	fs.Parse(args)

	if *title == "" || *description == "" {
		return fmt.Errorf("create requires -title and -description")
	}

	a.posts.CreatePost(ctx, lostfound.CreatePostData{
		Title:       *title,
		Description: *description,
		Category:    *category,
		Status:      strings.ToUpper(*status),
		City:        *city,
		Reward:      *reward,
	}, images)

	if state := a.posts.Snapshot(); state.Err != "" {
		return fmt.Errorf("failed to create post: %s", state.Err)
	}
	return nil
}

func (a *app) cmdLike(ctx context.Context, args []string, like bool) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: lostfound like|unlike <id>")
	}
	if like {
		a.posts.LikePost(ctx, args[0])
	} else {
		a.posts.UnlikePost(ctx, args[0])
	}
	return nil
}

func (a *app) cmdComments(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: lostfound comments <postID>")
	}

	a.posts.FetchComments(ctx, args[0], 1, lostfound.DefaultLimit)
	state := a.posts.Snapshot()
	if state.CommentsErr != "" {
		return fmt.Errorf("failed to fetch comments: %s", state.CommentsErr)
	}

	for _, c := range state.Comments {
		author := "anonymous"
		if c.Author != nil {
			author = c.Author.Username
		}
		fmt.Printf("%s: %s\n", author, c.Content)
	}
	return nil
}

func (a *app) cmdComment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("comment", flag.ExitOnError)
	text := fs.String("text", "", "Comment content")
	if len(args) < 1 {
		return fmt.Errorf("usage: lostfound comment <postID> -text <content>")
	}
	postID := args[0]
	fs.Parse(args[1:])

	if *text == "" {
		return fmt.Errorf("comment requires -text")
	}

	a.posts.CreateComment(ctx, postID, lostfound.CreateCommentData{Content: *text})
	if state := a.posts.Snapshot(); state.CommentsErr != "" {
		return fmt.Errorf("failed to comment: %s", state.CommentsErr)
	}
	return nil
}

func (a *app) cmdSearch(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: lostfound search <query>")
	}

	page, err := a.client.SearchPosts(ctx, strings.Join(args, " "), 1, lostfound.DefaultLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	printPosts(page.Posts)
	return nil
}

func (a *app) cmdMyPosts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("my-posts", flag.ExitOnError)
	status := fs.String("status", "", "Status filter")
	fs.Parse(args)

	page, err := a.client.GetMyPosts(ctx, 1, lostfound.MaxLimit, *status)
	if err != nil {
		return fmt.Errorf("failed to fetch own posts: %w", err)
	}
	printPosts(page.Posts)
	return nil
}

func (a *app) cmdStats(ctx context.Context) error {
	stats, err := a.client.GetDashboardStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}
	fmt.Printf("posts: %d total, %d active, %d resolved\n", stats.TotalPosts, stats.ActivePosts, stats.ResolvedPosts)
	fmt.Printf("comments: %d, successful returns: %d, reputation: %d\n", stats.TotalComments, stats.SuccessfulReturns, stats.Reputation)
	return nil
}

func (a *app) cmdWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	interval := fs.Duration("interval", watcher.PollInterval, "Poll interval")
	if len(args) < 1 {
		return fmt.Errorf("usage: lostfound watch <query> [-interval 10m]")
	}
	query := args[0]
	fs.Parse(args[1:])

	g, ctx := errgroup.WithContext(ctx)

	service := watcher.NewService(a.client, a.store, a.notifier, query, *interval)
	g.Go(func() error {
		return service.Run(ctx)
	})

	// Keep the token pair fresh while the watcher runs unattended.
	if a.sessions.Snapshot().IsAuthenticated {
		g.Go(func() error {
			return session.KeepAlive(ctx, a.client, 6*time.Hour)
		})
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func printPosts(list []lostfound.Post) {
	if len(list) == 0 {
		fmt.Println("no posts found")
		return
	}
	for _, p := range list {
		city := ""
		if p.Location != nil && p.Location.City != "" {
			city = " - " + p.Location.City
		}
		fmt.Printf("%s  [%s] %s (%s)%s\n", p.ID, p.Status, p.Title, p.Category, city)
	}
}

// stringList collects repeatable string flags.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
