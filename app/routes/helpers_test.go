package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"yatube/app/auth"
	"yatube/app/blobs"
	"yatube/app/cache"
	"yatube/app/controllers"
	"yatube/app/logging"
	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/repositories/mock"
	"yatube/app/services"
	"yatube/app/testutil"
	"yatube/app/views"
)

type testApp struct {
	router *mux.Router
	repos  *repositories.Repositories
	images *blobs.Memory
	clock  *testutil.StubClock
	posts  *services.PostService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	repos := mock.New()
	clk := testutil.FixedClock()
	logger := logging.Discard()
	images := blobs.NewMemory()

	renderer, err := views.New()
	require.NoError(t, err)

	follows := services.NewFollowService(repos.Authors, repos.Follows, clk, logger)
	feed := services.NewFeedService(repos, follows, cache.NewMemory[*services.FeedPage](clk),
		services.FeedOptions{PerPage: 10, CacheTTL: 20 * time.Second}, logger)
	posts := services.NewPostService(repos, images, clk, logger)
	comments := services.NewCommentService(repos, clk, logger)
	admin := services.NewAdminService(repos, clk, logger)

	base := controllers.NewBase(renderer, logger)
	router := SetupRoutes(Controllers{
		Base:     base,
		Feed:     controllers.NewFeedController(base, feed),
		Posts:    controllers.NewPostController(base, posts, admin),
		Comments: controllers.NewCommentController(base, comments),
		Follows:  controllers.NewFollowController(base, follows),
		Auth:     controllers.NewAuthController(base),
		Media:    controllers.NewMediaController(base, images),
	}, auth.NewBasicAuthenticator(repos.Authors), logger)

	app := &testApp{router: router, repos: repos, images: images, clock: clk, posts: posts}
	for _, name := range []string{"leo", "anna", "bob"} {
		hash, err := bcrypt.GenerateFromPassword([]byte(password(name)), bcrypt.MinCost)
		require.NoError(t, err)
		require.NoError(t, repos.Authors.Create(&models.Author{
			Username:     name,
			FullName:     strings.ToUpper(name[:1]) + name[1:],
			PasswordHash: string(hash),
			CreatedAt:    clk.Now(),
		}))
	}
	require.NoError(t, repos.Groups.Create(&models.Group{Slug: "cats", Title: "Cats", Description: "All about cats"}))
	require.NoError(t, repos.Groups.Create(&models.Group{Slug: "dogs", Title: "Dogs"}))
	return app
}

func password(username string) string {
	return "secret-" + username
}

// post stores a post directly, one second after the previous one.
func (a *testApp) post(t *testing.T, author, group, text string) *models.Post {
	t.Helper()
	a.clock.Advance(time.Second)
	p := &models.Post{Author: author, Text: text, GroupSlug: group, CreatedAt: a.clock.Now()}
	require.NoError(t, a.repos.Posts.Create(p))
	return p
}

type request struct {
	method      string
	path        string
	user        string
	pass        string
	body        io.Reader
	contentType string
	json        bool
}

func (a *testApp) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	if r.method == "" {
		r.method = http.MethodGet
	}
	req := httptest.NewRequest(r.method, r.path, r.body)
	if r.user != "" {
		if r.pass == "" {
			r.pass = password(r.user)
		}
		req.SetBasicAuth(r.user, r.pass)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.json {
		req.Header.Set("Accept", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(t *testing.T, path, user string) *httptest.ResponseRecorder {
	return a.do(t, request{path: path, user: user})
}

func (a *testApp) getJSON(t *testing.T, path, user string, v any) *httptest.ResponseRecorder {
	t.Helper()
	w := a.do(t, request{path: path, user: user, json: true})
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
	}
	return w
}

func (a *testApp) postForm(t *testing.T, path, user string, form url.Values) *httptest.ResponseRecorder {
	return a.do(t, request{
		method:      http.MethodPost,
		path:        path,
		user:        user,
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	})
}

func (a *testApp) postMultipart(t *testing.T, path, user string, fields map[string]string, filename string, file []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return a.do(t, request{
		method:      http.MethodPost,
		path:        path,
		user:        user,
		body:        &body,
		contentType: mw.FormDataContentType(),
	})
}

type pageJSON struct {
	Number   int           `json:"page"`
	NumPages int           `json:"num_pages"`
	Total    int           `json:"total"`
	Items    []models.Post `json:"items"`
}

func postPath(id int) string {
	return fmt.Sprintf("/posts/%d/", id)
}
