//go:build functional

package test_functional

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	TokenResp struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}

	LinkResp struct {
		ID          uint64  `json:"id"`
		LinkURL     string  `json:"link_url"`
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Image       *string `json:"image"`
		LinkType    string  `json:"link_type"`
	}

	ErrorResp struct {
		Detail     string `json:"detail"`
		Code       string `json:"code"`
		StatusCode int    `json:"status_code"`
	}
)

func endpoint(path string) string {
	u := AppBaseURL
	u.Path = path
	return u.String()
}

func register(t *testing.T, ctx context.Context, email string) string {
	t.Helper()
	body := `{"email": "` + email + `", "password": "111111111111"}`

	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetContext(ctx).
		SetBody(body).
		Post(endpoint("/api/v1/users"))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())

	resp, err = resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetContext(ctx).
		SetResult(&TokenResp{}).
		SetBody(body).
		Post(endpoint("/api/v1/users/authenticate"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	return resp.Result().(*TokenResp).Access
}

func TestRegister(t *testing.T) {
	t.Run("successful register", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		token := register(t, ctx, "test@gmail.com")
		assert.NotEmpty(t, token)

		var (
			id       uint64
			password string
		)
		err := DBConn.QueryRow(ctx, "SELECT id, password FROM users WHERE email=$1", "test@gmail.com").Scan(&id, &password)
		assert.Nil(t, err)
		assert.NotEqual(t, "111111111111", password)
	})

	t.Run("bad body", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		resp, err := resty.New().
			R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetError(&ErrorResp{}).
			SetBody(`
			{"something": "???"}
		`).
			Post(endpoint("/api/v1/users"))
		assert.Nil(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
		assert.Equal(t, "invalid", resp.Error().(*ErrorResp).Code)
	})
}

func TestLinksCrud(t *testing.T) {
	defer FlushDB()

	pages := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head>
			<meta property="og:title" content="Functional">
			<meta property="og:type" content="video.movie">
		</head></html>`))
	}))
	lis, err := net.Listen("tcp", "0.0.0.0:0")
	require.NoError(t, err)
	pages.Listener = lis
	pages.Start()
	defer pages.Close()
	_, port, err := net.SplitHostPort(lis.Addr().String())
	require.NoError(t, err)
	pageURL := "http://" + net.JoinHostPort(TestConfig.PagesHost, port) + "/movie"

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	token := register(t, ctx, "links@gmail.com")
	client := resty.New().SetAuthToken(token).SetHeader("Content-Type", "application/json")

	resp, err := client.R().
		SetContext(ctx).
		SetResult(&LinkResp{}).
		SetBody(map[string]string{"link_url": pageURL}).
		Post(endpoint("/api/v1/links"))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())
	link := resp.Result().(*LinkResp)
	assert.Equal(t, "Functional", *link.Title)
	assert.Equal(t, "video", link.LinkType)

	resp, err = client.R().
		SetContext(ctx).
		SetError(&ErrorResp{}).
		SetBody(map[string]string{"link_url": pageURL}).
		Post(endpoint("/api/v1/links"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	assert.Equal(t, "link_exists", resp.Error().(*ErrorResp).Code)

	var count int
	err = DBConn.QueryRow(ctx, "SELECT count(*) FROM links WHERE link_url=$1", pageURL).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	resp, err = client.R().
		SetContext(ctx).
		Delete(endpoint("/api/v1/links/delete/" + jsonID(link.ID)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())

	err = DBConn.QueryRow(ctx, "SELECT count(*) FROM links").Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func jsonID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
