package github

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL         = "https://api.github.com"
	graphQLPath    = "/graphql"
	userAgent      = "GradPipeOrg/showoff"
	defaultTimeout = 20 * time.Second
	// Max value for list endpoints per page.
	perPage = 100
)

var (
	// ErrNotFound is returned when GitHub answers 404.
	ErrNotFound = errors.New("not found on github")
	// ErrBadStatus is returned for any other non-2xx answer.
	ErrBadStatus = errors.New("bad status from github")
)

// Config holds the static client settings.
type Config struct {
	APIURL     string
	GraphQLURL string
	Token      string
	UserAgent  string
	Timeout    time.Duration
}

// Client talks to the GitHub REST and GraphQL APIs. It holds no per-job
// state and is safe for concurrent use.
type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	GraphQLURL string
}

func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if base == "" {
		base = apiURL
	}

	gql := strings.TrimSpace(cfg.GraphQLURL)
	if gql == "" {
		gql = base + graphQLPath
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = userAgent
	}

	return &Client{
		token:      strings.TrimSpace(cfg.Token),
		logger:     logger,
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  ua,
		APIURL:     base,
		GraphQLURL: gql,
	}
}
