package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/teranos/jobtrack/errors"
	"github.com/teranos/jobtrack/joblist"
	"github.com/teranos/jobtrack/session"
)

const (
	pathRegister = "/api/register"
	pathLogin    = "/api/login"
	pathLogout   = "/api/logout"
	pathJobs     = "/api/myjobs"
)

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the success body of POST /api/register.
type RegisterResponse struct {
	Message string `json:"message"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the success body of POST /api/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	UserName    string `json:"user_name"`
}

// Session converts the login response into a session.
func (r LoginResponse) Session() session.Session {
	return session.Session{Token: r.AccessToken, UserName: r.UserName}
}

// JobInput is the body of POST /api/myjobs.
type JobInput struct {
	Company         string         `json:"company"`
	JobTitle        string         `json:"job_title"`
	AppliedFrom     joblist.Source `json:"applied_from"`
	ApplicationLink string         `json:"application_link"`
	Note            string         `json:"note"`
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	var resp RegisterResponse
	err := c.do(ctx, http.MethodPost, pathRegister, nil, req, &resp)
	return resp, err
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, pathLogin, nil, req, &resp); err != nil {
		return LoginResponse{}, err
	}
	if resp.AccessToken == "" {
		return LoginResponse{}, errors.New("login response carried no access_token")
	}
	return resp, nil
}

// Logout invalidates the session's token on the server.
func (c *Client) Logout(ctx context.Context, sess session.Session) error {
	return c.do(ctx, http.MethodPost, pathLogout, &sess, struct{}{}, nil)
}

// ListJobs fetches every job of the logged-in user.
func (c *Client) ListJobs(ctx context.Context, sess session.Session) ([]joblist.Job, error) {
	var jobs []joblist.Job
	if err := c.do(ctx, http.MethodGet, pathJobs, &sess, nil, &jobs); err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []joblist.Job{}
	}
	return jobs, nil
}

// CreateJob stores a job and returns the server's canonical record.
func (c *Client) CreateJob(ctx context.Context, sess session.Session, in JobInput) (joblist.Job, error) {
	var job joblist.Job
	err := c.do(ctx, http.MethodPost, pathJobs, &sess, in, &job)
	return job, err
}

// DeleteJob removes job id.
func (c *Client) DeleteJob(ctx context.Context, sess session.Session, id joblist.ID) error {
	return c.do(ctx, http.MethodDelete, pathJobs+"/"+url.PathEscape(string(id)), &sess, nil, nil)
}
