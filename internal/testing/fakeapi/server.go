// Package fakeapi serves an in-memory version of the job tracker REST API
// for tests. It speaks the same routes, status codes and `{"message"}` error
// bodies as the real service, records every request, and can be told to fail
// a route on demand.
package fakeapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teranos/jobtrack/joblist"
)

// Request is one request the server received.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          string
}

type user struct {
	name     string
	email    string
	password string
}

type failure struct {
	status  int
	message string
}

// Server is a running fake API.
type Server struct {
	// Now stamps created_at on new jobs.
	Now func() time.Time

	srv *httptest.Server

	mu       sync.Mutex
	users    map[string]user   // by email
	tokens   map[string]string // token -> user name
	jobs     map[string][]joblist.Job
	nextID   int
	requests []Request
	failures map[string]failure
}

// New starts a server and stops it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		Now:      time.Now,
		users:    map[string]user{},
		tokens:   map[string]string{},
		jobs:     map[string][]joblist.Job{},
		nextID:   1,
		failures: map[string]failure{},
	}

	r := gin.New()
	r.Use(s.record, s.injectFailure)

	api := r.Group("/api")
	api.POST("/register", s.register)
	api.POST("/login", s.login)

	authed := api.Group("", s.requireToken)
	authed.POST("/logout", s.logout)
	authed.GET("/myjobs", s.listJobs)
	authed.POST("/myjobs", s.createJob)
	authed.DELETE("/myjobs/:id", s.deleteJob)

	s.srv = httptest.NewServer(r)
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the server's base URL.
func (s *Server) URL() string {
	return s.srv.URL
}

// Client is an http.Client wired to the server.
func (s *Server) Client() *http.Client {
	return s.srv.Client()
}

// AddUser registers an account directly.
func (s *Server) AddUser(name, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = user{name: name, email: email, password: password}
}

// IssueToken returns a valid token for userName without a login round trip.
func (s *Server) IssueToken(userName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.New().String()
	s.tokens[token] = userName
	return token
}

// SeedJobs stores jobs for userName as-is, assigning ids to those without one.
func (s *Server) SeedJobs(userName string, jobs ...joblist.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range jobs {
		if j.ID == "" {
			j.ID = s.allocID()
		}
		s.jobs[userName] = append(s.jobs[userName], j)
	}
}

// Jobs returns what the server currently holds for userName.
func (s *Server) Jobs(userName string) []joblist.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]joblist.Job(nil), s.jobs[userName]...)
}

// Fail makes every request to route answer status with message until
// ClearFailures. route is "METHOD /path" using gin's pattern, e.g.
// "DELETE /api/myjobs/:id". An empty message sends an empty body.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, message: message}
}

// ClearFailures removes every injected failure.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]failure{}
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// TokenValid reports whether token is still accepted.
func (s *Server) TokenValid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[token]
	return ok
}

func (s *Server) allocID() joblist.ID {
	id := joblist.ID(strconv.Itoa(s.nextID))
	s.nextID++
	return id
}

func (s *Server) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		Authorization: c.GetHeader("Authorization"),
		RequestID:     c.GetHeader("X-Request-ID"),
		Body:          string(body),
	})
	s.mu.Unlock()
	c.Next()
}

func (s *Server) injectFailure(c *gin.Context) {
	s.mu.Lock()
	f, ok := s.failures[c.Request.Method+" "+c.FullPath()]
	s.mu.Unlock()
	if !ok {
		c.Next()
		return
	}
	if f.message == "" {
		c.AbortWithStatus(f.status)
		return
	}
	c.AbortWithStatusJSON(f.status, gin.H{"message": f.message})
}

func (s *Server) requireToken(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	s.mu.Lock()
	name, ok := s.tokens[token]
	s.mu.Unlock()
	if token == "" || !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}
	c.Set("user", name)
	c.Next()
}

func (s *Server) register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "name, email and password are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Email]; exists {
		c.JSON(http.StatusConflict, gin.H{"message": "The email has already been taken."})
		return
	}
	s.users[req.Email] = user{name: req.Name, email: req.Email, password: req.Password}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[req.Email]
	if !ok || u.password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}
	token := uuid.New().String()
	s.tokens[token] = u.name
	c.JSON(http.StatusOK, gin.H{"access_token": token, "user_name": u.name})
}

func (s *Server) logout(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *Server) listJobs(c *gin.Context) {
	name := c.GetString("user")
	s.mu.Lock()
	jobs := append([]joblist.Job{}, s.jobs[name]...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, jobs)
}

func (s *Server) createJob(c *gin.Context) {
	var in struct {
		Company         string `json:"company"`
		JobTitle        string `json:"job_title"`
		AppliedFrom     string `json:"applied_from"`
		ApplicationLink string `json:"application_link"`
		Note            string `json:"note"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	if in.Company == "" || in.JobTitle == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "company and job_title are required"})
		return
	}

	name := c.GetString("user")
	s.mu.Lock()
	job := joblist.Job{
		ID:              s.allocID(),
		Company:         in.Company,
		JobTitle:        in.JobTitle,
		AppliedFrom:     joblist.Source(in.AppliedFrom),
		ApplicationLink: in.ApplicationLink,
		Note:            in.Note,
		CreatedAt:       s.Now().UTC().Format(time.RFC3339),
	}
	s.jobs[name] = append(s.jobs[name], job)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, job)
}

func (s *Server) deleteJob(c *gin.Context) {
	name := c.GetString("user")
	id := joblist.ID(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := s.jobs[name]
	for i, j := range jobs {
		if j.ID == id {
			s.jobs[name] = append(jobs[:i:i], jobs[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Job %s deleted", id)})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Job not found"})
}
