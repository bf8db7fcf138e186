// Package apitest provides an in-memory fake of the Galenus pharmacy
// API for tests: the auth endpoints with cookie-based refresh plus the
// thin domain endpoints, with call counters for asserting on the
// transport's refresh behavior.
package apitest

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/galenus-health/galenus-go/core"
)

const refreshCookie = "galenus_refresh"

type account struct {
	password string
	profile  core.UserProfile
	verified bool
	code     string
}

// Server is a fake pharmacy API backed by in-memory maps.
type Server struct {
	URL string

	srv *httptest.Server

	mu           sync.Mutex
	accounts     map[string]*account // email -> account
	tokens       map[string]string   // access token -> email
	revoked      map[string]bool     // access tokens the middleware rejects
	sessions     map[string]string   // refresh cookie value -> email
	rejectBearer bool
	failRefresh  bool
	failLogout   bool
	refreshCalls int
	meCalls      int
	loginCalls   int

	inventory     []gin.H
	sales         []gin.H
	prescriptions []gin.H
	medicines     []gin.H
}

// NewServer starts a fake API. Callers must Close it.
func NewServer() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		revoked:  make(map[string]bool),
		sessions: make(map[string]string),
	}

	router := gin.New()
	s.setupRoutes(router)
	s.srv = httptest.NewServer(router)
	s.URL = s.srv.URL
	return s
}

// Close shuts the fake API down.
func (s *Server) Close() {
	s.srv.Close()
}

func (s *Server) setupRoutes(router *gin.Engine) {
	auth := router.Group("/auth")
	{
		auth.POST("/jwt/login", s.handleLogin)
		auth.POST("/jwt/refresh", s.handleRefresh)
		auth.POST("/jwt/logout", s.handleLogout)
		auth.POST("/register", s.handleRegister)
		auth.POST("/verify-code", s.handleVerifyCode)
		auth.POST("/request-verification", s.handleRequestVerification)
	}

	protected := router.Group("/")
	protected.Use(s.authMiddleware())
	{
		protected.GET("/users/me", s.handleMe)
		protected.GET("/inventory", s.handleInventoryList)
		protected.PUT("/inventory/:id", s.handleInventoryUpdate)
		protected.GET("/sales", s.handleSalesList)
		protected.POST("/sales", s.handleSaleCreate)
		protected.GET("/prescriptions", s.handlePrescriptionList)
		protected.POST("/prescriptions", s.handlePrescriptionCreate)
		protected.DELETE("/prescriptions/:id", s.handlePrescriptionDelete)
	}

	// The medicine database is public in the API contract.
	router.GET("/medicine-database/search", s.handleMedicineSearch)
	router.POST("/medicine-database/upload", s.handleMedicineUpload)
}

// authMiddleware checks the bearer token the way the real API does:
// status class, not message content, is what the client reacts to.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if len(auth) < 8 || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
			return
		}
		token := auth[7:]

		s.mu.Lock()
		email, known := s.tokens[token]
		rejected := s.revoked[token] || s.rejectBearer
		s.mu.Unlock()

		if !known || rejected {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
			return
		}
		c.Set("email", email)
		c.Next()
	}
}

func (s *Server) handleLogin(c *gin.Context) {
	email := c.PostForm("username")
	password := c.PostForm("password")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginCalls++

	acct, ok := s.accounts[email]
	if !ok || acct.password != password || !acct.verified {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "LOGIN_BAD_CREDENTIALS"})
		return
	}

	token := uuid.New().String()
	s.tokens[token] = email

	session := uuid.New().String()
	s.sessions[session] = email
	c.SetCookie(refreshCookie, session, 3600, "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (s *Server) handleRefresh(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCalls++

	session, err := c.Cookie(refreshCookie)
	if err != nil || s.failRefresh {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Refresh credential invalid"})
		return
	}
	email, ok := s.sessions[session]
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Refresh credential invalid"})
		return
	}

	token := uuid.New().String()
	s.tokens[token] = email
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (s *Server) handleLogout(c *gin.Context) {
	s.mu.Lock()
	fail := s.failLogout
	s.mu.Unlock()

	if fail {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "logout failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRegister(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Password    string `json:"password" binding:"required"`
		FirstName   string `json:"first_name"`
		SecondName  string `json:"second_name"`
		PhoneNumber string `json:"phone_number"`
		Gender      string `json:"gender"`
		Address     string `json:"address"`
		Birthdate   string `json:"birthdate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{
			{"loc": []string{"body", "email"}, "msg": "field required"},
		}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if acct, exists := s.accounts[req.Email]; exists && acct.verified {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email already registered and verified"})
		return
	}
	s.accounts[req.Email] = &account{
		password: req.Password,
		code:     "123456",
		profile: core.UserProfile{
			Email:       req.Email,
			FirstName:   req.FirstName,
			SecondName:  req.SecondName,
			PhoneNumber: req.PhoneNumber,
			Gender:      req.Gender,
			Address:     req.Address,
			BirthDate:   req.Birthdate,
			IsActive:    true,
		},
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent. Check your email."})
}

func (s *Server) handleVerifyCode(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[req.Email]
	if !ok || acct.code != req.Code {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid or expired code"})
		return
	}
	acct.verified = true
	acct.profile.IsVerified = true
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

func (s *Server) handleRequestVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Verification email has been sent"})
}

func (s *Server) handleMe(c *gin.Context) {
	s.mu.Lock()
	s.meCalls++
	email := c.GetString("email")
	acct, ok := s.accounts[email]
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}
	c.JSON(http.StatusOK, acct.profile)
}

func (s *Server) handleInventoryList(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.inventory)
}

func (s *Server) handleInventoryUpdate(c *gin.Context) {
	var item gin.H
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) handleSalesList(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.sales)
}

func (s *Server) handleSaleCreate(c *gin.Context) {
	var sale gin.H
	if err := c.ShouldBindJSON(&sale); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sale["id"] = len(s.sales) + 1
	sale["invoice_number"] = uuid.New().String()
	s.sales = append(s.sales, sale)
	c.JSON(http.StatusOK, sale)
}

func (s *Server) handlePrescriptionList(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.prescriptions)
}

func (s *Server) handlePrescriptionCreate(c *gin.Context) {
	var p gin.H
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p["id"] = len(s.prescriptions) + 1
	s.prescriptions = append(s.prescriptions, p)
	c.JSON(http.StatusOK, p)
}

func (s *Server) handlePrescriptionDelete(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (s *Server) handleMedicineSearch(c *gin.Context) {
	query := strings.ToLower(c.Query("query"))

	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make([]gin.H, 0)
	for _, m := range s.medicines {
		name, _ := m["name"].(string)
		if query == "" || strings.Contains(strings.ToLower(name), query) {
			matches = append(matches, m)
		}
	}
	c.JSON(http.StatusOK, matches)
}

func (s *Server) handleMedicineUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "unreadable file"})
		return
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "malformed csv"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	imported := 0
	for i, rec := range records {
		if i == 0 || len(rec) == 0 {
			continue // header
		}
		s.medicines = append(s.medicines, gin.H{
			"id":   len(s.medicines) + 1,
			"name": rec[0],
		})
		imported++
	}
	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"message":  "Imported " + file.Filename,
	})
}
