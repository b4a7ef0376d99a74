package web

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kvisli/glyptodon/domain"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 24 * time.Hour

func (s *Server) HandleRegister(c *gin.Context) {
	var creds domain.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	if err := domain.ValidateCredentials(creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err, existing := s.store.ReadAccByUsername(creds.Username); err == nil && existing != nil {
		c.JSON(http.StatusConflict, gin.H{"message": "username is already taken"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("Hashing password failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not create account"})
		return
	}

	err, acc := s.store.CreateAccount(creds.Username, string(hash))
	if err != nil {
		log.Println("Creating account failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not create account"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": acc.Id.String(), "username": acc.Username})
}

func (s *Server) HandleLogin(c *gin.Context) {
	var creds domain.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	err, acc := s.store.ReadAccByUsername(creds.Username)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid username or password"})
		return
	}
	if err != nil {
		log.Println("Reading account failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not log in"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(creds.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid username or password"})
		return
	}

	token, err := s.signToken(acc)
	if err != nil {
		log.Println("Signing token failed: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not log in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) signToken(acc *domain.Account) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      acc.Id.String(),
		"username": acc.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.conf.Conf.JwtSecret))
}
