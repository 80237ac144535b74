package handler

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/NewtonYuan/BYS.FE/pkg/logger"
	"github.com/gin-gonic/gin"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type ContactHandler struct{}

func NewContactHandler() *ContactHandler {
	return &ContactHandler{}
}

type ContactRequest struct {
	Topic   string `json:"topic"` // sales, support
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	// Website is a honeypot field; real users never fill it.
	Website string `json:"website"`
}

// Submit validates and records a contact form submission
func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	fieldErrors := map[string]string{}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 100 {
		fieldErrors["name"] = "Name must be between 1 and 100 characters."
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || len(email) > 254 || !emailPattern.MatchString(email) {
		fieldErrors["email"] = "Enter a valid email address."
	}

	message := strings.TrimSpace(req.Message)
	if len(message) < 10 || len(message) > 4000 {
		fieldErrors["message"] = "Message must be between 10 and 4000 characters."
	}

	if strings.TrimSpace(req.Website) != "" {
		fieldErrors["website"] = "Invalid submission."
	}

	if len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "field_errors": fieldErrors})
		return
	}

	topic := req.Topic
	if topic != "sales" && topic != "support" {
		topic = "support"
	}

	logger.Info(c.Request.Context(), "contact message received",
		"topic", topic,
		"name", name,
		"email", email,
		"message_len", len(message),
	)

	c.JSON(http.StatusOK, gin.H{"message": "Thanks, we'll be in touch."})
}
