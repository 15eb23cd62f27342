package handlers

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Validation limits for cart and request fields.
const (
	maxCartItems       = 100
	maxLineQuantity    = 100_000
	maxRequestName     = 200
	maxRequestEmail    = 254
	maxRequestDesc     = 5_000
	maxRequestQuantity = 1_000_000
)

// validateCart checks cart lines and returns the first error found.
func validateCart(items []cartItem) string {
	if len(items) == 0 {
		return "Cart is empty."
	}
	if len(items) > maxCartItems {
		return fmt.Sprintf("Cart has too many lines (max %d).", maxCartItems)
	}
	for i, item := range items {
		if item.ButtonID == uuid.Nil {
			return fmt.Sprintf("Line %d: button_id is required.", i+1)
		}
		if item.Quantity <= 0 {
			return fmt.Sprintf("Line %d: quantity must be positive.", i+1)
		}
		if item.Quantity > maxLineQuantity {
			return fmt.Sprintf("Line %d: quantity is too large (max %d).", i+1, maxLineQuantity)
		}
	}
	return ""
}

// validateRequest checks custom-order request inputs and returns the first
// error found.
func validateRequest(name, email string, quantity int, description string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxRequestName {
		return "Name is too long (max 200 characters)."
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required."
	}
	if len(email) > maxRequestEmail {
		return "Email is too long."
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "Email is not valid."
	}

	if quantity <= 0 {
		return "Quantity must be positive."
	}
	if quantity > maxRequestQuantity {
		return "Quantity is too large."
	}

	if strings.TrimSpace(description) == "" {
		return "Description is required."
	}
	if utf8.RuneCountInString(description) > maxRequestDesc {
		return "Description is too long (max 5,000 characters)."
	}
	return ""
}
