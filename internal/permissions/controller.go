package permissions

import (
	"github.com/sirupsen/logrus"

	"edu-info-bot/internal/models"
)

// AccessType represents the access level of a user
type AccessType int

const (
	// None represents an unregistered user
	None AccessType = iota
	// Pending represents a registered user awaiting activation
	Pending
	// Active represents an activated user
	Active
	// Admin represents an activated administrator
	Admin
)

// Controller derives access levels from fetched user records. Authorization
// lives in the backend record, not in static configuration.
type Controller struct {
	logger *logrus.Logger
}

// NewController creates a new permission controller
func NewController(logger *logrus.Logger) *Controller {
	return &Controller{logger: logger}
}

// GetAccessType determines the access type of a user record
func (p *Controller) GetAccessType(user *models.User) AccessType {
	switch {
	case user == nil || !user.IsExist:
		return None
	case !user.IsActive:
		return Pending
	case user.Admin:
		return Admin
	default:
		return Active
	}
}

// IsAdmin checks if a user record belongs to an administrator
func (p *Controller) IsAdmin(user *models.User) bool {
	isAdmin := user != nil && user.IsExist && user.Admin
	if user != nil {
		p.logger.Debugf("Checking if user %d is admin: %v", user.UserID, isAdmin)
	}
	return isAdmin
}
