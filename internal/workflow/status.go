package workflow

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"mdt-app-server/internal/models"
)

// DeriveStatus computes a case's status from its own fields and the
// complete set of its actions. It is a total function of
// (discussion-present?, no-actions-flag, action-completion-set) and is
// the single source of truth for status: every mutation site that can
// affect the inputs recomputes it from scratch rather than patching the
// stored value.
func DeriveStatus(c *models.Case, actions []models.Action) models.CaseStatus {
	if c.NoActionsRequired {
		return models.StatusCOMP
	}
	if strings.TrimSpace(c.Discussion) == "" {
		return models.StatusTBD
	}
	if len(actions) == 0 {
		return models.StatusDISC
	}
	for _, a := range actions {
		if !a.IsCompleted {
			return models.StatusDISC
		}
	}
	return models.StatusCOMP
}

// RefreshCaseStatus reloads a case and its actions and persists the
// derived status. Call it after any action mutation; db may be a
// transaction handle so the status write commits with the mutation.
func RefreshCaseStatus(db *gorm.DB, caseID string) (models.CaseStatus, error) {
	var c models.Case
	if err := db.First(&c, "id = ?", caseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	actions, err := ActionsForCase(db, caseID)
	if err != nil {
		return "", err
	}

	status := DeriveStatus(&c, actions)
	if status != c.Status {
		if err := db.Model(&c).Update("status", status).Error; err != nil {
			return "", err
		}
	}
	return status, nil
}
