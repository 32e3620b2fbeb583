package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/opendms/dms-api/internal/models"
	appErrors "github.com/opendms/dms-api/pkg/errors"
)

// Principal is the resolved caller identity the visibility rules run
// against. Claims alone are not enough for non-admin callers: the
// department assignment lives on the user row and may change after the
// token was minted, so it is loaded fresh per request.
type Principal struct {
	UserID       int64
	Username     string
	DepartmentID int64
	IsAdmin      bool
}

type principalUserResolver interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// resolvePrincipal builds the Principal for the given claims. Admin
// tokens short-circuit without a directory lookup.
func resolvePrincipal(ctx context.Context, users principalUserResolver, claims *models.JWTClaims) (*Principal, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.IsAdmin {
		return &Principal{UserID: claims.UserID, Username: claims.Username, IsAdmin: true}, nil
	}

	user, err := users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve caller")
	}
	return &Principal{
		UserID:       user.ID,
		Username:     user.Username,
		DepartmentID: user.DepartmentID,
		IsAdmin:      user.IsAdmin,
	}, nil
}

// Visible decides whether the caller may see the document. Admins see
// everything. Everyone else sees a document when its minor head name
// matches their username, or when their department assignment points at
// the document's minor head.
func (p *Principal) Visible(doc *models.Document) bool {
	if p == nil || doc == nil {
		return false
	}
	if p.IsAdmin {
		return true
	}
	if strings.EqualFold(doc.MinorHead.Name, p.Username) {
		return true
	}
	return p.DepartmentID != 0 && p.DepartmentID == doc.MinorHeadID
}

// filterVisible drops documents the caller may not see, keeping order.
func (p *Principal) filterVisible(docs []models.Document) []models.Document {
	if p.IsAdmin {
		return docs
	}
	visible := make([]models.Document, 0, len(docs))
	for i := range docs {
		if p.Visible(&docs[i]) {
			visible = append(visible, docs[i])
		}
	}
	return visible
}
