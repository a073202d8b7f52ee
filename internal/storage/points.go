package storage

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Point roles.
const (
	RoleAppointee = "point_appointee"
	RoleDeputy    = "deputy"
)

const defaultPointName = "points"

// Score is one user's point total.
type Score struct {
	UserID string
	Points float64
}

// AddPoints adds amount (possibly negative) to each user's total.
func (s *Storage) AddPoints(serverID string, amount float64, userIDs ...string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range userIDs {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "server_id"}, {Name: "user_id"}},
				DoUpdates: clause.Assignments(map[string]any{"points": gorm.Expr("points + ?", amount)}),
			}).Create(&User{ServerID: serverID, UserID: id, Points: amount}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Scores returns the nonzero totals of a server, highest first.
func (s *Storage) Scores(serverID string) ([]Score, error) {
	var users []User
	err := s.db.Where("server_id = ? AND points <> 0", serverID).
		Order("points DESC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	out := make([]Score, len(users))
	for i, u := range users {
		out[i] = Score{UserID: u.UserID, Points: u.Points}
	}
	return out, nil
}

// ResetPoints zeroes every total in a server.
func (s *Storage) ResetPoints(serverID string) error {
	return s.db.Model(&User{}).Where("server_id = ?", serverID).Update("points", 0).Error
}

// RoleHolder returns the user holding a point role, or "" when nobody does.
func (s *Storage) RoleHolder(serverID, role string) (string, error) {
	var u User
	err := s.db.Where("server_id = ? AND point_role = ?", serverID, role).Take(&u).Error
	if err != nil {
		if err = notFound(err); err == ErrNotFound {
			return "", nil
		}
		return "", err
	}
	return u.UserID, nil
}

// SetRole gives userID a point role, taking it from whoever held it before.
func (s *Storage) SetRole(serverID, userID, role string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&User{}).
			Where("server_id = ? AND point_role = ?", serverID, role).
			Update("point_role", "").Error
		if err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "server_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"point_role"}),
		}).Create(&User{ServerID: serverID, UserID: userID, PointRole: role}).Error
	})
}

// ClearRoles removes every point role in a server.
func (s *Storage) ClearRoles(serverID string) error {
	return s.db.Model(&User{}).Where("server_id = ?", serverID).Update("point_role", "").Error
}

// PointName is the server's name for points.
func (s *Storage) PointName(serverID string) (string, error) {
	var v ServerVar
	err := s.db.Where("server_id = ?", serverID).Take(&v).Error
	if err != nil {
		if err = notFound(err); err == ErrNotFound {
			return defaultPointName, nil
		}
		return "", err
	}
	if v.PointName == "" {
		return defaultPointName, nil
	}
	return v.PointName, nil
}

// SetPointName renames the server's points.
func (s *Storage) SetPointName(serverID, name string) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "server_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"point_name"}),
	}).Create(&ServerVar{ServerID: serverID, PointName: name}).Error
}
