package storage

import (
	"gorm.io/gorm/clause"
)

// NameAndPronouns returns the registered name and pronouns of a user. Either
// may be empty.
func (s *Storage) NameAndPronouns(serverID, userID string) (name, pronouns string, err error) {
	var u User
	err = s.db.Where("server_id = ? AND user_id = ?", serverID, userID).Take(&u).Error
	if err != nil {
		if err = notFound(err); err == ErrNotFound {
			return "", "", nil
		}
		return "", "", err
	}
	return u.Name, u.Pronouns, nil
}

// SetName registers a user's preferred name.
func (s *Storage) SetName(serverID, userID, name string) error {
	return s.upsertUser(User{ServerID: serverID, UserID: userID, Name: name}, "name")
}

// SetPronouns stores a user's comma separated pronoun list.
func (s *Storage) SetPronouns(serverID, userID, pronouns string) error {
	return s.upsertUser(User{ServerID: serverID, UserID: userID, Pronouns: pronouns}, "pronouns")
}

// AllNames lists every registered name in a server.
func (s *Storage) AllNames(serverID string) ([]string, error) {
	var names []string
	err := s.db.Model(&User{}).
		Where("server_id = ? AND name <> ''", serverID).
		Order("name").
		Pluck("name", &names).Error
	return names, err
}

// PronounsForName returns the pronouns of every user registered under name,
// compared case-insensitively. The result has one entry per matching user.
func (s *Storage) PronounsForName(serverID, name string) ([]string, error) {
	var pronouns []string
	err := s.db.Model(&User{}).
		Where("server_id = ? AND LOWER(name) = LOWER(?)", serverID, name).
		Pluck("pronouns", &pronouns).Error
	return pronouns, err
}

func (s *Storage) upsertUser(u User, columns ...string) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "server_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&u).Error
}
