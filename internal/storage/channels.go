package storage

import (
	"gorm.io/gorm/clause"
)

func (s *Storage) channelPrompt(serverID, channelID string) (*ChannelPrompt, error) {
	var cp ChannelPrompt
	err := s.db.Where("server_id = ? AND channel_id = ?", serverID, channelID).Take(&cp).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &cp, nil
}

// Prompt returns the stored prompt of a channel. ok is false when none is set.
func (s *Storage) Prompt(serverID, channelID string) (prompt string, ok bool, err error) {
	cp, err := s.channelPrompt(serverID, channelID)
	if err == ErrNotFound {
		return "", false, nil
	}
	if err != nil || cp.Prompt == nil {
		return "", false, err
	}
	return *cp.Prompt, true, nil
}

// Context returns the stored history depth of a channel. ok is false when
// none is set.
func (s *Storage) Context(serverID, channelID string) (n int, ok bool, err error) {
	cp, err := s.channelPrompt(serverID, channelID)
	if err == ErrNotFound {
		return 0, false, nil
	}
	if err != nil || cp.Context == nil {
		return 0, false, err
	}
	return *cp.Context, true, nil
}

// SetPrompt stores the prompt of a channel.
func (s *Storage) SetPrompt(serverID, channelID, prompt string) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "server_id"}, {Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"prompt"}),
	}).Create(&ChannelPrompt{ServerID: serverID, ChannelID: channelID, Prompt: &prompt}).Error
}

// SetContext stores the history depth of a channel. Negative values are
// ignored.
func (s *Storage) SetContext(serverID, channelID string, n int) error {
	if n < 0 {
		return nil
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "server_id"}, {Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"context"}),
	}).Create(&ChannelPrompt{ServerID: serverID, ChannelID: channelID, Context: &n}).Error
}
